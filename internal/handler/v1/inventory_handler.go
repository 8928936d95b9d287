package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	svc *service.InventoryService
	now func() time.Time
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc, now: time.Now}
}

func (h *InventoryHandler) ListMedicines(c *gin.Context) {
	q := &inventory.ListMedicinesQuery{
		Search:   c.Query("search"),
		LowStock: c.Query("low_stock") == "true",
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("category"); raw != "" {
		cat := inventory.Category(raw)
		q.Category = &cat
	}
	if raw := c.Query("type"); raw != "" {
		t := inventory.MedicineType(raw)
		q.Type = &t
	}

	page, err := h.svc.ListMedicines(c.Request.Context(), q, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, PagedResponse[medicineResponse]{
		Data:       toMedicineResponses(page.Medicines, h.now()),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *InventoryHandler) CreateMedicine(c *gin.Context) {
	var req medicineRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, errs := req.command()
	if len(errs) > 0 {
		respondServiceError(c, &service.ValidationError{Fields: errs})
		return
	}
	m, err := h.svc.CreateMedicine(c.Request.Context(), cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toMedicineResponse(m, h.now()))
}

func (h *InventoryHandler) GetMedicine(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.GetMedicine(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toMedicineResponse(m, h.now()))
}

func (h *InventoryHandler) UpdateMedicine(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req medicineUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, errs := req.command()
	if len(errs) > 0 {
		respondServiceError(c, &service.ValidationError{Fields: errs})
		return
	}
	m, err := h.svc.UpdateMedicine(c.Request.Context(), id, cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toMedicineResponse(m, h.now()))
}

func (h *InventoryHandler) DeleteMedicine(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMedicine(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) MedicineHistory(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	actions, err := h.svc.MedicineHistory(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toMedicineActionResponses(actions))
}

func (h *InventoryHandler) RestockMedicine(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req restockRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.svc.RestockMedicine(c.Request.Context(), id, req.Units, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toMedicineResponse(m, h.now()))
}

func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.svc.Alerts(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	now := h.now()
	respondOK(c, alertsResponse{
		LowStock:   toMedicineResponses(alerts.LowStock, now),
		NearExpiry: toMedicineResponses(alerts.NearExpiry, now),
		Expired:    toMedicineResponses(alerts.Expired, now),
	})
}

func (h *InventoryHandler) ListGoods(c *gin.Context) {
	goods, err := h.svc.ListProducts(c.Request.Context(), c.Query("search"), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]goodsResponse, 0, len(goods))
	for _, g := range goods {
		out = append(out, toGoodsResponse(g))
	}
	respondOK(c, out)
}

func (h *InventoryHandler) CreateGoods(c *gin.Context) {
	var req goodsRequest
	if !bindJSON(c, &req) {
		return
	}
	g, err := h.svc.CreateProduct(c.Request.Context(), req.command(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toGoodsResponse(g))
}

func (h *InventoryHandler) GetGoods(c *gin.Context) {
	h.withGoods(c, func(id uuid.UUID) (*inventory.NonMedicalProduct, error) {
		return h.svc.GetProduct(c.Request.Context(), id, callerFrom(c))
	})
}

func (h *InventoryHandler) UpdateGoods(c *gin.Context) {
	var req goodsUpdateRequest
	h.withGoods(c, func(id uuid.UUID) (*inventory.NonMedicalProduct, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, &service.ValidationError{Fields: []string{"invalid request: " + err.Error()}}
		}
		return h.svc.UpdateProduct(c.Request.Context(), id, req.command(), callerFrom(c))
	})
}

func (h *InventoryHandler) RestockGoods(c *gin.Context) {
	var req restockRequest
	h.withGoods(c, func(id uuid.UUID) (*inventory.NonMedicalProduct, error) {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, &service.ValidationError{Fields: []string{"invalid request: " + err.Error()}}
		}
		return h.svc.RestockProduct(c.Request.Context(), id, req.Units, callerFrom(c))
	})
}

func (h *InventoryHandler) DeleteGoods(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) withGoods(c *gin.Context, fn func(uuid.UUID) (*inventory.NonMedicalProduct, error)) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	g, err := fn(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toGoodsResponse(g))
}
