package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/gin-gonic/gin"
)

type StorefrontHandler struct {
	svc *service.StorefrontService
}

func NewStorefrontHandler(svc *service.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{svc: svc}
}

// Catalogue is public. include_offline is honoured for staff only.
func (h *StorefrontHandler) Catalogue(c *gin.Context) {
	q := &storefront.CatalogueQuery{
		FeaturedOnly:   c.Query("featured") == "true",
		IncludeOffline: c.Query("include_offline") == "true",
	}
	if raw := c.Query("kind"); raw != "" {
		k := storefront.Kind(raw)
		q.Kind = &k
	}
	entries, err := h.svc.Catalogue(c.Request.Context(), q, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if entries == nil {
		entries = []service.CatalogueEntry{}
	}
	respondOK(c, entries)
}

func (h *StorefrontHandler) Product(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	entry, err := h.svc.Product(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entry)
}

func (h *StorefrontHandler) ListProduct(c *gin.Context) {
	var req listingRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.svc.ListProduct(c.Request.Context(), req.command(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, entry)
}

func (h *StorefrontHandler) UpdateListing(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req listingUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.svc.UpdateListing(c.Request.Context(), id, &storefront.UpdateProductCommand{
		Featured:        req.Featured,
		AvailableOnline: req.AvailableOnline,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, entry)
}

func (h *StorefrontHandler) RemoveListing(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveListing(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StorefrontHandler) Cart(c *gin.Context) {
	view, err := h.svc.Cart(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *StorefrontHandler) AddToCart(c *gin.Context) {
	var req cartAddRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.AddToCart(c.Request.Context(), req.ProductID, req.Quantity, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *StorefrontHandler) SetCartQuantity(c *gin.Context) {
	itemID, ok := parseUUID(c, "itemId")
	if !ok {
		return
	}
	var req cartQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.SetCartQuantity(c.Request.Context(), itemID, req.Quantity, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

func (h *StorefrontHandler) RemoveFromCart(c *gin.Context) {
	itemID, ok := parseUUID(c, "itemId")
	if !ok {
		return
	}
	view, err := h.svc.RemoveFromCart(c.Request.Context(), itemID, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, view)
}

// Checkout answers 409 with the first shortage when any line cannot be
// filled; nothing is reserved in that case.
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	order, err := h.svc.Checkout(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toOrderResponse(order))
}

func (h *StorefrontHandler) Orders(c *gin.Context) {
	q := &storefront.ListOrdersQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
	if raw := c.Query("status"); raw != "" {
		st := storefront.OrderStatus(raw)
		q.Status = &st
	}
	page, err := h.svc.Orders(c.Request.Context(), q, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(page.Orders))
	for _, o := range page.Orders {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, PagedResponse[orderResponse]{
		Data:       out,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *StorefrontHandler) Order(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.svc.Order(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toOrderResponse(o))
}

func (h *StorefrontHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.svc.UpdateOrderStatus(c.Request.Context(), id, req.Status, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toOrderResponse(o))
}
