package v1

import (
	"net/http"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/gin-gonic/gin"
)

type ClinicHandler struct {
	svc *service.ClinicService
	now func() time.Time
}

func NewClinicHandler(svc *service.ClinicService) *ClinicHandler {
	return &ClinicHandler{svc: svc, now: time.Now}
}

func listQuery(c *gin.Context) *clinic.ListQuery {
	return &clinic.ListQuery{
		Search:   c.Query("search"),
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 20),
	}
}

func (h *ClinicHandler) ListPatients(c *gin.Context) {
	page, err := h.svc.ListPatients(c.Request.Context(), listQuery(c), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	now := h.now()
	out := make([]patientResponse, 0, len(page.Patients))
	for _, p := range page.Patients {
		out = append(out, toPatientResponse(p, now))
	}
	c.JSON(http.StatusOK, PagedResponse[patientResponse]{
		Data:       out,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *ClinicHandler) CreatePatient(c *gin.Context) {
	var req patientRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, errs := req.command()
	if len(errs) > 0 {
		respondServiceError(c, &service.ValidationError{Fields: errs})
		return
	}
	p, err := h.svc.CreatePatient(c.Request.Context(), cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toPatientResponse(p, h.now()))
}

func (h *ClinicHandler) GetPatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetPatient(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPatientResponse(p, h.now()))
}

func (h *ClinicHandler) UpdatePatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req patientUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, errs := req.command()
	if len(errs) > 0 {
		respondServiceError(c, &service.ValidationError{Fields: errs})
		return
	}
	p, err := h.svc.UpdatePatient(c.Request.Context(), id, cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPatientResponse(p, h.now()))
}

func (h *ClinicHandler) DeletePatient(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ClinicHandler) ListDoctors(c *gin.Context) {
	page, err := h.svc.ListDoctors(c.Request.Context(), listQuery(c), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]doctorResponse, 0, len(page.Doctors))
	for _, d := range page.Doctors {
		out = append(out, toDoctorResponse(d))
	}
	c.JSON(http.StatusOK, PagedResponse[doctorResponse]{
		Data:       out,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *ClinicHandler) CreateDoctor(c *gin.Context) {
	var req doctorRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.CreateDoctor(c.Request.Context(), req.command(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toDoctorResponse(d))
}

func (h *ClinicHandler) GetDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.GetDoctor(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toDoctorResponse(d))
}

func (h *ClinicHandler) UpdateDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req doctorUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.svc.UpdateDoctor(c.Request.Context(), id, req.command(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toDoctorResponse(d))
}

func (h *ClinicHandler) DeleteDoctor(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteDoctor(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
