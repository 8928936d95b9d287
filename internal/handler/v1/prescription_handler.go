package v1

import (
	"fmt"
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/gin-gonic/gin"
)

type PrescriptionHandler struct {
	prescriptions *service.PrescriptionService
	dispensing    *service.DispensingService
}

func NewPrescriptionHandler(prescriptions *service.PrescriptionService, dispensing *service.DispensingService) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptions: prescriptions, dispensing: dispensing}
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	patientID, ok := parseQueryUUID(c, "patient_id")
	if !ok {
		return
	}
	doctorID, ok := parseQueryUUID(c, "doctor_id")
	if !ok {
		return
	}
	date, ok := parseQueryDate(c, "date")
	if !ok {
		return
	}
	paid, ok := parseQueryBool(c, "is_paid")
	if !ok {
		return
	}

	page, err := h.prescriptions.List(c.Request.Context(), &prescription.ListPrescriptionsQuery{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		IsPaid:    paid,
		Page:      parseQueryInt(c, "page", 1),
		PageSize:  parseQueryInt(c, "page_size", 20),
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]prescriptionResponse, 0, len(page.Prescriptions))
	for _, rx := range page.Prescriptions {
		out = append(out, toPrescriptionResponse(rx))
	}
	c.JSON(http.StatusOK, PagedResponse[prescriptionResponse]{
		Data:       out,
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req prescriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	var errs []string
	date := dateField("prescription_date", req.PrescriptionDate, &errs)
	if len(errs) > 0 {
		respondServiceError(c, &service.ValidationError{Fields: errs})
		return
	}

	rx, err := h.prescriptions.Create(c.Request.Context(), &prescription.CreatePrescriptionCommand{
		PatientID:        req.PatientID,
		DoctorID:         req.DoctorID,
		PrescriptionDate: date,
		Notes:            req.Notes,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toPrescriptionResponse(rx))
}

func (h *PrescriptionHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	rx, err := h.prescriptions.Get(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPrescriptionResponse(rx))
}

func (h *PrescriptionHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req prescriptionUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	cmd, errs := req.command()
	if len(errs) > 0 {
		respondServiceError(c, &service.ValidationError{Fields: errs})
		return
	}
	rx, err := h.prescriptions.UpdateDetails(c.Request.Context(), id, cmd, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPrescriptionResponse(rx))
}

// Delete answers 409 while a payment exists; stock is released otherwise.
func (h *PrescriptionHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.prescriptions.Delete(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddItem dispenses a medicine onto the prescription. A shortfall without
// confirm_partial answers 409 with the shortfall and takes no stock; the
// client repeats the request with confirm_partial set to accept it.
func (h *PrescriptionHandler) AddItem(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req dispenseRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.dispensing.AddItem(c.Request.Context(), &prescription.DispenseCommand{
		PrescriptionID:    id,
		MedicineID:        req.MedicineID,
		RequestedQuantity: req.RequestedQuantity,
		Dosage:            req.Dosage,
		Duration:          req.Duration,
		ConfirmPartial:    req.ConfirmPartial,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondDispense(c, res)
}

func (h *PrescriptionHandler) UpdateItem(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemId")
	if !ok {
		return
	}
	var req itemUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.dispensing.UpdateItem(c.Request.Context(), &prescription.UpdateItemCommand{
		PrescriptionID:    id,
		ItemID:            itemID,
		MedicineID:        req.MedicineID,
		RequestedQuantity: req.RequestedQuantity,
		Dosage:            req.Dosage,
		Duration:          req.Duration,
		ConfirmPartial:    req.ConfirmPartial,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondDispense(c, res)
}

func respondDispense(c *gin.Context, res *prescription.DispenseResult) {
	body := toDispenseResponse(res)
	switch {
	case res.Item == nil:
		respondMessage(c, body, "nothing was dispensed: "+res.Shortfall.String())
	case res.Partial():
		respondMessage(c, body, fmt.Sprintf("partially dispensed %d of %d",
			res.Item.DispensedQuantity, res.Item.RequestedQuantity))
	case res.Merged:
		respondMessage(c, body, "merged into the existing line")
	default:
		respondOK(c, body)
	}
}

func (h *PrescriptionHandler) RemoveItem(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseUUID(c, "itemId")
	if !ok {
		return
	}
	res, err := h.dispensing.RemoveItem(c.Request.Context(), id, itemID, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, res)
}

func (h *PrescriptionHandler) Validate(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	rx, err := h.prescriptions.Validate(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPrescriptionResponse(rx))
}

func (h *PrescriptionHandler) MarkPaid(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	rx, err := h.prescriptions.MarkPaid(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPrescriptionResponse(rx))
}

func (h *PrescriptionHandler) RecordPayment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if !bindJSON(c, &req) {
		return
	}
	pay, err := h.prescriptions.RecordPayment(c.Request.Context(), &prescription.RecordPaymentCommand{
		PrescriptionID: id,
		Method:         req.Method,
		Reference:      req.Reference,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toPaymentResponse(pay))
}

func (h *PrescriptionHandler) CancelPayment(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.prescriptions.CancelPayment(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PrescriptionHandler) PDF(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	doc, err := h.prescriptions.ExportPDF(c.Request.Context(), id, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="prescription-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (h *PrescriptionHandler) ListInteractions(c *gin.Context) {
	found, err := h.prescriptions.ListInteractions(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]interactionResponse, 0, len(found))
	for _, d := range found {
		out = append(out, toInteractionResponse(d))
	}
	respondOK(c, out)
}

func (h *PrescriptionHandler) AddInteraction(c *gin.Context) {
	var req interactionRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.prescriptions.AddInteraction(c.Request.Context(), &prescription.DrugInteraction{
		MedicineA:   req.MedicineA,
		MedicineB:   req.MedicineB,
		Severity:    req.Severity,
		Description: req.Description,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toInteractionResponse(d))
}

func (h *PrescriptionHandler) DeleteInteraction(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.prescriptions.DeleteInteraction(c.Request.Context(), id, callerFrom(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
