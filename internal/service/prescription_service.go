package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/export"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type PrescriptionService struct {
	uow        uow.Factory
	audit      *AuditService
	metrics    *metrics.Collector
	log        *zap.Logger
	letterhead export.Letterhead
	now        func() time.Time
}

func NewPrescriptionService(f uow.Factory, letterhead export.Letterhead, audit *AuditService, m *metrics.Collector, log *zap.Logger) *PrescriptionService {
	return &PrescriptionService{uow: f, audit: audit, metrics: m, log: log, letterhead: letterhead, now: time.Now}
}

func (s *PrescriptionService) Create(ctx context.Context, cmd *prescription.CreatePrescriptionCommand, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var errs []string
	if cmd.PatientID == uuid.Nil {
		errs = append(errs, "patient_id is required")
	}
	if cmd.DoctorID == uuid.Nil {
		errs = append(errs, "doctor_id is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	if cmd.PrescriptionDate.IsZero() {
		cmd.PrescriptionDate = s.now().UTC()
	}

	rx := &prescription.Prescription{
		PatientID:        cmd.PatientID,
		DoctorID:         cmd.DoctorID,
		PrescriptionDate: cmd.PrescriptionDate,
		Notes:            strings.TrimSpace(cmd.Notes),
		CreatedBy:        caller.ID,
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if err := u.Prescriptions().Create(ctx, rx); err != nil {
			return err
		}
		created, err := u.Prescriptions().GetByID(ctx, rx.ID)
		if err != nil {
			return err
		}
		rx = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PrescriptionCreated()
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "prescription", rx.ID.String()))
	s.log.Info("prescription created",
		zap.String("prescription_id", rx.ID.String()),
		zap.String("patient_id", rx.PatientID.String()),
		zap.String("doctor_id", rx.DoctorID.String()),
	)
	return rx, nil
}

func (s *PrescriptionService) Get(ctx context.Context, id uuid.UUID, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var rx *prescription.Prescription
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		rx, err = u.Prescriptions().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionRead, "prescription", id.String()))
	return rx, nil
}

func (s *PrescriptionService) List(ctx context.Context, q *prescription.ListPrescriptionsQuery, caller Caller) (*prescription.PagedPrescriptions, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	var out *prescription.PagedPrescriptions
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.Prescriptions().List(ctx, q)
		return err
	})
	return out, err
}

// UpdateDetails changes the header. The prescription must be validated again.
func (s *PrescriptionService) UpdateDetails(ctx context.Context, id uuid.UUID, cmd *prescription.UpdatePrescriptionCommand, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var rx *prescription.Prescription
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		rx, err = u.Prescriptions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cmd.PatientID != nil {
			rx.PatientID = *cmd.PatientID
		}
		if cmd.DoctorID != nil {
			rx.DoctorID = *cmd.DoctorID
		}
		if cmd.PrescriptionDate != nil {
			rx.PrescriptionDate = *cmd.PrescriptionDate
		}
		if cmd.Notes != nil {
			rx.Notes = strings.TrimSpace(*cmd.Notes)
		}
		rx.Invalidate()
		if err := u.Prescriptions().Update(ctx, rx); err != nil {
			return err
		}
		rx, err = u.Prescriptions().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "prescription", id.String()))
	return rx, nil
}

// Delete removes an unpaid prescription and returns every line's dispensed
// stock. A prescription with a payment is never touched.
func (s *PrescriptionService) Delete(ctx context.Context, id uuid.UUID, caller Caller) (err error) {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	ctx, span := startSpan(ctx, "PrescriptionService.Delete", trace.WithAttributes(
		attribute.String("prescription.id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	returned := 0
	err = uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		rx, err := u.Prescriptions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rx.Payment != nil {
			return prescription.ErrPaymentExists
		}
		for i := range rx.Items {
			line := &rx.Items[i]
			if err := u.Ledger().Release(ctx, line.MedicineID, line.DispensedQuantity); err != nil {
				return fmt.Errorf("releasing stock: %w", err)
			}
			returned += line.DispensedQuantity
		}
		return u.Prescriptions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.metrics.Stock("medicine", "in", returned)
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "prescription", id.String()))
	s.log.Info("prescription deleted",
		zap.String("prescription_id", id.String()),
		zap.Int("units_returned", returned),
	)
	return nil
}

// MarkPaid flags the prescription paid without recording a payment.
func (s *PrescriptionService) MarkPaid(ctx context.Context, id uuid.UUID, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var rx *prescription.Prescription
	changed := false
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		rx, err = u.Prescriptions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if changed = rx.MarkPaid(); !changed {
			return nil
		}
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "prescription", id.String()))
	}
	return rx, nil
}

// RecordPayment settles the prescription for its current total cost.
func (s *PrescriptionService) RecordPayment(ctx context.Context, cmd *prescription.RecordPaymentCommand, caller Caller) (*prescription.Payment, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	if !cmd.Method.IsValid() {
		return nil, prescription.ErrInvalidPaymentMethod
	}

	var pay *prescription.Payment
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		rx, err := u.Prescriptions().GetForUpdate(ctx, cmd.PrescriptionID)
		if err != nil {
			return err
		}
		if rx.Payment != nil {
			return prescription.ErrAlreadyPaid
		}
		total := rx.TotalCost()
		if !total.IsPositive() {
			return prescription.ErrEmptyPrescription
		}
		pay = &prescription.Payment{
			PrescriptionID: rx.ID,
			Amount:         total,
			Method:         cmd.Method,
			Reference:      strings.TrimSpace(cmd.Reference),
			ReceivedBy:     caller.ID,
		}
		if err := u.Payments().Create(ctx, pay); err != nil {
			return err
		}
		rx.MarkPaid()
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Payment(string(pay.Method))
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "payment", pay.ID.String()).with(map[string]any{
		"prescription_id": cmd.PrescriptionID,
		"amount":          pay.Amount.StringFixed(2),
		"method":          pay.Method,
	}))
	s.log.Info("payment recorded",
		zap.String("prescription_id", cmd.PrescriptionID.String()),
		zap.String("amount", pay.Amount.StringFixed(2)),
		zap.String("method", string(pay.Method)),
	)
	return pay, nil
}

// CancelPayment deletes the payment and marks the prescription unpaid, which
// makes it deletable again.
func (s *PrescriptionService) CancelPayment(ctx context.Context, prescriptionID uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	var paymentID uuid.UUID
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		rx, err := u.Prescriptions().GetForUpdate(ctx, prescriptionID)
		if err != nil {
			return err
		}
		pay, err := u.Payments().GetByPrescription(ctx, rx.ID)
		if err != nil {
			return err
		}
		paymentID = pay.ID
		if err := u.Payments().Delete(ctx, pay.ID); err != nil {
			return err
		}
		rx.IsPaid = false
		rx.Payment = nil
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "payment", paymentID.String()))
	s.log.Info("payment cancelled", zap.String("prescription_id", prescriptionID.String()))
	return nil
}

// Validate checks the line medicines against known interactions and marks
// the prescription validated with any warning found.
func (s *PrescriptionService) Validate(ctx context.Context, id uuid.UUID, caller Caller) (*prescription.Prescription, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var rx *prescription.Prescription
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		rx, err = u.Prescriptions().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(rx.Items))
		for i := range rx.Items {
			if m := rx.Items[i].Medicine; m != nil {
				names = append(names, m.Name)
			}
		}
		found, err := u.Interactions().FindAmong(ctx, names)
		if err != nil {
			return err
		}
		rx.MarkValidated(prescription.InteractionWarning(found))
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "prescription", id.String()))
	if rx.InteractionWarning != nil {
		s.log.Warn("prescription has interaction warnings",
			zap.String("prescription_id", id.String()),
			zap.String("warning", *rx.InteractionWarning),
		)
	}
	return rx, nil
}

// ExportPDF renders the prescription as a printable document.
func (s *PrescriptionService) ExportPDF(ctx context.Context, id uuid.UUID, caller Caller) (_ []byte, err error) {
	rx, err := s.Get(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	_, span := startSpan(ctx, "PrescriptionService.ExportPDF", trace.WithAttributes(
		attribute.String("prescription.id", id.String()),
		attribute.Int("items", len(rx.Items)),
	))
	defer func() { endSpan(span, err) }()

	var buf bytes.Buffer
	if err := export.PrescriptionPDF(&buf, rx, s.letterhead, s.now().UTC()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *PrescriptionService) AddInteraction(ctx context.Context, d *prescription.DrugInteraction, caller Caller) (*prescription.DrugInteraction, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var errs []string
	if strings.TrimSpace(d.MedicineA) == "" || strings.TrimSpace(d.MedicineB) == "" {
		errs = append(errs, "medicine_a, medicine_b: both names are required")
	} else if strings.EqualFold(strings.TrimSpace(d.MedicineA), strings.TrimSpace(d.MedicineB)) {
		errs = append(errs, "medicine_b: must differ from medicine_a")
	}
	switch d.Severity {
	case prescription.SeverityMinor, prescription.SeverityModerate, prescription.SeverityMajor:
	default:
		errs = append(errs, "severity: must be minor, moderate or major")
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, "description is required")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.Interactions().Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "drug_interaction", d.ID.String()))
	return d, nil
}

func (s *PrescriptionService) ListInteractions(ctx context.Context, caller Caller) ([]*prescription.DrugInteraction, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var out []*prescription.DrugInteraction
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.Interactions().List(ctx)
		return err
	})
	return out, err
}

func (s *PrescriptionService) DeleteInteraction(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.Interactions().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "drug_interaction", id.String()))
	return nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
