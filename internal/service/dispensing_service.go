package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Dispense outcomes as reported to metrics.
const (
	outcomeFull      = "full"
	outcomePartial   = "partial"
	outcomeShortfall = "shortfall"
)

// DispensingService reconciles prescription lines with batch stock. Every
// line write and its ledger movement share one unit of work, so a line's
// dispensed quantity always equals the net stock taken for it.
type DispensingService struct {
	uow     uow.Factory
	audit   *AuditService
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewDispensingService(f uow.Factory, audit *AuditService, m *metrics.Collector, log *zap.Logger) *DispensingService {
	return &DispensingService{uow: f, audit: audit, metrics: m, log: log}
}

// AddItem dispenses a medicine onto a prescription. When stock cannot cover
// the request and ConfirmPartial is not set, nothing is taken and an
// *prescription.InsufficientStockError describes what is available. A batch
// already on the prescription is merged into its existing line.
func (s *DispensingService) AddItem(ctx context.Context, cmd *prescription.DispenseCommand, caller Caller) (res *prescription.DispenseResult, err error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	if cmd.RequestedQuantity < 1 {
		return nil, prescription.ErrInvalidQuantity
	}
	cmd.Dosage = strings.TrimSpace(cmd.Dosage)
	cmd.Duration = strings.TrimSpace(cmd.Duration)
	if err := validateInstructions(cmd.Dosage, cmd.Duration); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "DispensingService.AddItem", trace.WithAttributes(
		attribute.String("prescription.id", cmd.PrescriptionID.String()),
		attribute.String("medicine.id", cmd.MedicineID.String()),
		attribute.Int("quantity.requested", cmd.RequestedQuantity),
	))
	defer func() { endSpan(span, err) }()

	var committed int
	err = uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		rx, err := u.Prescriptions().GetForUpdate(ctx, cmd.PrescriptionID)
		if err != nil {
			return err
		}
		med, err := u.Medicines().GetByID(ctx, cmd.MedicineID)
		if err != nil {
			return err
		}

		committed, err = u.Ledger().Reserve(ctx, med.ID, cmd.RequestedQuantity)
		if err != nil {
			return fmt.Errorf("reserving stock: %w", err)
		}

		var shortfall *prescription.Shortfall
		if committed < cmd.RequestedQuantity {
			sf := shortfallFor(med, committed, cmd.RequestedQuantity)
			if !cmd.ConfirmPartial {
				if err := u.Ledger().Release(ctx, med.ID, committed); err != nil {
					return fmt.Errorf("releasing stock: %w", err)
				}
				committed = 0
				return &prescription.InsufficientStockError{Shortfall: sf}
			}
			shortfall = &sf
			if committed == 0 {
				res = &prescription.DispenseResult{Shortfall: shortfall}
				return nil
			}
		}

		res = &prescription.DispenseResult{Shortfall: shortfall}
		if line := rx.ItemFor(med.ID); line != nil {
			line.RequestedQuantity += cmd.RequestedQuantity
			line.DispensedQuantity += committed
			line.Dosage = cmd.Dosage
			line.Duration = cmd.Duration
			if err := u.Items().Update(ctx, line); err != nil {
				return err
			}
			res.Item = line
			res.Merged = true
		} else {
			line := &prescription.Item{
				PrescriptionID:    rx.ID,
				MedicineID:        med.ID,
				Position:          rx.NextPosition(),
				RequestedQuantity: cmd.RequestedQuantity,
				DispensedQuantity: committed,
				Dosage:            cmd.Dosage,
				Duration:          cmd.Duration,
				UnitPrice:         med.SellingPrice,
			}
			if err := u.Items().Create(ctx, line); err != nil {
				return err
			}
			res.Item = line
		}
		res.Item.Medicine = med

		rx.Invalidate()
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		if _, ok := asInsufficient(err); ok {
			s.metrics.Dispense(outcomeShortfall)
		}
		return nil, err
	}

	s.metrics.Stock("medicine", "out", committed)
	switch {
	case res.Item == nil:
		s.metrics.Dispense(outcomeShortfall)
	case res.Partial():
		s.metrics.Dispense(outcomePartial)
	default:
		s.metrics.Dispense(outcomeFull)
	}

	if res.Item != nil {
		s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "prescription_item", res.Item.ID.String()).with(map[string]any{
			"prescription_id": cmd.PrescriptionID,
			"medicine_id":     cmd.MedicineID,
			"requested":       cmd.RequestedQuantity,
			"dispensed":       committed,
			"merged":          res.Merged,
		}))
	}
	s.log.Info("medicine dispensed",
		zap.String("prescription_id", cmd.PrescriptionID.String()),
		zap.String("medicine_id", cmd.MedicineID.String()),
		zap.Int("requested", cmd.RequestedQuantity),
		zap.Int("committed", committed),
		zap.Bool("merged", res.Merged),
	)
	return res, nil
}

// UpdateItem changes a line's requested quantity and instructions. Raising
// the quantity reserves only the difference; lowering it returns the excess
// to stock. The batch of a line never changes.
func (s *DispensingService) UpdateItem(ctx context.Context, cmd *prescription.UpdateItemCommand, caller Caller) (res *prescription.DispenseResult, err error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	if cmd.RequestedQuantity < 1 {
		return nil, prescription.ErrInvalidQuantity
	}

	ctx, span := startSpan(ctx, "DispensingService.UpdateItem", trace.WithAttributes(
		attribute.String("prescription.id", cmd.PrescriptionID.String()),
		attribute.String("item.id", cmd.ItemID.String()),
		attribute.Int("quantity.requested", cmd.RequestedQuantity),
	))
	defer func() { endSpan(span, err) }()

	var reserved, released int
	err = uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		rx, err := u.Prescriptions().GetForUpdate(ctx, cmd.PrescriptionID)
		if err != nil {
			return err
		}
		line, err := u.Items().GetByID(ctx, rx.ID, cmd.ItemID)
		if err != nil {
			return err
		}
		if cmd.MedicineID != nil && *cmd.MedicineID != line.MedicineID {
			return prescription.ErrBatchImmutable
		}
		if cmd.Dosage != nil {
			line.Dosage = strings.TrimSpace(*cmd.Dosage)
		}
		if cmd.Duration != nil {
			line.Duration = strings.TrimSpace(*cmd.Duration)
		}
		if err := validateInstructions(line.Dosage, line.Duration); err != nil {
			return err
		}

		prior := line.DispensedQuantity
		delta := cmd.RequestedQuantity - prior
		res = &prescription.DispenseResult{}

		if delta > 0 {
			committed, err := u.Ledger().Reserve(ctx, line.MedicineID, delta)
			if err != nil {
				return fmt.Errorf("reserving stock: %w", err)
			}
			if committed < delta {
				sf := shortfallFor(line.Medicine, prior+committed, cmd.RequestedQuantity)
				if !cmd.ConfirmPartial {
					if err := u.Ledger().Release(ctx, line.MedicineID, committed); err != nil {
						return fmt.Errorf("releasing stock: %w", err)
					}
					return &prescription.InsufficientStockError{Shortfall: sf}
				}
				res.Shortfall = &sf
			}
			reserved = committed
			line.DispensedQuantity = prior + committed
		} else {
			if err := u.Ledger().Release(ctx, line.MedicineID, -delta); err != nil {
				return fmt.Errorf("releasing stock: %w", err)
			}
			released = -delta
			line.DispensedQuantity = cmd.RequestedQuantity
		}
		line.RequestedQuantity = cmd.RequestedQuantity

		if err := u.Items().Update(ctx, line); err != nil {
			return err
		}
		res.Item = line

		rx.Invalidate()
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		if _, ok := asInsufficient(err); ok {
			s.metrics.Dispense(outcomeShortfall)
		}
		return nil, err
	}

	s.metrics.Stock("medicine", "out", reserved)
	s.metrics.Stock("medicine", "in", released)
	if res.Partial() {
		s.metrics.Dispense(outcomePartial)
	} else {
		s.metrics.Dispense(outcomeFull)
	}

	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "prescription_item", res.Item.ID.String()).with(map[string]any{
		"prescription_id": cmd.PrescriptionID,
		"requested":       res.Item.RequestedQuantity,
		"dispensed":       res.Item.DispensedQuantity,
		"reserved":        reserved,
		"released":        released,
	}))
	s.log.Info("prescription item updated",
		zap.String("prescription_id", cmd.PrescriptionID.String()),
		zap.String("item_id", cmd.ItemID.String()),
		zap.Int("requested", res.Item.RequestedQuantity),
		zap.Int("dispensed", res.Item.DispensedQuantity),
	)
	return res, nil
}

// RemoveItem deletes a line and returns everything it dispensed to stock.
func (s *DispensingService) RemoveItem(ctx context.Context, prescriptionID, itemID uuid.UUID, caller Caller) (res *prescription.RemovalResult, err error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "DispensingService.RemoveItem", trace.WithAttributes(
		attribute.String("prescription.id", prescriptionID.String()),
		attribute.String("item.id", itemID.String()),
	))
	defer func() { endSpan(span, err) }()

	err = uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		rx, err := u.Prescriptions().GetForUpdate(ctx, prescriptionID)
		if err != nil {
			return err
		}
		line, err := u.Items().GetByID(ctx, rx.ID, itemID)
		if err != nil {
			return err
		}
		if err := u.Ledger().Release(ctx, line.MedicineID, line.DispensedQuantity); err != nil {
			return fmt.Errorf("releasing stock: %w", err)
		}
		if err := u.Items().Delete(ctx, line); err != nil {
			return err
		}

		res = &prescription.RemovalResult{ItemID: line.ID, ReturnedQuantity: line.DispensedQuantity}
		if line.Medicine != nil {
			res.MedicineName = line.Medicine.Name
		}

		rx.Invalidate()
		return u.Prescriptions().Update(ctx, rx)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Stock("medicine", "in", res.ReturnedQuantity)
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "prescription_item", itemID.String()).with(map[string]any{
		"prescription_id": prescriptionID,
		"returned":        res.ReturnedQuantity,
	}))
	s.log.Info("prescription item removed",
		zap.String("prescription_id", prescriptionID.String()),
		zap.String("item_id", itemID.String()),
		zap.Int("returned", res.ReturnedQuantity),
	)
	return res, nil
}

func shortfallFor(med *inventory.Medicine, available, requested int) prescription.Shortfall {
	sf := prescription.Shortfall{Available: available, Requested: requested}
	if med != nil {
		sf.MedicineID = med.ID
		sf.MedicineName = med.Name
		sf.BatchNumber = med.BatchNumber
	}
	return sf
}

func validateInstructions(dosage, duration string) error {
	var errs []string
	if dosage == "" {
		errs = append(errs, "dosage is required")
	}
	if duration == "" {
		errs = append(errs, "duration is required")
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
