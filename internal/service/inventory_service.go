package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockAlerts groups the batches that need attention.
type StockAlerts struct {
	LowStock   []*inventory.Medicine `json:"low_stock"`
	NearExpiry []*inventory.Medicine `json:"near_expiry"`
	Expired    []*inventory.Medicine `json:"expired"`
}

type InventoryService struct {
	uow          uow.Factory
	audit        *AuditService
	metrics      *metrics.Collector
	log          *zap.Logger
	expiryWindow time.Duration
	now          func() time.Time
}

func NewInventoryService(f uow.Factory, expiryWindow time.Duration, audit *AuditService, m *metrics.Collector, log *zap.Logger) *InventoryService {
	return &InventoryService{uow: f, audit: audit, metrics: m, log: log, expiryWindow: expiryWindow, now: time.Now}
}

func (s *InventoryService) CreateMedicine(ctx context.Context, cmd *inventory.CreateMedicineCommand, caller Caller) (*inventory.Medicine, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	if cmd.Type == "" {
		cmd.Type = inventory.TypePrescription
	}
	m := &inventory.Medicine{
		Name:            strings.TrimSpace(cmd.Name),
		Brand:           strings.TrimSpace(cmd.Brand),
		Category:        cmd.Category,
		Type:            cmd.Type,
		Description:     cmd.Description,
		Dosage:          strings.TrimSpace(cmd.Dosage),
		ImageURL:        cmd.ImageURL,
		CostPrice:       cmd.CostPrice,
		SellingPrice:    cmd.SellingPrice,
		QuantityInStock: cmd.QuantityInStock,
		ReorderLevel:    inventory.DefaultReorderLevel,
		ManufactureDate: cmd.ManufactureDate,
		ExpiryDate:      cmd.ExpiryDate,
		BatchNumber:     strings.TrimSpace(cmd.BatchNumber),
		Supplier:        strings.TrimSpace(cmd.Supplier),
	}
	if cmd.ReorderLevel != nil {
		m.ReorderLevel = *cmd.ReorderLevel
	}
	if m.QuantityInStock < 0 {
		return nil, inventory.ErrNegativeAmount
	}
	if err := validateMedicine(m); err != nil {
		return nil, err
	}

	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if err := u.Medicines().Create(ctx, m); err != nil {
			return err
		}
		return u.MedicineActions().Record(ctx, actionFor(m, inventory.ActionCreated, caller))
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "medicine", m.ID.String()))
	s.log.Info("medicine batch created",
		zap.String("medicine_id", m.ID.String()),
		zap.String("batch", m.BatchNumber),
		zap.Int("stock", m.QuantityInStock),
	)
	return m, nil
}

func (s *InventoryService) GetMedicine(ctx context.Context, id uuid.UUID, caller Caller) (*inventory.Medicine, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var m *inventory.Medicine
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		m, err = u.Medicines().GetByID(ctx, id)
		return err
	})
	return m, err
}

func (s *InventoryService) ListMedicines(ctx context.Context, q *inventory.ListMedicinesQuery, caller Caller) (*inventory.PagedMedicines, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	if q.Category != nil && !q.Category.IsValid() {
		return nil, inventory.ErrInvalidCategory
	}
	if q.Type != nil && !q.Type.IsValid() {
		return nil, inventory.ErrInvalidMedicineType
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	var out *inventory.PagedMedicines
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.Medicines().List(ctx, q)
		return err
	})
	return out, err
}

// UpdateMedicine edits catalogue data. Stock is left to the ledger.
func (s *InventoryService) UpdateMedicine(ctx context.Context, id uuid.UUID, cmd *inventory.UpdateMedicineCommand, caller Caller) (*inventory.Medicine, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var m *inventory.Medicine
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		m, err = u.Medicines().GetByID(ctx, id)
		if err != nil {
			return err
		}
		cmd.Apply(m)
		if err := validateMedicine(m); err != nil {
			return err
		}
		if err := u.Medicines().Update(ctx, m); err != nil {
			return err
		}
		return u.MedicineActions().Record(ctx, actionFor(m, inventory.ActionUpdated, caller))
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "medicine", id.String()))
	return m, nil
}

func (s *InventoryService) DeleteMedicine(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		m, err := u.Medicines().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := u.Medicines().Delete(ctx, id); err != nil {
			return err
		}
		a := actionFor(m, inventory.ActionDeleted, caller)
		a.MedicineID = nil
		return u.MedicineActions().Record(ctx, a)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "medicine", id.String()))
	s.log.Info("medicine batch deleted", zap.String("medicine_id", id.String()))
	return nil
}

func (s *InventoryService) MedicineHistory(ctx context.Context, id uuid.UUID, caller Caller) ([]*inventory.MedicineAction, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var out []*inventory.MedicineAction
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if _, err := u.Medicines().GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		out, err = u.MedicineActions().ListByMedicine(ctx, id)
		return err
	})
	return out, err
}

// RestockMedicine adds delivered units to a batch under the ledger lock.
func (s *InventoryService) RestockMedicine(ctx context.Context, id uuid.UUID, units int, caller Caller) (*inventory.Medicine, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, &ValidationError{Fields: []string{"units: must be at least 1"}}
	}
	var m *inventory.Medicine
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if err := u.Ledger().Release(ctx, id, units); err != nil {
			return err
		}
		var err error
		m, err = u.Medicines().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Stock("medicine", "in", units)
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "medicine_stock", id.String()).with(map[string]any{"units": units}))
	s.log.Info("medicine restocked",
		zap.String("medicine_id", id.String()),
		zap.Int("units", units),
		zap.Int("stock", m.QuantityInStock),
	)
	return m, nil
}

// Alerts lists batches at or below their reorder level and batches that are
// expired or about to expire. It also refreshes the low-stock gauge.
func (s *InventoryService) Alerts(ctx context.Context, caller Caller) (*StockAlerts, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	alerts := &StockAlerts{}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		low, err := u.Medicines().LowStock(ctx)
		if err != nil {
			return err
		}
		alerts.LowStock = low

		expiring, err := u.Medicines().ExpiringBefore(ctx, now.Add(s.expiryWindow+24*time.Hour))
		if err != nil {
			return err
		}
		for _, m := range expiring {
			switch {
			case m.IsExpired(now):
				alerts.Expired = append(alerts.Expired, m)
			case m.IsNearExpiry(now, s.expiryWindow):
				alerts.NearExpiry = append(alerts.NearExpiry, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.SetLowStock(len(alerts.LowStock))
	return alerts, nil
}

func (s *InventoryService) CreateProduct(ctx context.Context, cmd *inventory.CreateProductCommand, caller Caller) (*inventory.NonMedicalProduct, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	p := &inventory.NonMedicalProduct{
		Name:            strings.TrimSpace(cmd.Name),
		Brand:           strings.TrimSpace(cmd.Brand),
		Category:        strings.TrimSpace(cmd.Category),
		Description:     cmd.Description,
		ImageURL:        cmd.ImageURL,
		CostPrice:       cmd.CostPrice,
		SellingPrice:    cmd.SellingPrice,
		QuantityInStock: cmd.QuantityInStock,
	}
	if p.QuantityInStock < 0 {
		return nil, inventory.ErrNegativeAmount
	}
	if err := validateGoods(p); err != nil {
		return nil, err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.NonMedical().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "non_medical_product", p.ID.String()))
	return p, nil
}

func (s *InventoryService) GetProduct(ctx context.Context, id uuid.UUID, caller Caller) (*inventory.NonMedicalProduct, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var p *inventory.NonMedicalProduct
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		p, err = u.NonMedical().GetByID(ctx, id)
		return err
	})
	return p, err
}

func (s *InventoryService) ListProducts(ctx context.Context, search string, caller Caller) ([]*inventory.NonMedicalProduct, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var out []*inventory.NonMedicalProduct
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.NonMedical().List(ctx, search)
		return err
	})
	return out, err
}

func (s *InventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, cmd *inventory.UpdateProductCommand, caller Caller) (*inventory.NonMedicalProduct, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	var p *inventory.NonMedicalProduct
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		p, err = u.NonMedical().GetByID(ctx, id)
		if err != nil {
			return err
		}
		cmd.Apply(p)
		if err := validateGoods(p); err != nil {
			return err
		}
		return u.NonMedical().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "non_medical_product", id.String()))
	return p, nil
}

func (s *InventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.NonMedical().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "non_medical_product", id.String()))
	return nil
}

func (s *InventoryService) RestockProduct(ctx context.Context, id uuid.UUID, units int, caller Caller) (*inventory.NonMedicalProduct, error) {
	if err := caller.allow(dispensers...); err != nil {
		return nil, err
	}
	if units < 1 {
		return nil, &ValidationError{Fields: []string{"units: must be at least 1"}}
	}
	var p *inventory.NonMedicalProduct
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if err := u.GoodsLedger().Release(ctx, id, units); err != nil {
			return err
		}
		var err error
		p, err = u.NonMedical().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Stock("goods", "in", units)
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "non_medical_stock", id.String()).with(map[string]any{"units": units}))
	return p, nil
}

func actionFor(m *inventory.Medicine, action inventory.Action, caller Caller) *inventory.MedicineAction {
	id := m.ID
	a := &inventory.MedicineAction{
		MedicineID:   &id,
		MedicineName: m.Name,
		BatchNumber:  m.BatchNumber,
		Action:       action,
	}
	if caller.ID != uuid.Nil {
		uid := caller.ID
		a.UserID = &uid
	}
	return a
}

func validateMedicine(m *inventory.Medicine) error {
	if !m.Category.IsValid() {
		return inventory.ErrInvalidCategory
	}
	if !m.Type.IsValid() {
		return inventory.ErrInvalidMedicineType
	}
	if !m.ExpiryDate.After(m.ManufactureDate) {
		return inventory.ErrExpiryBeforeManufacture
	}

	var errs []string
	required := map[string]string{
		"name":         m.Name,
		"brand":        m.Brand,
		"dosage":       m.Dosage,
		"batch_number": m.BatchNumber,
		"supplier":     m.Supplier,
	}
	for _, field := range []string{"name", "brand", "dosage", "batch_number", "supplier"} {
		if strings.TrimSpace(required[field]) == "" {
			errs = append(errs, field+" is required")
		}
	}
	if m.ManufactureDate.IsZero() {
		errs = append(errs, "manufacture_date is required")
	}
	errs = append(errs, priceErrors(m.CostPrice, m.SellingPrice)...)
	if m.ReorderLevel < 0 {
		errs = append(errs, "reorder_level: must not be negative")
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateGoods(p *inventory.NonMedicalProduct) error {
	var errs []string
	if p.Name == "" {
		errs = append(errs, "name is required")
	}
	errs = append(errs, priceErrors(p.CostPrice, p.SellingPrice)...)
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func priceErrors(cost, selling decimal.Decimal) []string {
	var errs []string
	if cost.IsNegative() {
		errs = append(errs, fmt.Sprintf("cost_price: %s must not be negative", cost.String()))
	}
	if selling.IsNegative() {
		errs = append(errs, fmt.Sprintf("selling_price: %s must not be negative", selling.String()))
	}
	return errs
}
