// Package postgres implements the repositories over gorm. Every repository
// of a unit of work shares one *gorm.DB transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"gorm.io/gorm"
)

// Factory implements uow.Factory.
type Factory struct {
	db *gorm.DB
}

func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

func (f *Factory) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("beginning transaction: %w", tx.Error)
	}
	return &unit{tx: tx}, nil
}

type unit struct {
	tx   *gorm.DB
	done bool
}

func (u *unit) Commit() error {
	if u.done {
		return uow.ErrFinished
	}
	u.done = true
	return u.tx.Commit().Error
}

func (u *unit) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, gorm.ErrInvalidTransaction) {
		return err
	}
	return nil
}

func (u *unit) Ledger() inventory.Ledger {
	return &ledger{db: u.tx, table: inventory.Medicine{}.TableName(), notFound: inventory.ErrMedicineNotFound}
}

func (u *unit) GoodsLedger() inventory.Ledger {
	return &ledger{db: u.tx, table: inventory.NonMedicalProduct{}.TableName(), notFound: inventory.ErrProductNotFound}
}

func (u *unit) Medicines() inventory.Repository             { return &MedicineRepository{db: u.tx} }
func (u *unit) MedicineActions() inventory.ActionRepository { return &ActionRepository{db: u.tx} }
func (u *unit) NonMedical() inventory.ProductRepository     { return &GoodsRepository{db: u.tx} }
func (u *unit) Patients() clinic.PatientRepository          { return &PatientRepository{db: u.tx} }
func (u *unit) Doctors() clinic.DoctorRepository            { return &DoctorRepository{db: u.tx} }
func (u *unit) Prescriptions() prescription.Repository      { return &PrescriptionRepository{db: u.tx} }
func (u *unit) Items() prescription.ItemRepository          { return &ItemRepository{db: u.tx} }
func (u *unit) Payments() prescription.PaymentRepository    { return &PaymentRepository{db: u.tx} }
func (u *unit) Interactions() prescription.InteractionRepository {
	return &InteractionRepository{db: u.tx}
}
func (u *unit) Products() storefront.ProductRepository { return &ProductRepository{db: u.tx} }
func (u *unit) Carts() storefront.CartRepository       { return &CartRepository{db: u.tx} }
func (u *unit) Orders() storefront.OrderRepository     { return &OrderRepository{db: u.tx} }

func normalizePage(page, size int) (int, int) {
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}
	return page, size
}

func totalPages(count int64, size int) int {
	return int((count + int64(size) - 1) / int64(size))
}
