// Package uow defines the transaction boundary shared by every workflow that
// touches stock. A UnitOfWork hands out repositories bound to one
// transaction; a ledger row locked through it stays locked until Commit or
// Rollback.
package uow

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
)

var ErrFinished = errors.New("unit of work already committed or rolled back")

type UnitOfWork interface {
	// Ledger moves medicine batch stock.
	Ledger() inventory.Ledger
	// GoodsLedger moves non-medical product stock.
	GoodsLedger() inventory.Ledger

	Medicines() inventory.Repository
	MedicineActions() inventory.ActionRepository
	NonMedical() inventory.ProductRepository

	Patients() clinic.PatientRepository
	Doctors() clinic.DoctorRepository

	Prescriptions() prescription.Repository
	Items() prescription.ItemRepository
	Payments() prescription.PaymentRepository
	Interactions() prescription.InteractionRepository

	Products() storefront.ProductRepository
	Carts() storefront.CartRepository
	Orders() storefront.OrderRepository

	Commit() error
	// Rollback is a no-op after Commit.
	Rollback() error
}

type Factory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// Do runs fn inside a new unit of work. It commits when fn returns nil and
// rolls back otherwise, returning fn's error unchanged.
func Do(ctx context.Context, f Factory, fn func(UnitOfWork) error) (err error) {
	u, err := f.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning unit of work: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = u.Rollback()
			panic(p)
		}
	}()

	if err := fn(u); err != nil {
		_ = u.Rollback()
		return err
	}

	if err := u.Commit(); err != nil {
		return fmt.Errorf("committing unit of work: %w", err)
	}
	return nil
}
