package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new batch. Returns ErrBatchNumberTaken on duplicate batch numbers.
	Create(ctx context.Context, m *Medicine) error

	// GetByID returns ErrMedicineNotFound if the batch does not exist.
	// The returned stock figure is informational only; decisions on stock go
	// through the Ledger.
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)

	GetByBatchNumber(ctx context.Context, batchNumber string) (*Medicine, error)

	// Update writes catalogue fields. QuantityInStock is never written here.
	Update(ctx context.Context, m *Medicine) error

	// Delete returns ErrMedicineInUse if a prescription line references the batch.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, q *ListMedicinesQuery) (*PagedMedicines, error)

	// LowStock returns batches at or below their reorder level.
	LowStock(ctx context.Context) ([]*Medicine, error)

	// ExpiringBefore returns batches whose expiry date is before the cutoff, oldest first.
	ExpiringBefore(ctx context.Context, cutoff time.Time) ([]*Medicine, error)
}

type ActionRepository interface {
	Record(ctx context.Context, a *MedicineAction) error
	ListByMedicine(ctx context.Context, medicineID uuid.UUID) ([]*MedicineAction, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *NonMedicalProduct) error
	GetByID(ctx context.Context, id uuid.UUID) (*NonMedicalProduct, error)
	Update(ctx context.Context, p *NonMedicalProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]*NonMedicalProduct, error)
}
