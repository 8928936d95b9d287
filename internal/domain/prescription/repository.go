package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error

	// GetByID loads the prescription with its items (ordered by position,
	// each with its medicine), patient, doctor and payment.
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)

	// GetForUpdate locks the prescription row until the unit of work ends
	// and then loads it like GetByID. Every write to a prescription or its
	// items starts here, so the header is always locked before its items
	// and before any stock row.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Prescription, error)

	// Update writes header fields and the validation/payment flags.
	Update(ctx context.Context, p *Prescription) error

	// Delete returns ErrPaymentExists when a payment references the prescription.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, q *ListPrescriptionsQuery) (*PagedPrescriptions, error)

	// ExistsForPatient and ExistsForDoctor back referential protection of clinic records.
	ExistsForPatient(ctx context.Context, patientID uuid.UUID) (bool, error)
	ExistsForDoctor(ctx context.Context, doctorID uuid.UUID) (bool, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, prescriptionID, itemID uuid.UUID) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, item *Item) error
}

type PaymentRepository interface {
	// Create returns ErrAlreadyPaid when the prescription already has a payment.
	Create(ctx context.Context, p *Payment) error
	GetByPrescription(ctx context.Context, prescriptionID uuid.UUID) (*Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type InteractionRepository interface {
	Create(ctx context.Context, d *DrugInteraction) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*DrugInteraction, error)
	// FindAmong returns the interactions whose both sides are in names.
	// Names are compared lower-cased.
	FindAmong(ctx context.Context, names []string) ([]*DrugInteraction, error)
}
