package clinic

import (
	"context"

	"github.com/google/uuid"
)

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	Update(ctx context.Context, p *Patient) error

	// Delete returns ErrHasPrescriptions while any prescription references the patient.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, q *ListQuery) (*PagedPatients, error)
}

type DoctorRepository interface {
	// Create returns ErrMedicalCodeTaken on a duplicate medical code.
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *ListQuery) (*PagedDoctors, error)
}
