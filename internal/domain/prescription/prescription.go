package prescription

import (
	"sort"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prescription owns an ordered list of dispensed line items. Any change to a
// line resets IsValidated so the prescription is re-checked before it is
// finalized.
type Prescription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientID uuid.UUID       `gorm:"column:patient_id;type:uuid;not null;index"`
	Patient   *clinic.Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:RESTRICT"`
	DoctorID  uuid.UUID       `gorm:"column:doctor_id;type:uuid;not null;index"`
	Doctor    *clinic.Doctor  `gorm:"foreignKey:DoctorID;constraint:OnDelete:RESTRICT"`

	PrescriptionDate time.Time `gorm:"column:prescription_date;type:date;not null;index"`
	Notes            string    `gorm:"column:notes;type:text"`

	IsValidated        bool    `gorm:"column:is_validated;not null;default:false"`
	InteractionWarning *string `gorm:"column:interaction_warning;type:text"`
	IsPaid             bool    `gorm:"column:is_paid;not null;default:false;index"`

	Items   []Item   `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:CASCADE"`
	Payment *Payment `gorm:"foreignKey:PrescriptionID;constraint:OnDelete:RESTRICT"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
}

func (Prescription) TableName() string {
	return "pharmacy.prescriptions"
}

// TotalCost sums dispensed quantity times the price snapshot of every line.
// It is computed on each call and never stored.
func (p *Prescription) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Items {
		total = total.Add(p.Items[i].TotalPrice())
	}
	return total
}

// Invalidate forces a fresh validation pass before the prescription is finalized.
func (p *Prescription) Invalidate() {
	p.IsValidated = false
	p.InteractionWarning = nil
}

// MarkValidated records the outcome of a validation pass. An empty warning
// is stored as no warning.
func (p *Prescription) MarkValidated(warning string) {
	p.IsValidated = true
	if warning == "" {
		p.InteractionWarning = nil
		return
	}
	p.InteractionWarning = &warning
}

// MarkPaid moves the prescription to paid and reports whether it changed.
// Calling it on a paid prescription is a no-op.
func (p *Prescription) MarkPaid() bool {
	if p.IsPaid {
		return false
	}
	p.IsPaid = true
	return true
}

// SortItems orders the lines by insertion position.
func (p *Prescription) SortItems() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		return p.Items[i].Position < p.Items[j].Position
	})
}

// ItemFor returns the line dispensing the given batch, if any.
func (p *Prescription) ItemFor(medicineID uuid.UUID) *Item {
	for i := range p.Items {
		if p.Items[i].MedicineID == medicineID {
			return &p.Items[i]
		}
	}
	return nil
}

// NextPosition is the position a newly appended line takes.
func (p *Prescription) NextPosition() int {
	next := 1
	for i := range p.Items {
		if p.Items[i].Position >= next {
			next = p.Items[i].Position + 1
		}
	}
	return next
}

type CreatePrescriptionCommand struct {
	PatientID        uuid.UUID
	DoctorID         uuid.UUID
	PrescriptionDate time.Time
	Notes            string
	CreatedBy        uuid.UUID
}

type UpdatePrescriptionCommand struct {
	PatientID        *uuid.UUID
	DoctorID         *uuid.UUID
	PrescriptionDate *time.Time
	Notes            *string
}

type ListPrescriptionsQuery struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
	Date      *time.Time
	IsPaid    *bool
	Page      int
	PageSize  int
}

type PagedPrescriptions struct {
	Prescriptions []*Prescription
	TotalCount    int64
	Page          int
	PageSize      int
	TotalPages    int
}
