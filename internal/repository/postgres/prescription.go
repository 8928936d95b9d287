package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func withPrescriptionRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Items.Medicine").
		Preload("Patient").
		Preload("Doctor").
		Preload("Payment")
}

type PrescriptionRepository struct {
	db *gorm.DB
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *prescription.Prescription) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return referencedClinicRecord(err)
		}
		return fmt.Errorf("inserting prescription: %w", err)
	}
	return nil
}

// referencedClinicRecord names the missing side of a failed patient or
// doctor reference.
func referencedClinicRecord(err error) error {
	if strings.Contains(err.Error(), "doctor") {
		return clinic.ErrDoctorNotFound
	}
	return clinic.ErrPatientNotFound
}

func (r *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var p prescription.Prescription
	err := withPrescriptionRelations(r.db.WithContext(ctx)).Where("id = ?", id).Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("fetching prescription: %w", err)
	}
	return &p, nil
}

// GetForUpdate takes the row lock before loading so the preloaded items and
// payment are read after any competing writer has committed.
func (r *PrescriptionRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	var row struct{ ID uuid.UUID }
	err := r.db.WithContext(ctx).
		Model(&prescription.Prescription{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrPrescriptionNotFound
		}
		return nil, fmt.Errorf("locking prescription: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *PrescriptionRepository) Update(ctx context.Context, p *prescription.Prescription) error {
	res := r.db.WithContext(ctx).
		Model(&prescription.Prescription{ID: p.ID}).
		Updates(map[string]any{
			"patient_id":          p.PatientID,
			"doctor_id":           p.DoctorID,
			"prescription_date":   p.PrescriptionDate,
			"notes":               p.Notes,
			"is_validated":        p.IsValidated,
			"interaction_warning": p.InteractionWarning,
			"is_paid":             p.IsPaid,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return referencedClinicRecord(res.Error)
		}
		return fmt.Errorf("updating prescription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}

func (r *PrescriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var payments int64
	err := r.db.WithContext(ctx).Model(&prescription.Payment{}).Where("prescription_id = ?", id).Count(&payments).Error
	if err != nil {
		return fmt.Errorf("checking payments: %w", err)
	}
	if payments > 0 {
		return prescription.ErrPaymentExists
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&prescription.Prescription{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return prescription.ErrPaymentExists
		}
		return fmt.Errorf("deleting prescription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPrescriptionNotFound
	}
	return nil
}

func (r *PrescriptionRepository) List(ctx context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	db := r.db.WithContext(ctx).Model(&prescription.Prescription{})

	if q.PatientID != nil {
		db = db.Where("patient_id = ?", *q.PatientID)
	}
	if q.DoctorID != nil {
		db = db.Where("doctor_id = ?", *q.DoctorID)
	}
	if q.Date != nil {
		db = db.Where("prescription_date = ?", q.Date.Format("2006-01-02"))
	}
	if q.IsPaid != nil {
		db = db.Where("is_paid = ?", *q.IsPaid)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting prescriptions: %w", err)
	}

	var out []*prescription.Prescription
	err := withPrescriptionRelations(db).
		Order("prescription_date DESC, created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing prescriptions: %w", err)
	}

	return &prescription.PagedPrescriptions{
		Prescriptions: out,
		TotalCount:    total,
		Page:          page,
		PageSize:      size,
		TotalPages:    totalPages(total, size),
	}, nil
}

func (r *PrescriptionRepository) ExistsForPatient(ctx context.Context, patientID uuid.UUID) (bool, error) {
	return r.exists(ctx, "patient_id", patientID)
}

func (r *PrescriptionRepository) ExistsForDoctor(ctx context.Context, doctorID uuid.UUID) (bool, error) {
	return r.exists(ctx, "doctor_id", doctorID)
}

func (r *PrescriptionRepository) exists(ctx context.Context, column string, id uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&prescription.Prescription{}).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: id}).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking prescriptions: %w", err)
	}
	return n > 0, nil
}

type ItemRepository struct {
	db *gorm.DB
}

func (r *ItemRepository) Create(ctx context.Context, item *prescription.Item) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return prescription.ErrDuplicateItem
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return inventory.ErrMedicineNotFound
		}
		return fmt.Errorf("inserting prescription item: %w", err)
	}
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, prescriptionID, itemID uuid.UUID) (*prescription.Item, error) {
	var item prescription.Item
	err := r.db.WithContext(ctx).
		Preload("Medicine").
		Where("id = ? AND prescription_id = ?", itemID, prescriptionID).
		Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrItemNotFound
		}
		return nil, fmt.Errorf("fetching prescription item: %w", err)
	}
	return &item, nil
}

func (r *ItemRepository) Update(ctx context.Context, item *prescription.Item) error {
	res := r.db.WithContext(ctx).
		Model(&prescription.Item{ID: item.ID}).
		Updates(map[string]any{
			"requested_quantity": item.RequestedQuantity,
			"dispensed_quantity": item.DispensedQuantity,
			"dosage":             item.Dosage,
			"duration":           item.Duration,
		})
	if res.Error != nil {
		return fmt.Errorf("updating prescription item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, item *prescription.Item) error {
	res := r.db.WithContext(ctx).Where("id = ?", item.ID).Delete(&prescription.Item{})
	if res.Error != nil {
		return fmt.Errorf("deleting prescription item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrItemNotFound
	}
	return nil
}

type PaymentRepository struct {
	db *gorm.DB
}

func (r *PaymentRepository) Create(ctx context.Context, p *prescription.Payment) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return prescription.ErrAlreadyPaid
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return prescription.ErrPrescriptionNotFound
		}
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByPrescription(ctx context.Context, prescriptionID uuid.UUID) (*prescription.Payment, error) {
	var p prescription.Payment
	if err := r.db.WithContext(ctx).Where("prescription_id = ?", prescriptionID).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, prescription.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("fetching payment: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&prescription.Payment{})
	if res.Error != nil {
		return fmt.Errorf("deleting payment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrPaymentNotFound
	}
	return nil
}

type InteractionRepository struct {
	db *gorm.DB
}

func (r *InteractionRepository) Create(ctx context.Context, d *prescription.DrugInteraction) error {
	d.Normalize()
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return prescription.ErrInteractionExists
		}
		return fmt.Errorf("inserting drug interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&prescription.DrugInteraction{})
	if res.Error != nil {
		return fmt.Errorf("deleting drug interaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return prescription.ErrInteractionNotFound
	}
	return nil
}

func (r *InteractionRepository) List(ctx context.Context) ([]*prescription.DrugInteraction, error) {
	var out []*prescription.DrugInteraction
	if err := r.db.WithContext(ctx).Order("medicine_a ASC, medicine_b ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing drug interactions: %w", err)
	}
	return out, nil
}

func (r *InteractionRepository) FindAmong(ctx context.Context, names []string) ([]*prescription.DrugInteraction, error) {
	if len(names) < 2 {
		return nil, nil
	}
	lowered := make([]string, 0, len(names))
	for _, n := range names {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(n)))
	}
	var out []*prescription.DrugInteraction
	err := r.db.WithContext(ctx).
		Where("medicine_a IN ? AND medicine_b IN ?", lowered, lowered).
		Order("medicine_a ASC, medicine_b ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("finding drug interactions: %w", err)
	}
	return out, nil
}
