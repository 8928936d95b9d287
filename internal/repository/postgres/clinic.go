package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PatientRepository struct {
	db *gorm.DB
}

func (r *PatientRepository) Create(ctx context.Context, p *clinic.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("inserting patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*clinic.Patient, error) {
	var p clinic.Patient
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clinic.ErrPatientNotFound
		}
		return nil, fmt.Errorf("fetching patient: %w", err)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *clinic.Patient) error {
	res := r.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return fmt.Errorf("updating patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return clinic.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&clinic.Patient{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return clinic.ErrHasPrescriptions
		}
		return fmt.Errorf("deleting patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return clinic.ErrPatientNotFound
	}
	return nil
}

func (r *PatientRepository) List(ctx context.Context, q *clinic.ListQuery) (*clinic.PagedPatients, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	db := r.db.WithContext(ctx).Model(&clinic.Patient{})
	if s := strings.TrimSpace(q.Search); s != "" {
		db = db.Where("(first_name || ' ' || last_name) ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting patients: %w", err)
	}

	var patients []*clinic.Patient
	err := db.Order("last_name ASC, first_name ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}

	return &clinic.PagedPatients{
		Patients:   patients,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}

type DoctorRepository struct {
	db *gorm.DB
}

func (r *DoctorRepository) Create(ctx context.Context, d *clinic.Doctor) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return clinic.ErrMedicalCodeTaken
		}
		return fmt.Errorf("inserting doctor: %w", err)
	}
	return nil
}

func (r *DoctorRepository) GetByID(ctx context.Context, id uuid.UUID) (*clinic.Doctor, error) {
	var d clinic.Doctor
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, clinic.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("fetching doctor: %w", err)
	}
	return &d, nil
}

func (r *DoctorRepository) Update(ctx context.Context, d *clinic.Doctor) error {
	res := r.db.WithContext(ctx).Model(d).Select("*").Omit("id", "created_at").Updates(d)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return clinic.ErrMedicalCodeTaken
		}
		return fmt.Errorf("updating doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return clinic.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&clinic.Doctor{})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return clinic.ErrHasPrescriptions
		}
		return fmt.Errorf("deleting doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return clinic.ErrDoctorNotFound
	}
	return nil
}

func (r *DoctorRepository) List(ctx context.Context, q *clinic.ListQuery) (*clinic.PagedDoctors, error) {
	page, size := normalizePage(q.Page, q.PageSize)
	db := r.db.WithContext(ctx).Model(&clinic.Doctor{})
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		db = db.Where(clause.Or(
			clause.Expr{SQL: "(first_name || ' ' || last_name) ILIKE ?", Vars: []any{like}},
			clause.Expr{SQL: "specialization ILIKE ?", Vars: []any{like}},
			clause.Expr{SQL: "medical_code ILIKE ?", Vars: []any{like}},
		))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("counting doctors: %w", err)
	}

	var doctors []*clinic.Doctor
	err := db.Order("last_name ASC, first_name ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("listing doctors: %w", err)
	}

	return &clinic.PagedDoctors{
		Doctors:    doctors,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}
