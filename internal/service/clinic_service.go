package service

import (
	"context"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClinicService manages the patients and prescribers prescriptions refer to.
type ClinicService struct {
	uow   uow.Factory
	audit *AuditService
	log   *zap.Logger
}

func NewClinicService(f uow.Factory, audit *AuditService, log *zap.Logger) *ClinicService {
	return &ClinicService{uow: f, audit: audit, log: log}
}

func (s *ClinicService) CreatePatient(ctx context.Context, cmd *clinic.CreatePatientCommand, caller Caller) (*clinic.Patient, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	if cmd.Gender == "" {
		cmd.Gender = clinic.GenderUnknown
	}
	p := &clinic.Patient{
		FirstName:   strings.TrimSpace(cmd.FirstName),
		LastName:    strings.TrimSpace(cmd.LastName),
		DateOfBirth: cmd.DateOfBirth,
		Gender:      cmd.Gender,
		ContactInfo: clinic.ContactInfo{
			Phone:   strings.TrimSpace(cmd.Phone),
			Email:   strings.ToLower(strings.TrimSpace(cmd.Email)),
			Address: cmd.Address,
		},
		Allergies: cmd.Allergies,
	}
	if err := validatePatient(p); err != nil {
		return nil, err
	}

	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.Patients().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "patient", p.ID.String()))
	s.log.Info("patient created",
		zap.String("patient_id", p.ID.String()),
		zap.String("created_by", caller.ID.String()),
	)
	return p, nil
}

func (s *ClinicService) GetPatient(ctx context.Context, id uuid.UUID, caller Caller) (*clinic.Patient, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var p *clinic.Patient
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		p, err = u.Patients().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionRead, "patient", id.String()))
	return p, nil
}

func (s *ClinicService) UpdatePatient(ctx context.Context, id uuid.UUID, cmd *clinic.UpdatePatientCommand, caller Caller) (*clinic.Patient, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var p *clinic.Patient
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		p, err = u.Patients().GetByID(ctx, id)
		if err != nil {
			return err
		}
		cmd.Apply(p)
		if err := validatePatient(p); err != nil {
			return err
		}
		return u.Patients().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "patient", id.String()))
	return p, nil
}

// DeletePatient fails with clinic.ErrHasPrescriptions while any prescription
// names the patient.
func (s *ClinicService) DeletePatient(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if _, err := u.Patients().GetByID(ctx, id); err != nil {
			return err
		}
		used, err := u.Prescriptions().ExistsForPatient(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return clinic.ErrHasPrescriptions
		}
		return u.Patients().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "patient", id.String()))
	s.log.Info("patient deleted", zap.String("patient_id", id.String()))
	return nil
}

func (s *ClinicService) ListPatients(ctx context.Context, q *clinic.ListQuery, caller Caller) (*clinic.PagedPatients, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	var out *clinic.PagedPatients
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.Patients().List(ctx, q)
		return err
	})
	return out, err
}

func (s *ClinicService) CreateDoctor(ctx context.Context, cmd *clinic.CreateDoctorCommand, caller Caller) (*clinic.Doctor, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	d := &clinic.Doctor{
		FirstName:      strings.TrimSpace(cmd.FirstName),
		LastName:       strings.TrimSpace(cmd.LastName),
		MedicalCode:    strings.TrimSpace(cmd.MedicalCode),
		Specialization: strings.TrimSpace(cmd.Specialization),
		ContactInfo: clinic.ContactInfo{
			Phone:   strings.TrimSpace(cmd.Phone),
			Email:   strings.ToLower(strings.TrimSpace(cmd.Email)),
			Address: cmd.Address,
		},
	}
	if err := validateDoctor(d); err != nil {
		return nil, err
	}

	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		return u.Doctors().Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionCreate, "doctor", d.ID.String()))
	s.log.Info("doctor created",
		zap.String("doctor_id", d.ID.String()),
		zap.String("medical_code", d.MedicalCode),
	)
	return d, nil
}

func (s *ClinicService) GetDoctor(ctx context.Context, id uuid.UUID, caller Caller) (*clinic.Doctor, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var d *clinic.Doctor
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		d, err = u.Doctors().GetByID(ctx, id)
		return err
	})
	return d, err
}

func (s *ClinicService) UpdateDoctor(ctx context.Context, id uuid.UUID, cmd *clinic.UpdateDoctorCommand, caller Caller) (*clinic.Doctor, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	var d *clinic.Doctor
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		d, err = u.Doctors().GetByID(ctx, id)
		if err != nil {
			return err
		}
		cmd.Apply(d)
		if err := validateDoctor(d); err != nil {
			return err
		}
		return u.Doctors().Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionUpdate, "doctor", id.String()))
	return d, nil
}

func (s *ClinicService) DeleteDoctor(ctx context.Context, id uuid.UUID, caller Caller) error {
	if err := caller.allow(dispensers...); err != nil {
		return err
	}
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		if _, err := u.Doctors().GetByID(ctx, id); err != nil {
			return err
		}
		used, err := u.Prescriptions().ExistsForDoctor(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return clinic.ErrHasPrescriptions
		}
		return u.Doctors().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.audit.LogAsync(ctx, caller.entry(domain.ActionDelete, "doctor", id.String()))
	return nil
}

func (s *ClinicService) ListDoctors(ctx context.Context, q *clinic.ListQuery, caller Caller) (*clinic.PagedDoctors, error) {
	if err := caller.allow(staff...); err != nil {
		return nil, err
	}
	q.Page, q.PageSize = normalizePage(q.Page, q.PageSize)
	var out *clinic.PagedDoctors
	err := uow.Do(ctx, s.uow, func(u uow.UnitOfWork) error {
		var err error
		out, err = u.Doctors().List(ctx, q)
		return err
	})
	return out, err
}

func validatePatient(p *clinic.Patient) error {
	var errs []string

	if p.FirstName == "" {
		errs = append(errs, "first_name is required")
	}
	if p.LastName == "" {
		errs = append(errs, "last_name is required")
	}
	if p.DateOfBirth.IsZero() {
		errs = append(errs, "date_of_birth is required")
	}
	if p.DateOfBirth.After(time.Now()) {
		errs = append(errs, clinic.ErrInvalidDateOfBirth.Error())
	}
	if !p.Gender.IsValid() {
		errs = append(errs, clinic.ErrInvalidGender.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateDoctor(d *clinic.Doctor) error {
	var errs []string

	if d.FirstName == "" {
		errs = append(errs, "first_name is required")
	}
	if d.LastName == "" {
		errs = append(errs, "last_name is required")
	}
	if d.MedicalCode == "" {
		errs = append(errs, clinic.ErrMedicalCodeRequired.Error())
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
