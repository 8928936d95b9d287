package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/google/uuid"
)

type patientRepo struct{ u *unit }

func (r patientRepo) Create(_ context.Context, p *clinic.Patient) error {
	p.ID = newID(p.ID)
	p.CreatedAt = r.u.now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Allergies = slices.Clone(p.Allergies)
	r.u.state.patients[p.ID] = stored
	return nil
}

func (r patientRepo) GetByID(_ context.Context, id uuid.UUID) (*clinic.Patient, error) {
	p, ok := r.u.state.patients[id]
	if !ok {
		return nil, clinic.ErrPatientNotFound
	}
	p.Allergies = slices.Clone(p.Allergies)
	return &p, nil
}

func (r patientRepo) Update(_ context.Context, p *clinic.Patient) error {
	stored, ok := r.u.state.patients[p.ID]
	if !ok {
		return clinic.ErrPatientNotFound
	}
	updated := *p
	updated.Allergies = slices.Clone(p.Allergies)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.u.now()
	r.u.state.patients[p.ID] = updated
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r patientRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.patients[id]; !ok {
		return clinic.ErrPatientNotFound
	}
	for _, s := range r.u.state.scripts {
		if s.PatientID == id {
			return clinic.ErrHasPrescriptions
		}
	}
	delete(r.u.state.patients, id)
	return nil
}

func (r patientRepo) List(_ context.Context, q *clinic.ListQuery) (*clinic.PagedPatients, error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []*clinic.Patient
	for _, p := range r.u.state.patients {
		if search != "" && !strings.Contains(strings.ToLower(p.FullName()), search) {
			continue
		}
		matched = append(matched, &p)
	}
	slices.SortFunc(matched, func(a, b *clinic.Patient) int {
		if c := strings.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return strings.Compare(a.FirstName, b.FirstName)
	})

	from, to, pages := paginate(len(matched), q.Page, q.PageSize)
	return &clinic.PagedPatients{
		Patients:   matched[from:to],
		TotalCount: int64(len(matched)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}, nil
}

type doctorRepo struct{ u *unit }

func (r doctorRepo) codeTaken(code string, except uuid.UUID) bool {
	for id, d := range r.u.state.doctors {
		if id != except && strings.EqualFold(d.MedicalCode, code) {
			return true
		}
	}
	return false
}

func (r doctorRepo) Create(_ context.Context, d *clinic.Doctor) error {
	if r.codeTaken(d.MedicalCode, uuid.Nil) {
		return clinic.ErrMedicalCodeTaken
	}
	d.ID = newID(d.ID)
	d.CreatedAt = r.u.now()
	d.UpdatedAt = d.CreatedAt
	r.u.state.doctors[d.ID] = *d
	return nil
}

func (r doctorRepo) GetByID(_ context.Context, id uuid.UUID) (*clinic.Doctor, error) {
	d, ok := r.u.state.doctors[id]
	if !ok {
		return nil, clinic.ErrDoctorNotFound
	}
	return &d, nil
}

func (r doctorRepo) Update(_ context.Context, d *clinic.Doctor) error {
	stored, ok := r.u.state.doctors[d.ID]
	if !ok {
		return clinic.ErrDoctorNotFound
	}
	if r.codeTaken(d.MedicalCode, d.ID) {
		return clinic.ErrMedicalCodeTaken
	}
	updated := *d
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.u.now()
	r.u.state.doctors[d.ID] = updated
	d.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r doctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.doctors[id]; !ok {
		return clinic.ErrDoctorNotFound
	}
	for _, s := range r.u.state.scripts {
		if s.DoctorID == id {
			return clinic.ErrHasPrescriptions
		}
	}
	delete(r.u.state.doctors, id)
	return nil
}

func (r doctorRepo) List(_ context.Context, q *clinic.ListQuery) (*clinic.PagedDoctors, error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []*clinic.Doctor
	for _, d := range r.u.state.doctors {
		if search != "" &&
			!strings.Contains(strings.ToLower(d.FullName()), search) &&
			!strings.Contains(strings.ToLower(d.Specialization), search) &&
			!strings.Contains(strings.ToLower(d.MedicalCode), search) {
			continue
		}
		matched = append(matched, &d)
	}
	slices.SortFunc(matched, func(a, b *clinic.Doctor) int {
		if c := strings.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return strings.Compare(a.FirstName, b.FirstName)
	})

	from, to, pages := paginate(len(matched), q.Page, q.PageSize)
	return &clinic.PagedDoctors{
		Doctors:    matched[from:to],
		TotalCount: int64(len(matched)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}, nil
}
