package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/google/uuid"
)

// assemble attaches the relations GetByID promises to a stored row.
func (u *unit) assemble(p prescription.Prescription) *prescription.Prescription {
	if pt, ok := u.state.patients[p.PatientID]; ok {
		p.Patient = &pt
	}
	if d, ok := u.state.doctors[p.DoctorID]; ok {
		p.Doctor = &d
	}
	for _, pay := range u.state.payments {
		if pay.PrescriptionID == p.ID {
			p.Payment = &pay
			break
		}
	}
	p.Items = nil
	for _, it := range u.state.items {
		if it.PrescriptionID != p.ID {
			continue
		}
		if m, ok := u.state.medicines[it.MedicineID]; ok {
			it.Medicine = &m
		}
		p.Items = append(p.Items, it)
	}
	p.SortItems()
	return &p
}

func stripPrescription(p *prescription.Prescription) prescription.Prescription {
	stored := *p
	stored.Items = nil
	stored.Payment = nil
	stored.Patient = nil
	stored.Doctor = nil
	return stored
}

type prescriptionRepo struct{ u *unit }

func (r prescriptionRepo) Create(_ context.Context, p *prescription.Prescription) error {
	if _, ok := r.u.state.patients[p.PatientID]; !ok {
		return clinic.ErrPatientNotFound
	}
	if _, ok := r.u.state.doctors[p.DoctorID]; !ok {
		return clinic.ErrDoctorNotFound
	}
	p.ID = newID(p.ID)
	p.CreatedAt = r.u.now()
	p.UpdatedAt = p.CreatedAt
	r.u.state.scripts[p.ID] = stripPrescription(p)
	return nil
}

func (r prescriptionRepo) GetByID(_ context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	p, ok := r.u.state.scripts[id]
	if !ok {
		return nil, prescription.ErrPrescriptionNotFound
	}
	return r.u.assemble(p), nil
}

// GetForUpdate needs no row lock; the store already serializes units of work.
func (r prescriptionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*prescription.Prescription, error) {
	return r.GetByID(ctx, id)
}

func (r prescriptionRepo) Update(_ context.Context, p *prescription.Prescription) error {
	stored, ok := r.u.state.scripts[p.ID]
	if !ok {
		return prescription.ErrPrescriptionNotFound
	}
	if _, ok := r.u.state.patients[p.PatientID]; !ok {
		return clinic.ErrPatientNotFound
	}
	if _, ok := r.u.state.doctors[p.DoctorID]; !ok {
		return clinic.ErrDoctorNotFound
	}
	updated := stripPrescription(p)
	updated.CreatedAt = stored.CreatedAt
	updated.CreatedBy = stored.CreatedBy
	updated.UpdatedAt = r.u.now()
	r.u.state.scripts[p.ID] = updated
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r prescriptionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.scripts[id]; !ok {
		return prescription.ErrPrescriptionNotFound
	}
	for _, pay := range r.u.state.payments {
		if pay.PrescriptionID == id {
			return prescription.ErrPaymentExists
		}
	}
	for itemID, it := range r.u.state.items {
		if it.PrescriptionID == id {
			delete(r.u.state.items, itemID)
		}
	}
	delete(r.u.state.scripts, id)
	return nil
}

func (r prescriptionRepo) List(_ context.Context, q *prescription.ListPrescriptionsQuery) (*prescription.PagedPrescriptions, error) {
	var matched []*prescription.Prescription
	for _, p := range r.u.state.scripts {
		if q.PatientID != nil && p.PatientID != *q.PatientID {
			continue
		}
		if q.DoctorID != nil && p.DoctorID != *q.DoctorID {
			continue
		}
		if q.Date != nil {
			y1, m1, d1 := p.PrescriptionDate.Date()
			y2, m2, d2 := q.Date.Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		if q.IsPaid != nil && p.IsPaid != *q.IsPaid {
			continue
		}
		matched = append(matched, r.u.assemble(p))
	}
	slices.SortFunc(matched, func(a, b *prescription.Prescription) int {
		if c := b.PrescriptionDate.Compare(a.PrescriptionDate); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	from, to, pages := paginate(len(matched), q.Page, q.PageSize)
	return &prescription.PagedPrescriptions{
		Prescriptions: matched[from:to],
		TotalCount:    int64(len(matched)),
		Page:          q.Page,
		PageSize:      q.PageSize,
		TotalPages:    pages,
	}, nil
}

func (r prescriptionRepo) ExistsForPatient(_ context.Context, patientID uuid.UUID) (bool, error) {
	for _, p := range r.u.state.scripts {
		if p.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (r prescriptionRepo) ExistsForDoctor(_ context.Context, doctorID uuid.UUID) (bool, error) {
	for _, p := range r.u.state.scripts {
		if p.DoctorID == doctorID {
			return true, nil
		}
	}
	return false, nil
}

type itemRepo struct{ u *unit }

func (r itemRepo) Create(_ context.Context, item *prescription.Item) error {
	if _, ok := r.u.state.scripts[item.PrescriptionID]; !ok {
		return prescription.ErrPrescriptionNotFound
	}
	if _, ok := r.u.state.medicines[item.MedicineID]; !ok {
		return inventory.ErrMedicineNotFound
	}
	for _, it := range r.u.state.items {
		if it.PrescriptionID == item.PrescriptionID && it.MedicineID == item.MedicineID {
			return prescription.ErrDuplicateItem
		}
	}
	item.ID = newID(item.ID)
	item.CreatedAt = r.u.now()
	item.UpdatedAt = item.CreatedAt
	stored := *item
	stored.Medicine = nil
	r.u.state.items[item.ID] = stored
	return nil
}

func (r itemRepo) GetByID(_ context.Context, prescriptionID, itemID uuid.UUID) (*prescription.Item, error) {
	it, ok := r.u.state.items[itemID]
	if !ok || it.PrescriptionID != prescriptionID {
		return nil, prescription.ErrItemNotFound
	}
	if m, ok := r.u.state.medicines[it.MedicineID]; ok {
		it.Medicine = &m
	}
	return &it, nil
}

func (r itemRepo) Update(_ context.Context, item *prescription.Item) error {
	stored, ok := r.u.state.items[item.ID]
	if !ok {
		return prescription.ErrItemNotFound
	}
	stored.RequestedQuantity = item.RequestedQuantity
	stored.DispensedQuantity = item.DispensedQuantity
	stored.Dosage = item.Dosage
	stored.Duration = item.Duration
	stored.UpdatedAt = r.u.now()
	r.u.state.items[item.ID] = stored
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r itemRepo) Delete(_ context.Context, item *prescription.Item) error {
	if _, ok := r.u.state.items[item.ID]; !ok {
		return prescription.ErrItemNotFound
	}
	delete(r.u.state.items, item.ID)
	return nil
}

type paymentRepo struct{ u *unit }

func (r paymentRepo) Create(_ context.Context, p *prescription.Payment) error {
	if _, ok := r.u.state.scripts[p.PrescriptionID]; !ok {
		return prescription.ErrPrescriptionNotFound
	}
	for _, existing := range r.u.state.payments {
		if existing.PrescriptionID == p.PrescriptionID {
			return prescription.ErrAlreadyPaid
		}
	}
	p.ID = newID(p.ID)
	p.CreatedAt = r.u.now()
	r.u.state.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByPrescription(_ context.Context, prescriptionID uuid.UUID) (*prescription.Payment, error) {
	for _, p := range r.u.state.payments {
		if p.PrescriptionID == prescriptionID {
			return &p, nil
		}
	}
	return nil, prescription.ErrPaymentNotFound
}

func (r paymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.payments[id]; !ok {
		return prescription.ErrPaymentNotFound
	}
	delete(r.u.state.payments, id)
	return nil
}

type interactionRepo struct{ u *unit }

func (r interactionRepo) Create(_ context.Context, d *prescription.DrugInteraction) error {
	d.Normalize()
	for _, existing := range r.u.state.pairs {
		if existing.MedicineA == d.MedicineA && existing.MedicineB == d.MedicineB {
			return prescription.ErrInteractionExists
		}
	}
	d.ID = newID(d.ID)
	r.u.state.pairs[d.ID] = *d
	return nil
}

func (r interactionRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.pairs[id]; !ok {
		return prescription.ErrInteractionNotFound
	}
	delete(r.u.state.pairs, id)
	return nil
}

func (r interactionRepo) List(_ context.Context) ([]*prescription.DrugInteraction, error) {
	out := make([]*prescription.DrugInteraction, 0, len(r.u.state.pairs))
	for _, d := range r.u.state.pairs {
		out = append(out, &d)
	}
	slices.SortFunc(out, compareInteractions)
	return out, nil
}

func (r interactionRepo) FindAmong(_ context.Context, names []string) ([]*prescription.DrugInteraction, error) {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(strings.TrimSpace(n))] = struct{}{}
	}
	var out []*prescription.DrugInteraction
	for _, d := range r.u.state.pairs {
		_, a := set[d.MedicineA]
		_, b := set[d.MedicineB]
		if a && b {
			out = append(out, &d)
		}
	}
	slices.SortFunc(out, compareInteractions)
	return out, nil
}

func compareInteractions(a, b *prescription.DrugInteraction) int {
	if c := strings.Compare(a.MedicineA, b.MedicineA); c != 0 {
		return c
	}
	return strings.Compare(a.MedicineB, b.MedicineB)
}
