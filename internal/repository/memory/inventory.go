package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/google/uuid"
)

type medicineLedger struct{ u *unit }

func (l medicineLedger) Reserve(_ context.Context, id uuid.UUID, amount int) (int, error) {
	if amount < 0 {
		return 0, inventory.ErrNegativeAmount
	}
	m, ok := l.u.state.medicines[id]
	if !ok {
		return 0, inventory.ErrMedicineNotFound
	}
	n := inventory.Reservable(m.QuantityInStock, amount)
	m.QuantityInStock -= n
	l.u.state.medicines[id] = m
	return n, nil
}

func (l medicineLedger) Release(_ context.Context, id uuid.UUID, amount int) error {
	if amount < 0 {
		return inventory.ErrNegativeAmount
	}
	m, ok := l.u.state.medicines[id]
	if !ok {
		return inventory.ErrMedicineNotFound
	}
	m.QuantityInStock += amount
	l.u.state.medicines[id] = m
	return nil
}

type goodsLedger struct{ u *unit }

func (l goodsLedger) Reserve(_ context.Context, id uuid.UUID, amount int) (int, error) {
	if amount < 0 {
		return 0, inventory.ErrNegativeAmount
	}
	g, ok := l.u.state.goods[id]
	if !ok {
		return 0, inventory.ErrProductNotFound
	}
	n := inventory.Reservable(g.QuantityInStock, amount)
	g.QuantityInStock -= n
	l.u.state.goods[id] = g
	return n, nil
}

func (l goodsLedger) Release(_ context.Context, id uuid.UUID, amount int) error {
	if amount < 0 {
		return inventory.ErrNegativeAmount
	}
	g, ok := l.u.state.goods[id]
	if !ok {
		return inventory.ErrProductNotFound
	}
	g.QuantityInStock += amount
	l.u.state.goods[id] = g
	return nil
}

type medicineRepo struct{ u *unit }

func (r medicineRepo) Create(_ context.Context, m *inventory.Medicine) error {
	for _, existing := range r.u.state.medicines {
		if existing.BatchNumber == m.BatchNumber {
			return inventory.ErrBatchNumberTaken
		}
	}
	m.ID = newID(m.ID)
	m.CreatedAt = r.u.now()
	m.UpdatedAt = m.CreatedAt
	r.u.state.medicines[m.ID] = *m
	return nil
}

func (r medicineRepo) GetByID(_ context.Context, id uuid.UUID) (*inventory.Medicine, error) {
	m, ok := r.u.state.medicines[id]
	if !ok {
		return nil, inventory.ErrMedicineNotFound
	}
	return &m, nil
}

func (r medicineRepo) GetByBatchNumber(_ context.Context, batchNumber string) (*inventory.Medicine, error) {
	for _, m := range r.u.state.medicines {
		if m.BatchNumber == batchNumber {
			return &m, nil
		}
	}
	return nil, inventory.ErrMedicineNotFound
}

func (r medicineRepo) Update(_ context.Context, m *inventory.Medicine) error {
	stored, ok := r.u.state.medicines[m.ID]
	if !ok {
		return inventory.ErrMedicineNotFound
	}
	for id, existing := range r.u.state.medicines {
		if id != m.ID && existing.BatchNumber == m.BatchNumber {
			return inventory.ErrBatchNumberTaken
		}
	}
	updated := *m
	updated.QuantityInStock = stored.QuantityInStock
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.u.now()
	r.u.state.medicines[m.ID] = updated
	m.QuantityInStock = stored.QuantityInStock
	m.UpdatedAt = updated.UpdatedAt
	return nil
}

// Delete mirrors the foreign keys of the relational schema: prescription
// lines and ordered storefront products block the delete, actions lose their
// reference and unordered storefront listings go with the medicine.
func (r medicineRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.medicines[id]; !ok {
		return inventory.ErrMedicineNotFound
	}
	for _, it := range r.u.state.items {
		if it.MedicineID == id {
			return inventory.ErrMedicineInUse
		}
	}
	for pid, p := range r.u.state.products {
		if p.MedicineID != nil && *p.MedicineID == id {
			if r.u.productOrdered(pid) {
				return inventory.ErrMedicineInUse
			}
			r.u.dropProduct(pid)
		}
	}
	for i := range r.u.state.actions {
		if a := r.u.state.actions[i].MedicineID; a != nil && *a == id {
			r.u.state.actions[i].MedicineID = nil
		}
	}
	delete(r.u.state.medicines, id)
	return nil
}

func (r medicineRepo) List(_ context.Context, q *inventory.ListMedicinesQuery) (*inventory.PagedMedicines, error) {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matched []*inventory.Medicine
	for _, m := range r.u.state.medicines {
		if search != "" &&
			!strings.Contains(strings.ToLower(m.Name), search) &&
			!strings.Contains(strings.ToLower(m.Brand), search) &&
			!strings.Contains(strings.ToLower(m.BatchNumber), search) {
			continue
		}
		if q.Category != nil && m.Category != *q.Category {
			continue
		}
		if q.Type != nil && m.Type != *q.Type {
			continue
		}
		if q.LowStock && !m.NeedsReorder() {
			continue
		}
		matched = append(matched, &m)
	}
	slices.SortFunc(matched, func(a, b *inventory.Medicine) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.BatchNumber, b.BatchNumber)
	})

	from, to, pages := paginate(len(matched), q.Page, q.PageSize)
	return &inventory.PagedMedicines{
		Medicines:  matched[from:to],
		TotalCount: int64(len(matched)),
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: pages,
	}, nil
}

func (r medicineRepo) LowStock(_ context.Context) ([]*inventory.Medicine, error) {
	var out []*inventory.Medicine
	for _, m := range r.u.state.medicines {
		if m.NeedsReorder() {
			out = append(out, &m)
		}
	}
	slices.SortFunc(out, func(a, b *inventory.Medicine) int {
		return a.QuantityInStock - b.QuantityInStock
	})
	return out, nil
}

func (r medicineRepo) ExpiringBefore(_ context.Context, cutoff time.Time) ([]*inventory.Medicine, error) {
	var out []*inventory.Medicine
	for _, m := range r.u.state.medicines {
		if m.ExpiryDate.Before(cutoff) {
			out = append(out, &m)
		}
	}
	slices.SortFunc(out, func(a, b *inventory.Medicine) int {
		return a.ExpiryDate.Compare(b.ExpiryDate)
	})
	return out, nil
}

type actionRepo struct{ u *unit }

func (r actionRepo) Record(_ context.Context, a *inventory.MedicineAction) error {
	a.ID = newID(a.ID)
	a.Timestamp = r.u.now()
	stored := *a
	stored.Medicine = nil
	r.u.state.actions = append(r.u.state.actions, stored)
	return nil
}

func (r actionRepo) ListByMedicine(_ context.Context, medicineID uuid.UUID) ([]*inventory.MedicineAction, error) {
	var out []*inventory.MedicineAction
	for i := len(r.u.state.actions) - 1; i >= 0; i-- {
		a := r.u.state.actions[i]
		if a.MedicineID != nil && *a.MedicineID == medicineID {
			out = append(out, &a)
		}
	}
	return out, nil
}

type goodsRepo struct{ u *unit }

func (r goodsRepo) Create(_ context.Context, p *inventory.NonMedicalProduct) error {
	p.ID = newID(p.ID)
	p.CreatedAt = r.u.now()
	p.UpdatedAt = p.CreatedAt
	r.u.state.goods[p.ID] = *p
	return nil
}

func (r goodsRepo) GetByID(_ context.Context, id uuid.UUID) (*inventory.NonMedicalProduct, error) {
	p, ok := r.u.state.goods[id]
	if !ok {
		return nil, inventory.ErrProductNotFound
	}
	return &p, nil
}

func (r goodsRepo) Update(_ context.Context, p *inventory.NonMedicalProduct) error {
	stored, ok := r.u.state.goods[p.ID]
	if !ok {
		return inventory.ErrProductNotFound
	}
	updated := *p
	updated.QuantityInStock = stored.QuantityInStock
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = r.u.now()
	r.u.state.goods[p.ID] = updated
	p.QuantityInStock = stored.QuantityInStock
	p.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r goodsRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.u.state.goods[id]; !ok {
		return inventory.ErrProductNotFound
	}
	for pid, p := range r.u.state.products {
		if p.NonMedicalProductID != nil && *p.NonMedicalProductID == id {
			if r.u.productOrdered(pid) {
				return inventory.ErrProductInUse
			}
			r.u.dropProduct(pid)
		}
	}
	delete(r.u.state.goods, id)
	return nil
}

func (r goodsRepo) List(_ context.Context, search string) ([]*inventory.NonMedicalProduct, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []*inventory.NonMedicalProduct
	for _, p := range r.u.state.goods {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		out = append(out, &p)
	}
	slices.SortFunc(out, func(a, b *inventory.NonMedicalProduct) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}
