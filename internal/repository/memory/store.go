// Package memory is an in-process transactional store. Begin takes the store
// lock and works on a clone of the state; Commit swaps the clone in and
// Rollback discards it. Units of work are therefore fully serialized, which
// is the strongest form of the per-row locking the postgres store provides.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/google/uuid"
)

type state struct {
	medicines  map[uuid.UUID]inventory.Medicine
	actions    []inventory.MedicineAction
	goods      map[uuid.UUID]inventory.NonMedicalProduct
	patients   map[uuid.UUID]clinic.Patient
	doctors    map[uuid.UUID]clinic.Doctor
	scripts    map[uuid.UUID]prescription.Prescription
	items      map[uuid.UUID]prescription.Item
	payments   map[uuid.UUID]prescription.Payment
	pairs      map[uuid.UUID]prescription.DrugInteraction
	products   map[uuid.UUID]storefront.Product
	carts      map[uuid.UUID]storefront.Cart
	cartItems  map[uuid.UUID]storefront.CartItem
	orders     map[uuid.UUID]storefront.Order
	orderItems map[uuid.UUID]storefront.OrderItem
}

func newState() state {
	return state{
		medicines:  map[uuid.UUID]inventory.Medicine{},
		goods:      map[uuid.UUID]inventory.NonMedicalProduct{},
		patients:   map[uuid.UUID]clinic.Patient{},
		doctors:    map[uuid.UUID]clinic.Doctor{},
		scripts:    map[uuid.UUID]prescription.Prescription{},
		items:      map[uuid.UUID]prescription.Item{},
		payments:   map[uuid.UUID]prescription.Payment{},
		pairs:      map[uuid.UUID]prescription.DrugInteraction{},
		products:   map[uuid.UUID]storefront.Product{},
		carts:      map[uuid.UUID]storefront.Cart{},
		cartItems:  map[uuid.UUID]storefront.CartItem{},
		orders:     map[uuid.UUID]storefront.Order{},
		orderItems: map[uuid.UUID]storefront.OrderItem{},
	}
}

// clone copies every table. Stored values never hold relation pointers and
// slices inside them are replaced, never mutated, so a shallow copy per
// value is enough.
func (s state) clone() state {
	return state{
		medicines:  maps.Clone(s.medicines),
		actions:    append([]inventory.MedicineAction(nil), s.actions...),
		goods:      maps.Clone(s.goods),
		patients:   maps.Clone(s.patients),
		doctors:    maps.Clone(s.doctors),
		scripts:    maps.Clone(s.scripts),
		items:      maps.Clone(s.items),
		payments:   maps.Clone(s.payments),
		pairs:      maps.Clone(s.pairs),
		products:   maps.Clone(s.products),
		carts:      maps.Clone(s.carts),
		cartItems:  maps.Clone(s.cartItems),
		orders:     maps.Clone(s.orders),
		orderItems: maps.Clone(s.orderItems),
	}
}

// Store implements uow.Factory.
type Store struct {
	mu    sync.Mutex
	state state
	nowFn func() time.Time
}

func NewStore() *Store {
	return &Store{state: newState(), nowFn: time.Now}
}

func (s *Store) Begin(ctx context.Context) (uow.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &unit{store: s, state: s.state.clone()}, nil
}

type unit struct {
	store *Store
	state state
	done  bool
}

func (u *unit) now() time.Time { return u.store.nowFn().UTC() }

func (u *unit) Commit() error {
	if u.done {
		return uow.ErrFinished
	}
	u.done = true
	u.store.state = u.state
	u.store.mu.Unlock()
	return nil
}

func (u *unit) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true
	u.store.mu.Unlock()
	return nil
}

func (u *unit) Ledger() inventory.Ledger                    { return medicineLedger{u} }
func (u *unit) GoodsLedger() inventory.Ledger               { return goodsLedger{u} }
func (u *unit) Medicines() inventory.Repository             { return medicineRepo{u} }
func (u *unit) MedicineActions() inventory.ActionRepository { return actionRepo{u} }
func (u *unit) NonMedical() inventory.ProductRepository     { return goodsRepo{u} }
func (u *unit) Patients() clinic.PatientRepository          { return patientRepo{u} }
func (u *unit) Doctors() clinic.DoctorRepository            { return doctorRepo{u} }
func (u *unit) Prescriptions() prescription.Repository      { return prescriptionRepo{u} }
func (u *unit) Items() prescription.ItemRepository          { return itemRepo{u} }
func (u *unit) Payments() prescription.PaymentRepository    { return paymentRepo{u} }
func (u *unit) Interactions() prescription.InteractionRepository {
	return interactionRepo{u}
}
func (u *unit) Products() storefront.ProductRepository { return productRepo{u} }
func (u *unit) Carts() storefront.CartRepository       { return cartRepo{u} }
func (u *unit) Orders() storefront.OrderRepository     { return orderRepo{u} }

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func paginate(total, page, size int) (from, to, pages int) {
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}
	pages = (total + size - 1) / size
	from = min((page-1)*size, total)
	to = min(from+size, total)
	return from, to, pages
}
