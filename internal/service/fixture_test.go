package service

import (
	"context"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/export"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fixture struct {
	ctx        context.Context
	store      uow.Factory
	audits     *memory.AuditStore
	dispensing *DispensingService
	scripts    *PrescriptionService
	inventory  *InventoryService
	clinic     *ClinicService
	shop       *StorefrontService

	pharmacist Caller
	cashier    Caller
	customer   Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, memory.NewStore())
}

// newFixtureOn wires the services over store. Audit entries always go to
// memory so tests can inspect them.
func newFixtureOn(t *testing.T, store uow.Factory) *fixture {
	t.Helper()
	log := zap.NewNop()
	audits := memory.NewAuditStore()
	audit := NewAuditService(audits, nil, log)
	t.Cleanup(audit.Shutdown)

	return &fixture{
		ctx:        context.Background(),
		store:      store,
		audits:     audits,
		dispensing: NewDispensingService(store, audit, nil, log),
		scripts:    NewPrescriptionService(store, export.Letterhead{Name: "Test Pharmacy", CurrencySymbol: "$"}, audit, nil, log),
		inventory:  NewInventoryService(store, 7*24*time.Hour, audit, nil, log),
		clinic:     NewClinicService(store, audit, log),
		shop:       NewStorefrontService(store, audit, nil, log),
		pharmacist: Caller{ID: uuid.New(), Role: domain.RolePharmacist, IP: "127.0.0.1"},
		cashier:    Caller{ID: uuid.New(), Role: domain.RoleCashier, IP: "127.0.0.1"},
		customer:   Caller{ID: uuid.New(), Role: domain.RoleCustomer, IP: "127.0.0.1"},
	}
}

func (f *fixture) medicine(t *testing.T, name, batch string, stock int, price string) *inventory.Medicine {
	t.Helper()
	now := time.Now().UTC()
	m, err := f.inventory.CreateMedicine(f.ctx, &inventory.CreateMedicineCommand{
		Name:            name,
		Brand:           "Generic",
		Category:        inventory.CategoryAntibiotic,
		Type:            inventory.TypePrescription,
		Dosage:          "500mg",
		CostPrice:       decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		SellingPrice:    decimal.RequireFromString(price),
		QuantityInStock: stock,
		ManufactureDate: now.AddDate(0, -1, 0),
		ExpiryDate:      now.AddDate(1, 0, 0),
		BatchNumber:     batch,
		Supplier:        "Acme Pharma",
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("create medicine %s: %v", batch, err)
	}
	return m
}

func (f *fixture) prescription(t *testing.T) *prescription.Prescription {
	t.Helper()
	p, err := f.clinic.CreatePatient(f.ctx, &clinic.CreatePatientCommand{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:      clinic.GenderFemale,
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	d, err := f.clinic.CreateDoctor(f.ctx, &clinic.CreateDoctorCommand{
		FirstName:   "Gregory",
		LastName:    "House",
		MedicalCode: "MC-" + uuid.NewString()[:8],
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	rx, err := f.scripts.Create(f.ctx, &prescription.CreatePrescriptionCommand{
		PatientID: p.ID,
		DoctorID:  d.ID,
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("create prescription: %v", err)
	}
	return rx
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	m, err := f.inventory.GetMedicine(f.ctx, id, f.pharmacist)
	if err != nil {
		t.Fatalf("get medicine: %v", err)
	}
	return m.QuantityInStock
}

func (f *fixture) load(t *testing.T, id uuid.UUID) *prescription.Prescription {
	t.Helper()
	rx, err := f.scripts.Get(f.ctx, id, f.pharmacist)
	if err != nil {
		t.Fatalf("get prescription: %v", err)
	}
	return rx
}

// dispense adds a line that is expected to be filled completely.
func (f *fixture) dispense(t *testing.T, rxID, medID uuid.UUID, qty int) *prescription.Item {
	t.Helper()
	res, err := f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
		PrescriptionID:    rxID,
		MedicineID:        medID,
		RequestedQuantity: qty,
		Dosage:            "1 tablet",
		Duration:          "7 days",
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("dispense %d: %v", qty, err)
	}
	if res.Partial() {
		t.Fatalf("dispense %d: unexpected shortfall %+v", qty, res.Shortfall)
	}
	return res.Item
}
