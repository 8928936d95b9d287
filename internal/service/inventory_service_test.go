package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

func TestCreateMedicineValidation(t *testing.T) {
	now := time.Now().UTC()
	valid := func() *inventory.CreateMedicineCommand {
		return &inventory.CreateMedicineCommand{
			Name:            "Amoxicillin",
			Brand:           "Generic",
			Category:        inventory.CategoryAntibiotic,
			Type:            inventory.TypePrescription,
			Dosage:          "500mg",
			SellingPrice:    decimal.NewFromInt(2),
			QuantityInStock: 10,
			ManufactureDate: now.AddDate(0, -1, 0),
			ExpiryDate:      now.AddDate(1, 0, 0),
			BatchNumber:     "B100",
			Supplier:        "Acme Pharma",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*inventory.CreateMedicineCommand)
		wantErr error
		invalid bool
	}{
		{"unknown category", func(c *inventory.CreateMedicineCommand) { c.Category = "Magic" }, inventory.ErrInvalidCategory, false},
		{"unknown type", func(c *inventory.CreateMedicineCommand) { c.Type = "XYZ" }, inventory.ErrInvalidMedicineType, false},
		{"expiry before manufacture", func(c *inventory.CreateMedicineCommand) { c.ExpiryDate = c.ManufactureDate.AddDate(0, 0, -1) }, inventory.ErrExpiryBeforeManufacture, false},
		{"negative stock", func(c *inventory.CreateMedicineCommand) { c.QuantityInStock = -1 }, inventory.ErrNegativeAmount, false},
		{"negative price", func(c *inventory.CreateMedicineCommand) { c.SellingPrice = decimal.NewFromInt(-1) }, nil, true},
		{"missing batch", func(c *inventory.CreateMedicineCommand) { c.BatchNumber = " " }, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			cmd := valid()
			tt.mutate(cmd)
			_, err := f.inventory.CreateMedicine(f.ctx, cmd, f.pharmacist)
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			var verr *ValidationError
			if tt.invalid && !errors.As(err, &verr) {
				t.Errorf("err = %v, want ValidationError", err)
			}
		})
	}

	f := newFixture(t)
	if _, err := f.inventory.CreateMedicine(f.ctx, valid(), f.pharmacist); err != nil {
		t.Fatalf("valid medicine: %v", err)
	}
	if _, err := f.inventory.CreateMedicine(f.ctx, valid(), f.pharmacist); !errors.Is(err, inventory.ErrBatchNumberTaken) {
		t.Errorf("duplicate batch: err = %v", err)
	}
}

func TestMedicineHistory(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B100", 10, "2.50")
	name := "Amoxicillin Forte"
	if _, err := f.inventory.UpdateMedicine(f.ctx, med.ID, &inventory.UpdateMedicineCommand{Name: &name}, f.pharmacist); err != nil {
		t.Fatalf("update: %v", err)
	}

	history, err := f.inventory.MedicineHistory(f.ctx, med.ID, f.pharmacist)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d entries, want 2", len(history))
	}
	if history[0].Action != inventory.ActionUpdated || history[0].MedicineName != name {
		t.Errorf("latest action = %+v", history[0])
	}
	if history[1].Action != inventory.ActionCreated || history[1].UserID == nil || *history[1].UserID != f.pharmacist.ID {
		t.Errorf("first action = %+v", history[1])
	}

	if err := f.inventory.DeleteMedicine(f.ctx, med.ID, f.pharmacist); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.inventory.GetMedicine(f.ctx, med.ID, f.pharmacist); !errors.Is(err, inventory.ErrMedicineNotFound) {
		t.Errorf("get after delete: err = %v", err)
	}
}

func TestRestockAndAlerts(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	low := f.medicine(t, "Amoxicillin", "LOW", 3, "2.50")
	f.medicine(t, "Ibuprofen", "OK", 50, "1.00")

	create := func(batch string, expiry time.Time) *inventory.Medicine {
		t.Helper()
		m, err := f.inventory.CreateMedicine(f.ctx, &inventory.CreateMedicineCommand{
			Name: "Insulin", Brand: "Novo", Category: inventory.CategoryAntidiabetic,
			Type: inventory.TypePrescription, Dosage: "100IU", SellingPrice: decimal.NewFromInt(20),
			QuantityInStock: 50, ManufactureDate: now.AddDate(-2, 0, 0), ExpiryDate: expiry,
			BatchNumber: batch, Supplier: "Novo",
		}, f.pharmacist)
		if err != nil {
			t.Fatalf("create %s: %v", batch, err)
		}
		return m
	}
	near := create("NEAR", now.AddDate(0, 0, 3))
	expired := create("GONE", now.AddDate(0, 0, -1))

	alerts, err := f.inventory.Alerts(f.ctx, f.cashier)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts.LowStock) != 1 || alerts.LowStock[0].ID != low.ID {
		t.Errorf("low stock = %v", alerts.LowStock)
	}
	if len(alerts.NearExpiry) != 1 || alerts.NearExpiry[0].ID != near.ID {
		t.Errorf("near expiry = %v", alerts.NearExpiry)
	}
	if len(alerts.Expired) != 1 || alerts.Expired[0].ID != expired.ID {
		t.Errorf("expired = %v", alerts.Expired)
	}

	restocked, err := f.inventory.RestockMedicine(f.ctx, low.ID, 20, f.pharmacist)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if restocked.QuantityInStock != 23 {
		t.Errorf("stock after restock = %d, want 23", restocked.QuantityInStock)
	}
	if _, err := f.inventory.RestockMedicine(f.ctx, low.ID, 0, f.pharmacist); err == nil {
		t.Error("restocking zero units should fail")
	}

	alerts, err = f.inventory.Alerts(f.ctx, f.cashier)
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts.LowStock) != 0 {
		t.Errorf("low stock after restock = %v", alerts.LowStock)
	}
}
