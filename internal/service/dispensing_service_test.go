package service

import (
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/google/uuid"
)

func TestAddItemShortfallNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B100", 5, "2.50")
	rx := f.prescription(t)

	cmd := &prescription.DispenseCommand{
		PrescriptionID:    rx.ID,
		MedicineID:        med.ID,
		RequestedQuantity: 8,
		Dosage:            "1 capsule",
		Duration:          "7 days",
	}
	_, err := f.dispensing.AddItem(f.ctx, cmd, f.pharmacist)

	var short *prescription.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if short.Shortfall.Available != 5 || short.Shortfall.Requested != 8 {
		t.Errorf("shortfall = %+v, want available 5 requested 8", short.Shortfall)
	}
	if short.Shortfall.BatchNumber != "B100" || short.Shortfall.MedicineID != med.ID {
		t.Errorf("shortfall does not identify the batch: %+v", short.Shortfall)
	}
	if got := f.stock(t, med.ID); got != 5 {
		t.Errorf("stock after unconfirmed shortfall = %d, want 5", got)
	}
	if n := len(f.load(t, rx.ID).Items); n != 0 {
		t.Errorf("unconfirmed shortfall created %d items", n)
	}

	cmd.ConfirmPartial = true
	res, err := f.dispensing.AddItem(f.ctx, cmd, f.pharmacist)
	if err != nil {
		t.Fatalf("confirmed dispense: %v", err)
	}
	if res.Item == nil || res.Item.DispensedQuantity != 5 || res.Item.RequestedQuantity != 8 {
		t.Fatalf("confirmed item = %+v, want dispensed 5 of 8", res.Item)
	}
	if !res.Partial() {
		t.Error("confirmed partial fill should carry the shortfall")
	}
	if got := f.stock(t, med.ID); got != 0 {
		t.Errorf("stock after confirmed dispense = %d, want 0", got)
	}
}

func TestAddItemConfirmedWithNothingOnHand(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B200", 0, "2.50")
	rx := f.prescription(t)

	res, err := f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
		PrescriptionID:    rx.ID,
		MedicineID:        med.ID,
		RequestedQuantity: 3,
		Dosage:            "1 capsule",
		Duration:          "7 days",
		ConfirmPartial:    true,
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("dispense: %v", err)
	}
	if res.Item != nil {
		t.Errorf("expected no line item, got %+v", res.Item)
	}
	if res.Shortfall == nil || res.Shortfall.Available != 0 || res.Shortfall.Requested != 3 {
		t.Errorf("shortfall = %+v", res.Shortfall)
	}
	if n := len(f.load(t, rx.ID).Items); n != 0 {
		t.Errorf("prescription has %d items, want 0", n)
	}
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B300", 5, "2.50")
	rx := f.prescription(t)

	for _, qty := range []int{0, -4} {
		_, err := f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
			PrescriptionID:    rx.ID,
			MedicineID:        med.ID,
			RequestedQuantity: qty,
			Dosage:            "1 capsule",
			Duration:          "7 days",
		}, f.pharmacist)
		if !errors.Is(err, prescription.ErrInvalidQuantity) {
			t.Errorf("qty %d: err = %v, want ErrInvalidQuantity", qty, err)
		}
	}
	if got := f.stock(t, med.ID); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
}

func TestAddItemMergesSameBatch(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Ibuprofen", "B400", 20, "1.00")
	rx := f.prescription(t)

	first := f.dispense(t, rx.ID, med.ID, 4)
	res, err := f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
		PrescriptionID:    rx.ID,
		MedicineID:        med.ID,
		RequestedQuantity: 6,
		Dosage:            "2 tablets",
		Duration:          "5 days",
	}, f.pharmacist)
	if err != nil {
		t.Fatalf("second dispense: %v", err)
	}
	if !res.Merged || res.Item.ID != first.ID {
		t.Fatalf("expected merge into %s, got %+v", first.ID, res)
	}
	if res.Item.RequestedQuantity != 10 || res.Item.DispensedQuantity != 10 {
		t.Errorf("merged line = %d/%d, want 10/10", res.Item.DispensedQuantity, res.Item.RequestedQuantity)
	}
	if n := len(f.load(t, rx.ID).Items); n != 1 {
		t.Errorf("prescription has %d lines, want 1", n)
	}
	if got := f.stock(t, med.ID); got != 10 {
		t.Errorf("stock = %d, want 10", got)
	}
}

func TestUpdateItemDelta(t *testing.T) {
	tests := []struct {
		name          string
		initialStock  int
		dispensed     int
		newRequested  int
		wantDispensed int
		wantStock     int
	}{
		{"increase by one with stock on hand", 8, 5, 6, 6, 2},
		{"decrease returns the difference", 10, 10, 4, 4, 6},
		{"unchanged quantity", 7, 3, 3, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			med := f.medicine(t, "Paracetamol", "P-"+uuid.NewString()[:6], tt.initialStock, "0.80")
			rx := f.prescription(t)
			item := f.dispense(t, rx.ID, med.ID, tt.dispensed)

			res, err := f.dispensing.UpdateItem(f.ctx, &prescription.UpdateItemCommand{
				PrescriptionID:    rx.ID,
				ItemID:            item.ID,
				RequestedQuantity: tt.newRequested,
			}, f.pharmacist)
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if res.Partial() {
				t.Errorf("unexpected shortfall %+v", res.Shortfall)
			}
			if res.Item.DispensedQuantity != tt.wantDispensed {
				t.Errorf("dispensed = %d, want %d", res.Item.DispensedQuantity, tt.wantDispensed)
			}
			if got := f.stock(t, med.ID); got != tt.wantStock {
				t.Errorf("stock = %d, want %d", got, tt.wantStock)
			}
		})
	}
}

func TestUpdateItemShortfallNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B500", 7, "2.50")
	rx := f.prescription(t)
	item := f.dispense(t, rx.ID, med.ID, 5)

	cmd := &prescription.UpdateItemCommand{
		PrescriptionID:    rx.ID,
		ItemID:            item.ID,
		RequestedQuantity: 10,
	}
	_, err := f.dispensing.UpdateItem(f.ctx, cmd, f.pharmacist)
	var short *prescription.InsufficientStockError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if short.Shortfall.Available != 7 || short.Shortfall.Requested != 10 {
		t.Errorf("shortfall = %+v, want available 7 (5 held + 2 on hand) requested 10", short.Shortfall)
	}
	if got := f.stock(t, med.ID); got != 2 {
		t.Errorf("stock after unconfirmed update = %d, want 2", got)
	}
	if got := f.load(t, rx.ID).Items[0]; got.DispensedQuantity != 5 || got.RequestedQuantity != 5 {
		t.Errorf("line changed without confirmation: %d/%d", got.DispensedQuantity, got.RequestedQuantity)
	}

	cmd.ConfirmPartial = true
	res, err := f.dispensing.UpdateItem(f.ctx, cmd, f.pharmacist)
	if err != nil {
		t.Fatalf("confirmed update: %v", err)
	}
	if res.Item.DispensedQuantity != 7 || res.Item.RequestedQuantity != 10 || !res.Partial() {
		t.Errorf("confirmed update = %d/%d partial=%v, want 7/10 partial", res.Item.DispensedQuantity, res.Item.RequestedQuantity, res.Partial())
	}
	if got := f.stock(t, med.ID); got != 0 {
		t.Errorf("stock = %d, want 0", got)
	}
}

func TestUpdateItemCannotChangeBatch(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B600", 5, "2.50")
	other := f.medicine(t, "Amoxicillin", "B601", 5, "2.50")
	rx := f.prescription(t)
	item := f.dispense(t, rx.ID, med.ID, 2)

	_, err := f.dispensing.UpdateItem(f.ctx, &prescription.UpdateItemCommand{
		PrescriptionID:    rx.ID,
		ItemID:            item.ID,
		MedicineID:        &other.ID,
		RequestedQuantity: 2,
	}, f.pharmacist)
	if !errors.Is(err, prescription.ErrBatchImmutable) {
		t.Fatalf("err = %v, want ErrBatchImmutable", err)
	}
}

func TestRemoveItemReturnsLastDispensed(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Cetirizine", "C100", 20, "0.40")
	rx := f.prescription(t)
	item := f.dispense(t, rx.ID, med.ID, 3)

	for _, qty := range []int{9, 2, 6} {
		if _, err := f.dispensing.UpdateItem(f.ctx, &prescription.UpdateItemCommand{
			PrescriptionID:    rx.ID,
			ItemID:            item.ID,
			RequestedQuantity: qty,
		}, f.pharmacist); err != nil {
			t.Fatalf("update to %d: %v", qty, err)
		}
	}
	if got := f.stock(t, med.ID); got != 14 {
		t.Fatalf("stock before removal = %d, want 14", got)
	}

	res, err := f.dispensing.RemoveItem(f.ctx, rx.ID, item.ID, f.pharmacist)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if res.ReturnedQuantity != 6 {
		t.Errorf("returned = %d, want 6", res.ReturnedQuantity)
	}
	if got := f.stock(t, med.ID); got != 20 {
		t.Errorf("stock after removal = %d, want 20", got)
	}
	if n := len(f.load(t, rx.ID).Items); n != 0 {
		t.Errorf("prescription still has %d items", n)
	}
}

func TestLineChangesInvalidatePrescription(t *testing.T) {
	f := newFixture(t)
	warfarin := f.medicine(t, "Warfarin", "W100", 10, "1.20")
	aspirin := f.medicine(t, "Aspirin", "A100", 10, "0.30")
	rx := f.prescription(t)

	if _, err := f.scripts.AddInteraction(f.ctx, &prescription.DrugInteraction{
		MedicineA:   "Aspirin",
		MedicineB:   "Warfarin",
		Severity:    prescription.SeverityMajor,
		Description: "increased bleeding risk",
	}, f.pharmacist); err != nil {
		t.Fatalf("add interaction: %v", err)
	}

	item := f.dispense(t, rx.ID, warfarin.ID, 2)
	f.dispense(t, rx.ID, aspirin.ID, 2)

	validate := func() {
		t.Helper()
		got, err := f.scripts.Validate(f.ctx, rx.ID, f.pharmacist)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if !got.IsValidated || got.InteractionWarning == nil {
			t.Fatalf("validate did not flag the interaction: %+v", got)
		}
	}
	assertInvalid := func(step string) {
		t.Helper()
		got := f.load(t, rx.ID)
		if got.IsValidated || got.InteractionWarning != nil {
			t.Errorf("%s: prescription still validated (warning %v)", step, got.InteractionWarning)
		}
	}

	validate()
	f.dispense(t, rx.ID, warfarin.ID, 1)
	assertInvalid("add")

	validate()
	if _, err := f.dispensing.UpdateItem(f.ctx, &prescription.UpdateItemCommand{
		PrescriptionID: rx.ID, ItemID: item.ID, RequestedQuantity: 1,
	}, f.pharmacist); err != nil {
		t.Fatalf("update: %v", err)
	}
	assertInvalid("update")

	validate()
	if _, err := f.dispensing.RemoveItem(f.ctx, rx.ID, item.ID, f.pharmacist); err != nil {
		t.Fatalf("remove: %v", err)
	}
	assertInvalid("remove")
}

func TestDispensingRequiresDispenserRole(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B950", 5, "2.50")
	rx := f.prescription(t)

	_, err := f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
		PrescriptionID:    rx.ID,
		MedicineID:        med.ID,
		RequestedQuantity: 1,
		Dosage:            "1 capsule",
		Duration:          "1 day",
	}, f.cashier)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
