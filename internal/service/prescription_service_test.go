package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestDeleteWithPaymentIsRefused(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B100", 10, "2.50")
	rx := f.prescription(t)
	f.dispense(t, rx.ID, med.ID, 4)

	pay, err := f.scripts.RecordPayment(f.ctx, &prescription.RecordPaymentCommand{
		PrescriptionID: rx.ID,
		Method:         prescription.MethodCash,
	}, f.cashier)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if !pay.Amount.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("payment amount = %s, want 10.00", pay.Amount)
	}

	err = f.scripts.Delete(f.ctx, rx.ID, f.pharmacist)
	if !errors.Is(err, prescription.ErrPaymentExists) {
		t.Fatalf("delete: err = %v, want ErrPaymentExists", err)
	}
	got := f.load(t, rx.ID)
	if len(got.Items) != 1 || got.Items[0].DispensedQuantity != 4 {
		t.Errorf("items changed by refused delete: %+v", got.Items)
	}
	if !got.IsPaid {
		t.Error("prescription should be marked paid")
	}
	if s := f.stock(t, med.ID); s != 6 {
		t.Errorf("stock = %d, want 6", s)
	}

	if err := f.scripts.CancelPayment(f.ctx, rx.ID, f.pharmacist); err != nil {
		t.Fatalf("cancel payment: %v", err)
	}
	if f.load(t, rx.ID).IsPaid {
		t.Error("cancelling the payment should clear the paid flag")
	}
	if err := f.scripts.Delete(f.ctx, rx.ID, f.pharmacist); err != nil {
		t.Fatalf("delete after cancel: %v", err)
	}
	if s := f.stock(t, med.ID); s != 10 {
		t.Errorf("stock after delete = %d, want 10", s)
	}
	if _, err := f.scripts.Get(f.ctx, rx.ID, f.pharmacist); !errors.Is(err, prescription.ErrPrescriptionNotFound) {
		t.Errorf("get after delete: err = %v", err)
	}
}

func TestTotalCostFollowsLines(t *testing.T) {
	f := newFixture(t)
	a := f.medicine(t, "Amoxicillin", "B100", 10, "2.50")
	b := f.medicine(t, "Ibuprofen", "I100", 10, "1.10")
	rx := f.prescription(t)

	if c := f.load(t, rx.ID).TotalCost(); !c.IsZero() {
		t.Fatalf("empty prescription costs %s", c)
	}

	itemA := f.dispense(t, rx.ID, a.ID, 2)
	f.dispense(t, rx.ID, b.ID, 3)
	if c := f.load(t, rx.ID).TotalCost(); !c.Equal(decimal.RequireFromString("8.30")) {
		t.Errorf("total = %s, want 8.30", c)
	}

	if _, err := f.dispensing.UpdateItem(f.ctx, &prescription.UpdateItemCommand{
		PrescriptionID: rx.ID, ItemID: itemA.ID, RequestedQuantity: 4,
	}, f.pharmacist); err != nil {
		t.Fatalf("update: %v", err)
	}
	if c := f.load(t, rx.ID).TotalCost(); !c.Equal(decimal.RequireFromString("13.30")) {
		t.Errorf("total after update = %s, want 13.30", c)
	}

	// A later price change does not reprice existing lines.
	price := decimal.RequireFromString("99.00")
	if _, err := f.inventory.UpdateMedicine(f.ctx, a.ID, &inventory.UpdateMedicineCommand{SellingPrice: &price}, f.pharmacist); err != nil {
		t.Fatalf("reprice: %v", err)
	}
	if c := f.load(t, rx.ID).TotalCost(); !c.Equal(decimal.RequireFromString("13.30")) {
		t.Errorf("total after reprice = %s, want 13.30", c)
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	f := newFixture(t)
	rx := f.prescription(t)

	for i := 0; i < 2; i++ {
		got, err := f.scripts.MarkPaid(f.ctx, rx.ID, f.cashier)
		if err != nil {
			t.Fatalf("mark paid #%d: %v", i+1, err)
		}
		if !got.IsPaid {
			t.Fatalf("mark paid #%d left the prescription unpaid", i+1)
		}
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newFixture(t)
	rx := f.prescription(t)

	_, err := f.scripts.RecordPayment(f.ctx, &prescription.RecordPaymentCommand{
		PrescriptionID: rx.ID, Method: "barter",
	}, f.cashier)
	if !errors.Is(err, prescription.ErrInvalidPaymentMethod) {
		t.Errorf("bad method: err = %v", err)
	}

	_, err = f.scripts.RecordPayment(f.ctx, &prescription.RecordPaymentCommand{
		PrescriptionID: rx.ID, Method: prescription.MethodCard,
	}, f.cashier)
	if !errors.Is(err, prescription.ErrEmptyPrescription) {
		t.Errorf("empty prescription: err = %v", err)
	}

	_, err = f.scripts.RecordPayment(f.ctx, &prescription.RecordPaymentCommand{
		PrescriptionID: uuid.New(), Method: prescription.MethodCard,
	}, f.cashier)
	if !errors.Is(err, prescription.ErrPrescriptionNotFound) {
		t.Errorf("unknown prescription: err = %v", err)
	}
}

func TestUpdateDetailsInvalidates(t *testing.T) {
	f := newFixture(t)
	rx := f.prescription(t)

	if _, err := f.scripts.Validate(f.ctx, rx.ID, f.pharmacist); err != nil {
		t.Fatalf("validate: %v", err)
	}
	notes := "  take after meals "
	got, err := f.scripts.UpdateDetails(f.ctx, rx.ID, &prescription.UpdatePrescriptionCommand{Notes: &notes}, f.pharmacist)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.IsValidated {
		t.Error("header change should invalidate")
	}
	if got.Notes != "take after meals" {
		t.Errorf("notes = %q", got.Notes)
	}

	missing := uuid.New()
	_, err = f.scripts.UpdateDetails(f.ctx, rx.ID, &prescription.UpdatePrescriptionCommand{DoctorID: &missing}, f.pharmacist)
	if !errors.Is(err, clinic.ErrDoctorNotFound) {
		t.Errorf("unknown doctor: err = %v", err)
	}
}

func TestClinicRecordsInUseCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	rx := f.prescription(t)

	if err := f.clinic.DeletePatient(f.ctx, rx.PatientID, f.pharmacist); !errors.Is(err, clinic.ErrHasPrescriptions) {
		t.Errorf("delete patient: err = %v", err)
	}
	if err := f.clinic.DeleteDoctor(f.ctx, rx.DoctorID, f.pharmacist); !errors.Is(err, clinic.ErrHasPrescriptions) {
		t.Errorf("delete doctor: err = %v", err)
	}

	if err := f.scripts.Delete(f.ctx, rx.ID, f.pharmacist); err != nil {
		t.Fatalf("delete prescription: %v", err)
	}
	if err := f.clinic.DeletePatient(f.ctx, rx.PatientID, f.pharmacist); err != nil {
		t.Errorf("delete unreferenced patient: %v", err)
	}
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)
	med := f.medicine(t, "Amoxicillin", "B100", 10, "2.50")
	rx := f.prescription(t)
	f.dispense(t, rx.ID, med.ID, 2)

	doc, err := f.scripts.ExportPDF(f.ctx, rx.ID, f.cashier)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Error("export is not a PDF document")
	}

	if _, err := f.scripts.ExportPDF(f.ctx, rx.ID, f.customer); !errors.Is(err, ErrForbidden) {
		t.Errorf("customer export: err = %v, want ErrForbidden", err)
	}
}
