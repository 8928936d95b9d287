package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedMedicine(t *testing.T, s *Store, batch string, stock int) uuid.UUID {
	t.Helper()
	m := &inventory.Medicine{
		Name:            "Amoxicillin",
		Dosage:          "500mg",
		BatchNumber:     batch,
		SellingPrice:    decimal.NewFromInt(3),
		QuantityInStock: stock,
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
	}
	err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
		return u.Medicines().Create(context.Background(), m)
	})
	if err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return m.ID
}

func stockOf(t *testing.T, s *Store, id uuid.UUID) int {
	t.Helper()
	var n int
	err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
		m, err := u.Medicines().GetByID(context.Background(), id)
		if err != nil {
			return err
		}
		n = m.QuantityInStock
		return nil
	})
	if err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return n
}

func TestLedgerReserve(t *testing.T) {
	tests := []struct {
		name      string
		onHand    int
		amount    int
		committed int
		left      int
	}{
		{"full", 10, 4, 4, 6},
		{"short", 5, 8, 5, 0},
		{"empty", 0, 3, 0, 0},
		{"zero amount", 7, 0, 0, 7},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			id := seedMedicine(t, s, "B-"+tc.name, tc.onHand)

			var got int
			err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
				var err error
				got, err = u.Ledger().Reserve(context.Background(), id, tc.amount)
				return err
			})
			if err != nil {
				t.Fatalf("reserve: %v", err)
			}
			if got != tc.committed {
				t.Errorf("committed = %d, want %d", got, tc.committed)
			}
			if left := stockOf(t, s, id); left != tc.left {
				t.Errorf("on hand = %d, want %d", left, tc.left)
			}
		})
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	s := NewStore()
	id := seedMedicine(t, s, "B100", 9)

	err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
		n, err := u.Ledger().Reserve(context.Background(), id, 6)
		if err != nil {
			return err
		}
		return u.Ledger().Release(context.Background(), id, n)
	})
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got := stockOf(t, s, id); got != 9 {
		t.Errorf("on hand = %d, want 9", got)
	}
}

func TestRollbackDiscardsChanges(t *testing.T) {
	s := NewStore()
	id := seedMedicine(t, s, "B200", 5)
	boom := errors.New("boom")

	err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
		if _, err := u.Ledger().Reserve(context.Background(), id, 5); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := stockOf(t, s, id); got != 5 {
		t.Errorf("on hand = %d after rollback, want 5", got)
	}
}

func TestLedgerRejectsNegativeAndUnknown(t *testing.T) {
	s := NewStore()
	id := seedMedicine(t, s, "B300", 5)

	u, err := s.Begin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer u.Rollback()

	if _, err := u.Ledger().Reserve(context.Background(), id, -1); !errors.Is(err, inventory.ErrNegativeAmount) {
		t.Errorf("negative reserve: got %v", err)
	}
	if err := u.Ledger().Release(context.Background(), uuid.New(), 1); !errors.Is(err, inventory.ErrMedicineNotFound) {
		t.Errorf("unknown release: got %v", err)
	}
}

func TestMedicineUpdateKeepsStock(t *testing.T) {
	s := NewStore()
	id := seedMedicine(t, s, "B400", 12)

	err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
		m, err := u.Medicines().GetByID(context.Background(), id)
		if err != nil {
			return err
		}
		m.Name = "Amoxil"
		m.QuantityInStock = 999
		return u.Medicines().Update(context.Background(), m)
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := stockOf(t, s, id); got != 12 {
		t.Errorf("stock = %d, want 12", got)
	}
}

func TestReferentialProtection(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	medID := seedMedicine(t, s, "B500", 5)

	var scriptID, patientID uuid.UUID
	err := uow.Do(ctx, s, func(u uow.UnitOfWork) error {
		p := &clinic.Patient{FirstName: "Ada", LastName: "Lovelace"}
		if err := u.Patients().Create(ctx, p); err != nil {
			return err
		}
		d := &clinic.Doctor{FirstName: "Gregory", LastName: "House", MedicalCode: "MC-1"}
		if err := u.Doctors().Create(ctx, d); err != nil {
			return err
		}
		rx := &prescription.Prescription{PatientID: p.ID, DoctorID: d.ID, PrescriptionDate: time.Now()}
		if err := u.Prescriptions().Create(ctx, rx); err != nil {
			return err
		}
		item := &prescription.Item{PrescriptionID: rx.ID, MedicineID: medID, Position: 1, RequestedQuantity: 2, DispensedQuantity: 2}
		if err := u.Items().Create(ctx, item); err != nil {
			return err
		}
		scriptID, patientID = rx.ID, p.ID
		return u.Payments().Create(ctx, &prescription.Payment{PrescriptionID: rx.ID, Method: prescription.MethodCash})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	u, err := s.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer u.Rollback()

	if err := u.Medicines().Delete(ctx, medID); !errors.Is(err, inventory.ErrMedicineInUse) {
		t.Errorf("delete medicine: got %v, want ErrMedicineInUse", err)
	}
	if err := u.Patients().Delete(ctx, patientID); !errors.Is(err, clinic.ErrHasPrescriptions) {
		t.Errorf("delete patient: got %v, want ErrHasPrescriptions", err)
	}
	if err := u.Prescriptions().Delete(ctx, scriptID); !errors.Is(err, prescription.ErrPaymentExists) {
		t.Errorf("delete prescription: got %v, want ErrPaymentExists", err)
	}

	rx, err := u.Prescriptions().GetByID(ctx, scriptID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rx.Items) != 1 || rx.Items[0].Medicine == nil || rx.Payment == nil {
		t.Errorf("prescription not fully loaded: %+v", rx)
	}
}

func TestDuplicateBatchNumber(t *testing.T) {
	s := NewStore()
	seedMedicine(t, s, "DUP", 1)

	err := uow.Do(context.Background(), s, func(u uow.UnitOfWork) error {
		return u.Medicines().Create(context.Background(), &inventory.Medicine{BatchNumber: "DUP"})
	})
	if !errors.Is(err, inventory.ErrBatchNumberTaken) {
		t.Errorf("got %v, want ErrBatchNumberTaken", err)
	}
}

func TestCommitTwice(t *testing.T) {
	s := NewStore()
	u, err := s.Begin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := u.Commit(); !errors.Is(err, uow.ErrFinished) {
		t.Errorf("second commit: got %v", err)
	}
	if err := u.Rollback(); err != nil {
		t.Errorf("rollback after commit: %v", err)
	}
}
