package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// These tests need a disposable database named by PHARMAFLOW_TEST_DATABASE_DSN
// and are skipped without one. Every row they create carries a fresh id or
// batch number, so runs do not interfere.
const testDSNEnv = "PHARMAFLOW_TEST_DATABASE_DSN"

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewFactory(db)
}

func seedMedicine(t *testing.T, f *Factory, stock int) uuid.UUID {
	t.Helper()
	now := time.Now().UTC()
	m := &inventory.Medicine{
		Name:            "Amoxicillin",
		Brand:           "Generic",
		Category:        inventory.CategoryAntibiotic,
		Type:            inventory.TypePrescription,
		Dosage:          "500mg",
		SellingPrice:    decimal.NewFromInt(3),
		QuantityInStock: stock,
		ManufactureDate: now.AddDate(0, -1, 0),
		ExpiryDate:      now.AddDate(1, 0, 0),
		BatchNumber:     "PG-" + uuid.NewString(),
		Supplier:        "Acme Pharma",
	}
	err := uow.Do(context.Background(), f, func(u uow.UnitOfWork) error {
		return u.Medicines().Create(context.Background(), m)
	})
	if err != nil {
		t.Fatalf("seed medicine: %v", err)
	}
	return m.ID
}

func seedPrescription(t *testing.T, f *Factory) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	rx := &prescription.Prescription{PrescriptionDate: time.Now().UTC(), CreatedBy: uuid.New()}
	err := uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		p := &clinic.Patient{
			FirstName:   "Jane",
			LastName:    "Doe",
			DateOfBirth: time.Date(1980, 5, 17, 0, 0, 0, 0, time.UTC),
			Gender:      clinic.GenderFemale,
		}
		if err := u.Patients().Create(ctx, p); err != nil {
			return err
		}
		d := &clinic.Doctor{FirstName: "Gregory", LastName: "House", MedicalCode: "PG-" + uuid.NewString()[:12]}
		if err := u.Doctors().Create(ctx, d); err != nil {
			return err
		}
		rx.PatientID = p.ID
		rx.DoctorID = d.ID
		return u.Prescriptions().Create(ctx, rx)
	})
	if err != nil {
		t.Fatalf("seed prescription: %v", err)
	}
	return rx.ID
}

func stockOf(t *testing.T, f *Factory, id uuid.UUID) int {
	t.Helper()
	var n int
	err := uow.Do(context.Background(), f, func(u uow.UnitOfWork) error {
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
	f := newTestFactory(t)
	tests := []struct {
		name      string
		onHand    int
		amount    int
		committed int
		left      int
	}{
		{name: "covered", onHand: 10, amount: 4, committed: 4, left: 6},
		{name: "exact", onHand: 5, amount: 5, committed: 5, left: 0},
		{name: "short", onHand: 3, amount: 8, committed: 3, left: 0},
		{name: "empty", onHand: 0, amount: 2, committed: 0, left: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := seedMedicine(t, f, tt.onHand)
			var got int
			err := uow.Do(context.Background(), f, func(u uow.UnitOfWork) error {
				var err error
				got, err = u.Ledger().Reserve(context.Background(), id, tt.amount)
				return err
			})
			if err != nil {
				t.Fatalf("reserve: %v", err)
			}
			if got != tt.committed {
				t.Errorf("committed = %d, want %d", got, tt.committed)
			}
			if s := stockOf(t, f, id); s != tt.left {
				t.Errorf("stock = %d, want %d", s, tt.left)
			}
		})
	}
}

func TestLedgerReleaseAfterReserve(t *testing.T) {
	f := newTestFactory(t)
	id := seedMedicine(t, f, 9)
	ctx := context.Background()

	err := uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		if _, err := u.Ledger().Reserve(ctx, id, 7); err != nil {
			return err
		}
		return u.Ledger().Release(ctx, id, 7)
	})
	if err != nil {
		t.Fatalf("reserve and release: %v", err)
	}
	if s := stockOf(t, f, id); s != 9 {
		t.Errorf("stock = %d, want 9", s)
	}

	err = uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		_, err := u.Ledger().Reserve(ctx, uuid.New(), 1)
		return err
	})
	if !errors.Is(err, inventory.ErrMedicineNotFound) {
		t.Errorf("reserve unknown medicine: err = %v", err)
	}
}

func TestLedgerConcurrentReserveNeverOversells(t *testing.T) {
	f := newTestFactory(t)
	const onHand = 10
	id := seedMedicine(t, f, onHand)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var got int
			err := uow.Do(context.Background(), f, func(u uow.UnitOfWork) error {
				var err error
				got, err = u.Ledger().Reserve(context.Background(), id, 3)
				return err
			})
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			mu.Lock()
			total += got
			mu.Unlock()
		}()
	}
	wg.Wait()

	if total != onHand {
		t.Errorf("committed %d in total, want %d", total, onHand)
	}
	if s := stockOf(t, f, id); s != 0 {
		t.Errorf("stock = %d, want 0", s)
	}
}

// A second writer waits on the prescription lock and then reads what the
// first one committed.
func TestPrescriptionGetForUpdateSerializesWriters(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()
	id := seedPrescription(t, f)

	first, err := f.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer func() { _ = first.Rollback() }()
	rx, err := first.Prescriptions().GetForUpdate(ctx, id)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	seen := make(chan string, 1)
	go func() {
		var notes string
		err := uow.Do(ctx, f, func(u uow.UnitOfWork) error {
			got, err := u.Prescriptions().GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			notes = got.Notes
			return nil
		})
		if err != nil {
			t.Errorf("second lock: %v", err)
		}
		seen <- notes
	}()

	select {
	case <-seen:
		t.Fatal("second writer read the prescription while it was locked")
	case <-time.After(200 * time.Millisecond):
	}

	rx.Notes = "updated under lock"
	if err := first.Prescriptions().Update(ctx, rx); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := first.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	select {
	case notes := <-seen:
		if notes != "updated under lock" {
			t.Errorf("second writer saw notes %q", notes)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second writer never acquired the lock")
	}

	err = uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		_, err := u.Prescriptions().GetForUpdate(ctx, uuid.New())
		return err
	})
	if !errors.Is(err, prescription.ErrPrescriptionNotFound) {
		t.Errorf("lock unknown prescription: err = %v", err)
	}
}

func TestOrderUpdateStatusComparesStatus(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()
	o := &storefront.Order{
		UserID:      uuid.New(),
		CartID:      uuid.New(),
		Status:      storefront.OrderPending,
		TotalAmount: decimal.Zero,
	}
	if err := uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		return u.Orders().Create(ctx, o)
	}); err != nil {
		t.Fatalf("create order: %v", err)
	}

	move := func(id uuid.UUID, from, to storefront.OrderStatus) error {
		return uow.Do(ctx, f, func(u uow.UnitOfWork) error {
			return u.Orders().UpdateStatus(ctx, &storefront.Order{ID: id, Status: to}, from)
		})
	}
	if err := move(o.ID, storefront.OrderPending, storefront.OrderCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := move(o.ID, storefront.OrderPending, storefront.OrderCancelled); !errors.Is(err, storefront.ErrInvalidStatusTransition) {
		t.Errorf("cancel twice: err = %v", err)
	}
	if err := move(uuid.New(), storefront.OrderPending, storefront.OrderShipped); !errors.Is(err, storefront.ErrOrderNotFound) {
		t.Errorf("unknown order: err = %v", err)
	}
}

func TestOpenCartSkipsOrderedCart(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()
	user := uuid.New()

	var first *storefront.Cart
	err := uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		var err error
		if first, err = u.Carts().OpenForUser(ctx, user); err != nil {
			return err
		}
		first.Status = storefront.CartOrdered
		return u.Carts().Update(ctx, first)
	})
	if err != nil {
		t.Fatalf("order cart: %v", err)
	}

	var next *storefront.Cart
	err = uow.Do(ctx, f, func(u uow.UnitOfWork) error {
		var err error
		next, err = u.Carts().OpenForUser(ctx, user)
		return err
	})
	if err != nil {
		t.Fatalf("open cart: %v", err)
	}
	if next.ID == first.ID || next.Status != storefront.CartOpen {
		t.Errorf("got cart %s (%s), want a new open cart", next.ID, next.Status)
	}
}
