package service

import (
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/database"
	"github.com/google/uuid"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testDSNEnv names a disposable database. Tests that need Postgres are
// skipped when it is unset.
const testDSNEnv = "PHARMAFLOW_TEST_DATABASE_DSN"

func openTestDB(t *testing.T) *gorm.DB {
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
	return db
}

// eachBackend runs fn against the in-memory store and, when a test database
// is configured, against Postgres.
func eachBackend(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, newFixture(t))
	})
	t.Run("postgres", func(t *testing.T) {
		fn(t, newFixtureOn(t, postgres.NewFactory(openTestDB(t))))
	})
}

func batch(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

func TestConcurrentDispensingNeverOversells(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		const onHand = 10
		med := f.medicine(t, "Amoxicillin", batch("B900"), onHand, "2.50")

		const workers = 12
		scripts := make([]uuid.UUID, workers)
		for i := range scripts {
			scripts[i] = f.prescription(t).ID
		}

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(rxID uuid.UUID) {
				defer wg.Done()
				res, err := f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
					PrescriptionID:    rxID,
					MedicineID:        med.ID,
					RequestedQuantity: 3,
					Dosage:            "1 capsule",
					Duration:          "3 days",
					ConfirmPartial:    true,
				}, f.pharmacist)
				if err != nil {
					t.Errorf("dispense: %v", err)
					return
				}
				if res.Item != nil {
					mu.Lock()
					total += res.Item.DispensedQuantity
					mu.Unlock()
				}
			}(scripts[i])
		}
		wg.Wait()

		if total != onHand {
			t.Errorf("dispensed %d units in total, want exactly %d", total, onHand)
		}
		if got := f.stock(t, med.ID); got != 0 {
			t.Errorf("stock = %d, want 0", got)
		}
	})
}

// Concurrent edits of one line must leave stock plus the line's dispensed
// quantity equal to what was on hand.
func TestConcurrentLineEditsKeepStockBalanced(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		const onHand = 40
		med := f.medicine(t, "Ibuprofen", batch("I200"), onHand, "0.30")
		rx := f.prescription(t)
		line := f.dispense(t, rx.ID, med.ID, 4)

		const workers = 16
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				var err error
				if i%4 == 0 {
					_, err = f.dispensing.AddItem(f.ctx, &prescription.DispenseCommand{
						PrescriptionID:    rx.ID,
						MedicineID:        med.ID,
						RequestedQuantity: 1,
						Dosage:            "1 tablet",
						Duration:          "7 days",
					}, f.pharmacist)
				} else {
					_, err = f.dispensing.UpdateItem(f.ctx, &prescription.UpdateItemCommand{
						PrescriptionID:    rx.ID,
						ItemID:            line.ID,
						RequestedQuantity: i%8 + 1,
					}, f.pharmacist)
				}
				if err != nil {
					t.Errorf("worker %d: %v", i, err)
				}
			}(i)
		}
		wg.Wait()

		got := f.load(t, rx.ID)
		if len(got.Items) != 1 {
			t.Fatalf("prescription has %d lines, want 1", len(got.Items))
		}
		it := got.Items[0]
		if it.DispensedQuantity != it.RequestedQuantity {
			t.Errorf("line dispensed %d of %d requested", it.DispensedQuantity, it.RequestedQuantity)
		}
		if s := f.stock(t, med.ID); s+it.DispensedQuantity != onHand {
			t.Errorf("stock %d + dispensed %d = %d, want %d", s, it.DispensedQuantity, s+it.DispensedQuantity, onHand)
		}

		var removed, missing int
		var mu sync.Mutex
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.dispensing.RemoveItem(f.ctx, rx.ID, line.ID, f.pharmacist)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					removed++
				case errors.Is(err, prescription.ErrItemNotFound):
					missing++
				default:
					t.Errorf("remove: %v", err)
				}
			}()
		}
		wg.Wait()
		if removed != 1 || missing != 2 {
			t.Errorf("removed %d times, %d not found; want 1 and 2", removed, missing)
		}
		if s := f.stock(t, med.ID); s != onHand {
			t.Errorf("stock after removal = %d, want %d", s, onHand)
		}
	})
}

func TestConcurrentPaymentsSettleOnce(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		med := f.medicine(t, "Metformin", batch("M300"), 20, "1.10")
		rx := f.prescription(t)
		f.dispense(t, rx.ID, med.ID, 6)

		var (
			wg              sync.WaitGroup
			mu              sync.Mutex
			paid, duplicate int
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.scripts.RecordPayment(f.ctx, &prescription.RecordPaymentCommand{
					PrescriptionID: rx.ID,
					Method:         prescription.MethodCard,
				}, f.cashier)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					paid++
				case errors.Is(err, prescription.ErrAlreadyPaid):
					duplicate++
				default:
					t.Errorf("record payment: %v", err)
				}
			}()
		}
		wg.Wait()

		if paid != 1 || duplicate != 3 {
			t.Errorf("paid %d times, %d rejected; want 1 and 3", paid, duplicate)
		}
		if got := f.load(t, rx.ID); !got.IsPaid || got.Payment == nil {
			t.Errorf("paid = %v, payment = %v", got.IsPaid, got.Payment)
		}
		if err := f.scripts.Delete(f.ctx, rx.ID, f.pharmacist); !errors.Is(err, prescription.ErrPaymentExists) {
			t.Errorf("delete paid prescription: err = %v", err)
		}
	})
}

func TestConcurrentCheckoutPlacesOneOrder(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		g := f.goods(t, "Hand Sanitizer", 10, "3.00")
		p := f.list(t, storefront.KindNonMedical, g.ID)
		if _, err := f.shop.AddToCart(f.ctx, p.ProductID, 3, f.customer); err != nil {
			t.Fatalf("add to cart: %v", err)
		}

		var (
			wg            sync.WaitGroup
			mu            sync.Mutex
			placed, empty int
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.shop.Checkout(f.ctx, f.customer)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					placed++
				case errors.Is(err, storefront.ErrCartEmpty):
					empty++
				default:
					t.Errorf("checkout: %v", err)
				}
			}()
		}
		wg.Wait()

		if placed != 1 || empty != 3 {
			t.Errorf("placed %d orders, %d empty carts; want 1 and 3", placed, empty)
		}
		if s := f.goodsStock(t, g); s != 7 {
			t.Errorf("stock = %d, want 7", s)
		}
	})
}

func TestConcurrentCancelReleasesOnce(t *testing.T) {
	eachBackend(t, func(t *testing.T, f *fixture) {
		g := f.goods(t, "Bandages", 12, "1.50")
		p := f.list(t, storefront.KindNonMedical, g.ID)
		if _, err := f.shop.AddToCart(f.ctx, p.ProductID, 5, f.customer); err != nil {
			t.Fatalf("add to cart: %v", err)
		}
		o, err := f.shop.Checkout(f.ctx, f.customer)
		if err != nil {
			t.Fatalf("checkout: %v", err)
		}

		var (
			wg                  sync.WaitGroup
			mu                  sync.Mutex
			cancelled, rejected int
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.shop.UpdateOrderStatus(f.ctx, o.ID, storefront.OrderCancelled, f.pharmacist)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					cancelled++
				case errors.Is(err, storefront.ErrInvalidStatusTransition):
					rejected++
				default:
					t.Errorf("cancel: %v", err)
				}
			}()
		}
		wg.Wait()

		if cancelled != 1 || rejected != 3 {
			t.Errorf("cancelled %d times, %d rejected; want 1 and 3", cancelled, rejected)
		}
		if s := f.goodsStock(t, g); s != 12 {
			t.Errorf("stock = %d, want 12", s)
		}
	})
}
