package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/clinic"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/inventory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/prescription"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/domain/storefront"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// zapWriter routes gorm's slow-query and error lines into zap.
type zapWriter struct {
	log *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...any) {
	w.log.Warnf(format, args...)
}

func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.New(zapWriter{log: log.Named("gorm").Sugar()}, gormlogger.Config{
			SlowThreshold:             cfg.SlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Schemas are logical namespaces, one per domain package.
var Schemas = []string{"inventory", "clinic", "pharmacy", "storefront", "auth", "audit"}

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.AuditLog{},
		&inventory.Medicine{},
		&inventory.MedicineAction{},
		&inventory.NonMedicalProduct{},
		&clinic.Patient{},
		&clinic.Doctor{},
		&prescription.Prescription{},
		&prescription.Item{},
		&prescription.Payment{},
		&prescription.DrugInteraction{},
		&storefront.Product{},
		&storefront.Cart{},
		&storefront.CartItem{},
		&storefront.Order{},
		&storefront.OrderItem{},
	}
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	for _, schema := range Schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	createIndexes(db, log)

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

// createIndexes adds the indexes gorm tags cannot express. Failures are
// logged and skipped; none of them is needed for correctness except the
// open-cart index, which only narrows a race on cart creation.
func createIndexes(db *gorm.DB, log *zap.Logger) {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "uq_carts_open_per_user",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS uq_carts_open_per_user ON storefront.carts (user_id) WHERE status = 'open'`,
		},
		{
			name:  "idx_medicines_low_stock",
			query: `CREATE INDEX IF NOT EXISTS idx_medicines_low_stock ON inventory.medicines (quantity_in_stock) WHERE quantity_in_stock <= reorder_level`,
		},
		// Name search: GIN trigram indexes for ILIKE lookups
		{
			name:  "idx_medicines_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_medicines_name_trgm ON inventory.medicines USING gin (name gin_trgm_ops)`,
		},
		{
			name:  "idx_patients_name_trgm",
			query: `CREATE INDEX IF NOT EXISTS idx_patients_name_trgm ON clinic.patients USING gin ((first_name || ' ' || last_name) gin_trgm_ops)`,
		},
		{
			name:  "idx_prescriptions_unpaid",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_unpaid ON pharmacy.prescriptions (prescription_date DESC) WHERE is_paid = false`,
		},
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS pg_trgm").Error; err != nil {
		log.Warn("pg_trgm extension unavailable", zap.Error(err))
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			log.Warn("failed to create index", zap.String("index", idx.name), zap.Error(err))
		}
	}
}
