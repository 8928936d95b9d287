package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/export"
	v1 "github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/uow"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/tracer"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const metricsNamespace = "pharmaflow"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log, cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("server stopped")
}

type backend struct {
	factory uow.Factory
	users   service.UserRepository
	audit   service.AuditRepository
	close   func() error
}

func openBackend(cfg *config.Config, m *metrics.Collector, log *zap.Logger) (*backend, error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return &backend{
			factory: memory.NewStore(),
			users:   memory.NewUserStore(),
			audit:   memory.NewAuditStore(),
			close:   func() error { return nil },
		}, nil
	}

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	if err := database.Instrument(db, m.DBQueryDuration); err != nil {
		return nil, fmt.Errorf("instrumenting database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}
	if err := m.Register(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Name)); err != nil {
		return nil, fmt.Errorf("registering pool metrics: %w", err)
	}
	log.Info("connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("name", cfg.Database.Name),
	)

	return &backend{
		factory: postgres.NewFactory(db),
		users:   postgres.NewUserRepository(db),
		audit:   postgres.NewAuditRepository(db),
		close:   sqlDB.Close,
	}, nil
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initialising tracer: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	m := metrics.NewCollector(metricsNamespace)

	store, err := openBackend(cfg, m, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Warn("closing database", zap.Error(err))
		}
	}()

	audit := service.NewAuditService(store.audit, m, log)
	defer audit.Shutdown()

	jwtm := auth.NewJWTManager(cfg.JWT)
	letterhead := export.Letterhead{
		Name:           cfg.Pharmacy.Name,
		Address:        cfg.Pharmacy.Address,
		Phone:          cfg.Pharmacy.Phone,
		CurrencySymbol: cfg.Pharmacy.CurrencySymbol,
	}

	router := v1.NewRouter(v1.RouterConfig{
		App:    cfg.App,
		Server: cfg.Server,
		CORS:   cfg.CORS,
	}, v1.Services{
		Auth:          service.NewAuthService(store.users, jwtm, audit, log),
		Inventory:     service.NewInventoryService(store.factory, cfg.Pharmacy.NearExpiryWindow, audit, m, log),
		Clinic:        service.NewClinicService(store.factory, audit, log),
		Prescriptions: service.NewPrescriptionService(store.factory, letterhead, audit, m, log),
		Dispensing:    service.NewDispensingService(store.factory, audit, m, log),
		Storefront:    service.NewStorefrontService(store.factory, audit, m, log),
	}, jwtm, m, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("storage", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down http server", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
