package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
	appcomplaint "github.com/utilitrack/backend/internal/application/complaint"
	appcustomer "github.com/utilitrack/backend/internal/application/customer"
	appidentity "github.com/utilitrack/backend/internal/application/identity"
	appmetering "github.com/utilitrack/backend/internal/application/metering"
	appreport "github.com/utilitrack/backend/internal/application/report"
	"github.com/utilitrack/backend/internal/infrastructure/auth"
	"github.com/utilitrack/backend/internal/infrastructure/cache"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"github.com/utilitrack/backend/internal/infrastructure/event"
	"github.com/utilitrack/backend/internal/infrastructure/logger"
	"github.com/utilitrack/backend/internal/infrastructure/migration"
	"github.com/utilitrack/backend/internal/infrastructure/persistence"
	"github.com/utilitrack/backend/internal/infrastructure/printing"
	"github.com/utilitrack/backend/internal/infrastructure/scheduler"
	"github.com/utilitrack/backend/internal/infrastructure/telemetry"
	"github.com/utilitrack/backend/internal/interfaces/http/handler"
	"github.com/utilitrack/backend/internal/interfaces/http/middleware"
	"github.com/utilitrack/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting UtiliTrack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry first so the database plugin and HTTP middleware see the real providers
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry, cfg.Database), log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if err := migrateSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log), cache.WithInMemoryFallback(!cfg.IsProduction()))
	if err := cacheFactory.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to cache", zap.Error(err))
	}
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	publisher, err := event.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Fatal("Failed to initialize event publisher", zap.Error(err))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Error closing event publisher", zap.Error(err))
		}
	}()

	events := telemetry.InstrumentPublisher(publisher, meterProvider.Meter("utilitrack/events"), log)

	// Repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	meterRepo := persistence.NewGormMeterRepository(db.DB)
	readingRepo := persistence.NewGormReadingRepository(db.DB)
	tariffRepo := persistence.NewGormTariffRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	complaintRepo := persistence.NewGormComplaintRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	reportRepo := persistence.NewGormUtilityReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	tokenBlacklist := cacheFactory.TokenBlacklist()

	tariffService := appbilling.NewTariffService(tariffRepo)
	billingService := appbilling.NewBillingService(
		billRepo, readingRepo, meterRepo, customerRepo, tariffService, txScope,
		appbilling.Settings{
			DueDays:          cfg.Billing.DueDays,
			BillNumberPrefix: cfg.Billing.BillNumberPrefix,
			Currency:         cfg.Billing.Currency,
		},
		log,
	)
	billingService.SetEventPublisher(events)
	paymentService := appbilling.NewPaymentService(paymentRepo, billRepo, txScope, cfg.Billing.Currency, log)
	paymentService.SetEventPublisher(events)

	userService := appidentity.NewUserService(userRepo, log)
	authService := appidentity.NewAuthService(userRepo, jwtService, tokenBlacklist, appidentity.AuthServiceConfig{
		MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
		LockDuration:     cfg.Auth.LockDuration,
	}, log)

	if cfg.Auth.AdminPassword != "" {
		if _, err := userService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
			log.Fatal("Failed to create bootstrap admin", zap.Error(err))
		}
	}

	templates := printing.NewTemplateEngine(printing.WithCompany(cfg.Printing.CompanyName, cfg.Printing.SupportPhone))
	var pdfRenderer printing.PDFRenderer
	if cfg.Printing.PDFEnabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfigFrom(cfg.Printing, log))
		defer func() {
			_ = chrome.Close()
		}()
		pdfRenderer = chrome
	}
	statementService := appbilling.NewStatementService(billRepo, paymentRepo, customerRepo, meterRepo, cfg.Billing.Currency)

	handlers := router.Handlers{
		System:    handler.NewSystemHandler(db, cacheFactory, telemetry.ServiceVersion),
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Customer:  handler.NewCustomerHandler(appcustomer.NewCustomerService(customerRepo, meterRepo)),
		Meter:     handler.NewMeterHandler(appmetering.NewMeterService(meterRepo, customerRepo)),
		Reading:   handler.NewReadingHandler(appmetering.NewReadingService(readingRepo, meterRepo)),
		Billing:   handler.NewBillingHandler(billingService),
		Statement: handler.NewStatementHandler(statementService, templates, pdfRenderer),
		Tariff:    handler.NewTariffHandler(tariffService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Complaint: handler.NewComplaintHandler(appcomplaint.NewComplaintService(complaintRepo, customerRepo)),
		Report:    handler.NewReportHandler(appreport.NewReportService(reportRepo, cfg.Billing.DefaulterDays)),
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Close()
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:           log,
		HTTP:             cfg.HTTP,
		AuthEnabled:      cfg.Auth.Enabled,
		JWTService:       jwtService,
		TokenBlacklist:   tokenBlacklist,
		IdempotencyStore: cacheFactory.IdempotencyStore(),
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     tracerProvider.IsEnabled(),
		},
		MeterProvider: meterProvider,
		RateLimiter:   rateLimiter,
	}, handlers)

	overdueScheduler := scheduler.NewOverdueScheduler(billingService, log, scheduler.OverdueSchedulerConfigFrom(cfg.Scheduler))
	if err := overdueScheduler.Start(ctx); err != nil {
		log.Fatal("Failed to start overdue scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := overdueScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping overdue scheduler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on PostgreSQL and AutoMigrate on sqlite
func migrateSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if db.Driver() == persistence.DriverSQLite {
		return db.AutoMigrate()
	}

	// golang-migrate closes the handle it is given, so it gets its own
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return m.Up()
}
