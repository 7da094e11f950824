package router

import (
	"github.com/gin-gonic/gin"
	"github.com/utilitrack/backend/internal/domain/identity"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/auth"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"github.com/utilitrack/backend/internal/infrastructure/logger"
	"github.com/utilitrack/backend/internal/infrastructure/telemetry"
	"github.com/utilitrack/backend/internal/interfaces/http/handler"
	"github.com/utilitrack/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	System    *handler.SystemHandler
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Customer  *handler.CustomerHandler
	Meter     *handler.MeterHandler
	Reading   *handler.ReadingHandler
	Billing   *handler.BillingHandler
	Statement *handler.StatementHandler
	Tariff    *handler.TariffHandler
	Payment   *handler.PaymentHandler
	Complaint *handler.ComplaintHandler
	Report    *handler.ReportHandler
}

// EngineConfig holds the cross-cutting dependencies of the HTTP engine
type EngineConfig struct {
	Logger *zap.Logger
	HTTP   config.HTTPConfig

	// AuthEnabled turns on JWT authentication and role checks
	AuthEnabled    bool
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist

	// IdempotencyStore is optional; without it Idempotency-Key headers are ignored
	IdempotencyStore shared.IdempotencyStore

	Tracing       middleware.TracingConfig
	MeterProvider *telemetry.MeterProvider
	RateLimiter   *middleware.RateLimiter
}

// NewEngine builds the gin engine with the middleware stack and every UtiliTrack route
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing and metrics
	// 5. Security headers, CORS, body limit, rate limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(cfg.MeterProvider, log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	// Health endpoints (outside API versioning)
	engine.GET("/health", h.System.Health)
	engine.GET("/test", h.System.Test)

	r := NewRouter(engine, WithAPIVersion("v1"))

	requireRoles := func(roles ...string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.AuthEnabled {
		r.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService:     cfg.JWTService,
			TokenBlacklist: cfg.TokenBlacklist,
			SkipPaths:      middleware.DefaultJWTConfig(cfg.JWTService).SkipPaths,
			Logger:         log,
		}))
		requireRoles = middleware.RequireRoles
	} else {
		log.Warn("Authentication disabled: every API route is public")
	}

	adminOnly := requireRoles(string(identity.RoleAdmin))
	cashiers := requireRoles(string(identity.RoleAdmin), string(identity.RoleCashier))
	idempotent := middleware.Idempotency(cfg.IdempotencyStore, cfg.HTTP.IdempotencyTTL)

	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.RefreshToken)
	authRoutes.POST("/logout", h.Auth.Logout)
	authRoutes.GET("/me", h.Auth.GetCurrentUser)

	userRoutes := NewDomainGroup("users", "/users")
	userRoutes.POST("", adminOnly, h.User.Create)

	customerRoutes := NewDomainGroup("customers", "/customers")
	customerRoutes.GET("", h.Customer.List)
	customerRoutes.GET("/:id", h.Customer.GetByID)
	customerRoutes.POST("", h.Customer.Create)
	customerRoutes.PUT("/:id", h.Customer.Update)
	customerRoutes.DELETE("/:id", h.Customer.Delete)

	meterRoutes := NewDomainGroup("meters", "/meters")
	meterRoutes.GET("", h.Meter.List)
	meterRoutes.GET("/customer/:customer_id", h.Meter.ListByCustomer)
	meterRoutes.GET("/:id", h.Meter.GetByID)
	meterRoutes.POST("", h.Meter.Create)
	meterRoutes.PUT("/:id/status", h.Meter.UpdateStatus)

	readingRoutes := NewDomainGroup("readings", "/readings")
	readingRoutes.GET("", h.Reading.List)
	readingRoutes.GET("/meter/:meter_id", h.Reading.ListByMeter)
	readingRoutes.GET("/meter/:meter_id/history", h.Reading.History)
	readingRoutes.GET("/meter/:meter_id/last", h.Reading.Last)
	readingRoutes.POST("/import", h.Reading.Import)
	readingRoutes.GET("/:id", h.Reading.GetByID)
	readingRoutes.POST("", h.Reading.Create)
	readingRoutes.PUT("/:id", h.Reading.Update)
	readingRoutes.DELETE("/:id", h.Reading.Delete)

	billingRoutes := NewDomainGroup("billing", "/billing")
	billingRoutes.GET("", h.Billing.List)
	billingRoutes.GET("/unprocessed-readings", h.Billing.UnprocessedReadings)
	billingRoutes.GET("/preview/:reading_id", h.Billing.Preview)
	billingRoutes.GET("/stats/summary", h.Billing.Stats)
	billingRoutes.GET("/:id", h.Billing.GetByID)
	billingRoutes.GET("/:id/statement", h.Statement.Get)
	billingRoutes.POST("/generate", idempotent, h.Billing.Generate)
	billingRoutes.POST("/overdue/refresh", h.Billing.RefreshOverdue)
	billingRoutes.PUT("/:id/cancel", adminOnly, h.Billing.Cancel)

	tariffRoutes := NewDomainGroup("tariffs", "/tariffs")
	tariffRoutes.GET("", h.Tariff.List)
	tariffRoutes.GET("/resolve", h.Tariff.Resolve)
	tariffRoutes.GET("/:id", h.Tariff.GetByID)
	tariffRoutes.POST("", adminOnly, h.Tariff.Create)
	tariffRoutes.PUT("/:id/close", adminOnly, h.Tariff.Close)

	paymentRoutes := NewDomainGroup("payments", "/payments")
	paymentRoutes.GET("", h.Payment.List)
	paymentRoutes.GET("/bill/:bill_id", h.Payment.ListByBill)
	paymentRoutes.GET("/customer/:customer_id", h.Payment.ListByCustomer)
	paymentRoutes.GET("/:id", h.Payment.GetByID)
	paymentRoutes.POST("", cashiers, idempotent, h.Payment.Apply)
	paymentRoutes.PUT("/:id/verify", h.Payment.Verify)
	paymentRoutes.PUT("/:id/refund", adminOnly, h.Payment.Refund)

	complaintRoutes := NewDomainGroup("complaints", "/complaints")
	complaintRoutes.GET("", h.Complaint.List)
	complaintRoutes.GET("/search", h.Complaint.Search)
	complaintRoutes.GET("/filter", h.Complaint.List)
	complaintRoutes.GET("/customer/:customer_id", h.Complaint.ListByCustomer)
	complaintRoutes.GET("/:id", h.Complaint.GetByID)
	complaintRoutes.POST("", h.Complaint.Create)
	complaintRoutes.PUT("/:id", h.Complaint.Update)
	complaintRoutes.PUT("/:id/assign", h.Complaint.Assign)
	complaintRoutes.PUT("/:id/status", h.Complaint.ChangeStatus)
	complaintRoutes.PUT("/:id/resolve", h.Complaint.Resolve)
	complaintRoutes.DELETE("/:id", h.Complaint.Delete)

	reportRoutes := NewDomainGroup("reports", "/reports")
	reportRoutes.GET("/dashboard-summary", h.Report.DashboardSummary)
	reportRoutes.GET("/today-revenue", h.Report.TodayRevenue)
	reportRoutes.GET("/revenue-trends", h.Report.RevenueTrends)
	reportRoutes.GET("/utility-distribution", h.Report.UtilityDistribution)
	reportRoutes.GET("/recent-activity", h.Report.RecentActivity)
	reportRoutes.GET("/unpaid-bills", h.Report.UnpaidBills)
	reportRoutes.GET("/monthly-revenue", h.Report.MonthlyRevenue)
	reportRoutes.GET("/active-connections", h.Report.ActiveConnections)
	reportRoutes.GET("/defaulters", h.Report.Defaulters)
	reportRoutes.GET("/payment-history", h.Report.PaymentHistory)
	reportRoutes.GET("/consumption-trends", h.Report.ConsumptionTrends)
	reportRoutes.GET("/collection-efficiency", h.Report.CollectionEfficiency)
	reportRoutes.GET("/reading-stats", h.Report.ReadingStats)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(customerRoutes).
		Register(meterRoutes).
		Register(readingRoutes).
		Register(billingRoutes).
		Register(tariffRoutes).
		Register(paymentRoutes).
		Register(complaintRoutes).
		Register(reportRoutes)
	r.Setup()

	return engine
}
