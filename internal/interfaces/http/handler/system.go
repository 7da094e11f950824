package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/utilitrack/backend/internal/infrastructure/logger"
	"github.com/utilitrack/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health and connectivity endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	cache     Pinger
	version   string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. cache may be nil.
func NewSystemHandler(db Pinger, cache Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		cache:     cache,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Time      string `json:"time"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports that the process is up. It does not touch the database.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "healthy",
		Time:      time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// ConnectivityResponse represents the dependency check response
type ConnectivityResponse struct {
	Status   string `json:"status"`
	Time     string `json:"time"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// Test checks database (and cache, when configured) connectivity
func (h *SystemHandler) Test(c *gin.Context) {
	reqLog := logger.GetGinLogger(c)
	resp := ConnectivityResponse{
		Status:   "ok",
		Time:     time.Now().UTC().Format(time.RFC3339),
		Database: "ok",
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		reqLog.Warn("Database connectivity check failed", zap.Error(err))
		resp.Status, resp.Database = "unhealthy", "error"
		status = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Cache = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			// the cache is optional; report it without failing the check
			reqLog.Warn("Cache connectivity check failed", zap.Error(err))
			resp.Cache = "error"
		}
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
