package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	appbilling "github.com/utilitrack/backend/internal/application/billing"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// OverdueRefresher flags open bills whose due date has passed
type OverdueRefresher interface {
	RefreshOverdue(ctx context.Context, batchSize int) (*appbilling.OverdueRefreshResult, error)
}

// OverdueSchedulerConfig holds configuration for the overdue sweeper
type OverdueSchedulerConfig struct {
	Enabled bool

	// Interval between sweeps
	Interval time.Duration

	// BatchSize caps the bills examined per sweep
	BatchSize int

	// RunTimeout is the maximum time for a single sweep
	RunTimeout time.Duration

	// RunOnStart sweeps once immediately after Start
	RunOnStart bool
}

// DefaultOverdueSchedulerConfig returns default configuration
func DefaultOverdueSchedulerConfig() OverdueSchedulerConfig {
	return OverdueSchedulerConfig{
		Enabled:    false,
		Interval:   time.Hour,
		BatchSize:  500,
		RunTimeout: 5 * time.Minute,
		RunOnStart: true,
	}
}

// OverdueSchedulerConfigFrom maps the application configuration
func OverdueSchedulerConfigFrom(cfg config.SchedulerConfig) OverdueSchedulerConfig {
	c := DefaultOverdueSchedulerConfig()
	c.Enabled = cfg.OverdueEnabled
	if cfg.OverdueInterval > 0 {
		c.Interval = cfg.OverdueInterval
	}
	if cfg.OverdueBatchSize > 0 {
		c.BatchSize = cfg.OverdueBatchSize
	}
	if cfg.JobTimeout > 0 {
		c.RunTimeout = cfg.JobTimeout
	}
	return c
}

// Validate checks the configuration
func (c OverdueSchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// OverdueScheduler periodically moves past-due bills to Overdue
type OverdueScheduler struct {
	refresher OverdueRefresher
	logger    *zap.Logger
	config    OverdueSchedulerConfig

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runMu     sync.Mutex
	lastRun   *appbilling.OverdueRefreshResult
}

// NewOverdueScheduler creates a new overdue scheduler
func NewOverdueScheduler(
	refresher OverdueRefresher,
	logger *zap.Logger,
	config OverdueSchedulerConfig,
) *OverdueScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueScheduler{
		refresher: refresher,
		logger:    logger,
		config:    config,
	}
}

// Start starts the sweeper loop
func (s *OverdueScheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Overdue scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Overdue scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *OverdueScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Overdue scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Overdue scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *OverdueScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.execute(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Overdue loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

// execute runs one sweep. Sweeps never overlap.
func (s *OverdueScheduler) execute(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.refresher.RefreshOverdue(runCtx, s.config.BatchSize)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.lastRun = result
	s.mu.Unlock()

	s.logger.Debug("Overdue sweep completed",
		zap.Duration("duration", duration),
		zap.Int("checked", result.Checked),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("failed", result.Failed),
	)
}

// TriggerNow runs a sweep immediately in the background
func (s *OverdueScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// LastRun returns the result of the most recent successful sweep, or nil
func (s *OverdueScheduler) LastRun() *appbilling.OverdueRefreshResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// IsRunning returns whether the scheduler is running
func (s *OverdueScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
