package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/auth"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory builds the Redis-backed stores (request idempotency keys and the token blacklist)
// on one shared client, or their in-memory counterparts when Redis is disabled or unreachable.
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool

	client           *redis.Client
	idempotencyStore shared.IdempotencyStore
	tokenBlacklist   auth.TokenBlacklist
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect dials Redis when enabled and builds the stores
func (f *Factory) Connect(ctx context.Context) error {
	if f.redisConfig.Enabled {
		client, err := NewRedisClient(ctx, f.redisConfig)
		if err == nil {
			f.client = client
			f.idempotencyStore = NewRedisIdempotencyStore(client, "")
			f.tokenBlacklist = auth.NewRedisTokenBlacklist(client)
			f.logger.Info("Using Redis for idempotency keys and token blacklist",
				zap.String("addr", f.redisConfig.Addr()))
			return nil
		}
		if !f.allowInMemoryFallback {
			return fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Idempotency keys and revoked tokens are not shared between instances.",
			zap.Error(err))
	}

	f.idempotencyStore = NewInMemoryIdempotencyStore()
	f.tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	return nil
}

// UsingRedis reports whether the stores are Redis-backed
func (f *Factory) UsingRedis() bool {
	return f.client != nil
}

// IdempotencyStore returns the request idempotency store
func (f *Factory) IdempotencyStore() shared.IdempotencyStore {
	return f.idempotencyStore
}

// TokenBlacklist returns the revoked token store
func (f *Factory) TokenBlacklist() auth.TokenBlacklist {
	return f.tokenBlacklist
}

// Ping checks the Redis connection; always nil for in-memory stores
func (f *Factory) Ping(ctx context.Context) error {
	if f.client == nil {
		return nil
	}
	return f.client.Ping(ctx).Err()
}

// Close releases the stores and the Redis client
func (f *Factory) Close() error {
	if f.idempotencyStore != nil {
		_ = f.idempotencyStore.Close()
	}
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
