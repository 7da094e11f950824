package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "POST:/api/v1/payments:key-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = store.MarkProcessed(ctx, "POST:/api/v1/payments:key-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, isNew, "a retried payment key must not be marked twice")

	t.Run("expired key can be reused", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "short", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		isNew, err := store.MarkProcessed(ctx, "short", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "generate-1", time.Hour)
	require.NoError(t, err)

	seen, err := store.IsProcessed(ctx, "generate-1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, store.Release(ctx, "generate-1"))

	seen, err = store.IsProcessed(ctx, "generate-1")
	require.NoError(t, err)
	assert.False(t, seen)

	isNew, err := store.MarkProcessed(ctx, "generate-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew, "released key can be retried")
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, _ = store.MarkProcessed(ctx, "short-1", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "short-2", 10*time.Millisecond)
	_, _ = store.MarkProcessed(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const workers = 50
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		newCount int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "same-key", time.Hour)
			if err == nil && isNew {
				mu.Lock()
				newCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, newCount)
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestFactory_FallsBackToMemory(t *testing.T) {
	f := NewFactory(config.RedisConfig{Enabled: false}, WithLogger(zap.NewNop()))
	require.NoError(t, f.Connect(context.Background()))
	defer f.Close()

	assert.False(t, f.UsingRedis())
	assert.IsType(t, &InMemoryIdempotencyStore{}, f.IdempotencyStore())
	assert.NotNil(t, f.TokenBlacklist())
}

func TestFactory_RedisRequired(t *testing.T) {
	f := NewFactory(
		config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
		WithInMemoryFallback(false),
	)
	err := f.Connect(context.Background())
	assert.Error(t, err)
}
