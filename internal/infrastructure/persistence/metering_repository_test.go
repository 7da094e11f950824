package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func TestGormMeterRepository(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewGormMeterRepository(db)

	t.Run("find by number is case-insensitive", func(t *testing.T) {
		m, err := repo.FindByNumber(f.ctx, "EL-0001")
		require.NoError(t, err)
		assert.Equal(t, f.meter.ID, m.ID)

		exists, err := repo.ExistsByNumber(f.ctx, "el-0001")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("duplicate meter number is rejected", func(t *testing.T) {
		dup, err := metering.NewMeter(f.customer.ID, "EL-0001", metering.UtilityElectricity, time.Time{}, decimal.Zero, "")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(f.ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("by customer", func(t *testing.T) {
		water, err := metering.NewMeter(f.customer.ID, "WA-0001", metering.UtilityWater, time.Time{}, decimal.NewFromInt(10), "Yard")
		require.NoError(t, err)
		require.NoError(t, repo.Save(f.ctx, water))

		meters, err := repo.FindByCustomer(f.ctx, f.customer.ID)
		require.NoError(t, err)
		assert.Len(t, meters, 2)

		count, err := repo.CountByCustomer(f.ctx, f.customer.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		filter := shared.DefaultFilter()
		filter.Filters["utility_type"] = string(metering.UtilityWater)
		list, err := repo.FindAll(f.ctx, filter)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "m³", list[0].Unit())
	})
}

func TestGormReadingRepository(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewGormReadingRepository(db)

	first := f.reading(day(2026, 7, 1), 0, 100)
	second := f.reading(day(2026, 8, 1), 100, 350)

	t.Run("latest reading", func(t *testing.T) {
		latest, err := repo.FindLatestForMeter(f.ctx, f.meter.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, latest.ID)
		assert.True(t, latest.Consumption.Equal(decimal.NewFromInt(250)))

		_, err = repo.FindLatestForMeter(f.ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("mark processed succeeds once", func(t *testing.T) {
		require.NoError(t, repo.MarkProcessed(f.ctx, first.ID))
		assert.ErrorIs(t, repo.MarkProcessed(f.ctx, first.ID), shared.ErrAlreadyBilled)
		assert.ErrorIs(t, repo.MarkProcessed(f.ctx, uuid.New()), shared.ErrNotFound)

		reloaded, err := repo.FindByID(f.ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.IsProcessed)
		assert.Equal(t, first.Version+1, reloaded.Version)
	})

	t.Run("unprocessed listing", func(t *testing.T) {
		pending, err := repo.FindUnprocessed(f.ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, second.ID, pending[0].ID)

		count, err := repo.CountUnprocessed(f.ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("filter by processed flag and date window", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["is_processed"] = true
		list, err := repo.FindAll(f.ctx, filter)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		filter = shared.DefaultFilter()
		filter.Filters["from"] = day(2026, 7, 15)
		list, err = repo.FindAll(f.ctx, filter)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, second.ID, list[0].ID)
	})

	t.Run("processed reading cannot be deleted", func(t *testing.T) {
		err := repo.Delete(f.ctx, first.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		require.NoError(t, repo.Delete(f.ctx, second.ID))
		assert.ErrorIs(t, repo.Delete(f.ctx, second.ID), shared.ErrNotFound)
	})
}

func TestGormReadingRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewGormReadingRepository(db)

	t.Run("corrects an unbilled reading", func(t *testing.T) {
		r := f.reading(day(2026, 6, 1), 0, 100)
		loaded, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)

		require.NoError(t, loaded.Correct(loaded.ReadingDate, loaded.PreviousReading, decimal.NewFromInt(140), loaded.ReadingType, "re-read"))
		require.NoError(t, repo.Update(f.ctx, loaded))

		reloaded, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.CurrentReading.Equal(decimal.NewFromInt(140)))
		assert.Equal(t, "re-read", reloaded.Notes)
		assert.Equal(t, r.Version+1, reloaded.Version)
	})

	t.Run("stale copy cannot overwrite a billed reading", func(t *testing.T) {
		r := f.reading(day(2026, 7, 1), 0, 100)
		stale, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)

		require.NoError(t, repo.MarkProcessed(f.ctx, r.ID))

		require.NoError(t, stale.Correct(stale.ReadingDate, stale.PreviousReading, decimal.NewFromInt(900), stale.ReadingType, ""))
		assert.ErrorIs(t, repo.Update(f.ctx, stale), shared.ErrInvalidState)

		reloaded, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.IsProcessed)
		assert.True(t, reloaded.CurrentReading.Equal(decimal.NewFromInt(100)))
		assert.True(t, reloaded.Consumption.Equal(decimal.NewFromInt(100)))
	})

	t.Run("concurrent correction loses", func(t *testing.T) {
		r := f.reading(day(2026, 8, 1), 0, 100)
		a, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)
		b, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)

		require.NoError(t, a.Correct(a.ReadingDate, a.PreviousReading, decimal.NewFromInt(110), a.ReadingType, ""))
		require.NoError(t, repo.Update(f.ctx, a))

		require.NoError(t, b.Correct(b.ReadingDate, b.PreviousReading, decimal.NewFromInt(120), b.ReadingType, ""))
		assert.ErrorIs(t, repo.Update(f.ctx, b), shared.ErrConcurrencyConflict)

		reloaded, err := repo.FindByID(f.ctx, r.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.CurrentReading.Equal(decimal.NewFromInt(110)))
	})

	t.Run("missing reading", func(t *testing.T) {
		r, err := metering.NewMeterReading(f.meter.ID, day(2026, 9, 1), decimal.Zero, decimal.NewFromInt(10), metering.ReadingTypeActual, "reader", "")
		require.NoError(t, err)
		r.IncrementVersion()
		assert.ErrorIs(t, repo.Update(f.ctx, r), shared.ErrNotFound)
	})
}
