package persistence

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appbilling "github.com/utilitrack/backend/internal/application/billing"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
)

func TestGormTransactionScope_RollbackReleasesReadingAndNumber(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	scope := NewGormTransactionScope(db)
	r := f.reading(day(2026, 9, 1), 0, 10)

	boom := errors.New("boom")
	err := scope.Execute(f.ctx, func(repos appbilling.TransactionalRepositories) error {
		require.NoError(t, repos.Readings().MarkProcessed(f.ctx, r.ID))
		_, err := repos.Sequence().Next(f.ctx, "2026-09")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	reloaded, err := NewGormReadingRepository(db).FindByID(f.ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsProcessed)

	next, err := NewGormBillSequence(db).Next(f.ctx, "2026-09")
	require.NoError(t, err)
	assert.EqualValues(t, 1, next, "rolled back numbers are handed out again")
}

func TestGormTransactionScope_ConcurrentBillingOfOneReading(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	scope := NewGormTransactionScope(db)
	r := f.reading(day(2026, 9, 1), 100, 350)
	charges, err := billing.CalculateReadingCharges(r, f.tariff)
	require.NoError(t, err)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		billed  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(f.ctx, func(repos appbilling.TransactionalRepositories) error {
				if err := repos.Readings().MarkProcessed(f.ctx, r.ID); err != nil {
					return err
				}
				seq, err := repos.Sequence().Next(f.ctx, r.BillingPeriod())
				if err != nil {
					return err
				}
				bill, err := billing.NewBill(r, f.meter, f.tariff, charges, r.ReadingDate, day(2026, 9, 16))
				if err != nil {
					return err
				}
				bill.AssignNumber(billing.FormatBillNumber("BILL", "202609", seq))
				return repos.Bills().Create(f.ctx, bill)
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, shared.ErrAlreadyBilled):
				billed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, workers-1, billed)

	var bills int64
	require.NoError(t, db.Model(&models.BillModel{}).Where("reading_id = ?", r.ID).Count(&bills).Error)
	assert.EqualValues(t, 1, bills)

	var seq models.BillSequenceModel
	require.NoError(t, db.First(&seq, "period = ?", "2026-09").Error)
	assert.EqualValues(t, 1, seq.LastValue)
}
