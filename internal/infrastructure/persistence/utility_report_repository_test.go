package persistence

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/complaint"
	"github.com/utilitrack/backend/internal/domain/report"
)

func TestGormUtilityReportRepository(t *testing.T) {
	db := setupTestDB(t)
	f := newFixtures(t, db)
	repo := NewGormUtilityReportRepository(db)
	now := day(2026, 9, 10)

	r1 := f.reading(day(2026, 7, 1), 0, 100)
	r2 := f.reading(day(2026, 8, 1), 100, 350)
	f.reading(day(2026, 9, 1), 350, 400)

	july := f.bill(r1, "BILL-202607-000001", day(2026, 7, 16))
	aug := f.bill(r2, "BILL-202608-000001", day(2026, 9, 20))

	require.NoError(t, july.ApplyPayment(decimal.NewFromInt(1000), day(2026, 7, 10)))
	require.NoError(t, NewGormBillRepository(db).SaveWithLock(f.ctx, july))
	pay, err := billing.NewPayment(july, decimal.NewFromInt(1000), billing.PaymentMethodCash, "", day(2026, 7, 10), "cashier", "")
	require.NoError(t, err)
	require.NoError(t, NewGormPaymentRepository(db).Save(f.ctx, pay))

	c, err := complaint.NewComplaint(f.customer.ID, complaint.TypeSupply, complaint.PriorityUrgent, "No power", "Outage since morning")
	require.NoError(t, err)
	require.NoError(t, NewGormComplaintRepository(db).Save(f.ctx, c))

	t.Run("overview", func(t *testing.T) {
		o, err := repo.Overview(f.ctx, now)
		require.NoError(t, err)
		assert.EqualValues(t, 1, o.TotalCustomers)
		assert.EqualValues(t, 1, o.ActiveMeters)
		assert.EqualValues(t, 2, o.TotalBills)
		assert.EqualValues(t, 2, o.OpenBills)
		assert.EqualValues(t, 1, o.OverdueBills)
		assert.EqualValues(t, 1, o.PendingReadings)
		assert.EqualValues(t, 1, o.UrgentComplaints)
		// july: 100*25+500 = 3000, aug: 250*25+500 = 6750
		assert.Equal(t, "9750.00", o.TotalBilled.StringFixed(2))
		assert.Equal(t, "1000.00", o.TotalCollected.StringFixed(2))
		assert.Equal(t, "8750.00", o.TotalOutstanding.StringFixed(2))
		assert.Equal(t, "2000.00", o.OverdueAmount.StringFixed(2))
	})

	t.Run("payment facts", func(t *testing.T) {
		facts, err := repo.PaymentFacts(f.ctx, day(2026, 7, 1), day(2026, 8, 1))
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, "BILL-202607-000001", facts[0].BillNumber)
		assert.Equal(t, "Jane Doe", facts[0].CustomerName)
		assert.Equal(t, "Cash", facts[0].Method)
	})

	t.Run("bill facts by period", func(t *testing.T) {
		facts, err := repo.BillFacts(f.ctx, "2026-08", "2026-12")
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, aug.ID, facts[0].BillID)
		assert.True(t, facts[0].Consumption.Equal(decimal.NewFromInt(250)))
	})

	t.Run("reading facts carry the utility", func(t *testing.T) {
		facts, err := repo.ReadingFacts(f.ctx, day(2026, 1, 1), day(2027, 1, 1))
		require.NoError(t, err)
		require.Len(t, facts, 3)
		assert.Equal(t, "Electricity", facts[0].UtilityType)
	})

	t.Run("meter counts", func(t *testing.T) {
		counts, err := repo.MeterCounts(f.ctx)
		require.NoError(t, err)
		require.Len(t, counts, 1)
		assert.EqualValues(t, 1, counts[0].Count)
	})

	t.Run("open bills due before", func(t *testing.T) {
		bills, err := repo.OpenBills(f.ctx, now, 0)
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, july.ID, bills[0].BillID)
		assert.Equal(t, "555-0100", bills[0].CustomerPhone)

		all, err := repo.OpenBills(f.ctx, time.Time{}, 10)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("recent activity is newest first and limited", func(t *testing.T) {
		items, err := repo.RecentActivity(f.ctx, 4)
		require.NoError(t, err)
		require.Len(t, items, 4)
		for i := 1; i < len(items); i++ {
			assert.False(t, items[i].OccurredAt.After(items[i-1].OccurredAt))
		}
		kinds := map[report.ActivityKind]bool{}
		for _, it := range items {
			kinds[it.Kind] = true
		}
		assert.True(t, kinds[report.ActivityComplaint])
	})
}
