package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the in-memory database alive and serializes writers.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

type fixtures struct {
	t        *testing.T
	db       *gorm.DB
	ctx      context.Context
	customer *customer.Customer
	meter    *metering.Meter
	tariff   *billing.Tariff
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	t.Helper()
	f := &fixtures{t: t, db: db, ctx: context.Background()}

	c, err := customer.NewCustomer("Jane Doe", customer.CustomerTypeResidential, "jane@example.com", "555-0100", "1 Main St", "Springfield")
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(f.ctx, c))
	f.customer = c

	m, err := metering.NewMeter(c.ID, "el-0001", metering.UtilityElectricity, day(2025, 1, 1), decimal.Zero, "Basement")
	require.NoError(t, err)
	require.NoError(t, NewGormMeterRepository(db).Save(f.ctx, m))
	f.meter = m

	tr, err := billing.NewTariff("Residential Power", metering.UtilityElectricity, nil,
		decimal.NewFromInt(25), decimal.NewFromInt(500), day(2025, 1, 1), nil)
	require.NoError(t, err)
	require.NoError(t, NewGormTariffRepository(db).Create(f.ctx, tr))
	f.tariff = tr
	return f
}

func (f *fixtures) reading(date time.Time, prev, cur int64) *metering.MeterReading {
	f.t.Helper()
	r, err := metering.NewMeterReading(f.meter.ID, date, decimal.NewFromInt(prev), decimal.NewFromInt(cur), metering.ReadingTypeActual, "reader", "")
	require.NoError(f.t, err)
	require.NoError(f.t, NewGormReadingRepository(f.db).Save(f.ctx, r))
	return r
}

func (f *fixtures) bill(r *metering.MeterReading, number string, due time.Time) *billing.Bill {
	f.t.Helper()
	charges, err := billing.CalculateReadingCharges(r, f.tariff)
	require.NoError(f.t, err)
	b, err := billing.NewBill(r, f.meter, f.tariff, charges, r.ReadingDate, due)
	require.NoError(f.t, err)
	b.AssignNumber(number)
	require.NoError(f.t, NewGormBillRepository(f.db).Create(f.ctx, b))
	return b
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
