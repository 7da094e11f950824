package customer_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcustomer "github.com/utilitrack/backend/internal/application/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/config"
	"github.com/utilitrack/backend/internal/infrastructure/persistence"
)

type testEnv struct {
	ctx     context.Context
	service *appcustomer.CustomerService
	meters  *persistence.GormMeterRepository
}

func setupService(t *testing.T) *testEnv {
	t.Helper()
	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: persistence.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())

	meters := persistence.NewGormMeterRepository(db.DB)
	return &testEnv{
		ctx:     context.Background(),
		service: appcustomer.NewCustomerService(persistence.NewGormCustomerRepository(db.DB), meters),
		meters:  meters,
	}
}

func (e *testEnv) create(t *testing.T, name, customerType, email string) *appcustomer.CustomerResponse {
	t.Helper()
	resp, err := e.service.Create(e.ctx, appcustomer.CreateCustomerRequest{
		Name:    name,
		Type:    customerType,
		Email:   email,
		Phone:   "555-0100",
		Address: "1 Main St",
		City:    "Springfield",
	})
	require.NoError(t, err)
	return resp
}

func TestCustomerService_Create(t *testing.T) {
	env := setupService(t)

	resp := env.create(t, "Jane Doe", "Residential", "Jane@Example.com")
	assert.Equal(t, "Active", resp.Status)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Regexp(t, `^ACC-[0-9A-F]{10}$`, resp.AccountNumber)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.service.Create(env.ctx, appcustomer.CreateCustomerRequest{
			Name: "Other Jane", Type: "Residential", Email: "jane@example.com",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := env.service.Create(env.ctx, appcustomer.CreateCustomerRequest{Name: "X", Type: "Farm"})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestCustomerService_List(t *testing.T) {
	env := setupService(t)
	env.create(t, "Jane Doe", "Residential", "jane@example.com")
	env.create(t, "Acme Corp", "Commercial", "billing@acme.test")
	env.create(t, "City Hall", "Government", "")

	all, total, err := env.service.List(env.ctx, appcustomer.CustomerListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	found, total, err := env.service.List(env.ctx, appcustomer.CustomerListFilter{Search: "acme"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Acme Corp", found[0].Name)

	gov, _, err := env.service.List(env.ctx, appcustomer.CustomerListFilter{Type: "Government"})
	require.NoError(t, err)
	require.Len(t, gov, 1)
	assert.Equal(t, "City Hall", gov[0].Name)
}

func TestCustomerService_Update(t *testing.T) {
	env := setupService(t)
	jane := env.create(t, "Jane Doe", "Residential", "jane@example.com")
	env.create(t, "Acme Corp", "Commercial", "billing@acme.test")

	name := "Jane Smith"
	status := "Suspended"
	resp, err := env.service.Update(env.ctx, jane.ID, appcustomer.UpdateCustomerRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", resp.Name)
	assert.Equal(t, "Suspended", resp.Status)
	assert.Equal(t, "jane@example.com", resp.Email)

	taken := "billing@acme.test"
	_, err = env.service.Update(env.ctx, jane.ID, appcustomer.UpdateCustomerRequest{Email: &taken})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCustomerService_Delete(t *testing.T) {
	t.Run("customer without meters is removed", func(t *testing.T) {
		env := setupService(t)
		c := env.create(t, "Jane Doe", "Residential", "")

		result, err := env.service.Delete(env.ctx, c.ID)
		require.NoError(t, err)
		assert.True(t, result.Deleted)

		_, err = env.service.GetByID(env.ctx, c.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("customer with meters is toggled", func(t *testing.T) {
		env := setupService(t)
		c := env.create(t, "Jane Doe", "Residential", "")
		meter, err := metering.NewMeter(c.ID, "W-1", metering.UtilityWater, time.Now(), decimal.Zero, "")
		require.NoError(t, err)
		require.NoError(t, env.meters.Save(env.ctx, meter))

		result, err := env.service.Delete(env.ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, result.Deleted)
		assert.Equal(t, "Inactive", result.Status)

		got, err := env.service.GetByID(env.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Inactive", got.Status)
		require.NotNil(t, got.MeterCount)
		assert.Equal(t, int64(1), *got.MeterCount)

		result, err = env.service.Delete(env.ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "Active", result.Status)
	})
}
