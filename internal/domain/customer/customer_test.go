package customer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates active customer with account number", func(t *testing.T) {
		c, err := NewCustomer("  Jane Doe ", CustomerTypeResidential, "Jane@Example.com", "+1 555-0100", "12 Main St", "Springfield")
		require.NoError(t, err)

		assert.Equal(t, "Jane Doe", c.Name)
		assert.Equal(t, "jane@example.com", c.Email)
		assert.Equal(t, CustomerStatusActive, c.Status)
		assert.True(t, c.IsActive())
		assert.Regexp(t, `^ACC-[0-9A-F]{10}$`, c.AccountNumber)
		assert.Equal(t, 1, c.Version)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCustomer("", CustomerTypeResidential, "", "", "", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewCustomer("Acme", CustomerType("Farm"), "", "", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		_, err := NewCustomer("Acme", CustomerTypeCommercial, "not-an-email", "", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("rejects malformed phone", func(t *testing.T) {
		_, err := NewCustomer("Acme", CustomerTypeCommercial, "", "call me", "", "")
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestCustomer_Update(t *testing.T) {
	c, err := NewCustomer("Acme", CustomerTypeCommercial, "", "", "", "")
	require.NoError(t, err)

	require.NoError(t, c.Update("Acme Industries", CustomerTypeIndustrial, "ops@acme.io", "", "Plant 4", "Gotham"))
	assert.Equal(t, "Acme Industries", c.Name)
	assert.Equal(t, CustomerTypeIndustrial, c.Type)
	assert.Equal(t, 2, c.Version)

	err = c.Update("", CustomerTypeIndustrial, "", "", "", "")
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "Acme Industries", c.Name)
}

func TestCustomer_ChangeStatus(t *testing.T) {
	c, err := NewCustomer("Acme", CustomerTypeCommercial, "", "", "", "")
	require.NoError(t, err)

	require.NoError(t, c.ChangeStatus(CustomerStatusSuspended))
	assert.Equal(t, CustomerStatusSuspended, c.Status)
	assert.False(t, c.IsActive())

	assert.ErrorIs(t, c.ChangeStatus(CustomerStatus("Closed")), shared.ErrValidation)
}
