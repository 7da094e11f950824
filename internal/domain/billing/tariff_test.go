package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewTariff_Validation(t *testing.T) {
	bad := customer.CustomerType("Farm")
	end := day(2025, 12, 31)

	tests := []struct {
		name string
		fn   func() (*Tariff, error)
	}{
		{"empty name", func() (*Tariff, error) {
			return NewTariff(" ", metering.UtilityWater, nil, dec("1"), dec("0"), day(2026, 1, 1), nil)
		}},
		{"bad utility", func() (*Tariff, error) {
			return NewTariff("x", metering.UtilityType("Steam"), nil, dec("1"), dec("0"), day(2026, 1, 1), nil)
		}},
		{"bad customer type", func() (*Tariff, error) {
			return NewTariff("x", metering.UtilityWater, &bad, dec("1"), dec("0"), day(2026, 1, 1), nil)
		}},
		{"negative rate", func() (*Tariff, error) {
			return NewTariff("x", metering.UtilityWater, nil, dec("-1"), dec("0"), day(2026, 1, 1), nil)
		}},
		{"negative fixed charge", func() (*Tariff, error) {
			return NewTariff("x", metering.UtilityWater, nil, dec("1"), dec("-0.01"), day(2026, 1, 1), nil)
		}},
		{"period ends before start", func() (*Tariff, error) {
			return NewTariff("x", metering.UtilityWater, nil, dec("1"), dec("0"), day(2026, 1, 1), &end)
		}},
		{"empty period", func() (*Tariff, error) {
			start := day(2026, 1, 1)
			return NewTariff("x", metering.UtilityWater, nil, dec("1"), dec("0"), start, &start)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestTariff_Effectivity(t *testing.T) {
	end := day(2026, 6, 30)
	tariff, err := NewTariff("H1", metering.UtilityGas, nil, dec("3"), dec("50"), day(2026, 1, 1), &end)
	require.NoError(t, err)

	assert.False(t, tariff.IsEffectiveAt(day(2025, 12, 31)))
	assert.True(t, tariff.IsEffectiveAt(day(2026, 1, 1)))
	assert.True(t, tariff.IsEffectiveAt(day(2026, 6, 30)))
	assert.False(t, tariff.IsEffectiveAt(day(2026, 7, 1)))
}

func TestTariff_ScopeAndOverlap(t *testing.T) {
	residential := customer.CustomerTypeResidential
	commercial := customer.CustomerTypeCommercial
	end := day(2026, 6, 30)

	h1, err := NewTariff("Res H1", metering.UtilityWater, &residential, dec("1"), dec("0"), day(2026, 1, 1), &end)
	require.NoError(t, err)
	h2, err := NewTariff("Res H2", metering.UtilityWater, &residential, dec("1"), dec("0"), day(2026, 7, 1), nil)
	require.NoError(t, err)
	mid, err := NewTariff("Res mid", metering.UtilityWater, &residential, dec("1"), dec("0"), day(2026, 6, 1), nil)
	require.NoError(t, err)
	com, err := NewTariff("Com", metering.UtilityWater, &commercial, dec("1"), dec("0"), day(2026, 1, 1), nil)
	require.NoError(t, err)
	generic, err := NewTariff("Any", metering.UtilityWater, nil, dec("1"), dec("0"), day(2026, 1, 1), nil)
	require.NoError(t, err)

	assert.True(t, h1.SameScope(h2))
	assert.False(t, h1.SameScope(com))
	assert.False(t, h1.SameScope(generic))
	assert.False(t, h1.Overlaps(h2))
	assert.True(t, h1.Overlaps(mid))
	assert.True(t, h2.Overlaps(mid))

	assert.True(t, generic.AppliesTo(customer.CustomerTypeIndustrial))
	assert.True(t, h1.AppliesTo(customer.CustomerTypeResidential))
	assert.False(t, h1.AppliesTo(customer.CustomerTypeCommercial))
}

func TestTariff_Close(t *testing.T) {
	tariff, err := NewTariff("Open", metering.UtilityElectricity, nil, dec("1"), dec("0"), day(2026, 1, 1), nil)
	require.NoError(t, err)

	assert.ErrorIs(t, tariff.Close(day(2025, 1, 1)), shared.ErrValidation)
	assert.ErrorIs(t, tariff.Close(day(2026, 1, 1)), shared.ErrValidation, "closing on the start day leaves an empty period")
	assert.Nil(t, tariff.EffectiveTo)
	require.NoError(t, tariff.Close(day(2026, 3, 31)))
	assert.False(t, tariff.IsEffectiveAt(day(2026, 4, 1)))
	assert.ErrorIs(t, tariff.Close(day(2026, 5, 1)), shared.ErrInvalidState)
}
