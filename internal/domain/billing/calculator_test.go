package billing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTariff(t *testing.T, rate, fixed string) *Tariff {
	t.Helper()
	tariff, err := NewTariff("Residential Electricity", metering.UtilityElectricity, nil, dec(rate), dec(fixed),
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	return tariff
}

func TestCalculateCharges(t *testing.T) {
	tests := []struct {
		name              string
		previous, current string
		rate, fixed       string
		consumption       string
		consumptionCharge string
		total             string
	}{
		{
			name:     "reference scenario",
			previous: "100", current: "350", rate: "25.00", fixed: "500.00",
			consumption: "250", consumptionCharge: "6250.00", total: "6750.00",
		},
		{
			name:     "zero consumption still pays fixed charge",
			previous: "350", current: "350", rate: "25.00", fixed: "500.00",
			consumption: "0", consumptionCharge: "0", total: "500.00",
		},
		{
			name:     "rounds half up to cents",
			previous: "0", current: "1.5", rate: "0.333", fixed: "0",
			consumption: "1.5", consumptionCharge: "0.50", total: "0.50",
		},
		{
			name:     "fractional rate",
			previous: "1000", current: "1123.4", rate: "12.75", fixed: "150",
			consumption: "123.4", consumptionCharge: "1573.35", total: "1723.35",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charges, err := CalculateCharges(dec(tt.previous), dec(tt.current), testTariff(t, tt.rate, tt.fixed))
			require.NoError(t, err)

			assert.True(t, charges.Consumption.Equal(dec(tt.consumption)), "consumption %s", charges.Consumption)
			assert.True(t, charges.ConsumptionCharge.Equal(dec(tt.consumptionCharge)), "charge %s", charges.ConsumptionCharge)
			assert.True(t, charges.TotalAmount.Equal(dec(tt.total)), "total %s", charges.TotalAmount)
			assert.Equal(t, "Residential Electricity", charges.TariffName)
		})
	}
}

func TestCalculateCharges_InvalidReading(t *testing.T) {
	_, err := CalculateCharges(dec("350"), dec("100"), testTariff(t, "25", "500"))
	assert.ErrorIs(t, err, shared.ErrInvalidReading)
}

func TestFormatBillNumber(t *testing.T) {
	assert.Equal(t, "BILL-202609-000042", FormatBillNumber("", "2026-09", 42))
	assert.Equal(t, "UT-202612-1234567", FormatBillNumber("UT", "2026-12", 1234567))
}
