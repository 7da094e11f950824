package billing

import (
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// MoneyPlaces is the number of decimal places monetary amounts are rounded to
const MoneyPlaces = 2

// Charges is the priced result of applying a tariff to a reading
type Charges struct {
	Consumption       decimal.Decimal
	RatePerUnit       decimal.Decimal
	ConsumptionCharge decimal.Decimal
	FixedCharge       decimal.Decimal
	TotalAmount       decimal.Decimal
	TariffName        string
}

// RoundMoney rounds half away from zero to cents
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// CalculateCharges prices the consumption between two register values.
//
//	consumption        = current - previous
//	consumption_charge = consumption * rate_per_unit
//	total_amount       = consumption_charge + fixed_charge
func CalculateCharges(previous, current decimal.Decimal, tariff *Tariff) (Charges, error) {
	consumption, err := metering.Consumption(previous, current)
	if err != nil {
		return Charges{}, err
	}

	consumptionCharge := RoundMoney(consumption.Mul(tariff.RatePerUnit))
	fixedCharge := RoundMoney(tariff.FixedCharge)

	return Charges{
		Consumption:       consumption,
		RatePerUnit:       tariff.RatePerUnit,
		ConsumptionCharge: consumptionCharge,
		FixedCharge:       fixedCharge,
		TotalAmount:       consumptionCharge.Add(fixedCharge),
		TariffName:        tariff.Name,
	}, nil
}

// CalculateReadingCharges prices a stored reading
func CalculateReadingCharges(reading *metering.MeterReading, tariff *Tariff) (Charges, error) {
	return CalculateCharges(reading.PreviousReading, reading.CurrentReading, tariff)
}
