package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// Tariff prices consumption of one utility for one customer type.
// A nil CustomerType makes the tariff apply to every customer type that has no specific tariff.
type Tariff struct {
	shared.BaseAggregateRoot
	Name          string
	UtilityType   metering.UtilityType
	CustomerType  *customer.CustomerType
	RatePerUnit   decimal.Decimal
	FixedCharge   decimal.Decimal
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Description   string
}

// NewTariff creates a tariff effective from the given date, open ended if effectiveTo is nil
func NewTariff(
	name string,
	utilityType metering.UtilityType,
	customerType *customer.CustomerType,
	ratePerUnit, fixedCharge decimal.Decimal,
	effectiveFrom time.Time,
	effectiveTo *time.Time,
) (*Tariff, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Tariff name cannot be empty")
	}
	if !utilityType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unsupported utility type: %s", utilityType))
	}
	if customerType != nil && !customerType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid customer type: %s", *customerType))
	}
	if ratePerUnit.IsNegative() {
		return nil, shared.NewValidationError("Rate per unit cannot be negative")
	}
	if fixedCharge.IsNegative() {
		return nil, shared.NewValidationError("Fixed charge cannot be negative")
	}
	if effectiveFrom.IsZero() {
		return nil, shared.NewValidationError("Effective from date is required")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, shared.NewValidationError("Effective to date must be after effective from date")
	}

	return &Tariff{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		UtilityType:       utilityType,
		CustomerType:      customerType,
		RatePerUnit:       ratePerUnit,
		FixedCharge:       fixedCharge,
		EffectiveFrom:     effectiveFrom,
		EffectiveTo:       effectiveTo,
	}, nil
}

// IsEffectiveAt reports whether the tariff is in force at t.
// Both ends of the period are inclusive.
func (t *Tariff) IsEffectiveAt(at time.Time) bool {
	if at.Before(t.EffectiveFrom) {
		return false
	}
	return t.EffectiveTo == nil || !at.After(*t.EffectiveTo)
}

// AppliesTo reports whether the tariff prices the given customer type
func (t *Tariff) AppliesTo(ct customer.CustomerType) bool {
	return t.CustomerType == nil || *t.CustomerType == ct
}

// SameScope reports whether two tariffs compete for the same utility and customer type
func (t *Tariff) SameScope(other *Tariff) bool {
	if t.UtilityType != other.UtilityType {
		return false
	}
	if t.CustomerType == nil || other.CustomerType == nil {
		return t.CustomerType == nil && other.CustomerType == nil
	}
	return *t.CustomerType == *other.CustomerType
}

// Overlaps reports whether the effective periods of two tariffs intersect
func (t *Tariff) Overlaps(other *Tariff) bool {
	if t.EffectiveTo != nil && t.EffectiveTo.Before(other.EffectiveFrom) {
		return false
	}
	if other.EffectiveTo != nil && other.EffectiveTo.Before(t.EffectiveFrom) {
		return false
	}
	return true
}

// Close ends the tariff's effective period at the given instant
func (t *Tariff) Close(at time.Time) error {
	if !at.After(t.EffectiveFrom) {
		return shared.NewValidationError("Tariff can only be closed after it becomes effective")
	}
	if t.EffectiveTo != nil && !at.Before(*t.EffectiveTo) {
		return shared.ErrInvalidState.WithMessage("Tariff %s already ends on %s", t.Name, t.EffectiveTo.Format("2006-01-02"))
	}
	t.EffectiveTo = &at
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}
