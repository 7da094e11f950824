package metering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// ReadingType describes how a reading was obtained
type ReadingType string

const (
	ReadingTypeActual            ReadingType = "Actual"
	ReadingTypeEstimated         ReadingType = "Estimated"
	ReadingTypeCustomerSubmitted ReadingType = "Customer-Submitted"
)

// IsValid checks if the reading type is valid
func (t ReadingType) IsValid() bool {
	switch t {
	case ReadingTypeActual, ReadingTypeEstimated, ReadingTypeCustomerSubmitted:
		return true
	}
	return false
}

// String returns the string representation
func (t ReadingType) String() string {
	return string(t)
}

// MeterReading is a single observation of a meter's register.
// Once billed (processed) a reading is immutable.
type MeterReading struct {
	shared.BaseAggregateRoot
	MeterID         uuid.UUID
	ReadingDate     time.Time
	PreviousReading decimal.Decimal
	CurrentReading  decimal.Decimal
	Consumption     decimal.Decimal
	ReadingType     ReadingType
	IsProcessed     bool
	ReadBy          string
	Notes           string
}

// NewMeterReading creates an unprocessed reading
func NewMeterReading(meterID uuid.UUID, readingDate time.Time, previous, current decimal.Decimal, readingType ReadingType, readBy, notes string) (*MeterReading, error) {
	if meterID == uuid.Nil {
		return nil, shared.NewValidationError("Meter ID cannot be empty")
	}
	r := &MeterReading{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MeterID:           meterID,
		ReadBy:            readBy,
		Notes:             notes,
	}
	if err := r.set(readingDate, previous, current, readingType); err != nil {
		return nil, err
	}
	return r, nil
}

// Correct replaces the values of an unbilled reading
func (r *MeterReading) Correct(readingDate time.Time, previous, current decimal.Decimal, readingType ReadingType, notes string) error {
	if r.IsProcessed {
		return shared.ErrInvalidState.WithMessage("Reading %s has been billed and cannot be changed", r.ID)
	}
	if err := r.set(readingDate, previous, current, readingType); err != nil {
		return err
	}
	r.Notes = notes
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// EnsureDeletable returns an error if the reading can no longer be removed
func (r *MeterReading) EnsureDeletable() error {
	if r.IsProcessed {
		return shared.ErrInvalidState.WithMessage("Reading %s has been billed and cannot be deleted", r.ID)
	}
	return nil
}

// MarkProcessed flags the reading as billed
func (r *MeterReading) MarkProcessed() error {
	if r.IsProcessed {
		return shared.ErrAlreadyBilled
	}
	r.IsProcessed = true
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// BillingPeriod returns the YYYY-MM period the reading belongs to
func (r *MeterReading) BillingPeriod() string {
	return r.ReadingDate.Format("2006-01")
}

func (r *MeterReading) set(readingDate time.Time, previous, current decimal.Decimal, readingType ReadingType) error {
	if readingDate.IsZero() {
		return shared.NewValidationError("Reading date is required")
	}
	if readingDate.After(time.Now().Add(24 * time.Hour)) {
		return shared.NewValidationError("Reading date cannot be in the future")
	}
	if !readingType.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid reading type: %s", readingType))
	}
	consumption, err := Consumption(previous, current)
	if err != nil {
		return err
	}
	r.ReadingDate = readingDate
	r.PreviousReading = previous
	r.CurrentReading = current
	r.Consumption = consumption
	r.ReadingType = readingType
	return nil
}

// Consumption returns current - previous, rejecting negative values
func Consumption(previous, current decimal.Decimal) (decimal.Decimal, error) {
	if previous.IsNegative() || current.IsNegative() {
		return decimal.Zero, shared.NewValidationError("Meter readings cannot be negative")
	}
	if current.LessThan(previous) {
		return decimal.Zero, shared.ErrInvalidReading.WithMessage(
			"Current reading %s cannot be less than previous reading %s", current.String(), previous.String())
	}
	return current.Sub(previous), nil
}
