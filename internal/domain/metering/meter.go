package metering

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// MeterStatus represents the operating status of a meter
type MeterStatus string

const (
	MeterStatusActive   MeterStatus = "Active"
	MeterStatusInactive MeterStatus = "Inactive"
	MeterStatusFaulty   MeterStatus = "Faulty"
)

// IsValid checks if the status is valid
func (s MeterStatus) IsValid() bool {
	switch s {
	case MeterStatusActive, MeterStatusInactive, MeterStatusFaulty:
		return true
	}
	return false
}

// String returns the string representation
func (s MeterStatus) String() string {
	return string(s)
}

// Meter is a physical meter installed at a customer's connection
type Meter struct {
	shared.BaseAggregateRoot
	CustomerID       uuid.UUID
	MeterNumber      string
	UtilityType      UtilityType
	InstallationDate time.Time
	InitialReading   decimal.Decimal
	Location         string
	Status           MeterStatus
}

// NewMeter creates a new active meter
func NewMeter(customerID uuid.UUID, meterNumber string, utilityType UtilityType, installedAt time.Time, initialReading decimal.Decimal, location string) (*Meter, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}
	meterNumber = strings.ToUpper(strings.TrimSpace(meterNumber))
	if meterNumber == "" {
		return nil, shared.NewValidationError("Meter number cannot be empty")
	}
	if len(meterNumber) > 50 {
		return nil, shared.NewValidationError("Meter number cannot exceed 50 characters")
	}
	if !utilityType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unsupported utility type: %s", utilityType))
	}
	if initialReading.IsNegative() {
		return nil, shared.NewValidationError("Initial reading cannot be negative")
	}
	if installedAt.IsZero() {
		installedAt = time.Now()
	}

	return &Meter{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		MeterNumber:       meterNumber,
		UtilityType:       utilityType,
		InstallationDate:  installedAt,
		InitialReading:    initialReading,
		Location:          location,
		Status:            MeterStatusActive,
	}, nil
}

// Unit returns the consumption unit of the meter
func (m *Meter) Unit() string {
	return m.UtilityType.Unit()
}

// ChangeStatus moves the meter to a new status
func (m *Meter) ChangeStatus(status MeterStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid meter status: %s", status))
	}
	if m.Status == status {
		return nil
	}
	m.Status = status
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	return nil
}

// CanRecordReading reports whether readings may be taken from the meter.
// Faulty meters still accept estimated readings.
func (m *Meter) CanRecordReading() bool {
	return m.Status != MeterStatusInactive
}
