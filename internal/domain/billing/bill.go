package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// BillStatus represents the settlement status of a bill
type BillStatus string

const (
	BillStatusUnpaid        BillStatus = "Unpaid"
	BillStatusPaid          BillStatus = "Paid"
	BillStatusPartiallyPaid BillStatus = "Partially Paid"
	BillStatusOverdue       BillStatus = "Overdue"
	BillStatusCancelled     BillStatus = "Cancelled"
)

// IsValid checks if the status is valid
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusUnpaid, BillStatusPaid, BillStatusPartiallyPaid, BillStatusOverdue, BillStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further money can move against the bill
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled
}

// IsOpen returns true if the bill still has an amount to collect
func (s BillStatus) IsOpen() bool {
	return s == BillStatusUnpaid || s == BillStatusPartiallyPaid || s == BillStatusOverdue
}

// OpenBillStatuses lists statuses that carry an outstanding balance
var OpenBillStatuses = []BillStatus{BillStatusUnpaid, BillStatusPartiallyPaid, BillStatusOverdue}

// DefaultBillNumberPrefix prefixes every bill number
const DefaultBillNumberPrefix = "BILL"

// FormatBillNumber renders a bill number such as BILL-202609-000042
func FormatBillNumber(prefix, period string, seq int64) string {
	if prefix == "" {
		prefix = DefaultBillNumberPrefix
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, strings.ReplaceAll(period, "-", ""), seq)
}

// Bill is the receivable raised for a single meter reading
type Bill struct {
	shared.BaseAggregateRoot
	BillNumber        string
	ReadingID         uuid.UUID
	MeterID           uuid.UUID
	CustomerID        uuid.UUID
	TariffID          uuid.UUID
	TariffName        string
	UtilityType       metering.UtilityType
	BillingPeriod     string
	BillDate          time.Time
	DueDate           time.Time
	PreviousReading   decimal.Decimal
	CurrentReading    decimal.Decimal
	Consumption       decimal.Decimal
	RatePerUnit       decimal.Decimal
	ConsumptionCharge decimal.Decimal
	FixedCharge       decimal.Decimal
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            BillStatus
	PaidAt            *time.Time
	CancelledAt       *time.Time
	CancelReason      string
}

// NewBill raises an unpaid bill for a reading priced with the given tariff.
// The bill number is assigned when the bill is stored.
func NewBill(reading *metering.MeterReading, meter *metering.Meter, tariff *Tariff, charges Charges, billDate, dueDate time.Time) (*Bill, error) {
	if reading == nil || meter == nil || tariff == nil {
		return nil, shared.NewValidationError("Reading, meter and tariff are required to raise a bill")
	}
	if reading.MeterID != meter.ID {
		return nil, shared.NewValidationError("Reading does not belong to the meter")
	}
	if reading.IsProcessed {
		return nil, shared.ErrAlreadyBilled.WithMessage("Reading %s has already been billed", reading.ID)
	}
	if dueDate.Before(truncateDay(billDate)) {
		return nil, shared.NewValidationError("Due date cannot be before the bill date")
	}

	return &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReadingID:         reading.ID,
		MeterID:           meter.ID,
		CustomerID:        meter.CustomerID,
		TariffID:          tariff.ID,
		TariffName:        tariff.Name,
		UtilityType:       meter.UtilityType,
		BillingPeriod:     reading.BillingPeriod(),
		BillDate:          billDate,
		DueDate:           dueDate,
		PreviousReading:   reading.PreviousReading,
		CurrentReading:    reading.CurrentReading,
		Consumption:       charges.Consumption,
		RatePerUnit:       charges.RatePerUnit,
		ConsumptionCharge: charges.ConsumptionCharge,
		FixedCharge:       charges.FixedCharge,
		TotalAmount:       charges.TotalAmount,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: charges.TotalAmount,
		Status:            BillStatusUnpaid,
	}, nil
}

// AssignNumber sets the allocated bill number and records the generation event
func (b *Bill) AssignNumber(number string) {
	b.BillNumber = number
	b.AddDomainEvent(NewBillGeneratedEvent(b))
}

// ApplyPayment reduces the outstanding balance.
// Overpayment is rejected; a zero balance settles the bill.
func (b *Bill) ApplyPayment(amount decimal.Decimal, at time.Time) error {
	if !b.Status.IsOpen() {
		return shared.ErrInvalidState.WithMessage("Cannot apply payment to a bill in %s status", b.Status)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be greater than zero")
	}
	if amount.GreaterThan(b.OutstandingAmount) {
		return shared.ErrExceedsOutstanding.WithMessage(
			"Payment amount %s exceeds outstanding balance %s", amount.StringFixed(MoneyPlaces), b.OutstandingAmount.StringFixed(MoneyPlaces))
	}

	b.PaidAmount = b.PaidAmount.Add(amount)
	b.OutstandingAmount = b.OutstandingAmount.Sub(amount)

	switch {
	case !b.OutstandingAmount.IsPositive():
		b.Status = BillStatusPaid
		b.PaidAt = &at
	case b.OutstandingAmount.LessThan(b.TotalAmount):
		b.Status = BillStatusPartiallyPaid
	}

	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// RevertPayment restores a refunded amount to the outstanding balance
func (b *Bill) RevertPayment(amount decimal.Decimal, now time.Time) error {
	if b.Status == BillStatusCancelled {
		return shared.ErrInvalidState.WithMessage("Cannot refund against a cancelled bill")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Refund amount must be greater than zero")
	}
	if amount.GreaterThan(b.PaidAmount) {
		return shared.ErrInvalidState.WithMessage("Refund amount exceeds the amount paid on bill %s", b.BillNumber)
	}

	b.PaidAmount = b.PaidAmount.Sub(amount)
	b.OutstandingAmount = b.OutstandingAmount.Add(amount)
	b.PaidAt = nil

	switch {
	case b.OutstandingAmount.Equal(b.TotalAmount) && b.IsPastDue(now):
		b.Status = BillStatusOverdue
	case b.OutstandingAmount.Equal(b.TotalAmount):
		b.Status = BillStatusUnpaid
	default:
		b.Status = BillStatusPartiallyPaid
	}

	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// MarkOverdue flags an open bill whose due date has passed.
// Returns true if the status changed.
func (b *Bill) MarkOverdue(now time.Time) bool {
	if !b.Status.IsOpen() || b.Status == BillStatusOverdue || !b.IsPastDue(now) {
		return false
	}
	b.Status = BillStatusOverdue
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return true
}

// Cancel voids a bill that has not received any payment.
// The reading stays processed so it can never be billed again.
func (b *Bill) Cancel(reason string) error {
	if b.Status == BillStatusCancelled {
		return shared.ErrInvalidState.WithMessage("Bill %s is already cancelled", b.BillNumber)
	}
	if b.PaidAmount.IsPositive() {
		return shared.ErrInvalidState.WithMessage("Bill %s has payments and cannot be cancelled", b.BillNumber)
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("Cancellation reason is required")
	}

	now := time.Now()
	b.Status = BillStatusCancelled
	b.OutstandingAmount = decimal.Zero
	b.CancelledAt = &now
	b.CancelReason = reason
	b.UpdatedAt = now
	b.IncrementVersion()
	b.AddDomainEvent(NewBillCancelledEvent(b))
	return nil
}

// IsPastDue reports whether the due date lies before the day of now
func (b *Bill) IsPastDue(now time.Time) bool {
	return truncateDay(b.DueDate).Before(truncateDay(now))
}

// DaysOverdue returns the number of whole days past the due date, or 0
func (b *Bill) DaysOverdue(now time.Time) int {
	if !b.IsPastDue(now) {
		return 0
	}
	return int(truncateDay(now).Sub(truncateDay(b.DueDate)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
