package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodOnline       PaymentMethod = "Online"
	PaymentMethodCheque       PaymentMethod = "Cheque"
)

// IsValid checks if the method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodOnline, PaymentMethodCheque:
		return true
	}
	return false
}

// RequiresReference returns true if a transaction reference must accompany the payment
func (m PaymentMethod) RequiresReference() bool {
	return m != PaymentMethodCash
}

// String returns the string representation
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus tracks the lifecycle of a recorded payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusVerified  PaymentStatus = "Verified"
	PaymentStatusRefunded  PaymentStatus = "Refunded"
)

// IsValid checks if the status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusVerified, PaymentStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation
func (s PaymentStatus) String() string {
	return string(s)
}

// Payment is money received against a bill
type Payment struct {
	shared.BaseAggregateRoot
	BillID          uuid.UUID
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	Method          PaymentMethod
	ReferenceNumber string
	PaymentDate     time.Time
	Status          PaymentStatus
	RecordedBy      string
	Notes           string
	VerifiedBy      string
	VerifiedAt      *time.Time
	RefundedBy      string
	RefundedAt      *time.Time
	RefundReason    string
}

// NewPayment records a completed payment against a bill
func NewPayment(bill *Bill, amount decimal.Decimal, method PaymentMethod, reference string, paidAt time.Time, recordedBy, notes string) (*Payment, error) {
	if bill == nil {
		return nil, shared.NewValidationError("Bill is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be greater than zero")
	}
	if !RoundMoney(amount).Equal(amount) {
		return nil, shared.NewValidationError(fmt.Sprintf("Payment amount cannot have more than %d decimal places", MoneyPlaces))
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid payment method: %s", method))
	}
	reference = strings.TrimSpace(reference)
	if method.RequiresReference() && reference == "" {
		return nil, shared.NewValidationError(fmt.Sprintf("Reference number is required for %s payments", method))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillID:            bill.ID,
		CustomerID:        bill.CustomerID,
		Amount:            amount,
		Method:            method,
		ReferenceNumber:   reference,
		PaymentDate:       paidAt,
		Status:            PaymentStatusCompleted,
		RecordedBy:        recordedBy,
		Notes:             notes,
	}
	p.AddDomainEvent(NewPaymentRecordedEvent(p, bill))
	return p, nil
}

// Verify confirms the payment was received by the bank or cashier
func (p *Payment) Verify(by string) error {
	if p.Status != PaymentStatusCompleted {
		return shared.ErrInvalidState.WithMessage("Cannot verify a payment in %s status", p.Status)
	}
	now := time.Now()
	p.Status = PaymentStatusVerified
	p.VerifiedBy = by
	p.VerifiedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	return nil
}

// Refund reverses the payment. The caller restores the amount to the bill.
func (p *Payment) Refund(reason, by string) error {
	if p.Status == PaymentStatusRefunded {
		return shared.ErrInvalidState.WithMessage("Payment has already been refunded")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("Refund reason is required")
	}
	now := time.Now()
	p.Status = PaymentStatusRefunded
	p.RefundReason = reason
	p.RefundedBy = by
	p.RefundedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()
	p.AddDomainEvent(NewPaymentRefundedEvent(p))
	return nil
}
