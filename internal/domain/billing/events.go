package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeBill    = "Bill"
	AggregateTypePayment = "Payment"
)

// Event type constants
const (
	EventTypeBillGenerated   = "BillGenerated"
	EventTypeBillCancelled   = "BillCancelled"
	EventTypePaymentRecorded = "PaymentRecorded"
	EventTypePaymentRefunded = "PaymentRefunded"
)

// BillGeneratedEvent is published when a reading has been billed
type BillGeneratedEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID       `json:"bill_id"`
	BillNumber  string          `json:"bill_number"`
	ReadingID   uuid.UUID       `json:"reading_id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	UtilityType string          `json:"utility_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DueDate     time.Time       `json:"due_date"`
}

// NewBillGeneratedEvent creates a new BillGeneratedEvent
func NewBillGeneratedEvent(b *Bill) *BillGeneratedEvent {
	return &BillGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillGenerated, AggregateTypeBill, b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		ReadingID:       b.ReadingID,
		CustomerID:      b.CustomerID,
		UtilityType:     b.UtilityType.String(),
		TotalAmount:     b.TotalAmount,
		DueDate:         b.DueDate,
	}
}

// BillCancelledEvent is published when a bill is voided
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID `json:"bill_id"`
	BillNumber string    `json:"bill_number"`
	Reason     string    `json:"reason"`
}

// NewBillCancelledEvent creates a new BillCancelledEvent
func NewBillCancelledEvent(b *Bill) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillCancelled, AggregateTypeBill, b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		Reason:          b.CancelReason,
	}
}

// PaymentRecordedEvent is published when a payment has been applied to a bill
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID  uuid.UUID       `json:"payment_id"`
	BillID     uuid.UUID       `json:"bill_id"`
	BillNumber string          `json:"bill_number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment, b *Bill) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method.String(),
	}
}

// PaymentRefundedEvent is published when a payment is reversed
type PaymentRefundedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID       `json:"payment_id"`
	BillID    uuid.UUID       `json:"bill_id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
}

// NewPaymentRefundedEvent creates a new PaymentRefundedEvent
func NewPaymentRefundedEvent(p *Payment) *PaymentRefundedEvent {
	return &PaymentRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRefunded, AggregateTypePayment, p.ID),
		PaymentID:       p.ID,
		BillID:          p.BillID,
		Amount:          p.Amount,
		Reason:          p.RefundReason,
	}
}
