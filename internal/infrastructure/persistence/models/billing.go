package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// TariffModel is the persistence model for the Tariff aggregate.
// A NULL customer_type applies to every customer type.
type TariffModel struct {
	AggregateModel
	Name          string                 `gorm:"type:varchar(100);not null"`
	UtilityType   metering.UtilityType   `gorm:"type:varchar(30);not null;index:idx_tariffs_scope,priority:1"`
	CustomerType  *customer.CustomerType `gorm:"type:varchar(20);index:idx_tariffs_scope,priority:2"`
	RatePerUnit   decimal.Decimal        `gorm:"type:decimal(12,4);not null"`
	FixedCharge   decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	EffectiveFrom time.Time              `gorm:"not null;index:idx_tariffs_scope,priority:3"`
	EffectiveTo   *time.Time
	Description   string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TariffModel) TableName() string {
	return "tariffs"
}

// ToDomain converts the persistence model to a domain Tariff
func (m *TariffModel) ToDomain() *billing.Tariff {
	return &billing.Tariff{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		UtilityType:       m.UtilityType,
		CustomerType:      m.CustomerType,
		RatePerUnit:       m.RatePerUnit,
		FixedCharge:       m.FixedCharge,
		EffectiveFrom:     m.EffectiveFrom,
		EffectiveTo:       m.EffectiveTo,
		Description:       m.Description,
	}
}

// TariffModelFromDomain creates a persistence model from a domain Tariff
func TariffModelFromDomain(t *billing.Tariff) *TariffModel {
	m := &TariffModel{
		Name:          t.Name,
		UtilityType:   t.UtilityType,
		CustomerType:  t.CustomerType,
		RatePerUnit:   t.RatePerUnit,
		FixedCharge:   t.FixedCharge,
		EffectiveFrom: t.EffectiveFrom,
		EffectiveTo:   t.EffectiveTo,
		Description:   t.Description,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}

// BillModel is the persistence model for the Bill aggregate.
// reading_id is unique: a reading can be billed at most once.
type BillModel struct {
	AggregateModel
	BillNumber        string               `gorm:"type:varchar(40);not null;uniqueIndex:idx_bills_bill_number"`
	ReadingID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_bills_reading_id"`
	MeterID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	TariffID          uuid.UUID            `gorm:"type:uuid;not null"`
	TariffName        string               `gorm:"type:varchar(100)"`
	UtilityType       metering.UtilityType `gorm:"type:varchar(30);not null"`
	BillingPeriod     string               `gorm:"type:varchar(7);not null;index"`
	BillDate          time.Time            `gorm:"not null"`
	DueDate           time.Time            `gorm:"not null;index"`
	PreviousReading   decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	CurrentReading    decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	Consumption       decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	RatePerUnit       decimal.Decimal      `gorm:"type:decimal(12,4);not null"`
	ConsumptionCharge decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	FixedCharge       decimal.Decimal      `gorm:"type:decimal(12,2);not null"`
	TotalAmount       decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	PaidAmount        decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0"`
	OutstandingAmount decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	Status            billing.BillStatus   `gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	PaidAt            *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BillNumber:        m.BillNumber,
		ReadingID:         m.ReadingID,
		MeterID:           m.MeterID,
		CustomerID:        m.CustomerID,
		TariffID:          m.TariffID,
		TariffName:        m.TariffName,
		UtilityType:       m.UtilityType,
		BillingPeriod:     m.BillingPeriod,
		BillDate:          m.BillDate,
		DueDate:           m.DueDate,
		PreviousReading:   m.PreviousReading,
		CurrentReading:    m.CurrentReading,
		Consumption:       m.Consumption,
		RatePerUnit:       m.RatePerUnit,
		ConsumptionCharge: m.ConsumptionCharge,
		FixedCharge:       m.FixedCharge,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		OutstandingAmount: m.OutstandingAmount,
		Status:            m.Status,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
}

// BillModelFromDomain creates a persistence model from a domain Bill
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		BillNumber:        b.BillNumber,
		ReadingID:         b.ReadingID,
		MeterID:           b.MeterID,
		CustomerID:        b.CustomerID,
		TariffID:          b.TariffID,
		TariffName:        b.TariffName,
		UtilityType:       b.UtilityType,
		BillingPeriod:     b.BillingPeriod,
		BillDate:          b.BillDate,
		DueDate:           b.DueDate,
		PreviousReading:   b.PreviousReading,
		CurrentReading:    b.CurrentReading,
		Consumption:       b.Consumption,
		RatePerUnit:       b.RatePerUnit,
		ConsumptionCharge: b.ConsumptionCharge,
		FixedCharge:       b.FixedCharge,
		TotalAmount:       b.TotalAmount,
		PaidAmount:        b.PaidAmount,
		OutstandingAmount: b.OutstandingAmount,
		Status:            b.Status,
		PaidAt:            b.PaidAt,
		CancelledAt:       b.CancelledAt,
		CancelReason:      b.CancelReason,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// BillSequenceModel stores the last bill number handed out per billing period
type BillSequenceModel struct {
	Period    string `gorm:"type:varchar(7);primaryKey"`
	LastValue int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (BillSequenceModel) TableName() string {
	return "bill_sequences"
}

// PaymentModel is the persistence model for the Payment aggregate.
type PaymentModel struct {
	AggregateModel
	BillID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	CustomerID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(14,2);not null"`
	Method          billing.PaymentMethod `gorm:"column:payment_method;type:varchar(20);not null"`
	ReferenceNumber string                `gorm:"type:varchar(100)"`
	PaymentDate     time.Time             `gorm:"not null;index"`
	Status          billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'Completed'"`
	RecordedBy      string                `gorm:"type:varchar(100)"`
	Notes           string                `gorm:"type:text"`
	VerifiedBy      string                `gorm:"type:varchar(100)"`
	VerifiedAt      *time.Time
	RefundedBy      string `gorm:"type:varchar(100)"`
	RefundedAt      *time.Time
	RefundReason    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: m.ToAggregateRoot(),
		BillID:            m.BillID,
		CustomerID:        m.CustomerID,
		Amount:            m.Amount,
		Method:            m.Method,
		ReferenceNumber:   m.ReferenceNumber,
		PaymentDate:       m.PaymentDate,
		Status:            m.Status,
		RecordedBy:        m.RecordedBy,
		Notes:             m.Notes,
		VerifiedBy:        m.VerifiedBy,
		VerifiedAt:        m.VerifiedAt,
		RefundedBy:        m.RefundedBy,
		RefundedAt:        m.RefundedAt,
		RefundReason:      m.RefundReason,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		BillID:          p.BillID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		PaymentDate:     p.PaymentDate,
		Status:          p.Status,
		RecordedBy:      p.RecordedBy,
		Notes:           p.Notes,
		VerifiedBy:      p.VerifiedBy,
		VerifiedAt:      p.VerifiedAt,
		RefundedBy:      p.RefundedBy,
		RefundedAt:      p.RefundedAt,
		RefundReason:    p.RefundReason,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
