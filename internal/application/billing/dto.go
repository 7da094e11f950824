package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// Settings holds the billing parameters read from configuration
type Settings struct {
	DueDays          int
	BillNumberPrefix string
	Currency         string
}

// DefaultSettings returns the settings used when configuration leaves them empty
func DefaultSettings() Settings {
	return Settings{
		DueDays:          15,
		BillNumberPrefix: billing.DefaultBillNumberPrefix,
		Currency:         "USD",
	}
}

// =============================================================================
// Tariff DTOs
// =============================================================================

// CreateTariffRequest represents a request to create a tariff
type CreateTariffRequest struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	UtilityType   string          `json:"utility_type" binding:"required"`
	CustomerType  *string         `json:"customer_type"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	EffectiveFrom time.Time       `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time      `json:"effective_to"`
	Description   string          `json:"description" binding:"max=500"`
}

// CloseTariffRequest ends a tariff's effective period
type CloseTariffRequest struct {
	EffectiveTo time.Time `json:"effective_to" binding:"required"`
}

// TariffListFilter represents filter options for the tariff list
type TariffListFilter struct {
	UtilityType  string     `form:"utility_type"`
	CustomerType string     `form:"customer_type"`
	ActiveAt     *time.Time `form:"active_at" time_format:"2006-01-02"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ResolveTariffQuery selects the tariff in force for a utility and customer type
type ResolveTariffQuery struct {
	UtilityType  string     `form:"utility_type" binding:"required"`
	CustomerType string     `form:"customer_type" binding:"required"`
	AsOf         *time.Time `form:"as_of" time_format:"2006-01-02"`
}

// TariffResponse represents a tariff in API responses
type TariffResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	UtilityType   string          `json:"utility_type"`
	Unit          string          `json:"unit"`
	CustomerType  *string         `json:"customer_type"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	FixedCharge   decimal.Decimal `json:"fixed_charge"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	IsCurrent     bool            `json:"is_current"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// ToTariffResponse converts a domain tariff to a response
func ToTariffResponse(t *billing.Tariff) TariffResponse {
	var customerType *string
	if t.CustomerType != nil {
		ct := t.CustomerType.String()
		customerType = &ct
	}
	return TariffResponse{
		ID:            t.ID,
		Name:          t.Name,
		UtilityType:   t.UtilityType.String(),
		Unit:          t.UtilityType.Unit(),
		CustomerType:  customerType,
		RatePerUnit:   t.RatePerUnit,
		FixedCharge:   t.FixedCharge,
		EffectiveFrom: t.EffectiveFrom,
		EffectiveTo:   t.EffectiveTo,
		IsCurrent:     t.IsEffectiveAt(time.Now()),
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Version:       t.Version,
	}
}

// ToTariffResponses converts a slice of tariffs
func ToTariffResponses(tariffs []billing.Tariff) []TariffResponse {
	out := make([]TariffResponse, len(tariffs))
	for i := range tariffs {
		out[i] = ToTariffResponse(&tariffs[i])
	}
	return out
}

// =============================================================================
// Bill DTOs
// =============================================================================

// GenerateBillRequest represents a request to bill a reading
type GenerateBillRequest struct {
	ReadingID uuid.UUID  `json:"reading_id" binding:"required"`
	BillDate  *time.Time `json:"bill_date"`
	DueDate   *time.Time `json:"due_date"`
}

// CancelBillRequest represents a request to void a bill
type CancelBillRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// BillListFilter represents filter options for the bill list
type BillListFilter struct {
	Search        string `form:"search"`
	Status        string `form:"status" binding:"omitempty,oneof=Unpaid Paid 'Partially Paid' Overdue Cancelled"`
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	MeterID       string `form:"meter_id" binding:"omitempty,uuid"`
	UtilityType   string `form:"utility_type"`
	BillingPeriod string `form:"billing_period" binding:"omitempty,len=7"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID                uuid.UUID       `json:"id"`
	BillNumber        string          `json:"bill_number"`
	ReadingID         uuid.UUID       `json:"reading_id"`
	MeterID           uuid.UUID       `json:"meter_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	TariffID          uuid.UUID       `json:"tariff_id"`
	TariffName        string          `json:"tariff_name"`
	UtilityType       string          `json:"utility_type"`
	Unit              string          `json:"unit"`
	BillingPeriod     string          `json:"billing_period"`
	BillDate          time.Time       `json:"bill_date"`
	DueDate           time.Time       `json:"due_date"`
	PreviousReading   decimal.Decimal `json:"previous_reading"`
	CurrentReading    decimal.Decimal `json:"current_reading"`
	Consumption       decimal.Decimal `json:"consumption"`
	RatePerUnit       decimal.Decimal `json:"rate_per_unit"`
	ConsumptionCharge decimal.Decimal `json:"consumption_charge"`
	FixedCharge       decimal.Decimal `json:"fixed_charge"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	DaysOverdue       int             `json:"days_overdue"`
	PaidAt            *time.Time      `json:"paid_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason      string          `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToBillResponse converts a domain bill to a response
func ToBillResponse(b *billing.Bill, currency string) BillResponse {
	days := 0
	if b.Status.IsOpen() {
		days = b.DaysOverdue(time.Now())
	}
	return BillResponse{
		ID:                b.ID,
		BillNumber:        b.BillNumber,
		ReadingID:         b.ReadingID,
		MeterID:           b.MeterID,
		CustomerID:        b.CustomerID,
		TariffID:          b.TariffID,
		TariffName:        b.TariffName,
		UtilityType:       b.UtilityType.String(),
		Unit:              b.UtilityType.Unit(),
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
		Currency:          currency,
		Status:            b.Status.String(),
		DaysOverdue:       days,
		PaidAt:            b.PaidAt,
		CancelledAt:       b.CancelledAt,
		CancelReason:      b.CancelReason,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		Version:           b.Version,
	}
}

// ToBillResponses converts a slice of bills
func ToBillResponses(bills []billing.Bill, currency string) []BillResponse {
	out := make([]BillResponse, len(bills))
	for i := range bills {
		out[i] = ToBillResponse(&bills[i], currency)
	}
	return out
}

// BillPreviewResponse shows what a bill for a reading would contain
type BillPreviewResponse struct {
	ReadingID         uuid.UUID       `json:"reading_id"`
	MeterID           uuid.UUID       `json:"meter_id"`
	MeterNumber       string          `json:"meter_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	CustomerType      string          `json:"customer_type"`
	UtilityType       string          `json:"utility_type"`
	Unit              string          `json:"unit"`
	BillingPeriod     string          `json:"billing_period"`
	ReadingDate       time.Time       `json:"reading_date"`
	PreviousReading   decimal.Decimal `json:"previous_reading"`
	CurrentReading    decimal.Decimal `json:"current_reading"`
	Consumption       decimal.Decimal `json:"consumption"`
	TariffID          uuid.UUID       `json:"tariff_id"`
	TariffName        string          `json:"tariff_name"`
	RatePerUnit       decimal.Decimal `json:"rate_per_unit"`
	ConsumptionCharge decimal.Decimal `json:"consumption_charge"`
	FixedCharge       decimal.Decimal `json:"fixed_charge"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Currency          string          `json:"currency"`
	DueDate           time.Time       `json:"due_date"`
}

// UnprocessedReadingResponse is a reading waiting to be billed
type UnprocessedReadingResponse struct {
	ReadingID       uuid.UUID       `json:"reading_id"`
	MeterID         uuid.UUID       `json:"meter_id"`
	MeterNumber     string          `json:"meter_number"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	UtilityType     string          `json:"utility_type"`
	Unit            string          `json:"unit"`
	ReadingDate     time.Time       `json:"reading_date"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	Consumption     decimal.Decimal `json:"consumption"`
	ReadingType     string          `json:"reading_type"`
}

func toUnprocessedReadingResponse(r *metering.MeterReading, m *metering.Meter) UnprocessedReadingResponse {
	resp := UnprocessedReadingResponse{
		ReadingID:       r.ID,
		MeterID:         r.MeterID,
		ReadingDate:     r.ReadingDate,
		PreviousReading: r.PreviousReading,
		CurrentReading:  r.CurrentReading,
		Consumption:     r.Consumption,
		ReadingType:     r.ReadingType.String(),
	}
	if m != nil {
		resp.MeterNumber = m.MeterNumber
		resp.CustomerID = m.CustomerID
		resp.UtilityType = m.UtilityType.String()
		resp.Unit = m.Unit()
	}
	return resp
}

// BillStatusSummary aggregates bills in one status
type BillStatusSummary struct {
	Status            string          `json:"status"`
	Count             int64           `json:"count"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// BillStatsResponse summarises all bills
type BillStatsResponse struct {
	TotalBills        int64               `json:"total_bills"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	PaidAmount        decimal.Decimal     `json:"paid_amount"`
	OutstandingAmount decimal.Decimal     `json:"outstanding_amount"`
	UnprocessedCount  int64               `json:"unprocessed_readings"`
	Currency          string              `json:"currency"`
	ByStatus          []BillStatusSummary `json:"by_status"`
}

// OverdueRefreshResult reports what an overdue sweep changed
type OverdueRefreshResult struct {
	Checked       int       `json:"checked"`
	MarkedOverdue int       `json:"marked_overdue"`
	Failed        int       `json:"failed"`
	RunAt         time.Time `json:"run_at"`
}

// =============================================================================
// Payment DTOs
// =============================================================================

// ApplyPaymentRequest represents a payment received against a bill
type ApplyPaymentRequest struct {
	BillID          uuid.UUID       `json:"bill_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"payment_method" binding:"required,oneof=Cash Card 'Bank Transfer' Online Cheque"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Notes           string          `json:"notes" binding:"max=500"`
	RecordedBy      string          `json:"-"` // Set from JWT context, not from request body
}

// RefundPaymentRequest represents a request to reverse a payment
type RefundPaymentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// PaymentListFilter represents filter options for the payment list
type PaymentListFilter struct {
	BillID     string     `form:"bill_id" binding:"omitempty,uuid"`
	CustomerID string     `form:"customer_id" binding:"omitempty,uuid"`
	Method     string     `form:"payment_method"`
	Status     string     `form:"status" binding:"omitempty,oneof=Completed Verified Refunded"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	BillID          uuid.UUID       `json:"bill_id"`
	CustomerID      uuid.UUID       `json:"customer_id"`
	Amount          decimal.Decimal `json:"amount"`
	Method          string          `json:"payment_method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	PaymentDate     time.Time       `json:"payment_date"`
	Status          string          `json:"status"`
	RecordedBy      string          `json:"recorded_by"`
	Notes           string          `json:"notes,omitempty"`
	VerifiedBy      string          `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	RefundedBy      string          `json:"refunded_by,omitempty"`
	RefundedAt      *time.Time      `json:"refunded_at,omitempty"`
	RefundReason    string          `json:"refund_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Version         int             `json:"version"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		BillID:          p.BillID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method.String(),
		ReferenceNumber: p.ReferenceNumber,
		PaymentDate:     p.PaymentDate,
		Status:          p.Status.String(),
		RecordedBy:      p.RecordedBy,
		Notes:           p.Notes,
		VerifiedBy:      p.VerifiedBy,
		VerifiedAt:      p.VerifiedAt,
		RefundedBy:      p.RefundedBy,
		RefundedAt:      p.RefundedAt,
		RefundReason:    p.RefundReason,
		CreatedAt:       p.CreatedAt,
		Version:         p.Version,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// PaymentResult is the payment together with the bill it settled
type PaymentResult struct {
	Payment PaymentResponse `json:"payment"`
	Bill    BillResponse    `json:"bill"`
}
