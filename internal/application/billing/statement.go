package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// StatementCustomer is the billed party as printed on a statement
type StatementCustomer struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber string    `json:"account_number"`
	Name          string    `json:"name"`
	Type          string    `json:"customer_type"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
}

// StatementMeter is the metered connection as printed on a statement
type StatementMeter struct {
	ID          uuid.UUID `json:"id"`
	MeterNumber string    `json:"meter_number"`
	UtilityType string    `json:"utility_type"`
	Location    string    `json:"location,omitempty"`
}

// BillStatement is everything a customer-facing bill document shows
type BillStatement struct {
	Bill        BillResponse      `json:"bill"`
	Customer    StatementCustomer `json:"customer"`
	Meter       StatementMeter    `json:"meter"`
	Payments    []PaymentResponse `json:"payments"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// StatementService assembles bill statements for printing
type StatementService struct {
	billRepo     billing.BillRepository
	paymentRepo  billing.PaymentRepository
	customerRepo customer.CustomerRepository
	meterRepo    metering.MeterRepository
	currency     string
	now          func() time.Time
}

// NewStatementService creates a new StatementService
func NewStatementService(
	billRepo billing.BillRepository,
	paymentRepo billing.PaymentRepository,
	customerRepo customer.CustomerRepository,
	meterRepo metering.MeterRepository,
	currency string,
) *StatementService {
	if currency == "" {
		currency = DefaultSettings().Currency
	}
	return &StatementService{
		billRepo:     billRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		meterRepo:    meterRepo,
		currency:     currency,
		now:          time.Now,
	}
}

// Get builds the statement of a bill with its customer, meter and payments
func (s *StatementService) Get(ctx context.Context, billID uuid.UUID) (*BillStatement, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	cust, err := s.customerRepo.FindByID(ctx, bill.CustomerID)
	if err != nil {
		return nil, err
	}
	meter, err := s.meterRepo.FindByID(ctx, bill.MeterID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByBill(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	return &BillStatement{
		Bill: ToBillResponse(bill, s.currency),
		Customer: StatementCustomer{
			ID:            cust.ID,
			AccountNumber: cust.AccountNumber,
			Name:          cust.Name,
			Type:          string(cust.Type),
			Address:       cust.Address,
			City:          cust.City,
			Email:         cust.Email,
			Phone:         cust.Phone,
		},
		Meter: StatementMeter{
			ID:          meter.ID,
			MeterNumber: meter.MeterNumber,
			UtilityType: meter.UtilityType.String(),
			Location:    meter.Location,
		},
		Payments:    ToPaymentResponses(payments),
		GeneratedAt: s.now().UTC(),
	}, nil
}
