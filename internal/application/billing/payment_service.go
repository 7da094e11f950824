package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService records payments against bills
type PaymentService struct {
	paymentRepo    billing.PaymentRepository
	billRepo       billing.BillRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	currency       string
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	billRepo billing.BillRepository,
	txScope TransactionScope,
	currency string,
	logger *zap.Logger,
) *PaymentService {
	if currency == "" {
		currency = DefaultSettings().Currency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		billRepo:    billRepo,
		txScope:     txScope,
		currency:    currency,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Apply records a payment and reduces the bill's outstanding balance.
// The bill update is version checked and commits together with the payment insert;
// a lost race yields shared.ErrConcurrencyConflict.
func (s *PaymentService) Apply(ctx context.Context, req ApplyPaymentRequest) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payments", "apply",
		telemetry.WithAttribute(telemetry.SpanAttrBillID, req.BillID),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, req.Amount.String()))
	defer span.End()

	paidAt := time.Now().UTC()
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paidAt = req.PaymentDate.UTC()
	}

	var (
		bill    *billing.Bill
		payment *billing.Payment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		bill, err = repos.Bills().FindByID(ctx, req.BillID)
		if err != nil {
			return err
		}

		payment, err = billing.NewPayment(bill, req.Amount, billing.PaymentMethod(req.Method),
			req.ReferenceNumber, paidAt, req.RecordedBy, req.Notes)
		if err != nil {
			return err
		}
		if err := bill.ApplyPayment(req.Amount, paidAt); err != nil {
			return err
		}
		if err := repos.Bills().SaveWithLock(ctx, bill); err != nil {
			return err
		}
		return repos.Payments().Save(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrPaymentID, payment.ID)

	s.logger.Info("Payment recorded",
		zap.String("bill_number", bill.BillNumber),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(billing.MoneyPlaces)),
		zap.String("bill_status", bill.Status.String()))

	s.publishEvents(ctx, payment)

	return &PaymentResult{
		Payment: ToPaymentResponse(payment),
		Bill:    ToBillResponse(bill, s.currency),
	}, nil
}

// Verify confirms a completed payment
func (s *PaymentService) Verify(ctx context.Context, id uuid.UUID, by string) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payment.Verify(by); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// Refund reverses a payment and restores its amount to the bill, atomically
func (s *PaymentService) Refund(ctx context.Context, id uuid.UUID, req RefundPaymentRequest, by string) (*PaymentResult, error) {
	var (
		bill    *billing.Bill
		payment *billing.Payment
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := payment.Refund(req.Reason, by); err != nil {
			return err
		}

		bill, err = repos.Bills().FindByID(ctx, payment.BillID)
		if err != nil {
			return err
		}
		if err := bill.RevertPayment(payment.Amount, time.Now()); err != nil {
			return err
		}
		if err := repos.Bills().SaveWithLock(ctx, bill); err != nil {
			return err
		}
		return repos.Payments().SaveWithLock(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment refunded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("bill_number", bill.BillNumber),
		zap.String("bill_status", bill.Status.String()))

	s.publishEvents(ctx, payment)

	return &PaymentResult{
		Payment: ToPaymentResponse(payment),
		Bill:    ToBillResponse(bill, s.currency),
	}, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(payment)
	return &resp, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "payment_date"
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "desc"
	}
	if filter.BillID != "" {
		domainFilter.Filters["bill_id"] = filter.BillID
	}
	if filter.CustomerID != "" {
		domainFilter.Filters["customer_id"] = filter.CustomerID
	}
	if filter.Method != "" {
		domainFilter.Filters["method"] = filter.Method
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = filter.From.UTC()
	}
	if filter.To != nil {
		// inclusive of the whole "to" day
		domainFilter.Filters["to"] = filter.To.UTC().Add(24*time.Hour - time.Nanosecond)
	}

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPaymentResponses(payments), total, nil
}

// ListByBill returns every payment of a bill, oldest first
func (s *PaymentService) ListByBill(ctx context.Context, billID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.billRepo.FindByID(ctx, billID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// ListByCustomer returns the payments of a customer, newest first
func (s *PaymentService) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]PaymentResponse, int64, error) {
	return s.List(ctx, PaymentListFilter{
		CustomerID: customerID.String(),
		Page:       page,
		PageSize:   pageSize,
	})
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *billing.Payment) {
	events := payment.GetDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		payment.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish payment events",
			zap.String("payment_id", payment.ID.String()),
			zap.Error(err))
	}
	payment.ClearDomainEvents()
}
