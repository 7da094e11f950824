package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BillingService turns meter readings into bills and manages their lifecycle
type BillingService struct {
	billRepo       billing.BillRepository
	readingRepo    metering.ReadingRepository
	meterRepo      metering.MeterRepository
	customerRepo   customer.CustomerRepository
	tariffs        *TariffService
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	settings       Settings
	logger         *zap.Logger
	now            func() time.Time
}

// NewBillingService creates a new BillingService
func NewBillingService(
	billRepo billing.BillRepository,
	readingRepo metering.ReadingRepository,
	meterRepo metering.MeterRepository,
	customerRepo customer.CustomerRepository,
	tariffs *TariffService,
	txScope TransactionScope,
	settings Settings,
	logger *zap.Logger,
) *BillingService {
	defaults := DefaultSettings()
	if settings.DueDays <= 0 {
		settings.DueDays = defaults.DueDays
	}
	if settings.BillNumberPrefix == "" {
		settings.BillNumberPrefix = defaults.BillNumberPrefix
	}
	if settings.Currency == "" {
		settings.Currency = defaults.Currency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		billRepo:     billRepo,
		readingRepo:  readingRepo,
		meterRepo:    meterRepo,
		customerRepo: customerRepo,
		tariffs:      tariffs,
		txScope:      txScope,
		settings:     settings,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BillingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Settings returns the effective billing settings
func (s *BillingService) Settings() Settings {
	return s.settings
}

// pricedReading is a reading together with everything needed to bill it
type pricedReading struct {
	reading  *metering.MeterReading
	meter    *metering.Meter
	customer *customer.Customer
	tariff   *billing.Tariff
	charges  billing.Charges
}

// price loads a reading, resolves the tariff in force on the reading date and computes charges
func (s *BillingService) price(ctx context.Context, readingID uuid.UUID) (*pricedReading, error) {
	reading, err := s.readingRepo.FindByID(ctx, readingID)
	if err != nil {
		return nil, err
	}
	if reading.IsProcessed {
		return nil, shared.ErrAlreadyBilled.WithMessage("Reading %s has already been billed", reading.ID)
	}

	meter, err := s.meterRepo.FindByID(ctx, reading.MeterID)
	if err != nil {
		return nil, err
	}
	owner, err := s.customerRepo.FindByID(ctx, meter.CustomerID)
	if err != nil {
		return nil, err
	}

	tariff, err := s.tariffs.Resolve(ctx, meter.UtilityType, owner.Type, reading.ReadingDate)
	if err != nil {
		return nil, err
	}

	charges, err := billing.CalculateReadingCharges(reading, tariff)
	if err != nil {
		return nil, err
	}

	return &pricedReading{
		reading:  reading,
		meter:    meter,
		customer: owner,
		tariff:   tariff,
		charges:  charges,
	}, nil
}

// dueDate returns the requested due date or bill date + configured days
func (s *BillingService) dueDate(billDate time.Time, requested *time.Time) (time.Time, error) {
	if requested == nil || requested.IsZero() {
		return billDate.AddDate(0, 0, s.settings.DueDays), nil
	}
	due := requested.UTC()
	if truncateDay(due).Before(truncateDay(billDate)) {
		return time.Time{}, shared.NewValidationError("Due date cannot be before the bill date")
	}
	return due, nil
}

// Preview prices a reading without storing anything
func (s *BillingService) Preview(ctx context.Context, readingID uuid.UUID) (*BillPreviewResponse, error) {
	p, err := s.price(ctx, readingID)
	if err != nil {
		return nil, err
	}
	due, _ := s.dueDate(s.now().UTC(), nil)

	return &BillPreviewResponse{
		ReadingID:         p.reading.ID,
		MeterID:           p.meter.ID,
		MeterNumber:       p.meter.MeterNumber,
		CustomerID:        p.customer.ID,
		CustomerName:      p.customer.Name,
		CustomerType:      p.customer.Type.String(),
		UtilityType:       p.meter.UtilityType.String(),
		Unit:              p.meter.Unit(),
		BillingPeriod:     p.reading.BillingPeriod(),
		ReadingDate:       p.reading.ReadingDate,
		PreviousReading:   p.reading.PreviousReading,
		CurrentReading:    p.reading.CurrentReading,
		Consumption:       p.charges.Consumption,
		TariffID:          p.tariff.ID,
		TariffName:        p.tariff.Name,
		RatePerUnit:       p.charges.RatePerUnit,
		ConsumptionCharge: p.charges.ConsumptionCharge,
		FixedCharge:       p.charges.FixedCharge,
		TotalAmount:       p.charges.TotalAmount,
		Currency:          s.settings.Currency,
		DueDate:           due,
	}, nil
}

// Generate bills a reading.
//
// Marking the reading processed, allocating the bill number and inserting the bill commit
// together. The conditional update on the reading and the unique index on bills.reading_id
// make sure concurrent attempts on one reading yield exactly one bill.
func (s *BillingService) Generate(ctx context.Context, req GenerateBillRequest) (*BillResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate",
		telemetry.WithAttribute(telemetry.SpanAttrReadingID, req.ReadingID))
	defer span.End()

	p, err := s.price(ctx, req.ReadingID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	billDate := s.now().UTC()
	if req.BillDate != nil && !req.BillDate.IsZero() {
		billDate = req.BillDate.UTC()
	}
	due, err := s.dueDate(billDate, req.DueDate)
	if err != nil {
		return nil, err
	}

	bill, err := billing.NewBill(p.reading, p.meter, p.tariff, p.charges, billDate, due)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Readings().MarkProcessed(ctx, p.reading.ID); err != nil {
			return err
		}
		seq, err := repos.Sequence().Next(ctx, bill.BillingPeriod)
		if err != nil {
			return err
		}
		bill.AssignNumber(billing.FormatBillNumber(s.settings.BillNumberPrefix, bill.BillingPeriod, seq))
		return repos.Bills().Create(ctx, bill)
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyBilled) {
			s.logger.Info("Reading already billed",
				zap.String("reading_id", p.reading.ID.String()))
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillNumber, bill.BillNumber,
		telemetry.SpanAttrUtilityType, bill.UtilityType.String())

	s.logger.Info("Bill generated",
		zap.String("bill_number", bill.BillNumber),
		zap.String("reading_id", bill.ReadingID.String()),
		zap.String("total_amount", bill.TotalAmount.StringFixed(billing.MoneyPlaces)))

	s.publishEvents(ctx, bill)

	resp := ToBillResponse(bill, s.settings.Currency)
	return &resp, nil
}

// GetByID retrieves a bill by ID
func (s *BillingService) GetByID(ctx context.Context, id uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill, s.settings.Currency)
	return &resp, nil
}

// List retrieves bills with filtering and pagination
func (s *BillingService) List(ctx context.Context, filter BillListFilter) ([]BillResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "bill_date"
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "desc"
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != "" {
		domainFilter.Filters["customer_id"] = filter.CustomerID
	}
	if filter.MeterID != "" {
		domainFilter.Filters["meter_id"] = filter.MeterID
	}
	if filter.UtilityType != "" {
		domainFilter.Filters["utility_type"] = filter.UtilityType
	}
	if filter.BillingPeriod != "" {
		domainFilter.Filters["billing_period"] = filter.BillingPeriod
	}

	bills, err := s.billRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.billRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBillResponses(bills, s.settings.Currency), total, nil
}

// UnprocessedReadings lists readings that are waiting to be billed, oldest first
func (s *BillingService) UnprocessedReadings(ctx context.Context, page, pageSize int) ([]UnprocessedReadingResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	filter := shared.Filter{Page: page, PageSize: pageSize, Filters: make(map[string]any)}

	readings, err := s.readingRepo.FindUnprocessed(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.readingRepo.CountUnprocessed(ctx)
	if err != nil {
		return nil, 0, err
	}

	meterIDs := make([]uuid.UUID, 0, len(readings))
	seen := make(map[uuid.UUID]bool)
	for _, r := range readings {
		if !seen[r.MeterID] {
			seen[r.MeterID] = true
			meterIDs = append(meterIDs, r.MeterID)
		}
	}
	meters := make(map[uuid.UUID]*metering.Meter, len(meterIDs))
	if len(meterIDs) > 0 {
		found, err := s.meterRepo.FindByIDs(ctx, meterIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range found {
			meters[found[i].ID] = &found[i]
		}
	}

	out := make([]UnprocessedReadingResponse, len(readings))
	for i := range readings {
		out[i] = toUnprocessedReadingResponse(&readings[i], meters[readings[i].MeterID])
	}
	return out, total, nil
}

// Stats summarises bill amounts per status
func (s *BillingService) Stats(ctx context.Context) (*BillStatsResponse, error) {
	totals, err := s.billRepo.StatusTotals(ctx)
	if err != nil {
		return nil, err
	}
	unprocessed, err := s.readingRepo.CountUnprocessed(ctx)
	if err != nil {
		return nil, err
	}

	resp := &BillStatsResponse{
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		OutstandingAmount: decimal.Zero,
		UnprocessedCount:  unprocessed,
		Currency:          s.settings.Currency,
		ByStatus:          make([]BillStatusSummary, 0, len(totals)),
	}
	for _, t := range totals {
		resp.TotalBills += t.Count
		resp.ByStatus = append(resp.ByStatus, BillStatusSummary{
			Status:            t.Status.String(),
			Count:             t.Count,
			TotalAmount:       t.TotalAmount,
			PaidAmount:        t.PaidAmount,
			OutstandingAmount: t.OutstandingAmount,
		})
		if t.Status == billing.BillStatusCancelled {
			continue
		}
		resp.TotalAmount = resp.TotalAmount.Add(t.TotalAmount)
		resp.PaidAmount = resp.PaidAmount.Add(t.PaidAmount)
		resp.OutstandingAmount = resp.OutstandingAmount.Add(t.OutstandingAmount)
	}
	return resp, nil
}

// Cancel voids a bill that has not received any payment.
// The reading stays processed, so it cannot be billed again.
func (s *BillingService) Cancel(ctx context.Context, id uuid.UUID, req CancelBillRequest) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bill.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
		return nil, err
	}

	s.logger.Info("Bill cancelled",
		zap.String("bill_number", bill.BillNumber),
		zap.String("reason", req.Reason))

	s.publishEvents(ctx, bill)

	resp := ToBillResponse(bill, s.settings.Currency)
	return &resp, nil
}

// RefreshOverdue flags open bills whose due date has passed.
// A bill that loses a version race is skipped and picked up by the next run.
func (s *BillingService) RefreshOverdue(ctx context.Context, batchSize int) (*OverdueRefreshResult, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	now := s.now().UTC()
	result := &OverdueRefreshResult{RunAt: now}

	bills, err := s.billRepo.FindPastDue(ctx, truncateDay(now), batchSize)
	if err != nil {
		return nil, err
	}
	result.Checked = len(bills)

	for i := range bills {
		bill := &bills[i]
		if !bill.MarkOverdue(now) {
			continue
		}
		if err := s.billRepo.SaveWithLock(ctx, bill); err != nil {
			result.Failed++
			s.logger.Warn("Failed to mark bill overdue",
				zap.String("bill_number", bill.BillNumber),
				zap.Error(err))
			continue
		}
		result.MarkedOverdue++
	}

	if result.MarkedOverdue > 0 || result.Failed > 0 {
		s.logger.Info("Overdue refresh completed",
			zap.Int("checked", result.Checked),
			zap.Int("marked_overdue", result.MarkedOverdue),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}

// publishEvents publishes and clears the pending domain events of a bill.
// A publishing failure is logged; the committed state change stands.
func (s *BillingService) publishEvents(ctx context.Context, bill *billing.Bill) {
	events := bill.GetDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		bill.ClearDomainEvents()
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish bill events",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err))
	}
	bill.ClearDomainEvents()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
