package metering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// MeterService handles meter installation and status changes
type MeterService struct {
	meterRepo    metering.MeterRepository
	customerRepo customer.CustomerRepository
}

// NewMeterService creates a new MeterService
func NewMeterService(meterRepo metering.MeterRepository, customerRepo customer.CustomerRepository) *MeterService {
	return &MeterService{
		meterRepo:    meterRepo,
		customerRepo: customerRepo,
	}
}

// Create installs a meter for an active customer
func (s *MeterService) Create(ctx context.Context, req CreateMeterRequest) (*MeterResponse, error) {
	owner, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !owner.IsActive() {
		return nil, shared.ErrInvalidState.WithMessage("Customer %s is %s and cannot receive new meters", owner.AccountNumber, owner.Status)
	}

	utilityType, err := metering.ParseUtilityType(req.UtilityType)
	if err != nil {
		return nil, err
	}

	installedAt := time.Now().UTC()
	if req.InstallationDate != nil {
		installedAt = req.InstallationDate.UTC()
	}
	initial := decimal.Zero
	if req.InitialReading != nil {
		initial = *req.InitialReading
	}

	meter, err := metering.NewMeter(owner.ID, req.MeterNumber, utilityType, installedAt, initial, req.Location)
	if err != nil {
		return nil, err
	}

	exists, err := s.meterRepo.ExistsByNumber(ctx, meter.MeterNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists.WithMessage("Meter number %s is already registered", meter.MeterNumber)
	}

	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}

	resp := ToMeterResponse(meter)
	return &resp, nil
}

// GetByID retrieves a meter by ID
func (s *MeterService) GetByID(ctx context.Context, id uuid.UUID) (*MeterResponse, error) {
	meter, err := s.meterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToMeterResponse(meter)
	return &resp, nil
}

// List retrieves meters with filtering and pagination
func (s *MeterService) List(ctx context.Context, filter MeterListFilter) ([]MeterResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.CustomerID != "" {
		domainFilter.Filters["customer_id"] = filter.CustomerID
	}
	if filter.UtilityType != "" {
		domainFilter.Filters["utility_type"] = filter.UtilityType
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	meters, err := s.meterRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.meterRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMeterResponses(meters), total, nil
}

// ListByCustomer returns every meter of a customer
func (s *MeterService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]MeterResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}
	meters, err := s.meterRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToMeterResponses(meters), nil
}

// UpdateStatus changes the operating status of a meter
func (s *MeterService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateMeterStatusRequest) (*MeterResponse, error) {
	meter, err := s.meterRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := meter.ChangeStatus(metering.MeterStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.meterRepo.Save(ctx, meter); err != nil {
		return nil, err
	}
	resp := ToMeterResponse(meter)
	return &resp, nil
}
