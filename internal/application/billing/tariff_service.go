package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// TariffService manages tariffs and resolves the tariff in force for a bill
type TariffService struct {
	tariffRepo billing.TariffRepository
}

// NewTariffService creates a new TariffService
func NewTariffService(tariffRepo billing.TariffRepository) *TariffService {
	return &TariffService{tariffRepo: tariffRepo}
}

// Resolve returns the tariff in force for a utility and customer type at asOf.
// A zero asOf means now. There is no fallback rate when nothing matches.
func (s *TariffService) Resolve(ctx context.Context, utilityType metering.UtilityType, customerType customer.CustomerType, asOf time.Time) (*billing.Tariff, error) {
	if !utilityType.IsValid() {
		return nil, shared.NewValidationError("Unsupported utility type: " + utilityType.String())
	}
	if !customerType.IsValid() {
		return nil, shared.NewValidationError("Invalid customer type: " + customerType.String())
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}

	tariff, err := s.tariffRepo.FindEffective(ctx, utilityType, customerType, asOf)
	if err != nil {
		return nil, err
	}
	return tariff, nil
}

// ResolveResponse resolves a tariff from raw query values
func (s *TariffService) ResolveResponse(ctx context.Context, q ResolveTariffQuery) (*TariffResponse, error) {
	utilityType, err := metering.ParseUtilityType(q.UtilityType)
	if err != nil {
		return nil, err
	}
	var asOf time.Time
	if q.AsOf != nil {
		asOf = *q.AsOf
	}
	tariff, err := s.Resolve(ctx, utilityType, customer.CustomerType(q.CustomerType), asOf)
	if err != nil {
		return nil, err
	}
	resp := ToTariffResponse(tariff)
	return &resp, nil
}

// GetByID retrieves a tariff by ID
func (s *TariffService) GetByID(ctx context.Context, id uuid.UUID) (*TariffResponse, error) {
	tariff, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTariffResponse(tariff)
	return &resp, nil
}

// List retrieves tariffs with filtering and pagination
func (s *TariffService) List(ctx context.Context, filter TariffListFilter) ([]TariffResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "effective_from",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 50
	}
	if filter.UtilityType != "" {
		domainFilter.Filters["utility_type"] = filter.UtilityType
	}
	if filter.CustomerType != "" {
		domainFilter.Filters["customer_type"] = filter.CustomerType
	}
	if filter.ActiveAt != nil {
		domainFilter.Filters["active_at"] = *filter.ActiveAt
	}

	tariffs, err := s.tariffRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tariffRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTariffResponses(tariffs), total, nil
}

// Create creates a tariff. Its effective period may not overlap another tariff
// of the same utility and customer type.
func (s *TariffService) Create(ctx context.Context, req CreateTariffRequest) (*TariffResponse, error) {
	utilityType, err := metering.ParseUtilityType(req.UtilityType)
	if err != nil {
		return nil, err
	}
	var customerType *customer.CustomerType
	if req.CustomerType != nil && *req.CustomerType != "" {
		ct := customer.CustomerType(*req.CustomerType)
		customerType = &ct
	}

	tariff, err := billing.NewTariff(
		req.Name,
		utilityType,
		customerType,
		req.RatePerUnit,
		req.FixedCharge,
		req.EffectiveFrom.UTC(),
		utcPtr(req.EffectiveTo),
	)
	if err != nil {
		return nil, err
	}
	tariff.Description = req.Description

	if err := s.tariffRepo.Create(ctx, tariff); err != nil {
		return nil, err
	}

	resp := ToTariffResponse(tariff)
	return &resp, nil
}

// Close ends a tariff's effective period so a successor can take over
func (s *TariffService) Close(ctx context.Context, id uuid.UUID, req CloseTariffRequest) (*TariffResponse, error) {
	tariff, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tariff.Close(req.EffectiveTo.UTC()); err != nil {
		return nil, err
	}
	if err := s.tariffRepo.SaveWithLock(ctx, tariff); err != nil {
		return nil, err
	}
	resp := ToTariffResponse(tariff)
	return &resp, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
