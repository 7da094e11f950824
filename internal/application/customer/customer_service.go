package customer

import (
	"context"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo customer.CustomerRepository
	meterRepo    metering.MeterRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo customer.CustomerRepository, meterRepo metering.MeterRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		meterRepo:    meterRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if req.Email != "" {
		exists, err := s.customerRepo.ExistsByEmail(ctx, req.Email, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.ErrAlreadyExists.WithMessage("Customer with email %s already exists", req.Email)
		}
	}

	c, err := customer.NewCustomer(req.Name, customer.CustomerType(req.Type), req.Email, req.Phone, req.Address, req.City)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		c.SetNotes(req.Notes)
	}

	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	return &response, nil
}

// GetByID retrieves a customer by ID together with its meter count
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	meters, err := s.meterRepo.CountByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	response.MeterCount = &meters
	return &response, nil
}

// List retrieves a list of customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	// Set defaults
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
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, customerType, email, phone, address, city := c.Name, c.Type, c.Email, c.Phone, c.Address, c.City
	if req.Name != nil {
		name = *req.Name
	}
	if req.Type != nil {
		customerType = customer.CustomerType(*req.Type)
	}
	if req.Email != nil {
		email = *req.Email
		if email != "" && email != c.Email {
			exists, err := s.customerRepo.ExistsByEmail(ctx, email, c.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.ErrAlreadyExists.WithMessage("Customer with email %s already exists", email)
			}
		}
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Address != nil {
		address = *req.Address
	}
	if req.City != nil {
		city = *req.City
	}

	if err := c.Update(name, customerType, email, phone, address, city); err != nil {
		return nil, err
	}
	if req.Status != nil {
		if err := c.ChangeStatus(customer.CustomerStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		c.SetNotes(*req.Notes)
	}

	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(c)
	return &response, nil
}

// Delete removes a customer without meters. A customer that still has meters is not
// removed; its status is toggled between Active and Inactive instead.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) (*DeleteCustomerResult, error) {
	c, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	meters, err := s.meterRepo.CountByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if meters == 0 {
		if err := s.customerRepo.Delete(ctx, id); err != nil {
			return nil, err
		}
		return &DeleteCustomerResult{Deleted: true, Message: "Customer deleted"}, nil
	}

	next := customer.CustomerStatusInactive
	if c.Status != customer.CustomerStatusActive {
		next = customer.CustomerStatusActive
	}
	if err := c.ChangeStatus(next); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	return &DeleteCustomerResult{
		Deleted: false,
		Status:  next.String(),
		Message: "Customer has meters and was set to " + next.String(),
	}, nil
}
