package complaint

import (
	"context"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/complaint"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// ComplaintService handles the complaint lifecycle
type ComplaintService struct {
	complaintRepo complaint.ComplaintRepository
	customerRepo  customer.CustomerRepository
}

// NewComplaintService creates a new ComplaintService
func NewComplaintService(complaintRepo complaint.ComplaintRepository, customerRepo customer.CustomerRepository) *ComplaintService {
	return &ComplaintService{
		complaintRepo: complaintRepo,
		customerRepo:  customerRepo,
	}
}

// Create opens a complaint for an existing customer
func (s *ComplaintService) Create(ctx context.Context, req CreateComplaintRequest) (*ComplaintResponse, error) {
	if _, err := s.customerRepo.FindByID(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	c, err := complaint.NewComplaint(req.CustomerID, complaint.Type(req.ComplaintType), complaint.Priority(req.Priority), req.Subject, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.complaintRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	resp := ToComplaintResponse(c)
	return &resp, nil
}

// GetByID retrieves a complaint by ID
func (s *ComplaintService) GetByID(ctx context.Context, id uuid.UUID) (*ComplaintResponse, error) {
	c, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToComplaintResponse(c)
	return &resp, nil
}

// List retrieves complaints with search, filtering and pagination
func (s *ComplaintService) List(ctx context.Context, filter ComplaintListFilter) ([]ComplaintResponse, int64, error) {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		domainFilter.Filters["priority"] = filter.Priority
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.CustomerID != "" {
		domainFilter.Filters["customer_id"] = filter.CustomerID
	}

	complaints, err := s.complaintRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.complaintRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToComplaintResponses(complaints), total, nil
}

// Search matches complaint number, subject and description
func (s *ComplaintService) Search(ctx context.Context, query string, page, pageSize int) ([]ComplaintResponse, int64, error) {
	if query == "" {
		return nil, 0, shared.NewValidationError("Search query is required")
	}
	return s.List(ctx, ComplaintListFilter{Search: query, Page: page, PageSize: pageSize})
}

// ListByCustomer returns the complaints raised by one customer
func (s *ComplaintService) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]ComplaintResponse, int64, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, ComplaintListFilter{CustomerID: customerID.String(), Page: page, PageSize: pageSize})
}

// Update edits the descriptive fields of a complaint
func (s *ComplaintService) Update(ctx context.Context, id uuid.UUID, req UpdateComplaintRequest) (*ComplaintResponse, error) {
	c, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	complaintType, priority, subject, description := c.Type, c.Priority, c.Subject, c.Description
	if req.ComplaintType != nil {
		complaintType = complaint.Type(*req.ComplaintType)
	}
	if req.Priority != nil {
		priority = complaint.Priority(*req.Priority)
	}
	if req.Subject != nil {
		subject = *req.Subject
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := c.Update(complaintType, priority, subject, description); err != nil {
		return nil, err
	}

	return s.save(ctx, c)
}

// Assign hands a complaint to a staff member
func (s *ComplaintService) Assign(ctx context.Context, id uuid.UUID, req AssignComplaintRequest) (*ComplaintResponse, error) {
	c, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Assign(req.AssignedTo); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// ChangeStatus moves a complaint to another status
func (s *ComplaintService) ChangeStatus(ctx context.Context, id uuid.UUID, req UpdateComplaintStatusRequest) (*ComplaintResponse, error) {
	c, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ChangeStatus(complaint.Status(req.Status)); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// Resolve records the resolution of a complaint
func (s *ComplaintService) Resolve(ctx context.Context, id uuid.UUID, req ResolveComplaintRequest) (*ComplaintResponse, error) {
	c, err := s.complaintRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Resolve(req.Resolution); err != nil {
		return nil, err
	}
	return s.save(ctx, c)
}

// Delete removes a complaint
func (s *ComplaintService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.complaintRepo.Delete(ctx, id)
}

func (s *ComplaintService) save(ctx context.Context, c *complaint.Complaint) (*ComplaintResponse, error) {
	if err := s.complaintRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToComplaintResponse(c)
	return &resp, nil
}
