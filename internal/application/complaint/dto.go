package complaint

import (
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/complaint"
)

// CreateComplaintRequest represents a request to open a complaint
type CreateComplaintRequest struct {
	CustomerID    uuid.UUID `json:"customer_id" binding:"required"`
	ComplaintType string    `json:"complaint_type" binding:"required,oneof=Billing Meter Supply Service Other"`
	Priority      string    `json:"priority" binding:"omitempty,oneof=Low Medium High Urgent"`
	Subject       string    `json:"subject" binding:"required,min=1,max=200"`
	Description   string    `json:"description" binding:"max=5000"`
}

// UpdateComplaintRequest edits an unfinished complaint. Omitted fields keep their value.
type UpdateComplaintRequest struct {
	ComplaintType *string `json:"complaint_type" binding:"omitempty,oneof=Billing Meter Supply Service Other"`
	Priority      *string `json:"priority" binding:"omitempty,oneof=Low Medium High Urgent"`
	Subject       *string `json:"subject" binding:"omitempty,min=1,max=200"`
	Description   *string `json:"description" binding:"omitempty,max=5000"`
}

// AssignComplaintRequest hands a complaint to a staff member
type AssignComplaintRequest struct {
	AssignedTo string `json:"assigned_to" binding:"required,max=100"`
}

// UpdateComplaintStatusRequest moves a complaint along its lifecycle
type UpdateComplaintStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Open 'In Progress' Resolved Closed Rejected"`
}

// ResolveComplaintRequest resolves a complaint with notes
type ResolveComplaintRequest struct {
	Resolution string `json:"resolution" binding:"required,max=5000"`
}

// ComplaintListFilter represents filter options for the complaint list
type ComplaintListFilter struct {
	Search     string `form:"q"`
	Status     string `form:"status"`
	Priority   string `form:"priority" binding:"omitempty,oneof=Low Medium High Urgent"`
	Type       string `form:"type" binding:"omitempty,oneof=Billing Meter Supply Service Other"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ComplaintResponse represents a complaint in API responses
type ComplaintResponse struct {
	ID              uuid.UUID  `json:"id"`
	ComplaintNumber string     `json:"complaint_number"`
	CustomerID      uuid.UUID  `json:"customer_id"`
	ComplaintType   string     `json:"complaint_type"`
	Priority        string     `json:"priority"`
	Subject         string     `json:"subject"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	AssignedTo      string     `json:"assigned_to,omitempty"`
	AssignedAt      *time.Time `json:"assigned_at,omitempty"`
	Resolution      string     `json:"resolution,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Version         int        `json:"version"`
}

// ToComplaintResponse converts a domain complaint to a response
func ToComplaintResponse(c *complaint.Complaint) ComplaintResponse {
	return ComplaintResponse{
		ID:              c.ID,
		ComplaintNumber: c.ComplaintNumber,
		CustomerID:      c.CustomerID,
		ComplaintType:   string(c.Type),
		Priority:        string(c.Priority),
		Subject:         c.Subject,
		Description:     c.Description,
		Status:          string(c.Status),
		AssignedTo:      c.AssignedTo,
		AssignedAt:      c.AssignedAt,
		Resolution:      c.Resolution,
		ResolvedAt:      c.ResolvedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToComplaintResponses converts a slice of complaints
func ToComplaintResponses(complaints []complaint.Complaint) []ComplaintResponse {
	out := make([]ComplaintResponse, len(complaints))
	for i := range complaints {
		out[i] = ToComplaintResponse(&complaints[i])
	}
	return out
}
