package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/customer"
)

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Type    string `json:"customer_type" binding:"required,oneof=Residential Commercial Industrial Government"`
	Email   string `json:"email" binding:"omitempty,email,max=200"`
	Phone   string `json:"phone" binding:"max=50"`
	Address string `json:"address" binding:"max=500"`
	City    string `json:"city" binding:"max=100"`
	Notes   string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Omitted fields keep their current value.
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Type    *string `json:"customer_type" binding:"omitempty,oneof=Residential Commercial Industrial Government"`
	Email   *string `json:"email" binding:"omitempty,max=200"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	City    *string `json:"city" binding:"omitempty,max=100"`
	Status  *string `json:"status" binding:"omitempty,oneof=Active Inactive Suspended"`
	Notes   *string `json:"notes"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=Residential Commercial Industrial Government"`
	Status   string `form:"status" binding:"omitempty,oneof=Active Inactive Suspended"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID `json:"id"`
	AccountNumber  string    `json:"account_number"`
	Name           string    `json:"name"`
	Type           string    `json:"customer_type"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Status         string    `json:"status"`
	ConnectionDate time.Time `json:"connection_date"`
	Notes          string    `json:"notes,omitempty"`
	MeterCount     *int64    `json:"meter_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// DeleteCustomerResult tells whether a customer was removed or only had its status toggled
type DeleteCustomerResult struct {
	Deleted bool   `json:"deleted"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// ToCustomerResponse converts a domain customer to a response
func ToCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		AccountNumber:  c.AccountNumber,
		Name:           c.Name,
		Type:           c.Type.String(),
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		City:           c.City,
		Status:         c.Status.String(),
		ConnectionDate: c.ConnectionDate,
		Notes:          c.Notes,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Version:        c.Version,
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}
