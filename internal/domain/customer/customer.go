package customer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// CustomerType determines which tariff family applies to a customer
type CustomerType string

const (
	CustomerTypeResidential CustomerType = "Residential"
	CustomerTypeCommercial  CustomerType = "Commercial"
	CustomerTypeIndustrial  CustomerType = "Industrial"
	CustomerTypeGovernment  CustomerType = "Government"
)

// AllCustomerTypes lists the accepted customer types
var AllCustomerTypes = []CustomerType{
	CustomerTypeResidential,
	CustomerTypeCommercial,
	CustomerTypeIndustrial,
	CustomerTypeGovernment,
}

// IsValid checks if the customer type is valid
func (t CustomerType) IsValid() bool {
	switch t {
	case CustomerTypeResidential, CustomerTypeCommercial, CustomerTypeIndustrial, CustomerTypeGovernment:
		return true
	}
	return false
}

// String returns the string representation
func (t CustomerType) String() string {
	return string(t)
}

// CustomerStatus represents the status of a customer account
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "Active"
	CustomerStatusInactive  CustomerStatus = "Inactive"
	CustomerStatusSuspended CustomerStatus = "Suspended"
)

// IsValid checks if the status is valid
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusInactive, CustomerStatusSuspended:
		return true
	}
	return false
}

// String returns the string representation
func (s CustomerStatus) String() string {
	return string(s)
}

// Customer is a utility account holder. It is the aggregate root for customer operations.
type Customer struct {
	shared.BaseAggregateRoot
	AccountNumber  string
	Name           string
	Type           CustomerType
	Email          string
	Phone          string
	Address        string
	City           string
	Status         CustomerStatus
	ConnectionDate time.Time
	Notes          string
}

// NewCustomer creates a new active customer
func NewCustomer(name string, customerType CustomerType, email, phone, address, city string) (*Customer, error) {
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            CustomerStatusActive,
		ConnectionDate:    time.Now(),
	}
	if err := c.apply(name, customerType, email, phone, address, city); err != nil {
		return nil, err
	}
	c.AccountNumber = generateAccountNumber(c.ID)
	return c, nil
}

// Update replaces the customer's profile fields
func (c *Customer) Update(name string, customerType CustomerType, email, phone, address, city string) error {
	if err := c.apply(name, customerType, email, phone, address, city); err != nil {
		return err
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetNotes sets free-form notes
func (c *Customer) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
}

// ChangeStatus moves the customer to a new status
func (c *Customer) ChangeStatus(status CustomerStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid customer status: %s", status))
	}
	if c.Status == status {
		return nil
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the customer can receive new connections
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

func (c *Customer) apply(name string, customerType CustomerType, email, phone, address, city string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if !customerType.IsValid() {
		return shared.NewValidationError("Customer type must be one of Residential, Commercial, Industrial, Government")
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}
	if len(address) > 500 {
		return shared.NewValidationError("Address cannot exceed 500 characters")
	}

	c.Name = name
	c.Type = customerType
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.Phone = phone
	c.Address = address
	c.City = city
	return nil
}

func generateAccountNumber(id uuid.UUID) string {
	return "ACC-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:10])
}

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(name string) error {
	if name == "" {
		return shared.NewValidationError("Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Customer name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if len(phone) > 50 {
		return shared.NewValidationError("Phone number cannot exceed 50 characters")
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewValidationError("Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewValidationError("Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewValidationError("Invalid email format")
	}
	return nil
}
