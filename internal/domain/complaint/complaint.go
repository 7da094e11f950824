package complaint

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// Status is the handling status of a complaint
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
	StatusRejected   Status = "Rejected"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// IsFinal returns true for statuses that end the complaint lifecycle
func (s Status) IsFinal() bool {
	return s == StatusClosed || s == StatusRejected
}

// allowedTransitions maps each status to the statuses it may move to
var allowedTransitions = map[Status][]Status{
	StatusOpen:       {StatusInProgress, StatusResolved, StatusRejected},
	StatusInProgress: {StatusOpen, StatusResolved, StatusRejected},
	StatusResolved:   {StatusClosed, StatusInProgress},
	StatusClosed:     {},
	StatusRejected:   {},
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Priority orders complaints for handling
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// IsValid checks if the priority is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Type categorises what a complaint is about
type Type string

const (
	TypeBilling Type = "Billing"
	TypeMeter   Type = "Meter"
	TypeSupply  Type = "Supply"
	TypeService Type = "Service"
	TypeOther   Type = "Other"
)

// IsValid checks if the type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeBilling, TypeMeter, TypeSupply, TypeService, TypeOther:
		return true
	}
	return false
}

// Complaint is a customer-raised issue tracked until resolution
type Complaint struct {
	shared.BaseAggregateRoot
	ComplaintNumber string
	CustomerID      uuid.UUID
	Type            Type
	Priority        Priority
	Subject         string
	Description     string
	Status          Status
	AssignedTo      string
	AssignedAt      *time.Time
	Resolution      string
	ResolvedAt      *time.Time
}

// NewComplaint opens a complaint for a customer
func NewComplaint(customerID uuid.UUID, complaintType Type, priority Priority, subject, description string) (*Complaint, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}
	if priority == "" {
		priority = PriorityMedium
	}
	c := &Complaint{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Status:            StatusOpen,
	}
	if err := c.apply(complaintType, priority, subject, description); err != nil {
		return nil, err
	}
	c.ComplaintNumber = fmt.Sprintf("CMP-%s-%s", time.Now().Format("200601"),
		strings.ToUpper(strings.ReplaceAll(c.ID.String(), "-", "")[:6]))
	return c, nil
}

// Update edits the descriptive fields of an unfinished complaint
func (c *Complaint) Update(complaintType Type, priority Priority, subject, description string) error {
	if c.Status.IsFinal() {
		return shared.ErrInvalidState.WithMessage("Complaint %s is %s and cannot be edited", c.ComplaintNumber, c.Status)
	}
	if err := c.apply(complaintType, priority, subject, description); err != nil {
		return err
	}
	c.touch()
	return nil
}

// Assign hands the complaint to a staff member and starts work on it
func (c *Complaint) Assign(assignee string) error {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return shared.NewValidationError("Assignee is required")
	}
	if c.Status.IsFinal() || c.Status == StatusResolved {
		return shared.ErrInvalidState.WithMessage("Cannot assign a complaint in %s status", c.Status)
	}
	now := time.Now()
	c.AssignedTo = assignee
	c.AssignedAt = &now
	if c.Status == StatusOpen {
		c.Status = StatusInProgress
	}
	c.touch()
	return nil
}

// ChangeStatus moves the complaint along its lifecycle
func (c *Complaint) ChangeStatus(next Status) error {
	if !next.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid complaint status: %s", next))
	}
	if c.Status == next {
		return nil
	}
	if !c.Status.CanTransitionTo(next) {
		return shared.ErrInvalidState.WithMessage("Cannot move complaint from %s to %s", c.Status, next)
	}
	if next == StatusResolved {
		now := time.Now()
		c.ResolvedAt = &now
	}
	if next == StatusInProgress || next == StatusOpen {
		c.ResolvedAt = nil
	}
	c.Status = next
	c.touch()
	return nil
}

// Resolve records the resolution and marks the complaint resolved
func (c *Complaint) Resolve(resolution string) error {
	if strings.TrimSpace(resolution) == "" {
		return shared.NewValidationError("Resolution notes are required")
	}
	if err := c.ChangeStatus(StatusResolved); err != nil {
		return err
	}
	c.Resolution = resolution
	return nil
}

func (c *Complaint) apply(complaintType Type, priority Priority, subject, description string) error {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return shared.NewValidationError("Subject cannot be empty")
	}
	if len(subject) > 200 {
		return shared.NewValidationError("Subject cannot exceed 200 characters")
	}
	if !complaintType.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid complaint type: %s", complaintType))
	}
	if !priority.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid priority: %s", priority))
	}
	c.Type = complaintType
	c.Priority = priority
	c.Subject = subject
	c.Description = description
	return nil
}

func (c *Complaint) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
