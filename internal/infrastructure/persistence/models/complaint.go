package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/complaint"
)

// ComplaintModel is the persistence model for the Complaint aggregate.
type ComplaintModel struct {
	AggregateModel
	ComplaintNumber string             `gorm:"type:varchar(30);not null;uniqueIndex:idx_complaints_number"`
	CustomerID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	Type            complaint.Type     `gorm:"column:complaint_type;type:varchar(20);not null"`
	Priority        complaint.Priority `gorm:"type:varchar(20);not null;default:'Medium'"`
	Subject         string             `gorm:"type:varchar(200);not null"`
	Description     string             `gorm:"type:text;not null"`
	Status          complaint.Status   `gorm:"type:varchar(20);not null;default:'Open';index"`
	AssignedTo      string             `gorm:"type:varchar(100)"`
	AssignedAt      *time.Time
	Resolution      string `gorm:"type:text"`
	ResolvedAt      *time.Time
}

// TableName returns the table name for GORM
func (ComplaintModel) TableName() string {
	return "complaints"
}

// ToDomain converts the persistence model to a domain Complaint
func (m *ComplaintModel) ToDomain() *complaint.Complaint {
	return &complaint.Complaint{
		BaseAggregateRoot: m.ToAggregateRoot(),
		ComplaintNumber:   m.ComplaintNumber,
		CustomerID:        m.CustomerID,
		Type:              m.Type,
		Priority:          m.Priority,
		Subject:           m.Subject,
		Description:       m.Description,
		Status:            m.Status,
		AssignedTo:        m.AssignedTo,
		AssignedAt:        m.AssignedAt,
		Resolution:        m.Resolution,
		ResolvedAt:        m.ResolvedAt,
	}
}

// ComplaintModelFromDomain creates a persistence model from a domain Complaint
func ComplaintModelFromDomain(c *complaint.Complaint) *ComplaintModel {
	m := &ComplaintModel{
		ComplaintNumber: c.ComplaintNumber,
		CustomerID:      c.CustomerID,
		Type:            c.Type,
		Priority:        c.Priority,
		Subject:         c.Subject,
		Description:     c.Description,
		Status:          c.Status,
		AssignedTo:      c.AssignedTo,
		AssignedAt:      c.AssignedAt,
		Resolution:      c.Resolution,
		ResolvedAt:      c.ResolvedAt,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
