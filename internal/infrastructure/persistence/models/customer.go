package models

import (
	"time"

	"github.com/utilitrack/backend/internal/domain/customer"
)

// CustomerModel is the persistence model for the Customer aggregate.
type CustomerModel struct {
	AggregateModel
	AccountNumber  string                  `gorm:"type:varchar(30);not null;uniqueIndex:idx_customers_account_number"`
	Name           string                  `gorm:"type:varchar(200);not null"`
	Type           customer.CustomerType   `gorm:"column:customer_type;type:varchar(20);not null;index"`
	Email          string                  `gorm:"type:varchar(200);index"`
	Phone          string                  `gorm:"type:varchar(50);not null"`
	Address        string                  `gorm:"type:text;not null"`
	City           string                  `gorm:"type:varchar(100)"`
	Status         customer.CustomerStatus `gorm:"type:varchar(20);not null;default:'Active';index"`
	ConnectionDate time.Time               `gorm:"not null"`
	Notes          string                  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *customer.Customer {
	return &customer.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		AccountNumber:     m.AccountNumber,
		Name:              m.Name,
		Type:              m.Type,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		City:              m.City,
		Status:            m.Status,
		ConnectionDate:    m.ConnectionDate,
		Notes:             m.Notes,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *customer.Customer) *CustomerModel {
	m := &CustomerModel{
		AccountNumber:  c.AccountNumber,
		Name:           c.Name,
		Type:           c.Type,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		City:           c.City,
		Status:         c.Status,
		ConnectionDate: c.ConnectionDate,
		Notes:          c.Notes,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
