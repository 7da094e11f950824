package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// MeterModel is the persistence model for the Meter aggregate.
type MeterModel struct {
	AggregateModel
	CustomerID       uuid.UUID            `gorm:"type:uuid;not null;index"`
	MeterNumber      string               `gorm:"type:varchar(30);not null;uniqueIndex:idx_meters_meter_number"`
	UtilityType      metering.UtilityType `gorm:"type:varchar(30);not null;index"`
	InstallationDate time.Time            `gorm:"not null"`
	InitialReading   decimal.Decimal      `gorm:"type:decimal(14,2);not null;default:0"`
	Location         string               `gorm:"type:varchar(200)"`
	Status           metering.MeterStatus `gorm:"type:varchar(20);not null;default:'Active';index"`
}

// TableName returns the table name for GORM
func (MeterModel) TableName() string {
	return "meters"
}

// ToDomain converts the persistence model to a domain Meter
func (m *MeterModel) ToDomain() *metering.Meter {
	return &metering.Meter{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CustomerID:        m.CustomerID,
		MeterNumber:       m.MeterNumber,
		UtilityType:       m.UtilityType,
		InstallationDate:  m.InstallationDate,
		InitialReading:    m.InitialReading,
		Location:          m.Location,
		Status:            m.Status,
	}
}

// MeterModelFromDomain creates a persistence model from a domain Meter
func MeterModelFromDomain(meter *metering.Meter) *MeterModel {
	m := &MeterModel{
		CustomerID:       meter.CustomerID,
		MeterNumber:      meter.MeterNumber,
		UtilityType:      meter.UtilityType,
		InstallationDate: meter.InstallationDate,
		InitialReading:   meter.InitialReading,
		Location:         meter.Location,
		Status:           meter.Status,
	}
	m.FromDomainAggregateRoot(meter.BaseAggregateRoot)
	return m
}

// MeterReadingModel is the persistence model for the MeterReading aggregate.
type MeterReadingModel struct {
	AggregateModel
	MeterID         uuid.UUID            `gorm:"type:uuid;not null;index:idx_readings_meter_date,priority:1"`
	ReadingDate     time.Time            `gorm:"not null;index:idx_readings_meter_date,priority:2"`
	PreviousReading decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	CurrentReading  decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	Consumption     decimal.Decimal      `gorm:"type:decimal(14,2);not null"`
	ReadingType     metering.ReadingType `gorm:"type:varchar(30);not null;default:'Actual'"`
	IsProcessed     bool                 `gorm:"not null;default:false;index"`
	ReadBy          string               `gorm:"type:varchar(100)"`
	Notes           string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToDomain converts the persistence model to a domain MeterReading
func (m *MeterReadingModel) ToDomain() *metering.MeterReading {
	return &metering.MeterReading{
		BaseAggregateRoot: m.ToAggregateRoot(),
		MeterID:           m.MeterID,
		ReadingDate:       m.ReadingDate,
		PreviousReading:   m.PreviousReading,
		CurrentReading:    m.CurrentReading,
		Consumption:       m.Consumption,
		ReadingType:       m.ReadingType,
		IsProcessed:       m.IsProcessed,
		ReadBy:            m.ReadBy,
		Notes:             m.Notes,
	}
}

// MeterReadingModelFromDomain creates a persistence model from a domain MeterReading
func MeterReadingModelFromDomain(r *metering.MeterReading) *MeterReadingModel {
	m := &MeterReadingModel{
		MeterID:         r.MeterID,
		ReadingDate:     r.ReadingDate,
		PreviousReading: r.PreviousReading,
		CurrentReading:  r.CurrentReading,
		Consumption:     r.Consumption,
		ReadingType:     r.ReadingType,
		IsProcessed:     r.IsProcessed,
		ReadBy:          r.ReadBy,
		Notes:           r.Notes,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
