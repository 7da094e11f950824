package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/metering"
)

// =============================================================================
// Meter DTOs
// =============================================================================

// CreateMeterRequest represents a request to install a meter
type CreateMeterRequest struct {
	CustomerID       uuid.UUID        `json:"customer_id" binding:"required"`
	MeterNumber      string           `json:"meter_number" binding:"required,min=1,max=50"`
	UtilityType      string           `json:"utility_type" binding:"required"`
	InstallationDate *time.Time       `json:"installation_date"`
	InitialReading   *decimal.Decimal `json:"initial_reading"`
	Location         string           `json:"location" binding:"max=255"`
}

// UpdateMeterStatusRequest changes the operating status of a meter
type UpdateMeterStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Active Inactive Faulty"`
}

// MeterListFilter represents filter options for the meter list
type MeterListFilter struct {
	Search      string `form:"search"`
	CustomerID  string `form:"customer_id" binding:"omitempty,uuid"`
	UtilityType string `form:"utility_type"`
	Status      string `form:"status" binding:"omitempty,oneof=Active Inactive Faulty"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MeterResponse represents a meter in API responses
type MeterResponse struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	MeterNumber      string          `json:"meter_number"`
	UtilityType      string          `json:"utility_type"`
	Unit             string          `json:"unit"`
	InstallationDate time.Time       `json:"installation_date"`
	InitialReading   decimal.Decimal `json:"initial_reading"`
	Location         string          `json:"location,omitempty"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToMeterResponse converts a domain meter to a response
func ToMeterResponse(m *metering.Meter) MeterResponse {
	return MeterResponse{
		ID:               m.ID,
		CustomerID:       m.CustomerID,
		MeterNumber:      m.MeterNumber,
		UtilityType:      m.UtilityType.String(),
		Unit:             m.Unit(),
		InstallationDate: m.InstallationDate,
		InitialReading:   m.InitialReading,
		Location:         m.Location,
		Status:           m.Status.String(),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Version:          m.Version,
	}
}

// ToMeterResponses converts a slice of meters
func ToMeterResponses(meters []metering.Meter) []MeterResponse {
	out := make([]MeterResponse, len(meters))
	for i := range meters {
		out[i] = ToMeterResponse(&meters[i])
	}
	return out
}

// =============================================================================
// Reading DTOs
// =============================================================================

// CreateReadingRequest represents a new meter reading.
// PreviousReading defaults to the meter's last reading, or its initial reading.
type CreateReadingRequest struct {
	MeterID         uuid.UUID        `json:"meter_id" binding:"required"`
	ReadingDate     *time.Time       `json:"reading_date"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal  `json:"current_reading"`
	ReadingType     string           `json:"reading_type" binding:"omitempty,oneof=Actual Estimated Customer-Submitted"`
	Notes           string           `json:"notes" binding:"max=500"`
	ReadBy          string           `json:"-"` // Set from JWT context, not from request body
}

// UpdateReadingRequest corrects an unbilled reading. Omitted fields keep their value.
type UpdateReadingRequest struct {
	ReadingDate     *time.Time       `json:"reading_date"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	CurrentReading  *decimal.Decimal `json:"current_reading"`
	ReadingType     *string          `json:"reading_type" binding:"omitempty,oneof=Actual Estimated Customer-Submitted"`
	Notes           *string          `json:"notes" binding:"omitempty,max=500"`
}

// ReadingListFilter represents filter options for the reading list
type ReadingListFilter struct {
	MeterID     string     `form:"meter_id" binding:"omitempty,uuid"`
	ReadingType string     `form:"reading_type"`
	IsProcessed *bool      `form:"is_processed"`
	From        *time.Time `form:"from" time_format:"2006-01-02"`
	To          *time.Time `form:"to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReadingResponse represents a meter reading in API responses
type ReadingResponse struct {
	ID              uuid.UUID       `json:"id"`
	MeterID         uuid.UUID       `json:"meter_id"`
	ReadingDate     time.Time       `json:"reading_date"`
	BillingPeriod   string          `json:"billing_period"`
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	Consumption     decimal.Decimal `json:"consumption"`
	ReadingType     string          `json:"reading_type"`
	IsProcessed     bool            `json:"is_processed"`
	ReadBy          string          `json:"read_by,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToReadingResponse converts a domain reading to a response
func ToReadingResponse(r *metering.MeterReading) ReadingResponse {
	return ReadingResponse{
		ID:              r.ID,
		MeterID:         r.MeterID,
		ReadingDate:     r.ReadingDate,
		BillingPeriod:   r.BillingPeriod(),
		PreviousReading: r.PreviousReading,
		CurrentReading:  r.CurrentReading,
		Consumption:     r.Consumption,
		ReadingType:     r.ReadingType.String(),
		IsProcessed:     r.IsProcessed,
		ReadBy:          r.ReadBy,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Version:         r.Version,
	}
}

// ToReadingResponses converts a slice of readings
func ToReadingResponses(readings []metering.MeterReading) []ReadingResponse {
	out := make([]ReadingResponse, len(readings))
	for i := range readings {
		out[i] = ToReadingResponse(&readings[i])
	}
	return out
}

// ReadingHistoryResponse is the consumption history of one meter
type ReadingHistoryResponse struct {
	MeterID            uuid.UUID         `json:"meter_id"`
	MeterNumber        string            `json:"meter_number"`
	UtilityType        string            `json:"utility_type"`
	Unit               string            `json:"unit"`
	Readings           []ReadingResponse `json:"readings"`
	TotalConsumption   decimal.Decimal   `json:"total_consumption"`
	AverageConsumption decimal.Decimal   `json:"average_consumption"`
}
