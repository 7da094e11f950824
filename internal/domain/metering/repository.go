package metering

import (
	"context"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// MeterRepository defines the interface for meter persistence
type MeterRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Meter, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Meter, error)
	FindByNumber(ctx context.Context, meterNumber string) (*Meter, error)
	ExistsByNumber(ctx context.Context, meterNumber string) (bool, error)

	// FindAll finds meters matching the filter.
	// Supported filter keys: "customer_id", "utility_type", "status".
	FindAll(ctx context.Context, filter shared.Filter) ([]Meter, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]Meter, error)
	CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
	Save(ctx context.Context, meter *Meter) error
}

// ReadingRepository defines the interface for meter reading persistence
type ReadingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MeterReading, error)

	// FindAll finds readings matching the filter.
	// Supported filter keys: "meter_id", "reading_type", "is_processed", "from", "to".
	FindAll(ctx context.Context, filter shared.Filter) ([]MeterReading, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindLatestForMeter returns the most recent reading of a meter, or shared.ErrNotFound
	FindLatestForMeter(ctx context.Context, meterID uuid.UUID) (*MeterReading, error)

	// FindUnprocessed returns readings that have not been billed yet, oldest first
	FindUnprocessed(ctx context.Context, filter shared.Filter) ([]MeterReading, error)
	CountUnprocessed(ctx context.Context) (int64, error)

	Save(ctx context.Context, reading *MeterReading) error

	// Update writes a corrected reading if it is still unbilled and its stored version is reading.Version-1.
	// Returns shared.ErrInvalidState once billed, shared.ErrConcurrencyConflict if another writer got there first.
	Update(ctx context.Context, reading *MeterReading) error
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkProcessed flips is_processed from false to true.
	// Returns shared.ErrAlreadyBilled if the reading was already processed.
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}
