package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
)

// TariffRepository defines the interface for tariff persistence
type TariffRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tariff, error)

	// FindAll finds tariffs matching the filter.
	// Supported filter keys: "utility_type", "customer_type", "active_at".
	FindAll(ctx context.Context, filter shared.Filter) ([]Tariff, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// FindEffective returns the tariff in force for the utility and customer type at asOf.
	// A tariff for the exact customer type takes precedence over a generic one.
	// Returns shared.ErrTariffNotFound when nothing matches.
	FindEffective(ctx context.Context, utilityType metering.UtilityType, customerType customer.CustomerType, asOf time.Time) (*Tariff, error)

	// Create inserts a tariff. Returns shared.ErrConflict if its effective period overlaps
	// another tariff of the same scope, including one created concurrently.
	Create(ctx context.Context, tariff *Tariff) error

	// SaveWithLock updates a tariff if its stored version is tariff.Version-1.
	// Returns shared.ErrConcurrencyConflict if another writer got there first.
	SaveWithLock(ctx context.Context, tariff *Tariff) error
}

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindByReadingID(ctx context.Context, readingID uuid.UUID) (*Bill, error)

	// FindAll finds bills matching the filter.
	// Supported filter keys: "status", "customer_id", "meter_id", "utility_type", "billing_period".
	FindAll(ctx context.Context, filter shared.Filter) ([]Bill, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new bill. A second bill for the same reading yields shared.ErrAlreadyBilled.
	Create(ctx context.Context, bill *Bill) error

	// SaveWithLock updates a bill if its stored version is bill.Version-1.
	// Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, bill *Bill) error

	// FindPastDue returns open bills due before the given day that are not yet Overdue
	FindPastDue(ctx context.Context, before time.Time, limit int) ([]Bill, error)

	// StatusTotals aggregates bill count and amounts per status
	StatusTotals(ctx context.Context) ([]StatusTotal, error)
}

// StatusTotal aggregates bills sharing one status
type StatusTotal struct {
	Status            BillStatus
	Count             int64
	TotalAmount       decimal.Decimal
	PaidAmount        decimal.Decimal
	OutstandingAmount decimal.Decimal
}

// BillSequence hands out bill numbers per billing period
type BillSequence interface {
	// Next returns the next number for the period, starting at 1.
	// It must run inside the transaction that stores the bill.
	Next(ctx context.Context, period string) (int64, error)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindAll finds payments matching the filter.
	// Supported filter keys: "bill_id", "customer_id", "method", "status", "from", "to".
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock updates a payment if its stored version is payment.Version-1.
	// Returns shared.ErrConcurrencyConflict if another writer got there first.
	SaveWithLock(ctx context.Context, payment *Payment) error
}
