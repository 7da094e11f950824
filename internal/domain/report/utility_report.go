package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overview holds the headline counters of the dashboard
type Overview struct {
	TotalCustomers   int64
	ActiveCustomers  int64
	ActiveMeters     int64
	TotalBills       int64
	OpenBills        int64
	OverdueBills     int64
	TotalBilled      decimal.Decimal
	TotalCollected   decimal.Decimal
	TotalOutstanding decimal.Decimal
	OverdueAmount    decimal.Decimal
	PendingReadings  int64
	OpenComplaints   int64
	UrgentComplaints int64
}

// PaymentFact is one non-aggregated payment row joined with its bill and customer
type PaymentFact struct {
	PaymentID       uuid.UUID
	BillID          uuid.UUID
	BillNumber      string
	CustomerID      uuid.UUID
	CustomerName    string
	UtilityType     string
	Amount          decimal.Decimal
	Method          string
	Status          string
	ReferenceNumber string
	PaymentDate     time.Time
}

// BillFact is one non-aggregated bill row
type BillFact struct {
	BillID        uuid.UUID
	BillingPeriod string
	UtilityType   string
	Status        string
	Consumption   decimal.Decimal
	TotalAmount   decimal.Decimal
	PaidAmount    decimal.Decimal
}

// ReadingFact is one reading with the utility of its meter
type ReadingFact struct {
	ReadingDate time.Time
	UtilityType string
	ReadingType string
	IsProcessed bool
	Consumption decimal.Decimal
}

// MeterCount counts meters of one utility in one status
type MeterCount struct {
	UtilityType string
	Status      string
	Count       int64
}

// OpenBill is an unpaid, partially paid or overdue bill with its customer
type OpenBill struct {
	BillID            uuid.UUID
	BillNumber        string
	CustomerID        uuid.UUID
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     string
	UtilityType       string
	BillingPeriod     string
	DueDate           time.Time
	TotalAmount       decimal.Decimal
	OutstandingAmount decimal.Decimal
	Status            string
}

// ActivityKind names the source of an activity item
type ActivityKind string

const (
	ActivityBill      ActivityKind = "bill"
	ActivityPayment   ActivityKind = "payment"
	ActivityReading   ActivityKind = "reading"
	ActivityComplaint ActivityKind = "complaint"
)

// Activity is one entry of the recent activity feed
type Activity struct {
	Kind        ActivityKind
	EntityID    uuid.UUID
	Reference   string
	Description string
	Amount      *decimal.Decimal
	OccurredAt  time.Time
}

// UtilityReportRepository provides the read-only queries behind dashboards and reports
type UtilityReportRepository interface {
	// Overview returns dashboard counters as of now
	Overview(ctx context.Context, now time.Time) (*Overview, error)

	// PaymentFacts returns non-refunded payments dated within [from, to)
	PaymentFacts(ctx context.Context, from, to time.Time) ([]PaymentFact, error)

	// BillFacts returns non-cancelled bills whose billing period is within [fromPeriod, toPeriod]
	BillFacts(ctx context.Context, fromPeriod, toPeriod string) ([]BillFact, error)

	// ReadingFacts returns readings dated within [from, to)
	ReadingFacts(ctx context.Context, from, to time.Time) ([]ReadingFact, error)

	// MeterCounts counts meters grouped by utility and status
	MeterCounts(ctx context.Context) ([]MeterCount, error)

	// OpenBills returns bills with an outstanding balance, oldest due first.
	// A non-zero dueBefore restricts the result to bills due before it.
	OpenBills(ctx context.Context, dueBefore time.Time, limit int) ([]OpenBill, error)

	// RecentActivity returns up to limit of the newest items of each kind
	RecentActivity(ctx context.Context, limit int) ([]Activity, error)
}
