package persistence

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/complaint"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormUtilityReportRepository implements UtilityReportRepository using GORM.
// Queries return row-level facts; month bucketing happens in the report service
// so the SQL stays portable between PostgreSQL and SQLite.
type GormUtilityReportRepository struct {
	db *gorm.DB
}

// NewGormUtilityReportRepository creates a new GormUtilityReportRepository
func NewGormUtilityReportRepository(db *gorm.DB) *GormUtilityReportRepository {
	return &GormUtilityReportRepository{db: db}
}

// Overview returns the dashboard counters
func (r *GormUtilityReportRepository) Overview(ctx context.Context, now time.Time) (*report.Overview, error) {
	db := r.db.WithContext(ctx)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := &report.Overview{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&out.TotalCustomers, db.Table("customers")},
		{&out.ActiveCustomers, db.Table("customers").Where("status = ?", customer.CustomerStatusActive)},
		{&out.ActiveMeters, db.Table("meters").Where("status = ?", metering.MeterStatusActive)},
		{&out.TotalBills, db.Table("bills").Where("status <> ?", billing.BillStatusCancelled)},
		{&out.OpenBills, db.Table("bills").Where("status IN ?", billing.OpenBillStatuses)},
		{&out.OverdueBills, db.Table("bills").
			Where("status IN ?", billing.OpenBillStatuses).
			Where("status = ? OR due_date < ?", billing.BillStatusOverdue, today)},
		{&out.PendingReadings, db.Table("meter_readings").Where("is_processed = ?", false)},
		{&out.OpenComplaints, db.Table("complaints").
			Where("status IN ?", []complaint.Status{complaint.StatusOpen, complaint.StatusInProgress})},
		{&out.UrgentComplaints, db.Table("complaints").
			Where("status IN ?", []complaint.Status{complaint.StatusOpen, complaint.StatusInProgress}).
			Where("priority = ?", complaint.PriorityUrgent)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	var amounts struct {
		TotalBilled    decimal.Decimal
		TotalCollected decimal.Decimal
	}
	if err := db.Table("bills").
		Select("COALESCE(SUM(total_amount), 0) AS total_billed, COALESCE(SUM(paid_amount), 0) AS total_collected").
		Where("status <> ?", billing.BillStatusCancelled).
		Scan(&amounts).Error; err != nil {
		return nil, err
	}

	var outstanding struct {
		TotalOutstanding decimal.Decimal
		OverdueAmount    decimal.Decimal
	}
	if err := db.Table("bills").
		Select(`COALESCE(SUM(outstanding_amount), 0) AS total_outstanding,
			COALESCE(SUM(CASE WHEN status = ? OR due_date < ? THEN outstanding_amount ELSE 0 END), 0) AS overdue_amount`,
			billing.BillStatusOverdue, today).
		Where("status IN ?", billing.OpenBillStatuses).
		Scan(&outstanding).Error; err != nil {
		return nil, err
	}

	out.TotalBilled = amounts.TotalBilled
	out.TotalCollected = amounts.TotalCollected
	out.TotalOutstanding = outstanding.TotalOutstanding
	out.OverdueAmount = outstanding.OverdueAmount
	return out, nil
}

// PaymentFacts returns non-refunded payments dated within [from, to)
func (r *GormUtilityReportRepository) PaymentFacts(ctx context.Context, from, to time.Time) ([]report.PaymentFact, error) {
	var facts []report.PaymentFact
	err := r.db.WithContext(ctx).Table("payments p").
		Select(`p.id AS payment_id, p.bill_id, b.bill_number, p.customer_id, c.name AS customer_name,
			b.utility_type, p.amount, p.payment_method AS method, p.status,
			p.reference_number, p.payment_date`).
		Joins("JOIN bills b ON b.id = p.bill_id").
		Joins("LEFT JOIN customers c ON c.id = p.customer_id").
		Where("p.status <> ?", billing.PaymentStatusRefunded).
		Where("p.payment_date >= ? AND p.payment_date < ?", from, to).
		Order("p.payment_date DESC").
		Scan(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// BillFacts returns non-cancelled bills of the billing periods [fromPeriod, toPeriod]
func (r *GormUtilityReportRepository) BillFacts(ctx context.Context, fromPeriod, toPeriod string) ([]report.BillFact, error) {
	var facts []report.BillFact
	err := r.db.WithContext(ctx).Table("bills").
		Select("id AS bill_id, billing_period, utility_type, status, consumption, total_amount, paid_amount").
		Where("status <> ?", billing.BillStatusCancelled).
		Where("billing_period >= ? AND billing_period <= ?", fromPeriod, toPeriod).
		Order("billing_period ASC").
		Scan(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// ReadingFacts returns readings dated within [from, to)
func (r *GormUtilityReportRepository) ReadingFacts(ctx context.Context, from, to time.Time) ([]report.ReadingFact, error) {
	var facts []report.ReadingFact
	err := r.db.WithContext(ctx).Table("meter_readings mr").
		Select("mr.reading_date, m.utility_type, mr.reading_type, mr.is_processed, mr.consumption").
		Joins("JOIN meters m ON m.id = mr.meter_id").
		Where("mr.reading_date >= ? AND mr.reading_date < ?", from, to).
		Order("mr.reading_date ASC").
		Scan(&facts).Error
	if err != nil {
		return nil, err
	}
	return facts, nil
}

// MeterCounts counts meters per utility and status
func (r *GormUtilityReportRepository) MeterCounts(ctx context.Context) ([]report.MeterCount, error) {
	var counts []report.MeterCount
	err := r.db.WithContext(ctx).Table("meters").
		Select("utility_type, status, COUNT(*) AS count").
		Group("utility_type, status").
		Order("utility_type, status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// OpenBills returns bills with an outstanding balance, oldest due date first
func (r *GormUtilityReportRepository) OpenBills(ctx context.Context, dueBefore time.Time, limit int) ([]report.OpenBill, error) {
	query := r.db.WithContext(ctx).Table("bills b").
		Select(`b.id AS bill_id, b.bill_number, b.customer_id, c.name AS customer_name,
			c.phone AS customer_phone, c.email AS customer_email, b.utility_type, b.billing_period,
			b.due_date, b.total_amount, b.outstanding_amount, b.status`).
		Joins("LEFT JOIN customers c ON c.id = b.customer_id").
		Where("b.status IN ?", billing.OpenBillStatuses).
		Where("b.outstanding_amount > 0")
	if !dueBefore.IsZero() {
		query = query.Where("b.due_date < ?", dueBefore)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var bills []report.OpenBill
	if err := query.Order("b.due_date ASC").Scan(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

// RecentActivity merges the newest bills, payments, readings and complaints
func (r *GormUtilityReportRepository) RecentActivity(ctx context.Context, limit int) ([]report.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	db := r.db.WithContext(ctx)
	var activities []report.Activity

	var bills []struct {
		ID          uuid.UUID
		BillNumber  string
		TotalAmount decimal.Decimal
		CreatedAt   time.Time
	}
	if err := db.Table("bills").Select("id, bill_number, total_amount, created_at").
		Order("created_at DESC").Limit(limit).Scan(&bills).Error; err != nil {
		return nil, err
	}
	for _, b := range bills {
		amount := b.TotalAmount
		activities = append(activities, report.Activity{
			Kind:        report.ActivityBill,
			EntityID:    b.ID,
			Reference:   b.BillNumber,
			Description: fmt.Sprintf("Bill %s generated", b.BillNumber),
			Amount:      &amount,
			OccurredAt:  b.CreatedAt,
		})
	}

	var payments []struct {
		ID         uuid.UUID
		BillNumber string
		Amount     decimal.Decimal
		Method     string
		CreatedAt  time.Time
	}
	if err := db.Table("payments p").
		Select("p.id, b.bill_number, p.amount, p.payment_method AS method, p.created_at").
		Joins("JOIN bills b ON b.id = p.bill_id").
		Order("p.created_at DESC").Limit(limit).Scan(&payments).Error; err != nil {
		return nil, err
	}
	for _, p := range payments {
		amount := p.Amount
		activities = append(activities, report.Activity{
			Kind:        report.ActivityPayment,
			EntityID:    p.ID,
			Reference:   p.BillNumber,
			Description: fmt.Sprintf("%s payment received for %s", p.Method, p.BillNumber),
			Amount:      &amount,
			OccurredAt:  p.CreatedAt,
		})
	}

	var readings []struct {
		ID          uuid.UUID
		MeterNumber string
		Consumption decimal.Decimal
		CreatedAt   time.Time
	}
	if err := db.Table("meter_readings mr").
		Select("mr.id, m.meter_number, mr.consumption, mr.created_at").
		Joins("JOIN meters m ON m.id = mr.meter_id").
		Order("mr.created_at DESC").Limit(limit).Scan(&readings).Error; err != nil {
		return nil, err
	}
	for _, rd := range readings {
		activities = append(activities, report.Activity{
			Kind:        report.ActivityReading,
			EntityID:    rd.ID,
			Reference:   rd.MeterNumber,
			Description: fmt.Sprintf("Reading of %s recorded for meter %s", rd.Consumption.String(), rd.MeterNumber),
			OccurredAt:  rd.CreatedAt,
		})
	}

	var complaints []struct {
		ID              uuid.UUID
		ComplaintNumber string
		Subject         string
		CreatedAt       time.Time
	}
	if err := db.Table("complaints").Select("id, complaint_number, subject, created_at").
		Order("created_at DESC").Limit(limit).Scan(&complaints).Error; err != nil {
		return nil, err
	}
	for _, c := range complaints {
		activities = append(activities, report.Activity{
			Kind:        report.ActivityComplaint,
			EntityID:    c.ID,
			Reference:   c.ComplaintNumber,
			Description: c.Subject,
			OccurredAt:  c.CreatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].OccurredAt.After(activities[j].OccurredAt)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

var _ report.UtilityReportRepository = (*GormUtilityReportRepository)(nil)
