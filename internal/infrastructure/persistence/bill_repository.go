package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByReadingID finds the bill raised for a reading
func (r *GormBillRepository) FindByReadingID(ctx context.Context, readingID uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := r.db.WithContext(ctx).First(&model, "reading_id = ?", readingID).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds bills matching the filter
func (r *GormBillRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Bill, error) {
	var rows []models.BillModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter)
	query = applyOrderAndPage(query, filter, BillSortFields, "bill_date")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBills(rows), nil
}

// Count counts bills matching the filter
func (r *GormBillRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.BillModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a new bill.
// The unique index on reading_id turns a concurrent second bill into shared.ErrAlreadyBilled.
func (r *GormBillRepository) Create(ctx context.Context, bill *billing.Bill) error {
	err := r.db.WithContext(ctx).Create(models.BillModelFromDomain(bill)).Error
	switch {
	case err == nil:
		return nil
	case violates(err, "reading_id"):
		return shared.ErrAlreadyBilled.WithMessage("reading %s has already been billed", bill.ReadingID)
	case violates(err, "bill_number"):
		return shared.ErrConflict.WithMessage("bill number %s is already in use", bill.BillNumber)
	default:
		return err
	}
}

// SaveWithLock saves a bill with optimistic locking (version check).
// Returns shared.ErrConcurrencyConflict if another writer got there first.
func (r *GormBillRepository) SaveWithLock(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	result := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Where("id = ? AND version = ?", bill.ID, bill.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("bill %s was modified by another transaction", bill.BillNumber)
	}
	return nil
}

// FindPastDue returns open bills due before the given instant that are not yet flagged overdue
func (r *GormBillRepository) FindPastDue(ctx context.Context, before time.Time, limit int) ([]billing.Bill, error) {
	var rows []models.BillModel
	query := r.db.WithContext(ctx).
		Where("status IN ?", []billing.BillStatus{billing.BillStatusUnpaid, billing.BillStatusPartiallyPaid}).
		Where("due_date < ?", before).
		Order("due_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBills(rows), nil
}

// StatusTotals aggregates bill counts and amounts per status
func (r *GormBillRepository) StatusTotals(ctx context.Context) ([]billing.StatusTotal, error) {
	var totals []billing.StatusTotal
	err := r.db.WithContext(ctx).
		Model(&models.BillModel{}).
		Select(`status,
			COUNT(*) AS count,
			COALESCE(SUM(total_amount), 0) AS total_amount,
			COALESCE(SUM(paid_amount), 0) AS paid_amount,
			COALESCE(SUM(outstanding_amount), 0) AS outstanding_amount`).
		Group("status").
		Order("status").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *GormBillRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("bill_number LIKE ?", "%"+filter.Search+"%")
	}
	for _, key := range []string{"status", "customer_id", "meter_id", "utility_type", "billing_period"} {
		if v, ok := filter.Filters[key]; ok && v != "" {
			query = query.Where(key+" = ?", v)
		}
	}
	return query
}

func toBills(rows []models.BillModel) []billing.Bill {
	bills := make([]billing.Bill, len(rows))
	for i := range rows {
		bills[i] = *rows[i].ToDomain()
	}
	return bills
}

var _ billing.BillRepository = (*GormBillRepository)(nil)

// GormBillSequence allocates per-period bill numbers with a single upsert.
// The row lock taken by the upsert serializes concurrent allocations for one period.
type GormBillSequence struct {
	db *gorm.DB
}

// NewGormBillSequence creates a new GormBillSequence
func NewGormBillSequence(db *gorm.DB) *GormBillSequence {
	return &GormBillSequence{db: db}
}

// Next returns the next sequence value for the period
func (s *GormBillSequence) Next(ctx context.Context, period string) (int64, error) {
	var next int64
	err := s.db.WithContext(ctx).Raw(`
		INSERT INTO bill_sequences (period, last_value) VALUES (?, 1)
		ON CONFLICT (period) DO UPDATE SET last_value = bill_sequences.last_value + 1
		RETURNING last_value`, period).
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

var _ billing.BillSequence = (*GormBillSequence)(nil)
