package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMeterRepository implements MeterRepository using GORM
type GormMeterRepository struct {
	db *gorm.DB
}

// NewGormMeterRepository creates a new GormMeterRepository
func NewGormMeterRepository(db *gorm.DB) *GormMeterRepository {
	return &GormMeterRepository{db: db}
}

// FindByID finds a meter by its ID
func (r *GormMeterRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.Meter, error) {
	var model models.MeterModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple meters by their IDs
func (r *GormMeterRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]metering.Meter, error) {
	if len(ids) == 0 {
		return []metering.Meter{}, nil
	}
	var rows []models.MeterModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMeters(rows), nil
}

// FindByNumber finds a meter by its (case-insensitive) number
func (r *GormMeterRepository) FindByNumber(ctx context.Context, meterNumber string) (*metering.Meter, error) {
	var model models.MeterModel
	if err := r.db.WithContext(ctx).
		Where("meter_number = ?", strings.ToUpper(strings.TrimSpace(meterNumber))).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks if a meter number is taken
func (r *GormMeterRepository) ExistsByNumber(ctx context.Context, meterNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MeterModel{}).
		Where("meter_number = ?", strings.ToUpper(strings.TrimSpace(meterNumber))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds meters matching the filter
func (r *GormMeterRepository) FindAll(ctx context.Context, filter shared.Filter) ([]metering.Meter, error) {
	var rows []models.MeterModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeterModel{}), filter)
	query = applyOrderAndPage(query, filter, MeterSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMeters(rows), nil
}

// Count counts meters matching the filter
func (r *GormMeterRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeterModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByCustomer lists a customer's meters, newest first
func (r *GormMeterRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]metering.Meter, error) {
	var rows []models.MeterModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toMeters(rows), nil
}

// CountByCustomer counts a customer's meters
func (r *GormMeterRepository) CountByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MeterModel{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a meter. A duplicate meter number yields shared.ErrAlreadyExists.
func (r *GormMeterRepository) Save(ctx context.Context, meter *metering.Meter) error {
	if err := r.db.WithContext(ctx).Save(models.MeterModelFromDomain(meter)).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists.WithMessage("meter number %s is already registered", meter.MeterNumber)
		}
		return err
	}
	return nil
}

func (r *GormMeterRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + strings.ToUpper(filter.Search) + "%"
		query = query.Where("meter_number LIKE ? OR UPPER(location) LIKE ?", like, like)
	}
	for _, key := range []string{"customer_id", "utility_type", "status"} {
		if v, ok := filter.Filters[key]; ok && v != "" {
			query = query.Where(key+" = ?", v)
		}
	}
	return query
}

func toMeters(rows []models.MeterModel) []metering.Meter {
	meters := make([]metering.Meter, len(rows))
	for i := range rows {
		meters[i] = *rows[i].ToDomain()
	}
	return meters
}

var _ metering.MeterRepository = (*GormMeterRepository)(nil)
