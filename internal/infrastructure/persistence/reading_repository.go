package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormReadingRepository implements ReadingRepository using GORM
type GormReadingRepository struct {
	db *gorm.DB
}

// NewGormReadingRepository creates a new GormReadingRepository
func NewGormReadingRepository(db *gorm.DB) *GormReadingRepository {
	return &GormReadingRepository{db: db}
}

// FindByID finds a reading by its ID
func (r *GormReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*metering.MeterReading, error) {
	var model models.MeterReadingModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds readings matching the filter
func (r *GormReadingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]metering.MeterReading, error) {
	var rows []models.MeterReadingModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeterReadingModel{}), filter)
	query = applyOrderAndPage(query, filter, ReadingSortFields, "reading_date")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReadings(rows), nil
}

// Count counts readings matching the filter
func (r *GormReadingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.MeterReadingModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindLatestForMeter returns the newest reading of the meter
func (r *GormReadingRepository) FindLatestForMeter(ctx context.Context, meterID uuid.UUID) (*metering.MeterReading, error) {
	var model models.MeterReadingModel
	if err := r.db.WithContext(ctx).
		Where("meter_id = ?", meterID).
		Order("reading_date DESC, created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindUnprocessed returns readings not yet billed, oldest first
func (r *GormReadingRepository) FindUnprocessed(ctx context.Context, filter shared.Filter) ([]metering.MeterReading, error) {
	var rows []models.MeterReadingModel
	query := r.db.WithContext(ctx).Where("is_processed = ?", false).Order("reading_date ASC")
	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize).Offset(filter.Offset())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReadings(rows), nil
}

// CountUnprocessed counts readings not yet billed
func (r *GormReadingRepository) CountUnprocessed(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.MeterReadingModel{}).
		Where("is_processed = ?", false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a reading
func (r *GormReadingRepository) Save(ctx context.Context, reading *metering.MeterReading) error {
	return r.db.WithContext(ctx).Save(models.MeterReadingModelFromDomain(reading)).Error
}

// Update writes a corrected reading only while it is unbilled and still at version reading.Version-1
func (r *GormReadingRepository) Update(ctx context.Context, reading *metering.MeterReading) error {
	model := models.MeterReadingModelFromDomain(reading)
	result := r.db.WithContext(ctx).
		Model(&models.MeterReadingModel{}).
		Where("id = ? AND version = ? AND is_processed = ?", reading.ID, reading.Version-1, false).
		Select("*").Omit("id", "created_at", "is_processed").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		stored, err := r.FindByID(ctx, reading.ID)
		if err != nil {
			return err
		}
		if stored.IsProcessed {
			return shared.ErrInvalidState.WithMessage("Reading %s has been billed and cannot be changed", reading.ID)
		}
		return shared.ErrConcurrencyConflict.WithMessage("reading %s was modified by another transaction", reading.ID)
	}
	return nil
}

// Delete removes an unprocessed reading. Processed readings are left untouched.
func (r *GormReadingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_processed = ?", id, false).
		Delete(&models.MeterReadingModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return shared.ErrInvalidState.WithMessage("reading has already been billed and cannot be deleted")
	}
	return nil
}

// MarkProcessed flips is_processed from false to true in a single conditional update.
// Of any number of concurrent callers exactly one succeeds.
func (r *GormReadingRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.MeterReadingModel{}).
		Where("id = ? AND is_processed = ?", id, false).
		Updates(map[string]any{
			"is_processed": true,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return shared.ErrAlreadyBilled
	}
	return nil
}

func (r *GormReadingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for _, key := range []string{"meter_id", "reading_type"} {
		if v, ok := filter.Filters[key]; ok && v != "" {
			query = query.Where(key+" = ?", v)
		}
	}
	if v, ok := filter.Filters["is_processed"].(bool); ok {
		query = query.Where("is_processed = ?", v)
	}
	if v, ok := filter.Filters["from"].(time.Time); ok && !v.IsZero() {
		query = query.Where("reading_date >= ?", v)
	}
	if v, ok := filter.Filters["to"].(time.Time); ok && !v.IsZero() {
		query = query.Where("reading_date <= ?", v)
	}
	return query
}

func toReadings(rows []models.MeterReadingModel) []metering.MeterReading {
	readings := make([]metering.MeterReading, len(rows))
	for i := range rows {
		readings[i] = *rows[i].ToDomain()
	}
	return readings
}

var _ metering.ReadingRepository = (*GormReadingRepository)(nil)
