package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/complaint"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormComplaintRepository implements ComplaintRepository using GORM
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewGormComplaintRepository creates a new GormComplaintRepository
func NewGormComplaintRepository(db *gorm.DB) *GormComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// FindByID finds a complaint by its ID
func (r *GormComplaintRepository) FindByID(ctx context.Context, id uuid.UUID) (*complaint.Complaint, error) {
	var model models.ComplaintModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds complaints matching the filter
func (r *GormComplaintRepository) FindAll(ctx context.Context, filter shared.Filter) ([]complaint.Complaint, error) {
	var rows []models.ComplaintModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ComplaintModel{}), filter)
	query = applyOrderAndPage(query, filter, ComplaintSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	complaints := make([]complaint.Complaint, len(rows))
	for i := range rows {
		complaints[i] = *rows[i].ToDomain()
	}
	return complaints, nil
}

// Count counts complaints matching the filter
func (r *GormComplaintRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ComplaintModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a complaint
func (r *GormComplaintRepository) Save(ctx context.Context, c *complaint.Complaint) error {
	return r.db.WithContext(ctx).Save(models.ComplaintModelFromDomain(c)).Error
}

// Delete deletes a complaint
func (r *GormComplaintRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ComplaintModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormComplaintRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(complaint_number) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(description) LIKE ?",
			like, like, like,
		)
	}
	if v, ok := filter.Filters["type"]; ok && v != "" {
		query = query.Where("complaint_type = ?", v)
	}
	for _, key := range []string{"status", "priority", "customer_id"} {
		if v, ok := filter.Filters[key]; ok && v != "" {
			query = query.Where(key+" = ?", v)
		}
	}
	return query
}

var _ complaint.ComplaintRepository = (*GormComplaintRepository)(nil)
