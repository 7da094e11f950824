package persistence

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/utilitrack/backend/internal/domain/billing"
	"github.com/utilitrack/backend/internal/domain/customer"
	"github.com/utilitrack/backend/internal/domain/metering"
	"github.com/utilitrack/backend/internal/domain/shared"
	"github.com/utilitrack/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTariffRepository implements TariffRepository using GORM
type GormTariffRepository struct {
	db *gorm.DB
}

// NewGormTariffRepository creates a new GormTariffRepository
func NewGormTariffRepository(db *gorm.DB) *GormTariffRepository {
	return &GormTariffRepository{db: db}
}

// FindByID finds a tariff by its ID
func (r *GormTariffRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Tariff, error) {
	var model models.TariffModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds tariffs matching the filter
func (r *GormTariffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Tariff, error) {
	var rows []models.TariffModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TariffModel{}), filter)
	query = applyOrderAndPage(query, filter, TariffSortFields, "effective_from")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTariffs(rows), nil
}

// Count counts tariffs matching the filter
func (r *GormTariffRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TariffModel{}), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindEffective loads the candidate tariffs of the utility and picks the one in force at asOf.
// Candidates are few per utility, so the effective-period check runs on the domain type.
func (r *GormTariffRepository) FindEffective(ctx context.Context, utilityType metering.UtilityType, customerType customer.CustomerType, asOf time.Time) (*billing.Tariff, error) {
	var rows []models.TariffModel
	if err := r.db.WithContext(ctx).
		Where("utility_type = ?", utilityType).
		Where("customer_type = ? OR customer_type IS NULL", customerType).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	candidates := make([]*billing.Tariff, 0, len(rows))
	for i := range rows {
		t := rows[i].ToDomain()
		if t.IsEffectiveAt(asOf) && t.AppliesTo(customerType) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil, shared.ErrTariffNotFound.WithMessage(
			"no tariff for %s / %s effective on %s", utilityType, customerType, asOf.Format("2006-01-02"))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if (a.CustomerType != nil) != (b.CustomerType != nil) {
			return a.CustomerType != nil
		}
		return a.EffectiveFrom.After(b.EffectiveFrom)
	})
	return candidates[0], nil
}

// Create inserts a tariff unless its period overlaps another tariff of the same scope.
// Creates for one scope are serialized: on PostgreSQL by a transaction-scoped advisory
// lock backed by the excl_tariffs_scope_window constraint, on SQLite by its single writer.
func (r *GormTariffRepository) Create(ctx context.Context, tariff *billing.Tariff) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == DriverPostgres {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", tariffScopeKey(tariff)).Error; err != nil {
				return err
			}
		}

		existing, err := findTariffsByScope(tx, tariff.UtilityType, tariff.CustomerType)
		if err != nil {
			return err
		}
		for i := range existing {
			if tariff.Overlaps(&existing[i]) {
				return shared.ErrConflict.WithMessage(
					"Tariff overlaps %s effective from %s", existing[i].Name, existing[i].EffectiveFrom.Format("2006-01-02"))
			}
		}
		return tx.Create(models.TariffModelFromDomain(tariff)).Error
	})
	if isExclusionViolation(err) {
		return shared.ErrConflict.WithMessage("Tariff overlaps another %s tariff of the same customer type", tariff.UtilityType)
	}
	return err
}

// SaveWithLock updates a tariff if its stored version is tariff.Version-1
func (r *GormTariffRepository) SaveWithLock(ctx context.Context, tariff *billing.Tariff) error {
	result := r.db.WithContext(ctx).
		Model(&models.TariffModel{}).
		Where("id = ? AND version = ?", tariff.ID, tariff.Version-1).
		Select("*").Omit("id", "created_at").
		Updates(models.TariffModelFromDomain(tariff))
	if isExclusionViolation(result.Error) {
		return shared.ErrConflict.WithMessage("Tariff overlaps another %s tariff of the same customer type", tariff.UtilityType)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("tariff %s was modified by another transaction", tariff.Name)
	}
	return nil
}

func findTariffsByScope(db *gorm.DB, utilityType metering.UtilityType, customerType *customer.CustomerType) ([]billing.Tariff, error) {
	query := db.Where("utility_type = ?", utilityType)
	if customerType == nil {
		query = query.Where("customer_type IS NULL")
	} else {
		query = query.Where("customer_type = ?", *customerType)
	}

	var rows []models.TariffModel
	if err := query.Order("effective_from ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toTariffs(rows), nil
}

func tariffScopeKey(t *billing.Tariff) string {
	key := "tariffs:" + string(t.UtilityType) + ":"
	if t.CustomerType != nil {
		key += string(*t.CustomerType)
	}
	return key
}

func (r *GormTariffRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters["utility_type"]; ok && v != "" {
		query = query.Where("utility_type = ?", v)
	}
	if v, ok := filter.Filters["customer_type"]; ok && v != "" {
		query = query.Where("customer_type = ?", v)
	}
	if v, ok := filter.Filters["active_at"].(time.Time); ok && !v.IsZero() {
		query = query.Where("effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)", v, v)
	}
	return query
}

func toTariffs(rows []models.TariffModel) []billing.Tariff {
	tariffs := make([]billing.Tariff, len(rows))
	for i := range rows {
		tariffs[i] = *rows[i].ToDomain()
	}
	return tariffs
}

var _ billing.TariffRepository = (*GormTariffRepository)(nil)
