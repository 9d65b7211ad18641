package persistence

import (
	"context"
	"errors"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDistributionRepository implements DistributionRepository using GORM
type GormDistributionRepository struct {
	db *gorm.DB
}

// NewGormDistributionRepository creates a new GormDistributionRepository
func NewGormDistributionRepository(db *gorm.DB) *GormDistributionRepository {
	return &GormDistributionRepository{db: db}
}

func preloadDistribution(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Batches", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("batch_number ASC, id ASC")
		}).
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sequence ASC")
		})
}

// FindByID loads a distribution with its batch links and items
func (r *GormDistributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.PaymentDistribution, error) {
	var m models.PaymentDistributionModel
	if err := preloadDistribution(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("find distribution", err)
	}
	return m.ToDomain(), nil
}

// FindAll lists distribution headers and batch links with filtering and pagination
func (r *GormDistributionRepository) FindAll(ctx context.Context, filter settlement.DistributionFilter) ([]settlement.PaymentDistribution, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentDistributionModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", string(filter.PaymentMethod))
	}
	if filter.BatchID != nil {
		query = query.Where("id IN (?)", r.db.Model(&models.PaymentDistributionBatchModel{}).
			Select("distribution_id").
			Where("payment_batch_id = ?", *filter.BatchID))
	}
	if filter.Search != "" {
		query = query.Where("distribution_number LIKE ?", likePattern(filter.Search))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count distributions", err)
	}

	var rows []models.PaymentDistributionModel
	if err := query.
		Preload("Batches").
		Order(orderClause(filter.OrderBy, filter.OrderDir, DistributionSortFields, "distribution_number")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, translate("list distributions", err)
	}

	out := make([]settlement.PaymentDistribution, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// FindActiveBatchLinks returns the active links held on any of the batches
func (r *GormDistributionRepository) FindActiveBatchLinks(ctx context.Context, batchIDs []uuid.UUID) ([]settlement.PaymentDistributionBatch, error) {
	if len(batchIDs) == 0 {
		return nil, nil
	}
	var rows []models.PaymentDistributionBatchModel
	if err := r.db.WithContext(ctx).
		Where("payment_batch_id IN ? AND active = ?", batchIDs, true).
		Find(&rows).Error; err != nil {
		return nil, translate("find active batch links", err)
	}
	out := make([]settlement.PaymentDistributionBatch, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a distribution with its links and items. A second active
// link on the same batch violates the partial unique index and is reported
// as a duplicate distribution.
func (r *GormDistributionRepository) Create(ctx context.Context, distribution *settlement.PaymentDistribution) error {
	m := models.PaymentDistributionModelFromDomain(distribution)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrDuplicateDistribution
		}
		return translate("create distribution", err)
	}
	return nil
}

// SaveWithLock updates the header under a version check, then writes links and items
func (r *GormDistributionRepository) SaveWithLock(ctx context.Context, distribution *settlement.PaymentDistribution) error {
	db := r.db.WithContext(ctx)
	m := models.PaymentDistributionModelFromDomain(distribution)
	m.Version = distribution.Version + 1
	if err := updateVersioned(db, m, distribution.ID, distribution.Version); err != nil {
		return translate("save distribution", err)
	}
	for i := range m.Batches {
		if err := db.Save(&m.Batches[i]).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return shared.ErrDuplicateDistribution
			}
			return translate("save distribution batch", err)
		}
	}
	for i := range m.Items {
		if err := db.Save(&m.Items[i]).Error; err != nil {
			return translate("save distribution item", err)
		}
	}
	distribution.Version = m.Version
	distribution.UpdatedAt = m.UpdatedAt
	return nil
}

// SaveItem updates a single item outside the header's version check
func (r *GormDistributionRepository) SaveItem(ctx context.Context, item *settlement.PaymentDistributionItem) error {
	if err := updateRow(r.db.WithContext(ctx), models.PaymentDistributionItemModelFromDomain(item)); err != nil {
		return translate("save distribution item", err)
	}
	return nil
}

var _ settlement.DistributionRepository = (*GormDistributionRepository)(nil)
