package persistence

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentBatchRepository implements PaymentBatchRepository using GORM
type GormPaymentBatchRepository struct {
	db *gorm.DB
}

// NewGormPaymentBatchRepository creates a new GormPaymentBatchRepository
func NewGormPaymentBatchRepository(db *gorm.DB) *GormPaymentBatchRepository {
	return &GormPaymentBatchRepository{db: db}
}

func preloadAllocations(db *gorm.DB) *gorm.DB {
	return db.Preload("Allocations", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("receipt_number ASC, id ASC")
	})
}

// FindByID loads a batch and its allocations
func (r *GormPaymentBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.PaymentBatch, error) {
	var m models.PaymentBatchModel
	if err := preloadAllocations(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("find batch", err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads several batches in the order the ids were given
func (r *GormPaymentBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]settlement.PaymentBatch, error) {
	return r.findByIDs(r.db.WithContext(ctx), ids)
}

// FindByIDsForUpdate row-locks the headers on postgres so a distribution
// sees a stable set. Only meaningful inside a transaction.
func (r *GormPaymentBatchRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]settlement.PaymentBatch, error) {
	return r.findByIDs(forUpdate(r.db.WithContext(ctx)), ids)
}

func (r *GormPaymentBatchRepository) findByIDs(db *gorm.DB, ids []uuid.UUID) ([]settlement.PaymentBatch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.PaymentBatchModel
	if err := preloadAllocations(db).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, translate("find batches", err)
	}
	if err := missingIDs(ids, len(rows)); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.PaymentBatchModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	out := make([]settlement.PaymentBatch, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id].ToDomain())
	}
	return out, nil
}

// FindByNumber finds a batch by its batch number
func (r *GormPaymentBatchRepository) FindByNumber(ctx context.Context, batchNumber string) (*settlement.PaymentBatch, error) {
	var m models.PaymentBatchModel
	if err := preloadAllocations(r.db.WithContext(ctx)).
		Where("batch_number = ?", batchNumber).
		First(&m).Error; err != nil {
		return nil, translate("find batch by number", err)
	}
	return m.ToDomain(), nil
}

// FindAll lists batch headers with filtering and pagination
func (r *GormPaymentBatchRepository) FindAll(ctx context.Context, filter settlement.BatchFilter) ([]settlement.PaymentBatch, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentBatchModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PaymentTypeID != 0 {
		query = query.Where("payment_type_id = ?", filter.PaymentTypeID)
	}
	if filter.CropYear != 0 {
		query = query.Where("crop_year = ?", filter.CropYear)
	}
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("batch_number LIKE ? OR notes LIKE ?", p, p)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count batches", err)
	}

	var rows []models.PaymentBatchModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, BatchSortFields, "batch_number")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, translate("list batches", err)
	}

	out := make([]settlement.PaymentBatch, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// FindDistributable lists posted or finalized batches that no active distribution pays
func (r *GormPaymentBatchRepository) FindDistributable(ctx context.Context) ([]settlement.PaymentBatch, error) {
	var rows []models.PaymentBatchModel
	if err := preloadAllocations(r.db.WithContext(ctx)).
		Where("status IN ?", []string{string(settlement.BatchStatusPosted), string(settlement.BatchStatusFinalized)}).
		Where("is_deleted = ? AND active_distribution_id IS NULL", false).
		Order("batch_number ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find distributable batches", err)
	}
	out := make([]settlement.PaymentBatch, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// ExistsByNumber checks if a batch number is taken
func (r *GormPaymentBatchRepository) ExistsByNumber(ctx context.Context, batchNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentBatchModel{}).
		Where("batch_number = ?", batchNumber).
		Count(&count).Error; err != nil {
		return false, translate("check batch number", err)
	}
	return count > 0, nil
}

// Create inserts a batch with its allocations
func (r *GormPaymentBatchRepository) Create(ctx context.Context, batch *settlement.PaymentBatch) error {
	m := models.PaymentBatchModelFromDomain(batch)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translate("create batch", err)
	}
	return nil
}

// SaveWithLock updates the header under a version check, then writes every allocation
func (r *GormPaymentBatchRepository) SaveWithLock(ctx context.Context, batch *settlement.PaymentBatch) error {
	db := r.db.WithContext(ctx)
	m := models.PaymentBatchModelFromDomain(batch)
	m.Version = batch.Version + 1
	if err := updateVersioned(db, m, batch.ID, batch.Version); err != nil {
		return translate("save batch", err)
	}
	for i := range m.Allocations {
		if err := db.Save(&m.Allocations[i]).Error; err != nil {
			return translate("save allocation", err)
		}
	}
	batch.Version = m.Version
	batch.UpdatedAt = m.UpdatedAt
	return nil
}

var _ settlement.PaymentBatchRepository = (*GormPaymentBatchRepository)(nil)
