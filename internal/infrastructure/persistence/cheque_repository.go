package persistence

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChequeRepository implements ChequeRepository using GORM
type GormChequeRepository struct {
	db *gorm.DB
}

// NewGormChequeRepository creates a new GormChequeRepository
func NewGormChequeRepository(db *gorm.DB) *GormChequeRepository {
	return &GormChequeRepository{db: db}
}

// FindByID finds a cheque by its ID
func (r *GormChequeRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.Cheque, error) {
	var m models.ChequeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("find cheque", err)
	}
	return m.ToDomain(), nil
}

// FindByNumber finds a cheque by its cheque number
func (r *GormChequeRepository) FindByNumber(ctx context.Context, chequeNumber string) (*settlement.Cheque, error) {
	var m models.ChequeModel
	if err := r.db.WithContext(ctx).Where("cheque_number = ?", chequeNumber).First(&m).Error; err != nil {
		return nil, translate("find cheque by number", err)
	}
	return m.ToDomain(), nil
}

// FindByDistribution lists the cheques of a distribution in number order
func (r *GormChequeRepository) FindByDistribution(ctx context.Context, distributionID uuid.UUID) ([]settlement.Cheque, error) {
	var rows []models.ChequeModel
	if err := r.db.WithContext(ctx).
		Where("distribution_id = ?", distributionID).
		Order("cheque_number ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find distribution cheques", err)
	}
	return chequesToDomain(rows), nil
}

// FindAll lists cheques with filtering and pagination
func (r *GormChequeRepository) FindAll(ctx context.Context, filter settlement.ChequeFilter) ([]settlement.Cheque, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ChequeModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.GrowerID != nil {
		query = query.Where("grower_id = ?", *filter.GrowerID)
	}
	if filter.DistributionID != nil {
		query = query.Where("distribution_id = ?", *filter.DistributionID)
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		query = query.Where("cheque_number LIKE ? OR grower_number LIKE ? OR grower_name LIKE ?", p, p, p)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count cheques", err)
	}

	var rows []models.ChequeModel
	if err := query.
		Order(orderClause(filter.OrderBy, filter.OrderDir, ChequeSortFields, "cheque_number")).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, translate("list cheques", err)
	}
	return chequesToDomain(rows), total, nil
}

// Create inserts a new cheque
func (r *GormChequeRepository) Create(ctx context.Context, cheque *settlement.Cheque) error {
	if err := r.db.WithContext(ctx).Create(models.ChequeModelFromDomain(cheque)).Error; err != nil {
		return translate("create cheque", err)
	}
	return nil
}

// SaveWithLock updates a cheque under a version check
func (r *GormChequeRepository) SaveWithLock(ctx context.Context, cheque *settlement.Cheque) error {
	m := models.ChequeModelFromDomain(cheque)
	m.Version = cheque.Version + 1
	if err := updateVersioned(r.db.WithContext(ctx), m, cheque.ID, cheque.Version); err != nil {
		return translate("save cheque", err)
	}
	cheque.Version = m.Version
	cheque.UpdatedAt = m.UpdatedAt
	return nil
}

func chequesToDomain(rows []models.ChequeModel) []settlement.Cheque {
	out := make([]settlement.Cheque, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ settlement.ChequeRepository = (*GormChequeRepository)(nil)
