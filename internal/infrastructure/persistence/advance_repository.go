package persistence

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdvanceRepository implements AdvanceRepository using GORM
type GormAdvanceRepository struct {
	db *gorm.DB
}

// NewGormAdvanceRepository creates a new GormAdvanceRepository
func NewGormAdvanceRepository(db *gorm.DB) *GormAdvanceRepository {
	return &GormAdvanceRepository{db: db}
}

// FindByID finds an advance cheque by its ID
func (r *GormAdvanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.AdvanceCheque, error) {
	var m models.AdvanceChequeModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate("find advance", err)
	}
	return m.ToDomain(), nil
}

// FindByIDs loads several advances in the order the ids were given
func (r *GormAdvanceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]settlement.AdvanceCheque, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.AdvanceChequeModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate("find advances", err)
	}
	if err := missingIDs(ids, len(rows)); err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.AdvanceChequeModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	out := make([]settlement.AdvanceCheque, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id].ToDomain())
	}
	return out, nil
}

// FindOutstandingByGrowers returns the advances still carrying a balance,
// oldest first, row-locked on postgres
func (r *GormAdvanceRepository) FindOutstandingByGrowers(ctx context.Context, growerIDs []uuid.UUID) ([]settlement.AdvanceCheque, error) {
	if len(growerIDs) == 0 {
		return nil, nil
	}
	var rows []models.AdvanceChequeModel
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("grower_id IN ?", growerIDs).
		Where("status <> ? AND current_advance_amount > 0", string(settlement.AdvanceStatusVoided)).
		Order("advance_date ASC, cheque_number ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find outstanding advances", err)
	}
	out := advancesToDomain(rows)
	settlement.SortAdvancesOldestFirst(out)
	return out, nil
}

// FindByGrower lists every advance of a grower, oldest first
func (r *GormAdvanceRepository) FindByGrower(ctx context.Context, growerID uuid.UUID) ([]settlement.AdvanceCheque, error) {
	var rows []models.AdvanceChequeModel
	if err := r.db.WithContext(ctx).
		Where("grower_id = ?", growerID).
		Order("advance_date ASC, cheque_number ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find grower advances", err)
	}
	return advancesToDomain(rows), nil
}

// ExistsByChequeNumber checks if an advance cheque number is taken
func (r *GormAdvanceRepository) ExistsByChequeNumber(ctx context.Context, chequeNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdvanceChequeModel{}).
		Where("cheque_number = ?", chequeNumber).
		Count(&count).Error; err != nil {
		return false, translate("check advance number", err)
	}
	return count > 0, nil
}

// Create inserts a new advance
func (r *GormAdvanceRepository) Create(ctx context.Context, advance *settlement.AdvanceCheque) error {
	if err := r.db.WithContext(ctx).Create(models.AdvanceChequeModelFromDomain(advance)).Error; err != nil {
		return translate("create advance", err)
	}
	return nil
}

// SaveWithLock updates an advance under a version check
func (r *GormAdvanceRepository) SaveWithLock(ctx context.Context, advance *settlement.AdvanceCheque) error {
	m := models.AdvanceChequeModelFromDomain(advance)
	m.Version = advance.Version + 1
	if err := updateVersioned(r.db.WithContext(ctx), m, advance.ID, advance.Version); err != nil {
		return translate("save advance", err)
	}
	advance.Version = m.Version
	advance.UpdatedAt = m.UpdatedAt
	return nil
}

// SaveDeductions appends deduction audit rows
func (r *GormAdvanceRepository) SaveDeductions(ctx context.Context, deductions []settlement.AdvanceDeduction) error {
	if len(deductions) == 0 {
		return nil
	}
	rows := make([]models.AdvanceDeductionModel, len(deductions))
	for i := range deductions {
		rows[i] = *models.AdvanceDeductionModelFromDomain(&deductions[i])
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return translate("save deductions", err)
	}
	return nil
}

// UpdateDeduction overwrites an existing deduction row, used to mark it reversed
func (r *GormAdvanceRepository) UpdateDeduction(ctx context.Context, deduction *settlement.AdvanceDeduction) error {
	if err := updateRow(r.db.WithContext(ctx), models.AdvanceDeductionModelFromDomain(deduction)); err != nil {
		return translate("update deduction", err)
	}
	return nil
}

func (r *GormAdvanceRepository) findDeductions(ctx context.Context, op, column string, id uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	var rows []models.AdvanceDeductionModel
	if err := r.db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("deducted_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(op, err)
	}
	out := make([]settlement.AdvanceDeduction, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindDeductionsByAdvance lists the draws against one advance
func (r *GormAdvanceRepository) FindDeductionsByAdvance(ctx context.Context, advanceID uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	return r.findDeductions(ctx, "find deductions by advance", "advance_cheque_id", advanceID)
}

// FindDeductionsByItem lists the draws made by one distribution item
func (r *GormAdvanceRepository) FindDeductionsByItem(ctx context.Context, itemID uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	return r.findDeductions(ctx, "find deductions by item", "distribution_item_id", itemID)
}

// FindDeductionsByDistribution lists the draws made by one distribution
func (r *GormAdvanceRepository) FindDeductionsByDistribution(ctx context.Context, distributionID uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	return r.findDeductions(ctx, "find deductions by distribution", "distribution_id", distributionID)
}

func advancesToDomain(rows []models.AdvanceChequeModel) []settlement.AdvanceCheque {
	out := make([]settlement.AdvanceCheque, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ settlement.AdvanceRepository = (*GormAdvanceRepository)(nil)
