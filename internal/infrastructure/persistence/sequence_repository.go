package persistence

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository hands out document numbers from the
// document_sequences table. Called inside a transaction, the UPDATE holds
// the row lock until commit, so numbers are gap-free.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next returns the next value of the named sequence. The first call returns start.
func (r *GormSequenceRepository) Next(ctx context.Context, name string, start int64) (int64, error) {
	db := r.db.WithContext(ctx)

	seed := models.SequenceModel{Name: name, Value: start - 1}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, translate("seed sequence", err)
	}
	if err := db.Model(&models.SequenceModel{}).
		Where("name = ?", name).
		UpdateColumn("value", gorm.Expr("value + ?", 1)).Error; err != nil {
		return 0, translate("advance sequence", err)
	}

	var current models.SequenceModel
	if err := db.Where("name = ?", name).First(&current).Error; err != nil {
		return 0, translate("read sequence", err)
	}
	return current.Value, nil
}

var _ settlement.SequenceRepository = (*GormSequenceRepository)(nil)
