package models

import (
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel extends BaseModel with the optimistic lock version.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Version = a.Version
}

// aggregateRoot rebuilds the domain aggregate header
func (m *AggregateModel) aggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.RestoreBaseEntity(m.ID, m.CreatedAt, m.UpdatedAt),
		Version:    m.Version,
	}
}

// All returns every settlement model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&PaymentBatchModel{},
		&ReceiptPaymentAllocationModel{},
		&AllocationReversalModel{},
		&AdvanceChequeModel{},
		&PaymentDistributionModel{},
		&PaymentDistributionBatchModel{},
		&PaymentDistributionItemModel{},
		&AdvanceDeductionModel{},
		&ChequeModel{},
		&ElectronicPaymentModel{},
		&SequenceModel{},
	}
}
