package persistence

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAllocationRepository implements AllocationRepository using GORM
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// FindByBatch returns the allocation ledger of one batch
func (r *GormAllocationRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) ([]settlement.ReceiptPaymentAllocation, error) {
	var rows []models.ReceiptPaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Where("payment_batch_id = ?", batchID).
		Order("receipt_number ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find allocations", err)
	}
	return allocationsToDomain(rows), nil
}

// FindLiveByReceipts returns Draft or Posted allocations of the payment type
// that claim any of the receipts
func (r *GormAllocationRepository) FindLiveByReceipts(ctx context.Context, paymentTypeID int, receiptIDs []uuid.UUID) ([]settlement.ReceiptPaymentAllocation, error) {
	if len(receiptIDs) == 0 {
		return nil, nil
	}
	var rows []models.ReceiptPaymentAllocationModel
	if err := r.db.WithContext(ctx).
		Joins("JOIN payment_batches ON payment_batches.id = receipt_payment_allocations.payment_batch_id").
		Where("payment_batches.payment_type_id = ?", paymentTypeID).
		Where("receipt_payment_allocations.receipt_id IN ?", receiptIDs).
		Where("receipt_payment_allocations.status IN ?", []string{
			string(settlement.AllocationStatusDraft),
			string(settlement.AllocationStatusPosted),
		}).
		Find(&rows).Error; err != nil {
		return nil, translate("find live allocations", err)
	}
	return allocationsToDomain(rows), nil
}

// SaveReversals appends compensating rows to the ledger
func (r *GormAllocationRepository) SaveReversals(ctx context.Context, reversals []settlement.AllocationReversal) error {
	if len(reversals) == 0 {
		return nil
	}
	rows := make([]models.AllocationReversalModel, len(reversals))
	for i := range reversals {
		rows[i] = *models.AllocationReversalModelFromDomain(&reversals[i])
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, 200).Error; err != nil {
		return translate("save reversals", err)
	}
	return nil
}

// FindReversalsByBatch returns the reversals recorded against a batch, oldest first
func (r *GormAllocationRepository) FindReversalsByBatch(ctx context.Context, batchID uuid.UUID) ([]settlement.AllocationReversal, error) {
	var rows []models.AllocationReversalModel
	if err := r.db.WithContext(ctx).
		Where("payment_batch_id = ?", batchID).
		Order("reversed_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, translate("find reversals", err)
	}
	out := make([]settlement.AllocationReversal, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func allocationsToDomain(rows []models.ReceiptPaymentAllocationModel) []settlement.ReceiptPaymentAllocation {
	out := make([]settlement.ReceiptPaymentAllocation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ settlement.AllocationRepository = (*GormAllocationRepository)(nil)
