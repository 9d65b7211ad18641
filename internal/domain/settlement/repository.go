package settlement

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchFilter narrows batch listings
type BatchFilter struct {
	shared.Filter
	Status         BatchStatus
	PaymentTypeID  int
	CropYear       int
	IncludeDeleted bool
}

// PaymentBatchRepository persists PaymentBatch aggregates with their allocations
type PaymentBatchRepository interface {
	// FindByID loads the batch header and all its allocations
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentBatch, error)
	// FindByIDs loads several batches with allocations; missing ids are reported as ErrNotFound
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]PaymentBatch, error)
	// FindByIDsForUpdate is FindByIDs holding row locks until the surrounding transaction ends
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]PaymentBatch, error)
	FindByNumber(ctx context.Context, batchNumber string) (*PaymentBatch, error)
	// FindAll lists batch headers without allocations
	FindAll(ctx context.Context, filter BatchFilter) ([]PaymentBatch, int64, error)
	// FindDistributable lists posted or finalized batches that no active distribution pays
	FindDistributable(ctx context.Context) ([]PaymentBatch, error)
	ExistsByNumber(ctx context.Context, batchNumber string) (bool, error)
	// Create inserts a new batch and its allocations
	Create(ctx context.Context, batch *PaymentBatch) error
	// SaveWithLock updates the header and allocation statuses if the stored
	// version still matches, then bumps the version
	SaveWithLock(ctx context.Context, batch *PaymentBatch) error
}

// AllocationRepository reads the allocation ledger and stores compensating records
type AllocationRepository interface {
	FindByBatch(ctx context.Context, batchID uuid.UUID) ([]ReceiptPaymentAllocation, error)
	// FindLiveByReceipts returns Draft or Posted allocations that claim any of
	// the receipts for the given payment type
	FindLiveByReceipts(ctx context.Context, paymentTypeID int, receiptIDs []uuid.UUID) ([]ReceiptPaymentAllocation, error)
	SaveReversals(ctx context.Context, reversals []AllocationReversal) error
	FindReversalsByBatch(ctx context.Context, batchID uuid.UUID) ([]AllocationReversal, error)
}

// AdvanceRepository persists advance cheques and their deduction audit rows
type AdvanceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AdvanceCheque, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]AdvanceCheque, error)
	// FindOutstandingByGrowers returns advances with a positive balance, locking
	// the rows when the store supports it
	FindOutstandingByGrowers(ctx context.Context, growerIDs []uuid.UUID) ([]AdvanceCheque, error)
	FindByGrower(ctx context.Context, growerID uuid.UUID) ([]AdvanceCheque, error)
	ExistsByChequeNumber(ctx context.Context, chequeNumber string) (bool, error)
	Create(ctx context.Context, advance *AdvanceCheque) error
	SaveWithLock(ctx context.Context, advance *AdvanceCheque) error

	SaveDeductions(ctx context.Context, deductions []AdvanceDeduction) error
	UpdateDeduction(ctx context.Context, deduction *AdvanceDeduction) error
	FindDeductionsByAdvance(ctx context.Context, advanceID uuid.UUID) ([]AdvanceDeduction, error)
	FindDeductionsByItem(ctx context.Context, itemID uuid.UUID) ([]AdvanceDeduction, error)
	FindDeductionsByDistribution(ctx context.Context, distributionID uuid.UUID) ([]AdvanceDeduction, error)
}

// DistributionFilter narrows distribution listings
type DistributionFilter struct {
	shared.Filter
	Status        DistributionStatus
	PaymentMethod PaymentMethod
	BatchID       *uuid.UUID
}

// DistributionRepository persists PaymentDistribution aggregates
type DistributionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentDistribution, error)
	FindAll(ctx context.Context, filter DistributionFilter) ([]PaymentDistribution, int64, error)
	// FindActiveBatchLinks returns the active links held on any of the batches
	FindActiveBatchLinks(ctx context.Context, batchIDs []uuid.UUID) ([]PaymentDistributionBatch, error)
	Create(ctx context.Context, distribution *PaymentDistribution) error
	SaveWithLock(ctx context.Context, distribution *PaymentDistribution) error
	// SaveItem updates a single item's generation fields
	SaveItem(ctx context.Context, item *PaymentDistributionItem) error
}

// ChequeFilter narrows cheque listings
type ChequeFilter struct {
	shared.Filter
	Status         ChequeStatus
	GrowerID       *uuid.UUID
	DistributionID *uuid.UUID
}

// ChequeRepository persists cheques
type ChequeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Cheque, error)
	FindByNumber(ctx context.Context, chequeNumber string) (*Cheque, error)
	FindByDistribution(ctx context.Context, distributionID uuid.UUID) ([]Cheque, error)
	FindAll(ctx context.Context, filter ChequeFilter) ([]Cheque, int64, error)
	Create(ctx context.Context, cheque *Cheque) error
	SaveWithLock(ctx context.Context, cheque *Cheque) error
}

// ElectronicPaymentRepository persists electronic payments
type ElectronicPaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ElectronicPayment, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ElectronicPayment, error)
	FindByStatus(ctx context.Context, status ElectronicPaymentStatus) ([]ElectronicPayment, error)
	FindByDistribution(ctx context.Context, distributionID uuid.UUID) ([]ElectronicPayment, error)
	Create(ctx context.Context, payment *ElectronicPayment) error
	SaveWithLock(ctx context.Context, payment *ElectronicPayment) error
}

// Sequence names used for document numbers
const (
	SequenceBatch        = "payment_batch"
	SequenceDistribution = "payment_distribution"
	SequenceCheque       = "cheque"
	SequenceElectronic   = "electronic_payment"
)

// SequenceRepository hands out gap-free document numbers inside a transaction
type SequenceRepository interface {
	// Next returns the next value of the named sequence, starting at start
	Next(ctx context.Context, name string, start int64) (int64, error)
}
