package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentBatch is a dated grouping of grower payments settled together.
// Its allocations are only mutated through the transitions below.
type PaymentBatch struct {
	shared.BaseAggregateRoot
	BatchNumber          string
	PaymentTypeID        int
	BatchDate            time.Time
	CropYear             int
	CutoffDate           *time.Time
	Status               BatchStatus
	TotalAmount          decimal.Decimal
	TotalGrowers         int
	TotalReceipts        int
	ChequesGenerated     int
	Notes                string
	CreatedBy            string
	PostedAt             *time.Time
	PostedBy             string
	FinalizedAt          *time.Time
	FinalizedBy          string
	VoidedAt             *time.Time
	VoidedBy             string
	VoidReason           string
	RolledBack           bool
	IsDeleted            bool
	ActiveDistributionID *uuid.UUID
	Allocations          []ReceiptPaymentAllocation
}

// NewBatchParams carries the header of a new batch
type NewBatchParams struct {
	BatchNumber   string
	PaymentTypeID int
	BatchDate     time.Time
	CropYear      int
	CutoffDate    *time.Time
	Notes         string
}

// NewPaymentBatch creates a Draft batch holding one allocation per receipt candidate
func NewPaymentBatch(params NewBatchParams, receipts []ReceiptCandidate, actor string) (*PaymentBatch, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.BatchNumber) == "" {
		return nil, validationError("Batch number cannot be empty")
	}
	if len(params.BatchNumber) > 50 {
		return nil, validationError("Batch number cannot exceed 50 characters")
	}
	if params.PaymentTypeID <= 0 {
		return nil, validationError("Payment type is required")
	}
	if params.BatchDate.IsZero() {
		return nil, validationError("Batch date is required")
	}
	if params.CropYear < 1900 || params.CropYear > 9999 {
		return nil, validationError("Crop year %d is out of range", params.CropYear)
	}
	if len(receipts) == 0 {
		return nil, validationError("At least one receipt must be selected")
	}

	b := &PaymentBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       params.BatchNumber,
		PaymentTypeID:     params.PaymentTypeID,
		BatchDate:         params.BatchDate,
		CropYear:          params.CropYear,
		CutoffDate:        params.CutoffDate,
		Status:            BatchStatusDraft,
		TotalAmount:       decimal.Zero,
		Notes:             params.Notes,
		CreatedBy:         actor,
		Allocations:       make([]ReceiptPaymentAllocation, 0, len(receipts)),
	}

	seen := make(map[uuid.UUID]struct{}, len(receipts))
	for _, r := range receipts {
		if r.ReceiptID == uuid.Nil {
			return nil, validationError("Receipt ID cannot be empty")
		}
		if r.GrowerID == uuid.Nil {
			return nil, validationError("Receipt %s has no grower", r.ReceiptNumber)
		}
		if !r.Amount.IsPositive() {
			return nil, validationError("Receipt %s amount must be positive", r.ReceiptNumber)
		}
		if err := requireCents(r.Amount, "Receipt %s amount", r.ReceiptNumber); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ReceiptID]; dup {
			return nil, validationError("Receipt %s is selected more than once", r.ReceiptNumber)
		}
		seen[r.ReceiptID] = struct{}{}
		b.Allocations = append(b.Allocations, newAllocation(b.ID, r))
	}
	b.recalculateTotals()

	b.AddDomainEvent(NewPaymentBatchCreatedEvent(b))
	return b, nil
}

// recalculateTotals keeps TotalAmount equal to the sum of live allocations
func (b *PaymentBatch) recalculateTotals() {
	total := decimal.Zero
	growers := make(map[uuid.UUID]struct{})
	receipts := 0
	for _, a := range b.Allocations {
		if !a.Status.IsLive() {
			continue
		}
		total = total.Add(a.AmountPaid)
		growers[a.GrowerID] = struct{}{}
		receipts++
	}
	b.TotalAmount = total
	b.TotalGrowers = len(growers)
	b.TotalReceipts = receipts
}

// PostedTotal sums the amounts of posted allocations
func (b *PaymentBatch) PostedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range b.Allocations {
		if a.IsPosted() {
			total = total.Add(a.AmountPaid)
		}
	}
	return total
}

// PostedAllocations returns the allocations that are eligible for payment
func (b *PaymentBatch) PostedAllocations() []ReceiptPaymentAllocation {
	out := make([]ReceiptPaymentAllocation, 0, len(b.Allocations))
	for _, a := range b.Allocations {
		if a.IsPosted() {
			out = append(out, a)
		}
	}
	return out
}

// HasActiveDistribution reports whether a live distribution pays this batch
func (b *PaymentBatch) HasActiveDistribution() bool {
	return b.ActiveDistributionID != nil
}

// CanApprove checks Draft → Posted
func (b *PaymentBatch) CanApprove() Guard {
	if b.IsDeleted {
		return deny(ReasonDeleted, "Batch %s has been deleted", b.BatchNumber)
	}
	if b.Status != BatchStatusDraft {
		return deny(ReasonNotDraft, "Cannot approve batch %s in %s status", b.BatchNumber, b.Status)
	}
	return allow()
}

// CanProcessPayments checks Posted → Finalized
func (b *PaymentBatch) CanProcessPayments() Guard {
	if b.Status == BatchStatusFinalized {
		return deny(ReasonAlreadyFinalized, "Batch %s is already finalized", b.BatchNumber)
	}
	if b.IsDeleted {
		return deny(ReasonDeleted, "Batch %s has been deleted", b.BatchNumber)
	}
	if b.Status != BatchStatusPosted {
		return deny(ReasonNotPosted, "Cannot process payments for batch %s in %s status", b.BatchNumber, b.Status)
	}
	return allow()
}

// CanVoid checks Draft/Posted → Voided
func (b *PaymentBatch) CanVoid() Guard {
	switch {
	case b.Status == BatchStatusVoided:
		return deny(ReasonAlreadyVoided, "Batch %s is already voided", b.BatchNumber)
	case b.Status == BatchStatusFinalized:
		return deny(ReasonAlreadyFinalized, "Cannot void batch %s in %s status", b.BatchNumber, b.Status)
	case b.IsDeleted:
		return deny(ReasonDeleted, "Batch %s has been deleted", b.BatchNumber)
	case b.HasActiveDistribution():
		return deny(ReasonActiveDistribution, "Batch %s has an active distribution; void the distribution first", b.BatchNumber)
	}
	return allow()
}

// CanRollback has the same preconditions as CanVoid
func (b *PaymentBatch) CanRollback() Guard {
	return b.CanVoid()
}

// Approve posts every allocation and moves the batch to Posted
func (b *PaymentBatch) Approve(actor string) error {
	if err := b.CanApprove().Err(); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}

	now := time.Now()
	for i := range b.Allocations {
		b.Allocations[i].post(now)
	}
	b.Status = BatchStatusPosted
	b.PostedAt = &now
	b.PostedBy = actor
	b.Touch(now)
	b.recalculateTotals()

	b.AddDomainEvent(NewPaymentBatchApprovedEvent(b))
	return nil
}

// ProcessPayments finalizes a posted batch. A second call reports ALREADY_FINALIZED.
func (b *PaymentBatch) ProcessPayments(actor string) error {
	if err := b.CanProcessPayments().Err(); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}

	now := time.Now()
	b.Status = BatchStatusFinalized
	b.FinalizedAt = &now
	b.FinalizedBy = actor
	b.Touch(now)

	b.AddDomainEvent(NewPaymentBatchFinalizedEvent(b))
	return nil
}

// Void marks the batch and its allocations voided with an explicit reversal flag.
// TotalAmount is left as the historical record.
func (b *PaymentBatch) Void(reason, actor string) error {
	if err := b.CanVoid().Err(); err != nil {
		return err
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}

	now := time.Now()
	for i := range b.Allocations {
		b.Allocations[i].void(reason, actor, now)
	}
	b.markVoided(reason, actor, now)

	b.AddDomainEvent(NewPaymentBatchVoidedEvent(b))
	return nil
}

// Rollback voids every allocation and returns one compensating record per
// allocation it reversed. The receipts become eligible for a new batch.
func (b *PaymentBatch) Rollback(reason, actor string) ([]AllocationReversal, error) {
	if err := b.CanRollback().Err(); err != nil {
		return nil, err
	}
	if err := requireReason(reason); err != nil {
		return nil, err
	}
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	now := time.Now()
	reversals := make([]AllocationReversal, 0, len(b.Allocations))
	for i := range b.Allocations {
		if b.Allocations[i].void(reason, actor, now) {
			reversals = append(reversals, NewAllocationReversal(b.Allocations[i], ReversalSourceBatchRollback, reason, actor, now))
		}
	}
	b.RolledBack = true
	b.markVoided(reason, actor, now)

	b.AddDomainEvent(NewPaymentBatchRolledBackEvent(b, len(reversals)))
	return reversals, nil
}

func (b *PaymentBatch) markVoided(reason, actor string, at time.Time) {
	b.Status = BatchStatusVoided
	b.VoidedAt = &at
	b.VoidedBy = actor
	b.VoidReason = reason
	b.Touch(at)
}

// DeleteDraft soft-deletes an unapproved batch and releases its receipts
func (b *PaymentBatch) DeleteDraft(reason, actor string) error {
	if b.IsDeleted {
		return deny(ReasonDeleted, "Batch %s has already been deleted", b.BatchNumber).Err()
	}
	if b.Status != BatchStatusDraft {
		return deny(ReasonNotDraft, "Only draft batches can be deleted; batch %s is %s", b.BatchNumber, b.Status).Err()
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}

	now := time.Now()
	for i := range b.Allocations {
		b.Allocations[i].void(reason, actor, now)
	}
	b.IsDeleted = true
	b.markVoided(reason, actor, now)

	b.AddDomainEvent(NewPaymentBatchVoidedEvent(b))
	return nil
}

// AttachDistribution records the distribution that now pays this batch
func (b *PaymentBatch) AttachDistribution(distributionID uuid.UUID) error {
	if !b.Status.IsDistributable() || b.IsDeleted {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Batch %s in %s status cannot be distributed", b.BatchNumber, b.Status))
	}
	if b.ActiveDistributionID != nil && *b.ActiveDistributionID != distributionID {
		return shared.NewDomainError(shared.CodeDuplicateDistribution,
			fmt.Sprintf("Batch %s already has an active distribution", b.BatchNumber))
	}
	b.ActiveDistributionID = &distributionID
	b.Touch(time.Now())
	return nil
}

// DetachDistribution clears the active distribution when it is voided
func (b *PaymentBatch) DetachDistribution(distributionID uuid.UUID) {
	if b.ActiveDistributionID != nil && *b.ActiveDistributionID == distributionID {
		b.ActiveDistributionID = nil
		b.Touch(time.Now())
	}
}

// RecordInstrumentsGenerated adds to the count of instruments issued for the batch
func (b *PaymentBatch) RecordInstrumentsGenerated(n int) {
	if n <= 0 {
		return
	}
	b.ChequesGenerated += n
	b.Touch(time.Now())
}

// ReleaseGrower voids the grower's posted allocations after the grower's
// instrument was voided or failed with reverse accounting, making the receipts
// payable again. Totals shrink so that TotalAmount keeps matching the live
// allocations.
func (b *PaymentBatch) ReleaseGrower(growerID uuid.UUID, source ReversalSource, reason, actor string) ([]AllocationReversal, error) {
	if err := requireReason(reason); err != nil {
		return nil, err
	}
	if !b.Status.IsDistributable() {
		return nil, shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cannot release allocations of batch %s in %s status", b.BatchNumber, b.Status))
	}

	now := time.Now()
	var reversals []AllocationReversal
	for i := range b.Allocations {
		a := &b.Allocations[i]
		if a.GrowerID != growerID || !a.IsPosted() {
			continue
		}
		a.void(reason, actor, now)
		reversals = append(reversals, NewAllocationReversal(*a, source, reason, actor, now))
	}
	if len(reversals) == 0 {
		return nil, nil
	}
	b.recalculateTotals()
	b.Touch(now)

	b.AddDomainEvent(NewPaymentBatchGrowerReleasedEvent(b, growerID, reversals, actor))
	return reversals, nil
}
