package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptPaymentAllocation links a receipt's value to the batch that pays it
type ReceiptPaymentAllocation struct {
	ID             uuid.UUID
	PaymentBatchID uuid.UUID
	ReceiptID      uuid.UUID
	ReceiptNumber  string
	GrowerID       uuid.UUID
	GrowerNumber   string
	GrowerName     string
	AmountPaid     decimal.Decimal
	Status         AllocationStatus
	PostedAt       *time.Time
	VoidedAt       *time.Time
	VoidedBy       string
	VoidReason     string
	Reversed       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReceiptCandidate is a receipt row offered by the receipt source for a new batch
type ReceiptCandidate struct {
	ReceiptID     uuid.UUID
	ReceiptNumber string
	GrowerID      uuid.UUID
	GrowerNumber  string
	GrowerName    string
	Amount        decimal.Decimal
}

func newAllocation(batchID uuid.UUID, c ReceiptCandidate) ReceiptPaymentAllocation {
	now := time.Now()
	return ReceiptPaymentAllocation{
		ID:             uuid.New(),
		PaymentBatchID: batchID,
		ReceiptID:      c.ReceiptID,
		ReceiptNumber:  c.ReceiptNumber,
		GrowerID:       c.GrowerID,
		GrowerNumber:   c.GrowerNumber,
		GrowerName:     c.GrowerName,
		AmountPaid:     c.Amount,
		Status:         AllocationStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsPosted returns true if the allocation is part of a posted payment
func (a *ReceiptPaymentAllocation) IsPosted() bool {
	return a.Status == AllocationStatusPosted
}

func (a *ReceiptPaymentAllocation) post(at time.Time) {
	if a.Status != AllocationStatusDraft {
		return
	}
	a.Status = AllocationStatusPosted
	a.PostedAt = &at
	a.UpdatedAt = at
}

// void flips the status only; the amount stays as the historical record
func (a *ReceiptPaymentAllocation) void(reason, actor string, at time.Time) bool {
	if !a.Status.IsLive() {
		return false
	}
	a.Status = AllocationStatusVoided
	a.VoidedAt = &at
	a.VoidedBy = actor
	a.VoidReason = reason
	a.Reversed = true
	a.UpdatedAt = at
	return true
}

// AllocationReversal is a compensating ledger row cancelling a voided allocation
type AllocationReversal struct {
	ID                   uuid.UUID
	OriginalAllocationID uuid.UUID
	PaymentBatchID       uuid.UUID
	ReceiptID            uuid.UUID
	GrowerID             uuid.UUID
	Amount               decimal.Decimal
	Source               ReversalSource
	Reason               string
	ReversedAt           time.Time
	ReversedBy           string
}

// NewAllocationReversal builds the compensating record for an allocation
func NewAllocationReversal(a ReceiptPaymentAllocation, source ReversalSource, reason, actor string, at time.Time) AllocationReversal {
	return AllocationReversal{
		ID:                   uuid.New(),
		OriginalAllocationID: a.ID,
		PaymentBatchID:       a.PaymentBatchID,
		ReceiptID:            a.ReceiptID,
		GrowerID:             a.GrowerID,
		Amount:               a.AmountPaid.Neg(),
		Source:               source,
		Reason:               reason,
		ReversedAt:           at,
		ReversedBy:           actor,
	}
}
