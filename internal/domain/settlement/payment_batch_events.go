package settlement

import (
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type names used on domain events
const (
	AggregateTypePaymentBatch        = "PaymentBatch"
	AggregateTypePaymentDistribution = "PaymentDistribution"
	AggregateTypeCheque              = "Cheque"
	AggregateTypeElectronicPayment   = "ElectronicPayment"
	AggregateTypeAdvanceCheque       = "AdvanceCheque"
)

// Event type names
const (
	EventTypePaymentBatchCreated        = "PaymentBatchCreated"
	EventTypePaymentBatchApproved       = "PaymentBatchApproved"
	EventTypePaymentBatchFinalized      = "PaymentBatchFinalized"
	EventTypePaymentBatchVoided         = "PaymentBatchVoided"
	EventTypePaymentBatchRolledBack     = "PaymentBatchRolledBack"
	EventTypePaymentBatchGrowerReleased = "PaymentBatchGrowerReleased"
)

// PaymentBatchCreatedEvent is raised when a draft batch is built
type PaymentBatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchNumber   string          `json:"batch_number"`
	PaymentTypeID int             `json:"payment_type_id"`
	CropYear      int             `json:"crop_year"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalGrowers  int             `json:"total_growers"`
	TotalReceipts int             `json:"total_receipts"`
}

// NewPaymentBatchCreatedEvent creates a PaymentBatchCreatedEvent
func NewPaymentBatchCreatedEvent(b *PaymentBatch) *PaymentBatchCreatedEvent {
	return &PaymentBatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchCreated, AggregateTypePaymentBatch, b.ID, b.CreatedBy),
		BatchNumber:     b.BatchNumber,
		PaymentTypeID:   b.PaymentTypeID,
		CropYear:        b.CropYear,
		TotalAmount:     b.TotalAmount,
		TotalGrowers:    b.TotalGrowers,
		TotalReceipts:   b.TotalReceipts,
	}
}

// PaymentBatchApprovedEvent is raised when a batch moves to Posted
type PaymentBatchApprovedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string          `json:"batch_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PostedAt    time.Time       `json:"posted_at"`
}

// NewPaymentBatchApprovedEvent creates a PaymentBatchApprovedEvent
func NewPaymentBatchApprovedEvent(b *PaymentBatch) *PaymentBatchApprovedEvent {
	postedAt := time.Now()
	if b.PostedAt != nil {
		postedAt = *b.PostedAt
	}
	return &PaymentBatchApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchApproved, AggregateTypePaymentBatch, b.ID, b.PostedBy),
		BatchNumber:     b.BatchNumber,
		TotalAmount:     b.TotalAmount,
		PostedAt:        postedAt,
	}
}

// PaymentBatchFinalizedEvent is raised when payments for a batch are processed
type PaymentBatchFinalizedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string          `json:"batch_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPaymentBatchFinalizedEvent creates a PaymentBatchFinalizedEvent
func NewPaymentBatchFinalizedEvent(b *PaymentBatch) *PaymentBatchFinalizedEvent {
	return &PaymentBatchFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchFinalized, AggregateTypePaymentBatch, b.ID, b.FinalizedBy),
		BatchNumber:     b.BatchNumber,
		TotalAmount:     b.TotalAmount,
	}
}

// PaymentBatchVoidedEvent is raised when a batch is voided or a draft deleted
type PaymentBatchVoidedEvent struct {
	shared.BaseDomainEvent
	BatchNumber string `json:"batch_number"`
	Reason      string `json:"reason"`
	Deleted     bool   `json:"deleted"`
}

// NewPaymentBatchVoidedEvent creates a PaymentBatchVoidedEvent
func NewPaymentBatchVoidedEvent(b *PaymentBatch) *PaymentBatchVoidedEvent {
	return &PaymentBatchVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchVoided, AggregateTypePaymentBatch, b.ID, b.VoidedBy),
		BatchNumber:     b.BatchNumber,
		Reason:          b.VoidReason,
		Deleted:         b.IsDeleted,
	}
}

// PaymentBatchRolledBackEvent is raised when a batch's footprint is reversed
type PaymentBatchRolledBackEvent struct {
	shared.BaseDomainEvent
	BatchNumber     string          `json:"batch_number"`
	Reason          string          `json:"reason"`
	ReversedCount   int             `json:"reversed_count"`
	HistoricalTotal decimal.Decimal `json:"historical_total"`
}

// NewPaymentBatchRolledBackEvent creates a PaymentBatchRolledBackEvent
func NewPaymentBatchRolledBackEvent(b *PaymentBatch, reversed int) *PaymentBatchRolledBackEvent {
	return &PaymentBatchRolledBackEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchRolledBack, AggregateTypePaymentBatch, b.ID, b.VoidedBy),
		BatchNumber:     b.BatchNumber,
		Reason:          b.VoidReason,
		ReversedCount:   reversed,
		HistoricalTotal: b.TotalAmount,
	}
}

// PaymentBatchGrowerReleasedEvent is raised when a grower's allocations are
// reversed after their cheque was voided with reverse accounting
type PaymentBatchGrowerReleasedEvent struct {
	shared.BaseDomainEvent
	BatchNumber    string          `json:"batch_number"`
	GrowerID       uuid.UUID       `json:"grower_id"`
	ReleasedAmount decimal.Decimal `json:"released_amount"`
}

// NewPaymentBatchGrowerReleasedEvent creates a PaymentBatchGrowerReleasedEvent
func NewPaymentBatchGrowerReleasedEvent(b *PaymentBatch, growerID uuid.UUID, reversals []AllocationReversal, actor string) *PaymentBatchGrowerReleasedEvent {
	released := decimal.Zero
	for _, r := range reversals {
		released = released.Sub(r.Amount)
	}
	return &PaymentBatchGrowerReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentBatchGrowerReleased, AggregateTypePaymentBatch, b.ID, actor),
		BatchNumber:     b.BatchNumber,
		GrowerID:        growerID,
		ReleasedAmount:  released,
	}
}
