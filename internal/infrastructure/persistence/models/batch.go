package models

import (
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentBatchModel is the persistence model for the PaymentBatch aggregate root.
type PaymentBatchModel struct {
	AggregateModel
	BatchNumber          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	PaymentTypeID        int             `gorm:"not null;index"`
	BatchDate            time.Time       `gorm:"type:date;not null"`
	CropYear             int             `gorm:"not null;index"`
	CutoffDate           *time.Time      `gorm:"type:date"`
	Status               string          `gorm:"type:varchar(20);not null;index"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalGrowers         int             `gorm:"not null;default:0"`
	TotalReceipts        int             `gorm:"not null;default:0"`
	ChequesGenerated     int             `gorm:"not null;default:0"`
	Notes                string          `gorm:"type:text"`
	CreatedBy            string          `gorm:"type:varchar(100);not null"`
	PostedAt             *time.Time
	PostedBy             string `gorm:"type:varchar(100)"`
	FinalizedAt          *time.Time
	FinalizedBy          string `gorm:"type:varchar(100)"`
	VoidedAt             *time.Time
	VoidedBy             string     `gorm:"type:varchar(100)"`
	VoidReason           string     `gorm:"type:text"`
	RolledBack           bool       `gorm:"not null;default:false"`
	IsDeleted            bool       `gorm:"not null;default:false;index"`
	ActiveDistributionID *uuid.UUID `gorm:"type:uuid;index"`

	Allocations []ReceiptPaymentAllocationModel `gorm:"foreignKey:PaymentBatchID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentBatchModel) TableName() string {
	return "payment_batches"
}

// ToDomain converts the persistence model to a domain PaymentBatch.
func (m *PaymentBatchModel) ToDomain() *settlement.PaymentBatch {
	b := &settlement.PaymentBatch{
		BaseAggregateRoot:    m.aggregateRoot(),
		BatchNumber:          m.BatchNumber,
		PaymentTypeID:        m.PaymentTypeID,
		BatchDate:            m.BatchDate,
		CropYear:             m.CropYear,
		CutoffDate:           m.CutoffDate,
		Status:               settlement.BatchStatus(m.Status),
		TotalAmount:          m.TotalAmount,
		TotalGrowers:         m.TotalGrowers,
		TotalReceipts:        m.TotalReceipts,
		ChequesGenerated:     m.ChequesGenerated,
		Notes:                m.Notes,
		CreatedBy:            m.CreatedBy,
		PostedAt:             m.PostedAt,
		PostedBy:             m.PostedBy,
		FinalizedAt:          m.FinalizedAt,
		FinalizedBy:          m.FinalizedBy,
		VoidedAt:             m.VoidedAt,
		VoidedBy:             m.VoidedBy,
		VoidReason:           m.VoidReason,
		RolledBack:           m.RolledBack,
		IsDeleted:            m.IsDeleted,
		ActiveDistributionID: m.ActiveDistributionID,
	}
	if len(m.Allocations) > 0 {
		b.Allocations = make([]settlement.ReceiptPaymentAllocation, len(m.Allocations))
		for i := range m.Allocations {
			b.Allocations[i] = m.Allocations[i].ToDomain()
		}
	}
	return b
}

// FromDomain populates the persistence model from a domain PaymentBatch.
func (m *PaymentBatchModel) FromDomain(b *settlement.PaymentBatch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BatchNumber = b.BatchNumber
	m.PaymentTypeID = b.PaymentTypeID
	m.BatchDate = b.BatchDate
	m.CropYear = b.CropYear
	m.CutoffDate = b.CutoffDate
	m.Status = string(b.Status)
	m.TotalAmount = b.TotalAmount
	m.TotalGrowers = b.TotalGrowers
	m.TotalReceipts = b.TotalReceipts
	m.ChequesGenerated = b.ChequesGenerated
	m.Notes = b.Notes
	m.CreatedBy = b.CreatedBy
	m.PostedAt = b.PostedAt
	m.PostedBy = b.PostedBy
	m.FinalizedAt = b.FinalizedAt
	m.FinalizedBy = b.FinalizedBy
	m.VoidedAt = b.VoidedAt
	m.VoidedBy = b.VoidedBy
	m.VoidReason = b.VoidReason
	m.RolledBack = b.RolledBack
	m.IsDeleted = b.IsDeleted
	m.ActiveDistributionID = b.ActiveDistributionID
	m.Allocations = make([]ReceiptPaymentAllocationModel, len(b.Allocations))
	for i := range b.Allocations {
		m.Allocations[i].FromDomain(&b.Allocations[i])
	}
}

// PaymentBatchModelFromDomain creates a new persistence model from a domain PaymentBatch.
func PaymentBatchModelFromDomain(b *settlement.PaymentBatch) *PaymentBatchModel {
	m := &PaymentBatchModel{}
	m.FromDomain(b)
	return m
}

// ReceiptPaymentAllocationModel is one receipt claimed by a batch.
type ReceiptPaymentAllocationModel struct {
	BaseModel
	PaymentBatchID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_allocations_receipt_batch,priority:2"`
	ReceiptID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:ux_allocations_receipt_batch,priority:1"`
	ReceiptNumber  string          `gorm:"type:varchar(50);not null"`
	GrowerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrowerNumber   string          `gorm:"type:varchar(50);not null"`
	GrowerName     string          `gorm:"type:varchar(200)"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	PostedAt       *time.Time
	VoidedAt       *time.Time
	VoidedBy       string `gorm:"type:varchar(100)"`
	VoidReason     string `gorm:"type:text"`
	Reversed       bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ReceiptPaymentAllocationModel) TableName() string {
	return "receipt_payment_allocations"
}

// ToDomain converts the persistence model to a domain allocation.
func (m *ReceiptPaymentAllocationModel) ToDomain() settlement.ReceiptPaymentAllocation {
	return settlement.ReceiptPaymentAllocation{
		ID:             m.ID,
		PaymentBatchID: m.PaymentBatchID,
		ReceiptID:      m.ReceiptID,
		ReceiptNumber:  m.ReceiptNumber,
		GrowerID:       m.GrowerID,
		GrowerNumber:   m.GrowerNumber,
		GrowerName:     m.GrowerName,
		AmountPaid:     m.AmountPaid,
		Status:         settlement.AllocationStatus(m.Status),
		PostedAt:       m.PostedAt,
		VoidedAt:       m.VoidedAt,
		VoidedBy:       m.VoidedBy,
		VoidReason:     m.VoidReason,
		Reversed:       m.Reversed,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain allocation.
func (m *ReceiptPaymentAllocationModel) FromDomain(a *settlement.ReceiptPaymentAllocation) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.PaymentBatchID = a.PaymentBatchID
	m.ReceiptID = a.ReceiptID
	m.ReceiptNumber = a.ReceiptNumber
	m.GrowerID = a.GrowerID
	m.GrowerNumber = a.GrowerNumber
	m.GrowerName = a.GrowerName
	m.AmountPaid = a.AmountPaid
	m.Status = string(a.Status)
	m.PostedAt = a.PostedAt
	m.VoidedAt = a.VoidedAt
	m.VoidedBy = a.VoidedBy
	m.VoidReason = a.VoidReason
	m.Reversed = a.Reversed
}

// AllocationReversalModel is an append-only compensating ledger row.
type AllocationReversalModel struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OriginalAllocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentBatchID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptID            uuid.UUID       `gorm:"type:uuid;not null"`
	GrowerID             uuid.UUID       `gorm:"type:uuid;not null"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Source               string          `gorm:"type:varchar(20);not null"`
	Reason               string          `gorm:"type:text"`
	ReversedAt           time.Time       `gorm:"not null"`
	ReversedBy           string          `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (AllocationReversalModel) TableName() string {
	return "allocation_reversals"
}

// ToDomain converts the persistence model to a domain reversal.
func (m *AllocationReversalModel) ToDomain() settlement.AllocationReversal {
	return settlement.AllocationReversal{
		ID:                   m.ID,
		OriginalAllocationID: m.OriginalAllocationID,
		PaymentBatchID:       m.PaymentBatchID,
		ReceiptID:            m.ReceiptID,
		GrowerID:             m.GrowerID,
		Amount:               m.Amount,
		Source:               settlement.ReversalSource(m.Source),
		Reason:               m.Reason,
		ReversedAt:           m.ReversedAt,
		ReversedBy:           m.ReversedBy,
	}
}

// AllocationReversalModelFromDomain creates a persistence model from a domain reversal.
func AllocationReversalModelFromDomain(r *settlement.AllocationReversal) *AllocationReversalModel {
	return &AllocationReversalModel{
		ID:                   r.ID,
		OriginalAllocationID: r.OriginalAllocationID,
		PaymentBatchID:       r.PaymentBatchID,
		ReceiptID:            r.ReceiptID,
		GrowerID:             r.GrowerID,
		Amount:               r.Amount,
		Source:               string(r.Source),
		Reason:               r.Reason,
		ReversedAt:           r.ReversedAt,
		ReversedBy:           r.ReversedBy,
	}
}
