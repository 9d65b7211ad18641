package models

import (
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvanceChequeModel is the persistence model for the AdvanceCheque aggregate root.
type AdvanceChequeModel struct {
	AggregateModel
	ChequeNumber         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	GrowerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrowerNumber         string          `gorm:"type:varchar(50);not null"`
	GrowerName           string          `gorm:"type:varchar(200)"`
	AdvanceDate          time.Time       `gorm:"type:date;not null"`
	AdvanceAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CurrentAdvanceAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status               string          `gorm:"type:varchar(20);not null;index"`
	CreatedBy            string          `gorm:"type:varchar(100);not null"`
	VoidedAt             *time.Time
	VoidedBy             string `gorm:"type:varchar(100)"`
	VoidReason           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AdvanceChequeModel) TableName() string {
	return "advance_cheques"
}

// ToDomain converts the persistence model to a domain AdvanceCheque.
func (m *AdvanceChequeModel) ToDomain() *settlement.AdvanceCheque {
	return &settlement.AdvanceCheque{
		BaseAggregateRoot:    m.aggregateRoot(),
		ChequeNumber:         m.ChequeNumber,
		GrowerID:             m.GrowerID,
		GrowerNumber:         m.GrowerNumber,
		GrowerName:           m.GrowerName,
		AdvanceDate:          m.AdvanceDate,
		AdvanceAmount:        m.AdvanceAmount,
		CurrentAdvanceAmount: m.CurrentAdvanceAmount,
		Status:               settlement.AdvanceStatus(m.Status),
		CreatedBy:            m.CreatedBy,
		VoidedAt:             m.VoidedAt,
		VoidedBy:             m.VoidedBy,
		VoidReason:           m.VoidReason,
	}
}

// FromDomain populates the persistence model from a domain AdvanceCheque.
func (m *AdvanceChequeModel) FromDomain(a *settlement.AdvanceCheque) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ChequeNumber = a.ChequeNumber
	m.GrowerID = a.GrowerID
	m.GrowerNumber = a.GrowerNumber
	m.GrowerName = a.GrowerName
	m.AdvanceDate = a.AdvanceDate
	m.AdvanceAmount = a.AdvanceAmount
	m.CurrentAdvanceAmount = a.CurrentAdvanceAmount
	m.Status = string(a.Status)
	m.CreatedBy = a.CreatedBy
	m.VoidedAt = a.VoidedAt
	m.VoidedBy = a.VoidedBy
	m.VoidReason = a.VoidReason
}

// AdvanceChequeModelFromDomain creates a new persistence model from a domain AdvanceCheque.
func AdvanceChequeModelFromDomain(a *settlement.AdvanceCheque) *AdvanceChequeModel {
	m := &AdvanceChequeModel{}
	m.FromDomain(a)
	return m
}

// AdvanceDeductionModel is one draw against an advance by a distribution item.
type AdvanceDeductionModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AdvanceChequeID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AdvanceChequeNo    string          `gorm:"type:varchar(50);not null"`
	GrowerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	DistributionID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	DistributionItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceBefore      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceAfter       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DeductedAt         time.Time       `gorm:"not null"`
	DeductedBy         string          `gorm:"type:varchar(100);not null"`
	Reversed           bool            `gorm:"not null;default:false"`
	ReversedAt         *time.Time
	ReversedBy         string `gorm:"type:varchar(100)"`
	ReversalReason     string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AdvanceDeductionModel) TableName() string {
	return "advance_deductions"
}

// ToDomain converts the persistence model to a domain AdvanceDeduction.
func (m *AdvanceDeductionModel) ToDomain() settlement.AdvanceDeduction {
	return settlement.AdvanceDeduction{
		ID:                 m.ID,
		AdvanceChequeID:    m.AdvanceChequeID,
		AdvanceChequeNo:    m.AdvanceChequeNo,
		GrowerID:           m.GrowerID,
		DistributionID:     m.DistributionID,
		DistributionItemID: m.DistributionItemID,
		Amount:             m.Amount,
		BalanceBefore:      m.BalanceBefore,
		BalanceAfter:       m.BalanceAfter,
		DeductedAt:         m.DeductedAt,
		DeductedBy:         m.DeductedBy,
		Reversed:           m.Reversed,
		ReversedAt:         m.ReversedAt,
		ReversedBy:         m.ReversedBy,
		ReversalReason:     m.ReversalReason,
	}
}

// AdvanceDeductionModelFromDomain creates a persistence model from a domain AdvanceDeduction.
func AdvanceDeductionModelFromDomain(d *settlement.AdvanceDeduction) *AdvanceDeductionModel {
	return &AdvanceDeductionModel{
		ID:                 d.ID,
		AdvanceChequeID:    d.AdvanceChequeID,
		AdvanceChequeNo:    d.AdvanceChequeNo,
		GrowerID:           d.GrowerID,
		DistributionID:     d.DistributionID,
		DistributionItemID: d.DistributionItemID,
		Amount:             d.Amount,
		BalanceBefore:      d.BalanceBefore,
		BalanceAfter:       d.BalanceAfter,
		DeductedAt:         d.DeductedAt,
		DeductedBy:         d.DeductedBy,
		Reversed:           d.Reversed,
		ReversedAt:         d.ReversedAt,
		ReversedBy:         d.ReversedBy,
		ReversalReason:     d.ReversalReason,
	}
}
