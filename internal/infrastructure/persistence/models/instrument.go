package models

import (
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChequeModel is the persistence model for the Cheque aggregate root.
type ChequeModel struct {
	AggregateModel
	ChequeNumber       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	GrowerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrowerNumber       string          `gorm:"type:varchar(50);not null"`
	GrowerName         string          `gorm:"type:varchar(200)"`
	ChequeAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ChequeDate         time.Time       `gorm:"type:date;not null"`
	Memo               string          `gorm:"type:varchar(200)"`
	Status             string          `gorm:"type:varchar(20);not null;index"`
	DistributionID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	DistributionItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedBy          string          `gorm:"type:varchar(100);not null"`
	PrintedAt          *time.Time
	PrintedBy          string `gorm:"type:varchar(100)"`
	DeliveredAt        *time.Time
	DeliveredBy        string `gorm:"type:varchar(100)"`
	DeliveryMethod     string `gorm:"type:varchar(50)"`
	VoidedReason       string `gorm:"type:text"`
	VoidedDate         *time.Time
	VoidedBy           string `gorm:"type:varchar(100)"`
	ReverseAccounting  bool   `gorm:"not null;default:false"`
	StoppedAt          *time.Time
	StoppedBy          string     `gorm:"type:varchar(100)"`
	StopReason         string     `gorm:"type:text"`
	ReissuedFromID     *uuid.UUID `gorm:"type:uuid"`
	ReissuedToID       *uuid.UUID `gorm:"type:uuid"`
	ReissueReason      string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ChequeModel) TableName() string {
	return "cheques"
}

// ToDomain converts the persistence model to a domain Cheque.
func (m *ChequeModel) ToDomain() *settlement.Cheque {
	return &settlement.Cheque{
		BaseAggregateRoot:  m.aggregateRoot(),
		ChequeNumber:       m.ChequeNumber,
		GrowerID:           m.GrowerID,
		GrowerNumber:       m.GrowerNumber,
		GrowerName:         m.GrowerName,
		ChequeAmount:       m.ChequeAmount,
		ChequeDate:         m.ChequeDate,
		Memo:               m.Memo,
		Status:             settlement.ChequeStatus(m.Status),
		DistributionID:     m.DistributionID,
		DistributionItemID: m.DistributionItemID,
		CreatedBy:          m.CreatedBy,
		PrintedAt:          m.PrintedAt,
		PrintedBy:          m.PrintedBy,
		DeliveredAt:        m.DeliveredAt,
		DeliveredBy:        m.DeliveredBy,
		DeliveryMethod:     m.DeliveryMethod,
		VoidedReason:       m.VoidedReason,
		VoidedDate:         m.VoidedDate,
		VoidedBy:           m.VoidedBy,
		ReverseAccounting:  m.ReverseAccounting,
		StoppedAt:          m.StoppedAt,
		StoppedBy:          m.StoppedBy,
		StopReason:         m.StopReason,
		ReissuedFromID:     m.ReissuedFromID,
		ReissuedToID:       m.ReissuedToID,
		ReissueReason:      m.ReissueReason,
	}
}

// FromDomain populates the persistence model from a domain Cheque.
func (m *ChequeModel) FromDomain(c *settlement.Cheque) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ChequeNumber = c.ChequeNumber
	m.GrowerID = c.GrowerID
	m.GrowerNumber = c.GrowerNumber
	m.GrowerName = c.GrowerName
	m.ChequeAmount = c.ChequeAmount
	m.ChequeDate = c.ChequeDate
	m.Memo = c.Memo
	m.Status = string(c.Status)
	m.DistributionID = c.DistributionID
	m.DistributionItemID = c.DistributionItemID
	m.CreatedBy = c.CreatedBy
	m.PrintedAt = c.PrintedAt
	m.PrintedBy = c.PrintedBy
	m.DeliveredAt = c.DeliveredAt
	m.DeliveredBy = c.DeliveredBy
	m.DeliveryMethod = c.DeliveryMethod
	m.VoidedReason = c.VoidedReason
	m.VoidedDate = c.VoidedDate
	m.VoidedBy = c.VoidedBy
	m.ReverseAccounting = c.ReverseAccounting
	m.StoppedAt = c.StoppedAt
	m.StoppedBy = c.StoppedBy
	m.StopReason = c.StopReason
	m.ReissuedFromID = c.ReissuedFromID
	m.ReissuedToID = c.ReissuedToID
	m.ReissueReason = c.ReissueReason
}

// ChequeModelFromDomain creates a new persistence model from a domain Cheque.
func ChequeModelFromDomain(c *settlement.Cheque) *ChequeModel {
	m := &ChequeModel{}
	m.FromDomain(c)
	return m
}

// ElectronicPaymentModel is the persistence model for the ElectronicPayment aggregate root.
type ElectronicPaymentModel struct {
	AggregateModel
	PaymentNumber      string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	GrowerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrowerNumber       string          `gorm:"type:varchar(50);not null"`
	GrowerName         string          `gorm:"type:varchar(200)"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Status             string          `gorm:"type:varchar(20);not null;index"`
	DistributionID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	DistributionItemID uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedBy          string          `gorm:"type:varchar(100);not null"`
	GeneratedAt        *time.Time
	ProcessedAt        *time.Time
	ProcessedBy        string `gorm:"type:varchar(100)"`
	FileReference      string `gorm:"type:varchar(500)"`
	FailedAt           *time.Time
	FailureReason      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ElectronicPaymentModel) TableName() string {
	return "electronic_payments"
}

// ToDomain converts the persistence model to a domain ElectronicPayment.
func (m *ElectronicPaymentModel) ToDomain() *settlement.ElectronicPayment {
	return &settlement.ElectronicPayment{
		BaseAggregateRoot:  m.aggregateRoot(),
		PaymentNumber:      m.PaymentNumber,
		GrowerID:           m.GrowerID,
		GrowerNumber:       m.GrowerNumber,
		GrowerName:         m.GrowerName,
		Amount:             m.Amount,
		Status:             settlement.ElectronicPaymentStatus(m.Status),
		DistributionID:     m.DistributionID,
		DistributionItemID: m.DistributionItemID,
		CreatedBy:          m.CreatedBy,
		GeneratedAt:        m.GeneratedAt,
		ProcessedAt:        m.ProcessedAt,
		ProcessedBy:        m.ProcessedBy,
		FileReference:      m.FileReference,
		FailedAt:           m.FailedAt,
		FailureReason:      m.FailureReason,
	}
}

// FromDomain populates the persistence model from a domain ElectronicPayment.
func (m *ElectronicPaymentModel) FromDomain(p *settlement.ElectronicPayment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.GrowerID = p.GrowerID
	m.GrowerNumber = p.GrowerNumber
	m.GrowerName = p.GrowerName
	m.Amount = p.Amount
	m.Status = string(p.Status)
	m.DistributionID = p.DistributionID
	m.DistributionItemID = p.DistributionItemID
	m.CreatedBy = p.CreatedBy
	m.GeneratedAt = p.GeneratedAt
	m.ProcessedAt = p.ProcessedAt
	m.ProcessedBy = p.ProcessedBy
	m.FileReference = p.FileReference
	m.FailedAt = p.FailedAt
	m.FailureReason = p.FailureReason
}

// ElectronicPaymentModelFromDomain creates a new persistence model from a domain ElectronicPayment.
func ElectronicPaymentModelFromDomain(p *settlement.ElectronicPayment) *ElectronicPaymentModel {
	m := &ElectronicPaymentModel{}
	m.FromDomain(p)
	return m
}
