package models

import (
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDistributionModel is the persistence model for the PaymentDistribution aggregate root.
type PaymentDistributionModel struct {
	AggregateModel
	DistributionNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	DistributionType   string          `gorm:"type:varchar(20);not null"`
	PaymentMethod      string          `gorm:"type:varchar(20);not null;index"`
	DistributionDate   time.Time       `gorm:"type:date;not null"`
	TotalGross         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalDeductions    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalGrowers       int             `gorm:"not null;default:0"`
	TotalBatches       int             `gorm:"not null;default:0"`
	Status             string          `gorm:"type:varchar(30);not null;index"`
	CreatedBy          string          `gorm:"type:varchar(100);not null"`
	VoidedAt           *time.Time
	VoidedBy           string `gorm:"type:varchar(100)"`
	VoidReason         string `gorm:"type:text"`

	Batches []PaymentDistributionBatchModel `gorm:"foreignKey:DistributionID;references:ID"`
	Items   []PaymentDistributionItemModel  `gorm:"foreignKey:DistributionID;references:ID"`
}

// TableName returns the table name for GORM
func (PaymentDistributionModel) TableName() string {
	return "payment_distributions"
}

// ToDomain converts the persistence model to a domain PaymentDistribution.
func (m *PaymentDistributionModel) ToDomain() *settlement.PaymentDistribution {
	d := &settlement.PaymentDistribution{
		BaseAggregateRoot:  m.aggregateRoot(),
		DistributionNumber: m.DistributionNumber,
		DistributionType:   settlement.DistributionType(m.DistributionType),
		PaymentMethod:      settlement.PaymentMethod(m.PaymentMethod),
		DistributionDate:   m.DistributionDate,
		TotalGross:         m.TotalGross,
		TotalDeductions:    m.TotalDeductions,
		TotalAmount:        m.TotalAmount,
		TotalGrowers:       m.TotalGrowers,
		TotalBatches:       m.TotalBatches,
		Status:             settlement.DistributionStatus(m.Status),
		CreatedBy:          m.CreatedBy,
		VoidedAt:           m.VoidedAt,
		VoidedBy:           m.VoidedBy,
		VoidReason:         m.VoidReason,
		Batches:            make([]settlement.PaymentDistributionBatch, len(m.Batches)),
		Items:              make([]settlement.PaymentDistributionItem, len(m.Items)),
	}
	for i := range m.Batches {
		d.Batches[i] = m.Batches[i].ToDomain()
	}
	for i := range m.Items {
		d.Items[i] = m.Items[i].ToDomain()
	}
	return d
}

// FromDomain populates the persistence model from a domain PaymentDistribution.
func (m *PaymentDistributionModel) FromDomain(d *settlement.PaymentDistribution) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.DistributionNumber = d.DistributionNumber
	m.DistributionType = string(d.DistributionType)
	m.PaymentMethod = string(d.PaymentMethod)
	m.DistributionDate = d.DistributionDate
	m.TotalGross = d.TotalGross
	m.TotalDeductions = d.TotalDeductions
	m.TotalAmount = d.TotalAmount
	m.TotalGrowers = d.TotalGrowers
	m.TotalBatches = d.TotalBatches
	m.Status = string(d.Status)
	m.CreatedBy = d.CreatedBy
	m.VoidedAt = d.VoidedAt
	m.VoidedBy = d.VoidedBy
	m.VoidReason = d.VoidReason
	m.Batches = make([]PaymentDistributionBatchModel, len(d.Batches))
	for i := range d.Batches {
		m.Batches[i] = *PaymentDistributionBatchModelFromDomain(&d.Batches[i])
	}
	m.Items = make([]PaymentDistributionItemModel, len(d.Items))
	for i := range d.Items {
		m.Items[i] = *PaymentDistributionItemModelFromDomain(&d.Items[i])
	}
}

// PaymentDistributionModelFromDomain creates a new persistence model from a domain PaymentDistribution.
func PaymentDistributionModelFromDomain(d *settlement.PaymentDistribution) *PaymentDistributionModel {
	m := &PaymentDistributionModel{}
	m.FromDomain(d)
	return m
}

// PaymentDistributionBatchModel links a distribution to a batch it pays.
// At most one active link may exist per batch.
type PaymentDistributionBatchModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DistributionID uuid.UUID `gorm:"type:uuid;not null;index"`
	PaymentBatchID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_distribution_batches_active,where:active = true"`
	BatchNumber    string    `gorm:"type:varchar(50);not null"`
	Active         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time `gorm:"not null"`
	DeactivatedAt  *time.Time
}

// TableName returns the table name for GORM
func (PaymentDistributionBatchModel) TableName() string {
	return "payment_distribution_batches"
}

// ToDomain converts the persistence model to a domain link.
func (m *PaymentDistributionBatchModel) ToDomain() settlement.PaymentDistributionBatch {
	return settlement.PaymentDistributionBatch{
		ID:             m.ID,
		DistributionID: m.DistributionID,
		PaymentBatchID: m.PaymentBatchID,
		BatchNumber:    m.BatchNumber,
		Active:         m.Active,
		CreatedAt:      m.CreatedAt,
		DeactivatedAt:  m.DeactivatedAt,
	}
}

// PaymentDistributionBatchModelFromDomain creates a persistence model from a domain link.
func PaymentDistributionBatchModelFromDomain(b *settlement.PaymentDistributionBatch) *PaymentDistributionBatchModel {
	return &PaymentDistributionBatchModel{
		ID:             b.ID,
		DistributionID: b.DistributionID,
		PaymentBatchID: b.PaymentBatchID,
		BatchNumber:    b.BatchNumber,
		Active:         b.Active,
		CreatedAt:      b.CreatedAt,
		DeactivatedAt:  b.DeactivatedAt,
	}
}

// PaymentDistributionItemModel is one payable line of a distribution.
type PaymentDistributionItemModel struct {
	BaseModel
	DistributionID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence             int             `gorm:"not null"`
	GrowerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	GrowerNumber         string          `gorm:"type:varchar(50);not null"`
	GrowerName           string          `gorm:"type:varchar(200)"`
	PaymentBatchID       uuid.UUID       `gorm:"type:uuid;not null"`
	ReceiptID            uuid.UUID       `gorm:"type:uuid"`
	BatchNumbers         string          `gorm:"type:text;not null"`
	ContributingBatchIDs string          `gorm:"type:text;not null"` // comma separated
	GrossAmount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DeductionAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMethod        string          `gorm:"type:varchar(20);not null"`
	Status               string          `gorm:"type:varchar(20);not null;index"`
	ChequeID             *uuid.UUID      `gorm:"type:uuid"`
	ElectronicPaymentID  *uuid.UUID      `gorm:"type:uuid"`
	GeneratedAt          *time.Time
	FailureReason        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentDistributionItemModel) TableName() string {
	return "payment_distribution_items"
}

// ToDomain converts the persistence model to a domain item.
func (m *PaymentDistributionItemModel) ToDomain() settlement.PaymentDistributionItem {
	return settlement.PaymentDistributionItem{
		ID:                   m.ID,
		DistributionID:       m.DistributionID,
		Sequence:             m.Sequence,
		GrowerID:             m.GrowerID,
		GrowerNumber:         m.GrowerNumber,
		GrowerName:           m.GrowerName,
		PaymentBatchID:       m.PaymentBatchID,
		ReceiptID:            m.ReceiptID,
		BatchNumbers:         m.BatchNumbers,
		ContributingBatchIDs: splitIDs(m.ContributingBatchIDs),
		GrossAmount:          m.GrossAmount,
		DeductionAmount:      m.DeductionAmount,
		Amount:               m.Amount,
		PaymentMethod:        settlement.PaymentMethod(m.PaymentMethod),
		Status:               settlement.ItemStatus(m.Status),
		ChequeID:             m.ChequeID,
		ElectronicPaymentID:  m.ElectronicPaymentID,
		GeneratedAt:          m.GeneratedAt,
		FailureReason:        m.FailureReason,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// PaymentDistributionItemModelFromDomain creates a persistence model from a domain item.
func PaymentDistributionItemModelFromDomain(i *settlement.PaymentDistributionItem) *PaymentDistributionItemModel {
	return &PaymentDistributionItemModel{
		BaseModel:            BaseModel{ID: i.ID, CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt},
		DistributionID:       i.DistributionID,
		Sequence:             i.Sequence,
		GrowerID:             i.GrowerID,
		GrowerNumber:         i.GrowerNumber,
		GrowerName:           i.GrowerName,
		PaymentBatchID:       i.PaymentBatchID,
		ReceiptID:            i.ReceiptID,
		BatchNumbers:         i.BatchNumbers,
		ContributingBatchIDs: joinIDs(i.ContributingBatchIDs),
		GrossAmount:          i.GrossAmount,
		DeductionAmount:      i.DeductionAmount,
		Amount:               i.Amount,
		PaymentMethod:        string(i.PaymentMethod),
		Status:               string(i.Status),
		ChequeID:             i.ChequeID,
		ElectronicPaymentID:  i.ElectronicPaymentID,
		GeneratedAt:          i.GeneratedAt,
		FailureReason:        i.FailureReason,
	}
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []uuid.UUID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		if id, err := uuid.Parse(p); err == nil {
			out = append(out, id)
		}
	}
	return out
}
