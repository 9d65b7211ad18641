package settlement

import (
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names for distributions and instruments
const (
	EventTypePaymentDistributionCreated = "PaymentDistributionCreated"
	EventTypePaymentDistributionVoided  = "PaymentDistributionVoided"
	EventTypeChequeVoided               = "ChequeVoided"
	EventTypeChequeReissued             = "ChequeReissued"
	EventTypeElectronicPaymentProcessed = "ElectronicPaymentProcessed"
)

// PaymentDistributionCreatedEvent is raised when a distribution is persisted
type PaymentDistributionCreatedEvent struct {
	shared.BaseDomainEvent
	DistributionNumber string           `json:"distribution_number"`
	DistributionType   DistributionType `json:"distribution_type"`
	PaymentMethod      PaymentMethod    `json:"payment_method"`
	BatchIDs           []uuid.UUID      `json:"batch_ids"`
	TotalGross         decimal.Decimal  `json:"total_gross"`
	TotalDeductions    decimal.Decimal  `json:"total_deductions"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	TotalGrowers       int              `json:"total_growers"`
}

// NewPaymentDistributionCreatedEvent creates a PaymentDistributionCreatedEvent
func NewPaymentDistributionCreatedEvent(d *PaymentDistribution) *PaymentDistributionCreatedEvent {
	return &PaymentDistributionCreatedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypePaymentDistributionCreated, AggregateTypePaymentDistribution, d.ID, d.CreatedBy),
		DistributionNumber: d.DistributionNumber,
		DistributionType:   d.DistributionType,
		PaymentMethod:      d.PaymentMethod,
		BatchIDs:           d.ActiveBatchIDs(),
		TotalGross:         d.TotalGross,
		TotalDeductions:    d.TotalDeductions,
		TotalAmount:        d.TotalAmount,
		TotalGrowers:       d.TotalGrowers,
	}
}

// PaymentDistributionVoidedEvent is raised when a distribution is superseded
type PaymentDistributionVoidedEvent struct {
	shared.BaseDomainEvent
	DistributionNumber string `json:"distribution_number"`
	Reason             string `json:"reason"`
}

// NewPaymentDistributionVoidedEvent creates a PaymentDistributionVoidedEvent
func NewPaymentDistributionVoidedEvent(d *PaymentDistribution) *PaymentDistributionVoidedEvent {
	return &PaymentDistributionVoidedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypePaymentDistributionVoided, AggregateTypePaymentDistribution, d.ID, d.VoidedBy),
		DistributionNumber: d.DistributionNumber,
		Reason:             d.VoidReason,
	}
}

// ChequeVoidedEvent is raised when a cheque is voided
type ChequeVoidedEvent struct {
	shared.BaseDomainEvent
	ChequeNumber      string          `json:"cheque_number"`
	GrowerID          uuid.UUID       `json:"grower_id"`
	Amount            decimal.Decimal `json:"amount"`
	Reason            string          `json:"reason"`
	ReverseAccounting bool            `json:"reverse_accounting"`
}

// NewChequeVoidedEvent creates a ChequeVoidedEvent
func NewChequeVoidedEvent(c *Cheque) *ChequeVoidedEvent {
	return &ChequeVoidedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeChequeVoided, AggregateTypeCheque, c.ID, c.VoidedBy),
		ChequeNumber:      c.ChequeNumber,
		GrowerID:          c.GrowerID,
		Amount:            c.ChequeAmount,
		Reason:            c.VoidedReason,
		ReverseAccounting: c.ReverseAccounting,
	}
}

// ChequeReissuedEvent is raised when a replacement cheque is created
type ChequeReissuedEvent struct {
	shared.BaseDomainEvent
	OriginalChequeNumber string          `json:"original_cheque_number"`
	NewChequeID          uuid.UUID       `json:"new_cheque_id"`
	NewChequeNumber      string          `json:"new_cheque_number"`
	Amount               decimal.Decimal `json:"amount"`
	Reason               string          `json:"reason"`
}

// NewChequeReissuedEvent creates a ChequeReissuedEvent
func NewChequeReissuedEvent(original, replacement *Cheque) *ChequeReissuedEvent {
	return &ChequeReissuedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypeChequeReissued, AggregateTypeCheque, original.ID, replacement.CreatedBy),
		OriginalChequeNumber: original.ChequeNumber,
		NewChequeID:          replacement.ID,
		NewChequeNumber:      replacement.ChequeNumber,
		Amount:               replacement.ChequeAmount,
		Reason:               replacement.ReissueReason,
	}
}

// ElectronicPaymentProcessedEvent is raised when the bank file was confirmed
type ElectronicPaymentProcessedEvent struct {
	shared.BaseDomainEvent
	PaymentNumber string          `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	FileReference string          `json:"file_reference"`
}

// NewElectronicPaymentProcessedEvent creates an ElectronicPaymentProcessedEvent
func NewElectronicPaymentProcessedEvent(p *ElectronicPayment) *ElectronicPaymentProcessedEvent {
	return &ElectronicPaymentProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeElectronicPaymentProcessed, AggregateTypeElectronicPayment, p.ID, p.ProcessedBy),
		PaymentNumber:   p.PaymentNumber,
		Amount:          p.Amount,
		FileReference:   p.FileReference,
	}
}
