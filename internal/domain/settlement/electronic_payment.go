package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ElectronicPayment is an ACH disbursement issued for a distribution item
type ElectronicPayment struct {
	shared.BaseAggregateRoot
	PaymentNumber      string
	GrowerID           uuid.UUID
	GrowerNumber       string
	GrowerName         string
	Amount             decimal.Decimal
	Status             ElectronicPaymentStatus
	DistributionID     uuid.UUID
	DistributionItemID uuid.UUID
	CreatedBy          string
	GeneratedAt        *time.Time
	ProcessedAt        *time.Time
	ProcessedBy        string
	FileReference      string
	FailedAt           *time.Time
	FailureReason      string
}

// NewElectronicPayment creates a pending electronic payment
func NewElectronicPayment(number string, item PaymentDistributionItem, actor string) (*ElectronicPayment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(number) == "" {
		return nil, validationError("Payment number cannot be empty")
	}
	if !item.Amount.IsPositive() {
		return nil, validationError("Electronic payment amount must be positive")
	}
	return &ElectronicPayment{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		PaymentNumber:      number,
		GrowerID:           item.GrowerID,
		GrowerNumber:       item.GrowerNumber,
		GrowerName:         item.GrowerName,
		Amount:             item.Amount,
		Status:             ElectronicPaymentStatusPending,
		DistributionID:     item.DistributionID,
		DistributionItemID: item.ID,
		CreatedBy:          actor,
	}, nil
}

func (p *ElectronicPayment) invalid(op string) error {
	return shared.NewDomainError(shared.CodeInvalidStateTransition,
		fmt.Sprintf("Cannot %s electronic payment %s in %s status", op, p.PaymentNumber, p.Status))
}

// MarkGenerated makes the payment available to the bank file generator
func (p *ElectronicPayment) MarkGenerated() error {
	if p.Status != ElectronicPaymentStatusPending {
		return p.invalid("generate")
	}
	now := time.Now()
	p.Status = ElectronicPaymentStatusGenerated
	p.GeneratedAt = &now
	p.Touch(now)
	return nil
}

// MarkProcessed records that the bank file containing this payment was produced
func (p *ElectronicPayment) MarkProcessed(fileReference, actor string) error {
	if p.Status != ElectronicPaymentStatusGenerated {
		return p.invalid("process")
	}
	if strings.TrimSpace(fileReference) == "" {
		return validationError("File reference is required")
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	now := time.Now()
	p.Status = ElectronicPaymentStatusProcessed
	p.ProcessedAt = &now
	p.ProcessedBy = actor
	p.FileReference = fileReference
	p.Touch(now)

	p.AddDomainEvent(NewElectronicPaymentProcessedEvent(p))
	return nil
}

// MarkFailed records an unsendable payment, or one the bank returned after
// the file was processed
func (p *ElectronicPayment) MarkFailed(reason string) error {
	switch p.Status {
	case ElectronicPaymentStatusPending, ElectronicPaymentStatusGenerated, ElectronicPaymentStatusProcessed:
	default:
		return p.invalid("fail")
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	now := time.Now()
	p.Status = ElectronicPaymentStatusFailed
	p.FailedAt = &now
	p.FailureReason = reason
	p.Touch(now)
	return nil
}
