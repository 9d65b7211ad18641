package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cheque is a paper payment instrument issued for a distribution item.
// Its amount never changes; a replacement is a new Cheque.
type Cheque struct {
	shared.BaseAggregateRoot
	ChequeNumber       string
	GrowerID           uuid.UUID
	GrowerNumber       string
	GrowerName         string
	ChequeAmount       decimal.Decimal
	ChequeDate         time.Time
	Memo               string
	Status             ChequeStatus
	DistributionID     uuid.UUID
	DistributionItemID uuid.UUID
	CreatedBy          string
	PrintedAt          *time.Time
	PrintedBy          string
	DeliveredAt        *time.Time
	DeliveredBy        string
	DeliveryMethod     string
	VoidedReason       string
	VoidedDate         *time.Time
	VoidedBy           string
	ReverseAccounting  bool
	StoppedAt          *time.Time
	StoppedBy          string
	StopReason         string
	ReissuedFromID     *uuid.UUID
	ReissuedToID       *uuid.UUID
	ReissueReason      string
}

// NewChequeParams carries what is needed to issue a cheque for an item
type NewChequeParams struct {
	ChequeNumber       string
	ChequeDate         time.Time
	Memo               string
	DistributionID     uuid.UUID
	DistributionItemID uuid.UUID
	GrowerID           uuid.UUID
	GrowerNumber       string
	GrowerName         string
	Amount             decimal.Decimal
}

// NewCheque creates a cheque in Generated status
func NewCheque(p NewChequeParams, actor string) (*Cheque, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.ChequeNumber) == "" {
		return nil, validationError("Cheque number cannot be empty")
	}
	if p.GrowerID == uuid.Nil {
		return nil, validationError("Grower ID cannot be empty")
	}
	if !p.Amount.IsPositive() {
		return nil, validationError("Cheque amount must be positive")
	}
	chequeDate := p.ChequeDate
	if chequeDate.IsZero() {
		chequeDate = time.Now()
	}

	return &Cheque{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ChequeNumber:       p.ChequeNumber,
		GrowerID:           p.GrowerID,
		GrowerNumber:       p.GrowerNumber,
		GrowerName:         p.GrowerName,
		ChequeAmount:       p.Amount,
		ChequeDate:         chequeDate,
		Memo:               p.Memo,
		Status:             ChequeStatusGenerated,
		DistributionID:     p.DistributionID,
		DistributionItemID: p.DistributionItemID,
		CreatedBy:          actor,
	}, nil
}

func (c *Cheque) invalid(op string) error {
	return shared.NewDomainError(shared.CodeInvalidStateTransition,
		fmt.Sprintf("Cannot %s cheque %s in %s status", op, c.ChequeNumber, c.Status))
}

// CanPrint checks Generated → Printed
func (c *Cheque) CanPrint() Guard {
	if c.Status != ChequeStatusGenerated {
		return deny(ReasonChequeNotGenerated, "Cannot print cheque %s in %s status", c.ChequeNumber, c.Status)
	}
	return allow()
}

// CanDeliver checks Printed → Delivered
func (c *Cheque) CanDeliver() Guard {
	if c.Status != ChequeStatusPrinted {
		return deny(ReasonChequeNotPrinted, "Cannot deliver cheque %s in %s status", c.ChequeNumber, c.Status)
	}
	return allow()
}

// CanVoid checks Generated/Printed/Delivered → Voided
func (c *Cheque) CanVoid() Guard {
	if !c.Status.CanVoid() {
		return deny(ReasonChequeNotLive, "Cannot void cheque %s in %s status", c.ChequeNumber, c.Status)
	}
	return allow()
}

// CanReissue checks whether a replacement may be issued
func (c *Cheque) CanReissue() Guard {
	switch {
	case c.Status != ChequeStatusVoided && c.Status != ChequeStatusStopped:
		return deny(ReasonChequeNotReissuable, "Cheque %s must be voided or stopped before it can be reissued", c.ChequeNumber)
	case c.ReissuedToID != nil:
		return deny(ReasonChequeAlreadyReissued, "Cheque %s has already been reissued", c.ChequeNumber)
	case c.ReverseAccounting:
		return deny(ReasonAccountingReversed, "Cheque %s was voided with reverse accounting; the grower is payable again through a new batch", c.ChequeNumber)
	}
	return allow()
}

// MarkPrinted records that the cheque was printed
func (c *Cheque) MarkPrinted(actor string) error {
	if !c.CanPrint().Allowed {
		return c.invalid("print")
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	now := time.Now()
	c.Status = ChequeStatusPrinted
	c.PrintedAt = &now
	c.PrintedBy = actor
	c.Touch(now)
	return nil
}

// MarkDelivered records that the cheque was handed to the grower
func (c *Cheque) MarkDelivered(method, actor string) error {
	if !c.CanDeliver().Allowed {
		return c.invalid("deliver")
	}
	if strings.TrimSpace(method) == "" {
		return validationError("Delivery method is required")
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	now := time.Now()
	c.Status = ChequeStatusDelivered
	c.DeliveredAt = &now
	c.DeliveredBy = actor
	c.DeliveryMethod = method
	c.Touch(now)
	return nil
}

// Void cancels the cheque. reverseAccounting records whether the caller also
// reverses the ledger entries it paid.
func (c *Cheque) Void(reason string, reverseAccounting bool, actor string) error {
	if !c.CanVoid().Allowed {
		return c.invalid("void")
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	now := time.Now()
	c.Status = ChequeStatusVoided
	c.VoidedReason = reason
	c.VoidedDate = &now
	c.VoidedBy = actor
	c.ReverseAccounting = reverseAccounting
	c.Touch(now)

	c.AddDomainEvent(NewChequeVoidedEvent(c))
	return nil
}

// Stop records a stop-payment placed with the bank
func (c *Cheque) Stop(reason, actor string) error {
	if !c.Status.CanStop() {
		return c.invalid("stop")
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	now := time.Now()
	c.Status = ChequeStatusStopped
	c.StoppedAt = &now
	c.StoppedBy = actor
	c.StopReason = reason
	c.Touch(now)
	return nil
}

// Reissue creates a replacement cheque for the same amount under a new number
func (c *Cheque) Reissue(newNumber, reason, actor string) (*Cheque, error) {
	if err := c.CanReissue().Err(); err != nil {
		return nil, err
	}
	if err := requireReason(reason); err != nil {
		return nil, err
	}
	if newNumber == c.ChequeNumber {
		return nil, validationError("Replacement cheque needs a new number")
	}

	replacement, err := NewCheque(NewChequeParams{
		ChequeNumber:       newNumber,
		ChequeDate:         time.Now(),
		Memo:               c.Memo,
		DistributionID:     c.DistributionID,
		DistributionItemID: c.DistributionItemID,
		GrowerID:           c.GrowerID,
		GrowerNumber:       c.GrowerNumber,
		GrowerName:         c.GrowerName,
		Amount:             c.ChequeAmount,
	}, actor)
	if err != nil {
		return nil, err
	}
	originalID := c.ID
	replacement.ReissuedFromID = &originalID
	replacement.ReissueReason = reason

	c.ReissuedToID = &replacement.ID
	c.Touch(time.Now())

	c.AddDomainEvent(NewChequeReissuedEvent(c, replacement))
	return replacement, nil
}
