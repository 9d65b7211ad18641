package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvanceCheque is an advance paid to a grower ahead of receipt value.
// AdvanceAmount never changes; CurrentAdvanceAmount only falls except on
// explicit reversal, and always stays within [0, AdvanceAmount].
type AdvanceCheque struct {
	shared.BaseAggregateRoot
	ChequeNumber         string
	GrowerID             uuid.UUID
	GrowerNumber         string
	GrowerName           string
	AdvanceDate          time.Time
	AdvanceAmount        decimal.Decimal
	CurrentAdvanceAmount decimal.Decimal
	Status               AdvanceStatus
	CreatedBy            string
	VoidedAt             *time.Time
	VoidedBy             string
	VoidReason           string
}

// NewAdvanceCheque records an issued advance
func NewAdvanceCheque(chequeNumber string, growerID uuid.UUID, growerNumber, growerName string, advanceDate time.Time, amount decimal.Decimal, actor string) (*AdvanceCheque, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(chequeNumber) == "" {
		return nil, validationError("Advance cheque number cannot be empty")
	}
	if growerID == uuid.Nil {
		return nil, validationError("Grower ID cannot be empty")
	}
	if advanceDate.IsZero() {
		return nil, validationError("Advance date is required")
	}
	if !amount.IsPositive() {
		return nil, validationError("Advance amount must be positive")
	}
	if err := requireCents(amount, "Advance amount"); err != nil {
		return nil, err
	}

	return &AdvanceCheque{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		ChequeNumber:         chequeNumber,
		GrowerID:             growerID,
		GrowerNumber:         growerNumber,
		GrowerName:           growerName,
		AdvanceDate:          advanceDate,
		AdvanceAmount:        amount,
		CurrentAdvanceAmount: amount,
		Status:               AdvanceStatusActive,
		CreatedBy:            actor,
	}, nil
}

// IsOutstanding returns true if part of the advance is still to be recovered
func (a *AdvanceCheque) IsOutstanding() bool {
	return a.Status != AdvanceStatusVoided && a.CurrentAdvanceAmount.IsPositive()
}

// RecoveredAmount returns how much of the advance has been deducted so far
func (a *AdvanceCheque) RecoveredAmount() decimal.Decimal {
	return a.AdvanceAmount.Sub(a.CurrentAdvanceAmount)
}

// ApplyDeduction applies one planned effect. The effect must have been
// computed against the balance the advance holds now.
func (a *AdvanceCheque) ApplyDeduction(effect DeductionEffect) error {
	if effect.AdvanceID != a.ID {
		return validationError("Deduction effect targets advance %s, not %s", effect.AdvanceID, a.ID)
	}
	if !a.IsOutstanding() {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Advance %s has no outstanding balance", a.ChequeNumber))
	}
	if !effect.BalanceBefore.Equal(a.CurrentAdvanceAmount) {
		return shared.NewDomainError(shared.CodeConcurrentModification,
			fmt.Sprintf("Advance %s balance changed from %s to %s since the deduction was planned",
				a.ChequeNumber, effect.BalanceBefore.StringFixed(2), a.CurrentAdvanceAmount.StringFixed(2)))
	}
	if !effect.Applied.IsPositive() || effect.Applied.GreaterThan(a.CurrentAdvanceAmount) {
		return validationError("Deduction of %s is outside the outstanding balance of advance %s",
			effect.Applied.StringFixed(2), a.ChequeNumber)
	}

	a.CurrentAdvanceAmount = a.CurrentAdvanceAmount.Sub(effect.Applied)
	a.refreshStatus()
	a.Touch(time.Now())
	return nil
}

// ReverseDeduction restores a previously applied deduction
func (a *AdvanceCheque) ReverseDeduction(amount decimal.Decimal) error {
	if a.Status == AdvanceStatusVoided {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Advance %s is voided", a.ChequeNumber))
	}
	if !amount.IsPositive() {
		return validationError("Reversal amount must be positive")
	}
	restored := a.CurrentAdvanceAmount.Add(amount)
	if restored.GreaterThan(a.AdvanceAmount) {
		return validationError("Reversal of %s would exceed the original advance of %s",
			amount.StringFixed(2), a.AdvanceAmount.StringFixed(2))
	}

	a.CurrentAdvanceAmount = restored
	a.refreshStatus()
	a.Touch(time.Now())
	return nil
}

// Void cancels an advance that has not been recovered at all
func (a *AdvanceCheque) Void(reason, actor string) error {
	if a.Status == AdvanceStatusVoided {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Advance %s is already voided", a.ChequeNumber))
	}
	if !a.CurrentAdvanceAmount.Equal(a.AdvanceAmount) {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Advance %s has recorded deductions and cannot be voided", a.ChequeNumber))
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}
	now := time.Now()
	a.Status = AdvanceStatusVoided
	a.VoidedAt = &now
	a.VoidedBy = actor
	a.VoidReason = reason
	a.Touch(now)
	return nil
}

func (a *AdvanceCheque) refreshStatus() {
	switch {
	case a.CurrentAdvanceAmount.IsZero():
		a.Status = AdvanceStatusFullyDeducted
	case a.CurrentAdvanceAmount.LessThan(a.AdvanceAmount):
		a.Status = AdvanceStatusPartiallyDeducted
	default:
		a.Status = AdvanceStatusActive
	}
}

// AdvanceDeduction is the persisted audit row for one applied effect
type AdvanceDeduction struct {
	ID                 uuid.UUID
	AdvanceChequeID    uuid.UUID
	AdvanceChequeNo    string
	GrowerID           uuid.UUID
	DistributionID     uuid.UUID
	DistributionItemID uuid.UUID
	Amount             decimal.Decimal
	BalanceBefore      decimal.Decimal
	BalanceAfter       decimal.Decimal
	DeductedAt         time.Time
	DeductedBy         string
	Reversed           bool
	ReversedAt         *time.Time
	ReversedBy         string
	ReversalReason     string
}

// NewAdvanceDeduction builds the audit row for an applied effect
func NewAdvanceDeduction(effect DeductionEffect, growerID, distributionID, itemID uuid.UUID, actor string) AdvanceDeduction {
	return AdvanceDeduction{
		ID:                 uuid.New(),
		AdvanceChequeID:    effect.AdvanceID,
		AdvanceChequeNo:    effect.ChequeNumber,
		GrowerID:           growerID,
		DistributionID:     distributionID,
		DistributionItemID: itemID,
		Amount:             effect.Applied,
		BalanceBefore:      effect.BalanceBefore,
		BalanceAfter:       effect.NewBalance,
		DeductedAt:         time.Now(),
		DeductedBy:         actor,
	}
}

// Reverse marks the deduction as undone
func (d *AdvanceDeduction) Reverse(reason, actor string) error {
	if d.Reversed {
		return shared.NewDomainError(shared.CodeInvalidStateTransition, "Deduction has already been reversed")
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	now := time.Now()
	d.Reversed = true
	d.ReversedAt = &now
	d.ReversedBy = actor
	d.ReversalReason = reason
	return nil
}
