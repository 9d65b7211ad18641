package settlement

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeductionEffect is the change one deduction makes to a single advance
type DeductionEffect struct {
	AdvanceID     uuid.UUID       `json:"advance_id"`
	ChequeNumber  string          `json:"cheque_number"`
	AdvanceDate   string          `json:"advance_date"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	Applied       decimal.Decimal `json:"applied"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// DeductionPlan is the outcome of distributing a deduction over advances
type DeductionPlan struct {
	Requested        decimal.Decimal   `json:"requested"`
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
	TotalApplied     decimal.Decimal   `json:"total_applied"`
	Remainder        decimal.Decimal   `json:"remainder"`
	Effects          []DeductionEffect `json:"effects"`
}

// HasRemainder reports whether part of the deduction found no advance to recover
func (p *DeductionPlan) HasRemainder() bool {
	return p.Remainder.IsPositive()
}

// AdvanceDeductionStrategy distributes a deduction over a grower's advances
type AdvanceDeductionStrategy interface {
	Name() string
	Allocate(deduction decimal.Decimal, advances []AdvanceCheque) (*DeductionPlan, error)
}

// FIFOAdvanceDeductionStrategy recovers the oldest advance first.
// Ties on AdvanceDate fall back to cheque number, then ID.
type FIFOAdvanceDeductionStrategy struct{}

// NewFIFOAdvanceDeductionStrategy creates the oldest-first strategy
func NewFIFOAdvanceDeductionStrategy() *FIFOAdvanceDeductionStrategy {
	return &FIFOAdvanceDeductionStrategy{}
}

// Name returns the strategy name
func (s *FIFOAdvanceDeductionStrategy) Name() string {
	return "FIFO"
}

// Allocate plans the deduction without touching the advances passed in
func (s *FIFOAdvanceDeductionStrategy) Allocate(deduction decimal.Decimal, advances []AdvanceCheque) (*DeductionPlan, error) {
	if deduction.IsNegative() {
		return nil, validationError("Deduction amount cannot be negative")
	}

	outstanding := make([]AdvanceCheque, 0, len(advances))
	totalOutstanding := decimal.Zero
	for _, a := range advances {
		if a.IsOutstanding() {
			outstanding = append(outstanding, a)
			totalOutstanding = totalOutstanding.Add(a.CurrentAdvanceAmount)
		}
	}
	SortAdvancesOldestFirst(outstanding)

	plan := &DeductionPlan{
		Requested:        deduction,
		TotalOutstanding: totalOutstanding,
		TotalApplied:     decimal.Zero,
		Remainder:        deduction,
		Effects:          make([]DeductionEffect, 0),
	}
	if deduction.IsZero() {
		return plan, nil
	}

	remaining := deduction
	for _, a := range outstanding {
		applied := decimal.Min(a.CurrentAdvanceAmount, remaining)
		newBalance := a.CurrentAdvanceAmount.Sub(applied)
		remaining = remaining.Sub(applied)

		plan.Effects = append(plan.Effects, DeductionEffect{
			AdvanceID:     a.ID,
			ChequeNumber:  a.ChequeNumber,
			AdvanceDate:   a.AdvanceDate.Format("2006-01-02"),
			BalanceBefore: a.CurrentAdvanceAmount,
			Applied:       applied,
			NewBalance:    newBalance,
		})
		plan.TotalApplied = plan.TotalApplied.Add(applied)

		if remaining.IsZero() {
			break
		}
	}
	plan.Remainder = remaining

	return plan, nil
}

// SortAdvancesOldestFirst orders advances in recovery order
func SortAdvancesOldestFirst(advances []AdvanceCheque) {
	sort.SliceStable(advances, func(i, j int) bool {
		a, b := advances[i], advances[j]
		if !a.AdvanceDate.Equal(b.AdvanceDate) {
			return a.AdvanceDate.Before(b.AdvanceDate)
		}
		if a.ChequeNumber != b.ChequeNumber {
			return a.ChequeNumber < b.ChequeNumber
		}
		return a.ID.String() < b.ID.String()
	})
}

// Ensure FIFOAdvanceDeductionStrategy implements AdvanceDeductionStrategy
var _ AdvanceDeductionStrategy = (*FIFOAdvanceDeductionStrategy)(nil)
