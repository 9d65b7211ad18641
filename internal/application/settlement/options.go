package settlement

import (
	"fmt"
	"strings"
	"time"
)

// OverDeductionPolicy decides what happens when a requested deduction exceeds
// the grower's outstanding advances.
type OverDeductionPolicy string

const (
	// OverDeductionReject fails the request with OVER_DEDUCTION_REMAINDER.
	OverDeductionReject OverDeductionPolicy = "REJECT"
	// OverDeductionCap withholds only what could be applied and warns.
	OverDeductionCap OverDeductionPolicy = "CAP"
)

// IsValid reports whether p is a known policy
func (p OverDeductionPolicy) IsValid() bool {
	return p == OverDeductionReject || p == OverDeductionCap
}

// DeductionMode selects how per-grower deductions are decided.
type DeductionMode string

const (
	// DeductionModeManual uses the amounts given in the request.
	DeductionModeManual DeductionMode = "MANUAL"
	// DeductionModeFullRecovery withholds min(outstanding advances, gross).
	DeductionModeFullRecovery DeductionMode = "FULL_RECOVERY"
)

// IsValid reports whether m is a known mode
func (m DeductionMode) IsValid() bool {
	return m == DeductionModeManual || m == DeductionModeFullRecovery
}

// Options tunes the settlement services.
type Options struct {
	Currency            string
	ChequeNumberStart   int64
	OverDeductionPolicy OverDeductionPolicy
	LockTTL             time.Duration
	ChequeMemo          string
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Currency:            "CAD",
		ChequeNumberStart:   100001,
		OverDeductionPolicy: OverDeductionReject,
		LockTTL:             2 * time.Minute,
		ChequeMemo:          "Grower payment",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Currency == "" {
		o.Currency = d.Currency
	}
	if o.ChequeNumberStart <= 0 {
		o.ChequeNumberStart = d.ChequeNumberStart
	}
	if !o.OverDeductionPolicy.IsValid() {
		o.OverDeductionPolicy = d.OverDeductionPolicy
	}
	if o.LockTTL <= 0 {
		o.LockTTL = d.LockTTL
	}
	if strings.TrimSpace(o.ChequeMemo) == "" {
		o.ChequeMemo = d.ChequeMemo
	}
	return o
}

func batchNumber(cropYear int, seq int64) string {
	return fmt.Sprintf("PB-%d-%04d", cropYear, seq)
}

func distributionNumber(seq int64) string {
	return fmt.Sprintf("PD-%06d", seq)
}

func electronicPaymentNumber(seq int64) string {
	return fmt.Sprintf("EFT-%06d", seq)
}

func chequeNumber(seq int64) string {
	return fmt.Sprintf("%d", seq)
}
