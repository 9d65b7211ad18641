package settlement

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReasonCode explains why a guard refused a transition
type ReasonCode string

const (
	ReasonAllowed               ReasonCode = ""
	ReasonNotDraft              ReasonCode = "BATCH_NOT_DRAFT"
	ReasonNotPosted             ReasonCode = "BATCH_NOT_POSTED"
	ReasonAlreadyFinalized      ReasonCode = "BATCH_ALREADY_FINALIZED"
	ReasonAlreadyVoided         ReasonCode = "BATCH_ALREADY_VOIDED"
	ReasonDeleted               ReasonCode = "BATCH_DELETED"
	ReasonActiveDistribution    ReasonCode = "BATCH_HAS_ACTIVE_DISTRIBUTION"
	ReasonChequeNotLive         ReasonCode = "CHEQUE_NOT_LIVE"
	ReasonChequeNotPrinted      ReasonCode = "CHEQUE_NOT_PRINTED"
	ReasonChequeNotGenerated    ReasonCode = "CHEQUE_NOT_GENERATED"
	ReasonChequeNotReissuable   ReasonCode = "CHEQUE_NOT_REISSUABLE"
	ReasonChequeAlreadyReissued ReasonCode = "CHEQUE_ALREADY_REISSUED"
	ReasonAccountingReversed    ReasonCode = "ACCOUNTING_REVERSED"
)

// Guard is the outcome of a transition precondition check
type Guard struct {
	Allowed bool       `json:"allowed"`
	Reason  ReasonCode `json:"reason,omitempty"`
	Message string     `json:"message,omitempty"`
}

func allow() Guard {
	return Guard{Allowed: true}
}

func deny(reason ReasonCode, format string, args ...any) Guard {
	return Guard{Allowed: false, Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Err converts a refused guard into the matching domain error, nil when allowed
func (g Guard) Err() error {
	if g.Allowed {
		return nil
	}
	if g.Reason == ReasonAlreadyFinalized {
		return shared.NewDomainError(shared.CodeAlreadyFinalized, g.Message)
	}
	return shared.NewDomainError(shared.CodeInvalidStateTransition, g.Message)
}

func validationError(format string, args ...any) error {
	return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf(format, args...))
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return validationError("Actor is required")
	}
	return nil
}

func requireReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return validationError("A reason is required for this operation")
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return validationError("Reason cannot exceed %d characters", maxReasonLength)
	}
	return nil
}

// requireCents rejects amounts finer than a cent; stored money columns keep
// two decimals and every total must equal the sum of its stored parts
func requireCents(amount decimal.Decimal, format string, args ...any) error {
	if valueobject.IsCentPrecise(amount) {
		return nil
	}
	return validationError(format+" cannot have fractions of a cent", args...)
}

// maxReasonLength bounds every stored reason, counted in characters
const maxReasonLength = 500

// truncateReason cuts s to maxReasonLength characters without splitting a rune
func truncateReason(s string) string {
	if utf8.RuneCountInString(s) <= maxReasonLength {
		return s
	}
	return string([]rune(s)[:maxReasonLength])
}
