package settlement

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDistribution(t *testing.T) *PaymentDistribution {
	t.Helper()
	input, _, _ := consolidationFixture()
	c, err := NewConsolidationEngine().Consolidate(DistributionTypeByGrower, input)
	require.NoError(t, err)

	lines := make([]DistributionLine, 0, len(c.Lines))
	for i, l := range c.Lines {
		deduction := decimal.Zero
		if i == 0 {
			deduction = dec("100.50")
		}
		lines = append(lines, DistributionLine{ConsolidatedLine: l, Deduction: deduction})
	}
	d, err := NewPaymentDistribution("PD-000001", DistributionTypeByGrower, PaymentMethodCheque, time.Now(), c.Batches, lines, "clerk")
	require.NoError(t, err)
	return d
}

func TestNewPaymentDistribution(t *testing.T) {
	d := newTestDistribution(t)

	assert.Equal(t, DistributionStatusDraft, d.Status)
	assert.Len(t, d.Items, 2)
	assert.Len(t, d.Batches, 2)
	assert.Len(t, d.ActiveBatchIDs(), 2)
	assert.True(t, d.TotalGross.Equal(dec("350.60")))
	assert.True(t, d.TotalDeductions.Equal(dec("100.50")))
	assert.True(t, d.TotalAmount.Equal(dec("250.10")))
	assert.Equal(t, 2, d.TotalGrowers)

	first := d.Items[0]
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, ItemStatusDraft, first.Status)
	assert.True(t, first.Amount.Equal(dec("200.00")))
	assert.Equal(t, "PB-2025-0001, PB-2025-0002", first.BatchNumbers)
	assert.Len(t, first.ContributingBatchIDs, 2)
}

func TestNewPaymentDistribution_Validation(t *testing.T) {
	ref := BatchRef{ID: uuid.New(), BatchNumber: "PB-1"}
	line := DistributionLine{ConsolidatedLine: ConsolidatedLine{GrowerID: uuid.New(), GrowerNumber: "G1", Amount: dec("10")}, Deduction: dec("10.01")}

	_, err := NewPaymentDistribution("PD-1", DistributionTypeByGrower, PaymentMethodCheque, time.Now(), []BatchRef{ref}, []DistributionLine{line}, "u")
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "deduction above gross")

	_, err = NewPaymentDistribution("PD-1", DistributionTypeByGrower, PaymentMethodCheque, time.Now(), []BatchRef{ref}, nil, "u")
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "no lines")

	_, err = NewPaymentDistribution("PD-1", DistributionTypeByGrower, PaymentMethod("CASH"), time.Now(), []BatchRef{ref}, []DistributionLine{line}, "u")
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "unknown method")

	line.Deduction = dec("0.005")
	_, err = NewPaymentDistribution("PD-1", DistributionTypeByGrower, PaymentMethodCheque, time.Now(), []BatchRef{ref}, []DistributionLine{line}, "u")
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "sub-cent deduction")
}

func TestPaymentDistribution_Generation(t *testing.T) {
	d := newTestDistribution(t)
	require.NoError(t, d.BeginGeneration())
	assert.Equal(t, DistributionStatusGenerating, d.Status)

	chequeID := uuid.New()
	require.NoError(t, d.MarkItemGenerated(d.Items[0].ID, &chequeID, nil))
	require.NoError(t, d.MarkItemFailed(d.Items[1].ID, "printer offline"))
	d.FinishGeneration()

	assert.Equal(t, DistributionStatusPartiallyGenerated, d.Status)
	generated, failed, pending := d.GenerationSummary()
	assert.Equal(t, 1, generated)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, pending)

	pendingItems := d.PendingItems()
	require.Len(t, pendingItems, 1)
	assert.Equal(t, d.Items[1].ID, pendingItems[0].ID)

	err := d.MarkItemGenerated(d.Items[0].ID, &chequeID, nil)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition), "generated items are not regenerated")

	require.NoError(t, d.BeginGeneration())
	require.NoError(t, d.MarkItemGenerated(d.Items[1].ID, nil, nil))
	d.FinishGeneration()
	assert.Equal(t, DistributionStatusGenerated, d.Status)
	assert.Equal(t, ItemStatusNoPayment, d.Items[1].Status)

	err = d.BeginGeneration()
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))
}

func TestPaymentDistribution_ReopenItem(t *testing.T) {
	d := newTestDistribution(t)
	require.NoError(t, d.BeginGeneration())
	paymentID := uuid.New()
	chequeID := uuid.New()
	require.NoError(t, d.MarkItemGenerated(d.Items[0].ID, nil, &paymentID))
	require.NoError(t, d.MarkItemGenerated(d.Items[1].ID, &chequeID, nil))
	d.FinishGeneration()
	require.Equal(t, DistributionStatusGenerated, d.Status)

	err := d.ReopenItem(d.Items[1].ID, "returned")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition), "cheque items are reissued, not reopened")

	require.NoError(t, d.ReopenItem(d.Items[0].ID, "account closed"))
	item := d.Items[0]
	assert.Equal(t, ItemStatusFailed, item.Status)
	assert.Nil(t, item.ElectronicPaymentID)
	assert.Nil(t, item.GeneratedAt)
	assert.Equal(t, "account closed", item.FailureReason)
	assert.Equal(t, DistributionStatusPartiallyGenerated, d.Status)
	require.Len(t, d.PendingItems(), 1)

	err = d.ReopenItem(d.Items[0].ID, "again")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))

	replacement := uuid.New()
	require.NoError(t, d.BeginGeneration())
	require.NoError(t, d.MarkItemGenerated(d.Items[0].ID, nil, &replacement))
	d.FinishGeneration()
	assert.Equal(t, DistributionStatusGenerated, d.Status)
}

func TestPaymentDistribution_FailureReasonKeepsWholeCharacters(t *testing.T) {
	d := newTestDistribution(t)
	require.NoError(t, d.BeginGeneration())

	reason := strings.Repeat("é", 600)
	require.NoError(t, d.MarkItemFailed(d.Items[0].ID, reason))

	stored := d.Items[0].FailureReason
	assert.True(t, utf8.ValidString(stored))
	assert.Equal(t, 500, utf8.RuneCountInString(stored))
	assert.Equal(t, strings.Repeat("é", 500), stored)
}

func TestPaymentDistribution_Void(t *testing.T) {
	d := newTestDistribution(t)
	err := d.Void("", "u")
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	require.NoError(t, d.Void("wrong batches selected", "u"))
	assert.Equal(t, DistributionStatusVoided, d.Status)
	assert.Empty(t, d.ActiveBatchIDs())
	for _, item := range d.Items {
		assert.Equal(t, ItemStatusVoided, item.Status)
	}

	err = d.Void("again", "u")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))
}
