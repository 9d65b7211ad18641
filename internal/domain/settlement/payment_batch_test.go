package settlement

import (
	"strings"
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// fiveGrowerReceipts returns one receipt per grower totalling 10,000.00
func fiveGrowerReceipts() []ReceiptCandidate {
	amounts := []string{"1000.00", "1500.00", "2000.00", "2500.00", "3000.00"}
	out := make([]ReceiptCandidate, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, ReceiptCandidate{
			ReceiptID:     uuid.New(),
			ReceiptNumber: "R-" + string(rune('A'+i)),
			GrowerID:      uuid.New(),
			GrowerNumber:  "G" + string(rune('1'+i)),
			GrowerName:    "Grower " + string(rune('1'+i)),
			Amount:        dec(a),
		})
	}
	return out
}

func newTestBatch(t *testing.T) *PaymentBatch {
	t.Helper()
	b, err := NewPaymentBatch(NewBatchParams{
		BatchNumber:   "PB-2025-0001",
		PaymentTypeID: 1,
		BatchDate:     time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		CropYear:      2025,
	}, fiveGrowerReceipts(), "clerk")
	require.NoError(t, err)
	return b
}

func TestNewPaymentBatch(t *testing.T) {
	t.Run("creates draft batch with totals", func(t *testing.T) {
		b := newTestBatch(t)
		assert.Equal(t, BatchStatusDraft, b.Status)
		assert.True(t, b.TotalAmount.Equal(dec("10000")))
		assert.Equal(t, 5, b.TotalGrowers)
		assert.Equal(t, 5, b.TotalReceipts)
		assert.Equal(t, "clerk", b.CreatedBy)
		assert.Len(t, b.Allocations, 5)
		for _, a := range b.Allocations {
			assert.Equal(t, AllocationStatusDraft, a.Status)
			assert.Equal(t, b.ID, a.PaymentBatchID)
		}
		require.Len(t, b.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePaymentBatchCreated, b.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty selection", func(t *testing.T) {
		_, err := NewPaymentBatch(NewBatchParams{BatchNumber: "PB-1", PaymentTypeID: 1, BatchDate: time.Now(), CropYear: 2025}, nil, "clerk")
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})

	t.Run("rejects duplicate receipt", func(t *testing.T) {
		receipts := fiveGrowerReceipts()
		receipts = append(receipts, receipts[0])
		_, err := NewPaymentBatch(NewBatchParams{BatchNumber: "PB-1", PaymentTypeID: 1, BatchDate: time.Now(), CropYear: 2025}, receipts, "clerk")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "more than once")
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		receipts := fiveGrowerReceipts()
		receipts[2].Amount = decimal.Zero
		_, err := NewPaymentBatch(NewBatchParams{BatchNumber: "PB-1", PaymentTypeID: 1, BatchDate: time.Now(), CropYear: 2025}, receipts, "clerk")
		require.Error(t, err)
	})

	t.Run("rejects fractions of a cent", func(t *testing.T) {
		receipts := fiveGrowerReceipts()[:3]
		for i := range receipts {
			receipts[i].Amount = dec("0.005")
		}
		_, err := NewPaymentBatch(NewBatchParams{BatchNumber: "PB-1", PaymentTypeID: 1, BatchDate: time.Now(), CropYear: 2025}, receipts, "clerk")
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
		assert.Contains(t, err.Error(), "fractions of a cent")
	})

	t.Run("accepts trailing zero decimals", func(t *testing.T) {
		receipts := fiveGrowerReceipts()
		receipts[0].Amount = dec("1000.500")
		b, err := NewPaymentBatch(NewBatchParams{BatchNumber: "PB-1", PaymentTypeID: 1, BatchDate: time.Now(), CropYear: 2025}, receipts, "clerk")
		require.NoError(t, err)
		assert.True(t, b.TotalAmount.Equal(dec("10000.50")))
	})

	t.Run("requires actor", func(t *testing.T) {
		_, err := NewPaymentBatch(NewBatchParams{BatchNumber: "PB-1", PaymentTypeID: 1, BatchDate: time.Now(), CropYear: 2025}, fiveGrowerReceipts(), " ")
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})
}

func TestPaymentBatch_Lifecycle(t *testing.T) {
	b := newTestBatch(t)

	require.NoError(t, b.Approve("supervisor"))
	assert.Equal(t, BatchStatusPosted, b.Status)
	assert.Equal(t, "supervisor", b.PostedBy)
	require.NotNil(t, b.PostedAt)
	assert.True(t, b.PostedTotal().Equal(b.TotalAmount), "posted allocations must sum to the batch total")

	require.NoError(t, b.ProcessPayments("supervisor"))
	assert.Equal(t, BatchStatusFinalized, b.Status)
	require.NotNil(t, b.FinalizedAt)

	err := b.ProcessPayments("supervisor")
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeAlreadyFinalized))
	assert.ErrorIs(t, err, shared.ErrAlreadyFinalized)
}

func TestPaymentBatch_Guards(t *testing.T) {
	t.Run("draft batch", func(t *testing.T) {
		b := newTestBatch(t)
		assert.True(t, b.CanApprove().Allowed)
		g := b.CanProcessPayments()
		assert.False(t, g.Allowed)
		assert.Equal(t, ReasonNotPosted, g.Reason)
		assert.True(t, b.CanVoid().Allowed)
		assert.True(t, b.CanRollback().Allowed)
	})

	t.Run("approve twice fails with current state", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.Approve("u"))
		err := b.Approve("u")
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))
		assert.Contains(t, err.Error(), "POSTED")
	})

	t.Run("deleted batch cannot be approved", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.DeleteDraft("entered in error", "u"))
		g := b.CanApprove()
		assert.False(t, g.Allowed)
		assert.Equal(t, ReasonDeleted, g.Reason)
	})

	t.Run("finalized batch cannot be voided", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.Approve("u"))
		require.NoError(t, b.ProcessPayments("u"))
		g := b.CanVoid()
		assert.False(t, g.Allowed)
		assert.False(t, b.CanRollback().Allowed)
	})

	t.Run("active distribution blocks void", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.Approve("u"))
		require.NoError(t, b.AttachDistribution(uuid.New()))
		g := b.CanVoid()
		assert.False(t, g.Allowed)
		assert.Equal(t, ReasonActiveDistribution, g.Reason)
		err := b.Void("oops", "u")
		assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))
	})
}

func TestPaymentBatch_Void(t *testing.T) {
	t.Run("requires reason", func(t *testing.T) {
		b := newTestBatch(t)
		err := b.Void("   ", "u")
		require.Error(t, err)
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
		assert.Equal(t, BatchStatusDraft, b.Status)
	})

	t.Run("limits reason length in characters", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.Approve("u"))
		err := b.Void(strings.Repeat("ü", 501), "u")
		assert.True(t, shared.IsCode(err, shared.CodeValidation))

		require.NoError(t, b.Void(strings.Repeat("ü", 500), "u"))
		assert.Equal(t, BatchStatusVoided, b.Status)
	})

	t.Run("marks allocations voided with reversal flag and keeps amounts", func(t *testing.T) {
		b := newTestBatch(t)
		require.NoError(t, b.Approve("u"))
		require.NoError(t, b.Void("duplicate run", "manager"))

		assert.Equal(t, BatchStatusVoided, b.Status)
		assert.Equal(t, "duplicate run", b.VoidReason)
		assert.Equal(t, "manager", b.VoidedBy)
		assert.False(t, b.RolledBack)
		assert.True(t, b.TotalAmount.Equal(dec("10000")))
		for _, a := range b.Allocations {
			assert.Equal(t, AllocationStatusVoided, a.Status)
			assert.True(t, a.Reversed)
			assert.True(t, a.AmountPaid.IsPositive())
		}
	})
}

func TestPaymentBatch_Rollback(t *testing.T) {
	b := newTestBatch(t)
	require.NoError(t, b.Approve("u"))

	reversals, err := b.Rollback("rate correction", "manager")
	require.NoError(t, err)

	assert.Equal(t, BatchStatusVoided, b.Status)
	assert.True(t, b.RolledBack)
	assert.Equal(t, "rate correction", b.VoidReason)
	assert.True(t, b.TotalAmount.Equal(dec("10000")), "total stays as the historical record")
	assert.True(t, b.PostedTotal().IsZero())

	require.Len(t, reversals, 5)
	net := decimal.Zero
	for i, a := range b.Allocations {
		assert.Equal(t, AllocationStatusVoided, a.Status)
		net = net.Add(a.AmountPaid).Add(reversals[i].Amount)
		assert.Equal(t, a.ID, reversals[i].OriginalAllocationID)
		assert.Equal(t, ReversalSourceBatchRollback, reversals[i].Source)
		assert.Equal(t, "rate correction", reversals[i].Reason)
	}
	assert.True(t, net.IsZero(), "compensating records cancel the footprint")

	_, err = b.Rollback("again", "manager")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))
}

func TestPaymentBatch_ReleaseGrower(t *testing.T) {
	b := newTestBatch(t)
	require.NoError(t, b.Approve("u"))
	grower := b.Allocations[1].GrowerID

	reversals, err := b.ReleaseGrower(grower, ReversalSourceChequeVoid, "cheque lost", "u")
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	assert.Equal(t, ReversalSourceChequeVoid, reversals[0].Source)
	assert.True(t, b.TotalAmount.Equal(dec("8500")))
	assert.Equal(t, 4, b.TotalGrowers)
	assert.True(t, b.PostedTotal().Equal(b.TotalAmount))

	again, err := b.ReleaseGrower(grower, ReversalSourceChequeVoid, "cheque lost", "u")
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestPaymentBatch_Distribution(t *testing.T) {
	b := newTestBatch(t)
	err := b.AttachDistribution(uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition), "draft batches cannot be distributed")

	require.NoError(t, b.Approve("u"))
	first := uuid.New()
	require.NoError(t, b.AttachDistribution(first))
	err = b.AttachDistribution(uuid.New())
	assert.True(t, shared.IsCode(err, shared.CodeDuplicateDistribution))

	b.DetachDistribution(first)
	assert.False(t, b.HasActiveDistribution())
}
