package settlement

import (
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceService_IssueAdvance(t *testing.T) {
	f := newFixture(t)
	g := newTestGrower("G-100", "Alder Farms")

	a := f.advance(t, g, "A-1", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "250.00")
	assert.Equal(t, string(settlement.AdvanceStatusActive), a.Status)
	assert.True(t, dec("250.00").Equal(a.CurrentAdvanceAmount))
	assert.True(t, a.RecoveredAmount.IsZero())

	_, err := f.advances.IssueAdvance(f.ctx, IssueAdvanceRequest{
		ChequeNumber: "A-1",
		GrowerID:     g.id,
		GrowerNumber: g.number,
		AdvanceDate:  time.Now(),
		Amount:       dec("10.00"),
	}, testActor)
	assert.True(t, shared.IsCode(err, shared.CodeAlreadyExists))

	_, err = f.advances.IssueAdvance(f.ctx, IssueAdvanceRequest{
		ChequeNumber: "A-2",
		GrowerID:     g.id,
		GrowerNumber: g.number,
		AdvanceDate:  time.Now(),
		Amount:       dec("0"),
	}, testActor)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))
}

func TestAdvanceService_ListOutstandingOldestFirst(t *testing.T) {
	f := newFixture(t)
	g := newTestGrower("G-100", "Alder Farms")
	other := newTestGrower("G-200", "Birch Orchards")

	f.advance(t, g, "A-2", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "20.00")
	f.advance(t, g, "A-1", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "10.00")
	f.advance(t, other, "A-3", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "30.00")
	voided := f.advance(t, g, "A-4", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "40.00")

	_, err := f.advances.VoidAdvance(f.ctx, voided.ID, "issued in error", testActor)
	require.NoError(t, err)

	outstanding, err := f.advances.ListOutstanding(f.ctx, g.id)
	require.NoError(t, err)
	require.Len(t, outstanding, 2)
	assert.Equal(t, "A-1", outstanding[0].ChequeNumber)
	assert.Equal(t, "A-2", outstanding[1].ChequeNumber)
}

func TestAdvanceService_VoidRecoveredAdvanceRejected(t *testing.T) {
	f := newFixture(t)
	g := newTestGrower("G-100", "Alder Farms")
	a := f.advance(t, g, "A-1", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "100.00")
	b1 := f.postedBatch(t, "B-1", receiptFor(g, "R-1", "300.00"))

	req := chequeRequest(settlement.DistributionTypeByGrower, b1.ID)
	req.Deductions = []GrowerDeductionInput{{GrowerID: g.id, Amount: dec("60.00")}}
	_, err := f.distributions.CreateAndGenerate(f.ctx, req, testActor)
	require.NoError(t, err)

	_, err = f.advances.VoidAdvance(f.ctx, a.ID, "issued in error", testActor)
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))
}

func TestAdvanceService_DeductionHistoryNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.advances.GetDeductionHistory(f.ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
