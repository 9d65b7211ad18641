package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testActor = "clerk@farm.test"

type testGrower struct {
	id     uuid.UUID
	number string
	name   string
}

func newTestGrower(number, name string) testGrower {
	return testGrower{id: uuid.New(), number: number, name: name}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func receiptFor(g testGrower, number, amount string) ReceiptInput {
	return ReceiptInput{
		ReceiptID:     uuid.New(),
		ReceiptNumber: number,
		GrowerID:      g.id,
		GrowerNumber:  g.number,
		GrowerName:    g.name,
		Amount:        dec(amount),
	}
}

type fixture struct {
	ctx           context.Context
	store         *memStore
	repos         Repositories
	batches       *BatchLifecycleService
	distributions *DistributionService
	cheques       *ChequeService
	payments      *ElectronicPaymentService
	advances      *AdvanceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	repos := store.repositories()
	tx := NewNoOpTransactionScope(repos)
	logger := zap.NewNop()
	opts := DefaultOptions()
	return &fixture{
		ctx:           context.Background(),
		store:         store,
		repos:         repos,
		batches:       NewBatchLifecycleService(repos, tx, nil, nil, logger),
		distributions: NewDistributionService(repos, tx, nil, nil, nil, logger, opts),
		cheques:       NewChequeService(repos, tx, nil, nil, logger, opts),
		payments:      NewElectronicPaymentService(repos, tx, nil, nil, logger),
		advances:      NewAdvanceService(repos, tx, logger),
	}
}

func (f *fixture) draftBatch(t *testing.T, number string, receipts ...ReceiptInput) *BatchResponse {
	t.Helper()
	batch, err := f.batches.CreateBatch(f.ctx, CreateBatchRequest{
		BatchNumber:   number,
		PaymentTypeID: 1,
		BatchDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		CropYear:      2026,
		Receipts:      receipts,
	}, testActor)
	require.NoError(t, err)
	return batch
}

func (f *fixture) postedBatch(t *testing.T, number string, receipts ...ReceiptInput) *BatchResponse {
	t.Helper()
	batch := f.draftBatch(t, number, receipts...)
	posted, err := f.batches.Approve(f.ctx, batch.ID, testActor)
	require.NoError(t, err)
	return posted
}

func (f *fixture) advance(t *testing.T, g testGrower, number string, date time.Time, amount string) *AdvanceResponse {
	t.Helper()
	a, err := f.advances.IssueAdvance(f.ctx, IssueAdvanceRequest{
		ChequeNumber: number,
		GrowerID:     g.id,
		GrowerNumber: g.number,
		GrowerName:   g.name,
		AdvanceDate:  date,
		Amount:       dec(amount),
	}, testActor)
	require.NoError(t, err)
	return a
}
