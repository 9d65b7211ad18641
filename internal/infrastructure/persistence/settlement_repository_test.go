package persistence

import (
	"context"
	"testing"
	"time"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testActor = "clerk@farm.test"

// newSQLiteDB opens a migrated in-memory database
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type growerRef struct {
	id     uuid.UUID
	number string
	name   string
}

func newGrower(number, name string) growerRef {
	return growerRef{id: uuid.New(), number: number, name: name}
}

func receipt(g growerRef, number, amount string) appsettlement.ReceiptInput {
	return appsettlement.ReceiptInput{
		ReceiptID:     uuid.New(),
		ReceiptNumber: number,
		GrowerID:      g.id,
		GrowerNumber:  g.number,
		GrowerName:    g.name,
		Amount:        dec(amount),
	}
}

type services struct {
	ctx           context.Context
	batches       *appsettlement.BatchLifecycleService
	distributions *appsettlement.DistributionService
	cheques       *appsettlement.ChequeService
	advances      *appsettlement.AdvanceService
}

func newServices(t *testing.T, db *gorm.DB) *services {
	t.Helper()
	repos := NewRepositories(db)
	tx := NewGormTransactionScope(db)
	logger := zap.NewNop()
	opts := appsettlement.DefaultOptions()
	return &services{
		ctx:           context.Background(),
		batches:       appsettlement.NewBatchLifecycleService(repos, tx, nil, nil, logger),
		distributions: appsettlement.NewDistributionService(repos, tx, nil, nil, nil, logger, opts),
		cheques:       appsettlement.NewChequeService(repos, tx, nil, nil, logger, opts),
		advances:      appsettlement.NewAdvanceService(repos, tx, logger),
	}
}

func (s *services) postedBatch(t *testing.T, number string, receipts ...appsettlement.ReceiptInput) *appsettlement.BatchResponse {
	t.Helper()
	b, err := s.batches.CreateBatch(s.ctx, appsettlement.CreateBatchRequest{
		BatchNumber:   number,
		PaymentTypeID: 1,
		BatchDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		CropYear:      2026,
		Receipts:      receipts,
	}, testActor)
	require.NoError(t, err)
	posted, err := s.batches.Approve(s.ctx, b.ID, testActor)
	require.NoError(t, err)
	return posted
}

func TestGormPaymentBatchRepository_RoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	repo := NewGormPaymentBatchRepository(db)
	alder := newGrower("G-100", "Alder Farms")

	batch, err := settlement.NewPaymentBatch(settlement.NewBatchParams{
		BatchNumber:   "B-1",
		PaymentTypeID: 1,
		BatchDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		CropYear:      2026,
	}, []settlement.ReceiptCandidate{
		{ReceiptID: uuid.New(), ReceiptNumber: "R-2", GrowerID: alder.id, GrowerNumber: alder.number, Amount: dec("20.50")},
		{ReceiptID: uuid.New(), ReceiptNumber: "R-1", GrowerID: alder.id, GrowerNumber: alder.number, Amount: dec("10.25")},
	}, testActor)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, batch))

	t.Run("duplicate batch number", func(t *testing.T) {
		again, err := settlement.NewPaymentBatch(settlement.NewBatchParams{
			BatchNumber:   "B-1",
			PaymentTypeID: 1,
			BatchDate:     time.Now(),
			CropYear:      2026,
		}, []settlement.ReceiptCandidate{
			{ReceiptID: uuid.New(), ReceiptNumber: "R-9", GrowerID: alder.id, GrowerNumber: alder.number, Amount: dec("1.00")},
		}, testActor)
		require.NoError(t, err)
		assert.True(t, shared.IsCode(repo.Create(ctx, again), shared.CodeAlreadyExists))
	})

	t.Run("receipt is allocated once per batch", func(t *testing.T) {
		var dup models.ReceiptPaymentAllocationModel
		dup.FromDomain(&batch.Allocations[0])
		dup.ID = uuid.New()
		err := db.WithContext(ctx).Create(&dup).Error
		require.Error(t, err)

		var count int64
		require.NoError(t, db.Model(&models.ReceiptPaymentAllocationModel{}).
			Where("receipt_id = ? AND payment_batch_id = ?", batch.Allocations[0].ReceiptID, batch.ID).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("loads allocations in receipt order", func(t *testing.T) {
		got, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		require.Len(t, got.Allocations, 2)
		assert.Equal(t, "R-1", got.Allocations[0].ReceiptNumber)
		assert.True(t, dec("30.75").Equal(got.TotalAmount))
		assert.Equal(t, 1, got.Version)

		exists, err := repo.ExistsByNumber(ctx, "B-1")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindByIDs(ctx, []uuid.UUID{batch.ID, uuid.New()})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("optimistic lock", func(t *testing.T) {
		first, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)

		require.NoError(t, first.Approve(testActor))
		require.NoError(t, repo.SaveWithLock(ctx, first))
		assert.Equal(t, 2, first.Version)

		require.NoError(t, second.Void("typo", testActor))
		assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrentModification)

		stored, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.Equal(t, settlement.BatchStatusPosted, stored.Status)
		for _, a := range stored.Allocations {
			assert.Equal(t, settlement.AllocationStatusPosted, a.Status)
		}
	})

	t.Run("distributable batches", func(t *testing.T) {
		batches, err := repo.FindDistributable(ctx)
		require.NoError(t, err)
		require.Len(t, batches, 1)
		assert.Equal(t, batch.ID, batches[0].ID)
		assert.Len(t, batches[0].Allocations, 2)
	})

	t.Run("list filters", func(t *testing.T) {
		rows, total, err := repo.FindAll(ctx, settlement.BatchFilter{Status: settlement.BatchStatusPosted})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].Allocations)

		_, total, err = repo.FindAll(ctx, settlement.BatchFilter{Status: settlement.BatchStatusDraft})
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestGormAllocationRepository_LiveReceipts(t *testing.T) {
	db := newSQLiteDB(t)
	s := newServices(t, db)
	alder := newGrower("G-100", "Alder Farms")
	r1 := receipt(alder, "R-1", "40.00")
	b := s.postedBatch(t, "B-1", r1)

	repo := NewGormAllocationRepository(db)
	live, err := repo.FindLiveByReceipts(s.ctx, 1, []uuid.UUID{r1.ReceiptID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, b.ID, live[0].PaymentBatchID)

	other, err := repo.FindLiveByReceipts(s.ctx, 2, []uuid.UUID{r1.ReceiptID})
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = s.batches.Rollback(s.ctx, b.ID, "wrong price", testActor)
	require.NoError(t, err)

	live, err = repo.FindLiveByReceipts(s.ctx, 1, []uuid.UUID{r1.ReceiptID})
	require.NoError(t, err)
	assert.Empty(t, live)

	reversals, err := repo.FindReversalsByBatch(s.ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, reversals, 1)
	assert.Equal(t, settlement.ReversalSourceBatchRollback, reversals[0].Source)
	assert.True(t, dec("-40.00").Equal(reversals[0].Amount))
}

func TestGormSequenceRepository_Next(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSequenceRepository(db)
	ctx := context.Background()

	for _, want := range []int64{100001, 100002, 100003} {
		got, err := repo.Next(ctx, settlement.SequenceCheque, 100001)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := repo.Next(ctx, settlement.SequenceDistribution, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()

	err := scope.Execute(ctx, func(repos appsettlement.TransactionalRepositories) error {
		if _, err := repos.SequenceRepo().Next(ctx, settlement.SequenceElectronic, 1); err != nil {
			return err
		}
		return shared.ErrValidation
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	got, err := NewGormSequenceRepository(db).Next(ctx, settlement.SequenceElectronic, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got, "the rolled back number is handed out again")
}

func TestSettlementFlow_SQLite(t *testing.T) {
	db := newSQLiteDB(t)
	s := newServices(t, db)
	alder := newGrower("G-100", "Alder Farms")
	birch := newGrower("G-200", "Birch Orchards")

	advance, err := s.advances.IssueAdvance(s.ctx, appsettlement.IssueAdvanceRequest{
		ChequeNumber: "A-1",
		GrowerID:     alder.id,
		GrowerNumber: alder.number,
		GrowerName:   alder.name,
		AdvanceDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:       dec("40.00"),
	}, testActor)
	require.NoError(t, err)

	b1 := s.postedBatch(t, "B-1", receipt(alder, "R-1", "100.00"), receipt(birch, "R-2", "30.00"))
	b2 := s.postedBatch(t, "B-2", receipt(alder, "R-3", "50.00"))

	req := appsettlement.DistributionRequest{
		DistributionType: string(settlement.DistributionTypeByGrower),
		PaymentMethod:    string(settlement.PaymentMethodCheque),
		BatchIDs:         []uuid.UUID{b1.ID, b2.ID},
		Deductions:       []appsettlement.GrowerDeductionInput{{GrowerID: alder.id, Amount: dec("40.00")}},
	}
	result, err := s.distributions.CreateAndGenerate(s.ctx, req, testActor)
	require.NoError(t, err)
	assert.Equal(t, string(settlement.DistributionStatusGenerated), result.Distribution.Status)
	require.Len(t, result.Distribution.Items, 2)

	t.Run("a batch is paid by one active distribution only", func(t *testing.T) {
		_, err := s.distributions.CreateAndGenerate(s.ctx, req, testActor)
		assert.True(t, shared.IsCode(err, shared.CodeDuplicateDistribution))
	})

	var alderCheque *uuid.UUID
	for _, item := range result.Distribution.Items {
		if item.GrowerID == alder.id {
			alderCheque = item.ChequeID
			assert.True(t, dec("110.00").Equal(item.Amount))
		}
	}
	require.NotNil(t, alderCheque)

	c, err := s.cheques.GetCheque(s.ctx, *alderCheque)
	require.NoError(t, err)
	assert.Equal(t, "100001", c.ChequeNumber)

	a, err := s.advances.GetAdvance(s.ctx, advance.ID)
	require.NoError(t, err)
	assert.True(t, a.CurrentAdvanceAmount.IsZero())

	t.Run("void with reverse accounting restores the ledger", func(t *testing.T) {
		_, err := s.cheques.VoidCheque(s.ctx, c.ID, "weight dispute", true, testActor)
		require.NoError(t, err)

		a, err := s.advances.GetAdvance(s.ctx, advance.ID)
		require.NoError(t, err)
		assert.True(t, dec("40.00").Equal(a.CurrentAdvanceAmount))

		ledger, err := s.batches.ListAllocations(s.ctx, b2.ID)
		require.NoError(t, err)
		require.Len(t, ledger.Reversals, 1)
		assert.Equal(t, string(settlement.ReversalSourceChequeVoid), ledger.Reversals[0].Source)
	})

	t.Run("distribution list filtered by batch", func(t *testing.T) {
		page, err := s.distributions.ListDistributions(s.ctx, appsettlement.DistributionListFilter{BatchID: &b2.ID})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, result.Distribution.ID, page.Items[0].ID)
	})
}
