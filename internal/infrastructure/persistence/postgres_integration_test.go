//go:build integration

package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/migration"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newPostgresDB starts a throwaway postgres container and applies the
// embedded migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("growerpay_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.NewFromURL(dsn, "", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, m.Up())
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, m.Close())

	db, err := Open(gormpostgres.Open(dsn), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.Equal(t, "postgres", db.Dialect())
	return db.DB
}

func TestSettlementFlow_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	db := newPostgresDB(t)
	s := newServices(t, db)
	alder := newGrower("G-100", "Alder Farms")
	birch := newGrower("G-200", "Birch Orchards")

	_, err := s.advances.IssueAdvance(s.ctx, appsettlement.IssueAdvanceRequest{
		ChequeNumber: "A-1",
		GrowerID:     alder.id,
		GrowerNumber: alder.number,
		GrowerName:   alder.name,
		AdvanceDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:       dec("25.00"),
	}, testActor)
	require.NoError(t, err)

	r1 := receipt(alder, "R-1", "100.00")
	b1 := s.postedBatch(t, "B-1", r1, receipt(birch, "R-2", "30.00"))

	t.Run("receipts cannot be paid twice under one payment type", func(t *testing.T) {
		_, err := s.batches.CreateBatch(s.ctx, appsettlement.CreateBatchRequest{
			BatchNumber:   "B-dup",
			PaymentTypeID: 1,
			BatchDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
			CropYear:      2026,
			Receipts:      []appsettlement.ReceiptInput{r1},
		}, testActor)
		assert.Error(t, err)
	})

	req := appsettlement.DistributionRequest{
		DistributionType: string(settlement.DistributionTypeByGrower),
		PaymentMethod:    string(settlement.PaymentMethodCheque),
		BatchIDs:         []uuid.UUID{b1.ID},
		DeductionMode:    string(appsettlement.DeductionModeFullRecovery),
	}

	// Two clerks submit the same batch at once. The batch row lock and the
	// partial unique index leave exactly one winner.
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []*appsettlement.DistributionResult
		errs    []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.distributions.CreateAndGenerate(context.Background(), req, testActor)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			results = append(results, res)
		}()
	}
	wg.Wait()

	require.Len(t, results, 1)
	require.Len(t, errs, 1)
	assert.True(t,
		shared.IsCode(errs[0], shared.CodeDuplicateDistribution) || shared.IsCode(errs[0], shared.CodeConcurrentModification),
		"unexpected error: %v", errs[0])

	result := results[0]
	assert.Equal(t, string(settlement.DistributionStatusGenerated), result.Distribution.Status)
	assert.Equal(t, 2, result.Summary.Generated)
	assert.True(t, dec("25.00").Equal(result.Distribution.TotalDeductions))
	assert.True(t, dec("105.00").Equal(result.Distribution.TotalAmount))

	t.Run("void distribution releases the batch", func(t *testing.T) {
		_, err := s.distributions.VoidDistribution(s.ctx, result.Distribution.ID, "reissue", testActor)
		require.NoError(t, err)

		again, err := s.distributions.CreateAndGenerate(s.ctx, req, testActor)
		require.NoError(t, err)
		assert.NotEqual(t, result.Distribution.ID, again.Distribution.ID)
	})
}
