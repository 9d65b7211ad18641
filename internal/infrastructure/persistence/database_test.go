package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
)

// newMockDatabase creates a Database backed by sqlmock speaking the postgres dialect
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	return mockDatabaseFrom(t)(sqlmock.New())
}

// mockDatabaseFrom wraps the result of sqlmock.New called with options; sqlmock's
// option type is unexported, so callers pass options to sqlmock.New directly.
func mockDatabaseFrom(t *testing.T) func(*sql.DB, sqlmock.Sqlmock, error) (*Database, sqlmock.Sqlmock, *sql.DB) {
	return func(mockDB *sql.DB, mock sqlmock.Sqlmock, err error) (*Database, sqlmock.Sqlmock, *sql.DB) {
		t.Helper()
		return openMockDatabase(t, mockDB, mock, err)
	}
}

func openMockDatabase(t *testing.T, mockDB *sql.DB, mock sqlmock.Sqlmock, err error) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	require.NoError(t, err)

	db, err := Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), nil)
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestDatabase_Dialect(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	assert.Equal(t, "postgres", db.Dialect())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := mockDatabaseFrom(t)(sqlmock.New(sqlmock.MonitorPingsOption(true)))
		defer mockDB.Close()

		mock.ExpectPing()
		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is returned", func(t *testing.T) {
		db, mock, mockDB := mockDatabaseFrom(t)(sqlmock.New(sqlmock.MonitorPingsOption(true)))
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		assert.EqualError(t, db.Ping(), "connection refused")
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)
	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", db.Dialect())
	require.NoError(t, db.AutoMigrate())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestSaveWithLock_StaleVersion(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectExec(`UPDATE "cheques" SET .* WHERE .*id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cheque := &settlement.Cheque{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ChequeNumber:      "100001",
		GrowerID:          uuid.New(),
		ChequeAmount:      decimal.RequireFromString("10.00"),
		Status:            settlement.ChequeStatusPrinted,
	}
	cheque.Version = 3

	err := NewGormChequeRepository(db.DB).SaveWithLock(context.Background(), cheque)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	assert.Equal(t, 3, cheque.Version, "the in-memory version is untouched on conflict")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOutstandingByGrowers_LocksRowsOnPostgres(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	growerID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "advance_cheques" WHERE grower_id IN .* ORDER BY advance_date ASC, cheque_number ASC, id ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "grower_id", "cheque_number", "status", "advance_amount", "current_advance_amount", "version"}).
			AddRow(uuid.New().String(), growerID.String(), "A-1", "ACTIVE", "50.00", "50.00", 1))

	advances, err := NewGormAdvanceRepository(db.DB).FindOutstandingByGrowers(context.Background(), []uuid.UUID{growerID})
	require.NoError(t, err)
	require.Len(t, advances, 1)
	assert.Equal(t, "A-1", advances[0].ChequeNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentBatchFindByIDs_LocksOnlyWhenAsked(t *testing.T) {
	var headerQueries []string
	matcher := sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		if strings.Contains(actual, `FROM "payment_batches"`) {
			headerQueries = append(headerQueries, actual)
		}
		return sqlmock.QueryMatcherRegexp.Match(expected, actual)
	})
	db, mock, mockDB := mockDatabaseFrom(t)(sqlmock.New(sqlmock.QueryMatcherOption(matcher)))
	defer mockDB.Close()

	batchID := uuid.New()
	header := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "batch_number", "status", "version"}).
			AddRow(batchID.String(), "B-1", "POSTED", 1)
	}
	allocations := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "payment_batch_id"})
	}
	repo := NewGormPaymentBatchRepository(db.DB)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT \* FROM "payment_batches" WHERE id IN`).WillReturnRows(header())
	mock.ExpectQuery(`SELECT \* FROM "receipt_payment_allocations"`).WillReturnRows(allocations())
	batches, err := repo.FindByIDs(ctx, []uuid.UUID{batchID})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, "B-1", batches[0].BatchNumber)

	mock.ExpectQuery(`SELECT \* FROM "payment_batches" WHERE id IN .* FOR UPDATE`).WillReturnRows(header())
	mock.ExpectQuery(`SELECT \* FROM "receipt_payment_allocations"`).WillReturnRows(allocations())
	_, err = repo.FindByIDsForUpdate(ctx, []uuid.UUID{batchID})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
	require.Len(t, headerQueries, 2)
	assert.NotContains(t, headerQueries[0], "FOR UPDATE", "plain reads never lock")
	assert.Contains(t, headerQueries[1], "FOR UPDATE")
}

func TestTranslate_WrapsDriverErrors(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "cheques"`).WillReturnError(errors.New("connection reset"))

	_, err := NewGormChequeRepository(db.DB).FindByID(context.Background(), uuid.New())
	require.Error(t, err)
	var pe *shared.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "find cheque", pe.Op)
	assert.True(t, shared.IsCode(translate("x", shared.ErrValidation), shared.CodeValidation))
	assert.Nil(t, translate("x", nil))
}
