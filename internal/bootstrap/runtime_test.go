package bootstrap

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/event"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"},
		Settlement: config.SettlementConfig{
			Currency:            "CAD",
			ChequeNumberStart:   500001,
			OverDeductionPolicy: "CAP",
			LockTTL:             time.Minute,
		},
	}
}

func createBatch(t *testing.T, rt *Runtime) *settlement.BatchResponse {
	t.Helper()
	batch, err := rt.Services.Batches.CreateBatch(context.Background(), settlement.CreateBatchRequest{
		PaymentTypeID: 1,
		BatchDate:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		CropYear:      2026,
		Receipts: []settlement.ReceiptInput{{
			ReceiptID:     uuid.New(),
			ReceiptNumber: "R-1",
			GrowerID:      uuid.New(),
			GrowerNumber:  "G-100",
			GrowerName:    "Alder Farms",
			Amount:        decimal.RequireFromString("75.00"),
		}},
	}, "clerk@farm.test")
	require.NoError(t, err)
	return batch
}

func TestOpen_SQLiteWithoutRedis(t *testing.T) {
	rt, err := Open(context.Background(), sqliteConfig(), zap.NewNop(), Options{})
	require.NoError(t, err)
	defer func() { assert.NoError(t, rt.Close(context.Background())) }()

	assert.Nil(t, rt.RedisClient())
	assert.Nil(t, rt.Archive)

	checks := rt.HealthChecks()
	require.Contains(t, checks, "database")
	assert.NotContains(t, checks, "redis")
	assert.NoError(t, checks["database"](context.Background()))

	batch := createBatch(t, rt)
	assert.Equal(t, "DRAFT", batch.Status)
	assert.Equal(t, "PB-2026-0001", batch.BatchNumber)
}

func TestOpen_PublishesEventsToRedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := sqliteConfig()
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}

	rt, err := Open(context.Background(), cfg, zap.NewNop(), Options{})
	require.NoError(t, err)
	defer func() { assert.NoError(t, rt.Close(context.Background())) }()

	require.NotNil(t, rt.RedisClient())
	assert.Contains(t, rt.HealthChecks(), "redis")

	createBatch(t, rt)

	n, err := rt.RedisClient().XLen(context.Background(), event.DefaultStream).Result()
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestOpen_RedisRequiredUnlessFallbackAllowed(t *testing.T) {
	cfg := sqliteConfig()
	cfg.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	_, err := Open(context.Background(), cfg, zap.NewNop(), Options{})
	require.Error(t, err)

	rt, err := Open(context.Background(), cfg, zap.NewNop(), Options{AllowLockFallback: true})
	require.NoError(t, err)
	assert.Nil(t, rt.RedisClient())
	assert.NoError(t, rt.Close(context.Background()))
}

func TestSettlementOptions(t *testing.T) {
	opts := settlementOptions(config.SettlementConfig{
		Currency:            "USD",
		ChequeNumberStart:   42,
		OverDeductionPolicy: "CAP",
		LockTTL:             time.Second,
		ChequeMemo:          "Advance settlement",
	})
	assert.Equal(t, settlement.OverDeductionCap, opts.OverDeductionPolicy)
	assert.Equal(t, int64(42), opts.ChequeNumberStart)
	assert.Equal(t, "Advance settlement", opts.ChequeMemo)
}

func TestDBTracingConfig(t *testing.T) {
	cfg := &config.Config{Telemetry: config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}}
	tc := dbTracingConfig(cfg, "sqlite")
	assert.True(t, tc.Enabled)
	assert.True(t, tc.WithoutVariables)
	assert.Equal(t, "sqlite", tc.DBSystem)

	cfg.Telemetry.Enabled = false
	assert.False(t, dbTracingConfig(cfg, "postgres").Enabled)
}
