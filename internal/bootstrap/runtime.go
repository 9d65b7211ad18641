// Package bootstrap assembles the settlement services from configuration.
// The HTTP server and the operator CLI share it so both run with the same
// schema checks, locks and event handlers.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/cache"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/event"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/migration"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/persistence"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/storage"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// eventStreamMaxLen bounds the Redis event stream
const eventStreamMaxLen = 100_000

// Options tunes Open
type Options struct {
	// Meter records settlement metrics. Nil uses the global provider.
	Meter metric.Meter
	// AllowLockFallback degrades to in-process locks when Redis is down.
	AllowLockFallback bool
	// SkipMigrations leaves the schema untouched.
	SkipMigrations bool
}

// Services are the settlement application services
type Services struct {
	Batches            *appsettlement.BatchLifecycleService
	Distributions      *appsettlement.DistributionService
	Cheques            *appsettlement.ChequeService
	ElectronicPayments *appsettlement.ElectronicPaymentService
	Advances           *appsettlement.AdvanceService
}

// Runtime owns every resource behind the services
type Runtime struct {
	DB       *persistence.Database
	Bus      *event.InMemoryEventBus
	Archive  *storage.S3Archive // nil when storage is disabled
	Services Services

	locker *cache.Locker
	logger *zap.Logger
}

// Open connects the database, prepares the schema, starts the event bus and
// builds the services. Close releases everything Open acquired.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (rt *Runtime, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	rt = &Runtime{logger: log}
	defer func() {
		if err != nil {
			_ = rt.Close(context.WithoutCancel(ctx))
			rt = nil
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	if rt.DB, err = persistence.NewDatabase(&cfg.Database, gormLog); err != nil {
		return nil, err
	}
	log.Info("Database connected", zap.String("driver", rt.DB.Dialect()))

	if err = telemetry.RegisterDBTracing(rt.DB.DB, dbTracingConfig(cfg, rt.DB.Dialect()), log); err != nil {
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	if !opts.SkipMigrations {
		if err = ensureSchema(rt.DB, &cfg.Database, log); err != nil {
			return nil, err
		}
	}

	rt.locker, err = cache.NewLockerFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(opts.AllowLockFallback),
	).Create(ctx)
	if err != nil {
		return nil, err
	}

	rt.Bus = event.NewInMemoryEventBus(log)
	rt.Bus.Subscribe(event.NewAuditLogHandler(log))
	if client := rt.locker.Client(); client != nil {
		rt.Bus.Subscribe(event.NewRedisStreamHandler(client, event.NewEventSerializer(), event.DefaultStream, eventStreamMaxLen))
		log.Info("Publishing settlement events to Redis stream", zap.String("stream", event.DefaultStream))
	}
	if err = rt.Bus.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}

	var archive appsettlement.BankFileArchive
	if cfg.Storage.Enabled {
		if rt.Archive, err = storage.NewS3Archive(ctx, &cfg.Storage, storage.WithLogger(log)); err != nil {
			return nil, err
		}
		if bucketErr := rt.Archive.EnsureBucket(ctx); bucketErr != nil {
			log.Warn("Bank file bucket check failed; confirmations will retry on upload", zap.Error(bucketErr))
		}
		archive = rt.Archive
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.Meter("growerpay/settlement")
	}
	metrics, err := telemetry.NewSettlementMetrics(meter, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement metrics: %w", err)
	}

	rt.Services = newServices(rt.DB, rt.locker, rt.Bus, archive, metrics, settlementOptions(cfg.Settlement), log)
	return rt, nil
}

func newServices(
	db *persistence.Database,
	locker appsettlement.BatchLocker,
	bus *event.InMemoryEventBus,
	archive appsettlement.BankFileArchive,
	metrics *telemetry.SettlementMetrics,
	opts appsettlement.Options,
	log *zap.Logger,
) Services {
	repos := persistence.NewRepositories(db.DB)
	tx := persistence.NewGormTransactionScope(db.DB)
	return Services{
		Batches:            appsettlement.NewBatchLifecycleService(repos, tx, bus, metrics, log),
		Distributions:      appsettlement.NewDistributionService(repos, tx, locker, bus, metrics, log, opts),
		Cheques:            appsettlement.NewChequeService(repos, tx, bus, metrics, log, opts),
		ElectronicPayments: appsettlement.NewElectronicPaymentService(repos, tx, archive, bus, log),
		Advances:           appsettlement.NewAdvanceService(repos, tx, log),
	}
}

func settlementOptions(cfg config.SettlementConfig) appsettlement.Options {
	return appsettlement.Options{
		Currency:            cfg.Currency,
		ChequeNumberStart:   cfg.ChequeNumberStart,
		OverDeductionPolicy: appsettlement.OverDeductionPolicy(cfg.OverDeductionPolicy),
		LockTTL:             cfg.LockTTL,
		ChequeMemo:          cfg.ChequeMemo,
	}
}

func dbTracingConfig(cfg *config.Config, dialect string) telemetry.DBTracingConfig {
	tc := telemetry.DefaultDBTracingConfig()
	tc.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	tc.WithoutVariables = !cfg.Telemetry.DBLogFullSQL
	tc.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	if dialect == "sqlite" {
		tc.DBSystem = "sqlite"
	}
	return tc
}

// ensureSchema brings the schema up to date: versioned migrations on
// postgres, AutoMigrate on sqlite
func ensureSchema(db *persistence.Database, cfg *config.DatabaseConfig, log *zap.Logger) error {
	if db.Dialect() != "postgres" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return nil
	}

	m, err := migration.NewFromURL(cfg.DSN(), cfg.MigrationsPath, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			log.Warn("Failed to close migrator", zap.Error(closeErr))
		}
	}()
	return m.Up()
}

// RedisClient returns the connection shared by the locks and the event
// stream, or nil when Redis is disabled
func (rt *Runtime) RedisClient() *redis.Client {
	if rt.locker == nil {
		return nil
	}
	return rt.locker.Client()
}

// HealthChecks returns the dependency probes served on /health
func (rt *Runtime) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{
		"database": func(ctx context.Context) error {
			sqlDB, err := rt.DB.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if client := rt.RedisClient(); client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	if rt.Archive != nil {
		checks["bank_file_archive"] = func(context.Context) error {
			if state := rt.Archive.State(); state == "open" {
				return errors.New("circuit breaker open")
			}
			return nil
		}
	}
	return checks
}

// Close stops the event bus and releases Redis and the database
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.Bus != nil {
		errs = append(errs, rt.Bus.Stop(ctx))
	}
	if rt.locker != nil {
		errs = append(errs, rt.locker.Close())
	}
	if rt.DB != nil {
		errs = append(errs, rt.DB.Close())
	}
	return errors.Join(errs...)
}
