package cache

import (
	"context"
	"fmt"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LockerFactory builds the BatchLocker for the configured deployment
type LockerFactory struct {
	cfg           config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
}

// LockerFactoryOption is a functional option for LockerFactory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-process locker instead of failing startup. Default is false.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Locker is a BatchLocker plus the resources it owns
type Locker struct {
	appsettlement.BatchLocker
	client *redis.Client
}

// Client returns the Redis connection behind the locker, or nil for the
// in-process locker
func (l *Locker) Client() *redis.Client {
	return l.client
}

// Close releases the Redis connection, if any
func (l *Locker) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

// Create returns the Redis-backed locker when Redis is enabled and reachable
func (f *LockerFactory) Create(ctx context.Context) (*Locker, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Redis disabled, using in-process batch locks")
		return &Locker{BatchLocker: NewInMemoryBatchLocker()}, nil
	}

	client, err := NewRedisClient(ctx, f.cfg)
	if err == nil {
		f.logger.Info("Using Redis batch locks", zap.String("addr", f.cfg.Addr()))
		return &Locker{BatchLocker: NewRedsyncBatchLocker(client, f.logger), client: client}, nil
	}
	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for batch locks but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-process batch locks. "+
		"Concurrent instances may race on the same batch until the database check rejects them.",
		zap.Error(err),
	)
	return &Locker{BatchLocker: NewInMemoryBatchLocker()}, nil
}
