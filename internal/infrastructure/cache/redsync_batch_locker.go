package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const batchLockPrefix = "growerpay:lock:batch:"

// RedsyncBatchLocker holds one Redis mutex per batch while a distribution is
// being created, so that two service instances cannot distribute the same
// batch at once.
type RedsyncBatchLocker struct {
	rs     *redsync.Redsync
	logger *zap.Logger
}

// NewRedsyncBatchLocker creates a locker backed by client
func NewRedsyncBatchLocker(client *redis.Client, logger *zap.Logger) *RedsyncBatchLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedsyncBatchLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		logger: logger,
	}
}

// LockBatches acquires every batch lock in sorted order or none of them.
// A lock held elsewhere yields shared.ErrConcurrentModification.
func (l *RedsyncBatchLocker) LockBatches(ctx context.Context, batchIDs []uuid.UUID, ttl time.Duration) (appsettlement.Unlocker, error) {
	held := make([]*redsync.Mutex, 0, len(batchIDs))
	for _, key := range batchLockKeys(batchIDs) {
		mutex := l.rs.NewMutex(key, redsync.WithExpiry(ttl), redsync.WithTries(1))
		if err := mutex.LockContext(ctx); err != nil {
			_ = releaseMutexes(context.WithoutCancel(ctx), held)
			if isLockContention(err) {
				l.logger.Info("Batch already locked by another distribution", zap.String("lock_key", key))
				return nil, shared.ErrConcurrentModification
			}
			return nil, fmt.Errorf("failed to acquire batch lock %s: %w", key, err)
		}
		held = append(held, mutex)
	}
	return &redsyncUnlocker{mutexes: held}, nil
}

// isLockContention reports whether err means another owner holds the key
// rather than a Redis failure.
func isLockContention(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}
	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}

type redsyncUnlocker struct {
	mutexes []*redsync.Mutex
}

func (u *redsyncUnlocker) Unlock(ctx context.Context) error {
	return releaseMutexes(ctx, u.mutexes)
}

// releaseMutexes unlocks in reverse acquisition order. A mutex whose TTL
// lapsed, or that a later owner has since taken, is not an error.
func releaseMutexes(ctx context.Context, mutexes []*redsync.Mutex) error {
	var errs []error
	for i := len(mutexes) - 1; i >= 0; i-- {
		_, err := mutexes[i].UnlockContext(ctx)
		if err == nil || errors.Is(err, redsync.ErrLockAlreadyExpired) || isLockContention(err) {
			continue
		}
		errs = append(errs, fmt.Errorf("unlock %s: %w", mutexes[i].Name(), err))
	}
	return errors.Join(errs...)
}

var _ appsettlement.BatchLocker = (*RedsyncBatchLocker)(nil)
