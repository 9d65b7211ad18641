package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryBatchLocker is the single-process BatchLocker used when Redis is
// disabled. It does not coordinate across instances.
type InMemoryBatchLocker struct {
	mu      sync.Mutex
	held    map[string]lease
	nextTok uint64
	now     func() time.Time
}

type lease struct {
	token   uint64
	expires time.Time
}

// NewInMemoryBatchLocker creates an empty locker
func NewInMemoryBatchLocker() *InMemoryBatchLocker {
	return &InMemoryBatchLocker{
		held: make(map[string]lease),
		now:  time.Now,
	}
}

// LockBatches takes every key or none of them
func (l *InMemoryBatchLocker) LockBatches(ctx context.Context, batchIDs []uuid.UUID, ttl time.Duration) (appsettlement.Unlocker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys := batchLockKeys(batchIDs)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for _, k := range keys {
		if cur, ok := l.held[k]; ok && now.Before(cur.expires) {
			return nil, shared.ErrConcurrentModification
		}
	}
	l.nextTok++
	tok := l.nextTok
	for _, k := range keys {
		l.held[k] = lease{token: tok, expires: now.Add(ttl)}
	}
	return &inMemoryUnlocker{locker: l, keys: keys, token: tok}, nil
}

type inMemoryUnlocker struct {
	locker *InMemoryBatchLocker
	keys   []string
	token  uint64
}

// Unlock releases only the leases this unlocker still owns; a lease that
// expired and was taken by someone else is left alone.
func (u *inMemoryUnlocker) Unlock(context.Context) error {
	u.locker.mu.Lock()
	defer u.locker.mu.Unlock()
	for _, k := range u.keys {
		if cur, ok := u.locker.held[k]; ok && cur.token == u.token {
			delete(u.locker.held, k)
		}
	}
	return nil
}

// batchLockKeys returns one key per distinct batch, sorted so that callers
// locking overlapping sets always acquire in the same order.
func batchLockKeys(batchIDs []uuid.UUID) []string {
	seen := make(map[uuid.UUID]struct{}, len(batchIDs))
	keys := make([]string, 0, len(batchIDs))
	for _, id := range batchIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, batchLockPrefix+id.String())
	}
	sort.Strings(keys)
	return keys
}

var _ appsettlement.BatchLocker = (*InMemoryBatchLocker)(nil)
