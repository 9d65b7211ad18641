package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BatchLocker guards the creation of a distribution for a set of batches so
// that two requests cannot distribute the same batch concurrently. A lock that
// is already held yields shared.ErrConcurrentModification.
type BatchLocker interface {
	LockBatches(ctx context.Context, batchIDs []uuid.UUID, ttl time.Duration) (Unlocker, error)
}

// Unlocker releases a lock obtained from BatchLocker.
type Unlocker interface {
	Unlock(ctx context.Context) error
}
