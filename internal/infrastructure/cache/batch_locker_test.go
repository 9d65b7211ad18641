package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedsyncBatchLocker_ExclusiveOnOverlap(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	locker := NewRedsyncBatchLocker(client, zap.NewNop())
	ctx := context.Background()
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	unlock, err := locker.LockBatches(ctx, []uuid.UUID{a, b}, time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists(batchLockPrefix+a.String()))
	assert.True(t, mr.Exists(batchLockPrefix+b.String()))

	_, err = locker.LockBatches(ctx, []uuid.UUID{c, b}, time.Minute)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)
	assert.False(t, mr.Exists(batchLockPrefix+c.String()), "partial acquisitions are released")

	require.NoError(t, unlock.Unlock(ctx))
	assert.False(t, mr.Exists(batchLockPrefix+a.String()))

	again, err := locker.LockBatches(ctx, []uuid.UUID{c, b}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Unlock(ctx))
}

func TestRedsyncBatchLocker_ExpiresAfterTTL(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	locker := NewRedsyncBatchLocker(client, nil)
	ctx := context.Background()
	id := uuid.New()

	first, err := locker.LockBatches(ctx, []uuid.UUID{id}, 2*time.Second)
	require.NoError(t, err)

	mr.FastForward(3 * time.Second)

	second, err := locker.LockBatches(ctx, []uuid.UUID{id}, time.Minute)
	require.NoError(t, err)
	assert.NoError(t, first.Unlock(ctx), "an expired lock unlocks quietly")
	assert.True(t, mr.Exists(batchLockPrefix+id.String()), "the new owner keeps its lock")
	require.NoError(t, second.Unlock(ctx))
}

func TestRedsyncBatchLocker_RedisDown(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	locker := NewRedsyncBatchLocker(client, nil)
	mr.Close()

	_, err := locker.LockBatches(context.Background(), []uuid.UUID{uuid.New()}, time.Minute)
	require.Error(t, err)
}

func TestInMemoryBatchLocker(t *testing.T) {
	locker := NewInMemoryBatchLocker()
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return now }
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	unlock, err := locker.LockBatches(ctx, []uuid.UUID{a, a, b}, time.Minute)
	require.NoError(t, err)

	_, err = locker.LockBatches(ctx, []uuid.UUID{b}, time.Minute)
	assert.ErrorIs(t, err, shared.ErrConcurrentModification)

	t.Run("expired lease can be taken over", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		other, err := locker.LockBatches(ctx, []uuid.UUID{b}, time.Minute)
		require.NoError(t, err)

		require.NoError(t, unlock.Unlock(ctx))
		_, err = locker.LockBatches(ctx, []uuid.UUID{b}, time.Minute)
		assert.ErrorIs(t, err, shared.ErrConcurrentModification, "stale unlock must not free the new owner")
		require.NoError(t, other.Unlock(ctx))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := locker.LockBatches(cctx, []uuid.UUID{uuid.New()}, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBatchLockKeys_SortedAndDistinct(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	keys := batchLockKeys([]uuid.UUID{ids[2], ids[0], ids[2], ids[1]})
	require.Len(t, keys, 3)
	assert.IsIncreasing(t, keys)
}

func TestLockerFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled uses in-memory", func(t *testing.T) {
		l, err := NewLockerFactory(config.RedisConfig{Enabled: false}).Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryBatchLocker{}, l.BatchLocker)
		assert.Nil(t, l.Client())
		assert.NoError(t, l.Close())
	})

	t.Run("enabled uses redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)
		l, err := NewLockerFactory(config.RedisConfig{Enabled: true, Host: mr.Host(), Port: port}).Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, &RedsyncBatchLocker{}, l.BatchLocker)
		require.NotNil(t, l.Client())
		assert.NoError(t, l.Client().Ping(ctx).Err())
		assert.NoError(t, l.Close())
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}
		_, err := NewLockerFactory(cfg).Create(ctx)
		require.Error(t, err)

		l, err := NewLockerFactory(cfg, WithInMemoryFallback(true)).Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryBatchLocker{}, l.BatchLocker)
	})
}
