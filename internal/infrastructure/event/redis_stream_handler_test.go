package event

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStreamHandler_AppendsEnvelope(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	serializer := NewEventSerializer()
	h := NewRedisStreamHandler(client, serializer, "", 1000)
	assert.Empty(t, h.EventTypes())

	ctx := context.Background()
	evt := approvedEvent()
	require.NoError(t, h.Handle(ctx, evt))
	require.NoError(t, h.Handle(ctx, voidedChequeEvent()))

	entries, err := client.XRange(ctx, DefaultStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, evt.EventType(), entries[0].Values["type"])
	assert.Equal(t, evt.AggregateID().String(), entries[0].Values["aggregate_id"])

	back, err := serializer.Deserialize([]byte(entries[0].Values["envelope"].(string)))
	require.NoError(t, err)
	assert.Equal(t, evt.EventID(), back.EventID())
}

func TestRedisStreamHandler_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	err := NewRedisStreamHandler(client, NewEventSerializer(), "s", 0).Handle(context.Background(), approvedEvent())
	assert.ErrorContains(t, err, "failed to append")
}
