package event

import (
	"context"
	"fmt"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultStream is the Redis stream settlement events are appended to
const DefaultStream = "growerpay:events"

// RedisStreamHandler appends every event it receives to a Redis stream so
// that downstream consumers (reporting, the receipt system) can follow
// settlement changes.
type RedisStreamHandler struct {
	client     *redis.Client
	serializer *EventSerializer
	stream     string
	maxLen     int64
}

// NewRedisStreamHandler creates a handler writing to stream, trimmed to
// roughly maxLen entries. maxLen 0 disables trimming.
func NewRedisStreamHandler(client *redis.Client, serializer *EventSerializer, stream string, maxLen int64) *RedisStreamHandler {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamHandler{client: client, serializer: serializer, stream: stream, maxLen: maxLen}
}

// Handle writes one stream entry with the event type and its envelope
func (h *RedisStreamHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	data, err := h.serializer.Serialize(evt)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: h.stream,
		Values: map[string]any{
			"type":         evt.EventType(),
			"aggregate_id": evt.AggregateID().String(),
			"envelope":     string(data),
		},
	}
	if h.maxLen > 0 {
		args.MaxLen = h.maxLen
		args.Approx = true
	}
	if err := h.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append %s to %s: %w", evt.EventType(), h.stream, err)
	}
	return nil
}

// EventTypes is empty: the handler receives every event
func (h *RedisStreamHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*RedisStreamHandler)(nil)
