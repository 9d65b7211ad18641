package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
	Actor         string          `json:"actor"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// EventSerializer converts domain events to and from envelopes
type EventSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewEventSerializer creates a serializer with every settlement event registered
func NewEventSerializer() *EventSerializer {
	s := &EventSerializer{types: make(map[string]reflect.Type)}
	s.Register(settlement.EventTypePaymentBatchCreated, &settlement.PaymentBatchCreatedEvent{})
	s.Register(settlement.EventTypePaymentBatchApproved, &settlement.PaymentBatchApprovedEvent{})
	s.Register(settlement.EventTypePaymentBatchFinalized, &settlement.PaymentBatchFinalizedEvent{})
	s.Register(settlement.EventTypePaymentBatchVoided, &settlement.PaymentBatchVoidedEvent{})
	s.Register(settlement.EventTypePaymentBatchRolledBack, &settlement.PaymentBatchRolledBackEvent{})
	s.Register(settlement.EventTypePaymentBatchGrowerReleased, &settlement.PaymentBatchGrowerReleasedEvent{})
	s.Register(settlement.EventTypePaymentDistributionCreated, &settlement.PaymentDistributionCreatedEvent{})
	s.Register(settlement.EventTypePaymentDistributionVoided, &settlement.PaymentDistributionVoidedEvent{})
	s.Register(settlement.EventTypeChequeVoided, &settlement.ChequeVoidedEvent{})
	s.Register(settlement.EventTypeChequeReissued, &settlement.ChequeReissuedEvent{})
	s.Register(settlement.EventTypeElectronicPaymentProcessed, &settlement.ElectronicPaymentProcessedEvent{})
	return s
}

// Register maps eventType to the concrete type of instance
func (s *EventSerializer) Register(eventType string, instance shared.DomainEvent) {
	t := reflect.TypeOf(instance)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	s.mu.Lock()
	s.types[eventType] = t
	s.mu.Unlock()
}

// Serialize wraps evt in an envelope and encodes it as JSON
func (s *EventSerializer) Serialize(evt shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", evt.EventType(), err)
	}
	return json.Marshal(Envelope{
		ID:            evt.EventID(),
		Type:          evt.EventType(),
		AggregateType: evt.AggregateType(),
		AggregateID:   evt.AggregateID(),
		Actor:         evt.Actor(),
		OccurredAt:    evt.OccurredAt(),
		Payload:       payload,
	})
}

// Deserialize decodes an envelope back into its registered event type
func (s *EventSerializer) Deserialize(data []byte) (shared.DomainEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	s.mu.RLock()
	t, ok := s.types[env.Type]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", env.Type)
	}

	ptr := reflect.New(t).Interface()
	if err := json.Unmarshal(env.Payload, ptr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", env.Type, err)
	}
	evt, ok := ptr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("%s does not implement DomainEvent", t)
	}
	return evt, nil
}

// IsRegistered reports whether eventType can be deserialized
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[eventType]
	return ok
}
