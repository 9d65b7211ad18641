package event

import (
	"encoding/json"
	"testing"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_Envelope(t *testing.T) {
	s := NewEventSerializer()
	evt := approvedEvent()

	data, err := s.Serialize(evt)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, evt.EventID(), env.ID)
	assert.Equal(t, settlement.EventTypePaymentBatchApproved, env.Type)
	assert.Equal(t, settlement.AggregateTypePaymentBatch, env.AggregateType)
	assert.Equal(t, "clerk", env.Actor)

	back, err := s.Deserialize(data)
	require.NoError(t, err)
	got, ok := back.(*settlement.PaymentBatchApprovedEvent)
	require.True(t, ok)
	assert.Equal(t, "PB-2026-0001", got.BatchNumber)
	assert.True(t, evt.TotalAmount.Equal(got.TotalAmount))
	assert.Equal(t, evt.AggregateID(), got.AggregateID())
}

func TestEventSerializer_RegistersSettlementEvents(t *testing.T) {
	s := NewEventSerializer()
	for _, typ := range []string{
		settlement.EventTypePaymentBatchCreated,
		settlement.EventTypePaymentBatchRolledBack,
		settlement.EventTypePaymentDistributionCreated,
		settlement.EventTypeChequeReissued,
		settlement.EventTypeElectronicPaymentProcessed,
	} {
		assert.True(t, s.IsRegistered(typ), typ)
	}
	assert.False(t, s.IsRegistered("SalesOrderCreated"))
}

func TestEventSerializer_Errors(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize([]byte(`{"type":"Mystery","payload":{}}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize([]byte(`not json`))
	assert.Error(t, err)

	_, err = s.Deserialize([]byte(`{"type":"ChequeVoided","payload":"oops"}`))
	assert.Error(t, err)
}
