package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	batch := &recordingHandler{}
	cheque := &recordingHandler{}
	all := &recordingHandler{}

	r.Register(batch, "PaymentBatchApproved", "PaymentBatchVoided")
	r.Register(cheque, "ChequeVoided")
	r.Register(all)
	assert.Equal(t, 3, r.Len())

	got := r.HandlersFor("PaymentBatchApproved")
	assert.Len(t, got, 2)
	assert.Same(t, batch, got[0], "type handlers come before wildcard handlers")
	assert.Same(t, all, got[1])

	assert.Len(t, r.HandlersFor("Unknown"), 1)

	r.Unregister(batch)
	assert.Len(t, r.HandlersFor("PaymentBatchVoided"), 1)
	assert.Equal(t, 2, r.Len())

	r.Unregister(all)
	assert.Empty(t, r.HandlersFor("Unknown"))
	assert.Len(t, r.HandlersFor("ChequeVoided"), 1)
}
