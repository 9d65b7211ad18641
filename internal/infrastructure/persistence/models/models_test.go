package models

import (
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentDistributionItemModel_ContributingBatchIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	item := settlement.PaymentDistributionItem{
		ID:                   uuid.New(),
		DistributionID:       uuid.New(),
		GrowerID:             uuid.New(),
		ContributingBatchIDs: []uuid.UUID{a, b},
		GrossAmount:          decimal.RequireFromString("150.00"),
		Amount:               decimal.RequireFromString("110.00"),
		Status:               settlement.ItemStatusDraft,
	}

	m := PaymentDistributionItemModelFromDomain(&item)
	assert.Equal(t, a.String()+","+b.String(), m.ContributingBatchIDs)

	back := m.ToDomain()
	assert.Equal(t, []uuid.UUID{a, b}, back.ContributingBatchIDs)
	assert.True(t, item.Amount.Equal(back.Amount))
}

func TestSplitIDs_Empty(t *testing.T) {
	assert.Nil(t, splitIDs(""))
	assert.Len(t, splitIDs("not-a-uuid,"+uuid.NewString()), 1)
}

func TestPaymentBatchModel_CarriesAllocations(t *testing.T) {
	now := time.Now()
	batch := &settlement.PaymentBatch{
		BatchNumber: "B-1",
		Status:      settlement.BatchStatusPosted,
		Allocations: []settlement.ReceiptPaymentAllocation{{
			ID:         uuid.New(),
			ReceiptID:  uuid.New(),
			AmountPaid: decimal.RequireFromString("10.00"),
			Status:     settlement.AllocationStatusPosted,
			PostedAt:   &now,
		}},
	}
	batch.ID = uuid.New()
	batch.Version = 3

	m := PaymentBatchModelFromDomain(batch)
	require.Len(t, m.Allocations, 1)
	assert.Equal(t, 3, m.Version)

	back := m.ToDomain()
	assert.Equal(t, batch.ID, back.ID)
	assert.Equal(t, settlement.BatchStatusPosted, back.Status)
	require.Len(t, back.Allocations, 1)
	assert.Equal(t, settlement.AllocationStatusPosted, back.Allocations[0].Status)
}

func TestAll_ListsEveryTable(t *testing.T) {
	assert.Len(t, All(), 11)
}
