package settlement

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchRef identifies a batch contributing to a consolidation
type BatchRef struct {
	ID            uuid.UUID `json:"id"`
	BatchNumber   string    `json:"batch_number"`
	PaymentTypeID int       `json:"payment_type_id"`
}

// BatchAllocations is a batch together with its allocation ledger entries
type BatchAllocations struct {
	Batch       BatchRef
	Allocations []ReceiptPaymentAllocation
}

// BatchAllocationsOf builds the consolidation input for a loaded batch
func BatchAllocationsOf(b *PaymentBatch) BatchAllocations {
	return BatchAllocations{
		Batch:       BatchRef{ID: b.ID, BatchNumber: b.BatchNumber, PaymentTypeID: b.PaymentTypeID},
		Allocations: b.Allocations,
	}
}

// ConsolidatedLine is one payable amount for a grower
type ConsolidatedLine struct {
	GrowerID            uuid.UUID       `json:"grower_id"`
	GrowerNumber        string          `json:"grower_number"`
	GrowerName          string          `json:"grower_name"`
	AnchorBatchID       uuid.UUID       `json:"anchor_batch_id"`
	AnchorReceiptID     uuid.UUID       `json:"anchor_receipt_id"`
	AnchorReceiptNumber string          `json:"anchor_receipt_number"`
	BatchIDs            []uuid.UUID     `json:"batch_ids"`
	BatchNumbers        []string        `json:"batch_numbers"`
	ReceiptCount        int             `json:"receipt_count"`
	Amount              decimal.Decimal `json:"amount"`
}

// BatchLabel returns the contributing batch numbers comma-joined
func (l ConsolidatedLine) BatchLabel() string {
	return strings.Join(l.BatchNumbers, ", ")
}

// Consolidation is the ordered output of the consolidation engine
type Consolidation struct {
	Type         DistributionType   `json:"type"`
	Lines        []ConsolidatedLine `json:"lines"`
	Batches      []BatchRef         `json:"batches"`
	TotalAmount  decimal.Decimal    `json:"total_amount"`
	TotalGrowers int                `json:"total_growers"`
	TotalBatches int                `json:"total_batches"`
}

// GrowerTotals sums line amounts per grower
func (c *Consolidation) GrowerTotals() map[uuid.UUID]decimal.Decimal {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, l := range c.Lines {
		totals[l.GrowerID] = totals[l.GrowerID].Add(l.Amount)
	}
	return totals
}

// ConsolidationEngine turns per-receipt allocations into per-grower payment lines.
// It is a pure function of its input: batch and allocation order do not affect
// the output.
type ConsolidationEngine struct{}

// NewConsolidationEngine creates a consolidation engine
func NewConsolidationEngine() *ConsolidationEngine {
	return &ConsolidationEngine{}
}

type lineKey struct {
	grower uuid.UUID
	batch  uuid.UUID
}

// Consolidate builds payment lines from the posted allocations of the given batches.
// AllPending groups exactly like ByGrower; the caller chooses the batch set.
func (e *ConsolidationEngine) Consolidate(distType DistributionType, input []BatchAllocations) (*Consolidation, error) {
	if !distType.IsValid() {
		return nil, validationError("Unknown distribution type %q", distType)
	}

	batches := make([]BatchAllocations, len(input))
	copy(batches, input)
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].Batch.BatchNumber != batches[j].Batch.BatchNumber {
			return batches[i].Batch.BatchNumber < batches[j].Batch.BatchNumber
		}
		return batches[i].Batch.ID.String() < batches[j].Batch.ID.String()
	})

	perBatch := distType == DistributionTypeByBatch
	lines := make(map[lineKey]*ConsolidatedLine)
	order := make([]lineKey, 0)
	contributing := make(map[uuid.UUID]BatchRef)
	growers := make(map[uuid.UUID]struct{})

	for _, ba := range batches {
		allocs := make([]ReceiptPaymentAllocation, 0, len(ba.Allocations))
		for _, a := range ba.Allocations {
			if a.IsPosted() && a.AmountPaid.IsPositive() {
				allocs = append(allocs, a)
			}
		}
		sort.SliceStable(allocs, func(i, j int) bool {
			if allocs[i].ReceiptNumber != allocs[j].ReceiptNumber {
				return allocs[i].ReceiptNumber < allocs[j].ReceiptNumber
			}
			return allocs[i].ReceiptID.String() < allocs[j].ReceiptID.String()
		})

		for _, a := range allocs {
			key := lineKey{grower: a.GrowerID}
			if perBatch {
				key.batch = ba.Batch.ID
			}
			line, ok := lines[key]
			if !ok {
				line = &ConsolidatedLine{
					GrowerID:            a.GrowerID,
					GrowerNumber:        a.GrowerNumber,
					GrowerName:          a.GrowerName,
					AnchorBatchID:       ba.Batch.ID,
					AnchorReceiptID:     a.ReceiptID,
					AnchorReceiptNumber: a.ReceiptNumber,
					Amount:              decimal.Zero,
				}
				lines[key] = line
				order = append(order, key)
			}
			if len(line.BatchIDs) == 0 || line.BatchIDs[len(line.BatchIDs)-1] != ba.Batch.ID {
				line.BatchIDs = append(line.BatchIDs, ba.Batch.ID)
				line.BatchNumbers = append(line.BatchNumbers, ba.Batch.BatchNumber)
			}
			line.Amount = line.Amount.Add(a.AmountPaid)
			line.ReceiptCount++
			contributing[ba.Batch.ID] = ba.Batch
			growers[a.GrowerID] = struct{}{}
		}
	}

	result := &Consolidation{
		Type:         distType,
		Lines:        make([]ConsolidatedLine, 0, len(order)),
		Batches:      make([]BatchRef, 0, len(contributing)),
		TotalAmount:  decimal.Zero,
		TotalGrowers: len(growers),
		TotalBatches: len(contributing),
	}
	for _, key := range order {
		line := *lines[key]
		result.Lines = append(result.Lines, line)
		result.TotalAmount = result.TotalAmount.Add(line.Amount)
	}
	sort.SliceStable(result.Lines, func(i, j int) bool {
		a, b := result.Lines[i], result.Lines[j]
		if a.GrowerNumber != b.GrowerNumber {
			return a.GrowerNumber < b.GrowerNumber
		}
		if a.GrowerID != b.GrowerID {
			return a.GrowerID.String() < b.GrowerID.String()
		}
		return a.BatchLabel() < b.BatchLabel()
	})
	for _, ba := range batches {
		if ref, ok := contributing[ba.Batch.ID]; ok {
			result.Batches = append(result.Batches, ref)
			delete(contributing, ba.Batch.ID)
		}
	}

	return result, nil
}
