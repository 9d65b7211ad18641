package settlement

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reverseDeductions restores every live deduction row to its advance and
// marks the rows reversed. Returns the total restored.
func reverseDeductions(
	ctx context.Context,
	repos TransactionalRepositories,
	deductions []settlement.AdvanceDeduction,
	reason, actor string,
) (decimal.Decimal, error) {
	restored := decimal.Zero
	live := make([]*settlement.AdvanceDeduction, 0, len(deductions))
	ids := make([]uuid.UUID, 0, len(deductions))
	seen := make(map[uuid.UUID]struct{})
	for i := range deductions {
		if deductions[i].Reversed {
			continue
		}
		live = append(live, &deductions[i])
		if _, ok := seen[deductions[i].AdvanceChequeID]; !ok {
			seen[deductions[i].AdvanceChequeID] = struct{}{}
			ids = append(ids, deductions[i].AdvanceChequeID)
		}
	}
	if len(live) == 0 {
		return restored, nil
	}

	advances, err := repos.AdvanceRepo().FindByIDs(ctx, ids)
	if err != nil {
		return restored, err
	}
	byID := make(map[uuid.UUID]*settlement.AdvanceCheque, len(advances))
	for i := range advances {
		byID[advances[i].ID] = &advances[i]
	}

	for _, d := range live {
		adv, ok := byID[d.AdvanceChequeID]
		if !ok {
			return restored, validationError("Advance " + d.AdvanceChequeNo + " referenced by a deduction no longer exists")
		}
		if err := adv.ReverseDeduction(d.Amount); err != nil {
			return restored, err
		}
		if err := d.Reverse(reason, actor); err != nil {
			return restored, err
		}
		if err := repos.AdvanceRepo().UpdateDeduction(ctx, d); err != nil {
			return restored, err
		}
		restored = restored.Add(d.Amount)
	}
	for _, id := range ids {
		if err := repos.AdvanceRepo().SaveWithLock(ctx, byID[id]); err != nil {
			return restored, err
		}
	}
	return restored, nil
}

// reverseItemAccounting releases the grower's allocations in every batch the
// item drew from, restores the item's advance deductions and voids the item.
// Returns the batches that changed.
func reverseItemAccounting(
	ctx context.Context,
	repos TransactionalRepositories,
	d *settlement.PaymentDistribution,
	itemID, growerID uuid.UUID,
	source settlement.ReversalSource,
	reason, actor string,
) ([]*settlement.PaymentBatch, error) {
	item, err := d.Item(itemID)
	if err != nil {
		return nil, err
	}

	batchIDs := item.ContributingBatchIDs
	if len(batchIDs) == 0 {
		batchIDs = []uuid.UUID{item.PaymentBatchID}
	}
	released := make([]*settlement.PaymentBatch, 0, len(batchIDs))
	for _, batchID := range batchIDs {
		b, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return nil, err
		}
		reversals, err := b.ReleaseGrower(growerID, source, reason, actor)
		if err != nil {
			return nil, err
		}
		if len(reversals) == 0 {
			continue
		}
		if err := repos.AllocationRepo().SaveReversals(ctx, reversals); err != nil {
			return nil, err
		}
		if err := repos.BatchRepo().SaveWithLock(ctx, b); err != nil {
			return nil, err
		}
		released = append(released, b)
	}

	deductions, err := repos.AdvanceRepo().FindDeductionsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if _, err := reverseDeductions(ctx, repos, deductions, reason, actor); err != nil {
		return nil, err
	}

	if err := d.VoidItem(item.ID); err != nil {
		return nil, err
	}
	if err := repos.DistributionRepo().SaveItem(ctx, item); err != nil {
		return nil, err
	}
	return released, nil
}
