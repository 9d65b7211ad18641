package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchLifecycleService drives payment batches from Draft to a terminal state
type BatchLifecycleService struct {
	repos     Repositories
	txScope   TransactionScope
	publisher shared.EventPublisher
	metrics   *telemetry.SettlementMetrics
	logger    *zap.Logger
}

// NewBatchLifecycleService creates a new BatchLifecycleService
func NewBatchLifecycleService(
	repos Repositories,
	txScope TransactionScope,
	publisher shared.EventPublisher,
	metrics *telemetry.SettlementMetrics,
	logger *zap.Logger,
) *BatchLifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchLifecycleService{
		repos:     repos,
		txScope:   txScope,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// CreateBatch creates a Draft batch from the selected receipts. A receipt that
// already has a live allocation for the same payment type is rejected.
func (s *BatchLifecycleService) CreateBatch(ctx context.Context, req CreateBatchRequest, actor string) (*BatchResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_batch", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrActor, actor,
		telemetry.SpanAttrItemCount, len(req.Receipts),
	)

	candidates := make([]settlement.ReceiptCandidate, len(req.Receipts))
	receiptIDs := make([]uuid.UUID, len(req.Receipts))
	for i, r := range req.Receipts {
		candidates[i] = settlement.ReceiptCandidate{
			ReceiptID:     r.ReceiptID,
			ReceiptNumber: r.ReceiptNumber,
			GrowerID:      r.GrowerID,
			GrowerNumber:  r.GrowerNumber,
			GrowerName:    r.GrowerName,
			Amount:        r.Amount,
		}
		receiptIDs[i] = r.ReceiptID
	}

	var batch *settlement.PaymentBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number := strings.TrimSpace(req.BatchNumber)
		if number == "" {
			seq, err := repos.SequenceRepo().Next(ctx, fmt.Sprintf("%s_%d", settlement.SequenceBatch, req.CropYear), 1)
			if err != nil {
				return err
			}
			number = batchNumber(req.CropYear, seq)
		} else {
			exists, err := repos.BatchRepo().ExistsByNumber(ctx, number)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewDomainError(shared.CodeAlreadyExists,
					fmt.Sprintf("Batch number %s is already in use", number))
			}
		}

		if len(receiptIDs) > 0 {
			claimed, err := repos.AllocationRepo().FindLiveByReceipts(ctx, req.PaymentTypeID, receiptIDs)
			if err != nil {
				return err
			}
			if len(claimed) > 0 {
				numbers := make([]string, 0, len(claimed))
				for _, a := range claimed {
					numbers = append(numbers, a.ReceiptNumber)
				}
				return validationError(fmt.Sprintf(
					"Receipts already allocated for payment type %d: %s",
					req.PaymentTypeID, strings.Join(numbers, ", ")))
			}
		}

		b, err := settlement.NewPaymentBatch(settlement.NewBatchParams{
			BatchNumber:   number,
			PaymentTypeID: req.PaymentTypeID,
			BatchDate:     req.BatchDate,
			CropYear:      req.CropYear,
			CutoffDate:    req.CutoffDate,
			Notes:         req.Notes,
		}, candidates, actor)
		if err != nil {
			return err
		}
		if err := repos.BatchRepo().Create(ctx, b); err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, batch)
	s.metrics.RecordBatchTransition(ctx, string(batch.Status))
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, batch.ID,
		telemetry.SpanAttrAmount, batch.TotalAmount,
	)
	s.logger.Info("Payment batch created",
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("total_amount", batch.TotalAmount.StringFixed(2)),
		zap.Int("receipts", batch.TotalReceipts),
		zap.String("actor", actor),
	)

	resp := ToBatchResponse(batch)
	return &resp, nil
}

// GetBatch returns a batch by ID
func (s *BatchLifecycleService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.repos.Batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	resp := ToBatchResponse(batch)
	return &resp, nil
}

// ListBatches returns a page of batch headers
func (s *BatchLifecycleService) ListBatches(ctx context.Context, filter BatchListFilter) (*shared.Paginated[BatchResponse], error) {
	f := settlement.BatchFilter{
		Filter:         shared.DefaultFilter(),
		Status:         settlement.BatchStatus(filter.Status),
		PaymentTypeID:  filter.PaymentTypeID,
		CropYear:       filter.CropYear,
		IncludeDeleted: filter.IncludeDeleted,
	}
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}

	batches, total, err := s.repos.Batches.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToBatchResponses(batches), total, f.Page, f.Limit())
	return &page, nil
}

// GetGuards reports which lifecycle actions are currently allowed
func (s *BatchLifecycleService) GetGuards(ctx context.Context, batchID uuid.UUID) (*BatchGuardsResponse, error) {
	batch, err := s.repos.Batches.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	return &BatchGuardsResponse{
		BatchID:            batch.ID,
		Status:             string(batch.Status),
		CanApprove:         ToGuardResponse(batch.CanApprove()),
		CanProcessPayments: ToGuardResponse(batch.CanProcessPayments()),
		CanVoid:            ToGuardResponse(batch.CanVoid()),
		CanRollback:        ToGuardResponse(batch.CanRollback()),
	}, nil
}

// ListAllocations returns the allocation ledger of a batch with its reversals
func (s *BatchLifecycleService) ListAllocations(ctx context.Context, batchID uuid.UUID) (*BatchLedgerResponse, error) {
	if _, err := s.repos.Batches.FindByID(ctx, batchID); err != nil {
		return nil, err
	}
	allocations, err := s.repos.Allocations.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	reversals, err := s.repos.Allocations.FindReversalsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	resp := &BatchLedgerResponse{
		BatchID:     batchID,
		Allocations: make([]AllocationResponse, len(allocations)),
		Reversals:   make([]ReversalResponse, len(reversals)),
	}
	for i := range allocations {
		resp.Allocations[i] = ToAllocationResponse(&allocations[i])
	}
	for i := range reversals {
		resp.Reversals[i] = ToReversalResponse(&reversals[i])
	}
	return resp, nil
}

// Approve posts a Draft batch and all its allocations
func (s *BatchLifecycleService) Approve(ctx context.Context, batchID uuid.UUID, actor string) (*BatchResponse, error) {
	return s.transition(ctx, "approve", batchID, actor, func(_ TransactionalRepositories, b *settlement.PaymentBatch) error {
		return b.Approve(actor)
	})
}

// ProcessPayments finalizes a Posted batch
func (s *BatchLifecycleService) ProcessPayments(ctx context.Context, batchID uuid.UUID, actor string) (*BatchResponse, error) {
	return s.transition(ctx, "process_payments", batchID, actor, func(_ TransactionalRepositories, b *settlement.PaymentBatch) error {
		return b.ProcessPayments(actor)
	})
}

// Void cancels a Draft or Posted batch, marking its allocations reversed
func (s *BatchLifecycleService) Void(ctx context.Context, batchID uuid.UUID, reason, actor string) (*BatchResponse, error) {
	return s.transition(ctx, "void", batchID, actor, func(_ TransactionalRepositories, b *settlement.PaymentBatch) error {
		return b.Void(reason, actor)
	})
}

// Rollback voids a Draft or Posted batch and writes one compensating
// reversal per allocation. The receipts become eligible for a new batch.
func (s *BatchLifecycleService) Rollback(ctx context.Context, batchID uuid.UUID, reason, actor string) (*BatchResponse, error) {
	return s.transition(ctx, "rollback", batchID, actor, func(repos TransactionalRepositories, b *settlement.PaymentBatch) error {
		reversals, err := b.Rollback(reason, actor)
		if err != nil {
			return err
		}
		if len(reversals) == 0 {
			return nil
		}
		return repos.AllocationRepo().SaveReversals(ctx, reversals)
	})
}

// DeleteDraft soft-deletes an unapproved batch
func (s *BatchLifecycleService) DeleteDraft(ctx context.Context, batchID uuid.UUID, reason, actor string) (*BatchResponse, error) {
	return s.transition(ctx, "delete_draft", batchID, actor, func(_ TransactionalRepositories, b *settlement.PaymentBatch) error {
		return b.DeleteDraft(reason, actor)
	})
}

// transition loads the batch, applies fn and saves it with a version check,
// all inside one transaction. Events are published only after commit.
func (s *BatchLifecycleService) transition(
	ctx context.Context,
	op string,
	batchID uuid.UUID,
	actor string,
	fn func(repos TransactionalRepositories, b *settlement.PaymentBatch) error,
) (*BatchResponse, error) {
	started := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "payment_batch", op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBatchID, batchID,
		telemetry.SpanAttrActor, actor,
	)

	var batch *settlement.PaymentBatch
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		b, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if err := fn(repos, b); err != nil {
			return err
		}
		if err := repos.BatchRepo().SaveWithLock(ctx, b); err != nil {
			return err
		}
		batch = b
		return nil
	})
	s.metrics.ObserveOperation(ctx, "payment_batch."+op, started, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Payment batch transition rejected",
			zap.String("operation", op),
			zap.String("batch_id", batchID.String()),
			zap.String("actor", actor),
			zap.Error(err),
		)
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, batch)
	s.metrics.RecordBatchTransition(ctx, string(batch.Status))
	telemetry.SetAttributes(span, telemetry.SpanAttrBatchStatus, string(batch.Status))
	s.logger.Info("Payment batch transitioned",
		zap.String("operation", op),
		zap.String("batch_id", batch.ID.String()),
		zap.String("batch_number", batch.BatchNumber),
		zap.String("status", string(batch.Status)),
		zap.String("total_amount", batch.TotalAmount.StringFixed(2)),
		zap.String("actor", actor),
	)

	resp := ToBatchResponse(batch)
	return &resp, nil
}
