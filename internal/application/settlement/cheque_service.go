package settlement

import (
	"context"
	"fmt"
	"strings"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared/valueobject"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChequeService manages issued cheques after generation
type ChequeService struct {
	repos     Repositories
	txScope   TransactionScope
	publisher shared.EventPublisher
	metrics   *telemetry.SettlementMetrics
	logger    *zap.Logger
	opts      Options
}

// NewChequeService creates a new ChequeService
func NewChequeService(
	repos Repositories,
	txScope TransactionScope,
	publisher shared.EventPublisher,
	metrics *telemetry.SettlementMetrics,
	logger *zap.Logger,
	opts Options,
) *ChequeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChequeService{
		repos:     repos,
		txScope:   txScope,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

// GetCheque returns a cheque by ID
func (s *ChequeService) GetCheque(ctx context.Context, chequeID uuid.UUID) (*ChequeResponse, error) {
	c, err := s.repos.Cheques.FindByID(ctx, chequeID)
	if err != nil {
		return nil, err
	}
	resp := ToChequeResponse(c)
	return &resp, nil
}

// ListCheques returns a page of cheques
func (s *ChequeService) ListCheques(ctx context.Context, filter ChequeListFilter) (*shared.Paginated[ChequeResponse], error) {
	f := settlement.ChequeFilter{
		Filter:         shared.DefaultFilter(),
		Status:         settlement.ChequeStatus(filter.Status),
		GrowerID:       filter.GrowerID,
		DistributionID: filter.DistributionID,
	}
	f.Search = filter.Search
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	cheques, total, err := s.repos.Cheques.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ChequeResponse, len(cheques))
	for i := range cheques {
		out[i] = ToChequeResponse(&cheques[i])
	}
	page := shared.NewPaginated(out, total, f.Page, f.Limit())
	return &page, nil
}

// RenderRequest returns the payload an external renderer prints
func (s *ChequeService) RenderRequest(ctx context.Context, chequeID uuid.UUID) (*ChequeRenderPayload, error) {
	c, err := s.repos.Cheques.FindByID(ctx, chequeID)
	if err != nil {
		return nil, err
	}
	if !c.Status.IsLive() {
		return nil, shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Cheque %s in %s status cannot be printed", c.ChequeNumber, c.Status))
	}
	amount, err := valueobject.NewMoney(c.ChequeAmount, valueobject.Currency(s.opts.Currency))
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeValidation, err.Error())
	}
	return &ChequeRenderPayload{
		ChequeNumber: c.ChequeNumber,
		ChequeDate:   c.ChequeDate,
		GrowerNumber: c.GrowerNumber,
		GrowerName:   c.GrowerName,
		Amount:       amount.RoundCents(),
		Memo:         c.Memo,
	}, nil
}

// MarkPrinted records that the cheque was printed
func (s *ChequeService) MarkPrinted(ctx context.Context, chequeID uuid.UUID, actor string) (*ChequeResponse, error) {
	return s.update(ctx, "mark_printed", chequeID, actor, func(_ TransactionalRepositories, c *settlement.Cheque) error {
		return c.MarkPrinted(actor)
	})
}

// MarkDelivered records how the printed cheque was handed over
func (s *ChequeService) MarkDelivered(ctx context.Context, chequeID uuid.UUID, method, actor string) (*ChequeResponse, error) {
	return s.update(ctx, "mark_delivered", chequeID, actor, func(_ TransactionalRepositories, c *settlement.Cheque) error {
		return c.MarkDelivered(method, actor)
	})
}

// Stop records a stop-payment instruction given to the bank
func (s *ChequeService) Stop(ctx context.Context, chequeID uuid.UUID, reason, actor string) (*ChequeResponse, error) {
	return s.update(ctx, "stop", chequeID, actor, func(_ TransactionalRepositories, c *settlement.Cheque) error {
		return c.Stop(reason, actor)
	})
}

// VoidCheque voids a cheque. With reverseAccounting the grower's allocations
// in every contributing batch are released and the item's advance deductions
// are restored, so the grower becomes payable again. Without it the ledger
// stays posted and the cheque can be reissued.
func (s *ChequeService) VoidCheque(ctx context.Context, chequeID uuid.UUID, reason string, reverseAccounting bool, actor string) (*ChequeResponse, error) {
	var batches []*settlement.PaymentBatch
	resp, err := s.update(ctx, "void", chequeID, actor, func(repos TransactionalRepositories, c *settlement.Cheque) error {
		if err := c.Void(reason, reverseAccounting, actor); err != nil {
			return err
		}
		if !reverseAccounting {
			return nil
		}
		released, err := s.reverseAccounting(ctx, repos, c, reason, actor)
		if err != nil {
			return err
		}
		batches = released
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, b := range batches {
		publishEvents(ctx, s.publisher, s.logger, b)
	}
	s.metrics.RecordChequeVoided(ctx, reverseAccounting)
	return resp, nil
}

func (s *ChequeService) reverseAccounting(
	ctx context.Context,
	repos TransactionalRepositories,
	c *settlement.Cheque,
	reason, actor string,
) ([]*settlement.PaymentBatch, error) {
	d, err := repos.DistributionRepo().FindByID(ctx, c.DistributionID)
	if err != nil {
		return nil, err
	}
	return reverseItemAccounting(ctx, repos, d, c.DistributionItemID, c.GrowerID, settlement.ReversalSourceChequeVoid, reason, actor)
}

// Reissue replaces a voided or stopped cheque with a new one for the same
// amount and re-points the distribution item at it
func (s *ChequeService) Reissue(ctx context.Context, chequeID uuid.UUID, reason, actor string) (*ChequeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cheque", "reissue")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChequeID, chequeID,
		telemetry.SpanAttrActor, actor,
	)

	var original, replacement *settlement.Cheque
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.ChequeRepo().FindByID(ctx, chequeID)
		if err != nil {
			return err
		}
		if guard := c.CanReissue(); !guard.Allowed {
			return guard.Err()
		}
		seq, err := repos.SequenceRepo().Next(ctx, settlement.SequenceCheque, s.opts.ChequeNumberStart)
		if err != nil {
			return err
		}
		next, err := c.Reissue(chequeNumber(seq), reason, actor)
		if err != nil {
			return err
		}
		if err := repos.ChequeRepo().Create(ctx, next); err != nil {
			return err
		}
		if err := repos.ChequeRepo().SaveWithLock(ctx, c); err != nil {
			return err
		}

		d, err := repos.DistributionRepo().FindByID(ctx, c.DistributionID)
		if err != nil {
			return err
		}
		if err := d.ReplaceCheque(c.DistributionItemID, next.ID); err != nil {
			return err
		}
		item, err := d.Item(c.DistributionItemID)
		if err != nil {
			return err
		}
		if err := repos.DistributionRepo().SaveItem(ctx, item); err != nil {
			return err
		}
		original, replacement = c, next
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, original, replacement)
	s.logger.Info("Cheque reissued",
		zap.String("original_cheque", original.ChequeNumber),
		zap.String("replacement_cheque", replacement.ChequeNumber),
		zap.String("amount", replacement.ChequeAmount.StringFixed(2)),
		zap.String("actor", actor),
	)
	resp := ToChequeResponse(replacement)
	return &resp, nil
}

func (s *ChequeService) update(
	ctx context.Context,
	op string,
	chequeID uuid.UUID,
	actor string,
	fn func(repos TransactionalRepositories, c *settlement.Cheque) error,
) (*ChequeResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cheque", op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrChequeID, chequeID,
		telemetry.SpanAttrActor, actor,
	)
	if strings.TrimSpace(actor) == "" {
		return nil, validationError("Actor is required")
	}

	var cheque *settlement.Cheque
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.ChequeRepo().FindByID(ctx, chequeID)
		if err != nil {
			return err
		}
		if err := fn(repos, c); err != nil {
			return err
		}
		if err := repos.ChequeRepo().SaveWithLock(ctx, c); err != nil {
			return err
		}
		cheque = c
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Cheque update rejected",
			zap.String("operation", op),
			zap.String("cheque_id", chequeID.String()),
			zap.String("actor", actor),
			zap.Error(err),
		)
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, cheque)
	s.logger.Info("Cheque updated",
		zap.String("operation", op),
		zap.String("cheque_number", cheque.ChequeNumber),
		zap.String("status", string(cheque.Status)),
		zap.String("actor", actor),
	)
	resp := ToChequeResponse(cheque)
	return &resp, nil
}
