package settlement

import (
	"context"
	"fmt"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdvanceService records advance cheques and exposes their recovery history
type AdvanceService struct {
	repos   Repositories
	txScope TransactionScope
	logger  *zap.Logger
}

// NewAdvanceService creates a new AdvanceService
func NewAdvanceService(repos Repositories, txScope TransactionScope, logger *zap.Logger) *AdvanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdvanceService{repos: repos, txScope: txScope, logger: logger}
}

// IssueAdvance records an advance cheque paid to a grower
func (s *AdvanceService) IssueAdvance(ctx context.Context, req IssueAdvanceRequest, actor string) (*AdvanceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "advance", "issue")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrGrowerID, req.GrowerID,
		telemetry.SpanAttrAmount, req.Amount,
		telemetry.SpanAttrActor, actor,
	)

	var advance *settlement.AdvanceCheque
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.AdvanceRepo().ExistsByChequeNumber(ctx, req.ChequeNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("Advance cheque %s is already recorded", req.ChequeNumber))
		}
		a, err := settlement.NewAdvanceCheque(req.ChequeNumber, req.GrowerID, req.GrowerNumber, req.GrowerName, req.AdvanceDate, req.Amount, actor)
		if err != nil {
			return err
		}
		if err := repos.AdvanceRepo().Create(ctx, a); err != nil {
			return err
		}
		advance = a
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Advance cheque recorded",
		zap.String("cheque_number", advance.ChequeNumber),
		zap.String("grower_number", advance.GrowerNumber),
		zap.String("amount", advance.AdvanceAmount.StringFixed(2)),
		zap.String("actor", actor),
	)
	resp := ToAdvanceResponse(advance)
	return &resp, nil
}

// GetAdvance returns an advance cheque by ID
func (s *AdvanceService) GetAdvance(ctx context.Context, advanceID uuid.UUID) (*AdvanceResponse, error) {
	a, err := s.repos.Advances.FindByID(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	resp := ToAdvanceResponse(a)
	return &resp, nil
}

// ListOutstanding returns a grower's advances that still have a balance, oldest first
func (s *AdvanceService) ListOutstanding(ctx context.Context, growerID uuid.UUID) ([]AdvanceResponse, error) {
	advances, err := s.repos.Advances.FindByGrower(ctx, growerID)
	if err != nil {
		return nil, err
	}
	settlement.SortAdvancesOldestFirst(advances)
	out := make([]AdvanceResponse, 0, len(advances))
	for i := range advances {
		if advances[i].IsOutstanding() {
			out = append(out, ToAdvanceResponse(&advances[i]))
		}
	}
	return out, nil
}

// GetDeductionHistory returns every deduction recorded against an advance
func (s *AdvanceService) GetDeductionHistory(ctx context.Context, advanceID uuid.UUID) ([]AdvanceDeductionResponse, error) {
	if _, err := s.repos.Advances.FindByID(ctx, advanceID); err != nil {
		return nil, err
	}
	rows, err := s.repos.Advances.FindDeductionsByAdvance(ctx, advanceID)
	if err != nil {
		return nil, err
	}
	out := make([]AdvanceDeductionResponse, len(rows))
	for i := range rows {
		out[i] = ToAdvanceDeductionResponse(&rows[i])
	}
	return out, nil
}

// VoidAdvance cancels an advance from which nothing has been recovered
func (s *AdvanceService) VoidAdvance(ctx context.Context, advanceID uuid.UUID, reason, actor string) (*AdvanceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "advance", "void")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrAdvanceID, advanceID, telemetry.SpanAttrActor, actor)

	var advance *settlement.AdvanceCheque
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		a, err := repos.AdvanceRepo().FindByID(ctx, advanceID)
		if err != nil {
			return err
		}
		if err := a.Void(reason, actor); err != nil {
			return err
		}
		if err := repos.AdvanceRepo().SaveWithLock(ctx, a); err != nil {
			return err
		}
		advance = a
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	resp := ToAdvanceResponse(advance)
	return &resp, nil
}
