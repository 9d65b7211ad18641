package settlement

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared/valueobject"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DistributionService turns posted batches into cheques or electronic payments
type DistributionService struct {
	repos     Repositories
	txScope   TransactionScope
	locker    BatchLocker
	engine    *settlement.ConsolidationEngine
	strategy  settlement.AdvanceDeductionStrategy
	publisher shared.EventPublisher
	metrics   *telemetry.SettlementMetrics
	logger    *zap.Logger
	opts      Options
}

// NewDistributionService creates a new DistributionService.
// A nil locker disables the in-flight gate; the database checks still apply.
func NewDistributionService(
	repos Repositories,
	txScope TransactionScope,
	locker BatchLocker,
	publisher shared.EventPublisher,
	metrics *telemetry.SettlementMetrics,
	logger *zap.Logger,
	opts Options,
) *DistributionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DistributionService{
		repos:     repos,
		txScope:   txScope,
		locker:    locker,
		engine:    settlement.NewConsolidationEngine(),
		strategy:  settlement.NewFIFOAdvanceDeductionStrategy(),
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

type distributionInput struct {
	distType   settlement.DistributionType
	method     settlement.PaymentMethod
	batchIDs   []uuid.UUID
	date       time.Time
	mode       DeductionMode
	deductions map[uuid.UUID]decimal.Decimal
	policy     OverDeductionPolicy
}

type growerDeduction struct {
	growerID     uuid.UUID
	growerNumber string
	gross        decimal.Decimal
	requested    decimal.Decimal
	withheld     decimal.Decimal
	plan         *settlement.DeductionPlan
	advances     []settlement.AdvanceCheque
}

type distributionPlan struct {
	input         *distributionInput
	batches       []settlement.PaymentBatch
	consolidation *settlement.Consolidation
	lines         []settlement.DistributionLine
	growers       []*growerDeduction
	byGrower      map[uuid.UUID]*growerDeduction
	conflicts     []string
	remainders    []string
}

func (p *distributionPlan) warnings() []string {
	out := make([]string, 0, len(p.conflicts)+len(p.remainders))
	for _, number := range p.conflicts {
		out = append(out, fmt.Sprintf("Batch %s already has an active distribution", number))
	}
	return append(out, p.remainders...)
}

func (p *distributionPlan) batchIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.batches))
	for i := range p.batches {
		ids[i] = p.batches[i].ID
	}
	return ids
}

func (s *DistributionService) parseRequest(req DistributionRequest) (*distributionInput, error) {
	in := &distributionInput{
		distType:   settlement.DistributionType(req.DistributionType),
		method:     settlement.PaymentMethod(req.PaymentMethod),
		mode:       DeductionMode(req.DeductionMode),
		policy:     OverDeductionPolicy(req.OverDeductionPolicy),
		deductions: make(map[uuid.UUID]decimal.Decimal, len(req.Deductions)),
		date:       time.Now(),
	}
	if !in.distType.IsValid() {
		return nil, validationError(fmt.Sprintf("Unknown distribution type %q", req.DistributionType))
	}
	if !in.method.IsValid() {
		return nil, validationError(fmt.Sprintf("Unknown payment method %q", req.PaymentMethod))
	}
	if in.mode == "" {
		in.mode = DeductionModeManual
	}
	if !in.mode.IsValid() {
		return nil, validationError(fmt.Sprintf("Unknown deduction mode %q", req.DeductionMode))
	}
	if in.policy == "" {
		in.policy = s.opts.OverDeductionPolicy
	}
	if !in.policy.IsValid() {
		return nil, validationError(fmt.Sprintf("Unknown over-deduction policy %q", req.OverDeductionPolicy))
	}
	if req.DistributionDate != nil && !req.DistributionDate.IsZero() {
		in.date = *req.DistributionDate
	}

	seen := make(map[uuid.UUID]struct{}, len(req.BatchIDs))
	for _, id := range req.BatchIDs {
		if id == uuid.Nil {
			return nil, validationError("Batch ID cannot be empty")
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		in.batchIDs = append(in.batchIDs, id)
	}
	if len(in.batchIDs) == 0 && in.distType != settlement.DistributionTypeAllPending {
		return nil, validationError("At least one batch must be selected")
	}

	if in.mode == DeductionModeFullRecovery && len(req.Deductions) > 0 {
		return nil, validationError("Explicit deductions cannot be combined with full recovery")
	}
	for _, d := range req.Deductions {
		if d.GrowerID == uuid.Nil {
			return nil, validationError("Deduction grower ID cannot be empty")
		}
		if d.Amount.IsNegative() {
			return nil, validationError("Deduction amount cannot be negative")
		}
		if !valueobject.IsCentPrecise(d.Amount) {
			return nil, validationError(fmt.Sprintf("Deduction of %s for grower %s cannot have fractions of a cent", d.Amount, d.GrowerID))
		}
		if _, dup := in.deductions[d.GrowerID]; dup {
			return nil, validationError(fmt.Sprintf("Grower %s has more than one deduction", d.GrowerID))
		}
		in.deductions[d.GrowerID] = d.Amount
	}
	return in, nil
}

// buildPlan loads the selected batches and works out every line and deduction
// without writing anything. With lock set the selected batch rows stay locked
// until repos' transaction ends.
func (s *DistributionService) buildPlan(ctx context.Context, repos TransactionalRepositories, in *distributionInput, lock bool) (*distributionPlan, error) {
	plan := &distributionPlan{input: in, byGrower: make(map[uuid.UUID]*growerDeduction)}

	var err error
	if len(in.batchIDs) == 0 {
		plan.batches, err = repos.BatchRepo().FindDistributable(ctx)
		if err != nil {
			return nil, err
		}
		if len(plan.batches) == 0 {
			return nil, validationError("No batches are pending distribution")
		}
	} else {
		find := repos.BatchRepo().FindByIDs
		if lock {
			find = repos.BatchRepo().FindByIDsForUpdate
		}
		plan.batches, err = find(ctx, in.batchIDs)
		if err != nil {
			return nil, err
		}
	}
	sort.Slice(plan.batches, func(i, j int) bool {
		return plan.batches[i].BatchNumber < plan.batches[j].BatchNumber
	})

	conflicts := make(map[string]struct{})
	numbers := make(map[uuid.UUID]string, len(plan.batches))
	inputs := make([]settlement.BatchAllocations, 0, len(plan.batches))
	for i := range plan.batches {
		b := &plan.batches[i]
		if b.IsDeleted || !b.Status.IsDistributable() {
			return nil, shared.NewDomainError(shared.CodeInvalidStateTransition,
				fmt.Sprintf("Batch %s in %s status cannot be distributed", b.BatchNumber, b.Status))
		}
		if b.HasActiveDistribution() {
			conflicts[b.BatchNumber] = struct{}{}
		}
		numbers[b.ID] = b.BatchNumber
		inputs = append(inputs, settlement.BatchAllocationsOf(b))
	}

	links, err := repos.DistributionRepo().FindActiveBatchLinks(ctx, plan.batchIDs())
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		conflicts[numbers[link.PaymentBatchID]] = struct{}{}
	}
	for number := range conflicts {
		plan.conflicts = append(plan.conflicts, number)
	}
	sort.Strings(plan.conflicts)

	plan.consolidation, err = s.engine.Consolidate(in.distType, inputs)
	if err != nil {
		return nil, err
	}
	if len(plan.consolidation.Lines) == 0 {
		return nil, validationError("No posted allocations found for the selected batches")
	}

	if err := s.planDeductions(ctx, repos, plan); err != nil {
		return nil, err
	}
	s.splitDeductions(plan)
	return plan, nil
}

func (s *DistributionService) planDeductions(ctx context.Context, repos TransactionalRepositories, plan *distributionPlan) error {
	in := plan.input
	for _, line := range plan.consolidation.Lines {
		g, ok := plan.byGrower[line.GrowerID]
		if !ok {
			g = &growerDeduction{
				growerID:     line.GrowerID,
				growerNumber: line.GrowerNumber,
				gross:        decimal.Zero,
				requested:    decimal.Zero,
				withheld:     decimal.Zero,
			}
			plan.byGrower[line.GrowerID] = g
			plan.growers = append(plan.growers, g)
		}
		g.gross = g.gross.Add(line.Amount)
	}

	for growerID, amount := range in.deductions {
		g, ok := plan.byGrower[growerID]
		if !ok {
			return validationError(fmt.Sprintf("Grower %s has no posted allocations in the selected batches", growerID))
		}
		if amount.GreaterThan(g.gross) {
			return validationError(fmt.Sprintf("Deduction of %s for grower %s exceeds the gross payment of %s",
				amount.StringFixed(2), g.growerNumber, g.gross.StringFixed(2)))
		}
		g.requested = amount
	}

	needAdvances := make([]uuid.UUID, 0, len(plan.growers))
	for _, g := range plan.growers {
		if in.mode == DeductionModeFullRecovery || g.requested.IsPositive() {
			needAdvances = append(needAdvances, g.growerID)
		}
	}
	if len(needAdvances) == 0 {
		return nil
	}

	advances, err := repos.AdvanceRepo().FindOutstandingByGrowers(ctx, needAdvances)
	if err != nil {
		return err
	}
	for _, a := range advances {
		if g, ok := plan.byGrower[a.GrowerID]; ok {
			g.advances = append(g.advances, a)
		}
	}

	for _, g := range plan.growers {
		if in.mode == DeductionModeFullRecovery {
			outstanding := decimal.Zero
			for _, a := range g.advances {
				if a.IsOutstanding() {
					outstanding = outstanding.Add(a.CurrentAdvanceAmount)
				}
			}
			g.requested = decimal.Min(outstanding, g.gross)
		}
		if !g.requested.IsPositive() {
			continue
		}
		p, err := s.strategy.Allocate(g.requested, g.advances)
		if err != nil {
			return err
		}
		g.plan = p
		g.withheld = p.TotalApplied
		if p.HasRemainder() {
			plan.remainders = append(plan.remainders, fmt.Sprintf(
				"Deduction of %s for grower %s exceeds outstanding advances of %s by %s",
				g.requested.StringFixed(2), g.growerNumber,
				p.TotalOutstanding.StringFixed(2), p.Remainder.StringFixed(2)))
		}
	}
	return nil
}

// splitDeductions spreads each grower's withheld amount over that grower's
// lines in output order, never exceeding a line's gross.
func (s *DistributionService) splitDeductions(plan *distributionPlan) {
	remaining := make(map[uuid.UUID]decimal.Decimal, len(plan.growers))
	for _, g := range plan.growers {
		remaining[g.growerID] = g.withheld
	}
	plan.lines = make([]settlement.DistributionLine, 0, len(plan.consolidation.Lines))
	for _, line := range plan.consolidation.Lines {
		take := decimal.Min(remaining[line.GrowerID], line.Amount)
		remaining[line.GrowerID] = remaining[line.GrowerID].Sub(take)
		plan.lines = append(plan.lines, settlement.DistributionLine{ConsolidatedLine: line, Deduction: take})
	}
}

// Preview shows what a distribution would pay without writing anything
func (s *DistributionService) Preview(ctx context.Context, req DistributionRequest) (*DistributionPreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "preview")
	defer span.End()

	in, err := s.parseRequest(req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	plan, err := s.buildPlan(ctx, s.repos, in, false)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resp := &DistributionPreviewResponse{
		DistributionType: string(in.distType),
		PaymentMethod:    string(in.method),
		BatchIDs:         plan.batchIDs(),
		Lines:            make([]PreviewLineResponse, 0, len(plan.lines)),
		Deductions:       make([]GrowerDeductionResponse, 0),
		TotalGross:       decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNet:         decimal.Zero,
		TotalGrowers:     plan.consolidation.TotalGrowers,
		TotalBatches:     len(plan.batches),
		Warnings:         plan.warnings(),
	}
	for _, l := range plan.lines {
		net := l.Amount.Sub(l.Deduction)
		resp.Lines = append(resp.Lines, PreviewLineResponse{
			GrowerID:      l.GrowerID,
			GrowerNumber:  l.GrowerNumber,
			GrowerName:    l.GrowerName,
			BatchNumbers:  l.BatchLabel(),
			ReceiptCount:  l.ReceiptCount,
			GrossAmount:   l.Amount,
			Deduction:     l.Deduction,
			NetAmount:     net,
			AnchorReceipt: l.AnchorReceiptNumber,
		})
		resp.TotalGross = resp.TotalGross.Add(l.Amount)
		resp.TotalDeductions = resp.TotalDeductions.Add(l.Deduction)
		resp.TotalNet = resp.TotalNet.Add(net)
	}
	for _, g := range plan.growers {
		if g.plan == nil {
			continue
		}
		gd := GrowerDeductionResponse{
			GrowerID:         g.growerID,
			GrowerNumber:     g.growerNumber,
			Gross:            g.gross,
			Requested:        g.requested,
			TotalOutstanding: g.plan.TotalOutstanding,
			Applied:          g.plan.TotalApplied,
			Remainder:        g.plan.Remainder,
		}
		for _, e := range g.plan.Effects {
			gd.Effects = append(gd.Effects, DeductionEffectResponse(e))
		}
		resp.Deductions = append(resp.Deductions, gd)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrDistributionType, string(in.distType),
		telemetry.SpanAttrAmount, resp.TotalNet,
		telemetry.SpanAttrItemCount, len(resp.Lines),
	)
	return resp, nil
}

// CreateAndGenerate persists a distribution with its advance deductions and
// then issues one instrument per item. Items that fail stay resumable.
func (s *DistributionService) CreateAndGenerate(ctx context.Context, req DistributionRequest, actor string) (*DistributionResult, error) {
	started := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDistributionType, req.DistributionType,
		telemetry.SpanAttrPaymentMethod, req.PaymentMethod,
		telemetry.SpanAttrActor, actor,
	)

	d, plan, err := s.create(ctx, req, actor)
	s.metrics.ObserveOperation(ctx, "distribution.create", started, err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Distribution rejected",
			zap.String("distribution_type", req.DistributionType),
			zap.String("actor", actor),
			zap.Error(err),
		)
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, d)
	s.metrics.RecordDistributionCreated(ctx, string(d.DistributionType), string(d.PaymentMethod), d.TotalAmount, d.TotalDeductions)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDistributionID, d.ID,
		telemetry.SpanAttrAmount, d.TotalAmount,
	)
	s.logger.Info("Distribution created",
		zap.String("distribution_id", d.ID.String()),
		zap.String("distribution_number", d.DistributionNumber),
		zap.String("total_gross", d.TotalGross.StringFixed(2)),
		zap.String("total_deductions", d.TotalDeductions.StringFixed(2)),
		zap.String("total_amount", d.TotalAmount.StringFixed(2)),
		zap.Int("items", len(d.Items)),
		zap.String("actor", actor),
	)

	result, err := s.generate(ctx, d, actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	result.Warnings = plan.remainders
	return result, nil
}

func (s *DistributionService) create(ctx context.Context, req DistributionRequest, actor string) (*settlement.PaymentDistribution, *distributionPlan, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, nil, validationError("Actor is required")
	}
	in, err := s.parseRequest(req)
	if err != nil {
		return nil, nil, err
	}
	if len(in.batchIDs) == 0 {
		pending, err := s.repos.Batches.FindDistributable(ctx)
		if err != nil {
			return nil, nil, err
		}
		if len(pending) == 0 {
			return nil, nil, validationError("No batches are pending distribution")
		}
		for _, b := range pending {
			in.batchIDs = append(in.batchIDs, b.ID)
		}
	}

	if s.locker != nil {
		lock, err := s.locker.LockBatches(ctx, in.batchIDs, s.opts.LockTTL)
		if err != nil {
			return nil, nil, err
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release batch lock", zap.Error(err))
			}
		}()
	}

	var (
		d    *settlement.PaymentDistribution
		plan *distributionPlan
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := s.buildPlan(ctx, repos, in, true)
		if err != nil {
			return err
		}
		if len(p.conflicts) > 0 {
			return shared.NewDomainError(shared.CodeDuplicateDistribution,
				fmt.Sprintf("Batches already have an active distribution: %s", strings.Join(p.conflicts, ", ")))
		}
		if len(p.remainders) > 0 && in.policy == OverDeductionReject {
			return shared.NewDomainError(shared.CodeOverDeduction, strings.Join(p.remainders, "; "))
		}

		seq, err := repos.SequenceRepo().Next(ctx, settlement.SequenceDistribution, 1)
		if err != nil {
			return err
		}
		refs := make([]settlement.BatchRef, len(p.batches))
		for i := range p.batches {
			refs[i] = settlement.BatchRef{
				ID:            p.batches[i].ID,
				BatchNumber:   p.batches[i].BatchNumber,
				PaymentTypeID: p.batches[i].PaymentTypeID,
			}
		}
		dist, err := settlement.NewPaymentDistribution(distributionNumber(seq), in.distType, in.method, in.date, refs, p.lines, actor)
		if err != nil {
			return err
		}
		if err := repos.DistributionRepo().Create(ctx, dist); err != nil {
			return err
		}

		if err := s.applyDeductions(ctx, repos, dist, p, actor); err != nil {
			return err
		}

		for i := range p.batches {
			if err := p.batches[i].AttachDistribution(dist.ID); err != nil {
				return err
			}
			if err := repos.BatchRepo().SaveWithLock(ctx, &p.batches[i]); err != nil {
				return err
			}
		}
		d, plan = dist, p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return d, plan, nil
}

// applyDeductions draws each item's deduction from the grower's advances in
// FIFO order and persists balances plus one audit row per effect.
func (s *DistributionService) applyDeductions(
	ctx context.Context,
	repos TransactionalRepositories,
	d *settlement.PaymentDistribution,
	plan *distributionPlan,
	actor string,
) error {
	byID := make(map[uuid.UUID]*settlement.AdvanceCheque)
	for _, g := range plan.growers {
		for i := range g.advances {
			byID[g.advances[i].ID] = &g.advances[i]
		}
	}

	var rows []settlement.AdvanceDeduction
	var touched []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for i := range d.Items {
		item := &d.Items[i]
		if !item.DeductionAmount.IsPositive() {
			continue
		}
		g := plan.byGrower[item.GrowerID]
		current := make([]settlement.AdvanceCheque, len(g.advances))
		copy(current, g.advances)

		p, err := s.strategy.Allocate(item.DeductionAmount, current)
		if err != nil {
			return err
		}
		if p.HasRemainder() {
			return shared.NewDomainError(shared.CodeOverDeduction,
				fmt.Sprintf("Deduction for grower %s exceeds outstanding advances", item.GrowerNumber))
		}
		for _, effect := range p.Effects {
			adv := byID[effect.AdvanceID]
			if err := adv.ApplyDeduction(effect); err != nil {
				return err
			}
			rows = append(rows, settlement.NewAdvanceDeduction(effect, item.GrowerID, d.ID, item.ID, actor))
			if _, ok := seen[adv.ID]; !ok {
				seen[adv.ID] = struct{}{}
				touched = append(touched, adv.ID)
			}
		}
	}

	for _, id := range touched {
		if err := repos.AdvanceRepo().SaveWithLock(ctx, byID[id]); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return repos.AdvanceRepo().SaveDeductions(ctx, rows)
}

// ResumeGeneration retries the items of a distribution that are still Draft or Failed
func (s *DistributionService) ResumeGeneration(ctx context.Context, distributionID uuid.UUID, actor string) (*DistributionResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "resume")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDistributionID, distributionID,
		telemetry.SpanAttrActor, actor,
	)

	if strings.TrimSpace(actor) == "" {
		return nil, validationError("Actor is required")
	}
	d, err := s.repos.Distributions.FindByID(ctx, distributionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if s.locker != nil {
		lock, err := s.locker.LockBatches(ctx, d.ActiveBatchIDs(), s.opts.LockTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release batch lock", zap.Error(err))
			}
		}()
	}

	result, err := s.generate(ctx, d, actor)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// generate issues instruments for every pending item, each in its own
// transaction, then settles the distribution status.
func (s *DistributionService) generate(ctx context.Context, d *settlement.PaymentDistribution, actor string) (*DistributionResult, error) {
	if err := d.BeginGeneration(); err != nil {
		return nil, err
	}
	if err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.DistributionRepo().SaveWithLock(ctx, d)
	}); err != nil {
		return nil, err
	}

	issued := make(map[uuid.UUID]int)
	var failures []string
	for _, pending := range d.PendingItems() {
		item, err := d.Item(pending.ID)
		if err != nil {
			return nil, err
		}
		snapshot := *item
		err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			return s.generateItem(ctx, repos, d, item, actor)
		})
		if err != nil {
			*item = snapshot
			failures = append(failures, fmt.Sprintf("%s: %s", item.GrowerNumber, err.Error()))
			s.logger.Warn("Instrument generation failed",
				zap.String("distribution_id", d.ID.String()),
				zap.String("item_id", item.ID.String()),
				zap.String("grower_number", item.GrowerNumber),
				zap.Error(err),
			)
			if markErr := d.MarkItemFailed(item.ID, err.Error()); markErr != nil {
				return nil, markErr
			}
			if saveErr := s.repos.Distributions.SaveItem(ctx, item); saveErr != nil {
				s.logger.Error("Failed to record item failure",
					zap.String("item_id", item.ID.String()),
					zap.Error(saveErr),
				)
			}
			continue
		}
		if item.HasInstrument() {
			for _, batchID := range item.ContributingBatchIDs {
				issued[batchID]++
			}
		}
	}

	d.FinishGeneration()
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.DistributionRepo().SaveWithLock(ctx, d); err != nil {
			return err
		}
		batchIDs := make([]uuid.UUID, 0, len(issued))
		for id := range issued {
			batchIDs = append(batchIDs, id)
		}
		sort.Slice(batchIDs, func(i, j int) bool { return batchIDs[i].String() < batchIDs[j].String() })
		for _, id := range batchIDs {
			b, err := repos.BatchRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			b.RecordInstrumentsGenerated(issued[id])
			if err := repos.BatchRepo().SaveWithLock(ctx, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	generated, failed, pending := d.GenerationSummary()
	s.metrics.RecordGeneration(ctx, string(d.PaymentMethod), generated, failed)
	s.logger.Info("Distribution generation finished",
		zap.String("distribution_id", d.ID.String()),
		zap.String("status", string(d.Status)),
		zap.Int("generated", generated),
		zap.Int("failed", failed),
		zap.Int("pending", pending),
	)

	return &DistributionResult{
		Distribution: ToDistributionResponse(d, true),
		Summary: GenerationSummary{
			Generated: generated,
			Failed:    failed,
			Pending:   pending,
			Failures:  failures,
		},
	}, nil
}

func (s *DistributionService) generateItem(
	ctx context.Context,
	repos TransactionalRepositories,
	d *settlement.PaymentDistribution,
	item *settlement.PaymentDistributionItem,
	actor string,
) error {
	if !item.Amount.IsPositive() {
		if err := d.MarkItemGenerated(item.ID, nil, nil); err != nil {
			return err
		}
		return repos.DistributionRepo().SaveItem(ctx, item)
	}

	switch d.PaymentMethod {
	case settlement.PaymentMethodCheque:
		seq, err := repos.SequenceRepo().Next(ctx, settlement.SequenceCheque, s.opts.ChequeNumberStart)
		if err != nil {
			return err
		}
		cheque, err := settlement.NewCheque(settlement.NewChequeParams{
			ChequeNumber:       chequeNumber(seq),
			ChequeDate:         d.DistributionDate,
			Memo:               fmt.Sprintf("%s %s", s.opts.ChequeMemo, item.BatchNumbers),
			DistributionID:     d.ID,
			DistributionItemID: item.ID,
			GrowerID:           item.GrowerID,
			GrowerNumber:       item.GrowerNumber,
			GrowerName:         item.GrowerName,
			Amount:             item.Amount,
		}, actor)
		if err != nil {
			return err
		}
		if err := repos.ChequeRepo().Create(ctx, cheque); err != nil {
			return err
		}
		if err := d.MarkItemGenerated(item.ID, &cheque.ID, nil); err != nil {
			return err
		}
	case settlement.PaymentMethodElectronic:
		seq, err := repos.SequenceRepo().Next(ctx, settlement.SequenceElectronic, 1)
		if err != nil {
			return err
		}
		payment, err := settlement.NewElectronicPayment(electronicPaymentNumber(seq), *item, actor)
		if err != nil {
			return err
		}
		if err := payment.MarkGenerated(); err != nil {
			return err
		}
		if err := repos.ElectronicPaymentRepo().Create(ctx, payment); err != nil {
			return err
		}
		if err := d.MarkItemGenerated(item.ID, nil, &payment.ID); err != nil {
			return err
		}
	default:
		return validationError(fmt.Sprintf("Unknown payment method %q", d.PaymentMethod))
	}
	return repos.DistributionRepo().SaveItem(ctx, item)
}

// VoidDistribution supersedes a distribution whose instruments are all dead.
// Advance deductions are restored and its batches become distributable again.
func (s *DistributionService) VoidDistribution(ctx context.Context, distributionID uuid.UUID, reason, actor string) (*DistributionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "distribution", "void")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDistributionID, distributionID,
		telemetry.SpanAttrActor, actor,
	)

	var d *settlement.PaymentDistribution
	var restored decimal.Decimal
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		dist, err := repos.DistributionRepo().FindByID(ctx, distributionID)
		if err != nil {
			return err
		}
		if err := s.retireInstruments(ctx, repos, dist, reason); err != nil {
			return err
		}

		deductions, err := repos.AdvanceRepo().FindDeductionsByDistribution(ctx, dist.ID)
		if err != nil {
			return err
		}
		restored, err = reverseDeductions(ctx, repos, deductions, reason, actor)
		if err != nil {
			return err
		}

		batchIDs := dist.ActiveBatchIDs()
		if err := dist.Void(reason, actor); err != nil {
			return err
		}
		if err := repos.DistributionRepo().SaveWithLock(ctx, dist); err != nil {
			return err
		}
		for _, id := range batchIDs {
			b, err := repos.BatchRepo().FindByID(ctx, id)
			if err != nil {
				return err
			}
			b.DetachDistribution(dist.ID)
			if err := repos.BatchRepo().SaveWithLock(ctx, b); err != nil {
				return err
			}
		}
		d = dist
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishEvents(ctx, s.publisher, s.logger, d)
	s.logger.Info("Distribution voided",
		zap.String("distribution_id", d.ID.String()),
		zap.String("distribution_number", d.DistributionNumber),
		zap.String("restored_advances", restored.StringFixed(2)),
		zap.String("reason", reason),
		zap.String("actor", actor),
	)
	resp := ToDistributionResponse(d, true)
	return &resp, nil
}

// retireInstruments refuses to void while a cheque or processed electronic
// payment is live, and fails the electronic payments not yet sent.
func (s *DistributionService) retireInstruments(ctx context.Context, repos TransactionalRepositories, d *settlement.PaymentDistribution, reason string) error {
	cheques, err := repos.ChequeRepo().FindByDistribution(ctx, d.ID)
	if err != nil {
		return err
	}
	for _, c := range cheques {
		if c.Status.IsLive() {
			return shared.NewDomainError(shared.CodeInvalidStateTransition,
				fmt.Sprintf("Cheque %s is still %s; void it before voiding distribution %s",
					c.ChequeNumber, c.Status, d.DistributionNumber))
		}
	}

	payments, err := repos.ElectronicPaymentRepo().FindByDistribution(ctx, d.ID)
	if err != nil {
		return err
	}
	for i := range payments {
		p := &payments[i]
		switch p.Status {
		case settlement.ElectronicPaymentStatusProcessed:
			return shared.NewDomainError(shared.CodeInvalidStateTransition,
				fmt.Sprintf("Electronic payment %s was already sent to the bank", p.PaymentNumber))
		case settlement.ElectronicPaymentStatusPending, settlement.ElectronicPaymentStatusGenerated:
			if err := p.MarkFailed(reason); err != nil {
				return err
			}
			if err := repos.ElectronicPaymentRepo().SaveWithLock(ctx, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetDistribution returns a distribution with its items
func (s *DistributionService) GetDistribution(ctx context.Context, distributionID uuid.UUID) (*DistributionResponse, error) {
	d, err := s.repos.Distributions.FindByID(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	resp := ToDistributionResponse(d, true)
	return &resp, nil
}

// ListDistributions returns a page of distribution headers
func (s *DistributionService) ListDistributions(ctx context.Context, filter DistributionListFilter) (*shared.Paginated[DistributionResponse], error) {
	f := settlement.DistributionFilter{
		Filter:        shared.DefaultFilter(),
		Status:        settlement.DistributionStatus(filter.Status),
		PaymentMethod: settlement.PaymentMethod(filter.PaymentMethod),
		BatchID:       filter.BatchID,
	}
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	items, total, err := s.repos.Distributions.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]DistributionResponse, len(items))
	for i := range items {
		out[i] = ToDistributionResponse(&items[i], false)
	}
	page := shared.NewPaginated(out, total, f.Page, f.Limit())
	return &page, nil
}
