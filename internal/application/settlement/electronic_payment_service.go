package settlement

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BankFileArchive stores generated bank files and returns a reference to them
type BankFileArchive interface {
	Archive(ctx context.Context, key string, content []byte) (string, error)
}

// ElectronicPaymentService hands generated payments to the bank file
// generator and records the outcome
type ElectronicPaymentService struct {
	repos     Repositories
	txScope   TransactionScope
	archive   BankFileArchive
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewElectronicPaymentService creates a new ElectronicPaymentService.
// With a nil archive the file name itself is used as the reference.
func NewElectronicPaymentService(
	repos Repositories,
	txScope TransactionScope,
	archive BankFileArchive,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ElectronicPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElectronicPaymentService{
		repos:     repos,
		txScope:   txScope,
		archive:   archive,
		publisher: publisher,
		logger:    logger,
	}
}

// ListGenerated returns the payments waiting to be written to a bank file
func (s *ElectronicPaymentService) ListGenerated(ctx context.Context) ([]ElectronicPaymentResponse, error) {
	payments, err := s.repos.ElectronicPayments.FindByStatus(ctx, settlement.ElectronicPaymentStatusGenerated)
	if err != nil {
		return nil, err
	}
	out := make([]ElectronicPaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToElectronicPaymentResponse(&payments[i])
	}
	return out, nil
}

// ConfirmFileGenerated archives the bank file and marks every listed payment
// processed. Status changes commit together or not at all.
func (s *ElectronicPaymentService) ConfirmFileGenerated(ctx context.Context, req ConfirmBankFileRequest, actor string) ([]ElectronicPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "electronic_payment", "confirm_file")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrItemCount, len(req.PaymentIDs),
		telemetry.SpanAttrActor, actor,
	)

	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		return nil, validationError("File name is required")
	}
	if len(req.PaymentIDs) == 0 {
		return nil, validationError("At least one payment must be confirmed")
	}
	if strings.TrimSpace(actor) == "" {
		return nil, validationError("Actor is required")
	}

	reference := fileName
	if s.archive != nil && len(req.Content) > 0 {
		key := path.Join("bank-files", time.Now().UTC().Format("2006/01/02"), path.Base(fileName))
		ref, err := s.archive.Archive(ctx, key, req.Content)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to archive bank file: %w", err)
		}
		reference = ref
	}

	var payments []settlement.ElectronicPayment
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.ElectronicPaymentRepo().FindByIDs(ctx, req.PaymentIDs)
		if err != nil {
			return err
		}
		for i := range found {
			if err := found[i].MarkProcessed(reference, actor); err != nil {
				return err
			}
			if err := repos.ElectronicPaymentRepo().SaveWithLock(ctx, &found[i]); err != nil {
				return err
			}
		}
		payments = found
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	out := make([]ElectronicPaymentResponse, len(payments))
	for i := range payments {
		publishEvents(ctx, s.publisher, s.logger, &payments[i])
		out[i] = ToElectronicPaymentResponse(&payments[i])
	}
	s.logger.Info("Bank file confirmed",
		zap.String("file_reference", reference),
		zap.Int("payments", len(payments)),
		zap.String("actor", actor),
	)
	return out, nil
}

// MarkFailed records a payment the bank rejected or that could not be sent.
// By default the distribution item is reopened so ResumeGeneration issues a
// replacement payment. With reverseAccounting the grower's allocations are
// released and the item's advance deductions restored instead, so the grower
// becomes payable in a new distribution.
func (s *ElectronicPaymentService) MarkFailed(ctx context.Context, paymentID uuid.UUID, reason string, reverseAccounting bool, actor string) (*ElectronicPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "electronic_payment", "mark_failed")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, paymentID,
		telemetry.SpanAttrActor, actor,
	)
	if strings.TrimSpace(actor) == "" {
		return nil, validationError("Actor is required")
	}

	var (
		payment  *settlement.ElectronicPayment
		released []*settlement.PaymentBatch
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ElectronicPaymentRepo().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := p.MarkFailed(reason); err != nil {
			return err
		}
		if err := repos.ElectronicPaymentRepo().SaveWithLock(ctx, p); err != nil {
			return err
		}

		d, err := repos.DistributionRepo().FindByID(ctx, p.DistributionID)
		if err != nil {
			return err
		}
		if reverseAccounting {
			released, err = reverseItemAccounting(ctx, repos, d, p.DistributionItemID, p.GrowerID, settlement.ReversalSourcePaymentFailed, reason, actor)
			if err != nil {
				return err
			}
		} else {
			if err := d.ReopenItem(p.DistributionItemID, reason); err != nil {
				return err
			}
			if err := repos.DistributionRepo().SaveWithLock(ctx, d); err != nil {
				return err
			}
		}
		payment = p
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, b := range released {
		publishEvents(ctx, s.publisher, s.logger, b)
	}
	s.logger.Info("Electronic payment failed",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("reason", reason),
		zap.Bool("reverse_accounting", reverseAccounting),
		zap.String("actor", actor),
	)
	resp := ToElectronicPaymentResponse(payment)
	return &resp, nil
}

// GetPayment returns an electronic payment by ID
func (s *ElectronicPaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*ElectronicPaymentResponse, error) {
	p, err := s.repos.ElectronicPayments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	resp := ToElectronicPaymentResponse(p)
	return &resp, nil
}

// ListByDistribution returns the electronic payments issued by a distribution
func (s *ElectronicPaymentService) ListByDistribution(ctx context.Context, distributionID uuid.UUID) ([]ElectronicPaymentResponse, error) {
	payments, err := s.repos.ElectronicPayments.FindByDistribution(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	out := make([]ElectronicPaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToElectronicPaymentResponse(&payments[i])
	}
	return out, nil
}
