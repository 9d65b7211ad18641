package settlement

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
)

// TransactionScope runs a unit of work against settlement repositories that
// share one database transaction. Returning an error from fn rolls back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes every settlement repository bound to the
// current transaction.
//
// Batches own their allocations; allocation rows are only written through
// BatchRepo. AllocationRepo is used for cross-batch receipt checks and for the
// append-only reversal ledger.
type TransactionalRepositories interface {
	BatchRepo() settlement.PaymentBatchRepository
	AllocationRepo() settlement.AllocationRepository
	AdvanceRepo() settlement.AdvanceRepository
	DistributionRepo() settlement.DistributionRepository
	ChequeRepo() settlement.ChequeRepository
	ElectronicPaymentRepo() settlement.ElectronicPaymentRepository
	SequenceRepo() settlement.SequenceRepository
}

// Repositories is a plain set of repositories. It serves reads outside a
// transaction and backs NoOpTransactionScope.
type Repositories struct {
	Batches            settlement.PaymentBatchRepository
	Allocations        settlement.AllocationRepository
	Advances           settlement.AdvanceRepository
	Distributions      settlement.DistributionRepository
	Cheques            settlement.ChequeRepository
	ElectronicPayments settlement.ElectronicPaymentRepository
	Sequences          settlement.SequenceRepository
}

func (r Repositories) BatchRepo() settlement.PaymentBatchRepository    { return r.Batches }
func (r Repositories) AllocationRepo() settlement.AllocationRepository { return r.Allocations }
func (r Repositories) AdvanceRepo() settlement.AdvanceRepository       { return r.Advances }
func (r Repositories) ChequeRepo() settlement.ChequeRepository         { return r.Cheques }
func (r Repositories) SequenceRepo() settlement.SequenceRepository     { return r.Sequences }
func (r Repositories) DistributionRepo() settlement.DistributionRepository {
	return r.Distributions
}
func (r Repositories) ElectronicPaymentRepo() settlement.ElectronicPaymentRepository {
	return r.ElectronicPayments
}

// NoOpTransactionScope runs fn directly against the given repositories.
// Useful for tests and single-statement stores.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope.
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute calls fn without a transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}
