package persistence

import (
	"context"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in one database transaction. An error from fn, or a
// panic, rolls the transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsettlement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories binds every settlement repository to tx.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) BatchRepo() settlement.PaymentBatchRepository {
	return NewGormPaymentBatchRepository(r.tx)
}

func (r *gormTransactionalRepositories) AllocationRepo() settlement.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) AdvanceRepo() settlement.AdvanceRepository {
	return NewGormAdvanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) DistributionRepo() settlement.DistributionRepository {
	return NewGormDistributionRepository(r.tx)
}

func (r *gormTransactionalRepositories) ChequeRepo() settlement.ChequeRepository {
	return NewGormChequeRepository(r.tx)
}

func (r *gormTransactionalRepositories) ElectronicPaymentRepo() settlement.ElectronicPaymentRepository {
	return NewGormElectronicPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) SequenceRepo() settlement.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

// NewRepositories returns the settlement repositories bound to db, for reads
// outside a transaction.
func NewRepositories(db *gorm.DB) appsettlement.Repositories {
	return appsettlement.Repositories{
		Batches:            NewGormPaymentBatchRepository(db),
		Allocations:        NewGormAllocationRepository(db),
		Advances:           NewGormAdvanceRepository(db),
		Distributions:      NewGormDistributionRepository(db),
		Cheques:            NewGormChequeRepository(db),
		ElectronicPayments: NewGormElectronicPaymentRepository(db),
		Sequences:          NewGormSequenceRepository(db),
	}
}

var (
	_ appsettlement.TransactionScope          = (*GormTransactionScope)(nil)
	_ appsettlement.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
