package settlement

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memStore is an in-memory implementation of every settlement repository.
// It stores copies so services only see changes they explicitly saved.
type memStore struct {
	mu            sync.Mutex
	batches       map[uuid.UUID]*settlement.PaymentBatch
	reversals     []settlement.AllocationReversal
	advances      map[uuid.UUID]*settlement.AdvanceCheque
	deductions    []settlement.AdvanceDeduction
	distributions map[uuid.UUID]*settlement.PaymentDistribution
	cheques       map[uuid.UUID]*settlement.Cheque
	payments      map[uuid.UUID]*settlement.ElectronicPayment
	sequences     map[string]int64

	// lockedReads counts batch reads that asked for row locks
	lockedReads int

	// failChequeFor makes cheque creation fail for the given grower
	failChequeFor map[uuid.UUID]error
}

func newMemStore() *memStore {
	return &memStore{
		batches:       make(map[uuid.UUID]*settlement.PaymentBatch),
		advances:      make(map[uuid.UUID]*settlement.AdvanceCheque),
		distributions: make(map[uuid.UUID]*settlement.PaymentDistribution),
		cheques:       make(map[uuid.UUID]*settlement.Cheque),
		payments:      make(map[uuid.UUID]*settlement.ElectronicPayment),
		sequences:     make(map[string]int64),
		failChequeFor: make(map[uuid.UUID]error),
	}
}

func (s *memStore) repositories() Repositories {
	return Repositories{
		Batches:            &memBatchRepo{s},
		Allocations:        &memAllocationRepo{s},
		Advances:           &memAdvanceRepo{s},
		Distributions:      &memDistributionRepo{s},
		Cheques:            &memChequeRepo{s},
		ElectronicPayments: &memElectronicPaymentRepo{s},
		Sequences:          &memSequenceRepo{s},
	}
}

func cloneBatch(b *settlement.PaymentBatch) *settlement.PaymentBatch {
	c := *b
	c.Allocations = append([]settlement.ReceiptPaymentAllocation(nil), b.Allocations...)
	c.ClearDomainEvents()
	return &c
}

func cloneDistribution(d *settlement.PaymentDistribution) *settlement.PaymentDistribution {
	c := *d
	c.Batches = append([]settlement.PaymentDistributionBatch(nil), d.Batches...)
	c.Items = make([]settlement.PaymentDistributionItem, len(d.Items))
	for i, item := range d.Items {
		item.ContributingBatchIDs = append([]uuid.UUID(nil), item.ContributingBatchIDs...)
		c.Items[i] = item
	}
	c.ClearDomainEvents()
	return &c
}

func cloneAdvance(a *settlement.AdvanceCheque) *settlement.AdvanceCheque {
	c := *a
	c.ClearDomainEvents()
	return &c
}

func cloneCheque(ch *settlement.Cheque) *settlement.Cheque {
	c := *ch
	c.ClearDomainEvents()
	return &c
}

func clonePayment(p *settlement.ElectronicPayment) *settlement.ElectronicPayment {
	c := *p
	c.ClearDomainEvents()
	return &c
}

// ---- batches ----

type memBatchRepo struct{ s *memStore }

func (r *memBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*settlement.PaymentBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneBatch(b), nil
}

func (r *memBatchRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]settlement.PaymentBatch, error) {
	out := make([]settlement.PaymentBatch, 0, len(ids))
	for _, id := range ids {
		b, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBatchRepo) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]settlement.PaymentBatch, error) {
	r.s.mu.Lock()
	r.s.lockedReads++
	r.s.mu.Unlock()
	return r.FindByIDs(ctx, ids)
}

func (r *memBatchRepo) FindByNumber(_ context.Context, number string) (*settlement.PaymentBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.batches {
		if b.BatchNumber == number {
			return cloneBatch(b), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindAll(_ context.Context, filter settlement.BatchFilter) ([]settlement.PaymentBatch, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.PaymentBatch
	for _, b := range r.s.batches {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if b.IsDeleted && !filter.IncludeDeleted {
			continue
		}
		out = append(out, *cloneBatch(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return out, int64(len(out)), nil
}

func (r *memBatchRepo) FindDistributable(_ context.Context) ([]settlement.PaymentBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.PaymentBatch
	for _, b := range r.s.batches {
		if b.Status.IsDistributable() && !b.IsDeleted && !b.HasActiveDistribution() {
			out = append(out, *cloneBatch(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return out, nil
}

func (r *memBatchRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	_, err := r.FindByNumber(ctx, number)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *memBatchRepo) Create(_ context.Context, b *settlement.PaymentBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.batches[b.ID] = cloneBatch(b)
	return nil
}

func (r *memBatchRepo) SaveWithLock(_ context.Context, b *settlement.PaymentBatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.batches[b.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != b.Version {
		return shared.ErrConcurrentModification
	}
	b.Version++
	r.s.batches[b.ID] = cloneBatch(b)
	return nil
}

// ---- allocations ----

type memAllocationRepo struct{ s *memStore }

func (r *memAllocationRepo) FindByBatch(_ context.Context, batchID uuid.UUID) ([]settlement.ReceiptPaymentAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.batches[batchID]
	if !ok {
		return nil, nil
	}
	return append([]settlement.ReceiptPaymentAllocation(nil), b.Allocations...), nil
}

func (r *memAllocationRepo) FindLiveByReceipts(_ context.Context, paymentTypeID int, receiptIDs []uuid.UUID) ([]settlement.ReceiptPaymentAllocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(receiptIDs))
	for _, id := range receiptIDs {
		wanted[id] = struct{}{}
	}
	var out []settlement.ReceiptPaymentAllocation
	for _, b := range r.s.batches {
		if b.PaymentTypeID != paymentTypeID {
			continue
		}
		for _, a := range b.Allocations {
			if _, ok := wanted[a.ReceiptID]; ok && a.Status.IsLive() {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *memAllocationRepo) SaveReversals(_ context.Context, reversals []settlement.AllocationReversal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reversals = append(r.s.reversals, reversals...)
	return nil
}

func (r *memAllocationRepo) FindReversalsByBatch(_ context.Context, batchID uuid.UUID) ([]settlement.AllocationReversal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.AllocationReversal
	for _, rev := range r.s.reversals {
		if rev.PaymentBatchID == batchID {
			out = append(out, rev)
		}
	}
	return out, nil
}

// ---- advances ----

type memAdvanceRepo struct{ s *memStore }

func (r *memAdvanceRepo) FindByID(_ context.Context, id uuid.UUID) (*settlement.AdvanceCheque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.advances[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneAdvance(a), nil
}

func (r *memAdvanceRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]settlement.AdvanceCheque, error) {
	out := make([]settlement.AdvanceCheque, 0, len(ids))
	for _, id := range ids {
		a, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *memAdvanceRepo) FindOutstandingByGrowers(ctx context.Context, growerIDs []uuid.UUID) ([]settlement.AdvanceCheque, error) {
	var out []settlement.AdvanceCheque
	for _, id := range growerIDs {
		advances, _ := r.FindByGrower(ctx, id)
		for _, a := range advances {
			if a.IsOutstanding() {
				out = append(out, a)
			}
		}
	}
	settlement.SortAdvancesOldestFirst(out)
	return out, nil
}

func (r *memAdvanceRepo) FindByGrower(_ context.Context, growerID uuid.UUID) ([]settlement.AdvanceCheque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.AdvanceCheque
	for _, a := range r.s.advances {
		if a.GrowerID == growerID {
			out = append(out, *cloneAdvance(a))
		}
	}
	return out, nil
}

func (r *memAdvanceRepo) ExistsByChequeNumber(_ context.Context, number string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.advances {
		if a.ChequeNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memAdvanceRepo) Create(_ context.Context, a *settlement.AdvanceCheque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.advances[a.ID] = cloneAdvance(a)
	return nil
}

func (r *memAdvanceRepo) SaveWithLock(_ context.Context, a *settlement.AdvanceCheque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.advances[a.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != a.Version {
		return shared.ErrConcurrentModification
	}
	a.Version++
	r.s.advances[a.ID] = cloneAdvance(a)
	return nil
}

func (r *memAdvanceRepo) SaveDeductions(_ context.Context, rows []settlement.AdvanceDeduction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.deductions = append(r.s.deductions, rows...)
	return nil
}

func (r *memAdvanceRepo) UpdateDeduction(_ context.Context, d *settlement.AdvanceDeduction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.deductions {
		if r.s.deductions[i].ID == d.ID {
			r.s.deductions[i] = *d
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memAdvanceRepo) filterDeductions(keep func(settlement.AdvanceDeduction) bool) []settlement.AdvanceDeduction {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.AdvanceDeduction
	for _, d := range r.s.deductions {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func (r *memAdvanceRepo) FindDeductionsByAdvance(_ context.Context, advanceID uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	return r.filterDeductions(func(d settlement.AdvanceDeduction) bool { return d.AdvanceChequeID == advanceID }), nil
}

func (r *memAdvanceRepo) FindDeductionsByItem(_ context.Context, itemID uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	return r.filterDeductions(func(d settlement.AdvanceDeduction) bool { return d.DistributionItemID == itemID }), nil
}

func (r *memAdvanceRepo) FindDeductionsByDistribution(_ context.Context, distributionID uuid.UUID) ([]settlement.AdvanceDeduction, error) {
	return r.filterDeductions(func(d settlement.AdvanceDeduction) bool { return d.DistributionID == distributionID }), nil
}

// ---- distributions ----

type memDistributionRepo struct{ s *memStore }

func (r *memDistributionRepo) FindByID(_ context.Context, id uuid.UUID) (*settlement.PaymentDistribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.distributions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneDistribution(d), nil
}

func (r *memDistributionRepo) FindAll(_ context.Context, filter settlement.DistributionFilter) ([]settlement.PaymentDistribution, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.PaymentDistribution
	for _, d := range r.s.distributions {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		out = append(out, *cloneDistribution(d))
	}
	return out, int64(len(out)), nil
}

func (r *memDistributionRepo) FindActiveBatchLinks(_ context.Context, batchIDs []uuid.UUID) ([]settlement.PaymentDistributionBatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(batchIDs))
	for _, id := range batchIDs {
		wanted[id] = struct{}{}
	}
	var out []settlement.PaymentDistributionBatch
	for _, d := range r.s.distributions {
		for _, link := range d.Batches {
			if _, ok := wanted[link.PaymentBatchID]; ok && link.Active {
				out = append(out, link)
			}
		}
	}
	return out, nil
}

func (r *memDistributionRepo) Create(_ context.Context, d *settlement.PaymentDistribution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.distributions[d.ID] = cloneDistribution(d)
	return nil
}

func (r *memDistributionRepo) SaveWithLock(_ context.Context, d *settlement.PaymentDistribution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.distributions[d.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != d.Version {
		return shared.ErrConcurrentModification
	}
	d.Version++
	r.s.distributions[d.ID] = cloneDistribution(d)
	return nil
}

func (r *memDistributionRepo) SaveItem(_ context.Context, item *settlement.PaymentDistributionItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.distributions[item.DistributionID]
	if !ok {
		return shared.ErrNotFound
	}
	for i := range d.Items {
		if d.Items[i].ID == item.ID {
			copied := *item
			copied.ContributingBatchIDs = append([]uuid.UUID(nil), item.ContributingBatchIDs...)
			d.Items[i] = copied
			return nil
		}
	}
	return shared.ErrNotFound
}

// ---- cheques ----

type memChequeRepo struct{ s *memStore }

func (r *memChequeRepo) FindByID(_ context.Context, id uuid.UUID) (*settlement.Cheque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cheques[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cloneCheque(c), nil
}

func (r *memChequeRepo) FindByNumber(_ context.Context, number string) (*settlement.Cheque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.cheques {
		if c.ChequeNumber == number {
			return cloneCheque(c), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memChequeRepo) FindByDistribution(_ context.Context, distributionID uuid.UUID) ([]settlement.Cheque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.Cheque
	for _, c := range r.s.cheques {
		if c.DistributionID == distributionID {
			out = append(out, *cloneCheque(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChequeNumber < out[j].ChequeNumber })
	return out, nil
}

func (r *memChequeRepo) FindAll(_ context.Context, filter settlement.ChequeFilter) ([]settlement.Cheque, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.Cheque
	for _, c := range r.s.cheques {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.GrowerID != nil && c.GrowerID != *filter.GrowerID {
			continue
		}
		out = append(out, *cloneCheque(c))
	}
	return out, int64(len(out)), nil
}

func (r *memChequeRepo) Create(_ context.Context, c *settlement.Cheque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err, ok := r.s.failChequeFor[c.GrowerID]; ok {
		return err
	}
	r.s.cheques[c.ID] = cloneCheque(c)
	return nil
}

func (r *memChequeRepo) SaveWithLock(_ context.Context, c *settlement.Cheque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.cheques[c.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != c.Version {
		return shared.ErrConcurrentModification
	}
	c.Version++
	r.s.cheques[c.ID] = cloneCheque(c)
	return nil
}

// ---- electronic payments ----

type memElectronicPaymentRepo struct{ s *memStore }

func (r *memElectronicPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*settlement.ElectronicPayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return clonePayment(p), nil
}

func (r *memElectronicPaymentRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]settlement.ElectronicPayment, error) {
	out := make([]settlement.ElectronicPayment, 0, len(ids))
	for _, id := range ids {
		p, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memElectronicPaymentRepo) FindByStatus(_ context.Context, status settlement.ElectronicPaymentStatus) ([]settlement.ElectronicPayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.ElectronicPayment
	for _, p := range r.s.payments {
		if p.Status == status {
			out = append(out, *clonePayment(p))
		}
	}
	return out, nil
}

func (r *memElectronicPaymentRepo) FindByDistribution(_ context.Context, distributionID uuid.UUID) ([]settlement.ElectronicPayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []settlement.ElectronicPayment
	for _, p := range r.s.payments {
		if p.DistributionID == distributionID {
			out = append(out, *clonePayment(p))
		}
	}
	return out, nil
}

func (r *memElectronicPaymentRepo) Create(_ context.Context, p *settlement.ElectronicPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *memElectronicPaymentRepo) SaveWithLock(_ context.Context, p *settlement.ElectronicPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.payments[p.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrentModification
	}
	p.Version++
	r.s.payments[p.ID] = clonePayment(p)
	return nil
}

// ---- sequences ----

type memSequenceRepo struct{ s *memStore }

func (r *memSequenceRepo) Next(_ context.Context, name string, start int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.sequences[name]
	if !ok {
		r.s.sequences[name] = start
		return start, nil
	}
	r.s.sequences[name] = current + 1
	return current + 1, nil
}

// ---- mocks ----

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockBatchLocker is a mock implementation of BatchLocker
type MockBatchLocker struct {
	mock.Mock
}

func (m *MockBatchLocker) LockBatches(ctx context.Context, batchIDs []uuid.UUID, ttl time.Duration) (Unlocker, error) {
	args := m.Called(ctx, batchIDs, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Unlocker), args.Error(1)
}

// MockUnlocker is a mock implementation of Unlocker
type MockUnlocker struct {
	mock.Mock
}

func (m *MockUnlocker) Unlock(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockBankFileArchive is a mock implementation of BankFileArchive
type MockBankFileArchive struct {
	mock.Mock
}

func (m *MockBankFileArchive) Archive(ctx context.Context, key string, content []byte) (string, error) {
	args := m.Called(ctx, key, content)
	return args.String(0), args.Error(1)
}
