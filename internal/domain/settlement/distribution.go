package settlement

import (
	"fmt"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentDistributionBatch links a distribution to a batch it pays.
// A batch has at most one active link at a time.
type PaymentDistributionBatch struct {
	ID             uuid.UUID
	DistributionID uuid.UUID
	PaymentBatchID uuid.UUID
	BatchNumber    string
	Active         bool
	CreatedAt      time.Time
	DeactivatedAt  *time.Time
}

// PaymentDistributionItem is one payable line of a distribution
type PaymentDistributionItem struct {
	ID                   uuid.UUID
	DistributionID       uuid.UUID
	Sequence             int
	GrowerID             uuid.UUID
	GrowerNumber         string
	GrowerName           string
	PaymentBatchID       uuid.UUID
	ReceiptID            uuid.UUID
	BatchNumbers         string
	ContributingBatchIDs []uuid.UUID
	GrossAmount          decimal.Decimal
	DeductionAmount      decimal.Decimal
	Amount               decimal.Decimal
	PaymentMethod        PaymentMethod
	Status               ItemStatus
	ChequeID             *uuid.UUID
	ElectronicPaymentID  *uuid.UUID
	GeneratedAt          *time.Time
	FailureReason        string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// HasInstrument reports whether a cheque or electronic payment was issued
func (i *PaymentDistributionItem) HasInstrument() bool {
	return i.ChequeID != nil || i.ElectronicPaymentID != nil
}

// DistributionLine is a consolidated line with its deduction decided
type DistributionLine struct {
	ConsolidatedLine
	Deduction decimal.Decimal
}

// PaymentDistribution records how consolidated amounts were turned into instruments
type PaymentDistribution struct {
	shared.BaseAggregateRoot
	DistributionNumber string
	DistributionType   DistributionType
	PaymentMethod      PaymentMethod
	DistributionDate   time.Time
	TotalGross         decimal.Decimal
	TotalDeductions    decimal.Decimal
	TotalAmount        decimal.Decimal
	TotalGrowers       int
	TotalBatches       int
	Status             DistributionStatus
	CreatedBy          string
	VoidedAt           *time.Time
	VoidedBy           string
	VoidReason         string
	Batches            []PaymentDistributionBatch
	Items              []PaymentDistributionItem
}

// NewPaymentDistribution builds a Draft distribution with one Draft item per line
func NewPaymentDistribution(
	number string,
	distType DistributionType,
	method PaymentMethod,
	date time.Time,
	batches []BatchRef,
	lines []DistributionLine,
	actor string,
) (*PaymentDistribution, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(number) == "" {
		return nil, validationError("Distribution number cannot be empty")
	}
	if !distType.IsValid() {
		return nil, validationError("Unknown distribution type %q", distType)
	}
	if !method.IsValid() {
		return nil, validationError("Unknown payment method %q", method)
	}
	if len(batches) == 0 {
		return nil, validationError("A distribution must pay at least one batch")
	}
	if len(lines) == 0 {
		return nil, validationError("No posted allocations found for the selected batches")
	}

	d := &PaymentDistribution{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		DistributionNumber: number,
		DistributionType:   distType,
		PaymentMethod:      method,
		DistributionDate:   date,
		TotalGross:         decimal.Zero,
		TotalDeductions:    decimal.Zero,
		TotalAmount:        decimal.Zero,
		TotalBatches:       len(batches),
		Status:             DistributionStatusDraft,
		CreatedBy:          actor,
		Batches:            make([]PaymentDistributionBatch, 0, len(batches)),
		Items:              make([]PaymentDistributionItem, 0, len(lines)),
	}

	for _, b := range batches {
		d.Batches = append(d.Batches, PaymentDistributionBatch{
			ID:             uuid.New(),
			DistributionID: d.ID,
			PaymentBatchID: b.ID,
			BatchNumber:    b.BatchNumber,
			Active:         true,
			CreatedAt:      d.CreatedAt,
		})
	}

	growers := make(map[uuid.UUID]struct{})
	for i, l := range lines {
		if l.Deduction.IsNegative() {
			return nil, validationError("Deduction for grower %s cannot be negative", l.GrowerNumber)
		}
		if err := requireCents(l.Deduction, "Deduction for grower %s", l.GrowerNumber); err != nil {
			return nil, err
		}
		if l.Deduction.GreaterThan(l.Amount) {
			return nil, validationError("Deduction of %s for grower %s exceeds the gross payment of %s",
				l.Deduction.StringFixed(2), l.GrowerNumber, l.Amount.StringFixed(2))
		}
		net := l.Amount.Sub(l.Deduction)
		d.Items = append(d.Items, PaymentDistributionItem{
			ID:                   uuid.New(),
			DistributionID:       d.ID,
			Sequence:             i + 1,
			GrowerID:             l.GrowerID,
			GrowerNumber:         l.GrowerNumber,
			GrowerName:           l.GrowerName,
			PaymentBatchID:       l.AnchorBatchID,
			ReceiptID:            l.AnchorReceiptID,
			BatchNumbers:         l.BatchLabel(),
			ContributingBatchIDs: append([]uuid.UUID(nil), l.BatchIDs...),
			GrossAmount:          l.Amount,
			DeductionAmount:      l.Deduction,
			Amount:               net,
			PaymentMethod:        method,
			Status:               ItemStatusDraft,
			CreatedAt:            d.CreatedAt,
			UpdatedAt:            d.CreatedAt,
		})
		d.TotalGross = d.TotalGross.Add(l.Amount)
		d.TotalDeductions = d.TotalDeductions.Add(l.Deduction)
		d.TotalAmount = d.TotalAmount.Add(net)
		growers[l.GrowerID] = struct{}{}
	}
	d.TotalGrowers = len(growers)

	d.AddDomainEvent(NewPaymentDistributionCreatedEvent(d))
	return d, nil
}

// Item returns the item with the given id
func (d *PaymentDistribution) Item(itemID uuid.UUID) (*PaymentDistributionItem, error) {
	for i := range d.Items {
		if d.Items[i].ID == itemID {
			return &d.Items[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// PendingItems returns the items still waiting for an instrument, in sequence order
func (d *PaymentDistribution) PendingItems() []PaymentDistributionItem {
	out := make([]PaymentDistributionItem, 0)
	for _, item := range d.Items {
		if item.Status.IsPending() {
			out = append(out, item)
		}
	}
	return out
}

// ActiveBatchIDs returns the batches this distribution currently pays
func (d *PaymentDistribution) ActiveBatchIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d.Batches))
	for _, b := range d.Batches {
		if b.Active {
			ids = append(ids, b.PaymentBatchID)
		}
	}
	return ids
}

func (d *PaymentDistribution) ensureOpen() error {
	if d.Status == DistributionStatusVoided {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Distribution %s is voided", d.DistributionNumber))
	}
	return nil
}

// BeginGeneration marks the distribution as generating instruments
func (d *PaymentDistribution) BeginGeneration() error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	if len(d.PendingItems()) == 0 {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Distribution %s has no items left to generate", d.DistributionNumber))
	}
	d.Status = DistributionStatusGenerating
	d.Touch(time.Now())
	return nil
}

// MarkItemGenerated records the instrument issued for an item
func (d *PaymentDistribution) MarkItemGenerated(itemID uuid.UUID, chequeID, electronicPaymentID *uuid.UUID) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	item, err := d.Item(itemID)
	if err != nil {
		return err
	}
	if !item.Status.IsPending() {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Item %d of distribution %s is already %s", item.Sequence, d.DistributionNumber, item.Status))
	}
	now := time.Now()
	item.ChequeID = chequeID
	item.ElectronicPaymentID = electronicPaymentID
	item.Status = ItemStatusGenerated
	if chequeID == nil && electronicPaymentID == nil {
		item.Status = ItemStatusNoPayment
	}
	item.GeneratedAt = &now
	item.FailureReason = ""
	item.UpdatedAt = now
	return nil
}

// MarkItemFailed records a generation failure; the item stays resumable
func (d *PaymentDistribution) MarkItemFailed(itemID uuid.UUID, reason string) error {
	item, err := d.Item(itemID)
	if err != nil {
		return err
	}
	if !item.Status.IsPending() {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Item %d of distribution %s is already %s", item.Sequence, d.DistributionNumber, item.Status))
	}
	item.Status = ItemStatusFailed
	item.FailureReason = truncateReason(reason)
	item.UpdatedAt = time.Now()
	return nil
}

// ReopenItem returns a generated item whose electronic payment failed to the
// resumable state. The failed payment keeps its link to the item for audit.
func (d *PaymentDistribution) ReopenItem(itemID uuid.UUID, reason string) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	item, err := d.Item(itemID)
	if err != nil {
		return err
	}
	if item.Status != ItemStatusGenerated || item.ElectronicPaymentID == nil {
		return shared.NewDomainError(shared.CodeInvalidStateTransition,
			fmt.Sprintf("Item %d of distribution %s is %s and cannot be reopened", item.Sequence, d.DistributionNumber, item.Status))
	}
	now := time.Now()
	item.ElectronicPaymentID = nil
	item.GeneratedAt = nil
	item.Status = ItemStatusFailed
	item.FailureReason = truncateReason(reason)
	item.UpdatedAt = now
	d.FinishGeneration()
	return nil
}

// ReplaceCheque re-points an item at a reissued cheque
func (d *PaymentDistribution) ReplaceCheque(itemID, newChequeID uuid.UUID) error {
	item, err := d.Item(itemID)
	if err != nil {
		return err
	}
	item.ChequeID = &newChequeID
	item.UpdatedAt = time.Now()
	d.Touch(item.UpdatedAt)
	return nil
}

// VoidItem cancels an item whose instrument was voided with reverse accounting
func (d *PaymentDistribution) VoidItem(itemID uuid.UUID) error {
	item, err := d.Item(itemID)
	if err != nil {
		return err
	}
	item.Status = ItemStatusVoided
	item.UpdatedAt = time.Now()
	d.Touch(item.UpdatedAt)
	return nil
}

// FinishGeneration settles the status once a generation pass ends
func (d *PaymentDistribution) FinishGeneration() {
	if d.Status == DistributionStatusVoided {
		return
	}
	done, pending := 0, 0
	for _, item := range d.Items {
		if item.Status.IsPending() {
			pending++
		} else {
			done++
		}
	}
	switch {
	case pending == 0:
		d.Status = DistributionStatusGenerated
	case done > 0:
		d.Status = DistributionStatusPartiallyGenerated
	default:
		d.Status = DistributionStatusDraft
	}
	d.Touch(time.Now())
}

// GenerationSummary counts items by outcome
func (d *PaymentDistribution) GenerationSummary() (generated, failed, pending int) {
	for _, item := range d.Items {
		switch item.Status {
		case ItemStatusGenerated, ItemStatusNoPayment:
			generated++
		case ItemStatusFailed:
			failed++
			pending++
		case ItemStatusDraft:
			pending++
		}
	}
	return generated, failed, pending
}

// Void supersedes the distribution so its batches can be distributed again.
// The caller must first make sure no live instrument remains.
func (d *PaymentDistribution) Void(reason, actor string) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	if err := requireReason(reason); err != nil {
		return err
	}
	if err := requireActor(actor); err != nil {
		return err
	}

	now := time.Now()
	for i := range d.Batches {
		if d.Batches[i].Active {
			d.Batches[i].Active = false
			d.Batches[i].DeactivatedAt = &now
		}
	}
	for i := range d.Items {
		d.Items[i].Status = ItemStatusVoided
		d.Items[i].UpdatedAt = now
	}
	d.Status = DistributionStatusVoided
	d.VoidedAt = &now
	d.VoidedBy = actor
	d.VoidReason = reason
	d.Touch(now)

	d.AddDomainEvent(NewPaymentDistributionVoidedEvent(d))
	return nil
}
