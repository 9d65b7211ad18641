package settlement

// BatchStatus represents the lifecycle state of a payment batch
type BatchStatus string

const (
	BatchStatusDraft     BatchStatus = "DRAFT"
	BatchStatusPosted    BatchStatus = "POSTED"
	BatchStatusFinalized BatchStatus = "FINALIZED"
	BatchStatusVoided    BatchStatus = "VOIDED"
)

// IsValid returns true if the status is a known value
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusDraft, BatchStatusPosted, BatchStatusFinalized, BatchStatusVoided:
		return true
	}
	return false
}

// IsTerminal returns true for Finalized and Voided
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusFinalized || s == BatchStatusVoided
}

// IsDistributable returns true if the batch's posted allocations may be paid out
func (s BatchStatus) IsDistributable() bool {
	return s == BatchStatusPosted || s == BatchStatusFinalized
}

func (s BatchStatus) String() string {
	return string(s)
}

// AllocationStatus represents the state of a receipt allocation
type AllocationStatus string

const (
	AllocationStatusDraft  AllocationStatus = "DRAFT"
	AllocationStatusPosted AllocationStatus = "POSTED"
	AllocationStatusVoided AllocationStatus = "VOIDED"
)

// IsLive returns true if the allocation still claims its receipt
func (s AllocationStatus) IsLive() bool {
	return s == AllocationStatusDraft || s == AllocationStatusPosted
}

func (s AllocationStatus) String() string {
	return string(s)
}

// ReversalSource records which operation produced a compensating allocation record
type ReversalSource string

const (
	ReversalSourceBatchRollback ReversalSource = "BATCH_ROLLBACK"
	ReversalSourceChequeVoid    ReversalSource = "CHEQUE_VOID"
	ReversalSourcePaymentFailed ReversalSource = "PAYMENT_FAILED"
)

// AdvanceStatus represents the recovery state of an advance cheque
type AdvanceStatus string

const (
	AdvanceStatusActive            AdvanceStatus = "ACTIVE"
	AdvanceStatusPartiallyDeducted AdvanceStatus = "PARTIALLY_DEDUCTED"
	AdvanceStatusFullyDeducted     AdvanceStatus = "FULLY_DEDUCTED"
	AdvanceStatusVoided            AdvanceStatus = "VOIDED"
)

// DistributionType selects how allocations are consolidated into payment lines
type DistributionType string

const (
	DistributionTypeByGrower   DistributionType = "BY_GROWER"
	DistributionTypeByBatch    DistributionType = "BY_BATCH"
	DistributionTypeAllPending DistributionType = "ALL_PENDING"
)

// IsValid returns true if the type is a known value
func (t DistributionType) IsValid() bool {
	switch t {
	case DistributionTypeByGrower, DistributionTypeByBatch, DistributionTypeAllPending:
		return true
	}
	return false
}

// PaymentMethod selects the instrument generated for a distribution item
type PaymentMethod string

const (
	PaymentMethodCheque     PaymentMethod = "CHEQUE"
	PaymentMethodElectronic PaymentMethod = "ELECTRONIC"
)

// IsValid returns true if the method is a known value
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCheque || m == PaymentMethodElectronic
}

// DistributionStatus represents the generation state of a distribution
type DistributionStatus string

const (
	DistributionStatusDraft              DistributionStatus = "DRAFT"
	DistributionStatusGenerating         DistributionStatus = "GENERATING"
	DistributionStatusGenerated          DistributionStatus = "GENERATED"
	DistributionStatusPartiallyGenerated DistributionStatus = "PARTIALLY_GENERATED"
	DistributionStatusVoided             DistributionStatus = "VOIDED"
)

// ItemStatus represents the generation state of a single distribution item
type ItemStatus string

const (
	ItemStatusDraft     ItemStatus = "DRAFT"
	ItemStatusGenerated ItemStatus = "GENERATED"
	ItemStatusNoPayment ItemStatus = "NO_PAYMENT"
	ItemStatusFailed    ItemStatus = "FAILED"
	ItemStatusVoided    ItemStatus = "VOIDED"
)

// IsPending returns true if the item still needs an instrument
func (s ItemStatus) IsPending() bool {
	return s == ItemStatusDraft || s == ItemStatusFailed
}

// ChequeStatus represents the lifecycle state of a cheque
type ChequeStatus string

const (
	ChequeStatusGenerated ChequeStatus = "GENERATED"
	ChequeStatusPrinted   ChequeStatus = "PRINTED"
	ChequeStatusDelivered ChequeStatus = "DELIVERED"
	ChequeStatusVoided    ChequeStatus = "VOIDED"
	ChequeStatusStopped   ChequeStatus = "STOPPED"
)

// IsLive returns true if the cheque can still be cashed
func (s ChequeStatus) IsLive() bool {
	return s == ChequeStatusGenerated || s == ChequeStatusPrinted || s == ChequeStatusDelivered
}

// CanVoid returns true if the cheque may be voided
func (s ChequeStatus) CanVoid() bool {
	return s.IsLive()
}

// CanStop returns true if a stop-payment may be placed on the cheque
func (s ChequeStatus) CanStop() bool {
	return s == ChequeStatusPrinted || s == ChequeStatusDelivered
}

// ElectronicPaymentStatus represents the state of an electronic disbursement
type ElectronicPaymentStatus string

const (
	ElectronicPaymentStatusPending   ElectronicPaymentStatus = "PENDING"
	ElectronicPaymentStatusGenerated ElectronicPaymentStatus = "GENERATED"
	ElectronicPaymentStatusProcessed ElectronicPaymentStatus = "PROCESSED"
	ElectronicPaymentStatusFailed    ElectronicPaymentStatus = "FAILED"
)

// IsLive returns true if the payment has been or may still be sent to the bank
func (s ElectronicPaymentStatus) IsLive() bool {
	return s == ElectronicPaymentStatusPending || s == ElectronicPaymentStatusGenerated || s == ElectronicPaymentStatusProcessed
}
