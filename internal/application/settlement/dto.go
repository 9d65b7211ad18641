package settlement

import (
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/settlement"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Payment Batch DTOs ====================

// ReceiptInput is one receipt selected for a new batch
type ReceiptInput struct {
	ReceiptID     uuid.UUID       `json:"receipt_id" binding:"required"`
	ReceiptNumber string          `json:"receipt_number" binding:"required,max=50"`
	GrowerID      uuid.UUID       `json:"grower_id" binding:"required"`
	GrowerNumber  string          `json:"grower_number" binding:"required,max=50"`
	GrowerName    string          `json:"grower_name" binding:"max=200"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// CreateBatchRequest creates a Draft batch from selected receipts
type CreateBatchRequest struct {
	BatchNumber   string         `json:"batch_number" binding:"omitempty,max=50"`
	PaymentTypeID int            `json:"payment_type_id" binding:"required,min=1"`
	BatchDate     time.Time      `json:"batch_date" binding:"required"`
	CropYear      int            `json:"crop_year" binding:"required,min=1900,max=9999"`
	CutoffDate    *time.Time     `json:"cutoff_date"`
	Notes         string         `json:"notes" binding:"max=1000"`
	Receipts      []ReceiptInput `json:"receipts" binding:"required,min=1,dive"`
}

// ReasonRequest carries the mandatory reason of an irreversible action
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// BatchListFilter represents filter options for batch listings
type BatchListFilter struct {
	Search         string `form:"search"`
	Status         string `form:"status" binding:"omitempty,oneof=DRAFT POSTED FINALIZED VOIDED"`
	PaymentTypeID  int    `form:"payment_type_id"`
	CropYear       int    `form:"crop_year"`
	IncludeDeleted bool   `form:"include_deleted"`
	Page           int    `form:"page" binding:"omitempty,min=1"`
	PageSize       int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy        string `form:"order_by"`
	OrderDir       string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchResponse represents a payment batch in API responses
type BatchResponse struct {
	ID                   uuid.UUID       `json:"id"`
	BatchNumber          string          `json:"batch_number"`
	PaymentTypeID        int             `json:"payment_type_id"`
	BatchDate            time.Time       `json:"batch_date"`
	CropYear             int             `json:"crop_year"`
	CutoffDate           *time.Time      `json:"cutoff_date,omitempty"`
	Status               string          `json:"status"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	TotalGrowers         int             `json:"total_growers"`
	TotalReceipts        int             `json:"total_receipts"`
	ChequesGenerated     int             `json:"cheques_generated"`
	Notes                string          `json:"notes,omitempty"`
	CreatedBy            string          `json:"created_by"`
	PostedAt             *time.Time      `json:"posted_at,omitempty"`
	PostedBy             string          `json:"posted_by,omitempty"`
	FinalizedAt          *time.Time      `json:"finalized_at,omitempty"`
	FinalizedBy          string          `json:"finalized_by,omitempty"`
	VoidedAt             *time.Time      `json:"voided_at,omitempty"`
	VoidedBy             string          `json:"voided_by,omitempty"`
	VoidReason           string          `json:"void_reason,omitempty"`
	RolledBack           bool            `json:"rolled_back"`
	IsDeleted            bool            `json:"is_deleted"`
	ActiveDistributionID *uuid.UUID      `json:"active_distribution_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

// AllocationResponse represents one receipt allocation
type AllocationResponse struct {
	ID            uuid.UUID       `json:"id"`
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	GrowerID      uuid.UUID       `json:"grower_id"`
	GrowerNumber  string          `json:"grower_number"`
	GrowerName    string          `json:"grower_name"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Status        string          `json:"status"`
	Reversed      bool            `json:"reversed"`
	VoidReason    string          `json:"void_reason,omitempty"`
}

// ReversalResponse represents a compensating ledger row
type ReversalResponse struct {
	ID                   uuid.UUID       `json:"id"`
	OriginalAllocationID uuid.UUID       `json:"original_allocation_id"`
	ReceiptID            uuid.UUID       `json:"receipt_id"`
	GrowerID             uuid.UUID       `json:"grower_id"`
	Amount               decimal.Decimal `json:"amount"`
	Source               string          `json:"source"`
	Reason               string          `json:"reason"`
	ReversedAt           time.Time       `json:"reversed_at"`
	ReversedBy           string          `json:"reversed_by"`
}

// BatchLedgerResponse lists a batch's allocations with their reversals
type BatchLedgerResponse struct {
	BatchID     uuid.UUID            `json:"batch_id"`
	Allocations []AllocationResponse `json:"allocations"`
	Reversals   []ReversalResponse   `json:"reversals"`
}

// GuardResponse reports whether an action is allowed and why not
type GuardResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// BatchGuardsResponse gives the presentation layer the enabled state of every action
type BatchGuardsResponse struct {
	BatchID            uuid.UUID     `json:"batch_id"`
	Status             string        `json:"status"`
	CanApprove         GuardResponse `json:"can_approve"`
	CanProcessPayments GuardResponse `json:"can_process_payments"`
	CanVoid            GuardResponse `json:"can_void"`
	CanRollback        GuardResponse `json:"can_rollback"`
}

// ToBatchResponse converts a domain batch to its response
func ToBatchResponse(b *settlement.PaymentBatch) BatchResponse {
	return BatchResponse{
		ID:                   b.ID,
		BatchNumber:          b.BatchNumber,
		PaymentTypeID:        b.PaymentTypeID,
		BatchDate:            b.BatchDate,
		CropYear:             b.CropYear,
		CutoffDate:           b.CutoffDate,
		Status:               string(b.Status),
		TotalAmount:          b.TotalAmount,
		TotalGrowers:         b.TotalGrowers,
		TotalReceipts:        b.TotalReceipts,
		ChequesGenerated:     b.ChequesGenerated,
		Notes:                b.Notes,
		CreatedBy:            b.CreatedBy,
		PostedAt:             b.PostedAt,
		PostedBy:             b.PostedBy,
		FinalizedAt:          b.FinalizedAt,
		FinalizedBy:          b.FinalizedBy,
		VoidedAt:             b.VoidedAt,
		VoidedBy:             b.VoidedBy,
		VoidReason:           b.VoidReason,
		RolledBack:           b.RolledBack,
		IsDeleted:            b.IsDeleted,
		ActiveDistributionID: b.ActiveDistributionID,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
		Version:              b.Version,
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []settlement.PaymentBatch) []BatchResponse {
	out := make([]BatchResponse, len(batches))
	for i := range batches {
		out[i] = ToBatchResponse(&batches[i])
	}
	return out
}

// ToAllocationResponse converts an allocation
func ToAllocationResponse(a *settlement.ReceiptPaymentAllocation) AllocationResponse {
	return AllocationResponse{
		ID:            a.ID,
		ReceiptID:     a.ReceiptID,
		ReceiptNumber: a.ReceiptNumber,
		GrowerID:      a.GrowerID,
		GrowerNumber:  a.GrowerNumber,
		GrowerName:    a.GrowerName,
		AmountPaid:    a.AmountPaid,
		Status:        string(a.Status),
		Reversed:      a.Reversed,
		VoidReason:    a.VoidReason,
	}
}

// ToReversalResponse converts a reversal
func ToReversalResponse(r *settlement.AllocationReversal) ReversalResponse {
	return ReversalResponse{
		ID:                   r.ID,
		OriginalAllocationID: r.OriginalAllocationID,
		ReceiptID:            r.ReceiptID,
		GrowerID:             r.GrowerID,
		Amount:               r.Amount,
		Source:               string(r.Source),
		Reason:               r.Reason,
		ReversedAt:           r.ReversedAt,
		ReversedBy:           r.ReversedBy,
	}
}

// ToGuardResponse converts a guard
func ToGuardResponse(g settlement.Guard) GuardResponse {
	return GuardResponse{Allowed: g.Allowed, Reason: string(g.Reason), Message: g.Message}
}

// ==================== Distribution DTOs ====================

// GrowerDeductionInput is the advance deduction requested for one grower
type GrowerDeductionInput struct {
	GrowerID uuid.UUID       `json:"grower_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// DistributionRequest selects batches and decides how they are paid
type DistributionRequest struct {
	DistributionType    string                 `json:"distribution_type" binding:"required,oneof=BY_GROWER BY_BATCH ALL_PENDING"`
	PaymentMethod       string                 `json:"payment_method" binding:"required,oneof=CHEQUE ELECTRONIC"`
	BatchIDs            []uuid.UUID            `json:"batch_ids"`
	DistributionDate    *time.Time             `json:"distribution_date"`
	DeductionMode       string                 `json:"deduction_mode" binding:"omitempty,oneof=MANUAL FULL_RECOVERY"`
	Deductions          []GrowerDeductionInput `json:"deductions" binding:"omitempty,dive"`
	OverDeductionPolicy string                 `json:"over_deduction_policy" binding:"omitempty,oneof=REJECT CAP"`
}

// DistributionListFilter represents filter options for distribution listings
type DistributionListFilter struct {
	Status        string     `form:"status"`
	PaymentMethod string     `form:"payment_method" binding:"omitempty,oneof=CHEQUE ELECTRONIC"`
	BatchID       *uuid.UUID `form:"-"` // parsed from batch_id by the transport
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// DeductionEffectResponse shows how a deduction draws down one advance
type DeductionEffectResponse struct {
	AdvanceID     uuid.UUID       `json:"advance_id"`
	ChequeNumber  string          `json:"cheque_number"`
	AdvanceDate   string          `json:"advance_date"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	Applied       decimal.Decimal `json:"applied"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// GrowerDeductionResponse summarises the deduction plan of one grower
type GrowerDeductionResponse struct {
	GrowerID         uuid.UUID                 `json:"grower_id"`
	GrowerNumber     string                    `json:"grower_number"`
	Gross            decimal.Decimal           `json:"gross"`
	Requested        decimal.Decimal           `json:"requested"`
	TotalOutstanding decimal.Decimal           `json:"total_outstanding"`
	Applied          decimal.Decimal           `json:"applied"`
	Remainder        decimal.Decimal           `json:"remainder"`
	Effects          []DeductionEffectResponse `json:"effects"`
}

// PreviewLineResponse is one payable line of a preview
type PreviewLineResponse struct {
	GrowerID      uuid.UUID       `json:"grower_id"`
	GrowerNumber  string          `json:"grower_number"`
	GrowerName    string          `json:"grower_name"`
	BatchNumbers  string          `json:"batch_numbers"`
	ReceiptCount  int             `json:"receipt_count"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	Deduction     decimal.Decimal `json:"deduction"`
	NetAmount     decimal.Decimal `json:"net_amount"`
	AnchorReceipt string          `json:"anchor_receipt"`
}

// DistributionPreviewResponse is the side-effect free result of Preview
type DistributionPreviewResponse struct {
	DistributionType string                    `json:"distribution_type"`
	PaymentMethod    string                    `json:"payment_method"`
	BatchIDs         []uuid.UUID               `json:"batch_ids"`
	Lines            []PreviewLineResponse     `json:"lines"`
	Deductions       []GrowerDeductionResponse `json:"deductions"`
	TotalGross       decimal.Decimal           `json:"total_gross"`
	TotalDeductions  decimal.Decimal           `json:"total_deductions"`
	TotalNet         decimal.Decimal           `json:"total_net"`
	TotalGrowers     int                       `json:"total_growers"`
	TotalBatches     int                       `json:"total_batches"`
	Warnings         []string                  `json:"warnings"`
}

// DistributionItemResponse represents a distribution item
type DistributionItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Sequence            int             `json:"sequence"`
	GrowerID            uuid.UUID       `json:"grower_id"`
	GrowerNumber        string          `json:"grower_number"`
	GrowerName          string          `json:"grower_name"`
	PaymentBatchID      uuid.UUID       `json:"payment_batch_id"`
	ReceiptID           uuid.UUID       `json:"receipt_id"`
	BatchNumbers        string          `json:"batch_numbers"`
	GrossAmount         decimal.Decimal `json:"gross_amount"`
	DeductionAmount     decimal.Decimal `json:"deduction_amount"`
	Amount              decimal.Decimal `json:"amount"`
	Status              string          `json:"status"`
	ChequeID            *uuid.UUID      `json:"cheque_id,omitempty"`
	ElectronicPaymentID *uuid.UUID      `json:"electronic_payment_id,omitempty"`
	GeneratedAt         *time.Time      `json:"generated_at,omitempty"`
	FailureReason       string          `json:"failure_reason,omitempty"`
}

// DistributionBatchResponse represents a distribution to batch link
type DistributionBatchResponse struct {
	PaymentBatchID uuid.UUID `json:"payment_batch_id"`
	BatchNumber    string    `json:"batch_number"`
	Active         bool      `json:"active"`
}

// DistributionResponse represents a payment distribution in API responses
type DistributionResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	DistributionNumber string                      `json:"distribution_number"`
	DistributionType   string                      `json:"distribution_type"`
	PaymentMethod      string                      `json:"payment_method"`
	DistributionDate   time.Time                   `json:"distribution_date"`
	TotalGross         decimal.Decimal             `json:"total_gross"`
	TotalDeductions    decimal.Decimal             `json:"total_deductions"`
	TotalAmount        decimal.Decimal             `json:"total_amount"`
	TotalGrowers       int                         `json:"total_growers"`
	TotalBatches       int                         `json:"total_batches"`
	Status             string                      `json:"status"`
	CreatedBy          string                      `json:"created_by"`
	VoidedAt           *time.Time                  `json:"voided_at,omitempty"`
	VoidedBy           string                      `json:"voided_by,omitempty"`
	VoidReason         string                      `json:"void_reason,omitempty"`
	Batches            []DistributionBatchResponse `json:"batches,omitempty"`
	Items              []DistributionItemResponse  `json:"items,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	Version            int                         `json:"version"`
}

// GenerationSummary reports the outcome of one generation pass
type GenerationSummary struct {
	Generated int      `json:"generated"`
	Failed    int      `json:"failed"`
	Pending   int      `json:"pending"`
	Failures  []string `json:"failures,omitempty"`
}

// DistributionResult is returned by CreateAndGenerate and ResumeGeneration
type DistributionResult struct {
	Distribution DistributionResponse `json:"distribution"`
	Summary      GenerationSummary    `json:"summary"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// ToDistributionResponse converts a distribution; items are included when withItems is set
func ToDistributionResponse(d *settlement.PaymentDistribution, withItems bool) DistributionResponse {
	resp := DistributionResponse{
		ID:                 d.ID,
		DistributionNumber: d.DistributionNumber,
		DistributionType:   string(d.DistributionType),
		PaymentMethod:      string(d.PaymentMethod),
		DistributionDate:   d.DistributionDate,
		TotalGross:         d.TotalGross,
		TotalDeductions:    d.TotalDeductions,
		TotalAmount:        d.TotalAmount,
		TotalGrowers:       d.TotalGrowers,
		TotalBatches:       d.TotalBatches,
		Status:             string(d.Status),
		CreatedBy:          d.CreatedBy,
		VoidedAt:           d.VoidedAt,
		VoidedBy:           d.VoidedBy,
		VoidReason:         d.VoidReason,
		CreatedAt:          d.CreatedAt,
		Version:            d.Version,
	}
	if !withItems {
		return resp
	}
	for _, b := range d.Batches {
		resp.Batches = append(resp.Batches, DistributionBatchResponse{
			PaymentBatchID: b.PaymentBatchID,
			BatchNumber:    b.BatchNumber,
			Active:         b.Active,
		})
	}
	for _, item := range d.Items {
		resp.Items = append(resp.Items, DistributionItemResponse{
			ID:                  item.ID,
			Sequence:            item.Sequence,
			GrowerID:            item.GrowerID,
			GrowerNumber:        item.GrowerNumber,
			GrowerName:          item.GrowerName,
			PaymentBatchID:      item.PaymentBatchID,
			ReceiptID:           item.ReceiptID,
			BatchNumbers:        item.BatchNumbers,
			GrossAmount:         item.GrossAmount,
			DeductionAmount:     item.DeductionAmount,
			Amount:              item.Amount,
			Status:              string(item.Status),
			ChequeID:            item.ChequeID,
			ElectronicPaymentID: item.ElectronicPaymentID,
			GeneratedAt:         item.GeneratedAt,
			FailureReason:       item.FailureReason,
		})
	}
	return resp
}

// ==================== Cheque DTOs ====================

// VoidChequeRequest voids a cheque, optionally reversing the accounting
type VoidChequeRequest struct {
	Reason            string `json:"reason" binding:"required,min=1,max=500"`
	ReverseAccounting bool   `json:"reverse_accounting"`
}

// DeliverChequeRequest records how a printed cheque reached the grower
type DeliverChequeRequest struct {
	DeliveryMethod string `json:"delivery_method" binding:"required,max=50"`
}

// ChequeListFilter represents filter options for cheque listings
type ChequeListFilter struct {
	Status         string     `form:"status" binding:"omitempty,oneof=GENERATED PRINTED DELIVERED VOIDED STOPPED"`
	GrowerID       *uuid.UUID `form:"-"` // parsed from grower_id by the transport
	DistributionID *uuid.UUID `form:"-"` // parsed from distribution_id by the transport
	Search         string     `form:"search"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// ChequeResponse represents a cheque in API responses
type ChequeResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ChequeNumber       string          `json:"cheque_number"`
	GrowerID           uuid.UUID       `json:"grower_id"`
	GrowerNumber       string          `json:"grower_number"`
	GrowerName         string          `json:"grower_name"`
	ChequeAmount       decimal.Decimal `json:"cheque_amount"`
	ChequeDate         time.Time       `json:"cheque_date"`
	Memo               string          `json:"memo,omitempty"`
	Status             string          `json:"status"`
	DistributionID     uuid.UUID       `json:"distribution_id"`
	DistributionItemID uuid.UUID       `json:"distribution_item_id"`
	PrintedAt          *time.Time      `json:"printed_at,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	DeliveryMethod     string          `json:"delivery_method,omitempty"`
	VoidedReason       string          `json:"voided_reason,omitempty"`
	VoidedDate         *time.Time      `json:"voided_date,omitempty"`
	VoidedBy           string          `json:"voided_by,omitempty"`
	ReverseAccounting  bool            `json:"reverse_accounting"`
	StopReason         string          `json:"stop_reason,omitempty"`
	ReissuedFromID     *uuid.UUID      `json:"reissued_from_id,omitempty"`
	ReissuedToID       *uuid.UUID      `json:"reissued_to_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	Version            int             `json:"version"`
}

// ChequeRenderPayload is what an external renderer needs to print a cheque
type ChequeRenderPayload struct {
	ChequeNumber string            `json:"cheque_number"`
	ChequeDate   time.Time         `json:"cheque_date"`
	GrowerNumber string            `json:"grower_number"`
	GrowerName   string            `json:"grower_name"`
	Amount       valueobject.Money `json:"amount"`
	Memo         string            `json:"memo"`
}

// ToChequeResponse converts a cheque
func ToChequeResponse(c *settlement.Cheque) ChequeResponse {
	return ChequeResponse{
		ID:                 c.ID,
		ChequeNumber:       c.ChequeNumber,
		GrowerID:           c.GrowerID,
		GrowerNumber:       c.GrowerNumber,
		GrowerName:         c.GrowerName,
		ChequeAmount:       c.ChequeAmount,
		ChequeDate:         c.ChequeDate,
		Memo:               c.Memo,
		Status:             string(c.Status),
		DistributionID:     c.DistributionID,
		DistributionItemID: c.DistributionItemID,
		PrintedAt:          c.PrintedAt,
		DeliveredAt:        c.DeliveredAt,
		DeliveryMethod:     c.DeliveryMethod,
		VoidedReason:       c.VoidedReason,
		VoidedDate:         c.VoidedDate,
		VoidedBy:           c.VoidedBy,
		ReverseAccounting:  c.ReverseAccounting,
		StopReason:         c.StopReason,
		ReissuedFromID:     c.ReissuedFromID,
		ReissuedToID:       c.ReissuedToID,
		CreatedAt:          c.CreatedAt,
		Version:            c.Version,
	}
}

// ==================== Electronic Payment DTOs ====================

// ConfirmBankFileRequest records that a bank file with the given payments was produced
type ConfirmBankFileRequest struct {
	PaymentIDs []uuid.UUID `json:"payment_ids" binding:"required,min=1"`
	FileName   string      `json:"file_name" binding:"required,max=200"`
	Content    []byte      `json:"content"`
}

// FailElectronicPaymentRequest records a rejected payment
type FailElectronicPaymentRequest struct {
	Reason            string `json:"reason" binding:"required,min=1,max=500"`
	ReverseAccounting bool   `json:"reverse_accounting"`
}

// ElectronicPaymentResponse represents an electronic payment
type ElectronicPaymentResponse struct {
	ID                 uuid.UUID       `json:"id"`
	PaymentNumber      string          `json:"payment_number"`
	GrowerID           uuid.UUID       `json:"grower_id"`
	GrowerNumber       string          `json:"grower_number"`
	GrowerName         string          `json:"grower_name"`
	Amount             decimal.Decimal `json:"amount"`
	Status             string          `json:"status"`
	DistributionID     uuid.UUID       `json:"distribution_id"`
	DistributionItemID uuid.UUID       `json:"distribution_item_id"`
	GeneratedAt        *time.Time      `json:"generated_at,omitempty"`
	ProcessedAt        *time.Time      `json:"processed_at,omitempty"`
	FileReference      string          `json:"file_reference,omitempty"`
	FailureReason      string          `json:"failure_reason,omitempty"`
}

// ToElectronicPaymentResponse converts an electronic payment
func ToElectronicPaymentResponse(p *settlement.ElectronicPayment) ElectronicPaymentResponse {
	return ElectronicPaymentResponse{
		ID:                 p.ID,
		PaymentNumber:      p.PaymentNumber,
		GrowerID:           p.GrowerID,
		GrowerNumber:       p.GrowerNumber,
		GrowerName:         p.GrowerName,
		Amount:             p.Amount,
		Status:             string(p.Status),
		DistributionID:     p.DistributionID,
		DistributionItemID: p.DistributionItemID,
		GeneratedAt:        p.GeneratedAt,
		ProcessedAt:        p.ProcessedAt,
		FileReference:      p.FileReference,
		FailureReason:      p.FailureReason,
	}
}

// ==================== Advance DTOs ====================

// IssueAdvanceRequest records an advance cheque already paid to a grower
type IssueAdvanceRequest struct {
	ChequeNumber string          `json:"cheque_number" binding:"required,max=50"`
	GrowerID     uuid.UUID       `json:"grower_id" binding:"required"`
	GrowerNumber string          `json:"grower_number" binding:"required,max=50"`
	GrowerName   string          `json:"grower_name" binding:"max=200"`
	AdvanceDate  time.Time       `json:"advance_date" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// AdvanceResponse represents an advance cheque
type AdvanceResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ChequeNumber         string          `json:"cheque_number"`
	GrowerID             uuid.UUID       `json:"grower_id"`
	GrowerNumber         string          `json:"grower_number"`
	GrowerName           string          `json:"grower_name"`
	AdvanceDate          time.Time       `json:"advance_date"`
	AdvanceAmount        decimal.Decimal `json:"advance_amount"`
	CurrentAdvanceAmount decimal.Decimal `json:"current_advance_amount"`
	RecoveredAmount      decimal.Decimal `json:"recovered_amount"`
	Status               string          `json:"status"`
	CreatedBy            string          `json:"created_by"`
	VoidReason           string          `json:"void_reason,omitempty"`
	Version              int             `json:"version"`
}

// AdvanceDeductionResponse is one persisted deduction row
type AdvanceDeductionResponse struct {
	ID                 uuid.UUID       `json:"id"`
	AdvanceChequeID    uuid.UUID       `json:"advance_cheque_id"`
	DistributionID     uuid.UUID       `json:"distribution_id"`
	DistributionItemID uuid.UUID       `json:"distribution_item_id"`
	Amount             decimal.Decimal `json:"amount"`
	BalanceBefore      decimal.Decimal `json:"balance_before"`
	BalanceAfter       decimal.Decimal `json:"balance_after"`
	DeductedAt         time.Time       `json:"deducted_at"`
	DeductedBy         string          `json:"deducted_by"`
	Reversed           bool            `json:"reversed"`
	ReversalReason     string          `json:"reversal_reason,omitempty"`
}

// ToAdvanceResponse converts an advance cheque
func ToAdvanceResponse(a *settlement.AdvanceCheque) AdvanceResponse {
	return AdvanceResponse{
		ID:                   a.ID,
		ChequeNumber:         a.ChequeNumber,
		GrowerID:             a.GrowerID,
		GrowerNumber:         a.GrowerNumber,
		GrowerName:           a.GrowerName,
		AdvanceDate:          a.AdvanceDate,
		AdvanceAmount:        a.AdvanceAmount,
		CurrentAdvanceAmount: a.CurrentAdvanceAmount,
		RecoveredAmount:      a.RecoveredAmount(),
		Status:               string(a.Status),
		CreatedBy:            a.CreatedBy,
		VoidReason:           a.VoidReason,
		Version:              a.Version,
	}
}

// ToAdvanceDeductionResponse converts a deduction row
func ToAdvanceDeductionResponse(d *settlement.AdvanceDeduction) AdvanceDeductionResponse {
	return AdvanceDeductionResponse{
		ID:                 d.ID,
		AdvanceChequeID:    d.AdvanceChequeID,
		DistributionID:     d.DistributionID,
		DistributionItemID: d.DistributionItemID,
		Amount:             d.Amount,
		BalanceBefore:      d.BalanceBefore,
		BalanceAfter:       d.BalanceAfter,
		DeductedAt:         d.DeductedAt,
		DeductedBy:         d.DeductedBy,
		Reversed:           d.Reversed,
		ReversalReason:     d.ReversalReason,
	}
}
