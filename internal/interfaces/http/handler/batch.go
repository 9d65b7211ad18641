package handler

import (
	"context"

	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BatchHandler exposes the payment batch lifecycle
type BatchHandler struct {
	BaseHandler
	service *appsettlement.BatchLifecycleService
}

// NewBatchHandler creates a new BatchHandler
func NewBatchHandler(service *appsettlement.BatchLifecycleService) *BatchHandler {
	return &BatchHandler{service: service}
}

// Create godoc
//
//	@ID				createPaymentBatch
//	@Summary		Create a draft payment batch
//	@Description	Allocates the selected receipts to a new Draft batch. A receipt may sit in only one live batch.
//	@Tags			payment-batches
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsettlement.CreateBatchRequest	true	"Batch"
//	@Success		201		{object}	APIResponse[appsettlement.BatchResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/settlement/batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.CreateBatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	batch, err := h.service.CreateBatch(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// List godoc
//
//	@ID			listPaymentBatches
//	@Summary	List payment batches
//	@Tags		payment-batches
//	@Produce	json
//	@Param		status		query		string	false	"DRAFT, POSTED, FINALIZED or VOIDED"
//	@Param		crop_year	query		int		false	"Crop year"
//	@Param		page		query		int		false	"Page"
//	@Param		page_size	query		int		false	"Page size"
//	@Success	200			{object}	APIResponse[[]appsettlement.BatchResponse]
//	@Router		/settlement/batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	var filter appsettlement.BatchListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get godoc
//
//	@ID			getPaymentBatch
//	@Summary	Get a payment batch
//	@Tags		payment-batches
//	@Produce	json
//	@Param		id	path		string	true	"Batch ID"	format(uuid)
//	@Success	200	{object}	APIResponse[appsettlement.BatchResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/settlement/batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	batch, err := h.service.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// Guards reports which lifecycle actions the batch currently allows
func (h *BatchHandler) Guards(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	guards, err := h.service.GetGuards(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guards)
}

// Allocations lists the batch's receipt allocations and their reversals
func (h *BatchHandler) Allocations(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ledger, err := h.service.ListAllocations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// Approve godoc
//
//	@ID			approvePaymentBatch
//	@Summary	Approve a draft batch
//	@Tags		payment-batches
//	@Produce	json
//	@Param		id	path		string	true	"Batch ID"	format(uuid)
//	@Success	200	{object}	APIResponse[appsettlement.BatchResponse]
//	@Failure	422	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/settlement/batches/{id}/approve [post]
func (h *BatchHandler) Approve(c *gin.Context) {
	h.simpleTransition(c, h.service.Approve)
}

// ProcessPayments godoc
//
//	@ID			processPaymentBatch
//	@Summary	Finalize a posted batch
//	@Tags		payment-batches
//	@Produce	json
//	@Param		id	path		string	true	"Batch ID"	format(uuid)
//	@Success	200	{object}	APIResponse[appsettlement.BatchResponse]
//	@Failure	422	{object}	ErrorResponse
//	@Router		/settlement/batches/{id}/process [post]
func (h *BatchHandler) ProcessPayments(c *gin.Context) {
	h.simpleTransition(c, h.service.ProcessPayments)
}

// Void godoc
//
//	@ID				voidPaymentBatch
//	@Summary		Void a batch
//	@Description	Terminal. The allocations are reversed and the receipts become payable again.
//	@Tags			payment-batches
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Batch ID"	format(uuid)
//	@Param			request	body		appsettlement.ReasonRequest	true	"Reason"
//	@Success		200		{object}	APIResponse[appsettlement.BatchResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlement/batches/{id}/void [post]
func (h *BatchHandler) Void(c *gin.Context) {
	h.reasonTransition(c, h.service.Void)
}

// Rollback godoc
//
//	@ID				rollbackPaymentBatch
//	@Summary		Roll a batch back
//	@Description	Reverses the allocations like Void and flags the batch as rolled back.
//	@Tags			payment-batches
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Batch ID"	format(uuid)
//	@Param			request	body		appsettlement.ReasonRequest	true	"Reason"
//	@Success		200		{object}	APIResponse[appsettlement.BatchResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlement/batches/{id}/rollback [post]
func (h *BatchHandler) Rollback(c *gin.Context) {
	h.reasonTransition(c, h.service.Rollback)
}

// Delete soft-deletes a draft batch and releases its receipts
func (h *BatchHandler) Delete(c *gin.Context) {
	h.reasonTransition(c, h.service.DeleteDraft)
}

type batchAction func(ctx context.Context, id uuid.UUID, actor string) (*appsettlement.BatchResponse, error)

type batchReasonAction func(ctx context.Context, id uuid.UUID, reason, actor string) (*appsettlement.BatchResponse, error)

func (h *BatchHandler) simpleTransition(c *gin.Context, action batchAction) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	batch, err := action(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

func (h *BatchHandler) reasonTransition(c *gin.Context, action batchReasonAction) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.ReasonRequest
	if !h.bindJSON(c, &req) {
		return
	}
	batch, err := action(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}
