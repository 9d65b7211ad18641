package handler

import (
	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/gin-gonic/gin"
)

// DistributionHandler exposes preview, creation and voiding of payment
// distributions
type DistributionHandler struct {
	BaseHandler
	service *appsettlement.DistributionService
}

// NewDistributionHandler creates a new DistributionHandler
func NewDistributionHandler(service *appsettlement.DistributionService) *DistributionHandler {
	return &DistributionHandler{service: service}
}

// Preview godoc
//
//	@ID				previewDistribution
//	@Summary		Preview a distribution
//	@Description	Computes lines, deductions and totals without writing anything.
//	@Tags			distributions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsettlement.DistributionRequest	true	"Selection"
//	@Success		200		{object}	APIResponse[appsettlement.DistributionPreviewResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlement/distributions/preview [post]
func (h *DistributionHandler) Preview(c *gin.Context) {
	var req appsettlement.DistributionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	preview, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Create godoc
//
//	@ID				createDistribution
//	@Summary		Create a distribution and generate its payments
//	@Description	Writes the distribution, applies advance deductions and generates one cheque or electronic payment per payable item.
//	@Description	Items that fail to generate stay pending and can be resumed.
//	@Tags			distributions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsettlement.DistributionRequest	true	"Selection"
//	@Success		201		{object}	APIResponse[appsettlement.DistributionResult]
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlement/distributions [post]
func (h *DistributionHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.DistributionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.CreateAndGenerate(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Resume retries generation for the pending items of a distribution
func (h *DistributionHandler) Resume(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	result, err := h.service.ResumeGeneration(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Void godoc
//
//	@ID				voidDistribution
//	@Summary		Void a distribution
//	@Description	Voids its instruments, restores advance balances and releases its batches.
//	@Tags			distributions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Distribution ID"	format(uuid)
//	@Param			request	body		appsettlement.ReasonRequest	true	"Reason"
//	@Success		200		{object}	APIResponse[appsettlement.DistributionResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlement/distributions/{id}/void [post]
func (h *DistributionHandler) Void(c *gin.Context) {
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
	d, err := h.service.VoidDistribution(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// Get returns a distribution with its batch links and items
func (h *DistributionHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	d, err := h.service.GetDistribution(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// List returns distribution headers
func (h *DistributionHandler) List(c *gin.Context) {
	var filter appsettlement.DistributionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	batchID, ok := h.queryID(c, "batch_id")
	if !ok {
		return
	}
	filter.BatchID = batchID
	page, err := h.service.ListDistributions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
