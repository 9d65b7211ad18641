package handler

import (
	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/gin-gonic/gin"
)

// ElectronicPaymentHandler exposes the electronic payment queue
type ElectronicPaymentHandler struct {
	BaseHandler
	service *appsettlement.ElectronicPaymentService
}

// NewElectronicPaymentHandler creates a new ElectronicPaymentHandler
func NewElectronicPaymentHandler(service *appsettlement.ElectronicPaymentService) *ElectronicPaymentHandler {
	return &ElectronicPaymentHandler{service: service}
}

// ListPending returns the payments waiting for a bank file
func (h *ElectronicPaymentHandler) ListPending(c *gin.Context) {
	payments, err := h.service.ListGenerated(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Get returns one electronic payment
func (h *ElectronicPaymentHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// ListByDistribution returns the electronic payments of one distribution
func (h *ElectronicPaymentHandler) ListByDistribution(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payments, err := h.service.ListByDistribution(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// ConfirmBankFile godoc
//
//	@ID				confirmBankFile
//	@Summary		Confirm a generated bank file
//	@Description	Archives the file when content is sent and marks every listed payment processed, all or none.
//	@Tags			electronic-payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appsettlement.ConfirmBankFileRequest	true	"Bank file"
//	@Success		200		{object}	APIResponse[[]appsettlement.ElectronicPaymentResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Failure		503		{object}	ErrorResponse
//	@Router			/settlement/electronic-payments/bank-files [post]
func (h *ElectronicPaymentHandler) ConfirmBankFile(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.ConfirmBankFileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payments, err := h.service.ConfirmFileGenerated(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// MarkFailed records a payment the bank rejected and either reopens its
// distribution item or reverses the grower's accounting
func (h *ElectronicPaymentHandler) MarkFailed(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.FailElectronicPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.service.MarkFailed(c.Request.Context(), id, req.Reason, req.ReverseAccounting, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
