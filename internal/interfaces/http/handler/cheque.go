package handler

import (
	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/gin-gonic/gin"
)

// ChequeHandler exposes the cheque register
type ChequeHandler struct {
	BaseHandler
	service *appsettlement.ChequeService
}

// NewChequeHandler creates a new ChequeHandler
func NewChequeHandler(service *appsettlement.ChequeService) *ChequeHandler {
	return &ChequeHandler{service: service}
}

// List returns cheques filtered by status, grower or distribution
func (h *ChequeHandler) List(c *gin.Context) {
	var filter appsettlement.ChequeListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	growerID, ok := h.queryID(c, "grower_id")
	if !ok {
		return
	}
	distributionID, ok := h.queryID(c, "distribution_id")
	if !ok {
		return
	}
	filter.GrowerID = growerID
	filter.DistributionID = distributionID

	page, err := h.service.ListCheques(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get returns one cheque
func (h *ChequeHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	cheque, err := h.service.GetCheque(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// Render returns the payload an external renderer prints
func (h *ChequeHandler) Render(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payload, err := h.service.RenderRequest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payload)
}

// MarkPrinted records that the cheque was printed
func (h *ChequeHandler) MarkPrinted(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	cheque, err := h.service.MarkPrinted(c.Request.Context(), id, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// MarkDelivered records how the printed cheque reached the grower
func (h *ChequeHandler) MarkDelivered(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.DeliverChequeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cheque, err := h.service.MarkDelivered(c.Request.Context(), id, req.DeliveryMethod, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// Stop records a stop-payment on the cheque
func (h *ChequeHandler) Stop(c *gin.Context) {
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
	cheque, err := h.service.Stop(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// Void godoc
//
//	@ID				voidCheque
//	@Summary		Void a cheque
//	@Description	With reverse_accounting the receipts become payable again and the deductions taken on the cheque are restored.
//	@Tags			cheques
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Cheque ID"	format(uuid)
//	@Param			request	body		appsettlement.VoidChequeRequest	true	"Void"
//	@Success		200		{object}	APIResponse[appsettlement.ChequeResponse]
//	@Failure		422		{object}	ErrorResponse
//	@Router			/settlement/cheques/{id}/void [post]
func (h *ChequeHandler) Void(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.VoidChequeRequest
	if !h.bindJSON(c, &req) {
		return
	}
	cheque, err := h.service.VoidCheque(c.Request.Context(), id, req.Reason, req.ReverseAccounting, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cheque)
}

// Reissue voids the cheque and issues a replacement for the same amount
func (h *ChequeHandler) Reissue(c *gin.Context) {
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
	cheque, err := h.service.Reissue(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, cheque)
}
