package handler

import (
	appsettlement "github.com/JKrishnaV/WPFGrowerApp-sub001/internal/application/settlement"
	"github.com/gin-gonic/gin"
)

// AdvanceHandler exposes advance cheques and their deduction history
type AdvanceHandler struct {
	BaseHandler
	service *appsettlement.AdvanceService
}

// NewAdvanceHandler creates a new AdvanceHandler
func NewAdvanceHandler(service *appsettlement.AdvanceService) *AdvanceHandler {
	return &AdvanceHandler{service: service}
}

// Issue records an advance already paid to a grower
func (h *AdvanceHandler) Issue(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appsettlement.IssueAdvanceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	advance, err := h.service.IssueAdvance(c.Request.Context(), req, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, advance)
}

// Get returns one advance
func (h *AdvanceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	advance, err := h.service.GetAdvance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, advance)
}

// ListOutstanding returns a grower's advances with a balance left, oldest first
func (h *AdvanceHandler) ListOutstanding(c *gin.Context) {
	growerID, ok := h.queryID(c, "grower_id")
	if !ok {
		return
	}
	if growerID == nil {
		h.BadRequest(c, "grower_id is required")
		return
	}
	advances, err := h.service.ListOutstanding(c.Request.Context(), *growerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, advances)
}

// Deductions returns every deduction taken from an advance
func (h *AdvanceHandler) Deductions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.service.GetDeductionHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Void cancels an advance from which nothing was recovered
func (h *AdvanceHandler) Void(c *gin.Context) {
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
	advance, err := h.service.VoidAdvance(c.Request.Context(), id, req.Reason, actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, advance)
}
