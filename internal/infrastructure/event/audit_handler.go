package event

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per settlement event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// Handle logs the event envelope fields
func (h *AuditLogHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.logger.Info(evt.EventType(),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.String("actor", evt.Actor()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

// EventTypes is empty: every event is audited
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
