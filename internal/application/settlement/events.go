package settlement

import (
	"context"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"go.uber.org/zap"
)

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents drains pending events after a successful commit. Publishing
// failures are logged; the state change has already been committed.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, sources ...eventSource) {
	var events []shared.DomainEvent
	for _, src := range sources {
		if src == nil {
			continue
		}
		events = append(events, src.GetDomainEvents()...)
		src.ClearDomainEvents()
	}
	if len(events) == 0 || publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func validationError(message string) error {
	return shared.NewDomainError(shared.CodeValidation, message)
}
