package service

import (
	"context"
	"log/slog"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
)

// eventSource is implemented by every domain entity that records events.
type eventSource interface {
	DomainEvents() []domain.Event
	ClearDomainEvents()
}

// publishEvents drains the events recorded on the given entities and emits
// them. It is called after the corresponding data is committed; a failing
// handler is logged but does not fail the operation that produced the event.
func publishEvents(ctx context.Context, emitter events.EventEmitter, logger *slog.Logger, sources ...eventSource) {
	for _, source := range sources {
		drained := source.DomainEvents()
		source.ClearDomainEvents()
		for _, event := range drained {
			if err := emitter.EmitEvent(ctx, event); err != nil {
				logger.Error("failed to publish domain event",
					"error", err,
					"event_kind", string(event.Kind),
					"entity_id", event.EntityID)
			}
		}
	}
}
