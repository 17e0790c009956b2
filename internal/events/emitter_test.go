package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
)

type recordingHandler struct {
	handled []domain.Event
	err     error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event domain.Event) error {
	h.handled = append(h.handled, event)
	return h.err
}

func storyEvents(t *testing.T) []domain.Event {
	t.Helper()
	story, err := domain.NewStory("The Lost Compass", "a forest adventure", uuid.New(), uuid.New())
	require.NoError(t, err)
	return story.DomainEvents()
}

func TestEmitEventNoHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, event := range storyEvents(t) {
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	}
}

func TestEmitEventFanOut(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	events := storyEvents(t)
	require.NotEmpty(t, events)
	require.NoError(t, emitter.EmitEvent(context.Background(), events[0]))

	require.Len(t, first.handled, 1)
	require.Len(t, second.handled, 1)
	assert.Equal(t, events[0].ID, first.handled[0].ID)
	assert.Equal(t, domain.EventStoryCreated, second.handled[0].Kind)
}

func TestEmitEventFailingHandlerDoesNotStopDelivery(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	failing := &recordingHandler{err: errors.New("handler down")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	events := storyEvents(t)
	err := emitter.EmitEvent(context.Background(), events[0])
	assert.EqualError(t, err, "handler down")
	assert.Len(t, failing.handled, 1)
	assert.Len(t, healthy.handled, 1)
}

func TestEmitAllPreservesOrder(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
	sink := &recordingHandler{}
	emitter.RegisterHandler(sink)

	events := storyEvents(t)
	require.NoError(t, emitter.EmitAll(context.Background(), events))
	require.Len(t, sink.handled, len(events))
	for i, event := range events {
		assert.Equal(t, event.ID, sink.handled[i].ID)
	}
}
