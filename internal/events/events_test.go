package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got BookingEventPayload
	bus.Subscribe(EventCheckoutRequested, func(e *Event) error {
		return json.Unmarshal(e.Payload, &got)
	})

	err := bus.PublishJSON(EventCheckoutRequested, BookingEventPayload{
		SessionID:   "sess-1",
		WorkspaceID: "ws-1",
		Total:       50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, int64(50000), got.Total)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventSelectionSet, func(e *Event) error {
		calls++
		return nil
	})

	bus.PublishJSON(EventSelectionCleared, BookingEventPayload{SessionID: "sess-1"})
	assert.Equal(t, 0, calls)

	bus.PublishJSON(EventSelectionSet, BookingEventPayload{SessionID: "sess-1"})
	assert.Equal(t, 1, calls)
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	second := false
	bus.Subscribe(EventCheckoutConflict, func(e *Event) error { return errors.New("boom") })
	bus.Subscribe(EventCheckoutConflict, func(e *Event) error { second = true; return nil })

	bus.PublishJSON(EventCheckoutConflict, BookingEventPayload{SessionID: "sess-1"})
	assert.True(t, second)
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventSelectionSet, nil))
}
