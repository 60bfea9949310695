package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/omorfo/backend/internal/domain/cart"
	"github.com/omorfo/backend/internal/domain/shared"
)

// recordingHandler collects the events it receives
type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler blew up")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHandler) EventTypes() []string {
	return h.types
}

func (h *recordingHandler) received() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.events))
	copy(out, h.events)
	return out
}

func newTestEvent(t *testing.T) shared.DomainEvent {
	t.Helper()
	line := testLine(t)
	return cart.NewItemAddedEvent(line)
}

func testLine(t *testing.T) *cart.LineItem {
	t.Helper()
	line, err := cart.NewLineItem(uuid.New(), "Aurora Print", decimal.NewFromFloat(29.99), "", 1, cart.SizeA4, cart.FrameNone)
	require.NoError(t, err)
	return line
}

func TestInMemoryEventBus_PublishToSubscriber(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{cart.EventTypeItemAdded}}
	bus.Subscribe(handler)

	event := newTestEvent(t)
	err := bus.Publish(context.Background(), event)
	require.NoError(t, err)

	received := handler.received()
	require.Len(t, received, 1)
	assert.Equal(t, event.EventID(), received[0].EventID())
}

func TestInMemoryEventBus_SkipsUnrelatedTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{cart.EventTypeCleared}}
	bus.Subscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent(t))
	require.NoError(t, err)
	assert.Empty(t, handler.received())
}

func TestInMemoryEventBus_WildcardReceivesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{}
	bus.Subscribe(handler)

	line := testLine(t)
	err := bus.Publish(context.Background(),
		cart.NewItemAddedEvent(line),
		cart.NewItemRemovedEvent(line.ID, line.UserID),
	)
	require.NoError(t, err)
	assert.Len(t, handler.received(), 2)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{cart.EventTypeCleared}}
	bus.Subscribe(handler, cart.EventTypeItemAdded)

	err := bus.Publish(context.Background(), newTestEvent(t))
	require.NoError(t, err)
	assert.Len(t, handler.received(), 1)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := &recordingHandler{types: []string{cart.EventTypeItemAdded}}
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	err := bus.Publish(context.Background(), newTestEvent(t))
	require.NoError(t, err)
	assert.Empty(t, handler.received())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	failing := &recordingHandler{types: []string{cart.EventTypeItemAdded}, err: errors.New("boom")}
	healthy := &recordingHandler{types: []string{cart.EventTypeItemAdded}}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(t))
	require.NoError(t, err)
	assert.Len(t, healthy.received(), 1)
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	panicking := &recordingHandler{types: []string{cart.EventTypeItemAdded}, panics: true}
	healthy := &recordingHandler{types: []string{cart.EventTypeItemAdded}}
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(t))
	require.NoError(t, err)
	assert.Len(t, healthy.received(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
