// Package testbus runs a real EventBus for tests and records what it delivers.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/taskpilot/internal/core/eventbus"
)

// Bus is a started EventBus that keeps every delivered payload, grouped by
// event.
type Bus struct {
	*eventbus.EventBus

	mu       sync.Mutex
	payloads map[eventbus.Event][]any
	// delivered is closed and replaced on every delivery.
	delivered chan struct{}
}

// New starts a bus that records all taskpilot events until the test ends.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus:  eventbus.New(64),
		payloads:  make(map[eventbus.Event][]any),
		delivered: make(chan struct{}),
	}

	tb.SubscribeTasksChanged(func(p eventbus.TasksChangedPayload) {
		tb.record(eventbus.EventTasksChanged, p)
	})
	tb.SubscribeCommandProcessed(func(p eventbus.CommandProcessedPayload) {
		tb.record(eventbus.EventCommandProcessed, p)
	})
	tb.SubscribeChatPruned(func(p eventbus.ChatPrunedPayload) {
		tb.record(eventbus.EventChatPruned, p)
	})

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func (tb *Bus) record(event eventbus.Event, payload any) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.payloads[event] = append(tb.payloads[event], payload)
	close(tb.delivered)
	tb.delivered = make(chan struct{})
}

// Payloads returns the payloads delivered for event, oldest first.
func (tb *Bus) Payloads(event eventbus.Event) []any {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return append([]any(nil), tb.payloads[event]...)
}

// TasksChanged returns the delivered TasksChanged payloads.
func (tb *Bus) TasksChanged() []eventbus.TasksChangedPayload {
	var out []eventbus.TasksChangedPayload
	for _, p := range tb.Payloads(eventbus.EventTasksChanged) {
		out = append(out, p.(eventbus.TasksChangedPayload))
	}
	return out
}

// WaitFor reports whether event is delivered before timeout. It returns
// immediately if the event was already seen.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		tb.mu.Lock()
		seen := len(tb.payloads[event]) > 0
		next := tb.delivered
		tb.mu.Unlock()

		if seen {
			return true
		}
		select {
		case <-next:
		case <-deadline.C:
			return false
		}
	}
}

// AssertPublished fails the test unless event is delivered within 500ms.
func (tb *Bus) AssertPublished(t *testing.T, event eventbus.Event) {
	t.Helper()
	if !tb.WaitFor(event, 500*time.Millisecond) {
		t.Errorf("event %q was not published", event)
	}
}

// AssertNotPublished fails the test if event is delivered within wait.
func (tb *Bus) AssertNotPublished(t *testing.T, event eventbus.Event, wait time.Duration) {
	t.Helper()
	if tb.WaitFor(event, wait) {
		t.Errorf("event %q was published", event)
	}
}
