package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

type subscriber struct {
	id int
	fn func(any)
}

// EventBus buffers published events and dispatches them to subscribers from
// a single goroutine, so subscribers of one event see them in publish order.
// Publishing never blocks; an event that does not fit in the buffer is
// dropped and reported to OnDrop hooks.
type EventBus struct {
	ch chan envelope

	mu     sync.RWMutex
	subs   map[Event][]subscriber
	nextID int

	hooks hooks
}

// hooks holds the lifecycle hook state for the EventBus.
type hooks struct {
	mu          sync.RWMutex
	onPublish   []func(Event, any)
	onDrop      []func(Event, any)
	onSubscribe []func(Event)
	onPanic     []func(Event, any, any)
}

// New creates a bus with the given buffer size. Call Start to begin
// dispatching.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]subscriber),
	}
}

// Start dispatches events until ctx is done.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]subscriber, len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, s := range subs {
		bus.call(env, s.fn)
	}
}

func (bus *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

func (bus *EventBus) subscribe(event Event, fn func(any)) func() {
	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.subs[event] = append(bus.subs[event], subscriber{id: id, fn: fn})
	bus.mu.Unlock()

	bus.hooks.mu.RLock()
	onSubscribe := append([]func(Event){}, bus.hooks.onSubscribe...)
	bus.hooks.mu.RUnlock()
	for _, h := range onSubscribe {
		h(event)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			bus.mu.Lock()
			defer bus.mu.Unlock()
			subs := bus.subs[event]
			for i, s := range subs {
				if s.id == id {
					bus.subs[event] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
		})
	}
}

// send enqueues an event and fires hooks.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.runHooks(func(h *hooks) []func(Event, any) { return h.onPublish }, event, payload)
	default:
		bus.runHooks(func(h *hooks) []func(Event, any) { return h.onDrop }, event, payload)
	}
}

// OnPublish registers a hook that fires after an event is enqueued.
func (bus *EventBus) OnPublish(fn func(Event, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPublish = append(bus.hooks.onPublish, fn)
	bus.hooks.mu.Unlock()
}

// OnDrop registers a hook that fires when an event is dropped due to a full buffer.
func (bus *EventBus) OnDrop(fn func(Event, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onDrop = append(bus.hooks.onDrop, fn)
	bus.hooks.mu.Unlock()
}

// OnSubscribe registers a hook that fires after a subscriber is registered.
func (bus *EventBus) OnSubscribe(fn func(Event)) {
	bus.hooks.mu.Lock()
	bus.hooks.onSubscribe = append(bus.hooks.onSubscribe, fn)
	bus.hooks.mu.Unlock()
}

// OnPanic registers a hook that fires when a subscriber panics.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) {
	bus.hooks.mu.Lock()
	bus.hooks.onPanic = append(bus.hooks.onPanic, fn)
	bus.hooks.mu.Unlock()
}

func (bus *EventBus) runHooks(pick func(*hooks) []func(Event, any), event Event, payload any) {
	bus.hooks.mu.RLock()
	fns := append([]func(Event, any){}, pick(&bus.hooks)...)
	bus.hooks.mu.RUnlock()
	for _, fn := range fns {
		fn(event, payload)
	}
}

func (bus *EventBus) runOnPanic(event Event, payload, recovered any) {
	bus.hooks.mu.RLock()
	fns := append([]func(Event, any, any){}, bus.hooks.onPanic...)
	bus.hooks.mu.RUnlock()
	for _, fn := range fns {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(event, payload, recovered)
		}()
	}
}
