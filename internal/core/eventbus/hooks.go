package eventbus

import (
	"sync"
	"sync/atomic"
)

// hookList is a concurrency-safe list of callbacks of one shape.
type hookList[F any] struct {
	mu  sync.RWMutex
	fns []F
}

func (h *hookList[F]) add(fn F) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// each calls visit for every registered hook, outside the lock.
func (h *hookList[F]) each(visit func(F)) {
	h.mu.RLock()
	fns := append([]F(nil), h.fns...)
	h.mu.RUnlock()
	for _, fn := range fns {
		visit(fn)
	}
}

type hooks struct {
	published  hookList[func(Event, any)]
	dropped    hookList[func(Event, any)]
	subscribed hookList[func(Event)]
	panicked   hookList[func(Event, any, any)]

	drops atomic.Int64
}

// OnPublish registers fn to run after an event is queued.
func (bus *EventBus) OnPublish(fn func(Event, any)) { bus.hooks.published.add(fn) }

// OnDrop registers fn to run when an event is discarded because the buffer
// is full.
func (bus *EventBus) OnDrop(fn func(Event, any)) { bus.hooks.dropped.add(fn) }

// OnSubscribe registers fn to run after a subscriber is added.
func (bus *EventBus) OnSubscribe(fn func(Event)) { bus.hooks.subscribed.add(fn) }

// OnPanic registers fn to run with the recovered value when a subscriber
// panics. A panicking hook is itself swallowed.
func (bus *EventBus) OnPanic(fn func(Event, any, any)) { bus.hooks.panicked.add(fn) }

// Dropped reports how many events were discarded since the bus was created.
func (bus *EventBus) Dropped() int64 {
	return bus.hooks.drops.Load()
}

// send queues an event without blocking.
func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.hooks.published.each(func(fn func(Event, any)) { fn(event, payload) })
	default:
		bus.hooks.drops.Add(1)
		bus.hooks.dropped.each(func(fn func(Event, any)) { fn(event, payload) })
	}
}

func (bus *EventBus) runOnSubscribe(event Event) {
	bus.hooks.subscribed.each(func(fn func(Event)) { fn(event) })
}

func (bus *EventBus) runOnPanic(event Event, payload any, recovered any) {
	bus.hooks.panicked.each(func(fn func(Event, any, any)) {
		defer func() { _ = recover() }()
		fn(event, payload, recovered)
	})
}
