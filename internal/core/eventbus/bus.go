package eventbus

import (
	"context"
	"sync"
)

// Event names a published event type.
type Event string

type envelope struct {
	event   Event
	payload any
}

// EventBus is a buffered, single-consumer publish/subscribe bus. Publishing
// never blocks; when the buffer is full the event is dropped and the OnDrop
// hooks fire. Subscribers run sequentially on the goroutine that called Start.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with room for buffer pending events.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 1
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start delivers events to subscribers until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.deliver(env)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) deliver(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}
