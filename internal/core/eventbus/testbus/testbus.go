// Package testbus runs a real EventBus that records every delivered event so
// tests can wait on and inspect what a component published.
package testbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/deskbell/internal/core/eventbus"
)

type delivered struct {
	event   eventbus.Event
	payload any
}

// Bus is a started EventBus with a delivery log.
type Bus struct {
	*eventbus.EventBus

	mu     sync.Mutex
	log    []delivered
	notify chan struct{}
}

// New starts a recording bus that stops when the test ends.
func New(t *testing.T) *Bus {
	t.Helper()

	tb := &Bus{
		EventBus: eventbus.New(64),
		notify:   make(chan struct{}),
	}

	tb.SubscribeAlertDispatched(recorder[eventbus.AlertDispatchedPayload](tb, eventbus.EventAlertDispatched))
	tb.SubscribeAlertFiltered(recorder[eventbus.AlertFilteredPayload](tb, eventbus.EventAlertFiltered))
	tb.SubscribeChannelFailed(recorder[eventbus.ChannelFailedPayload](tb, eventbus.EventChannelFailed))
	tb.SubscribePushClicked(recorder[eventbus.PushClickedPayload](tb, eventbus.EventPushClicked))
	tb.SubscribePushPermissionGranted(recorder[eventbus.PushPermissionGrantedPayload](tb, eventbus.EventPushPermissionGranted))
	tb.SubscribeSettingsUpdated(recorder[eventbus.SettingsUpdatedPayload](tb, eventbus.EventSettingsUpdated))
	tb.SubscribeSnapshotProcessed(recorder[eventbus.SnapshotProcessedPayload](tb, eventbus.EventSnapshotProcessed))

	ctx, cancel := context.WithCancel(context.Background())
	go tb.Start(ctx)
	t.Cleanup(cancel)

	return tb
}

func recorder[P any](tb *Bus, event eventbus.Event) func(P) {
	return func(p P) {
		tb.mu.Lock()
		tb.log = append(tb.log, delivered{event: event, payload: p})
		wake := tb.notify
		tb.notify = make(chan struct{})
		tb.mu.Unlock()
		close(wake)
	}
}

// Of returns the payloads delivered for event, oldest first.
func (tb *Bus) Of(event eventbus.Event) []any {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	var out []any
	for _, d := range tb.log {
		if d.event == event {
			out = append(out, d.payload)
		}
	}
	return out
}

// Payloads is Of with the payloads converted to P. Entries of another type
// are skipped.
func Payloads[P any](tb *Bus, event eventbus.Event) []P {
	var out []P
	for _, v := range tb.Of(event) {
		if p, ok := v.(P); ok {
			out = append(out, p)
		}
	}
	return out
}

// WaitFor blocks until event has been delivered or timeout passes.
func (tb *Bus) WaitFor(event eventbus.Event, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		tb.mu.Lock()
		seen := false
		for _, d := range tb.log {
			if d.event == event {
				seen = true
				break
			}
		}
		wake := tb.notify
		tb.mu.Unlock()

		if seen {
			return true
		}
		select {
		case <-wake:
		case <-deadline.C:
			return false
		}
	}
}

// AssertPublished fails the test if event is not delivered within 500ms.
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
