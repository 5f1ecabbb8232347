// Package eventbus provides a typed publish/subscribe event bus for the
// dispatch lifecycle within deskbell.
package eventbus

import (
	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/settings"
)

// Keep list sorted A-Z.
const (
	EventAlertDispatched       Event = "alert.dispatched"
	EventAlertFiltered         Event = "alert.filtered"
	EventChannelFailed         Event = "channel.failed"
	EventPushClicked           Event = "push.clicked"
	EventPushPermissionGranted Event = "push.permission-granted"
	EventSettingsUpdated       Event = "settings.updated"
	EventSnapshotProcessed     Event = "snapshot.processed"
)

// AlertDispatchedPayload is emitted when a new alert reached the side-effecting channels.
type AlertDispatchedPayload struct {
	CycleID      string
	Notification alert.Notification
	Level        alert.Level
}

// AlertFilteredPayload is emitted when a new alert was held back by the critical-only filter.
type AlertFilteredPayload struct {
	CycleID      string
	Notification alert.Notification
	Level        alert.Level
}

// ChannelFailedPayload is emitted when a channel returned an error or panicked.
type ChannelFailedPayload struct {
	CycleID string
	Channel string
	Title   string
	Err     error
}

// PushClickedPayload is emitted when the user activates a desktop notification.
type PushClickedPayload struct {
	Tag string
	URL string
}

// PushPermissionGrantedPayload is emitted when desktop notifications become available.
type PushPermissionGrantedPayload struct{}

// SettingsUpdatedPayload is emitted after settings were changed.
type SettingsUpdatedPayload struct {
	Settings settings.Settings
}

// SnapshotProcessedPayload is emitted at the end of every dispatch cycle.
type SnapshotProcessedPayload struct {
	CycleID    string
	Total      int
	New        int
	Dispatched int
}

func (bus *EventBus) PublishAlertDispatched(p AlertDispatchedPayload) {
	bus.send(EventAlertDispatched, p)
}

func (bus *EventBus) SubscribeAlertDispatched(fn func(AlertDispatchedPayload)) {
	bus.subscribe(EventAlertDispatched, func(v any) { fn(v.(AlertDispatchedPayload)) })
}

func (bus *EventBus) PublishAlertFiltered(p AlertFilteredPayload) {
	bus.send(EventAlertFiltered, p)
}

func (bus *EventBus) SubscribeAlertFiltered(fn func(AlertFilteredPayload)) {
	bus.subscribe(EventAlertFiltered, func(v any) { fn(v.(AlertFilteredPayload)) })
}

func (bus *EventBus) PublishChannelFailed(p ChannelFailedPayload) {
	bus.send(EventChannelFailed, p)
}

func (bus *EventBus) SubscribeChannelFailed(fn func(ChannelFailedPayload)) {
	bus.subscribe(EventChannelFailed, func(v any) { fn(v.(ChannelFailedPayload)) })
}

func (bus *EventBus) PublishPushClicked(p PushClickedPayload) {
	bus.send(EventPushClicked, p)
}

func (bus *EventBus) SubscribePushClicked(fn func(PushClickedPayload)) {
	bus.subscribe(EventPushClicked, func(v any) { fn(v.(PushClickedPayload)) })
}

func (bus *EventBus) PublishPushPermissionGranted(p PushPermissionGrantedPayload) {
	bus.send(EventPushPermissionGranted, p)
}

func (bus *EventBus) SubscribePushPermissionGranted(fn func(PushPermissionGrantedPayload)) {
	bus.subscribe(EventPushPermissionGranted, func(v any) { fn(v.(PushPermissionGrantedPayload)) })
}

func (bus *EventBus) PublishSettingsUpdated(p SettingsUpdatedPayload) {
	bus.send(EventSettingsUpdated, p)
}

func (bus *EventBus) SubscribeSettingsUpdated(fn func(SettingsUpdatedPayload)) {
	bus.subscribe(EventSettingsUpdated, func(v any) { fn(v.(SettingsUpdatedPayload)) })
}

func (bus *EventBus) PublishSnapshotProcessed(p SnapshotProcessedPayload) {
	bus.send(EventSnapshotProcessed, p)
}

func (bus *EventBus) SubscribeSnapshotProcessed(fn func(SnapshotProcessedPayload)) {
	bus.subscribe(EventSnapshotProcessed, func(v any) { fn(v.(SnapshotProcessedPayload)) })
}
