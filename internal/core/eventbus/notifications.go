package eventbus

import (
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/render"
)

// Banner texts for lifecycle events.
const (
	BannerPushEnabled   = "Desktop notifications enabled"
	BannerSettingsSaved = "Settings saved"
)

const confirmationDuration = 3 * time.Second

// NotificationRouter maps lifecycle events to user-facing banners.
type NotificationRouter struct {
	bus  *EventBus
	sink render.Sink
}

// NewNotificationRouter constructs a router that shows banners on sink.
func NewNotificationRouter(bus *EventBus, sink render.Sink) *NotificationRouter {
	return &NotificationRouter{bus: bus, sink: sink}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil || r.sink == nil {
		return
	}

	r.bus.SubscribePushPermissionGranted(func(PushPermissionGrantedPayload) {
		r.sink.ShowBanner(render.NewBanner(BannerPushEnabled, alert.SeveritySuccess, confirmationDuration))
	})

	r.bus.SubscribeSettingsUpdated(func(SettingsUpdatedPayload) {
		r.sink.ShowBanner(render.NewBanner(BannerSettingsSaved, alert.SeveritySuccess, confirmationDuration))
	})
}
