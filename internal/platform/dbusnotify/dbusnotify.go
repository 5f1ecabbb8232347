// Package dbusnotify shows desktop notifications through the freedesktop.org
// Notifications service on the session bus.
package dbusnotify

import (
	"context"
	"fmt"
	"sync"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/pkg/kv"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	iface      = "org.freedesktop.Notifications"

	signalActionInvoked = iface + ".ActionInvoked"
	signalClosed        = iface + ".NotificationClosed"

	defaultAction = "default"
)

// Urgency is the freedesktop urgency hint.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// UrgencyFor maps an alert level to an urgency hint.
func UrgencyFor(level alert.Level) Urgency {
	switch level {
	case alert.LevelCritical:
		return UrgencyCritical
	case alert.LevelLow:
		return UrgencyLow
	default:
		return UrgencyNormal
	}
}

// Platform implements push.Platform over D-Bus. The bus connection is opened
// by RequestPermission; until then Permission reports PermissionDefault.
type Platform struct {
	appName string
	log     zerolog.Logger

	mu   sync.Mutex
	conn *dbus.Conn
	perm push.Permission

	// tag -> id of the notification currently showing for that tag
	byTag *kv.Store[string, uint32]
	// id -> click callback
	clicks *kv.Store[uint32, func()]
}

var _ push.Platform = (*Platform)(nil)

// New creates a Platform that sends notifications as appName.
func New(appName string, log zerolog.Logger) *Platform {
	return &Platform{
		appName: appName,
		log:     log,
		byTag:   kv.New[string, uint32](),
		clicks:  kv.New[uint32, func()](),
	}
}

func (p *Platform) Permission() push.Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perm
}

// RequestPermission connects to the session bus and checks that a
// notification server owns the well-known name. There is no user prompt on
// this platform; a missing server counts as a denial.
func (p *Platform) RequestPermission(ctx context.Context) (push.Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		return p.perm, nil
	}

	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		p.perm = push.PermissionDenied
		return p.perm, fmt.Errorf("%w: %w", push.ErrUnavailable, err)
	}

	var owned bool
	err = conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, busName).Store(&owned)
	if err != nil || !owned {
		_ = conn.Close()
		p.perm = push.PermissionDenied
		if err != nil {
			return p.perm, fmt.Errorf("%w: %w", push.ErrUnavailable, err)
		}
		return p.perm, nil
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(iface),
	); err != nil {
		p.log.Warn().Err(err).Msg("notification clicks will not be delivered")
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	go p.listen(signals)

	p.conn = conn
	p.perm = push.PermissionGranted
	return p.perm, nil
}

// Show sends a Notify call. A notification with the same tag as one still on
// screen replaces it.
func (p *Platform) Show(ctx context.Context, a push.Alert, onClick func()) (push.Handle, error) {
	p.mu.Lock()
	conn, perm := p.conn, p.perm
	p.mu.Unlock()

	if perm == push.PermissionDenied {
		return nil, push.ErrPermissionDenied
	}
	if conn == nil {
		return nil, push.ErrUnavailable
	}

	replaces, _ := p.byTag.Get(a.Tag)

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(byte(UrgencyFor(a.Level))),
	}
	timeout := int32(a.AutoDismiss.Milliseconds())
	if a.RequireInteraction {
		hints["resident"] = dbus.MakeVariant(true)
		timeout = 0
	}

	var id uint32
	err := conn.Object(busName, objectPath).CallWithContext(ctx, iface+".Notify", 0,
		p.appName,
		replaces,
		iconFor(a.Level),
		a.Title,
		a.Body,
		[]string{defaultAction, "Open"},
		hints,
		timeout,
	).Store(&id)
	if err != nil {
		return nil, fmt.Errorf("%w: notify: %w", push.ErrUnavailable, err)
	}

	if prev, ok := p.byTag.Put(a.Tag, id); ok && prev != id {
		p.clicks.Delete(prev)
	}
	if onClick != nil {
		p.clicks.Put(id, onClick)
	}

	return &handle{p: p, conn: conn, id: id, tag: a.Tag}, nil
}

// Close releases the bus connection.
func (p *Platform) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

func (p *Platform) listen(signals <-chan *dbus.Signal) {
	for sig := range signals {
		if len(sig.Body) == 0 {
			continue
		}
		id, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}

		switch sig.Name {
		case signalActionInvoked:
			if fn, ok := p.clicks.Take(id); ok {
				go fn()
			}
		case signalClosed:
			p.forget(id, "")
		}
	}
}

func (p *Platform) forget(id uint32, tag string) {
	p.clicks.Delete(id)
	if tag != "" {
		p.byTag.CompareAndDelete(tag, func(v uint32) bool { return v == id })
	}
}

func iconFor(level alert.Level) string {
	switch level {
	case alert.LevelCritical:
		return "dialog-error"
	case alert.LevelHigh:
		return "dialog-warning"
	default:
		return "dialog-information"
	}
}

type handle struct {
	p    *Platform
	conn *dbus.Conn
	id   uint32
	tag  string
	once sync.Once
	err  error
}

func (h *handle) Close() error {
	h.once.Do(func() {
		h.p.forget(h.id, h.tag)
		h.err = h.conn.Object(busName, objectPath).Call(iface+".CloseNotification", 0, h.id).Err
	})
	return h.err
}
