package dbusnotify

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUrgencyFor(t *testing.T) {
	assert.Equal(t, UrgencyCritical, UrgencyFor(alert.LevelCritical))
	assert.Equal(t, UrgencyNormal, UrgencyFor(alert.LevelHigh))
	assert.Equal(t, UrgencyNormal, UrgencyFor(alert.LevelNormal))
	assert.Equal(t, UrgencyLow, UrgencyFor(alert.LevelLow))
}

func TestPlatform_permission_before_connect(t *testing.T) {
	p := New("deskbell", zerolog.Nop())

	assert.Equal(t, push.PermissionDefault, p.Permission())

	_, err := p.Show(context.Background(), push.Alert{Title: "T1"}, nil)
	assert.ErrorIs(t, err, push.ErrUnavailable)
}

func TestPlatform_Show_after_denial(t *testing.T) {
	p := New("deskbell", zerolog.Nop())
	p.perm = push.PermissionDenied

	_, err := p.Show(context.Background(), push.Alert{Title: "T1"}, nil)
	assert.ErrorIs(t, err, push.ErrPermissionDenied)
}

func TestPlatform_listen_routes_clicks(t *testing.T) {
	p := New("deskbell", zerolog.Nop())
	clicked := make(chan uint32, 1)
	p.clicks.Put(7, func() { clicked <- 7 })
	p.byTag.Put("deskbell-high", 9)
	p.clicks.Put(9, func() { t.Error("closed notification must not click") })

	signals := make(chan *dbus.Signal, 4)
	go p.listen(signals)

	signals <- &dbus.Signal{Name: signalClosed, Body: []any{uint32(9), uint32(2)}}
	signals <- &dbus.Signal{Name: signalActionInvoked, Body: []any{uint32(7), defaultAction}}
	signals <- &dbus.Signal{Name: signalActionInvoked, Body: []any{"garbage"}}

	select {
	case id := <-clicked:
		assert.Equal(t, uint32(7), id)
	case <-time.After(time.Second):
		t.Fatal("click not delivered")
	}

	assert.Eventually(t, func() bool { return p.clicks.Len() == 0 }, time.Second, 5*time.Millisecond)
	close(signals)
}

func TestPlatform_forget_keeps_newer_tag_owner(t *testing.T) {
	p := New("deskbell", zerolog.Nop())
	p.byTag.Put("deskbell-critical", 12)

	p.forget(11, "deskbell-critical")
	id, ok := p.byTag.Get("deskbell-critical")
	assert.True(t, ok)
	assert.Equal(t, uint32(12), id)

	p.forget(12, "deskbell-critical")
	_, ok = p.byTag.Get("deskbell-critical")
	assert.False(t, ok)
}
