package push_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/internal/core/push/pushtest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotifier(t *testing.T, p push.Platform, opts push.Options) (*push.Notifier, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	opts.Clock = clk
	n := push.NewNotifier(p, opts, zerolog.Nop())
	_, err := n.Resolve(context.Background())
	require.NoError(t, err)
	return n, clk
}

func TestNotify_critical_requires_interaction_and_expires_after_15s(t *testing.T) {
	p := pushtest.Granted()
	n, clk := newNotifier(t, p, push.Options{})

	require.NoError(t, n.Notify(context.Background(), "T1", "server down", alert.LevelCritical, ""))

	shown := p.Shown()
	require.Len(t, shown, 1)
	a := shown[0].Alert
	assert.Equal(t, "T1", a.Title)
	assert.Equal(t, "server down", a.Body)
	assert.Equal(t, "deskbell-critical", a.Tag)
	assert.True(t, a.RequireInteraction)
	assert.Equal(t, 15*time.Second, a.AutoDismiss)

	clk.Advance(14 * time.Second)
	assert.False(t, p.Shown()[0].Closed)
	clk.Advance(time.Second)
	assert.True(t, p.Shown()[0].Closed)
}

func TestNotify_high_expires_after_8s(t *testing.T) {
	p := pushtest.Granted()
	n, clk := newNotifier(t, p, push.Options{})

	require.NoError(t, n.Notify(context.Background(), "T2", "new", alert.LevelHigh, ""))

	a := p.Shown()[0].Alert
	assert.False(t, a.RequireInteraction)
	assert.Equal(t, "deskbell-high", a.Tag)

	clk.Advance(8 * time.Second)
	assert.True(t, p.Shown()[0].Closed)
}

func TestNotify_noop_without_permission(t *testing.T) {
	p := pushtest.New(push.PermissionDenied, push.PermissionDenied)
	n, _ := newNotifier(t, p, push.Options{})

	require.NoError(t, n.Notify(context.Background(), "T1", "x", alert.LevelCritical, ""))
	assert.Empty(t, p.Shown())
	assert.False(t, n.Granted())
	assert.Zero(t, p.Requests(), "a settled denial is not re-requested")
}

func TestNotify_denial_during_show_clears_flag_silently(t *testing.T) {
	p := pushtest.Granted()
	n, _ := newNotifier(t, p, push.Options{})
	p.FailWith(push.ErrPermissionDenied)

	assert.NoError(t, n.Notify(context.Background(), "T1", "x", alert.LevelLow, ""))
	assert.False(t, n.Granted())
}

func TestNotify_platform_error_is_returned(t *testing.T) {
	p := pushtest.Granted()
	n, _ := newNotifier(t, p, push.Options{})
	p.FailWith(push.ErrUnavailable)

	err := n.Notify(context.Background(), "T1", "x", alert.LevelLow, "")
	assert.ErrorIs(t, err, push.ErrUnavailable)
	assert.True(t, n.Granted())
}

func TestNotify_click_focuses_navigates_and_closes(t *testing.T) {
	p := pushtest.Granted()
	var steps []string
	n, clk := newNotifier(t, p, push.Options{
		BaseURL: "http://desk.local:5000",
		Focus:   func(a push.Alert) { steps = append(steps, "focus:"+a.Title) },
		OpenURL: func(link string) error {
			steps = append(steps, "open:"+link)
			return nil
		},
		OnClick: func(push.Alert) { steps = append(steps, "clicked") },
	})

	require.NoError(t, n.Notify(context.Background(), "T1", "x", alert.LevelCritical, "/tickets/42"))
	p.Click(0)

	assert.Equal(t, []string{"focus:T1", "open:http://desk.local:5000/tickets/42", "clicked"}, steps)
	assert.True(t, p.Shown()[0].Closed)

	// The dismiss timer firing later is harmless.
	clk.Advance(time.Minute)
}

func TestNotify_click_without_url_does_not_navigate(t *testing.T) {
	p := pushtest.Granted()
	opened := false
	n, _ := newNotifier(t, p, push.Options{
		OpenURL: func(string) error {
			opened = true
			return errors.New("unexpected")
		},
	})

	require.NoError(t, n.Notify(context.Background(), "T1", "x", alert.LevelNormal, ""))
	p.Click(0)

	assert.False(t, opened)
	assert.True(t, p.Shown()[0].Closed)
}

func TestResolve_first_grant_reports_once(t *testing.T) {
	p := pushtest.New(push.PermissionDefault, push.PermissionGranted)
	granted := 0
	n := push.NewNotifier(p, push.Options{OnGranted: func() { granted++ }}, zerolog.Nop())

	perm, err := n.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, push.PermissionGranted, perm)
	assert.True(t, n.Granted())

	_, err = n.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, granted, "already-granted permission is not reported again")
	assert.Equal(t, 1, p.Requests())
}

func TestResolve_already_granted_does_not_report(t *testing.T) {
	granted := 0
	n := push.NewNotifier(pushtest.Granted(), push.Options{OnGranted: func() { granted++ }}, zerolog.Nop())

	_, err := n.Resolve(context.Background())
	require.NoError(t, err)
	assert.Zero(t, granted)
}

func TestInit_resolves_in_background(t *testing.T) {
	n := push.NewNotifier(pushtest.Granted(), push.Options{}, zerolog.Nop())
	n.Init(context.Background())

	assert.Eventually(t, n.Granted, time.Second, 5*time.Millisecond)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, link, want string
	}{
		{"http://h:5000", "/tickets/1", "http://h:5000/tickets/1"},
		{"http://h:5000/", "tickets/1", "http://h:5000/tickets/1"},
		{"http://h:5000", "https://other/x", "https://other/x"},
		{"", "/tickets/1", "/tickets/1"},
		{"http://h:5000", "", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, push.ResolveURL(tt.base, tt.link), "%s + %s", tt.base, tt.link)
	}
}
