// Package push delivers alerts as OS-level desktop notifications.
//
// The Notifier holds no platform code; a Platform implementation talks to the
// desktop. Permission is resolved once at startup. A denial disables the
// channel silently for the rest of the session.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/rs/zerolog"
)

var (
	// ErrPermissionDenied is returned by a Platform that refuses to show notifications.
	ErrPermissionDenied = errors.New("notification permission denied")
	// ErrUnavailable is returned when no notification service can be reached.
	ErrUnavailable = errors.New("notification service unavailable")
)

// Permission is the platform's answer to whether notifications may be shown.
type Permission int

const (
	PermissionDefault Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// Alert is what the platform is asked to display.
type Alert struct {
	Title string
	Body  string
	// Tag groups notifications so the platform can replace same-tag alerts.
	Tag                string
	Level              alert.Level
	RequireInteraction bool
	AutoDismiss        time.Duration
	URL                string
}

// Handle refers to a displayed notification.
type Handle interface {
	Close() error
}

// Platform is a desktop notification service.
type Platform interface {
	// Permission reports the current permission without prompting.
	Permission() Permission
	// RequestPermission asks for permission and returns the outcome.
	RequestPermission(ctx context.Context) (Permission, error)
	// Show displays a. onClick runs when the user activates the notification.
	Show(ctx context.Context, a Alert, onClick func()) (Handle, error)
}

// Options configures a Notifier. Zero values are valid.
type Options struct {
	Clock   clock.Clock
	BaseURL string
	// OpenURL navigates to a notification's link.
	OpenURL func(link string) error
	// Focus brings the host view to the front for the clicked alert.
	Focus func(a Alert)
	// OnGranted runs when permission changes from undetermined to granted.
	OnGranted func()
	// OnClick runs after a click was handled.
	OnClick func(a Alert)
}

// Notifier is the push channel core.
type Notifier struct {
	platform Platform
	opts     Options
	log      zerolog.Logger

	granted atomic.Bool
}

// NewNotifier creates a Notifier. It shows nothing until permission has been
// resolved by Init or Resolve.
func NewNotifier(p Platform, opts Options, log zerolog.Logger) *Notifier {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Notifier{platform: p, opts: opts, log: log}
}

// Init resolves permission in the background and returns immediately.
func (n *Notifier) Init(ctx context.Context) {
	go func() {
		if _, err := n.Resolve(ctx); err != nil {
			n.log.Debug().Err(err).Msg("notification permission unresolved")
		}
	}()
}

// Resolve determines whether notifications may be shown, prompting when the
// platform has not decided yet.
func (n *Notifier) Resolve(ctx context.Context) (Permission, error) {
	perm := n.platform.Permission()
	if perm == PermissionDefault {
		var err error
		perm, err = n.platform.RequestPermission(ctx)
		if err != nil {
			n.granted.Store(false)
			return PermissionDefault, err
		}
		if perm == PermissionGranted && n.opts.OnGranted != nil {
			defer n.opts.OnGranted()
		}
	}

	n.granted.Store(perm == PermissionGranted)
	return perm, nil
}

// Granted reports whether notifications are currently allowed.
func (n *Notifier) Granted() bool {
	return n.granted.Load()
}

// Notify shows an alert for a notification at level. It is a no-op when
// permission has not been granted. A platform denial clears the granted flag
// without surfacing an error.
func (n *Notifier) Notify(ctx context.Context, title, message string, level alert.Level, link string) error {
	if !n.granted.Load() {
		return nil
	}

	a := Alert{
		Title:              title,
		Body:               message,
		Tag:                level.PushTag(),
		Level:              level,
		RequireInteraction: level.RequiresInteraction(),
		AutoDismiss:        level.PushTimeout(),
		URL:                ResolveURL(n.opts.BaseURL, link),
	}

	var ref handleRef
	h, err := n.platform.Show(ctx, a, func() {
		n.click(a, &ref)
	})
	if errors.Is(err, ErrPermissionDenied) {
		n.granted.Store(false)
		n.log.Debug().Msg("notification permission revoked")
		return nil
	}
	if err != nil {
		return fmt.Errorf("show notification: %w", err)
	}
	ref.set(h)

	n.opts.Clock.AfterFunc(a.AutoDismiss, func() {
		ref.close()
	})
	return nil
}

func (n *Notifier) click(a Alert, ref *handleRef) {
	if n.opts.Focus != nil {
		n.opts.Focus(a)
	}
	if a.URL != "" && n.opts.OpenURL != nil {
		if err := n.opts.OpenURL(a.URL); err != nil {
			n.log.Warn().Err(err).Str("url", a.URL).Msg("failed to open notification link")
		}
	}
	ref.close()
	if n.opts.OnClick != nil {
		n.opts.OnClick(a)
	}
}

// ResolveURL resolves a notification link against base. Absolute links and
// links that cannot be parsed are returned unchanged.
func ResolveURL(base, link string) string {
	if link == "" || base == "" {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	b, err := url.Parse(strings.TrimSuffix(base, "/") + "/")
	if err != nil {
		return link
	}
	return b.ResolveReference(ref).String()
}

// handleRef closes a notification at most once, from whichever of the click
// and the dismiss timer gets there first.
type handleRef struct {
	mu     sync.Mutex
	h      Handle
	closed bool
}

func (r *handleRef) set(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.h = h
	if r.closed && h != nil {
		_ = h.Close()
	}
}

func (r *handleRef) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if r.h != nil {
		_ = r.h.Close()
	}
}
