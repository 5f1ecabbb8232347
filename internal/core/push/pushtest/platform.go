// Package pushtest provides an in-memory push.Platform for tests.
package pushtest

import (
	"context"
	"sync"

	"github.com/colonyops/deskbell/internal/core/push"
)

// Shown is a notification the fake platform displayed.
type Shown struct {
	Alert   push.Alert
	OnClick func()
	Closed  bool
}

// Platform records shown notifications.
type Platform struct {
	mu        sync.Mutex
	perm      push.Permission
	requested push.Permission
	requests  int
	showErr   error
	shown     []*Shown
}

// New returns a Platform reporting perm until asked, and answering a request
// with requested.
func New(perm, requested push.Permission) *Platform {
	return &Platform{perm: perm, requested: requested}
}

// Granted returns a Platform that has already granted permission.
func Granted() *Platform {
	return New(push.PermissionGranted, push.PermissionGranted)
}

// FailWith makes subsequent Show calls return err.
func (p *Platform) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.showErr = err
}

func (p *Platform) Permission() push.Permission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perm
}

func (p *Platform) RequestPermission(context.Context) (push.Permission, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests++
	p.perm = p.requested
	return p.perm, nil
}

func (p *Platform) Show(_ context.Context, a push.Alert, onClick func()) (push.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.showErr != nil {
		return nil, p.showErr
	}
	s := &Shown{Alert: a, OnClick: onClick}
	p.shown = append(p.shown, s)
	return &handle{p: p, s: s}, nil
}

// Requests returns how many times permission was requested.
func (p *Platform) Requests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests
}

// Shown returns a snapshot of the displayed notifications.
func (p *Platform) Shown() []Shown {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Shown, len(p.shown))
	for i, s := range p.shown {
		out[i] = *s
	}
	return out
}

// Click activates the i-th displayed notification.
func (p *Platform) Click(i int) {
	p.mu.Lock()
	fn := p.shown[i].OnClick
	p.mu.Unlock()
	fn()
}

type handle struct {
	p *Platform
	s *Shown
}

func (h *handle) Close() error {
	h.p.mu.Lock()
	defer h.p.mu.Unlock()
	h.s.Closed = true
	return nil
}
