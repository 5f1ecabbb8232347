// Package rendertest provides a recording render.Sink for tests.
package rendertest

import (
	"sync"

	"github.com/colonyops/deskbell/internal/core/render"
)

// Recorder captures every request sent to it.
type Recorder struct {
	mu      sync.Mutex
	banners []render.BannerRequest
	menus   []render.MenuRequest
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) ShowBanner(req render.BannerRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banners = append(r.banners, req)
}

func (r *Recorder) RenderMenu(req render.MenuRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.menus = append(r.menus, req)
}

// Banners returns a copy of the recorded banners.
func (r *Recorder) Banners() []render.BannerRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]render.BannerRequest(nil), r.banners...)
}

// Menus returns a copy of the recorded menu renders.
func (r *Recorder) Menus() []render.MenuRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]render.MenuRequest(nil), r.menus...)
}

// LastMenu returns the most recent menu render and whether there was one.
func (r *Recorder) LastMenu() (render.MenuRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.menus) == 0 {
		return render.MenuRequest{}, false
	}
	return r.menus[len(r.menus)-1], true
}

// Reset clears all recorded requests.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.banners = nil
	r.menus = nil
}
