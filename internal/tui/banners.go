package tui

import (
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/styles"
)

const (
	defaultBannerTTL = 5 * time.Second
	maxBanners       = 5
	bannerTick       = 100 * time.Millisecond
	bannerWidth      = 56
	flashPhase       = 500 * time.Millisecond
)

type bannerTickMsg time.Time

func scheduleBannerTick() tea.Cmd {
	return tea.Tick(bannerTick, func(t time.Time) tea.Msg {
		return bannerTickMsg(t)
	})
}

type liveBanner struct {
	req  render.BannerRequest
	left time.Duration
}

// bannerStack holds the transient banners shown under the menu, oldest
// first, and the header flash that a critical banner starts. Time only
// moves through advance so the model can drive it from tick messages.
type bannerStack struct {
	live    []liveBanner
	ticking bool

	flashLeft  time.Duration
	flashPhase time.Duration
	flashOn    bool
}

func newBannerStack() *bannerStack {
	return &bannerStack{}
}

// push shows b for its own duration, dropping the oldest banner beyond
// maxBanners. A longer flash request restarts the flash.
func (s *bannerStack) push(b render.BannerRequest) {
	ttl := b.Duration
	if ttl <= 0 {
		ttl = defaultBannerTTL
	}
	s.live = append(s.live, liveBanner{req: b, left: ttl})
	if over := len(s.live) - maxBanners; over > 0 {
		s.live = s.live[over:]
	}

	if b.Flash > s.flashLeft {
		s.flashLeft = b.Flash
		s.flashPhase = 0
		s.flashOn = true
	}
}

// advance moves time forward by d, expiring banners and blinking the flash.
func (s *bannerStack) advance(d time.Duration) {
	kept := s.live[:0]
	for _, b := range s.live {
		if b.left -= d; b.left > 0 {
			kept = append(kept, b)
		}
	}
	s.live = kept

	if s.flashLeft <= 0 {
		return
	}
	s.flashLeft -= d
	s.flashPhase += d
	if s.flashPhase >= flashPhase {
		s.flashPhase = 0
		s.flashOn = !s.flashOn
	}
	if s.flashLeft <= 0 {
		s.flashLeft = 0
		s.flashOn = false
	}
}

// dismiss drops the newest banner.
func (s *bannerStack) dismiss() {
	if n := len(s.live); n > 0 {
		s.live = s.live[:n-1]
	}
}

func (s *bannerStack) clear() {
	s.live = s.live[:0]
}

func (s *bannerStack) len() int {
	return len(s.live)
}

// idle reports whether nothing needs further ticks.
func (s *bannerStack) idle() bool {
	return len(s.live) == 0 && s.flashLeft == 0
}

// flashing reports whether the header flash is in its visible phase.
func (s *bannerStack) flashing() bool {
	return s.flashLeft > 0 && s.flashOn
}

// view renders the stack newest first, right-aligned in a block width
// columns wide.
func (s *bannerStack) view(width int) string {
	if len(s.live) == 0 {
		return ""
	}
	boxes := make([]string, 0, len(s.live))
	for _, b := range slices.Backward(s.live) {
		boxes = append(boxes, renderBanner(b.req))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, strings.Join(boxes, "\n"))
}

func renderBanner(b render.BannerRequest) string {
	accent := styles.SeverityColor(b.Severity)
	return styles.BannerStyle.
		BorderForeground(accent).
		Foreground(accent).
		Width(bannerWidth).
		Render(styles.SeverityIcon(b.Severity) + " " + b.Text)
}
