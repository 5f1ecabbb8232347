package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/colonyops/deskbell/internal/poll"
)

const (
	volumeStep     = 0.1
	statusInterval = time.Second
)

// Messages delivered to the program by the sinks.
type (
	bannerMsg   render.BannerRequest
	menuMsg     render.MenuRequest
	focusMsg    push.Alert
	settingsMsg struct {
		settings settings.Settings
		err      error
	}
	statusTickMsg time.Time
	openedMsg     struct{ err error }
)

// Actions are the side effects the TUI can trigger. Any may be nil.
type Actions struct {
	// Refresh requests an immediate poll and reports false when throttled.
	Refresh func() bool
	// Open navigates to a notification link.
	Open func(link string) error
	// UpdateSettings applies fn and persists the result.
	UpdateSettings func(fn func(*settings.Settings)) (settings.Settings, error)
	// Status reports the latest poll outcome.
	Status func() poll.Status
}

// Model is the bubbletea model for the alert watcher.
type Model struct {
	keys    keyMap
	help    help.Model
	actions Actions

	banners *bannerStack

	menu     render.MenuRequest
	cursor   int
	settings settings.Settings
	status   poll.Status

	width  int
	height int
}

// New creates a Model showing st until the first menu render arrives.
func New(st settings.Settings, actions Actions) Model {
	return Model{
		keys:     defaultKeyMap(),
		help:     help.New(),
		actions:  actions,
		banners:  newBannerStack(),
		settings: st,
		menu:     render.MenuRequest{},
	}
}

func (m Model) Init() tea.Cmd {
	return scheduleStatusTick()
}

func scheduleStatusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case bannerMsg:
		return m.pushBanner(render.BannerRequest(msg))

	case menuMsg:
		m.menu = render.MenuRequest(msg)
		m.cursor = clampCursor(m.cursor, len(m.menu.Items))
		return m, nil

	case focusMsg:
		for i, item := range m.menu.Items {
			if item.Title == msg.Title {
				m.cursor = i
				break
			}
		}
		return m, nil

	case settingsMsg:
		if msg.err != nil {
			return m.pushBanner(render.NewBanner("Settings not saved: "+msg.err.Error(), alert.SeverityWarning, defaultBannerTTL))
		}
		m.settings = msg.settings
		return m, nil

	case openedMsg:
		if msg.err != nil {
			return m.pushBanner(render.NewBanner("Could not open link: "+msg.err.Error(), alert.SeverityWarning, defaultBannerTTL))
		}
		return m, nil

	case bannerTickMsg:
		return m.tick()

	case statusTickMsg:
		if m.actions.Status != nil {
			m.status = m.actions.Status()
		}
		return m, scheduleStatusTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) pushBanner(b render.BannerRequest) (tea.Model, tea.Cmd) {
	m.banners.push(b)
	if m.banners.ticking {
		return m, nil
	}
	m.banners.ticking = true
	return m, scheduleBannerTick()
}

func (m Model) tick() (tea.Model, tea.Cmd) {
	m.banners.advance(bannerTick)
	if m.banners.idle() {
		m.banners.ticking = false
		return m, nil
	}
	return m, scheduleBannerTick()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(m.menu.Items))

	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(m.menu.Items))

	case key.Matches(msg, m.keys.Open):
		return m, m.openSelected()

	case key.Matches(msg, m.keys.Refresh):
		if m.actions.Refresh != nil && !m.actions.Refresh() {
			return m.pushBanner(render.NewBanner("Refresh throttled, try again shortly", alert.SeverityInfo, 2*time.Second))
		}

	case key.Matches(msg, m.keys.Sound):
		return m, m.updateSettings(func(s *settings.Settings) { s.SoundEnabled = !s.SoundEnabled })

	case key.Matches(msg, m.keys.Push):
		return m, m.updateSettings(func(s *settings.Settings) { s.PushEnabled = !s.PushEnabled })

	case key.Matches(msg, m.keys.Critical):
		return m, m.updateSettings(func(s *settings.Settings) { s.CriticalOnly = !s.CriticalOnly })

	case key.Matches(msg, m.keys.VolUp):
		return m, m.updateSettings(func(s *settings.Settings) { s.SoundVolume = stepVolume(s.SoundVolume, volumeStep) })

	case key.Matches(msg, m.keys.VolDown):
		return m, m.updateSettings(func(s *settings.Settings) { s.SoundVolume = stepVolume(s.SoundVolume, -volumeStep) })

	case key.Matches(msg, m.keys.Dismiss):
		m.banners.dismiss()

	case key.Matches(msg, m.keys.Clear):
		m.banners.clear()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m Model) openSelected() tea.Cmd {
	if m.actions.Open == nil || len(m.menu.Items) == 0 {
		return nil
	}
	link := m.menu.Items[m.cursor].URL
	if link == "" {
		return nil
	}
	open := m.actions.Open
	return func() tea.Msg {
		return openedMsg{err: open(link)}
	}
}

func (m Model) updateSettings(fn func(*settings.Settings)) tea.Cmd {
	if m.actions.UpdateSettings == nil {
		return nil
	}
	update := m.actions.UpdateSettings
	return func() tea.Msg {
		st, err := update(fn)
		return settingsMsg{settings: st, err: err}
	}
}

// stepVolume moves v by delta on a one-decimal grid within [0, 1].
func stepVolume(v, delta float64) float64 {
	stepped := float64(int((v+delta)*10+0.5)) / 10
	if v+delta < 0 {
		stepped = 0
	}
	return settings.ClampVolume(stepped)
}

func clampCursor(c, n int) int {
	if n == 0 || c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}

// Selected returns the item under the cursor.
func (m Model) Selected() (render.MenuItem, bool) {
	if len(m.menu.Items) == 0 {
		return render.MenuItem{}, false
	}
	return m.menu.Items[m.cursor], true
}

func (m Model) volumeLabel() string {
	return fmt.Sprintf("%d%%", int(m.settings.SoundVolume*100+0.5))
}
