package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/push"
	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/settings"
	"github.com/colonyops/deskbell/internal/poll"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	return m
}

func sampleMenu() render.MenuRequest {
	return render.BuildMenu(alert.Snapshot{
		Items: []alert.Notification{
			{Title: "T1", Message: "server down", RawPriority: alert.LabelCritical, TimeLabel: "10:00", URL: "/tickets/1"},
			{Title: "T2", Message: "printer", RawPriority: alert.LabelHigh, Type: alert.TypeNewTicket, TimeLabel: "10:05"},
		},
		Aggregates: alert.Aggregates{PendingForUser: alert.IntPtr(3), TotalNew: alert.IntPtr(1), TotalCritical: alert.IntPtr(1)},
	})
}

func TestModel_menu_render_and_cursor(t *testing.T) {
	m := New(settings.Defaults(), Actions{})
	m, _ = update(t, m, menuMsg(sampleMenu()))

	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "T1", sel.Title)

	m, _ = update(t, m, keyMsg("j"))
	m, _ = update(t, m, keyMsg("j"))
	sel, _ = m.Selected()
	assert.Equal(t, "T2", sel.Title, "cursor stops at the last item")

	// An empty menu resets the cursor.
	m, _ = update(t, m, menuMsg(render.BuildMenu(alert.Snapshot{})))
	_, ok = m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), render.EmptyMenuText)
}

func TestModel_View_shows_badge_summary_and_items(t *testing.T) {
	m := New(settings.Defaults(), Actions{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, menuMsg(sampleMenu()))

	view := m.View()
	assert.Contains(t, view, "deskbell")
	assert.Contains(t, view, "2")
	assert.Contains(t, view, "Mine")
	assert.Contains(t, view, "T1")
	assert.Contains(t, view, "server down")
	assert.Contains(t, view, "🎫 T2")
}

func TestModel_View_summary_counts(t *testing.T) {
	m := New(settings.Defaults(), Actions{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = update(t, m, menuMsg(render.BuildMenu(alert.Snapshot{
		Items:      []alert.Notification{{Title: "T1", TimeLabel: "1"}, {Title: "T2", TimeLabel: "2"}},
		Aggregates: alert.Aggregates{PendingForUser: alert.IntPtr(4), TotalNew: alert.IntPtr(7)},
	})))

	view := m.View()
	assert.Contains(t, view, "New 2")
	assert.Contains(t, view, "Critical 0")
}

func TestModel_View_empty_snapshot_hides_summary(t *testing.T) {
	m := New(settings.Defaults(), Actions{})
	m, _ = update(t, m, menuMsg(sampleMenu()))
	require.Contains(t, m.View(), "Mine")

	m, _ = update(t, m, menuMsg(render.BuildMenu(alert.Snapshot{
		Aggregates: alert.Aggregates{PendingForUser: alert.IntPtr(3), TotalCritical: alert.IntPtr(2)},
	})))

	view := m.View()
	assert.Contains(t, view, render.EmptyMenuText)
	assert.NotContains(t, view, "Mine")
	assert.NotContains(t, view, "Critical")
}

func TestModel_banner_expires_after_duration(t *testing.T) {
	m := New(settings.Defaults(), Actions{})

	m, cmd := update(t, m, bannerMsg(render.NewBanner("T2: printer", alert.SeverityWarning, time.Second)))
	require.NotNil(t, cmd, "first banner starts the tick")
	assert.Contains(t, m.View(), "T2: printer")

	for range 9 {
		m, cmd = update(t, m, bannerTickMsg(time.Now()))
		require.NotNil(t, cmd)
	}
	assert.Contains(t, m.View(), "T2: printer")

	m, cmd = update(t, m, bannerTickMsg(time.Now()))
	assert.Nil(t, cmd, "ticking stops once nothing is left")
	assert.NotContains(t, m.View(), "T2: printer")
}

func TestModel_critical_banner_flashes(t *testing.T) {
	m := New(settings.Defaults(), Actions{})
	req := render.NewBanner("T1: server down", alert.SeverityDanger, 8*time.Second)
	req.Flash = render.FlashDuration

	m, _ = update(t, m, bannerMsg(req))
	assert.Contains(t, m.View(), "CRITICAL")

	ticks := int(render.FlashDuration / bannerTick)
	var cmd tea.Cmd
	for range ticks {
		m, cmd = update(t, m, bannerTickMsg(time.Now()))
	}
	assert.False(t, m.banners.flashing())
	assert.NotContains(t, m.View(), "CRITICAL")
	assert.Nil(t, cmd)
}

func TestModel_enter_opens_selected_link(t *testing.T) {
	var opened []string
	m := New(settings.Defaults(), Actions{
		Open: func(link string) error {
			opened = append(opened, link)
			return nil
		},
	})
	m, _ = update(t, m, menuMsg(sampleMenu()))

	_, cmd := update(t, m, keyMsg("enter"))
	m = run(t, m, cmd)
	assert.Equal(t, []string{"/tickets/1"}, opened)

	// T2 has no link.
	m, _ = update(t, m, keyMsg("j"))
	_, cmd = update(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
}

func TestModel_open_failure_shows_banner(t *testing.T) {
	m := New(settings.Defaults(), Actions{
		Open: func(string) error { return errors.New("xdg-open missing") },
	})
	m, _ = update(t, m, menuMsg(sampleMenu()))

	_, cmd := update(t, m, keyMsg("enter"))
	m = run(t, m, cmd)
	assert.Contains(t, m.View(), "xdg-open missing")
}

func TestModel_toggles_update_settings(t *testing.T) {
	current := settings.Defaults()
	m := New(current, Actions{
		UpdateSettings: func(fn func(*settings.Settings)) (settings.Settings, error) {
			fn(&current)
			return current, nil
		},
	})

	_, cmd := update(t, m, keyMsg("s"))
	m = run(t, m, cmd)
	assert.False(t, m.settings.SoundEnabled)

	_, cmd = update(t, m, keyMsg("p"))
	m = run(t, m, cmd)
	assert.False(t, m.settings.PushEnabled)

	_, cmd = update(t, m, keyMsg("c"))
	m = run(t, m, cmd)
	assert.True(t, m.settings.CriticalOnly)

	for range 8 {
		_, cmd = update(t, m, keyMsg("+"))
		m = run(t, m, cmd)
	}
	assert.Equal(t, 1.0, m.settings.SoundVolume)

	_, cmd = update(t, m, keyMsg("-"))
	m = run(t, m, cmd)
	assert.InDelta(t, 0.9, m.settings.SoundVolume, 1e-9)
}

func TestModel_settings_error_keeps_previous(t *testing.T) {
	m := New(settings.Defaults(), Actions{
		UpdateSettings: func(fn func(*settings.Settings)) (settings.Settings, error) {
			return settings.Settings{}, errors.New("disk full")
		},
	})

	_, cmd := update(t, m, keyMsg("s"))
	m = run(t, m, cmd)
	assert.True(t, m.settings.SoundEnabled)
	assert.Contains(t, m.View(), "disk full")
}

func TestModel_refresh_throttled(t *testing.T) {
	allowed := true
	m := New(settings.Defaults(), Actions{Refresh: func() bool { return allowed }})

	m, _ = update(t, m, keyMsg("r"))
	assert.Zero(t, m.banners.len())

	allowed = false
	m, _ = update(t, m, keyMsg("r"))
	assert.Equal(t, 1, m.banners.len())
}

func TestModel_focus_moves_cursor(t *testing.T) {
	m := New(settings.Defaults(), Actions{})
	m, _ = update(t, m, menuMsg(sampleMenu()))

	m, _ = update(t, m, focusMsg(push.Alert{Title: "T2"}))
	sel, _ := m.Selected()
	assert.Equal(t, "T2", sel.Title)
}

func TestModel_status_tick(t *testing.T) {
	m := New(settings.Defaults(), Actions{
		Status: func() poll.Status { return poll.Status{LastError: errors.New("refused")} },
	})

	m, cmd := update(t, m, statusTickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "offline")
}

func TestStepVolume(t *testing.T) {
	assert.InDelta(t, 0.6, stepVolume(0.5, 0.1), 1e-9)
	assert.InDelta(t, 0.0, stepVolume(0.05, -0.1), 1e-9)
	assert.InDelta(t, 1.0, stepVolume(0.95, 0.1), 1e-9)
}
