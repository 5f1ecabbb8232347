package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/deskbell/internal/core/render"
	"github.com/colonyops/deskbell/internal/core/styles"
)

const defaultWidth = 80

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	sections := []string{m.headerView(width)}
	if m.menu.ShowSummary() {
		sections = append(sections, summaryView(m.menu, width))
	}
	sections = append(sections, m.menuView(width))
	if banners := m.banners.view(width); banners != "" {
		sections = append(sections, banners)
	}
	sections = append(sections, styles.HelpStyle.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView(width int) string {
	left := styles.TitleStyle.Render(styles.IconBell + " deskbell")
	if m.menu.Badge != "" {
		left += " " + styles.BadgeStyle.Render(m.menu.Badge)
	}
	if m.banners.flashing() {
		left += " " + styles.FlashStyle.Render("CRITICAL")
	}

	right := m.settingsLine() + "  " + m.statusLine()
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) settingsLine() string {
	parts := make([]string, 0, 4)

	if m.settings.SoundEnabled {
		parts = append(parts, styles.IconSound+" "+m.volumeLabel())
	} else {
		parts = append(parts, styles.IconMute)
	}
	if m.settings.PushEnabled {
		parts = append(parts, styles.IconBell)
	} else {
		parts = append(parts, styles.IconBellOff)
	}
	if m.settings.CriticalOnly {
		parts = append(parts, styles.IconFilter+" critical")
	}
	parts = append(parts, formatInterval(m.settings.RefreshInterval()))

	return styles.StatusStyle.Render(strings.Join(parts, " "+styles.IconDot+" "))
}

func (m Model) statusLine() string {
	switch {
	case m.status.LastError != nil:
		return styles.StatusErrStyle.Render("offline")
	case m.status.LastSuccess.IsZero():
		return styles.StatusStyle.Render("waiting")
	default:
		return styles.StatusStyle.Render("updated " + m.status.LastSuccess.Format("15:04:05"))
	}
}

func summaryView(menu render.MenuRequest, width int) string {
	field := func(label string, n int) string {
		return styles.SummaryLabelStyle.Render(label+" ") + styles.TitleStyle.Render(fmt.Sprint(n))
	}

	sum := menu.Summary()
	line := strings.Join([]string{
		field("Mine", sum.Mine),
		field("New", sum.New),
		field("Critical", sum.Critical),
	}, "   ")
	return styles.SummaryStyle.Width(width).Render(line)
}

func (m Model) menuView(width int) string {
	if m.menu.Empty() {
		return styles.MenuEmptyStyle.Render(render.EmptyMenuText)
	}

	rows := make([]string, 0, len(m.menu.Items))
	for i, item := range m.menu.Items {
		rows = append(rows, renderItem(item, i == m.cursor, width))
	}
	return strings.Join(rows, "\n")
}

func renderItem(item render.MenuItem, selected bool, width int) string {
	marker := "  "
	if selected {
		marker = styles.MenuCursorStyle.Render("▌ ")
	}

	title := styles.LevelStyle(item.Level).Render(item.Icon + " " + item.Title)
	when := styles.MenuTimeStyle.Render(item.TimeLabel)
	gap := max(width-lipgloss.Width(marker)-lipgloss.Width(title)-lipgloss.Width(when)-1, 1)
	first := marker + title + strings.Repeat(" ", gap) + when

	second := "    " + styles.MenuMessageStyle.Render(item.Message)
	return first + "\n" + second
}

func formatInterval(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return fmt.Sprintf("%ds", int(d/time.Second))
}
