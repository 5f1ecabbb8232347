// Package styles holds the lipgloss styles shared by the CLI printer and the
// TUI. SetTheme rebuilds every style from a Palette.
package styles

import (
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/deskbell/internal/core/alert"
)

var active Palette

// CLI output.
var (
	CommandHeaderStyle lipgloss.Style
	CommandStyle       lipgloss.Style
	DividerStyle       lipgloss.Style
	SuccessStyle       lipgloss.Style
	InfoStyle          lipgloss.Style
	WarnStyle          lipgloss.Style
	ErrorStyle         lipgloss.Style
)

// TUI header, menu and banners.
var (
	TitleStyle     lipgloss.Style
	BadgeStyle     lipgloss.Style
	FlashStyle     lipgloss.Style
	StatusStyle    lipgloss.Style
	StatusErrStyle lipgloss.Style

	MenuTitleStyle    lipgloss.Style
	MenuMessageStyle  lipgloss.Style
	MenuTimeStyle     lipgloss.Style
	MenuCursorStyle   lipgloss.Style
	MenuEmptyStyle    lipgloss.Style
	SummaryStyle      lipgloss.Style
	SummaryLabelStyle lipgloss.Style
	HelpStyle         lipgloss.Style

	BannerStyle lipgloss.Style
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Active returns the palette set by the last SetTheme call.
func Active() Palette {
	return active
}

// SetTheme makes p the active palette and rebuilds the styles above.
func SetTheme(p Palette) {
	active = p

	CommandHeaderStyle = fg(p.Accent).Bold(true)
	CommandStyle = fg(p.Text)
	DividerStyle = fg(p.Panel)
	SuccessStyle = fg(p.Ok)
	InfoStyle = fg(p.Link)
	WarnStyle = fg(p.High)
	ErrorStyle = fg(p.Critical)

	TitleStyle = fg(p.Accent).Bold(true)
	BadgeStyle = fg(p.Base).Background(p.Critical).Bold(true).Padding(0, 1)
	FlashStyle = BadgeStyle.Blink(true)
	StatusStyle = fg(p.Dim)
	StatusErrStyle = fg(p.High)

	MenuTitleStyle = fg(p.Text)
	MenuMessageStyle = fg(p.Dim)
	MenuTimeStyle = fg(p.Dim).Italic(true)
	MenuCursorStyle = fg(p.Accent).Bold(true)
	MenuEmptyStyle = fg(p.Dim).Italic(true).Padding(1, 2)
	SummaryStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), false, false, true, false).
		BorderForeground(p.Panel)
	SummaryLabelStyle = fg(p.Dim)
	HelpStyle = fg(p.Dim).MarginTop(1)

	BannerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
}

// LevelColor returns the accent for a priority level.
func LevelColor(l alert.Level) lipgloss.Color {
	switch l {
	case alert.LevelCritical:
		return active.Critical
	case alert.LevelHigh:
		return active.High
	case alert.LevelLow:
		return active.Dim
	default:
		return active.Accent
	}
}

// LevelStyle returns the menu title style for a priority level.
func LevelStyle(l alert.Level) lipgloss.Style {
	s := fg(LevelColor(l))
	if l == alert.LevelCritical {
		s = s.Bold(true)
	}
	return s
}

// SeverityColor returns the border and icon color of a banner.
func SeverityColor(s alert.Severity) lipgloss.Color {
	switch s {
	case alert.SeverityDanger:
		return active.Critical
	case alert.SeverityWarning:
		return active.High
	case alert.SeveritySuccess:
		return active.Ok
	default:
		return active.Link
	}
}

// SeverityIcon returns the glyph shown before banner text.
func SeverityIcon(s alert.Severity) string {
	switch s {
	case alert.SeverityDanger:
		return IconCritical
	case alert.SeverityWarning:
		return IconWarning
	case alert.SeveritySuccess:
		return IconSuccess
	default:
		return IconInfo
	}
}

// nolint:gochecknoinits // styles must be usable before config is loaded.
func init() {
	SetTheme(defaultPalette())
}

// GlamourStyle adapts glamour's dark style to the active palette for
// rendering markdown such as alert history.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	hex := func(c lipgloss.Color) *string {
		s := string(c)
		return &s
	}

	cfg.Document.Color = hex(active.Text)
	cfg.Paragraph.Color = hex(active.Text)
	cfg.Heading.Color = hex(active.Accent)
	cfg.H1.Color = hex(active.Base)
	cfg.H1.BackgroundColor = hex(active.Accent)
	cfg.H2.Color = hex(active.Accent)
	cfg.Strong.Color = hex(active.Text)
	cfg.Code.Color = hex(active.High)
	cfg.Link.Color = hex(active.Link)
	cfg.LinkText.Color = hex(active.Link)
	cfg.HorizontalRule.Color = hex(active.Panel)

	return cfg
}
