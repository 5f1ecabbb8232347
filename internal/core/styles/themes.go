package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colors every deskbell view draws from. The level
// colors double as banner severity accents.
type Palette struct {
	Accent lipgloss.Color // normal priority, titles, cursor
	Link   lipgloss.Color // links, info banners
	Text   lipgloss.Color
	Dim    lipgloss.Color // timestamps, help, low priority
	Base   lipgloss.Color // terminal background, badge text
	Panel  lipgloss.Color // borders and rules

	Critical lipgloss.Color
	High     lipgloss.Color
	Ok       lipgloss.Color
}

type theme struct {
	name    string
	palette Palette
}

// DefaultTheme is used when the config does not name one.
const DefaultTheme = "tokyo-night"

// builtin is kept sorted by name.
var builtin = []theme{
	{"dracula", Palette{
		Accent: "#bd93f9", Link: "#8be9fd", Text: "#f8f8f2", Dim: "#6272a4",
		Base: "#282a36", Panel: "#44475a",
		Critical: "#ff5555", High: "#ffb86c", Ok: "#50fa7b",
	}},
	{"gruvbox", Palette{
		Accent: "#83a598", Link: "#8ec07c", Text: "#ebdbb2", Dim: "#928374",
		Base: "#282828", Panel: "#504945",
		Critical: "#fb4934", High: "#fabd2f", Ok: "#b8bb26",
	}},
	{"nord", Palette{
		Accent: "#88c0d0", Link: "#81a1c1", Text: "#eceff4", Dim: "#616e88",
		Base: "#2e3440", Panel: "#434c5e",
		Critical: "#bf616a", High: "#ebcb8b", Ok: "#a3be8c",
	}},
	{"solarized", Palette{
		Accent: "#268bd2", Link: "#2aa198", Text: "#93a1a1", Dim: "#586e75",
		Base: "#002b36", Panel: "#073642",
		Critical: "#dc322f", High: "#b58900", Ok: "#859900",
	}},
	{"tokyo-night", Palette{
		Accent: "#7aa2f7", Link: "#7dcfff", Text: "#c0caf5", Dim: "#565f89",
		Base: "#1a1b26", Panel: "#3b4261",
		Critical: "#f7768e", High: "#e0af68", Ok: "#9ece6a",
	}},
}

// ThemeNames lists the built-in theme names in order.
func ThemeNames() []string {
	names := make([]string, len(builtin))
	for i, t := range builtin {
		names[i] = t.name
	}
	return names
}

// GetPalette looks up a built-in theme by name.
func GetPalette(name string) (Palette, bool) {
	i := slices.IndexFunc(builtin, func(t theme) bool { return t.name == name })
	if i < 0 {
		return Palette{}, false
	}
	return builtin[i].palette, true
}

func defaultPalette() Palette {
	p, _ := GetPalette(DefaultTheme)
	return p
}
