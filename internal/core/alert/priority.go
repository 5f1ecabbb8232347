package alert

import (
	"fmt"
	"time"
)

// Level is the internal four-valued severity that parameterizes every channel.
type Level int

const (
	LevelLow Level = iota + 1
	LevelNormal
	LevelHigh
	LevelCritical
)

// Raw priority labels emitted by the dashboard.
const (
	LabelCritical = "critica"
	LabelHigh     = "alta"
	LabelNormal   = "media"
	LabelLow      = "baja"
)

// Classify maps a raw priority label to a Level. Matching is exact and
// case-sensitive; anything unrecognized is LevelNormal.
func Classify(raw string) Level {
	switch raw {
	case LabelCritical:
		return LevelCritical
	case LabelHigh:
		return LevelHigh
	case LabelNormal:
		return LevelNormal
	case LabelLow:
		return LevelLow
	default:
		return LevelNormal
	}
}

// ParseLevel parses the English level name produced by Level.String.
func ParseLevel(name string) (Level, error) {
	for _, l := range Levels() {
		if l.String() == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown priority level %q", name)
}

// Levels returns every level from most to least severe.
func Levels() []Level {
	return []Level{LevelCritical, LevelHigh, LevelNormal, LevelLow}
}

func (l Level) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelHigh:
		return "high"
	case LevelNormal:
		return "normal"
	case LevelLow:
		return "low"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Severity is the visual class a presentation layer uses for an alert.
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Severity returns the banner class for l.
func (l Level) Severity() Severity {
	switch l {
	case LevelCritical:
		return SeverityDanger
	case LevelHigh:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// BannerDuration is how long an in-app banner for l stays visible.
func (l Level) BannerDuration() time.Duration {
	if l == LevelCritical {
		return 8 * time.Second
	}
	return 5 * time.Second
}

// PushTimeout is how long an OS notification for l stays before auto-dismiss.
func (l Level) PushTimeout() time.Duration {
	if l == LevelCritical {
		return 15 * time.Second
	}
	return 8 * time.Second
}

// RequiresInteraction reports whether OS notifications for l should stay
// visible until the user acts on them.
func (l Level) RequiresInteraction() bool {
	return l == LevelCritical
}

// PushTag groups OS notifications of the same level so the platform can
// collapse or replace them.
func (l Level) PushTag() string {
	return "deskbell-" + l.String()
}
