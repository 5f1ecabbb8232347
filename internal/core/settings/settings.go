// Package settings holds the user's notification preferences and persists
// them as a single JSON blob.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hay-kot/criterio"
)

// ErrMalformed reports a persisted settings blob that could not be parsed.
var ErrMalformed = errors.New("malformed settings")

// MinRefreshInterval is the shortest poll period accepted.
const MinRefreshInterval = 5 * time.Second

// RefreshChoices are the poll periods offered by the settings editor.
var RefreshChoices = []time.Duration{
	15 * time.Second,
	30 * time.Second,
	time.Minute,
	5 * time.Minute,
}

// Settings are the user's notification preferences.
type Settings struct {
	SoundEnabled      bool    `json:"soundEnabled"`
	PushEnabled       bool    `json:"pushEnabled"`
	CriticalOnly      bool    `json:"criticalOnly"`
	SoundVolume       float64 `json:"soundVolume"`
	RefreshIntervalMs int     `json:"refreshIntervalMs"`
}

// Defaults returns the settings used when nothing has been persisted.
func Defaults() Settings {
	return Settings{
		SoundEnabled:      true,
		PushEnabled:       true,
		CriticalOnly:      false,
		SoundVolume:       0.5,
		RefreshIntervalMs: 30000,
	}
}

// RefreshInterval returns the poll period as a duration.
func (s Settings) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMs) * time.Millisecond
}

// ClampVolume limits v to [0, 1]. NaN becomes 0.
func ClampVolume(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// Normalize returns s with the volume clamped and a non-positive refresh
// interval replaced by the default.
func (s Settings) Normalize() Settings {
	s.SoundVolume = ClampVolume(s.SoundVolume)
	if s.RefreshIntervalMs <= 0 {
		s.RefreshIntervalMs = Defaults().RefreshIntervalMs
	}
	return s
}

// Validate checks values a user typed in. Volume is clamped rather than
// rejected so it is not validated here.
func (s Settings) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("refreshIntervalMs", s.RefreshIntervalMs, func(ms int) error {
			if time.Duration(ms)*time.Millisecond < MinRefreshInterval {
				return fmt.Errorf("must be at least %s", MinRefreshInterval)
			}
			return nil
		}),
	)
}

// legacyRefreshKey is the name older versions persisted the interval under.
const legacyRefreshKey = "autoRefreshInterval"

// Merge overlays the persisted blob raw onto base. Keys missing from raw keep
// their base value and unknown keys are ignored. If raw cannot be parsed the
// result is base unchanged and the error wraps ErrMalformed.
func Merge(base Settings, raw []byte) (Settings, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return base.Normalize(), nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return base.Normalize(), fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	merged := base
	if err := json.Unmarshal(raw, &merged); err != nil {
		return base.Normalize(), fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if legacy, ok := keys[legacyRefreshKey]; ok {
		if _, current := keys["refreshIntervalMs"]; !current {
			if err := json.Unmarshal(legacy, &merged.RefreshIntervalMs); err != nil {
				return base.Normalize(), fmt.Errorf("%w: %s: %w", ErrMalformed, legacyRefreshKey, err)
			}
		}
	}

	return merged.Normalize(), nil
}
