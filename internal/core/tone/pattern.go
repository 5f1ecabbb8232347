// Package tone synthesizes the short audio cues played for incoming alerts.
//
// Every cue is a fixed list of tone events, each with its own start offset
// relative to the moment the cue is issued. Events are scheduled on a
// [clock.Clock] and never block the caller. Starting a new cue does not cancel
// one already in flight, so rapid successive alerts overlap.
package tone

import (
	"fmt"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
)

// Waveform is the oscillator shape of a tone.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	default:
		return fmt.Sprintf("waveform(%d)", int(w))
	}
}

// Tone is a single scheduled tone event.
type Tone struct {
	FrequencyHz float64
	Waveform    Waveform
	// Gain is the peak amplitude before the caller's volume is applied.
	Gain     float64
	Duration time.Duration
	// Offset is the start time relative to when the pattern is issued.
	Offset time.Duration
}

// Cue names a non-priority sound.
type Cue string

const (
	CueSuccess Cue = "success"
	CueError   Cue = "error"
)

const ms = time.Millisecond

// Pattern returns the tone events for an alert level.
func Pattern(level alert.Level) []Tone {
	switch level {
	case alert.LevelCritical:
		return []Tone{
			{FrequencyHz: 880, Waveform: Sawtooth, Gain: 1.0, Duration: 150 * ms, Offset: 0},
			{FrequencyHz: 1108, Waveform: Sawtooth, Gain: 1.0, Duration: 150 * ms, Offset: 200 * ms},
			{FrequencyHz: 880, Waveform: Sawtooth, Gain: 1.0, Duration: 150 * ms, Offset: 400 * ms},
		}
	case alert.LevelHigh:
		return []Tone{
			{FrequencyHz: 659, Waveform: Sine, Gain: 0.8, Duration: 200 * ms, Offset: 0},
			{FrequencyHz: 784, Waveform: Sine, Gain: 0.8, Duration: 200 * ms, Offset: 250 * ms},
		}
	case alert.LevelNormal:
		return []Tone{
			{FrequencyHz: 523, Waveform: Sine, Gain: 0.4, Duration: 250 * ms, Offset: 0},
			{FrequencyHz: 659, Waveform: Sine, Gain: 0.3, Duration: 150 * ms, Offset: 150 * ms},
		}
	case alert.LevelLow:
		return []Tone{
			{FrequencyHz: 800, Waveform: Sine, Gain: 0.2, Duration: 100 * ms, Offset: 0},
			{FrequencyHz: 1000, Waveform: Sine, Gain: 0.15, Duration: 100 * ms, Offset: 100 * ms},
		}
	default:
		return Pattern(alert.LevelNormal)
	}
}

// CuePattern returns the tone events for a named cue.
func CuePattern(c Cue) ([]Tone, error) {
	switch c {
	case CueSuccess:
		// C5, E5, G5 chord with a short stagger.
		return []Tone{
			{FrequencyHz: 523.25, Waveform: Sine, Gain: 0.3, Duration: 500 * ms, Offset: 0},
			{FrequencyHz: 659.25, Waveform: Sine, Gain: 0.3, Duration: 500 * ms, Offset: 50 * ms},
			{FrequencyHz: 783.99, Waveform: Sine, Gain: 0.3, Duration: 500 * ms, Offset: 100 * ms},
		}, nil
	case CueError:
		return []Tone{
			{FrequencyHz: 400, Waveform: Square, Gain: 0.5, Duration: 300 * ms, Offset: 0},
			{FrequencyHz: 300, Waveform: Square, Gain: 0.5, Duration: 400 * ms, Offset: 200 * ms},
		}, nil
	default:
		return nil, fmt.Errorf("unknown cue %q", string(c))
	}
}

// Span returns the time from issue until the last tone in tones ends.
func Span(tones []Tone) time.Duration {
	var end time.Duration
	for _, t := range tones {
		if e := t.Offset + t.Duration; e > end {
			end = e
		}
	}
	return end
}
