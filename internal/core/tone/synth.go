package tone

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/rs/zerolog"
)

// Synthesizer schedules tone patterns against a clock and plays them through a
// lazily opened Output. The first failure to open or play disables it for the
// rest of the session.
type Synthesizer struct {
	clock      clock.Clock
	open       Opener
	sampleRate int
	log        zerolog.Logger

	once     sync.Once
	out      Output
	disabled atomic.Bool
}

// New creates a Synthesizer. The output is not opened until the first cue.
func New(clk clock.Clock, open Opener, sampleRate int, log zerolog.Logger) *Synthesizer {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Synthesizer{
		clock:      clk,
		open:       open,
		sampleRate: sampleRate,
		log:        log,
	}
}

// PlayPattern schedules the pattern for level at volume and returns without
// waiting for it to sound. It returns ErrAudioUnavailable once the synthesizer
// has been disabled.
func (s *Synthesizer) PlayPattern(level alert.Level, volume float64) error {
	return s.schedule(Pattern(level), volume)
}

// PlayCue schedules a named cue at volume.
func (s *Synthesizer) PlayCue(c Cue, volume float64) error {
	tones, err := CuePattern(c)
	if err != nil {
		return err
	}
	return s.schedule(tones, volume)
}

// Available reports whether the synthesizer has not been disabled.
func (s *Synthesizer) Available() bool {
	return !s.disabled.Load()
}

func (s *Synthesizer) schedule(tones []Tone, volume float64) error {
	out, err := s.output()
	if err != nil {
		return err
	}

	volume = clamp01(volume)
	if volume == 0 {
		return nil
	}

	for _, t := range tones {
		s.clock.AfterFunc(t.Offset, func() {
			s.emit(out, t, volume)
		})
	}
	return nil
}

func (s *Synthesizer) emit(out Output, t Tone, volume float64) {
	if s.disabled.Load() {
		return
	}
	if err := out.Play(context.Background(), Render(t, volume, s.sampleRate)); err != nil {
		s.disable(err)
	}
}

func (s *Synthesizer) output() (Output, error) {
	s.once.Do(func() {
		out, err := s.open()
		if err != nil {
			s.disable(err)
			return
		}
		s.out = out
	})
	if s.disabled.Load() || s.out == nil {
		return nil, ErrAudioUnavailable
	}
	return s.out, nil
}

func (s *Synthesizer) disable(err error) {
	if s.disabled.CompareAndSwap(false, true) {
		s.log.Warn().Err(err).Msg("audio disabled for this session")
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func (t Tone) String() string {
	return fmt.Sprintf("%s %.0fHz +%s for %s", t.Waveform, t.FrequencyHz, t.Offset, t.Duration)
}
