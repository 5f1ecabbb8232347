package tone

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/deskbell/internal/core/alert"
	"github.com/colonyops/deskbell/internal/core/clock"
	"github.com/colonyops/deskbell/pkg/executil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type played struct {
	at      time.Time
	samples int
	peak    int16
}

type recordingOutput struct {
	mu    sync.Mutex
	clock clock.Clock
	calls []played
	err   error
}

func (o *recordingOutput) Play(_ context.Context, samples []int16) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var peak int16
	for _, s := range samples {
		if s > peak {
			peak = s
		}
	}
	o.calls = append(o.calls, played{at: o.clock.Now(), samples: len(samples), peak: peak})
	return o.err
}

func newSynth(t *testing.T) (*Synthesizer, *clock.Fake, *recordingOutput) {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	out := &recordingOutput{clock: clk}
	opens := 0
	s := New(clk, func() (Output, error) {
		opens++
		require.Equal(t, 1, opens, "output opened more than once")
		return out, nil
	}, 8000, zerolog.Nop())
	return s, clk, out
}

func offsets(tones []Tone) []time.Duration {
	out := make([]time.Duration, len(tones))
	for i, t := range tones {
		out[i] = t.Offset
	}
	return out
}

func TestPattern_shapes(t *testing.T) {
	crit := Pattern(alert.LevelCritical)
	require.Len(t, crit, 3)
	assert.Equal(t, []time.Duration{0, 200 * ms, 400 * ms}, offsets(crit))
	for _, tn := range crit {
		assert.Equal(t, Sawtooth, tn.Waveform)
		assert.Equal(t, 1.0, tn.Gain)
		assert.Equal(t, 150*ms, tn.Duration)
	}
	assert.Equal(t, []float64{880, 1108, 880}, []float64{crit[0].FrequencyHz, crit[1].FrequencyHz, crit[2].FrequencyHz})

	high := Pattern(alert.LevelHigh)
	require.Len(t, high, 2)
	assert.Equal(t, []time.Duration{0, 250 * ms}, offsets(high))
	assert.Equal(t, 0.8, high[0].Gain)
	assert.Equal(t, Sine, high[1].Waveform)

	normal := Pattern(alert.LevelNormal)
	require.Len(t, normal, 2)
	assert.Equal(t, []time.Duration{0, 150 * ms}, offsets(normal))
	assert.Greater(t, normal[0].Gain, normal[1].Gain, "normal pattern descends in volume")

	low := Pattern(alert.LevelLow)
	require.Len(t, low, 2)
	assert.Equal(t, []time.Duration{0, 100 * ms}, offsets(low))
	assert.Less(t, low[0].Gain, normal[1].Gain)
}

func TestCuePattern(t *testing.T) {
	success, err := CuePattern(CueSuccess)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{0, 50 * ms, 100 * ms}, offsets(success))

	failure, err := CuePattern(CueError)
	require.NoError(t, err)
	assert.Equal(t, Square, failure[0].Waveform)
	assert.Equal(t, 600*ms, Span(failure))

	_, err = CuePattern("fanfare")
	assert.Error(t, err)
}

func TestEnvelope(t *testing.T) {
	d := 200 * ms

	assert.Zero(t, Envelope(1, d, 0))
	assert.InDelta(t, 0.5, Envelope(1, d, 10*ms), 1e-9)
	assert.InDelta(t, 1.0, Envelope(1, d, Attack), 1e-9)
	assert.Zero(t, Envelope(1, d, d), "silent at and after the end")
	assert.Zero(t, Envelope(1, d, -ms))
	assert.Zero(t, Envelope(0, d, 50*ms))

	// Decay is monotonic and approaches the floor without reaching zero.
	prev := Envelope(1, d, Attack)
	for at := Attack + ms; at < d; at += 10 * ms {
		v := Envelope(1, d, at)
		assert.Less(t, v, prev)
		assert.Greater(t, v, 0.0)
		prev = v
	}
	assert.InDelta(t, Floor, Envelope(1, d, d-time.Nanosecond), 1e-4)
}

func TestRender(t *testing.T) {
	tn := Tone{FrequencyHz: 440, Waveform: Sine, Gain: 1, Duration: 100 * ms}

	full := Render(tn, 1, 8000)
	half := Render(tn, 0.5, 8000)
	require.Len(t, full, 800)

	peak := func(s []int16) float64 {
		var m float64
		for _, v := range s {
			m = math.Max(m, math.Abs(float64(v)))
		}
		return m
	}
	assert.Greater(t, peak(full), 0.7*math.MaxInt16)
	assert.InDelta(t, peak(full)/2, peak(half), 0.01*math.MaxInt16)
	assert.Zero(t, full[0], "attack starts from silence")

	assert.Len(t, Encode(full), 1600)
}

func TestSynthesizer_schedules_without_blocking(t *testing.T) {
	s, clk, out := newSynth(t)

	require.NoError(t, s.PlayPattern(alert.LevelCritical, 1))
	assert.Empty(t, out.calls, "nothing plays until the clock runs")
	assert.Equal(t, 3, clk.Pending())

	clk.Advance(time.Second)
	require.Len(t, out.calls, 3)
	start := out.calls[0].at
	assert.Equal(t, 200*ms, out.calls[1].at.Sub(start))
	assert.Equal(t, 400*ms, out.calls[2].at.Sub(start))
	assert.Equal(t, 1200, out.calls[0].samples)
}

func TestSynthesizer_overlapping_patterns_are_not_cancelled(t *testing.T) {
	s, clk, out := newSynth(t)

	require.NoError(t, s.PlayPattern(alert.LevelCritical, 1))
	clk.Advance(100 * ms)
	require.NoError(t, s.PlayPattern(alert.LevelHigh, 1))
	clk.Advance(time.Second)

	assert.Len(t, out.calls, 5)
}

func TestSynthesizer_volume_scales_and_clamps(t *testing.T) {
	s, clk, out := newSynth(t)

	require.NoError(t, s.PlayPattern(alert.LevelHigh, 2))
	clk.Advance(time.Second)
	require.NoError(t, s.PlayPattern(alert.LevelHigh, 0.25))
	clk.Advance(time.Second)

	require.Len(t, out.calls, 4)
	assert.Greater(t, out.calls[0].peak, 3*out.calls[2].peak)

	require.NoError(t, s.PlayPattern(alert.LevelHigh, -1))
	assert.Zero(t, clk.Pending(), "silent volume schedules nothing")
}

func TestSynthesizer_open_failure_disables_for_session(t *testing.T) {
	clk := clock.NewFake(time.Now())
	opens := 0
	s := New(clk, func() (Output, error) {
		opens++
		return nil, ErrAudioUnavailable
	}, 0, zerolog.Nop())

	assert.ErrorIs(t, s.PlayPattern(alert.LevelCritical, 1), ErrAudioUnavailable)
	assert.ErrorIs(t, s.PlayCue(CueSuccess, 1), ErrAudioUnavailable)
	assert.False(t, s.Available())
	assert.Equal(t, 1, opens)
	assert.Zero(t, clk.Pending())
}

func TestSynthesizer_play_failure_disables(t *testing.T) {
	s, clk, out := newSynth(t)
	out.err = errors.New("device busy")

	require.NoError(t, s.PlayPattern(alert.LevelCritical, 1))
	clk.Advance(time.Second)

	assert.Len(t, out.calls, 1, "remaining tones are dropped once disabled")
	assert.False(t, s.Available())
	assert.ErrorIs(t, s.PlayPattern(alert.LevelLow, 1), ErrAudioUnavailable)
}

func TestOpenPlayer(t *testing.T) {
	rec := &executil.RecordingExecutor{Missing: map[string]bool{"aplay": true}}

	_, err := OpenPlayer(rec, []string{"aplay", "-q"})()
	assert.ErrorIs(t, err, ErrAudioUnavailable)

	_, err = OpenPlayer(rec, nil)()
	assert.ErrorIs(t, err, ErrAudioUnavailable)

	out, err := OpenPlayer(rec, []string{"paplay", "--raw"})()
	require.NoError(t, err)
	require.NoError(t, out.Play(context.Background(), []int16{1, -1}))

	got := rec.Recorded()
	require.Len(t, got, 1)
	assert.Equal(t, "paplay", got[0].Cmd)
	assert.Equal(t, []string{"--raw"}, got[0].Args)
	assert.Equal(t, []byte{0x01, 0x00, 0xff, 0xff}, got[0].Input)
}
