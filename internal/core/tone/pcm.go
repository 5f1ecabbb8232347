package tone

import (
	"encoding/binary"
	"math"
	"time"
)

// DefaultSampleRate is used when no sample rate is configured.
const DefaultSampleRate = 44100

// Render synthesizes t as signed 16-bit mono samples with its gain scaled by
// volume.
func Render(t Tone, volume float64, sampleRate int) []int16 {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	n := int(t.Duration.Seconds() * float64(sampleRate))
	samples := make([]int16, n)
	peak := t.Gain * volume

	for i := range samples {
		at := time.Duration(float64(i) / float64(sampleRate) * float64(time.Second))
		phase := t.FrequencyHz * float64(i) / float64(sampleRate)
		v := oscillate(t.Waveform, phase) * Envelope(peak, t.Duration, at)
		samples[i] = toInt16(v)
	}
	return samples
}

// Encode serializes samples as little-endian s16 PCM.
func Encode(samples []int16) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}

func toInt16(v float64) int16 {
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * math.MaxInt16))
}
