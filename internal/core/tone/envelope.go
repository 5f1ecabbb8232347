package tone

import (
	"math"
	"time"
)

const (
	// Attack is the linear fade-in applied to every tone to avoid clicks.
	Attack = 20 * time.Millisecond
	// Floor is the level the exponential decay reaches at the end of a tone.
	Floor = 0.001
)

// Envelope returns the amplitude at time t into a tone of the given duration
// whose peak is peak. The amplitude rises linearly from zero to peak over
// Attack, then decays exponentially toward Floor, which it reaches at the end.
// Outside [0, duration) the amplitude is zero.
func Envelope(peak float64, duration, t time.Duration) float64 {
	if peak <= 0 || t < 0 || t >= duration {
		return 0
	}

	attack := min(Attack, duration)
	if t < attack {
		return peak * float64(t) / float64(attack)
	}

	decay := duration - attack
	if decay <= 0 {
		return peak
	}
	progress := float64(t-attack) / float64(decay)
	return peak * math.Pow(Floor/peak, progress)
}

func oscillate(w Waveform, phase float64) float64 {
	// phase is in cycles; only the fractional part matters.
	frac := phase - math.Floor(phase)
	switch w {
	case Square:
		if frac < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*frac - 1
	case Triangle:
		return 1 - 4*math.Abs(frac-0.5)
	default:
		return math.Sin(2 * math.Pi * frac)
	}
}
