package tone

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/colonyops/deskbell/pkg/executil"
)

// ErrAudioUnavailable is returned when no audio output can be opened.
var ErrAudioUnavailable = errors.New("audio output unavailable")

// Output plays rendered PCM samples.
type Output interface {
	Play(ctx context.Context, samples []int16) error
}

// Opener opens the audio output. It is called at most once per Synthesizer.
type Opener func() (Output, error)

// PlayerOutput pipes raw s16le mono PCM into an external player such as
// paplay or aplay.
type PlayerOutput struct {
	exec executil.Executor
	argv []string
}

// OpenPlayer returns an Opener for the player command argv. Opening fails with
// ErrAudioUnavailable when argv is empty or its program is not on PATH.
func OpenPlayer(exec executil.Executor, argv []string) Opener {
	return func() (Output, error) {
		if len(argv) == 0 {
			return nil, fmt.Errorf("%w: no player configured", ErrAudioUnavailable)
		}
		if _, err := exec.LookPath(argv[0]); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrAudioUnavailable, argv[0], err)
		}
		return &PlayerOutput{exec: exec, argv: append([]string(nil), argv...)}, nil
	}
}

// Play runs the player with the encoded samples on stdin.
func (p *PlayerOutput) Play(ctx context.Context, samples []int16) error {
	return p.exec.RunInput(ctx, bytes.NewReader(Encode(samples)), p.argv[0], p.argv[1:]...)
}
