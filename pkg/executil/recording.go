package executil

import (
	"context"
	"errors"
	"io"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Cmd      string
	Args     []string
	Input    []byte
	Detached bool
}

// RecordingExecutor captures commands for testing.
// Configure Outputs, Errors and Missing to control return values.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command names to their output.
	// Key is the command name (e.g., "paplay").
	Outputs map[string][]byte

	// Errors maps command names to their error.
	Errors map[string]error

	// Missing lists command names LookPath reports as absent.
	Missing map[string]bool
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record(RecordedCommand{Cmd: cmd, Args: args})
}

// RunInput drains r, records the command with its input and returns the
// configured error.
func (e *RecordingExecutor) RunInput(ctx context.Context, r io.Reader, cmd string, args ...string) error {
	input, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = e.record(RecordedCommand{Cmd: cmd, Args: args, Input: input})
	return err
}

// Start records a detached command and returns the configured error.
func (e *RecordingExecutor) Start(cmd string, args ...string) error {
	_, err := e.record(RecordedCommand{Cmd: cmd, Args: args, Detached: true})
	return err
}

// LookPath reports cmd as found unless it is listed in Missing.
func (e *RecordingExecutor) LookPath(cmd string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Missing[cmd] {
		return "", errors.New("executable file not found in $PATH")
	}
	return "/usr/bin/" + cmd, nil
}

// Recorded returns a copy of the recorded commands.
func (e *RecordingExecutor) Recorded() []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]RecordedCommand, len(e.Commands))
	copy(out, e.Commands)
	return out
}

func (e *RecordingExecutor) record(rc RecordedCommand) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, rc)

	var out []byte
	var err error

	if e.Outputs != nil {
		out = e.Outputs[rc.Cmd]
	}
	if e.Errors != nil {
		err = e.Errors[rc.Cmd]
	}

	return out, err
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
