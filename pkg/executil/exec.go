// Package executil runs external helper programs such as the audio player and
// the URL opener.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const stderrLimit = 500

// cappedBuffer keeps the first limit bytes written and drops the rest while
// still reporting full writes, so a chatty child never blocks or fails.
// Only Write is exposed so io.Copy cannot bypass the limit through ReadFrom.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		b.buf.Write(p[:min(len(p), room)])
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its combined output.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunInput executes a command with stdin fed from r and waits for it to exit.
	// On failure, stderr (capped at 500 bytes) becomes the error message.
	RunInput(ctx context.Context, r io.Reader, cmd string, args ...string) error
	// Start launches a command without waiting for it.
	Start(cmd string, args ...string) error
	// LookPath reports the resolved path of cmd.
	LookPath(cmd string) (string, error)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its combined output.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, cmd, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// RunInput executes a command with r as its stdin. The original
// *exec.ExitError is preserved via wrapping so callers can inspect exit codes
// with errors.As.
func (e *RealExecutor) RunInput(ctx context.Context, r io.Reader, cmd string, args ...string) error {
	stderr := &cappedBuffer{limit: stderrLimit}
	c := exec.CommandContext(ctx, cmd, args...)
	c.Stdin = r
	c.Stdout = io.Discard
	c.Stderr = stderr
	if err := c.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("exec %s: %s: %w", cmd, msg, err)
		}
		return fmt.Errorf("exec %s: %w", cmd, err)
	}
	return nil
}

// Start launches a command detached from the caller and reaps it in the
// background.
func (e *RealExecutor) Start(cmd string, args ...string) error {
	c := exec.Command(cmd, args...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd, err)
	}
	go func() { _ = c.Wait() }()
	return nil
}

// LookPath searches PATH for cmd.
func (e *RealExecutor) LookPath(cmd string) (string, error) {
	return exec.LookPath(cmd)
}
