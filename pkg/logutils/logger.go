package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is one of: debug, info, warn, error, fatal.
	Level string
	// File receives JSON log lines, appended across runs. Empty writes to
	// stderr.
	File string
	// Hooks run on every event, e.g. to copy context values into fields.
	Hooks []zerolog.Hook
}

// New returns a logger that writes JSON to opts.File and a function that
// closes the file.
func New(opts Options) (zerolog.Logger, func(), error) {
	closer := func() {}

	level := opts.Level
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, err
	}

	var writer io.Writer = os.Stderr
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	for _, h := range opts.Hooks {
		l = l.Hook(h)
	}

	return l, closer, nil
}
