package logutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagHook struct{}

func (tagHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str("tag", "hooked")
}

func TestNew_appends_to_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "deskbell.log")

	for _, msg := range []string{"first", "second"} {
		l, closer, err := New(Options{Level: "info", File: path, Hooks: []zerolog.Hook{tagHook{}}})
		require.NoError(t, err)
		l.Info().Msg(msg)
		l.Debug().Msg("filtered")
		closer()
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"message":"first"`)
	assert.Contains(t, out, `"message":"second"`)
	assert.Contains(t, out, `"tag":"hooked"`)
	assert.NotContains(t, out, "filtered")
}

func TestNew_invalid_level(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
