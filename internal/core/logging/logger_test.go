package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestComponent_uses_global_logger(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	logger := Component("dispatch")
	logger.Info().Msg("cycle processed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "dispatch", entry[ComponentKey])
	assert.Equal(t, "cycle processed", entry["message"])
}

func TestFor_tags_injected_logger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).With().Str("run", "r1").Logger()

	logger := For(base, "push")
	logger.Warn().Msg("denied")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "push", entry[ComponentKey])
	assert.Equal(t, "r1", entry["run"])
}
