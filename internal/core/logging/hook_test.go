package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want map[string]any
	}{
		{
			name: "cycle and channel",
			ctx:  WithChannel(WithCycleID(context.Background(), "c-42"), "banner"),
			want: map[string]any{"cycle_id": "c-42", "channel": "banner"},
		},
		{
			name: "cycle only",
			ctx:  WithCycleID(context.Background(), "c-43"),
			want: map[string]any{"cycle_id": "c-43"},
		},
		{
			name: "channel only",
			ctx:  WithChannel(context.Background(), "push"),
			want: map[string]any{"channel": "push"},
		},
		{
			name: "bare context",
			ctx:  context.Background(),
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx).Msg("dispatched")

			entry := decodeLine(t, &buf)
			for _, k := range []string{"cycle_id", "channel"} {
				want, ok := tt.want[k]
				if !ok {
					assert.NotContains(t, entry, k)
					continue
				}
				assert.Equal(t, want, entry[k])
			}
		})
	}
}

func TestContextHook_without_ctx(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})
	logger.Info().Msg("plain")

	entry := decodeLine(t, &buf)
	assert.NotContains(t, entry, "cycle_id")
}
