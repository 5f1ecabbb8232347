package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ComponentKey is the field naming the subsystem that wrote a log line.
const ComponentKey = "cmp"

// Component returns the global logger tagged with name.
func Component(name string) zerolog.Logger {
	return For(log.Logger, name)
}

// For tags an injected logger with name.
func For(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str(ComponentKey, name).Logger()
}
