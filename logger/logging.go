package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the server logger: console output with timestamps, debug level
// unless LOG_LEVEL says otherwise.
func New() zerolog.Logger {
	level := zerolog.DebugLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
