package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process-wide zerolog logger.
//   - level: trace, debug, info, warn, error, fatal, panic
//   - format: "json" for production, "pretty" for human-readable dev output
//
// An unknown level falls back to info rather than failing startup.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stdout
	if format == "pretty" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Logger()
}

// Component returns a child logger tagged with the component name, so log
// lines from the services and workers can be filtered apart.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
