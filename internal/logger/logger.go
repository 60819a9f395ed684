// Package logger wraps zerolog behind package-level helpers so pipeline
// code can log key/value pairs without carrying a logger around.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var Log zerolog.Logger

// Init configures the global logger. Debug mode switches to the console
// writer and enables debug-level output; otherwise JSON lines at info level.
func Init(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		Log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		}).With().Timestamp().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	Log = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Debug logs at debug level with optional alternating key/value pairs.
func Debug(msg string, kv ...interface{}) {
	Log.Debug().Fields(kv).Msg(msg)
}

// Info logs at info level with optional alternating key/value pairs.
func Info(msg string, kv ...interface{}) {
	Log.Info().Fields(kv).Msg(msg)
}

// Warn logs at warn level with optional alternating key/value pairs.
func Warn(msg string, kv ...interface{}) {
	Log.Warn().Fields(kv).Msg(msg)
}

// Error logs at error level with optional alternating key/value pairs.
func Error(msg string, kv ...interface{}) {
	Log.Error().Fields(kv).Msg(msg)
}
