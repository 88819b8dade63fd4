package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

func init() {
	// The daemon's log format is a fixed contract (see spec §6): one JSON
	// object per line with a "timestamp" key, not zerolog's default "time".
	zerolog.TimestampFieldName = "timestamp"
}

var (
	// Logger is the global logger instance.
	Logger zerolog.Logger
)

// Level represents a log level.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration.
type Config struct {
	Level  Level
	ServerID string
	Output io.Writer
}

// Init initializes the global logger. Output is always JSON: the daemon has
// no interactive console mode, only the fixed stdout log contract in §6.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	Logger = zerolog.New(output).With().Timestamp().Str("server_id", cfg.ServerID).Logger()
}

// WithComponent creates a child logger with a component field, following
// each tick step's log lines back to the component that emitted them.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// WithTick creates a child logger carrying the correlation id for one
// reconciliation iteration (see pkg/daemon).
func WithTick(tickID string) zerolog.Logger {
	return Logger.With().Str("tick_id", tickID).Logger()
}
