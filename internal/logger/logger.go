package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger *zerolog.Logger
	mu            sync.Mutex
)

// Init (re)configures the default logger. Format "console" selects the
// human-readable writer, anything else emits JSON lines. Logs go to stderr so
// command output on stdout stays clean.
func Init(level, format string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = build(os.Stderr, level, format)
}

// InitWriter is Init with an explicit destination, used by tests.
func InitWriter(w io.Writer, level, format string) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = build(w, level, format)
}

func build(w io.Writer, level, format string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &l
}

// Get returns the initialized default logger, creating an info-level JSON
// logger on first use.
func Get() *zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = build(os.Stderr, "info", "json")
	}
	return defaultLogger
}

// Info logs an informational message using the default logger.
func Info(msg string, args ...any) {
	withFields(Get().Info(), args).Msg(msg)
}

// Warn logs a warning message using the default logger.
func Warn(msg string, args ...any) {
	withFields(Get().Warn(), args).Msg(msg)
}

// Error logs an error message using the default logger.
func Error(msg string, err error, args ...any) {
	e := Get().Error()
	if err != nil {
		e = e.Err(err)
	}
	withFields(e, args).Msg(msg)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, args ...any) {
	withFields(Get().Debug(), args).Msg(msg)
}

// withFields turns alternating key/value args into event fields. A trailing
// key without a value is recorded under "!BADKEY", the way slog does it.
func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			e = e.Interface("!BADKEY", args[i])
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}
