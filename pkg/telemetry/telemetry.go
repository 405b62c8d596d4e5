// Package telemetry routes gym events and process logs through zerolog.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log formats accepted by NewLogger.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// NewLogger builds a zerolog logger writing to out. An empty level means info
// and an empty format means console.
func NewLogger(out io.Writer, level, format string) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stderr
	}
	lvl := zerolog.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("telemetry: invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("telemetry: unknown log format %q", format)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// Logger records gym events as structured log lines. It satisfies
// gym.Telemetry and commands.Telemetry.
type Logger struct {
	log zerolog.Logger
}

// NewTelemetry wraps logger as an event recorder.
func NewTelemetry(logger zerolog.Logger) *Logger {
	return &Logger{log: logger.With().Str("component", "telemetry").Logger()}
}

// Record logs event with payload keys in sorted order. Payloads carrying an
// "error" key are logged at warn level.
func (l *Logger) Record(_ context.Context, event string, payload map[string]any) {
	if l == nil {
		return
	}
	evt := l.log.Info()
	if _, failed := payload["error"]; failed {
		evt = l.log.Warn()
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		evt = evt.Interface(key, payload[key])
	}
	evt.Str("event", event).Msg(event)
}
