package logging

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DispatcherLogger satisfies the dispatcher's Logger interface on top of
// zerolog, translating slog-style key/value pairs into typed zerolog
// fields. Keys that are not strings and trailing unpaired values are
// dropped rather than logged malformed.
type DispatcherLogger struct {
	z zerolog.Logger
}

func NewDispatcherLogger(z zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{z: z}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	applyPairs(l.z.Debug(), keysAndValues).Msg(msg)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	applyPairs(l.z.Info(), keysAndValues).Msg(msg)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	applyPairs(l.z.Error(), keysAndValues).Msg(msg)
}

func applyPairs(ev *zerolog.Event, pairs []any) *zerolog.Event {
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		switch v := pairs[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case error:
			ev = ev.AnErr(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case uint64:
			ev = ev.Uint64(key, v)
		case float64:
			ev = ev.Float64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case fmt.Stringer:
			ev = ev.Str(key, v.String())
		default:
			ev = ev.Interface(key, v)
		}
	}
	return ev
}
