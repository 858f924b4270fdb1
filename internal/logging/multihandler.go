package logging

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler delivers every record to a set of sinks (file, stdout,
// GELF, OTel). Sinks fail independently: one broken sink never stops the
// others from logging.
type FanoutHandler struct {
	sinks []slog.Handler
}

// NewFanoutHandler builds a handler over the non-nil sinks.
func NewFanoutHandler(sinks ...slog.Handler) *FanoutHandler {
	kept := make([]slog.Handler, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &FanoutHandler{sinks: kept}
}

// Enabled reports whether at least one sink wants records at this level.
func (f *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range f.sinks {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle clones the record per sink so sinks cannot observe each other's
// mutations. Errors are joined and returned after all sinks ran.
func (f *FanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range f.sinks {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(f.sinks))
	for i, s := range f.sinks {
		sinks[i] = s.WithAttrs(attrs)
	}
	return &FanoutHandler{sinks: sinks}
}

func (f *FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	sinks := make([]slog.Handler, len(f.sinks))
	for i, s := range f.sinks {
		sinks[i] = s.WithGroup(name)
	}
	return &FanoutHandler{sinks: sinks}
}
