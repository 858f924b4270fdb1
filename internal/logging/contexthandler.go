package logging

import (
	"context"
	"log/slog"
)

// AttrSource supplies the live attributes stamped onto every record,
// typically the active hunt session id and player tag. It is called per
// record so the values track session changes without rebuilding loggers.
type AttrSource func() []slog.Attr

// SessionHandler decorates another handler with attributes from an
// AttrSource.
type SessionHandler struct {
	next   slog.Handler
	source AttrSource
}

func NewSessionHandler(next slog.Handler, source AttrSource) *SessionHandler {
	return &SessionHandler{next: next, source: source}
}

func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source != nil {
		r.AddAttrs(h.source()...)
	}
	return h.next.Handle(ctx, r)
}

func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SessionHandler{next: h.next.WithAttrs(attrs), source: h.source}
}

func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SessionHandler{next: h.next.WithGroup(name), source: h.source}
}
