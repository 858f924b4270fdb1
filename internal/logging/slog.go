package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// SlogManager manages slog-based logging with optional OTel integration.
type SlogManager struct {
	logger *slog.Logger

	// OTel provider for flushing
	logProvider *sdklog.LoggerProvider

	mu         sync.RWMutex
	attrSource AttrSource
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records fan out to stdout, the
// session log file, an optional GELF sink, and an optional OTel provider.
// Nil sinks are skipped.
func (m *SlogManager) Setup(file io.Writer, gelfSink io.Writer, level string, provider *sdklog.LoggerProvider) {
	lvl := parseLevel(level)
	m.logProvider = provider

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	// Console handler
	handlers = append(handlers, slog.NewTextHandler(os.Stdout, handlerOpts))

	// File handler
	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	}

	// Graylog handler. GELF chunks each write, so JSON keeps records parseable.
	if gelfSink != nil {
		handlers = append(handlers, slog.NewJSONHandler(gelfSink, handlerOpts))
	}

	// OTel handler (if provider is available)
	if provider != nil {
		otelHandler := otelslog.NewHandler("arcoin", otelslog.WithLoggerProvider(provider))
		handlers = append(handlers, otelHandler)
	}

	fanout := NewFanoutHandler(handlers...)

	m.logger = slog.New(NewSessionHandler(fanout, m.liveAttrs))
	m.logger.Info("Logging initialized", "level", level)
}

// SetAttrSource binds the live-attribute source stamped onto every record,
// typically the active session id and player tag. Safe to call before or
// after Setup.
func (m *SlogManager) SetAttrSource(source AttrSource) {
	m.mu.Lock()
	m.attrSource = source
	m.mu.Unlock()
}

func (m *SlogManager) liveAttrs() []slog.Attr {
	m.mu.RLock()
	source := m.attrSource
	m.mu.RUnlock()
	if source == nil {
		return nil
	}
	return source()
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// Flush forces a flush of OTel logs if available.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider != nil {
		return m.logProvider.ForceFlush(ctx)
	}
	return nil
}
