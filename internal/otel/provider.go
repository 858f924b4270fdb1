// Package otel owns the OpenTelemetry wiring: a log provider feeding the
// otelslog bridge and a meter for the dispatcher counters. Logs always go
// to a local file; an OTLP endpoint is optional on top.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config selects the telemetry sinks.
type Config struct {
	Enabled     bool
	ServiceName string
	// BatchTimeout bounds how long a log batch may sit before export.
	BatchTimeout time.Duration
	// LogWriter receives exported log records; required when enabled
	// unless an Endpoint is set.
	LogWriter io.Writer
	// Endpoint is an optional OTLP/HTTP collector address.
	Endpoint string
	Insecure bool
}

// Provider bundles the configured log provider. A disabled provider is a
// valid no-op value: every method works and does nothing.
type Provider struct {
	cfg  Config
	logs *sdklog.LoggerProvider
}

// New builds a provider from cfg. Disabled configs return a no-op
// provider and no error.
func New(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{cfg: cfg}, nil
	}

	ctx := context.Background()
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("building otel resource: %w", err)
	}

	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	sinks := 0

	if cfg.LogWriter != nil {
		exp, err := stdoutlog.New(
			stdoutlog.WithWriter(cfg.LogWriter),
			stdoutlog.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("building file log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(
			sdklog.NewBatchProcessor(exp, sdklog.WithExportTimeout(cfg.BatchTimeout))))
		sinks++
	}

	if cfg.Endpoint != "" {
		otlpOpts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			otlpOpts = append(otlpOpts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(ctx, otlpOpts...)
		if err != nil {
			return nil, fmt.Errorf("building otlp log exporter: %w", err)
		}
		opts = append(opts, sdklog.WithProcessor(
			sdklog.NewBatchProcessor(exp, sdklog.WithExportTimeout(cfg.BatchTimeout))))
		sinks++
	}

	if sinks == 0 {
		return nil, errors.New("otel enabled but neither log writer nor endpoint configured")
	}

	return &Provider{cfg: cfg, logs: sdklog.NewLoggerProvider(opts...)}, nil
}

// LoggerProvider exposes the log provider for the otelslog bridge; nil
// when disabled, which the bridge callers treat as "skip".
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Meter returns the meter used for dispatcher metrics. Metrics export is
// not configured in this build, so it is a no-op meter.
func (p *Provider) Meter(string) metric.Meter {
	return noop.Meter{}
}

// Flush pushes out buffered log records. Called when a hunt session ends
// so records are not lost if the process dies between sessions.
func (p *Provider) Flush(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.ForceFlush(ctx); err != nil {
		return fmt.Errorf("otel log flush: %w", err)
	}
	return nil
}

// Shutdown flushes and stops the providers. Call once at process exit.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.Shutdown(ctx); err != nil {
		return fmt.Errorf("otel log shutdown: %w", err)
	}
	return nil
}

// Enabled reports whether telemetry export is active.
func (p *Provider) Enabled() bool {
	return p.cfg.Enabled
}
