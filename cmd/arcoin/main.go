// arcoin is the native plugin the game client loads. Built with
// -buildmode=c-shared, it exposes the Arcoin* entry points from
// pkg/bridge; the host calls commands through the dispatcher and drives
// the render loop with a per-frame "tick" command that returns the coin
// transform to apply.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/geohunt/arcoin/internal/api"
	"github.com/geohunt/arcoin/internal/cache"
	"github.com/geohunt/arcoin/internal/config"
	"github.com/geohunt/arcoin/internal/dispatcher"
	"github.com/geohunt/arcoin/internal/engine"
	"github.com/geohunt/arcoin/internal/influx"
	"github.com/geohunt/arcoin/internal/logging"
	"github.com/geohunt/arcoin/internal/monitor"
	"github.com/geohunt/arcoin/internal/otel"
	"github.com/geohunt/arcoin/internal/parser"
	"github.com/geohunt/arcoin/internal/session"
	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/internal/tracking"
	"github.com/geohunt/arcoin/internal/worker"
	"github.com/geohunt/arcoin/pkg/bridge"
	"github.com/geohunt/arcoin/pkg/core"
)

// Set at build time via -ldflags.
var (
	CurrentVersion = "dev"
	BuildDate      = "unknown"
)

const engineVersion = "2.0.0"

var (
	slogManager *logging.SlogManager
	logger      *slog.Logger
	provider    *otel.Provider
	backend     storage.Backend
	manager     *worker.Manager
	mon         *monitor.Service

	sessionStart = time.Now()
)

// tickResponse is the per-frame payload returned to the host, ready to
// apply to the coin game object.
type tickResponse struct {
	Mode           string               `json:"mode"`
	Display        string               `json:"display"`
	Visible        bool                 `json:"visible"`
	Transform      core.RenderTransform `json:"transform"`
	HeadingDegrees float64              `json:"headingDegrees"`
	HeadingMethod  string               `json:"headingMethod"`
	DistanceKnown  bool                 `json:"distanceKnown"`
	DistanceMeters float64              `json:"distanceMeters"`
	Events         []string             `json:"events,omitempty"`
}

// init runs when the host loads the library. Failures here must not
// panic; the plugin degrades to logging-only behavior instead of taking
// the game down.
func init() {
	moduleFolder := filepath.Dir(bridge.GetModulePath())

	if err := config.Load(moduleFolder); err != nil {
		fmt.Fprintf(os.Stderr, "arcoin: %v, continuing with defaults\n", err)
	}

	logsDir := config.GetString("logsDir")
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(moduleFolder, logsDir)
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "arcoin: creating logs dir: %v\n", err)
	}
	logFile, err := os.OpenFile(logging.LogFilePath(logsDir, sessionStart),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arcoin: opening log file: %v\n", err)
	}

	var gelfSink io.Writer
	if config.GetBool("graylog.enabled") {
		if w, err := logging.NewGelfWriter(config.GetString("graylog.address")); err == nil {
			gelfSink = w
		}
	}

	otelCfg := otel.Config{
		Enabled:     config.GetBool("otel.enabled"),
		ServiceName: "arcoin-plugin",
		Endpoint:    config.GetString("otel.endpoint"),
		Insecure:    config.GetBool("otel.insecure"),
		LogWriter:   logFile,
	}
	provider, err = otel.New(otelCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "arcoin: otel setup: %v\n", err)
		provider, _ = otel.New(otel.Config{})
	}

	slogManager = logging.NewSlogManager()
	slogManager.Setup(logFile, gelfSink, config.GetString("logLevel"), provider.LoggerProvider())
	logger = slogManager.Logger()

	logger.Info("arcoin plugin loading",
		"version", CurrentVersion, "buildDate", BuildDate, "moduleFolder", moduleFolder)

	zlog := zerolog.New(logFile).With().Timestamp().Logger()

	var influxMgr *influx.Manager
	if config.GetBool("influx.enabled") {
		influxMgr = influx.NewManager(zlog, filepath.Join(logsDir, "influx_backup"))
		if err := influxMgr.Connect(); err != nil {
			logger.Warn("influx setup failed, telemetry points will be dropped", "error", err)
		}
	}

	storCfg, err := config.GetStorage()
	if err != nil {
		logger.Error("storage config invalid", "error", err)
	} else if backend, err = storage.NewBackend(storCfg, logger); err != nil {
		logger.Error("storage backend unavailable", "error", err)
		backend = nil
	} else if err := backend.Init(); err != nil {
		logger.Error("storage init failed", "error", err)
		backend = nil
	}

	disp, err := dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		logger.Error("dispatcher setup failed", "error", err)
		return
	}

	eng := engine.New(engine.Config{
		GPSStaleAfter: time.Duration(config.GetInt("engine.gpsStaleSeconds")) * time.Second,
		EventBuffer:   config.GetInt("engine.eventBuffer"),
		Tracking: tracking.Config{
			StillEpsilonMeters:        config.GetFloat("tracking.stillEpsilonMeters"),
			StillSeconds:              config.GetFloat("tracking.stillSeconds"),
			RecoverDisplacementMeters: config.GetFloat("tracking.recoverDisplacementMeters"),
		},
	}, logger)

	sess := session.NewContext()
	manager = worker.NewManager(worker.Dependencies{
		Coins:   cache.NewCoinCache(),
		Session: sess,
		Parser:  parser.New(logger, CurrentVersion, engineVersion),
		Logger:  logger,
		Influx:  influxMgr,
	}, eng, backend)
	manager.RegisterHandlers(disp)
	slogManager.SetAttrSource(func() []slog.Attr {
		if !sess.Active() {
			return nil
		}
		s := sess.Get()
		return []slog.Attr{
			slog.String("sessionId", s.ID.String()),
			slog.String("playerTag", s.PlayerTag),
		}
	})
	disp.Register("tick", handleTick)
	disp.Register("uploadExport", handleUploadExport, dispatcher.Logged())
	disp.Register("flush", handleFlush, dispatcher.Logged())

	mon = monitor.NewService(monitor.Dependencies{
		Session:   sess,
		Worker:    manager,
		Backend:   backend,
		Influx:    influxMgr,
		Logger:    logger,
		StatusDir: logsDir,
	})
	if err := mon.Start(); err != nil {
		logger.Warn("perf monitor disabled", "error", err)
	}

	bridge.SetVersion(CurrentVersion)
	bridge.SetDispatcher(disp)

	logger.Info("arcoin plugin ready")
}

// handleTick advances the engine by dt seconds (args[0], defaults to one
// 30Hz frame) and returns the render payload for this frame.
func handleTick(c dispatcher.Command) (any, error) {
	dt := 1.0 / 30.0
	if len(c.Args) > 0 {
		parsed, err := strconv.ParseFloat(c.Args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tick delta %q: %w", c.Args[0], err)
		}
		if parsed > 0 {
			dt = parsed
		}
	}

	result := manager.Tick(dt)
	resp := tickResponse{
		Mode:           result.Mode.String(),
		Display:        result.Display.String(),
		Visible:        result.Visible,
		Transform:      result.Transform,
		HeadingDegrees: result.Heading.Degrees,
		HeadingMethod:  result.Heading.Method.String(),
		DistanceKnown:  result.DistanceKnown,
		DistanceMeters: result.DistanceMeters,
	}
	for _, ev := range result.Events {
		resp.Events = append(resp.Events, ev.Kind.String())
	}
	return resp, nil
}

// handleUploadExport pushes the last session export to the hunt API.
// Expected after endSession; storage backends that keep no local export
// report unsupported.
func handleUploadExport(dispatcher.Command) (any, error) {
	up, ok := backend.(storage.Uploadable)
	if !ok {
		return nil, fmt.Errorf("storage backend has no export to upload")
	}
	apiKey := config.GetString("api.apiKey")
	if apiKey == "" {
		return nil, fmt.Errorf("api.apiKey not configured")
	}
	path := up.GetExportedFilePath()
	if path == "" {
		return nil, fmt.Errorf("no export produced yet")
	}
	client := api.New(config.GetString("api.serverUrl"), apiKey)
	if err := client.Upload(path, up.GetExportMetadata()); err != nil {
		return nil, err
	}
	meta, _ := json.Marshal(up.GetExportMetadata())
	logger.Info("session export uploaded", "file", filepath.Base(path), "metadata", string(meta))
	return filepath.Base(path), nil
}

// handleFlush forces buffered telemetry out, for host shutdown hooks.
func handleFlush(dispatcher.Command) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := slogManager.Flush(ctx); err != nil {
		return nil, err
	}
	if err := provider.Flush(ctx); err != nil {
		return nil, err
	}
	return "flushed", nil
}

// main is required for -buildmode=c-shared and never runs.
func main() {}
