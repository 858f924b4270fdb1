// coinsim hosts the AR coin engine outside the game client. It wires the
// full command pipeline (dispatcher, parser, worker, storage, monitor) the
// same way the native plugin does, then drives it from a synthetic walk
// scenario or a replayed GPS feed. Useful for tuning display thresholds
// and soak-testing storage backends without a device.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/geohunt/arcoin/internal/api"
	"github.com/geohunt/arcoin/internal/cache"
	"github.com/geohunt/arcoin/internal/config"
	"github.com/geohunt/arcoin/internal/dispatcher"
	"github.com/geohunt/arcoin/internal/engine"
	"github.com/geohunt/arcoin/internal/feed"
	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/internal/influx"
	"github.com/geohunt/arcoin/internal/logging"
	"github.com/geohunt/arcoin/internal/monitor"
	"github.com/geohunt/arcoin/internal/otel"
	"github.com/geohunt/arcoin/internal/parser"
	"github.com/geohunt/arcoin/internal/session"
	"github.com/geohunt/arcoin/internal/storage"
	"github.com/geohunt/arcoin/internal/tracking"
	"github.com/geohunt/arcoin/internal/worker"
	"github.com/geohunt/arcoin/pkg/core"
)

// Set at build time via -ldflags.
var (
	CurrentVersion = "dev"
	BuildDate      = "unknown"
)

// engineVersion identifies the pipeline revision stamped onto sessions.
const engineVersion = "2.0.0"

func main() {
	configDir := flag.String("config", ".", "directory containing arcoin.cfg.json")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("coinsim %s (built %s)\n", CurrentVersion, BuildDate)
		return
	}

	if err := run(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, "coinsim:", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	start := time.Now()

	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "coinsim: %v, continuing with defaults\n", err)
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}
	logFile, err := os.OpenFile(logging.LogFilePath(logsDir, start),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	var gelfSink io.Writer
	if config.GetBool("graylog.enabled") {
		gelfWriter, err := logging.NewGelfWriter(config.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "coinsim: graylog unavailable: %v\n", err)
		} else {
			gelfSink = gelfWriter
			defer gelfWriter.Close()
		}
	}

	otelCfg := otel.Config{
		Enabled:     config.GetBool("otel.enabled"),
		ServiceName: "arcoin-coinsim",
		Endpoint:    config.GetString("otel.endpoint"),
		Insecure:    config.GetBool("otel.insecure"),
	}
	if otelCfg.Enabled {
		otelFile, err := os.OpenFile(filepath.Join(logsDir, "otel.ndjson"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening otel log: %w", err)
		}
		defer otelFile.Close()
		otelCfg.LogWriter = otelFile
	}
	provider, err := otel.New(otelCfg)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer provider.Shutdown(context.Background())

	slogMgr := logging.NewSlogManager()
	slogMgr.Setup(logFile, gelfSink, config.GetString("logLevel"), provider.LoggerProvider())
	log := slogMgr.Logger()
	defer slogMgr.Flush(context.Background())

	log.Info("coinsim starting", "version", CurrentVersion, "buildDate", BuildDate)

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	var influxMgr *influx.Manager
	if config.GetBool("influx.enabled") {
		influxMgr = influx.NewManager(zlog, filepath.Join(logsDir, "influx_backup"))
		if err := influxMgr.Connect(); err != nil {
			log.Warn("influx setup failed, telemetry points will be dropped", "error", err)
		}
	}

	storCfg, err := config.GetStorage()
	if err != nil {
		return err
	}
	backend, err := storage.NewBackend(storCfg, log)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("storage init: %w", err)
	}
	defer backend.Close()

	disp, err := dispatcher.New(logging.NewDispatcherLogger(zlog))
	if err != nil {
		return err
	}

	deps := worker.Dependencies{
		Coins:   cache.NewCoinCache(),
		Session: session.NewContext(),
		Parser:  parser.New(log, CurrentVersion, engineVersion),
		Logger:  log,
		Influx:  influxMgr,
	}
	eng := engine.New(engine.Config{
		GPSStaleAfter: time.Duration(config.GetInt("engine.gpsStaleSeconds")) * time.Second,
		EventBuffer:   config.GetInt("engine.eventBuffer"),
		Tracking: tracking.Config{
			StillEpsilonMeters:        config.GetFloat("tracking.stillEpsilonMeters"),
			StillSeconds:              config.GetFloat("tracking.stillSeconds"),
			RecoverDisplacementMeters: config.GetFloat("tracking.recoverDisplacementMeters"),
		},
	}, log)
	mgr := worker.NewManager(deps, eng, backend)
	mgr.RegisterHandlers(disp)

	slogMgr.SetAttrSource(sessionAttrs(deps.Session))

	mon := monitor.NewService(monitor.Dependencies{
		Session:   deps.Session,
		Worker:    mgr,
		Backend:   backend,
		Influx:    influxMgr,
		Logger:    log,
		StatusDir: logsDir,
	})
	if err := mon.Start(); err != nil {
		log.Warn("perf monitor disabled", "error", err)
	} else {
		defer mon.Stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runSession(ctx, log, disp, mgr, eng); err != nil {
		return err
	}

	uploadExport(log, backend)
	return nil
}

// runSession starts a hunt session, places one coin, drives the tick loop
// against the configured feed and ends the session when the coin is
// collected or the context is cancelled.
func runSession(ctx context.Context, log *slog.Logger, disp *dispatcher.Dispatcher, mgr *worker.Manager, eng *engine.Engine) error {
	startPayload, err := json.Marshal(map[string]string{
		"playerTag":   config.GetString("playerTag"),
		"deviceModel": "coinsim",
	})
	if err != nil {
		return err
	}
	result, err := dispatch(disp, "startSession", string(startPayload))
	if err != nil {
		return fmt.Errorf("startSession: %w", err)
	}
	log.Info("session started", "sessionId", result)

	origin := core.GeoCoordinate{
		Latitude:  config.GetFloat("scenario.startLat"),
		Longitude: config.GetFloat("scenario.startLon"),
	}
	target := geomath.Destination(origin,
		config.GetFloat("scenario.targetBearingDegrees"),
		config.GetFloat("scenario.targetDistanceMeters"))

	settings, err := json.Marshal(config.Display())
	if err != nil {
		return err
	}
	_, err = dispatch(disp, "setTarget",
		uuid.New().String(), "Sim Coin",
		formatFloat(target.Latitude), formatFloat(target.Longitude),
		string(settings))
	if err != nil {
		return fmt.Errorf("setTarget: %w", err)
	}

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	feedErr := make(chan error, 1)
	go func() { feedErr <- buildFeed(origin, target, disp, log).Run(feedCtx) }()

	tickRate := config.GetInt("engine.tickRateHz")
	if tickRate <= 0 {
		tickRate = 30
	}
	dt := 1.0 / float64(tickRate)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	collected := false
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case err := <-feedErr:
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("feed: %w", err)
			}
			// A finished feed is not the end of the run; the engine
			// still animates collection from buffered state.
		case <-ticker.C:
			mgr.Tick(dt)
			for _, ev := range drainEvents(eng) {
				log.Info("engine event", "kind", ev.Kind.String(),
					"distance", ev.DistanceMeters, "mode", ev.Mode.String())
				switch ev.Kind {
				case core.EventEnteredCollectionRange:
					if _, err := dispatch(disp, "attemptCollect"); err != nil {
						log.Warn("collect attempt rejected", "error", err)
					}
				case core.EventCollectionComplete:
					collected = true
				}
			}
			if collected {
				break loop
			}
		}
	}
	stopFeed()

	if _, err := dispatch(disp, "endSession"); err != nil {
		return fmt.Errorf("endSession: %w", err)
	}
	log.Info("session ended", "collected", collected,
		"ticks", mgr.TickCount(), "droppedEvents", eng.DroppedEvents())
	return nil
}

// buildFeed selects the observer feed per feed.type. The scenario feed is
// self-contained; nmea and mqtt replay external fixes against the same
// target placement.
func buildFeed(origin, target core.GeoCoordinate, disp *dispatcher.Dispatcher, log *slog.Logger) feed.Feed {
	switch feedType := config.GetString("feed.type"); feedType {
	case "nmea":
		return feed.NewNMEA(feed.NMEAConfig{
			Path:        config.GetString("feed.nmea.path"),
			Speedup:     config.GetFloat("feed.nmea.speedup"),
			FixAccuracy: config.GetFloat("scenario.fixAccuracyMeters"),
		}, disp, log)
	case "mqtt":
		return feed.NewMQTT(feed.MQTTConfig{
			Broker:   config.GetString("feed.mqtt.broker"),
			ClientID: config.GetString("feed.mqtt.clientId"),
			GPSTopic: config.GetString("feed.mqtt.gpsTopic"),
			IMUTopic: config.GetString("feed.mqtt.imuTopic"),
		}, disp, log)
	default:
		return newScenarioFeed(scenarioConfig{
			Start:       origin,
			Target:      target,
			WalkSpeed:   config.GetFloat("scenario.walkSpeedMps"),
			FixAccuracy: config.GetFloat("scenario.fixAccuracyMeters"),
			FixInterval: time.Duration(config.GetInt("scenario.fixIntervalMs")) * time.Millisecond,
		}, disp, log)
	}
}

func drainEvents(eng *engine.Engine) []core.Event {
	var events []core.Event
	for {
		select {
		case ev := <-eng.Events().Receive():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func dispatch(d *dispatcher.Dispatcher, name string, args ...string) (any, error) {
	return d.Dispatch(dispatcher.Command{Name: name, Args: args, Timestamp: time.Now()})
}

// sessionAttrs stamps log records with the active session while one runs.
func sessionAttrs(sess *session.Context) logging.AttrSource {
	return func() []slog.Attr {
		if !sess.Active() {
			return nil
		}
		s := sess.Get()
		return []slog.Attr{
			slog.String("sessionId", s.ID.String()),
			slog.String("playerTag", s.PlayerTag),
		}
	}
}

// uploadExport pushes the session export to the hunt API when the backend
// produced one and an API key is configured.
func uploadExport(log *slog.Logger, backend storage.Backend) {
	up, ok := backend.(storage.Uploadable)
	if !ok {
		return
	}
	apiKey := config.GetString("api.apiKey")
	if apiKey == "" {
		return
	}
	path := up.GetExportedFilePath()
	if path == "" {
		log.Warn("no export produced, skipping upload")
		return
	}
	client := api.New(config.GetString("api.serverUrl"), apiKey)
	if err := client.Healthcheck(); err != nil {
		log.Warn("hunt API unreachable, export kept locally", "file", path, "error", err)
		return
	}
	if err := client.Upload(path, up.GetExportMetadata()); err != nil {
		log.Error("export upload failed", "file", path, "error", err)
		return
	}
	log.Info("session export uploaded", "file", filepath.Base(path))
}
