package main

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/geohunt/arcoin/internal/dispatcher"
	"github.com/geohunt/arcoin/internal/feed"
	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/pkg/core"
)

// scenarioConfig describes a synthetic walk from a start coordinate
// straight toward the placed coin.
type scenarioConfig struct {
	Start  core.GeoCoordinate
	Target core.GeoCoordinate
	// WalkSpeed in meters per second. Defaults to a brisk walk.
	WalkSpeed   float64
	FixAccuracy float64
	FixInterval time.Duration
}

// scenarioFeed synthesizes the observer command stream a device would
// produce while walking to a coin: GPS fixes along the path, a compass
// aligned with the walk direction and a render-space pose advancing with
// the covered distance.
type scenarioFeed struct {
	cfg  scenarioConfig
	sink feed.Sink
	log  *slog.Logger
}

func newScenarioFeed(cfg scenarioConfig, sink feed.Sink, log *slog.Logger) *scenarioFeed {
	if cfg.WalkSpeed <= 0 {
		cfg.WalkSpeed = 1.4
	}
	if cfg.FixAccuracy <= 0 {
		cfg.FixAccuracy = 5
	}
	if cfg.FixInterval <= 0 {
		cfg.FixInterval = 250 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &scenarioFeed{cfg: cfg, sink: sink, log: log}
}

// Run walks toward the target until within half a meter, then returns.
// Cancelling the context stops the walk without error.
func (f *scenarioFeed) Run(ctx context.Context) error {
	f.log.Info("scenario walk starting",
		"distanceMeters", geomath.DistanceMeters(f.cfg.Start, f.cfg.Target),
		"walkSpeedMps", f.cfg.WalkSpeed)

	// The positional device stays live for the whole walk.
	f.send("trackingUpdate", "normal", "1")

	pos := f.cfg.Start
	walked := 0.0

	ticker := time.NewTicker(f.cfg.FixInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		remaining := geomath.DistanceMeters(pos, f.cfg.Target)
		if remaining <= 0.5 {
			f.log.Info("scenario walk finished", "walkedMeters", walked)
			return nil
		}

		bearing := geomath.BearingDegrees(pos, f.cfg.Target)
		step := f.cfg.WalkSpeed * f.cfg.FixInterval.Seconds()
		if step > remaining {
			step = remaining
		}
		pos = geomath.Destination(pos, bearing, step)
		walked += step

		f.send("gpsFix",
			formatFloat(pos.Latitude), formatFloat(pos.Longitude),
			formatFloat(f.cfg.FixAccuracy), "0")
		f.send("sensorUpdate",
			"1", formatFloat(bearing),
			"0", "-1", "0",
			"0", "0", "0", "0", "1",
			"0")
		f.send("poseUpdate", "0", "1.6", formatFloat(walked), "0", "0", "0", "1")
	}
}

func (f *scenarioFeed) send(name string, args ...string) {
	_, err := f.sink.Dispatch(dispatcher.Command{Name: name, Args: args, Timestamp: time.Now()})
	if err != nil {
		f.log.Warn("scenario dispatch failed", "command", name, "error", err)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
