package influx

import (
	"time"

	"github.com/google/uuid"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/geohunt/arcoin/pkg/core"
)

// CoinEventPoint builds a point for an engine event in the hunt_data bucket.
func CoinEventPoint(sessionID, playerTag string, ev core.Event) *influxdb2_write.Point {
	point := influxdb2_write.NewPointWithMeasurement("coin_event").
		AddTag("sessionId", sessionID).
		AddTag("playerTag", playerTag).
		AddTag("kind", ev.Kind.String()).
		AddField("distanceMeters", ev.DistanceMeters).
		SetTime(ev.Time)
	if ev.TargetID != uuid.Nil {
		point.AddTag("targetId", ev.TargetID.String())
	}
	if ev.Kind == core.EventTrackingModeChanged {
		point.AddField("mode", ev.Mode.String())
	}
	return point
}

// TrackingPoint builds a point for the tracking_quality bucket.
func TrackingPoint(sessionID string, t time.Time, mode core.PlacementMode, displacement float64, state core.TrackingState) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("tracking").
		AddTag("sessionId", sessionID).
		AddTag("mode", mode.String()).
		AddField("displacement", displacement).
		AddField("trackingState", state.String()).
		SetTime(t)
}

// PerfPoint builds a point for the engine_performance bucket.
func PerfPoint(sessionID string, perf core.EnginePerf) *influxdb2_write.Point {
	return influxdb2_write.NewPointWithMeasurement("engine_tick").
		AddTag("sessionId", sessionID).
		AddTag("displayMode", perf.DisplayMode).
		AddField("tickDurationMs", perf.TickDurationMs).
		AddField("ticksPerSecond", perf.TicksPerSecond).
		AddField("trackQueueLen", perf.TrackQueueLen).
		AddField("eventQueueLen", perf.EventQueueLen).
		AddField("modeSwitches", perf.ModeSwitches).
		SetTime(perf.Time)
}
