// Package convert provides functions to convert GORM models to core models
package convert

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/internal/model"
	"github.com/geohunt/arcoin/pkg/core"
)

// placementModeFromString parses a stored placement-mode label.
func placementModeFromString(s string) core.PlacementMode {
	if s == core.PlacementHeadingOnly.String() {
		return core.PlacementHeadingOnly
	}
	return core.PlacementFull
}

// trackingStateFromString parses a stored tracking-state label.
func trackingStateFromString(s string) core.TrackingState {
	for _, state := range []core.TrackingState{
		core.TrackingNone,
		core.TrackingLimited,
		core.TrackingNormal,
		core.TrackingExcellent,
	} {
		if state.String() == s {
			return state
		}
	}
	return core.TrackingNone
}

// headingMethodFromString parses a stored heading-method label.
func headingMethodFromString(s string) core.HeadingMethod {
	for _, m := range []core.HeadingMethod{
		core.HeadingCompass,
		core.HeadingAccelerometer,
		core.HeadingGyroscope,
		core.HeadingCameraYaw,
	} {
		if m.String() == s {
			return m
		}
	}
	return core.HeadingNone
}

// eventKindFromString parses a stored event-kind label.
func eventKindFromString(s string) core.EventKind {
	for _, k := range []core.EventKind{
		core.EventTargetSet,
		core.EventTargetCleared,
		core.EventMaterialized,
		core.EventEnteredCollectionRange,
		core.EventExitedCollectionRange,
		core.EventCollectionComplete,
		core.EventTrackingModeChanged,
	} {
		if k.String() == s {
			return k
		}
	}
	return core.EventTargetSet
}

// SessionToCore converts a GORM HuntSession to a core.HuntSession.
func SessionToCore(s model.HuntSession) core.HuntSession {
	id, err := uuid.Parse(s.SessionUID)
	if err != nil {
		id = uuid.Nil
	}

	var endTime time.Time
	if s.EndTime.Valid {
		endTime = s.EndTime.Time
	}

	return core.HuntSession{
		ID:                     id,
		PlayerTag:              s.PlayerTag,
		StartTime:              s.StartTime,
		EndTime:                endTime,
		BaselineHeadingDegrees: s.BaselineHeadingDegrees,
		AppVersion:             s.AppVersion,
		EngineVersion:          s.EngineVersion,
		DeviceModel:            s.DeviceModel,
	}
}

// CoinToCore converts a GORM Coin to a core.TargetPoint.
// Settings that fail to parse fall back to the shipped defaults.
func CoinToCore(c model.Coin) core.TargetPoint {
	id, err := uuid.Parse(c.TargetUID)
	if err != nil {
		id = uuid.Nil
	}

	settings := core.DefaultDisplaySettings()
	if len(c.Settings) > 0 {
		_ = json.Unmarshal(c.Settings, &settings)
	}

	return core.TargetPoint{
		ID:         id,
		Name:       c.Name,
		Coordinate: geomath.Coordinate4326(c.Location),
		Settings:   settings,
	}
}

// TrackPointToCore converts a GORM TrackPoint to a core.TrackPoint.
func TrackPointToCore(tp model.TrackPoint) core.TrackPoint {
	return core.TrackPoint{
		Time:        tp.Time,
		Coordinate:  geomath.Coordinate4326(tp.Position),
		FixAccuracy: tp.FixAccuracy,
		Heading: core.Heading{
			Degrees: tp.HeadingDegrees,
			Method:  headingMethodFromString(tp.HeadingMethod),
		},
		Mode:           placementModeFromString(tp.Mode),
		DistanceMeters: tp.DistanceMeters,
	}
}

// ModeSwitchToCore converts a GORM ModeSwitch to a core.ModeSwitch.
func ModeSwitchToCore(ms model.ModeSwitch) core.ModeSwitch {
	return core.ModeSwitch{
		Time:          ms.Time,
		From:          placementModeFromString(ms.FromMode),
		To:            placementModeFromString(ms.ToMode),
		TrackingState: trackingStateFromString(ms.TrackingState),
		Displacement:  ms.Displacement,
	}
}

// CoinEventToCore converts a GORM CoinEvent to a core.CoinEventRecord.
func CoinEventToCore(e model.CoinEvent) core.CoinEventRecord {
	targetID, err := uuid.Parse(e.TargetUID)
	if err != nil {
		targetID = uuid.Nil
	}

	return core.CoinEventRecord{
		Time:           e.Time,
		TargetID:       targetID,
		Kind:           eventKindFromString(e.Kind),
		DistanceMeters: e.DistanceMeters,
		Mode:           placementModeFromString(e.Mode),
		HeadingMethod:  headingMethodFromString(e.HeadingMethod),
	}
}

// EnginePerfToCore converts a GORM EnginePerf to a core.EnginePerf.
func EnginePerfToCore(p model.EnginePerf) core.EnginePerf {
	return core.EnginePerf{
		Time:              p.Time,
		TickDurationMs:    float64(p.TickDurationMs),
		TicksPerSecond:    float64(p.TicksPerSecond),
		TrackQueueLen:     int(p.QueueLengths.TrackPoints),
		EventQueueLen:     int(p.QueueLengths.CoinEvents),
		PerfQueueLen:      int(p.QueueLengths.PerfSamples),
		ModeSwitches:      p.ModeSwitches,
		LastWriteDuration: time.Duration(float64(p.LastWriteDurationMs) * float64(time.Millisecond)),
		DisplayMode:       p.DisplayMode,
	}
}
