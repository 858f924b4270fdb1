package convert

import (
	"database/sql"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/internal/model"
	"github.com/geohunt/arcoin/pkg/core"
)

// SessionToGorm converts a core.HuntSession to a GORM HuntSession.
// The caller assigns the database ID on insert.
func SessionToGorm(s core.HuntSession) model.HuntSession {
	endTime := sql.NullTime{}
	if !s.EndTime.IsZero() {
		endTime = sql.NullTime{Time: s.EndTime, Valid: true}
	}

	return model.HuntSession{
		SessionUID:             s.ID.String(),
		PlayerTag:              s.PlayerTag,
		StartTime:              s.StartTime,
		EndTime:                endTime,
		BaselineHeadingDegrees: s.BaselineHeadingDegrees,
		AppVersion:             s.AppVersion,
		EngineVersion:          s.EngineVersion,
		DeviceModel:            s.DeviceModel,
	}
}

// CoinToGorm converts a core.TargetPoint to a GORM Coin.
func CoinToGorm(sessionID uint, t core.TargetPoint) model.Coin {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		settings = []byte("{}")
	}

	return model.Coin{
		SessionID: sessionID,
		TargetUID: t.ID.String(),
		Name:      t.Name,
		Location:  geomath.Point3857(t.Coordinate),
		Settings:  datatypes.JSON(settings),
	}
}

// TrackPointToGorm converts a core.TrackPoint to a GORM TrackPoint.
func TrackPointToGorm(sessionID uint, tp core.TrackPoint) model.TrackPoint {
	return model.TrackPoint{
		Time:           tp.Time,
		SessionID:      sessionID,
		Position:       geomath.Point3857(tp.Coordinate),
		FixAccuracy:    tp.FixAccuracy,
		HeadingDegrees: tp.Heading.Degrees,
		HeadingMethod:  tp.Heading.Method.String(),
		Mode:           tp.Mode.String(),
		DistanceMeters: tp.DistanceMeters,
	}
}

// ModeSwitchToGorm converts a core.ModeSwitch to a GORM ModeSwitch.
func ModeSwitchToGorm(sessionID uint, ms core.ModeSwitch) model.ModeSwitch {
	return model.ModeSwitch{
		Time:          ms.Time,
		SessionID:     sessionID,
		FromMode:      ms.From.String(),
		ToMode:        ms.To.String(),
		TrackingState: ms.TrackingState.String(),
		Displacement:  ms.Displacement,
	}
}

// CoinEventToGorm converts a core.CoinEventRecord to a GORM CoinEvent.
func CoinEventToGorm(sessionID uint, e core.CoinEventRecord) model.CoinEvent {
	return model.CoinEvent{
		Time:           e.Time,
		SessionID:      sessionID,
		TargetUID:      e.TargetID.String(),
		Kind:           e.Kind.String(),
		DistanceMeters: e.DistanceMeters,
		Mode:           e.Mode.String(),
		HeadingMethod:  e.HeadingMethod.String(),
	}
}

// EnginePerfToGorm converts a core.EnginePerf to a GORM EnginePerf.
func EnginePerfToGorm(sessionID uint, p core.EnginePerf) model.EnginePerf {
	return model.EnginePerf{
		Time:           p.Time,
		SessionID:      sessionID,
		TickDurationMs: float32(p.TickDurationMs),
		TicksPerSecond: float32(p.TicksPerSecond),
		QueueLengths: model.QueueLengths{
			TrackPoints:  uint16(p.TrackQueueLen),
			CoinEvents:   uint16(p.EventQueueLen),
			PerfSamples:  uint16(p.PerfQueueLen),
			ModeSwitches: uint16(p.ModeSwitches),
		},
		ModeSwitches:        p.ModeSwitches,
		DisplayMode:         p.DisplayMode,
		LastWriteDurationMs: float32(p.LastWriteDuration.Seconds() * 1000),
	}
}
