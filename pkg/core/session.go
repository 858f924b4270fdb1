// pkg/core/session.go
package core

import (
	"time"

	"github.com/google/uuid"
)

// HuntSession groups everything recorded between a session start and end.
type HuntSession struct {
	ID        uuid.UUID
	PlayerTag string
	StartTime time.Time
	EndTime   time.Time

	// BaselineHeadingDegrees is the compass-correction baseline captured
	// once at session start for heading-only placement.
	BaselineHeadingDegrees float64

	AppVersion    string
	EngineVersion string
	DeviceModel   string
}

// TrackPoint is one recorded observer sample.
type TrackPoint struct {
	Time           time.Time
	Coordinate     GeoCoordinate
	FixAccuracy    float64
	Heading        Heading
	Mode           PlacementMode
	DistanceMeters float64 // distance to the active target, negative when none
}

// ModeSwitch records a tracking-mode transition and what triggered it.
type ModeSwitch struct {
	Time          time.Time
	From          PlacementMode
	To            PlacementMode
	TrackingState TrackingState
	Displacement  float64
}

// CoinEventRecord is a persisted engine lifecycle event.
type CoinEventRecord struct {
	Time           time.Time
	TargetID       uuid.UUID
	Kind           EventKind
	DistanceMeters float64
	Mode           PlacementMode
	HeadingMethod  HeadingMethod
}

// EnginePerf is a periodic performance sample of the tick loop.
type EnginePerf struct {
	Time              time.Time
	TickDurationMs    float64
	TicksPerSecond    float64
	TrackQueueLen     int
	EventQueueLen     int
	PerfQueueLen      int
	ModeSwitches      int
	LastWriteDuration time.Duration
	DisplayMode       string
}

// UploadMetadata describes an exported session archive sent to the hunt
// web service.
type UploadMetadata struct {
	SessionID       string
	PlayerTag       string
	DurationSeconds float64
	CoinsCollected  int
}
