// pkg/core/observer.go
package core

import "time"

// ObserverState is the player's live spatial context, resolved by external
// collaborators between ticks. The engine reads it and never mutates it.
type ObserverState struct {
	// Coordinate is the latest GPS fix, nil when no fix has arrived yet.
	Coordinate *GeoCoordinate
	// FixTime is when the fix was taken; the engine treats fixes older
	// than the configured staleness window as unknown distance.
	FixTime time.Time
	// FixAccuracy is the reported horizontal accuracy in meters.
	FixAccuracy float64

	Sensors SensorSnapshot

	// Viewpoint is the rendered camera pose in render space.
	Viewpoint Pose

	// TrackingState is the spatial-tracking subsystem's reported quality.
	TrackingState TrackingState
	// PositionalDeviceActive reports whether any positional input device
	// delivered data this tick.
	PositionalDeviceActive bool
}

// HasFix reports whether a GPS coordinate is present and no older than
// maxAge at the given instant.
func (o ObserverState) HasFix(now time.Time, maxAge time.Duration) bool {
	if o.Coordinate == nil {
		return false
	}
	if maxAge <= 0 {
		return true
	}
	return now.Sub(o.FixTime) <= maxAge
}
