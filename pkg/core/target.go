// pkg/core/target.go
package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrSettingsInvalid is returned when display thresholds break the
// hysteresis ordering collection < materialization <= hide.
var ErrSettingsInvalid = errors.New("invalid display settings")

// TargetPoint is the single point of interest the engine renders.
type TargetPoint struct {
	ID         uuid.UUID
	Name       string
	Coordinate GeoCoordinate
	Settings   DisplaySettings
}

// DisplaySettings holds the per-coin rendering thresholds and animation
// constants. The values carry the game-feel tuning from the shipped game;
// treat the formulas consuming them as the contract, not something to
// re-derive.
type DisplaySettings struct {
	// MaterializationDistance is the range in meters at which a hidden
	// coin materializes.
	MaterializationDistance float64
	// HideDistance is the range at which a visible coin re-hides.
	// Must be >= MaterializationDistance; the gap is the hysteresis band.
	HideDistance float64
	// CollectionDistance is the range within which collection is allowed.
	CollectionDistance float64

	// MetersPerStep is the granularity of the discrete distance-to-scale
	// bucketing.
	MetersPerStep float64
	ScaleAtFar    float64
	ScaleAtNear   float64

	// FinalMetersForScaleRamp and ScaleAtCollectionMultiplier shape the
	// continuous emphasis ramp layered on top of the stepped scale in the
	// last few meters.
	FinalMetersForScaleRamp     float64
	ScaleAtCollectionMultiplier float64

	// MaterializeForward and MaterializeHeight place the coin relative to
	// the observer's facing direction at the moment of materialization.
	MaterializeForward float64
	MaterializeHeight  float64

	// Animation timing and spin rates.
	MaterializeSeconds   float64
	CollectSeconds       float64
	IdleSpinDegPerSec    float64
	CollectSpinDegPerSec float64
}

// DefaultDisplaySettings returns the tuning used by the shipped game.
func DefaultDisplaySettings() DisplaySettings {
	return DisplaySettings{
		MaterializationDistance:     100,
		HideDistance:                120,
		CollectionDistance:          5,
		MetersPerStep:               10,
		ScaleAtFar:                  0.3,
		ScaleAtNear:                 1.0,
		FinalMetersForScaleRamp:     8,
		ScaleAtCollectionMultiplier: 1.5,
		MaterializeForward:          3,
		MaterializeHeight:           0.5,
		MaterializeSeconds:          0.8,
		CollectSeconds:              0.8,
		IdleSpinDegPerSec:           15,
		CollectSpinDegPerSec:        720,
	}
}

// Validate checks the threshold ordering that the hysteresis band depends
// on. A violating configuration causes visible flicker at the boundary.
func (s DisplaySettings) Validate() error {
	if s.CollectionDistance >= s.MaterializationDistance {
		return fmt.Errorf("%w: collectionDistance %.1f must be below materializationDistance %.1f",
			ErrSettingsInvalid, s.CollectionDistance, s.MaterializationDistance)
	}
	if s.MaterializationDistance > s.HideDistance {
		return fmt.Errorf("%w: materializationDistance %.1f must not exceed hideDistance %.1f",
			ErrSettingsInvalid, s.MaterializationDistance, s.HideDistance)
	}
	if s.MetersPerStep <= 0 {
		return fmt.Errorf("%w: metersPerStep must be positive", ErrSettingsInvalid)
	}
	if s.MaterializeSeconds <= 0 || s.CollectSeconds <= 0 {
		return fmt.Errorf("%w: animation durations must be positive", ErrSettingsInvalid)
	}
	return nil
}
