// internal/render/scale.go
package render

import (
	"math"

	"github.com/geohunt/arcoin/pkg/core"
)

// SteppedScale maps a GPS distance to a discrete scale bucket. Distance is
// bucketed into N = round(materializationDistance/metersPerStep) steps
// rather than continuously interpolated; micro-jitter in the GPS distance
// would otherwise show up as imperceptible but constant size changes.
// Step 1 is the farthest bucket (ScaleAtFar), step N the nearest
// (ScaleAtNear).
func SteppedScale(distance float64, s core.DisplaySettings) float64 {
	n := int(math.Round(s.MaterializationDistance / s.MetersPerStep))
	if n < 1 {
		n = 1
	}

	// Clamp before bucketing so out-of-range and NaN-adjacent inputs
	// never produce an out-of-range step.
	d := distance
	if d < s.MetersPerStep {
		d = s.MetersPerStep
	}
	if d > s.MaterializationDistance {
		d = s.MaterializationDistance
	}

	bucket := int(math.Ceil(d / s.MetersPerStep))
	if bucket < 1 {
		bucket = 1
	}
	if bucket > n {
		bucket = n
	}

	// k counts from the farthest bucket.
	k := n - bucket + 1
	if n == 1 {
		return s.ScaleAtNear
	}
	frac := float64(k-1) / float64(n-1)
	return s.ScaleAtFar + frac*(s.ScaleAtNear-s.ScaleAtFar)
}

// CollectionRamp is the continuous emphasis multiplier layered on top of
// the stepped scale inside the final meters: ScaleAtCollectionMultiplier
// at the ramp boundary, easing down to 1 as distance shrinks to zero.
func CollectionRamp(distance float64, s core.DisplaySettings) float64 {
	if s.FinalMetersForScaleRamp <= 0 || distance >= s.FinalMetersForScaleRamp {
		return 1
	}
	d := distance
	if d < 0 {
		d = 0
	}
	return 1 + (s.ScaleAtCollectionMultiplier-1)*(d/s.FinalMetersForScaleRamp)
}

// Pulse is the collectible-state attention effect.
func Pulse(seconds float64) float64 {
	return 1 + 0.1*math.Sin(4*seconds)
}

// easeOutCubic is the entrance/exit interpolation curve.
func easeOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	inv := 1 - t
	return 1 - inv*inv*inv
}
