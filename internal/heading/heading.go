// Package heading resolves a single device heading per tick from a
// priority-ordered chain of sensor providers: compass, accelerometer tilt,
// gyroscope attitude, camera yaw. Providers never error; an unavailable or
// degenerate reading simply falls through to the next method.
package heading

import (
	"math"

	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/pkg/core"
)

// Provider reads one heading estimate from a sensor snapshot.
type Provider interface {
	// Method identifies the sensor this provider reads.
	Method() core.HeadingMethod
	// Confidence is the fixed confidence tag for a successful read.
	Confidence() float64
	// Read returns a heading in degrees and whether the sensor produced a
	// usable value this tick.
	Read(s core.SensorSnapshot) (float64, bool)
}

// Chain tries each provider in order and returns the first usable heading.
type Chain struct {
	providers []Provider
}

// NewChain builds the default fallback chain. Order matters: the compass is
// the only source aligned to true north, the others only track relative
// rotation with decreasing fidelity.
func NewChain() *Chain {
	return &Chain{
		providers: []Provider{
			CompassProvider{},
			AccelTiltProvider{},
			GyroProvider{},
			CameraYawProvider{},
		},
	}
}

// NewChainWith builds a chain from an explicit provider list, used by
// tests and hosts that disable sensors.
func NewChainWith(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Current resolves the heading for this tick. When every provider falls
// through (empty chain), the result carries HeadingNone and zero
// confidence; callers treat that as "heading unknown".
func (c *Chain) Current(s core.SensorSnapshot) core.Heading {
	for _, p := range c.providers {
		deg, ok := p.Read(s)
		if !ok {
			continue
		}
		return core.Heading{
			Degrees:    geomath.Normalize360(deg),
			Method:     p.Method(),
			Confidence: p.Confidence(),
		}
	}
	return core.Heading{Method: core.HeadingNone}
}

// degenerate reports whether a sensor value is the zero/NaN reading that
// unavailable platform sensors produce.
func degenerate(deg float64) bool {
	return deg == 0 || math.IsNaN(deg)
}
