// Package positioner converts a target's absolute GPS coordinate plus the
// observer's coordinate and heading into a local render-space offset.
// X is east/right of the facing direction, Z is forward.
package positioner

import (
	"math"

	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/pkg/core"
)

// Converter holds the only piece of state in the conversion: the compass
// baseline captured once at session start. With the same baseline, the
// same two coordinates and heading always produce the same offset.
type Converter struct {
	baseline    float64
	hasBaseline bool
}

// New creates a Converter with no captured baseline.
func New() *Converter {
	return &Converter{}
}

// CaptureBaseline records the current heading as the session baseline.
// Heading-only placement subtracts it so placements stay self-consistent
// even when the absolute heading source is wrong.
func (c *Converter) CaptureBaseline(headingDegrees float64) {
	c.baseline = headingDegrees
	c.hasBaseline = true
}

// Baseline returns the captured baseline and whether one was captured.
func (c *Converter) Baseline() (float64, bool) {
	return c.baseline, c.hasBaseline
}

// Reset clears the captured baseline.
func (c *Converter) Reset() {
	c.baseline = 0
	c.hasBaseline = false
}

// Convert computes the local (x, z) offset from observer to target given
// the live heading. Pure: no baseline correction applied.
func (c *Converter) Convert(observer, target core.GeoCoordinate, headingDegrees float64) (x, z float64) {
	return offset(observer, target, headingDegrees)
}

// ConvertCorrected computes the offset with the captured baseline folded
// into the effective heading. Falls back to the raw conversion when no
// baseline was captured.
func (c *Converter) ConvertCorrected(observer, target core.GeoCoordinate, headingDegrees float64) (x, z float64) {
	if !c.hasBaseline {
		return offset(observer, target, headingDegrees)
	}
	effective := geomath.NormalizeSigned(headingDegrees - c.baseline)
	return offset(observer, target, effective)
}

func offset(observer, target core.GeoCoordinate, effectiveHeading float64) (x, z float64) {
	distance := geomath.DistanceMeters(observer, target)
	bearing := geomath.BearingDegrees(observer, target)
	relative := geomath.NormalizeSigned(bearing - effectiveHeading)

	rad := relative * math.Pi / 180
	return distance * math.Sin(rad), distance * math.Cos(rad)
}
