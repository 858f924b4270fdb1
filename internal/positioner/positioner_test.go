package positioner

import (
	"math"
	"testing"

	"github.com/geohunt/arcoin/internal/geomath"
	"github.com/geohunt/arcoin/pkg/core"
)

var (
	observer = core.GeoCoordinate{Latitude: 37.0, Longitude: -122.0}
)

func TestConvert_TargetDirectlyAhead(t *testing.T) {
	c := New()
	// Target 100 m due north, observer facing north.
	target := geomath.Destination(observer, 0, 100)

	x, z := c.Convert(observer, target, 0)
	if math.Abs(x) > 0.1 {
		t.Errorf("expected x ~0, got %f", x)
	}
	if math.Abs(z-100) > 0.1 {
		t.Errorf("expected z ~100, got %f", z)
	}
}

func TestConvert_TargetToTheRight(t *testing.T) {
	c := New()
	// Target due east, observer facing north: should land on +X.
	target := geomath.Destination(observer, 90, 50)

	x, z := c.Convert(observer, target, 0)
	if math.Abs(x-50) > 0.1 {
		t.Errorf("expected x ~50, got %f", x)
	}
	if math.Abs(z) > 0.1 {
		t.Errorf("expected z ~0, got %f", z)
	}
}

func TestConvert_HeadingRotatesFrame(t *testing.T) {
	c := New()
	// Target due east, observer also facing east: straight ahead.
	target := geomath.Destination(observer, 90, 50)

	x, z := c.Convert(observer, target, 90)
	if math.Abs(x) > 0.1 {
		t.Errorf("expected x ~0, got %f", x)
	}
	if math.Abs(z-50) > 0.1 {
		t.Errorf("expected z ~50, got %f", z)
	}
}

func TestConvert_Deterministic(t *testing.T) {
	c := New()
	target := geomath.Destination(observer, 211, 80)

	x1, z1 := c.Convert(observer, target, 37)
	x2, z2 := c.Convert(observer, target, 37)
	if x1 != x2 || z1 != z2 {
		t.Errorf("conversion not deterministic: (%f,%f) vs (%f,%f)", x1, z1, x2, z2)
	}
}

func TestConvert_DistancePreserved(t *testing.T) {
	c := New()
	for _, bearing := range []float64{0, 45, 133, 278} {
		target := geomath.Destination(observer, bearing, 60)
		x, z := c.Convert(observer, target, 20)
		d := math.Sqrt(x*x + z*z)
		if math.Abs(d-60) > 0.1 {
			t.Errorf("bearing %f: expected offset length ~60, got %f", bearing, d)
		}
	}
}

func TestConvertCorrected_NoBaselineFallsBack(t *testing.T) {
	c := New()
	target := geomath.Destination(observer, 90, 50)

	x1, z1 := c.Convert(observer, target, 45)
	x2, z2 := c.ConvertCorrected(observer, target, 45)
	if x1 != x2 || z1 != z2 {
		t.Error("expected corrected conversion without baseline to match raw conversion")
	}
}

func TestConvertCorrected_BaselineKeepsPlacementConsistent(t *testing.T) {
	c := New()
	target := geomath.Destination(observer, 90, 50)

	// A gyro heading source with an arbitrary zero point: absolute values
	// are wrong by a constant. Capturing the baseline at session start
	// must make the first placement identical to a true-north placement.
	const gyroZeroOffset = 73.0
	c.CaptureBaseline(gyroZeroOffset)

	x, z := c.ConvertCorrected(observer, target, gyroZeroOffset)
	wantX, wantZ := New().Convert(observer, target, 0)
	if math.Abs(x-wantX) > 1e-9 || math.Abs(z-wantZ) > 1e-9 {
		t.Errorf("expected (%f,%f), got (%f,%f)", wantX, wantZ, x, z)
	}

	// And a 90 degree physical turn shows up as a 90 degree frame shift.
	x, z = c.ConvertCorrected(observer, target, gyroZeroOffset+90)
	wantX, wantZ = New().Convert(observer, target, 90)
	if math.Abs(x-wantX) > 1e-9 || math.Abs(z-wantZ) > 1e-9 {
		t.Errorf("expected (%f,%f) after turn, got (%f,%f)", wantX, wantZ, x, z)
	}
}

func TestReset_ClearsBaseline(t *testing.T) {
	c := New()
	c.CaptureBaseline(120)
	c.Reset()
	if _, ok := c.Baseline(); ok {
		t.Error("expected baseline cleared after reset")
	}
}
