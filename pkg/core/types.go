// pkg/core/types.go
package core

import "math"

// GeoCoordinate is an absolute GPS position in decimal degrees.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// Vec3 is a position or direction in render space, meters.
// X is east/right, Y is up, Z is forward/north-relative.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Add returns the component-wise sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns the component-wise difference of two vectors.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns the vector multiplied by a scalar.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Lerp linearly interpolates between v and o by t in [0,1].
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// Quaternion is a rotation in the device sensor frame.
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// IsZero reports whether the quaternion is the degenerate all-zero value
// that unavailable attitude sensors report.
func (q Quaternion) IsZero() bool {
	return q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0
}

// YawDegrees projects the quaternion's forward vector onto the ground
// plane and returns its heading, clockwise from forward. A zero
// quaternion or a forward vector pointing straight up or down carries
// no yaw and returns 0.
func (q Quaternion) YawDegrees() float64 {
	if q.IsZero() {
		return 0
	}
	// Forward vector (0,0,1) rotated by q, X and Z components only.
	fx := 2 * (q.X*q.Z + q.W*q.Y)
	fz := 1 - 2*(q.X*q.X+q.Y*q.Y)
	if math.Abs(fx) < 1e-9 && math.Abs(fz) < 1e-9 {
		return 0
	}
	return math.Atan2(fx, fz) * 180 / math.Pi
}

// Pose is a viewpoint position and orientation in render space.
type Pose struct {
	Position   Vec3
	YawDegrees float64 // rotation about the vertical axis, clockwise from forward
}

// Forward returns the horizontal unit vector the pose is facing.
func (p Pose) Forward() Vec3 {
	rad := p.YawDegrees * math.Pi / 180
	return Vec3{X: math.Sin(rad), Z: math.Cos(rad)}
}

// RenderTransform is the derived placement applied to the on-screen coin
// each tick. It is computed, never persisted.
type RenderTransform struct {
	Position   Vec3
	YawDegrees float64
	Scale      float64
}

// TrackingState is the spatial-tracking subsystem's reported quality.
type TrackingState int

const (
	TrackingNone TrackingState = iota
	TrackingLimited
	TrackingNormal
	TrackingExcellent
)

func (s TrackingState) String() string {
	switch s {
	case TrackingNone:
		return "none"
	case TrackingLimited:
		return "limited"
	case TrackingNormal:
		return "normal"
	case TrackingExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// PlacementMode selects how the coin offset is computed each tick.
type PlacementMode int

const (
	// PlacementFull trusts the 6-DOF viewpoint for coin placement.
	PlacementFull PlacementMode = iota
	// PlacementHeadingOnly places the coin from GPS distance and
	// compass/gyro heading alone.
	PlacementHeadingOnly
)

func (m PlacementMode) String() string {
	switch m {
	case PlacementFull:
		return "full"
	case PlacementHeadingOnly:
		return "heading_only"
	default:
		return "unknown"
	}
}
