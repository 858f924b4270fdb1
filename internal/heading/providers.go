// internal/heading/providers.go
package heading

import (
	"math"

	"github.com/geohunt/arcoin/pkg/core"
)

// CompassProvider reads the magnetic/true compass. This is the only
// provider aligned to true north.
type CompassProvider struct{}

func (CompassProvider) Method() core.HeadingMethod { return core.HeadingCompass }

func (CompassProvider) Confidence() float64 { return 0.9 }

func (CompassProvider) Read(s core.SensorSnapshot) (float64, bool) {
	if !s.CompassEnabled || degenerate(s.CompassDegrees) {
		return 0, false
	}
	return s.CompassDegrees, true
}

// AccelTiltProvider derives a coarse angle from the raw accelerometer. It
// still responds to physical rotation but is not aligned to north; it only
// keeps the coin placement self-consistent while better sensors are out.
type AccelTiltProvider struct{}

func (AccelTiltProvider) Method() core.HeadingMethod { return core.HeadingAccelerometer }

func (AccelTiltProvider) Confidence() float64 { return 0.4 }

func (AccelTiltProvider) Read(s core.SensorSnapshot) (float64, bool) {
	a := s.Acceleration
	if a.Length() == 0 || math.IsNaN(a.X) || math.IsNaN(a.Y) || math.IsNaN(a.Z) {
		return 0, false
	}
	// Tilt estimate, same form the IMU fusion literature uses:
	// angle = atan2(x, sqrt(y^2 + z^2)).
	deg := math.Atan2(a.X, math.Sqrt(a.Y*a.Y+a.Z*a.Z)) * 180 / math.Pi
	if degenerate(deg) {
		return 0, false
	}
	return deg, true
}

// sensorFrameCorrection rotates the gyroscope attitude from the device
// sensor frame into the render frame: the attitude sensor reports with the
// screen axis as forward, the renderer wants the camera axis.
var sensorFrameCorrection = quatFromAxisAngle(core.Vec3{X: 1}, 90)

// GyroProvider converts the gyroscope attitude quaternion into a
// forward-vector yaw.
type GyroProvider struct{}

func (GyroProvider) Method() core.HeadingMethod { return core.HeadingGyroscope }

func (GyroProvider) Confidence() float64 { return 0.7 }

func (GyroProvider) Read(s core.SensorSnapshot) (float64, bool) {
	if !s.GyroAvailable || s.GyroAttitude.IsZero() {
		return 0, false
	}
	q := quatMul(sensorFrameCorrection, s.GyroAttitude)
	fwd := quatRotate(q, core.Vec3{Z: 1})
	// A forward vector pointing straight up or down carries no yaw.
	if math.Abs(fwd.X) < 1e-9 && math.Abs(fwd.Z) < 1e-9 {
		return 0, false
	}
	deg := math.Atan2(fwd.X, fwd.Z) * 180 / math.Pi
	if math.IsNaN(deg) {
		return 0, false
	}
	return deg, true
}

// CameraYawProvider is the last resort: whatever yaw the rendered camera
// last had. Only useful when no physical sensor works at all.
type CameraYawProvider struct{}

func (CameraYawProvider) Method() core.HeadingMethod { return core.HeadingCameraYaw }

func (CameraYawProvider) Confidence() float64 { return 0.2 }

func (CameraYawProvider) Read(s core.SensorSnapshot) (float64, bool) {
	if math.IsNaN(s.CameraYawDegrees) {
		return 0, false
	}
	return s.CameraYawDegrees, true
}

// quatFromAxisAngle builds a unit quaternion rotating angleDegrees about
// the given axis (assumed unit length).
func quatFromAxisAngle(axis core.Vec3, angleDegrees float64) core.Quaternion {
	half := angleDegrees * math.Pi / 360
	s := math.Sin(half)
	return core.Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(half),
	}
}

// quatMul returns the Hamilton product a*b.
func quatMul(a, b core.Quaternion) core.Quaternion {
	return core.Quaternion{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// quatRotate rotates vector v by quaternion q (q v q*).
func quatRotate(q core.Quaternion, v core.Vec3) core.Vec3 {
	p := core.Quaternion{X: v.X, Y: v.Y, Z: v.Z}
	conj := core.Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
	r := quatMul(quatMul(q, p), conj)
	return core.Vec3{X: r.X, Y: r.Y, Z: r.Z}
}
