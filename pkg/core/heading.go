// pkg/core/heading.go
package core

// HeadingMethod identifies which sensor produced a heading estimate.
type HeadingMethod int

const (
	HeadingNone HeadingMethod = iota
	HeadingCompass
	HeadingAccelerometer
	HeadingGyroscope
	HeadingCameraYaw
)

func (m HeadingMethod) String() string {
	switch m {
	case HeadingCompass:
		return "compass"
	case HeadingAccelerometer:
		return "accelerometer"
	case HeadingGyroscope:
		return "gyroscope"
	case HeadingCameraYaw:
		return "camera_yaw"
	default:
		return "none"
	}
}

// Heading is a device heading estimate tagged with its source.
type Heading struct {
	Degrees    float64 // clockwise from north, [0,360)
	Method     HeadingMethod
	Confidence float64 // 0..1, fixed per method
}

// SensorSnapshot is the raw sensor state the host resolves once per tick.
// Unavailable sensors report their zero values; the heading chain treats
// zero and NaN readings as degenerate and falls through.
type SensorSnapshot struct {
	CompassEnabled bool
	CompassDegrees float64

	Acceleration Vec3

	GyroAvailable bool
	GyroAttitude  Quaternion

	CameraYawDegrees float64
}
