package parser

import (
	"fmt"

	"github.com/geohunt/arcoin/internal/util"
	"github.com/geohunt/arcoin/pkg/core"
)

// ParseSensors parses a sensorUpdate command into a SensorSnapshot.
// Expected args:
//
//	[compassEnabled, compassDegrees,
//	 ax, ay, az,
//	 gyroAvailable, qx, qy, qz, qw,
//	 cameraYawDegrees]
//
// Sensors the device lacks arrive with their flag unset and zero values;
// the heading chain treats those as degenerate and falls through.
func (p *Parser) ParseSensors(data []string) (core.SensorSnapshot, error) {
	var snap core.SensorSnapshot

	if len(data) < 11 {
		return snap, fmt.Errorf("sensorUpdate requires 11 arguments, got %d", len(data))
	}

	compassEnabled, err := util.ParseFlag(data[0])
	if err != nil {
		return snap, fmt.Errorf("invalid compass flag: %w", err)
	}
	gyroAvailable, err := util.ParseFlag(data[5])
	if err != nil {
		return snap, fmt.Errorf("invalid gyro flag: %w", err)
	}

	floats := make([]float64, len(data))
	for _, i := range []int{1, 2, 3, 4, 6, 7, 8, 9, 10} {
		v, err := parseFloat(data[i])
		if err != nil {
			return snap, fmt.Errorf("invalid sensor value at %d %q: %w", i, data[i], err)
		}
		floats[i] = v
	}

	snap.CompassEnabled = compassEnabled
	snap.CompassDegrees = floats[1]
	snap.Acceleration = core.Vec3{X: floats[2], Y: floats[3], Z: floats[4]}
	snap.GyroAvailable = gyroAvailable
	snap.GyroAttitude = core.Quaternion{X: floats[6], Y: floats[7], Z: floats[8], W: floats[9]}
	snap.CameraYawDegrees = floats[10]

	return snap, nil
}
