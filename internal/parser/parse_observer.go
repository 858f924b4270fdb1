package parser

import (
	"fmt"
	"strconv"
	"time"

	"github.com/geohunt/arcoin/internal/util"
	"github.com/geohunt/arcoin/pkg/core"
)

// ParseGPSFix parses an observerUpdate command.
// Expected args: [lat, lon, accuracyMeters, fixUnixMillis]. A zero or
// missing timestamp means the fix is fresh and stamped with the current time.
func (p *Parser) ParseGPSFix(data []string) (core.GeoCoordinate, time.Time, float64, error) {
	var coord core.GeoCoordinate

	if len(data) < 3 {
		return coord, time.Time{}, 0, fmt.Errorf("observerUpdate requires at least 3 arguments, got %d", len(data))
	}

	lat, err := parseFloat(data[0])
	if err != nil {
		return coord, time.Time{}, 0, fmt.Errorf("invalid latitude %q: %w", data[0], err)
	}
	lon, err := parseFloat(data[1])
	if err != nil {
		return coord, time.Time{}, 0, fmt.Errorf("invalid longitude %q: %w", data[1], err)
	}
	accuracy, err := parseFloat(data[2])
	if err != nil {
		return coord, time.Time{}, 0, fmt.Errorf("invalid accuracy %q: %w", data[2], err)
	}

	fixTime := time.Now()
	if len(data) >= 4 {
		millis, err := strconv.ParseInt(util.TrimQuotes(data[3]), 10, 64)
		if err != nil {
			return coord, time.Time{}, 0, fmt.Errorf("invalid fix timestamp %q: %w", data[3], err)
		}
		if millis > 0 {
			fixTime = time.UnixMilli(millis)
		}
	}

	coord = core.GeoCoordinate{Latitude: lat, Longitude: lon}
	return coord, fixTime, accuracy, nil
}

// ParsePose parses a poseUpdate command.
// Expected args: [px, py, pz, qx, qy, qz, qw].
func (p *Parser) ParsePose(data []string) (core.Pose, error) {
	var pose core.Pose

	if len(data) < 7 {
		return pose, fmt.Errorf("poseUpdate requires 7 arguments, got %d", len(data))
	}

	vals := make([]float64, 7)
	for i := 0; i < 7; i++ {
		v, err := parseFloat(data[i])
		if err != nil {
			return pose, fmt.Errorf("invalid pose component %d %q: %w", i, data[i], err)
		}
		vals[i] = v
	}

	pose.Position = core.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
	// The viewpoint pose only needs the heading component; the full
	// attitude stays with the sensor snapshot.
	q := core.Quaternion{X: vals[3], Y: vals[4], Z: vals[5], W: vals[6]}
	pose.YawDegrees = q.YawDegrees()
	return pose, nil
}

// ParseTrackingState parses a trackingUpdate command.
// Expected args: [stateName, positionalDeviceActive]. The state is one of
// the TrackingState labels; unknown labels are an error so a host typo does
// not silently degrade placement.
func (p *Parser) ParseTrackingState(data []string) (core.TrackingState, bool, error) {
	if len(data) < 2 {
		return core.TrackingNone, false, fmt.Errorf("trackingUpdate requires 2 arguments, got %d", len(data))
	}

	label := util.TrimQuotes(data[0])
	var state core.TrackingState
	switch label {
	case "none":
		state = core.TrackingNone
	case "limited":
		state = core.TrackingLimited
	case "normal":
		state = core.TrackingNormal
	case "excellent":
		state = core.TrackingExcellent
	default:
		return core.TrackingNone, false, fmt.Errorf("unknown tracking state %q", label)
	}

	active, err := util.ParseFlag(data[1])
	if err != nil {
		return core.TrackingNone, false, fmt.Errorf("invalid positional device flag: %w", err)
	}

	return state, active, nil
}
