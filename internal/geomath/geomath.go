// Package geomath provides the pure great-circle math the engine uses to
// turn GPS coordinates into distances, bearings and local offsets.
//
// All functions are deterministic and stateless. NaN inputs propagate NaN;
// coordinate validation is the ingestion layer's job, not ours.
package geomath

import (
	"math"

	"github.com/geohunt/arcoin/pkg/core"
)

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula.
const EarthRadiusMeters = 6371000.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceMeters returns the great-circle distance between two coordinates
// using the Haversine formula.
func DistanceMeters(from, to core.GeoCoordinate) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLat := toRadians(to.Latitude - from.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BearingDegrees returns the initial bearing from one coordinate to
// another, clockwise from true north, in [0,360).
func BearingDegrees(from, to core.GeoCoordinate) float64 {
	lat1 := toRadians(from.Latitude)
	lat2 := toRadians(to.Latitude)
	dLon := toRadians(to.Longitude - from.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return Normalize360(toDegrees(math.Atan2(y, x)))
}

// NormalizeSigned folds an angle into (-180,180].
func NormalizeSigned(degrees float64) float64 {
	d := math.Mod(degrees, 360)
	if d > 180 {
		d -= 360
	} else if d <= -180 {
		d += 360
	}
	return d
}

// Normalize360 folds an angle into [0,360).
func Normalize360(degrees float64) float64 {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Destination returns the coordinate reached by travelling the given
// distance along the given initial bearing. Used by the simulator to walk
// an observer towards a coin.
func Destination(from core.GeoCoordinate, bearingDegrees, distanceMeters float64) core.GeoCoordinate {
	lat1 := toRadians(from.Latitude)
	lon1 := toRadians(from.Longitude)
	brng := toRadians(bearingDegrees)
	d := distanceMeters / EarthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)
	return core.GeoCoordinate{
		Latitude:  toDegrees(lat2),
		Longitude: toDegrees(lon2),
	}
}
