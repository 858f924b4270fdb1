// internal/geomath/mercator.go
package geomath

import (
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/geohunt/arcoin/pkg/core"
)

// GEOMETRY STORAGE
// Track points are stored as EPSG:3857 so the SQLite backend, which has no
// spatial awareness, can round-trip them as plain XY during migrations.
// Geometry columns hold WKB.

// Point3857 converts a GPS coordinate (EPSG:4326) into a web-mercator
// geometry point suitable for WKB storage. A coordinate that projects
// to NaN or infinity stores as the empty point rather than failing the
// row write.
func Point3857(coord core.GeoCoordinate) geom.Point {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ := f(coord.Longitude, coord.Latitude, 0)
	p, _ := geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: x, Y: y},
	}, geom.OmitInvalid)
	return p
}

// Coordinate4326 converts a web-mercator geometry point back into a GPS
// coordinate. Zero-value points map to the zero coordinate.
func Coordinate4326(p geom.Point) core.GeoCoordinate {
	coord, ok := p.Coordinates()
	if !ok {
		return core.GeoCoordinate{}
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(3857, 4326)
	lon, lat, _ := f(coord.XY.X, coord.XY.Y, 0)
	return core.GeoCoordinate{Latitude: lat, Longitude: lon}
}

// Track3857 converts a recorded observer track into a web-mercator
// line string for export. Returns an empty LineString when fewer than two
// points were recorded, or when every recorded point projects to the
// same spot (a stationary observer has no line to draw).
func Track3857(points []core.TrackPoint) geom.LineString {
	if len(points) < 2 {
		return geom.LineString{}
	}
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		x, y, _ := f(p.Coordinate.Longitude, p.Coordinate.Latitude, 0)
		flat = append(flat, x, y)
	}
	ls, _ := geom.NewLineString(geom.NewSequence(flat, geom.DimXY), geom.OmitInvalid)
	return ls
}
