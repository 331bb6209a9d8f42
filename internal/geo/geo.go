// Package geo converts the API's plain lat/lng pairs into GeoJSON for map
// clients and validates coordinate ranges on the way in.
package geo

import (
	"errors"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"fleet_tracker/internal/models"
)

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// ValidPoint checks the WGS84 coordinate ranges.
func ValidPoint(p models.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// PointGeoJSON renders a single point as a GeoJSON string.
func PointGeoJSON(p models.GeoPoint) (string, error) {
	if !ValidPoint(p) {
		return "", ErrInvalidCoordinates
	}
	g := geom.NewPointFlat(geom.XY, []float64{p.Lng, p.Lat}).SetSRID(4326)
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PathGeoJSON renders an ordered sequence of points as a GeoJSON LineString,
// preserving the order given. Used for a trip's stop sequence.
func PathGeoJSON(points []models.GeoPoint) (string, error) {
	if len(points) < 2 {
		return "", errors.New("a path needs at least 2 points")
	}
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		if !ValidPoint(p) {
			return "", ErrInvalidCoordinates
		}
		flat = append(flat, p.Lng, p.Lat)
	}
	ls := geom.NewLineStringFlat(geom.XY, flat).SetSRID(4326)
	b, err := gjson.Marshal(ls)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
