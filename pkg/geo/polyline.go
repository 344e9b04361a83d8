package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// DecodePolyline decodes a Google encoded polyline (the wire format the
// store uses for edge geometries) into locations.
func DecodePolyline(encoded string) ([]Location, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	locs := make([]Location, len(coords))
	for i, c := range coords {
		locs[i] = Location{Lat: c[0], Lon: c[1]}
	}
	return locs, nil
}

// EncodePolyline is the inverse of DecodePolyline.
func EncodePolyline(line []Location) string {
	coords := make([][]float64, len(line))
	for i, l := range line {
		coords[i] = []float64{l.Lat, l.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
