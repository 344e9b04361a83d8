package geo

import "math"

const earthRadiusKm = 6371.0

type Location struct {
	Lat float64
	Lon float64
}

func NewLocation(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

func degToRad(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistance returns the great-circle distance between two
// locations in kilometers.
// https://www.movable-type.co.uk/scripts/latlong.html
func HaversineDistance(a, b Location) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	diffLat := degToRad(b.Lat - a.Lat)
	diffLon := degToRad(b.Lon - a.Lon)

	h := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(diffLon/2)*math.Sin(diffLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
