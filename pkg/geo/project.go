package geo

import "github.com/golang/geo/s2"

// ClosestPointOnPolyline projects loc onto the polyline and returns the
// closest point, the st_closestpoint equivalent used by the permits
// query. Projection is done on the sphere with s2.
func ClosestPointOnPolyline(loc Location, line []Location) Location {
	if len(line) == 0 {
		return loc
	}
	if len(line) == 1 {
		return line[0]
	}

	target := s2.PointFromLatLng(s2.LatLngFromDegrees(loc.Lat, loc.Lon))
	best := line[0]
	bestDist := HaversineDistance(loc, line[0])

	prev := s2.PointFromLatLng(s2.LatLngFromDegrees(line[0].Lat, line[0].Lon))
	for _, l := range line[1:] {
		cur := s2.PointFromLatLng(s2.LatLngFromDegrees(l.Lat, l.Lon))
		projection := s2.Project(target, prev, cur)
		ll := s2.LatLngFromPoint(projection)
		candidate := Location{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
		if d := HaversineDistance(loc, candidate); d < bestDist {
			bestDist = d
			best = candidate
		}
		prev = cur
	}
	return best
}
