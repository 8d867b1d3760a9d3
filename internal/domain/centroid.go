package domain

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// SphericalCentroid returns the area-weighted centroid of the geometry on the
// unit sphere. Holes are subtracted from their polygon. The second return value
// is false when every ring is degenerate (fewer than three distinct vertices) or
// the weighted sum cancels out.
func SphericalCentroid(g Geometry) (Coord, bool) {
	var sum r3.Vector
	for _, poly := range g.Polygons {
		for i, ring := range poly {
			loop := ringLoop(ring)
			if loop == nil {
				continue
			}
			c := loop.Centroid().Vector
			if i == 0 {
				sum = sum.Add(c)
			} else {
				sum = sum.Sub(c)
			}
		}
	}

	if sum.Norm() < 1e-15 {
		return Coord{}, false
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	c := Coord{Lon: ll.Lng.Degrees(), Lat: ll.Lat.Degrees()}
	if math.IsNaN(c.Lon) || math.IsNaN(c.Lat) {
		return Coord{}, false
	}
	return c, true
}

// ringLoop converts a ring to an s2 loop covering the smaller of the two areas
// the ring separates, so that winding order does not matter.
func ringLoop(ring Ring) *s2.Loop {
	pts := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
		if n := len(pts); n > 0 && pts[n-1].ApproxEqual(p) {
			continue
		}
		pts = append(pts, p)
	}
	// Drop the closing vertex; s2 loops are implicitly closed.
	if n := len(pts); n > 1 && pts[0].ApproxEqual(pts[n-1]) {
		pts = pts[:n-1]
	}
	if len(pts) < 3 {
		return nil
	}

	loop := s2.LoopFromPoints(pts)
	if loop.Area() > 2*math.Pi {
		loop.Invert()
	}
	return loop
}
