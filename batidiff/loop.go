package batidiff

import (
	"errors"
	"fmt"

	"github.com/golang/geo/s2"
)

var ErrInvalidRing = errors.New("Invalid ring")

// ringArea is the signed area of the ring in degrees, positive when the ring
// runs counter-clockwise in (lon, lat).
func ringArea(ring []Point) float64 {
	sum := 0.0
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		sum += a.Lon*b.Lat - b.Lon*a.Lat
	}
	return sum / 2
}

// MakeLoop turns a ring into an s2 loop. Orientation is normalized since
// s2.Loop is always CCW, the closing vertex and repeated vertices are
// skipped. Returns nil when fewer than 3 vertices remain.
func MakeLoop(ring []Point) *s2.Loop {
	if len(ring) > 1 && closed(ring) {
		ring = ring[:len(ring)-1]
	}

	points := make([]s2.Point, 0, len(ring))
	for i, p := range ring {
		if i > 0 && p.Lat == ring[i-1].Lat && p.Lon == ring[i-1].Lon {
			continue
		}
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)))
	}
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	if len(points) < 3 {
		return nil
	}

	if ringArea(ring) < 0 {
		for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
			points[i], points[j] = points[j], points[i]
		}
	}
	return s2.LoopFromPoints(points)
}

// ValidateRing rejects rings that can't describe a footprint: too few
// distinct vertices or self-intersecting edges. Zero-area rings are left to
// the degenerate centroid fallback.
func ValidateRing(ring []Point) error {
	if len(ring) == 0 {
		return fmt.Errorf("%w: no vertices", ErrInvalidRing)
	}

	distinct := make(map[[2]float64]bool)
	for _, p := range ring {
		distinct[[2]float64{p.Lat, p.Lon}] = true
	}
	if len(distinct) == 1 || ringArea(ring) == 0 {
		return nil
	}
	if len(distinct) < 3 {
		return fmt.Errorf("%w: %d distinct vertices", ErrInvalidRing, len(distinct))
	}

	loop := MakeLoop(ring)
	if loop == nil {
		return fmt.Errorf("%w: not enough vertices", ErrInvalidRing)
	}
	err := loop.Validate()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRing, err)
	}
	return crossingEdges(loop.Vertices())
}

// crossingEdges checks every pair of non-adjacent edges for a proper
// crossing. Touching vertices are allowed.
func crossingEdges(v []s2.Point) error {
	n := len(v)
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}
			if s2.CrossingSign(v[i], v[(i+1)%n], v[j], v[(j+1)%n]) == s2.Cross {
				return fmt.Errorf("%w: edges %d and %d cross", ErrInvalidRing, i, j)
			}
		}
	}
	return nil
}

// CentroidInside reports whether the centroid of a building lies within its
// outer ring. Concave footprints may have their centroid outside.
func CentroidInside(b *Building) bool {
	loop := MakeLoop(b.Nodes)
	if loop == nil {
		return true
	}
	return loop.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(b.Centroid.Lat, b.Centroid.Lon)))
}

// Contains reports whether ring a contains every vertex of ring b.
func Contains(a, b []Point) bool {
	loop := MakeLoop(a)
	if loop == nil {
		return false
	}
	for _, p := range b {
		if !loop.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))) {
			return false
		}
	}
	return true
}
