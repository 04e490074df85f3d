package batidiff

import (
	"math"
)

// WGS-84 equatorial radius, in meters.
const EarthRadius = 6378137.0

type Point struct {
	ID  string
	Lat float64
	Lon float64
}

// DegreesToMeters converts an angular offset into meters along a great
// circle, which is close enough for the few tens of meters we care about.
func DegreesToMeters(d float64) float64 {
	return d * math.Pi / 180 * EarthRadius
}

func metersToDegrees(m float64) float64 {
	return m * 180 / (math.Pi * EarthRadius)
}

// Distance is the planar distance between two points, in meters. Not
// geodesic.
func (p Point) Distance(o Point) float64 {
	lat := p.Lat - o.Lat
	lon := p.Lon - o.Lon
	return DegreesToMeters(math.Sqrt(lat*lat + lon*lon))
}

func closed(ring []Point) bool {
	if len(ring) < 2 {
		return true
	}
	first, last := ring[0], ring[len(ring)-1]
	return first.Lat == last.Lat && first.Lon == last.Lon
}

// CentroidAndArea computes the area-weighted centroid and the signed area
// of a ring. Coordinates are first expressed in meters relative to the
// first vertex, which keeps the cross products away from cancellation.
//
// A ring with a zero area is degenerate: its centroid is the mean of all
// vertices and the reported area is 0.
func CentroidAndArea(ring []Point) (Point, float64, bool) {
	if len(ring) == 0 {
		return Point{}, 0, true
	}

	origin := ring[0]
	xs := make([]float64, len(ring), len(ring)+1)
	ys := make([]float64, len(ring), len(ring)+1)
	for i, p := range ring {
		xs[i] = DegreesToMeters(p.Lat - origin.Lat)
		ys[i] = DegreesToMeters(p.Lon - origin.Lon)
	}
	if !closed(ring) {
		xs = append(xs, 0)
		ys = append(ys, 0)
	}

	area := 0.0
	cx := 0.0
	cy := 0.0
	for i := 0; i < len(xs)-1; i++ {
		cross := xs[i]*ys[i+1] - xs[i+1]*ys[i]
		area += cross
		cx += (xs[i] + xs[i+1]) * cross
		cy += (ys[i] + ys[i+1]) * cross
	}
	area /= 2

	if area == 0 {
		sumLat := 0.0
		sumLon := 0.0
		for _, p := range ring {
			sumLat += p.Lat
			sumLon += p.Lon
		}
		n := float64(len(ring))
		return Point{Lat: sumLat / n, Lon: sumLon / n}, 0, true
	}

	centroid := Point{
		Lat: origin.Lat + metersToDegrees(cx/(6*area)),
		Lon: origin.Lon + metersToDegrees(cy/(6*area)),
	}
	return centroid, area, false
}

// Width is the diagonal of the ring's bounding box, in meters.
func Width(ring []Point) float64 {
	if len(ring) == 0 {
		return 0
	}

	minLat, maxLat := ring[0].Lat, ring[0].Lat
	minLon, maxLon := ring[0].Lon, ring[0].Lon
	for _, p := range ring[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	return Point{Lat: minLat, Lon: minLon}.Distance(Point{Lat: maxLat, Lon: maxLon})
}
