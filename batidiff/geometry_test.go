package batidiff

import (
	"math"
	"testing"

	"github.com/cheekybits/is"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var testRings = map[string][]Point{
	"triangle": {
		{Lat: 48.0, Lon: 2.0},
		{Lat: 48.0001, Lon: 2.0},
		{Lat: 48.0, Lon: 2.0002},
		{Lat: 48.0, Lon: 2.0},
	},
	"clockwise": {
		{Lat: 48.0, Lon: 2.0},
		{Lat: 48.0001, Lon: 2.0},
		{Lat: 48.0001, Lon: 2.0001},
		{Lat: 48.0, Lon: 2.0001},
		{Lat: 48.0, Lon: 2.0},
	},
	"l-shape": {
		{Lat: 50.0, Lon: 4.0},
		{Lat: 50.0, Lon: 4.0003},
		{Lat: 50.0001, Lon: 4.0003},
		{Lat: 50.0001, Lon: 4.0001},
		{Lat: 50.0003, Lon: 4.0001},
		{Lat: 50.0003, Lon: 4.0},
		{Lat: 50.0, Lon: 4.0},
	},
	"open-pentagon": {
		{Lat: -33.0, Lon: 151.0},
		{Lat: -33.0, Lon: 151.0002},
		{Lat: -32.9999, Lon: 151.00025},
		{Lat: -32.99985, Lon: 151.0001},
		{Lat: -32.9999, Lon: 150.99995},
	},
}

func TestCentroidSquare(t *testing.T) {
	is := is.New(t)

	b := square("1", baseLat, baseLon, 10)
	is.False(b.Degenerate)
	is.True(near(b.Centroid.Lat, baseLat, 1e-9))
	is.True(near(b.Centroid.Lon, baseLon, 1e-9))
	is.Equal(b.Centroid.ID, "1")
	is.True(near(math.Abs(b.Area), 100, 1e-3))
	is.True(near(b.Width, 10*math.Sqrt2, 1e-6))
}

func TestCentroidInsideHull(t *testing.T) {
	is := is.New(t)

	for name, ring := range testRings {
		c, area, degenerate := CentroidAndArea(ring)
		is.False(degenerate)
		is.True(area != 0)

		q := s2.NewConvexHullQuery()
		for _, p := range ring {
			q.AddPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)))
		}
		hull := q.ConvexHull()
		if !hull.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))) {
			t.Errorf("%s: centroid %v outside of convex hull", name, c)
		}
	}
}

func TestCentroidMatchesPlanar(t *testing.T) {
	is := is.New(t)

	for name, ring := range testRings {
		c, _, _ := CentroidAndArea(ring)

		r := make(orb.Ring, 0, len(ring)+1)
		for _, p := range ring {
			r = append(r, orb.Point{p.Lon, p.Lat})
		}
		if !closed(ring) {
			r = append(r, r[0])
		}
		ref, _ := planar.CentroidArea(orb.Polygon{r})

		if !near(c.Lat, ref.Lat(), 1e-9) || !near(c.Lon, ref.Lon(), 1e-9) {
			t.Errorf("%s: got %v, expected %v", name, c, ref)
		}
	}
	is.True(len(testRings) > 0)
}

func TestOrientationIrrelevant(t *testing.T) {
	is := is.New(t)

	ring := testRings["l-shape"]
	reversed := make([]Point, len(ring))
	for i, p := range ring {
		reversed[len(ring)-1-i] = p
	}

	c1, a1, _ := CentroidAndArea(ring)
	c2, a2, _ := CentroidAndArea(reversed)
	is.True(near(a1, -a2, 1e-6))
	is.True(near(c1.Lat, c2.Lat, 1e-12))
	is.True(near(c1.Lon, c2.Lon, 1e-12))
}

func TestImplicitlyClosed(t *testing.T) {
	is := is.New(t)

	ring := squareRing("a", baseLat, baseLon, 12)
	c1, a1, _ := CentroidAndArea(ring)
	c2, a2, _ := CentroidAndArea(ring[:len(ring)-1])
	is.True(near(a1, a2, 1e-9))
	is.True(near(c1.Lat, c2.Lat, 1e-12))
	is.True(near(c1.Lon, c2.Lon, 1e-12))
}

func TestDegenerateSinglePoint(t *testing.T) {
	is := is.New(t)

	ring := []Point{
		{Lat: 45.5, Lon: 6.25},
		{Lat: 45.5, Lon: 6.25},
		{Lat: 45.5, Lon: 6.25},
		{Lat: 45.5, Lon: 6.25},
	}
	c, area, degenerate := CentroidAndArea(ring)
	is.True(degenerate)
	is.Equal(area, 0.0)
	is.Equal(c.Lat, 45.5)
	is.Equal(c.Lon, 6.25)
}

func TestDegenerateCollinear(t *testing.T) {
	is := is.New(t)

	ring := []Point{
		{Lat: 45.0, Lon: 6.0},
		{Lat: 45.0, Lon: 6.001},
		{Lat: 45.0, Lon: 6.002},
		{Lat: 45.0, Lon: 6.0},
	}
	c, area, degenerate := CentroidAndArea(ring)
	is.True(degenerate)
	is.Equal(area, 0.0)
	is.Equal(c.Lat, 45.0)
	is.True(near(c.Lon, 6.00075, 1e-12))

	b := NewBuilding("w", ring, nil)
	is.True(b.Degenerate)
	is.Equal(b.Area, 0.0)
}

func TestDistance(t *testing.T) {
	is := is.New(t)

	a := Point{Lat: baseLat, Lon: baseLon}
	b := Point{Lat: baseLat + 0.0001, Lon: baseLon - 0.0002}
	is.Equal(a.Distance(a), 0.0)
	is.Equal(b.Distance(b), 0.0)
	is.Equal(a.Distance(b), b.Distance(a))

	lat, lon := offset(baseLat, baseLon, 3, 4)
	is.True(near(a.Distance(Point{Lat: lat, Lon: lon}), 5, 1e-9))
}

func TestUnits(t *testing.T) {
	is := is.New(t)

	is.True(near(DegreesToMeters(1e-5), 1.1132, 1e-4))
	is.True(near(metersToDegrees(DegreesToMeters(0.25)), 0.25, 1e-15))
}

func TestWidth(t *testing.T) {
	is := is.New(t)

	is.Equal(Width(nil), 0.0)
	is.True(near(Width(squareRing("a", 0, 0, 20)), 20*math.Sqrt2, 1e-6))
}
