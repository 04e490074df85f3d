package batidiff

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	baseLat = 48.8566
	baseLon = 2.3522
)

// offset moves a point by the given amount of meters.
func offset(lat, lon, north, east float64) (float64, float64) {
	return lat + metersToDegrees(north), lon + metersToDegrees(east)
}

// squareRing is a closed square of the given side, in meters, centered on
// (lat, lon).
func squareRing(id string, lat, lon, side float64) []Point {
	h := metersToDegrees(side) / 2
	return []Point{
		{ID: id + "-1", Lat: lat - h, Lon: lon - h},
		{ID: id + "-2", Lat: lat - h, Lon: lon + h},
		{ID: id + "-3", Lat: lat + h, Lon: lon + h},
		{ID: id + "-4", Lat: lat + h, Lon: lon - h},
		{ID: id + "-1", Lat: lat - h, Lon: lon - h},
	}
}

func square(id string, lat, lon, side float64) *Building {
	return NewBuilding(id, squareRing(id, lat, lon, side), Tags{{Key: "building", Value: "yes"}})
}

// scatter places n squares randomly within an area of size x size meters.
func scatter(r *rand.Rand, prefix string, n int, size float64) []*Building {
	result := make([]*Building, 0, n)
	for i := 0; i < n; i++ {
		lat, lon := offset(baseLat, baseLon, r.Float64()*size, r.Float64()*size)
		side := 5 + r.Float64()*15
		result = append(result, square(fmt.Sprintf("%s%d", prefix, i), lat, lon, side))
	}
	return result
}

func snapshotOf(name string, buildings ...*Building) *Snapshot {
	s := NewSnapshot(name)
	for _, b := range buildings {
		err := s.Add(b)
		if err != nil {
			panic(err)
		}
	}
	return s
}

func near(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
