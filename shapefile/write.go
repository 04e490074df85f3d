package shapefile

import (
	"fmt"

	shp "github.com/jonas-p/go-shp"
	"github.com/rubenv/batidiff/batidiff"
)

var resultFields = []shp.Field{
	shp.StringField("id", 20),
	shp.StringField("status", 10),
	shp.FloatField("distance", 12, 2),
	shp.StringField("match", 20),
	shp.StringField("building", 40),
}

// orient returns a closed copy of the ring, clockwise for outer rings and
// counter-clockwise for holes.
func orient(ring []batidiff.Point, outer bool) []shp.Point {
	_, area, _ := batidiff.CentroidAndArea(ring)
	reverse := (area >= 0) != outer

	points := make([]shp.Point, 0, len(ring)+1)
	for i := range ring {
		p := ring[i]
		if reverse {
			p = ring[len(ring)-1-i]
		}
		points = append(points, shp.Point{X: p.Lon, Y: p.Lat})
	}
	if len(points) > 0 && points[0] != points[len(points)-1] {
		points = append(points, points[0])
	}
	return points
}

// Write stores outer buildings, holes included, along with their
// classification.
func Write(filename string, buildings []*batidiff.Building) error {
	w, err := shp.Create(filename, shp.POLYGON)
	if err != nil {
		return err
	}
	defer w.Close()

	err = w.SetFields(resultFields)
	if err != nil {
		return err
	}

	for _, b := range buildings {
		if !b.IsOuter() || len(b.Nodes) == 0 {
			continue
		}

		parts := [][]shp.Point{orient(b.Nodes, true)}
		for _, inner := range b.Inner {
			parts = append(parts, orient(inner.Nodes, false))
		}
		poly := shp.Polygon(*shp.NewPolyLine(parts))
		row := int(w.Write(&poly))

		// The last field is padded so the final record spans its full width.
		building, _ := b.Tags.Get("building")
		if len(building) > 40 {
			building = building[:40]
		}
		building = fmt.Sprintf("%-40s", building)
		values := []interface{}{b.ID, b.Status.String(), b.MinDistance, b.MatchID, building}
		for i, v := range values {
			err := w.WriteAttribute(row, i, v)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
