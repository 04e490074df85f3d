// Package shapefile reads cadastre building footprints from ESRI shapefiles
// and writes classified buildings back to them.
package shapefile

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/rubenv/batidiff/batidiff"
)

type reader struct {
	snap   *batidiff.Snapshot
	nextID int64
}

// id hands out negative ids, the way new objects are numbered in OSM
// editors.
func (r *reader) id() string {
	r.nextID--
	return strconv.FormatInt(r.nextID, 10)
}

func attribute(s *shp.Reader, row, field int) string {
	return strings.Trim(s.ReadAttribute(row, field), " \x00")
}

// Read loads every polygon of a shapefile as a building, X being the
// longitude and Y the latitude. Attributes become tags. The building id is
// read from idField when given, objects without one get a negative id.
//
// Outer rings run clockwise in shapefiles, holes counter-clockwise. A hole
// goes to the outer ring of the same shape that contains it.
func Read(filename, idField string) (*batidiff.Snapshot, error) {
	s, err := shp.Open(filename)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	fields := s.Fields()
	idIndex := -1
	for i, f := range fields {
		if idField != "" && strings.EqualFold(f.String(), idField) {
			idIndex = i
		}
	}
	if idField != "" && idIndex < 0 {
		return nil, fmt.Errorf("No field %s in %s", idField, filename)
	}

	r := &reader{
		snap: batidiff.NewSnapshot(filename),
	}
	for s.Next() {
		n, p := s.Shape()
		poly, ok := p.(*shp.Polygon)
		if !ok {
			return nil, fmt.Errorf("Non-polygon found: %s, %v", reflect.TypeOf(p).Elem(), p.BBox())
		}

		tags := make(batidiff.Tags, 0, len(fields))
		id := ""
		for i, f := range fields {
			v := attribute(s, n, i)
			if i == idIndex {
				id = v
				continue
			}
			if v != "" {
				tags = append(tags, batidiff.Tag{Key: f.String(), Value: v})
			}
		}
		if id != "" {
			_, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("Invalid id %q in %s: %w", id, filename, err)
			}
		}

		err := r.polygon(id, poly, tags)
		if err != nil {
			return nil, err
		}
	}
	err = s.Err()
	if err != nil {
		return nil, err
	}

	return r.snap, nil
}

func (r *reader) ring(points []shp.Point) []batidiff.Point {
	ring := make([]batidiff.Point, 0, len(points))
	for i, p := range points {
		pt := batidiff.Point{Lat: p.Y, Lon: p.X}
		if i == len(points)-1 && i > 0 && p == points[0] {
			pt.ID = ring[0].ID
		} else {
			pt.ID = r.id()
		}
		ring = append(ring, pt)
	}
	return ring
}

func (r *reader) polygon(id string, poly *shp.Polygon, tags batidiff.Tags) error {
	outers := make([][]batidiff.Point, 0, 1)
	inners := make([][]batidiff.Point, 0)
	for i, first := range poly.Parts {
		last := len(poly.Points)
		if i < len(poly.Parts)-1 {
			last = int(poly.Parts[i+1])
		}

		points := poly.Points[first:last]
		if len(points) < 3 {
			continue
		}

		// Clockwise in (X, Y) is a positive area in (lat, lon).
		ring := r.ring(points)
		_, area, _ := batidiff.CentroidAndArea(ring)
		if area >= 0 {
			outers = append(outers, ring)
		} else {
			inners = append(inners, ring)
		}
	}
	if len(outers) == 0 {
		slog.Warn("Shape without outer ring", "id", id, "file", r.snap.Name)
		return nil
	}

	holes := make([][]string, len(outers))
	for _, ring := range inners {
		inner := batidiff.NewBuilding(r.id(), ring, nil)
		err := r.snap.Add(inner)
		if err != nil {
			return err
		}

		owner := 0
		for i, outer := range outers {
			if batidiff.Contains(outer, ring) {
				owner = i
				break
			}
		}
		holes[owner] = append(holes[owner], inner.ID)
	}

	for i, ring := range outers {
		bid := id
		if bid == "" || i > 0 {
			bid = r.id()
		}
		err := r.snap.Add(batidiff.NewBuilding(bid, ring, tags.Clone()))
		if err != nil {
			return err
		}

		if len(holes[i]) > 0 {
			_, err := r.snap.AddGroup(r.id(), bid, holes[i])
			if err != nil {
				return err
			}
		}
	}
	return nil
}
