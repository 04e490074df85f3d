package osmfile

import (
	"io"
	"strconv"

	"github.com/rubenv/batidiff/batidiff"
)

// WriteDebug draws the grid of a result and the centroid of every outer
// building as OSM data, for inspection in an editor. Every object gets a
// negative id so it can never be uploaded by mistake.
func WriteDebug(out io.Writer, r *batidiff.Result) error {
	doc := xmlOSM{
		Version:   "0.6",
		Generator: Generator,
	}

	id := int64(0)
	next := func() int64 {
		id--
		return id
	}
	node := func(lat, lon float64, tags []xmlTag) int64 {
		n := xmlNode{
			ID:      next(),
			xmlMeta: xmlMeta{Visible: "true"},
			Lat:     formatCoord(lat),
			Lon:     formatCoord(lon),
			Tags:    tags,
		}
		doc.Nodes = append(doc.Nodes, n)
		return n.ID
	}
	line := func(lat1, lon1, lat2, lon2 float64, name string) {
		a := node(lat1, lon1, nil)
		b := node(lat2, lon2, nil)
		doc.Ways = append(doc.Ways, xmlWay{
			ID:      next(),
			xmlMeta: xmlMeta{Visible: "true"},
			Nodes:   []xmlNd{{Ref: a}, {Ref: b}},
			Tags:    []xmlTag{{Key: "name", Value: name}},
		})
	}

	bound := r.Bound
	zones := r.Zones
	dLat := (bound.Top() - bound.Bottom()) / float64(zones)
	dLon := (bound.Right() - bound.Left()) / float64(zones)
	for i := 0; i <= zones; i++ {
		lat := bound.Bottom() + dLat*float64(i)
		lon := bound.Left() + dLon*float64(i)
		line(lat, bound.Left(), lat, bound.Right(), "row "+strconv.Itoa(i))
		line(bound.Bottom(), lon, bound.Top(), lon, "col "+strconv.Itoa(i))
	}

	for _, s := range []*batidiff.Snapshot{r.Old, r.New} {
		for _, b := range s.Outer() {
			node(b.Centroid.Lat, b.Centroid.Lon, []xmlTag{
				{Key: "name", Value: b.ID},
				{Key: "snapshot", Value: s.Name},
				{Key: "status", Value: b.Status.String()},
				{Key: "distance", Value: strconv.FormatFloat(b.MinDistance, 'f', 2, 64)},
			})
		}
	}

	return encode(out, doc)
}
