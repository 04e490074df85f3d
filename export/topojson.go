package export

import (
	"encoding/json"
	"math"

	"github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/rubenv/batidiff/batidiff"
)

type Topology struct {
	Type      string     `json:"type"`
	Transform *Transform `json:"transform,omitempty"`

	BoundingBox []float64            `json:"bbox,omitempty"`
	Objects     map[string]*Geometry `json:"objects"`
	Arcs        [][][]float64        `json:"arcs"`
}

type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type Geometry struct {
	ID         string                 `json:"id,omitempty"`
	Type       geojson.GeometryType   `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`

	Polygon    [][]int
	Geometries []*Geometry
}

// MarshalJSON orders the members and names polygon arcs as TopoJSON
// expects.
func (g *Geometry) MarshalJSON() ([]byte, error) {
	type geometry struct {
		ID         string                 `json:"id,omitempty"`
		Type       geojson.GeometryType   `json:"type"`
		Properties map[string]interface{} `json:"properties,omitempty"`
		Arcs       interface{}            `json:"arcs,omitempty"`
		Geometries interface{}            `json:"geometries,omitempty"`
	}

	geo := &geometry{
		ID:         g.ID,
		Type:       g.Type,
		Properties: g.Properties,
	}
	switch g.Type {
	case geojson.GeometryPolygon:
		geo.Arcs = g.Polygon
	case geojson.GeometryCollection:
		geo.Geometries = g.Geometries
		if g.Geometries == nil {
			geo.Geometries = make([]*Geometry, 0)
		}
	}
	return json.Marshal(geo)
}

func (t *Topology) MarshalJSON() ([]byte, error) {
	type topology Topology
	t.Type = "Topology"
	if t.Objects == nil {
		t.Objects = make(map[string]*Geometry)
	}
	if t.Arcs == nil {
		t.Arcs = make([][][]float64, 0)
	}
	return json.Marshal((*topology)(t))
}

type encoder struct {
	topo *Topology
}

// arc stores a ring, delta-encoded when the topology is quantized.
func (e *encoder) arc(nodes []batidiff.Point) int {
	positions := ring(nodes)
	tr := e.topo.Transform
	if tr != nil {
		var x0, y0 float64
		for i, p := range positions {
			x := math.Round((p[0] - tr.Translate[0]) / tr.Scale[0])
			y := math.Round((p[1] - tr.Translate[1]) / tr.Scale[1])
			positions[i] = []float64{x - x0, y - y0}
			x0, y0 = x, y
		}
	}
	e.topo.Arcs = append(e.topo.Arcs, positions)
	return len(e.topo.Arcs) - 1
}

func (e *encoder) collection(snapshot string, buildings []*batidiff.Building) *Geometry {
	c := &Geometry{Type: geojson.GeometryCollection}
	for _, b := range buildings {
		if len(b.Nodes) == 0 {
			continue
		}
		g := &Geometry{
			ID:         b.ID,
			Type:       geojson.GeometryPolygon,
			Properties: properties(b, snapshot),
			Polygon:    [][]int{{e.arc(b.Nodes)}},
		}
		for _, inner := range b.Inner {
			g.Polygon = append(g.Polygon, []int{e.arc(inner.Nodes)})
		}
		c.Geometries = append(c.Geometries, g)
	}
	return c
}

// TopoJSON returns the buildings of both snapshots as the "old" and "new"
// objects of a topology, one arc per ring. A quantize above 1 is the number
// of distinct positions per axis, coordinates are then delta-encoded.
func TopoJSON(r *batidiff.Result, quantize float64) *Topology {
	topo := &Topology{
		Type: "Topology",
	}
	b, ok := batidiff.Extent(r.Old, r.New)
	if ok {
		topo.BoundingBox = []float64{b.Left(), b.Bottom(), b.Right(), b.Top()}
		if quantize > 1 {
			topo.Transform = transform(b, quantize)
		}
	}

	e := &encoder{topo: topo}
	topo.Objects = map[string]*Geometry{
		"old": e.collection("old", r.Old.Outer()),
		"new": e.collection("new", r.New.Outer()),
	}
	return topo
}

func transform(b orb.Bound, quantize float64) *Transform {
	scale := func(extent float64) float64 {
		if extent <= 0 {
			return 1
		}
		return extent / (quantize - 1)
	}
	return &Transform{
		Scale:     [2]float64{scale(b.Right() - b.Left()), scale(b.Top() - b.Bottom())},
		Translate: [2]float64{b.Left(), b.Bottom()},
	}
}
