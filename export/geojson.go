// Package export writes classified buildings as GeoJSON and TopoJSON
// layers, for review in a map viewer.
package export

import (
	"github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/rubenv/batidiff/batidiff"
)

// ring converts building nodes to a closed GeoJSON ring.
func ring(nodes []batidiff.Point) [][]float64 {
	result := make([][]float64, 0, len(nodes)+1)
	for _, p := range nodes {
		result = append(result, []float64{p.Lon, p.Lat})
	}
	if len(nodes) > 0 && (nodes[0].Lat != nodes[len(nodes)-1].Lat || nodes[0].Lon != nodes[len(nodes)-1].Lon) {
		result = append(result, []float64{nodes[0].Lon, nodes[0].Lat})
	}
	return result
}

func polygon(b *batidiff.Building) [][][]float64 {
	rings := [][][]float64{ring(b.Nodes)}
	for _, inner := range b.Inner {
		rings = append(rings, ring(inner.Nodes))
	}
	return rings
}

func bound(nodes []batidiff.Point) []float64 {
	r := make(orb.Ring, 0, len(nodes))
	for _, p := range nodes {
		r = append(r, orb.Point{p.Lon, p.Lat})
	}
	b := r.Bound()
	return []float64{b.Left(), b.Bottom(), b.Right(), b.Top()}
}

func properties(b *batidiff.Building, snapshot string) map[string]interface{} {
	return map[string]interface{}{
		"id":       b.ID,
		"snapshot": snapshot,
		"status":   b.Status.String(),
		"distance": b.MinDistance,
		"match":    b.MatchID,
		"tags":     b.Tags.Map(),
	}
}

func feature(b *batidiff.Building, snapshot string) *geojson.Feature {
	f := geojson.NewPolygonFeature(polygon(b))
	f.ID = b.ID
	f.BoundingBox = bound(b.Nodes)
	for k, v := range properties(b, snapshot) {
		f.SetProperty(k, v)
	}
	return f
}

// GeoJSON returns a feature per outer building of both snapshots, old
// first. Holes become interior rings of their outer building.
func GeoJSON(r *batidiff.Result) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, b := range r.Old.Outer() {
		if len(b.Nodes) > 0 {
			fc.AddFeature(feature(b, "old"))
		}
	}
	for _, b := range r.New.Outer() {
		if len(b.Nodes) > 0 {
			fc.AddFeature(feature(b, "new"))
		}
	}
	return fc
}
