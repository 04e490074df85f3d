// Package osmfile reads building snapshots from OSM extracts and writes
// classified buildings back as OSM XML.
package osmfile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/rubenv/batidiff/batidiff"
	"github.com/rubenv/batidiff/simplify"
)

type Format int

const (
	FormatXML Format = iota
	FormatPBF
)

// FormatOf guesses the format from the file extension.
func FormatOf(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pbf") {
		return FormatPBF
	}
	return FormatXML
}

// Document keeps the raw OSM objects of a snapshot, for writing them back.
type Document struct {
	Filename string

	nodes     map[osm.NodeID]*osm.Node
	ways      map[osm.WayID]*osm.Way
	relations map[osm.RelationID]*osm.Relation

	// Buildings joined from open multipolygon fragments, by building ID.
	fragments map[string][]osm.WayID

	// Members referenced by relations but missing from the extract.
	Missing int
}

func newDocument(filename string) *Document {
	return &Document{
		Filename:  filename,
		nodes:     make(map[osm.NodeID]*osm.Node),
		ways:      make(map[osm.WayID]*osm.Way),
		relations: make(map[osm.RelationID]*osm.Relation),
		fragments: make(map[string][]osm.WayID),
	}
}

// Fragments lists the ways a joined building was built from.
func (d *Document) Fragments(id string) []osm.WayID {
	return d.fragments[id]
}

type scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

func Read(ctx context.Context, filename string) (*batidiff.Snapshot, *Document, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer fp.Close()

	return Decode(ctx, fp, FormatOf(filename), filename)
}

// Decode reads every way of an extract as a building. Multipolygon relations
// are resolved into explicit groups.
func Decode(ctx context.Context, r io.Reader, format Format, name string) (*batidiff.Snapshot, *Document, error) {
	var s scanner
	switch format {
	case FormatPBF:
		s = osmpbf.New(ctx, r, runtime.NumCPU())
	default:
		s = osmxml.New(ctx, r)
	}
	defer s.Close()

	doc := newDocument(name)
	ways := make([]*osm.Way, 0)
	relations := make([]*osm.Relation, 0)
	for s.Scan() {
		switch o := s.Object().(type) {
		case *osm.Node:
			doc.nodes[o.ID] = o
		case *osm.Way:
			doc.ways[o.ID] = o
			ways = append(ways, o)
		case *osm.Relation:
			doc.relations[o.ID] = o
			relations = append(relations, o)
		}
	}
	err := s.Err()
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to read %s: %w", name, err)
	}

	snap := batidiff.NewSnapshot(name)
	fragments := fragmentWays(relations, doc.ways)
	for _, w := range ways {
		if fragments[w.ID] {
			continue
		}

		ring, err := doc.ring(w.ID, w.Nodes.NodeIDs())
		if err != nil {
			return nil, nil, err
		}

		b := batidiff.NewBuilding(wayID(w.ID), ring, convertTags(w.Tags))
		err = batidiff.ValidateRing(ring)
		if err != nil {
			slog.Warn("Malformed building", "file", name, "way", w.ID, "err", err)
		}
		err = snap.Add(b)
		if err != nil {
			return nil, nil, err
		}
	}

	for _, rel := range relations {
		err := doc.resolve(snap, rel)
		if err != nil {
			return nil, nil, err
		}
	}

	return snap, doc, nil
}

func wayID(id osm.WayID) string {
	return strconv.FormatInt(int64(id), 10)
}

func convertTags(tags osm.Tags) batidiff.Tags {
	result := make(batidiff.Tags, 0, len(tags))
	for _, t := range tags {
		result = append(result, batidiff.Tag{Key: t.Key, Value: t.Value})
	}
	return result
}

func isMultipolygon(rel *osm.Relation) bool {
	switch rel.Tags.Find("type") {
	case "multipolygon", "building":
		return true
	}
	return false
}

// fragmentWays finds open ways used as multipolygon members. They are not
// buildings on their own.
func fragmentWays(relations []*osm.Relation, ways map[osm.WayID]*osm.Way) map[osm.WayID]bool {
	result := make(map[osm.WayID]bool)
	for _, rel := range relations {
		if !isMultipolygon(rel) {
			continue
		}
		for _, m := range rel.Members {
			if m.Type != osm.TypeWay {
				continue
			}
			w, ok := ways[osm.WayID(m.Ref)]
			if ok && !simplify.Closed(w.Nodes.NodeIDs()) {
				result[w.ID] = true
			}
		}
	}
	return result
}

func (d *Document) ring(way osm.WayID, ids []osm.NodeID) ([]batidiff.Point, error) {
	ring := make([]batidiff.Point, 0, len(ids))
	for _, id := range ids {
		n, ok := d.nodes[id]
		if !ok {
			return nil, fmt.Errorf("Way %d references unknown node %d", way, id)
		}
		ring = append(ring, batidiff.Point{
			ID:  strconv.FormatInt(int64(id), 10),
			Lat: n.Lat,
			Lon: n.Lon,
		})
	}
	return ring, nil
}

type member struct {
	outer bool
	id    string
}

// resolve turns a multipolygon relation into one group per outer ring. Open
// fragments are joined first, holes go to the outer ring containing them.
func (d *Document) resolve(snap *batidiff.Snapshot, rel *osm.Relation) error {
	if !isMultipolygon(rel) {
		return nil
	}

	members := make([]member, 0, len(rel.Members))
	open := map[bool][]osm.WayID{}
	for _, m := range rel.Members {
		if m.Type != osm.TypeWay {
			continue
		}

		outer := m.Role != string(batidiff.RoleInner)
		w, ok := d.ways[osm.WayID(m.Ref)]
		if !ok {
			d.Missing++
			slog.Warn("Relation member missing from extract", "file", d.Filename, "relation", rel.ID, "way", m.Ref)
			continue
		}
		if snap.Get(wayID(w.ID)) == nil {
			open[outer] = append(open[outer], w.ID)
			continue
		}
		members = append(members, member{outer: outer, id: wayID(w.ID)})
	}

	for _, outer := range []bool{true, false} {
		joined, err := d.join(snap, rel, open[outer])
		if err != nil {
			return err
		}
		for _, id := range joined {
			members = append(members, member{outer: outer, id: id})
		}
	}

	outers := make([]string, 0)
	inners := make([]string, 0)
	for _, m := range members {
		if m.outer {
			outers = append(outers, m.id)
		} else {
			inners = append(inners, m.id)
		}
	}
	if len(outers) == 0 {
		slog.Warn("Relation without outer ring", "file", d.Filename, "relation", rel.ID)
		return nil
	}

	holes := make(map[string][]string)
	for _, inner := range inners {
		owner := outers[0]
		for _, outer := range outers {
			if batidiff.Contains(snap.Get(outer).Nodes, snap.Get(inner).Nodes) {
				owner = outer
				break
			}
		}
		holes[owner] = append(holes[owner], inner)
	}

	group := strconv.FormatInt(int64(rel.ID), 10)
	for _, outer := range outers {
		_, err := snap.AddGroup(group, outer, holes[outer])
		if err != nil {
			slog.Warn("Skipping relation member", "file", d.Filename, "relation", rel.ID, "err", err)
		}
	}
	return nil
}

func edge(a, b osm.NodeID) [2]osm.NodeID {
	if a > b {
		a, b = b, a
	}
	return [2]osm.NodeID{a, b}
}

// onRing reports whether every segment of a fragment is an edge of a ring.
func onRing(edges map[[2]osm.NodeID]bool, nodes []osm.NodeID) bool {
	if len(nodes) < 2 {
		return false
	}
	for i := 1; i < len(nodes); i++ {
		if !edges[edge(nodes[i-1], nodes[i])] {
			return false
		}
	}
	return true
}

// join builds buildings out of open fragments. A joined ring is named after
// its first fragment and carries the tags of the relation.
func (d *Document) join(snap *batidiff.Snapshot, rel *osm.Relation, ways []osm.WayID) ([]string, error) {
	if len(ways) == 0 {
		return nil, nil
	}

	lines := make([][]osm.NodeID, 0, len(ways))
	for _, id := range ways {
		lines = append(lines, d.ways[id].Nodes.NodeIDs())
	}
	closed, open := simplify.Rings(lines)
	if len(open) > 0 {
		slog.Warn("Relation has unclosed rings", "file", d.Filename, "relation", rel.ID, "count", len(open))
	}

	tags := convertTags(rel.Tags)
	tags.Delete("type")

	used := make(map[osm.WayID]bool, len(ways))
	result := make([]string, 0, len(closed))
	for _, ids := range closed {
		edges := make(map[[2]osm.NodeID]bool, len(ids))
		for i := 1; i < len(ids); i++ {
			edges[edge(ids[i-1], ids[i])] = true
		}

		parts := make([]osm.WayID, 0)
		for _, w := range ways {
			if used[w] || !onRing(edges, d.ways[w].Nodes.NodeIDs()) {
				continue
			}
			used[w] = true
			parts = append(parts, w)
		}
		if len(parts) == 0 {
			continue
		}
		id := wayID(parts[0])
		if snap.Get(id) != nil {
			// Shared with another relation.
			result = append(result, id)
			continue
		}

		ring, err := d.ring(parts[0], ids)
		if err != nil {
			return nil, err
		}
		b := batidiff.NewBuilding(id, ring, tags.Clone())
		err = snap.Add(b)
		if err != nil {
			return nil, err
		}

		d.fragments[id] = parts
		result = append(result, id)
	}
	return result, nil
}
