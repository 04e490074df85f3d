package osmfile

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/paulmach/osm"
	"github.com/rubenv/batidiff/batidiff"
)

const Generator = "batidiff"

type xmlMeta struct {
	Version   int    `xml:"version,attr,omitempty"`
	Timestamp string `xml:"timestamp,attr,omitempty"`
	UID       int64  `xml:"uid,attr,omitempty"`
	User      string `xml:"user,attr,omitempty"`
	Changeset int64  `xml:"changeset,attr,omitempty"`
	Visible   string `xml:"visible,attr,omitempty"`
}

type xmlTag struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

type xmlNode struct {
	ID int64 `xml:"id,attr"`
	xmlMeta
	Lat  string   `xml:"lat,attr"`
	Lon  string   `xml:"lon,attr"`
	Tags []xmlTag `xml:"tag"`
}

type xmlNd struct {
	Ref int64 `xml:"ref,attr"`
}

type xmlWay struct {
	ID int64 `xml:"id,attr"`
	xmlMeta
	Nodes []xmlNd  `xml:"nd"`
	Tags  []xmlTag `xml:"tag"`
}

type xmlMember struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

type xmlRelation struct {
	ID int64 `xml:"id,attr"`
	xmlMeta
	Members []xmlMember `xml:"member"`
	Tags    []xmlTag    `xml:"tag"`
}

type xmlOSM struct {
	XMLName   xml.Name      `xml:"osm"`
	Version   string        `xml:"version,attr"`
	Generator string        `xml:"generator,attr"`
	Nodes     []xmlNode     `xml:"node"`
	Ways      []xmlWay      `xml:"way"`
	Relations []xmlRelation `xml:"relation"`
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func xmlTags(tags batidiff.Tags) []xmlTag {
	result := make([]xmlTag, 0, len(tags))
	for _, t := range tags {
		result = append(result, xmlTag{Key: t.Key, Value: t.Value})
	}
	return result
}

// meta keeps the history attributes of an object. Extracts only hold
// visible objects, whatever their visible attribute says.
func meta(keep bool, version int, ts time.Time, uid osm.UserID, user string, changeset osm.ChangesetID) xmlMeta {
	if !keep {
		return xmlMeta{Visible: "true"}
	}
	m := xmlMeta{
		Version:   version,
		UID:       int64(uid),
		User:      user,
		Changeset: int64(changeset),
		Visible:   "true",
	}
	if !ts.IsZero() {
		m.Timestamp = ts.UTC().Format(time.RFC3339)
	}
	return m
}

type writer struct {
	doc      *Document
	keepMeta bool
	out      xmlOSM

	nodes     map[int64]bool
	ways      map[int64]bool
	relations map[int64]int
}

func parseID(id string) (int64, error) {
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid OSM id %q: %w", id, err)
	}
	return v, nil
}

func (w *writer) node(p batidiff.Point) error {
	id, err := parseID(p.ID)
	if err != nil {
		return err
	}
	if w.nodes[id] {
		return nil
	}
	w.nodes[id] = true

	n := xmlNode{
		ID:      id,
		xmlMeta: xmlMeta{Visible: "true"},
		Lat:     formatCoord(p.Lat),
		Lon:     formatCoord(p.Lon),
	}
	if w.doc != nil {
		if o, ok := w.doc.nodes[osm.NodeID(id)]; ok {
			n.xmlMeta = meta(w.keepMeta, o.Version, o.Timestamp, o.UserID, o.User, o.ChangesetID)
			n.Tags = xmlTags(convertTags(o.Tags))
		}
	}
	w.out.Nodes = append(w.out.Nodes, n)
	return nil
}

// way writes a ring and its nodes, once.
func (w *writer) way(id string, ring []batidiff.Point, tags batidiff.Tags) error {
	wid, err := parseID(id)
	if err != nil {
		return err
	}
	if w.ways[wid] {
		return nil
	}
	w.ways[wid] = true

	out := xmlWay{
		ID:      wid,
		xmlMeta: xmlMeta{Visible: "true"},
		Tags:    xmlTags(tags),
	}
	for _, p := range ring {
		err := w.node(p)
		if err != nil {
			return err
		}
		ref, _ := parseID(p.ID)
		out.Nodes = append(out.Nodes, xmlNd{Ref: ref})
	}
	if w.doc != nil {
		if o, ok := w.doc.ways[osm.WayID(wid)]; ok {
			out.xmlMeta = meta(w.keepMeta, o.Version, o.Timestamp, o.UserID, o.User, o.ChangesetID)
		}
	}
	w.out.Ways = append(w.out.Ways, out)
	return nil
}

func (w *writer) fragments(ids []osm.WayID) error {
	for _, id := range ids {
		o := w.doc.ways[id]
		ring, err := w.doc.ring(id, o.Nodes.NodeIDs())
		if err != nil {
			return err
		}
		err = w.way(wayID(id), ring, convertTags(o.Tags))
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) members(b *batidiff.Building, role batidiff.Role) ([]xmlMember, error) {
	var parts []osm.WayID
	if w.doc != nil {
		parts = w.doc.fragments[b.ID]
	}
	if len(parts) == 0 {
		ref, err := parseID(b.ID)
		if err != nil {
			return nil, err
		}
		return []xmlMember{{Type: "way", Ref: ref, Role: string(role)}}, nil
	}

	result := make([]xmlMember, 0, len(parts))
	for _, id := range parts {
		result = append(result, xmlMember{Type: "way", Ref: int64(id), Role: string(role)})
	}
	return result, nil
}

func (w *writer) ring(b *batidiff.Building) error {
	if w.doc != nil && len(w.doc.fragments[b.ID]) > 0 {
		return w.fragments(w.doc.fragments[b.ID])
	}
	return w.way(b.ID, b.Nodes, b.Tags)
}

func (w *writer) building(b *batidiff.Building) error {
	err := w.ring(b)
	if err != nil {
		return err
	}

	joined := w.doc != nil && len(w.doc.fragments[b.ID]) > 0
	if b.Group == "" && !joined {
		return nil
	}

	members, err := w.members(b, batidiff.RoleOuter)
	if err != nil {
		return err
	}
	for _, inner := range b.Inner {
		err := w.ring(inner)
		if err != nil {
			return err
		}
		m, err := w.members(inner, batidiff.RoleInner)
		if err != nil {
			return err
		}
		members = append(members, m...)
	}

	group := b.Group
	if group == "" {
		group = b.ID
	}
	rid, err := parseID(group)
	if err != nil {
		return err
	}

	if i, ok := w.relations[rid]; ok {
		w.out.Relations[i].Members = append(w.out.Relations[i].Members, members...)
		return nil
	}

	rel := xmlRelation{
		ID:      rid,
		xmlMeta: xmlMeta{Visible: "true"},
		Members: members,
	}
	tags := batidiff.Tags{{Key: "type", Value: "multipolygon"}}
	if w.doc != nil {
		if o, ok := w.doc.relations[osm.RelationID(rid)]; ok {
			rel.xmlMeta = meta(w.keepMeta, o.Version, o.Timestamp, o.UserID, o.User, o.ChangesetID)
			tags = convertTags(o.Tags)
		}
	}
	if joined {
		// The relation carries the tags of a joined building.
		tags = append(b.Tags.Clone(), batidiff.Tag{Key: "type", Value: "multipolygon"})
	}
	rel.Tags = xmlTags(tags)

	w.relations[rid] = len(w.out.Relations)
	w.out.Relations = append(w.out.Relations, rel)
	return nil
}

// Write outputs buildings and their inner rings as OSM XML. Multi-ring
// buildings are written as multipolygon relations. With keepMeta the
// history attributes of the document are kept, otherwise objects are written
// as fresh data.
func Write(out io.Writer, doc *Document, buildings []*batidiff.Building, keepMeta bool) error {
	w := &writer{
		doc:      doc,
		keepMeta: keepMeta,
		out: xmlOSM{
			Version:   "0.6",
			Generator: Generator,
		},
		nodes:     make(map[int64]bool),
		ways:      make(map[int64]bool),
		relations: make(map[int64]int),
	}

	for _, b := range buildings {
		if !b.IsOuter() {
			continue
		}
		err := w.building(b)
		if err != nil {
			return err
		}
	}

	return encode(out, w.out)
}

func encode(out io.Writer, doc xmlOSM) error {
	_, err := io.WriteString(out, xml.Header)
	if err != nil {
		return err
	}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	err = enc.Encode(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, "\n")
	return err
}
