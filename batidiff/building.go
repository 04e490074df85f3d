package batidiff

import (
	"fmt"
	"strings"
)

// NoMatch is the initial MinDistance of every building, larger than any
// distance the matcher can find within a grid neighbourhood.
const NoMatch = 1000.0

type Status int

const (
	StatusUnknown Status = iota
	StatusUnchanged
	StatusModified
	StatusNew
	StatusDeleted
	StatusInner
)

var statusNames = []string{
	StatusUnknown:   "UNKNOWN",
	StatusUnchanged: "UNCHANGED",
	StatusModified:  "MODIFIED",
	StatusNew:       "NEW",
	StatusDeleted:   "DELETED",
	StatusInner:     "INNER",
}

func (s Status) String() string {
	if int(s) < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func ParseStatus(v string) (Status, error) {
	for i, name := range statusNames {
		if strings.EqualFold(name, v) {
			return Status(i), nil
		}
	}
	return StatusUnknown, fmt.Errorf("Unknown status: %s", v)
}

type Role string

const (
	RoleOuter Role = "outer"
	RoleInner Role = "inner"
)

type Building struct {
	ID    string
	Nodes []Point
	Tags  Tags

	Role  Role
	Group string
	Inner []*Building

	Centroid   Point
	Area       float64
	Width      float64
	Degenerate bool

	Status      Status
	MinDistance float64
	MatchID     string

	// Source tag as read, before any carry-over.
	observedSource string
	hasSource      bool

	// Tags before the first carry-over, put back by Reset.
	readTags Tags
	carried  bool
}

// NewBuilding creates an outer building and computes its geometry.
func NewBuilding(id string, nodes []Point, tags Tags) *Building {
	b := &Building{
		ID:          id,
		Nodes:       nodes,
		Tags:        tags,
		Role:        RoleOuter,
		MinDistance: NoMatch,
	}
	b.observedSource, b.hasSource = tags.Get(SourceTag)

	b.Centroid, b.Area, b.Degenerate = CentroidAndArea(nodes)
	b.Centroid.ID = id
	b.Width = Width(nodes)
	return b
}

func (b *Building) IsOuter() bool {
	return b.Role != RoleInner
}

// Reset puts the pipeline state back to its initial value. Tags carried over
// from a match are replaced by the ones the building had before.
func (b *Building) Reset() {
	b.Status = StatusUnknown
	b.MinDistance = NoMatch
	b.MatchID = ""
	if b.carried {
		b.Tags = b.readTags
		b.readTags = nil
		b.carried = false
	}
}

func (b *Building) String() string {
	return fmt.Sprintf("%s[%s d=%.3f match=%s]", b.ID, b.Status, b.MinDistance, b.MatchID)
}
