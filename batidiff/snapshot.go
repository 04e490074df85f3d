package batidiff

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	ErrUnknownMember = errors.New("Unknown group member")
	ErrNoOuter       = errors.New("Group without outer ring")
	ErrDuplicate     = errors.New("Duplicate building")
)

// Group is a multi-ring building: one outer ring and its holes.
type Group struct {
	ID    string
	Outer *Building
	Inner []*Building
}

type Snapshot struct {
	Name      string
	Buildings []*Building
	Groups    []*Group

	byID map[string]*Building
}

func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		Name: name,
		byID: make(map[string]*Building),
	}
}

func (s *Snapshot) Add(b *Building) error {
	if _, ok := s.byID[b.ID]; ok {
		return fmt.Errorf("%w: %s in %s", ErrDuplicate, b.ID, s.Name)
	}
	s.byID[b.ID] = b
	s.Buildings = append(s.Buildings, b)
	return nil
}

func (s *Snapshot) Get(id string) *Building {
	return s.byID[id]
}

// AddGroup resolves a multi-ring group by explicit roles. The outer keeps
// its status pipeline, inner rings are carried along with it.
func (s *Snapshot) AddGroup(id, outer string, inner []string) (*Group, error) {
	if outer == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoOuter, id)
	}

	o := s.byID[outer]
	if o == nil {
		return nil, fmt.Errorf("%w: outer %s of group %s", ErrUnknownMember, outer, id)
	}
	if o.Role == RoleInner {
		return nil, fmt.Errorf("Building %s is already an inner ring of group %s", outer, o.Group)
	}

	rings := make([]*Building, 0, len(inner))
	for _, ref := range inner {
		b := s.byID[ref]
		if b == nil {
			return nil, fmt.Errorf("%w: inner %s of group %s", ErrUnknownMember, ref, id)
		}
		if b == o {
			return nil, fmt.Errorf("Building %s is both outer and inner in group %s", ref, id)
		}
		rings = append(rings, b)
	}

	o.Group = id
	for _, b := range rings {
		b.Role = RoleInner
		b.Group = id
	}
	o.Inner = append(o.Inner, rings...)

	g := &Group{
		ID:    id,
		Outer: o,
		Inner: rings,
	}
	s.Groups = append(s.Groups, g)
	return g, nil
}

func (s *Snapshot) Outer() []*Building {
	result := make([]*Building, 0, len(s.Buildings))
	for _, b := range s.Buildings {
		if b.IsOuter() {
			result = append(result, b)
		}
	}
	return result
}

// Count returns the number of outer buildings with the given status.
func (s *Snapshot) Count(status Status) int {
	n := 0
	for _, b := range s.Buildings {
		if b.IsOuter() && b.Status == status {
			n++
		}
	}
	return n
}

func (s *Snapshot) Reset() {
	for _, b := range s.Buildings {
		b.Reset()
	}
}

// Extent is the bound of every vertex of the given snapshots, in (lon, lat).
// The second return value is false when there is no vertex at all.
func Extent(snapshots ...*Snapshot) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, s := range snapshots {
		for _, b := range s.Buildings {
			for _, p := range b.Nodes {
				pt := orb.Point{p.Lon, p.Lat}
				if !found {
					bound = orb.Bound{Min: pt, Max: pt}
					found = true
					continue
				}
				bound = bound.Extend(pt)
			}
		}
	}
	return bound, found
}
