package batidiff

import (
	"errors"
	"testing"

	"github.com/cheekybits/is"
)

func TestSnapshotAdd(t *testing.T) {
	is := is.New(t)

	s := NewSnapshot("old")
	is.NoErr(s.Add(square("1", baseLat, baseLon, 10)))
	err := s.Add(square("1", baseLat, baseLon, 12))
	is.True(errors.Is(err, ErrDuplicate))

	is.NotNil(s.Get("1"))
	is.True(s.Get("2") == nil)
	is.Equal(len(s.Buildings), 1)
}

func TestSnapshotGroups(t *testing.T) {
	is := is.New(t)

	outer := square("o", baseLat, baseLon, 20)
	inner1 := square("i1", baseLat, baseLon, 4)
	inner2 := square("i2", baseLat+metersToDegrees(5), baseLon, 2)
	s := snapshotOf("new", outer, inner1, inner2)

	g, err := s.AddGroup("r1", "o", []string{"i1", "i2"})
	is.NoErr(err)
	is.Equal(g.Outer, outer)
	is.Equal(len(g.Inner), 2)
	is.Equal(outer.Group, "r1")
	is.Equal(inner1.Role, RoleInner)
	is.Equal(inner2.Group, "r1")
	is.Equal(len(outer.Inner), 2)
	is.True(outer.IsOuter())
	is.False(inner1.IsOuter())

	is.Equal(len(s.Outer()), 1)
	is.Equal(len(s.Groups), 1)
}

func TestSnapshotGroupErrors(t *testing.T) {
	is := is.New(t)

	s := snapshotOf("new",
		square("o", baseLat, baseLon, 20),
		square("i", baseLat, baseLon, 4),
	)

	_, err := s.AddGroup("r1", "", []string{"i"})
	is.True(errors.Is(err, ErrNoOuter))

	_, err = s.AddGroup("r1", "missing", []string{"i"})
	is.True(errors.Is(err, ErrUnknownMember))

	_, err = s.AddGroup("r1", "o", []string{"i", "missing"})
	is.True(errors.Is(err, ErrUnknownMember))
	is.True(s.Get("i").IsOuter())

	_, err = s.AddGroup("r1", "o", []string{"o"})
	is.Err(err)

	_, err = s.AddGroup("r1", "o", []string{"i"})
	is.NoErr(err)
	_, err = s.AddGroup("r2", "i", nil)
	is.Err(err)
}

func TestSnapshotCount(t *testing.T) {
	is := is.New(t)

	a := square("a", baseLat, baseLon, 10)
	b := square("b", baseLat, baseLon, 10)
	c := square("c", baseLat, baseLon, 4)
	a.Status = StatusNew
	b.Status = StatusNew
	c.Status = StatusNew
	c.Role = RoleInner

	s := snapshotOf("new", a, b, c)
	is.Equal(s.Count(StatusNew), 2)
	is.Equal(s.Count(StatusDeleted), 0)

	s.Reset()
	is.Equal(s.Count(StatusNew), 0)
	is.Equal(a.MinDistance, NoMatch)
}

func TestExtent(t *testing.T) {
	is := is.New(t)

	_, ok := Extent(NewSnapshot("empty"))
	is.False(ok)

	old := snapshotOf("old", square("a", 10, 20, 10))
	new := snapshotOf("new", square("b", 11, 19, 10))
	bound, ok := Extent(old, new)
	is.True(ok)

	h := metersToDegrees(10) / 2
	is.True(near(bound.Bottom(), 10-h, 1e-12))
	is.True(near(bound.Top(), 11+h, 1e-12))
	is.True(near(bound.Left(), 19-h, 1e-12))
	is.True(near(bound.Right(), 20+h, 1e-12))
}
