package batidiff

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// ImproveFunc is called each time a query building finds a candidate
// strictly closer than anything seen before.
type ImproveFunc func(b, candidate *Building, distance float64)

// Matcher finds, for every outer building of a query grid, the nearest outer
// building of a candidate grid within the 3x3 neighbourhood of its cell.
//
// Work is split by grid row. A building is only ever written by the worker
// owning its row and candidates are scanned in a fixed order, so the result
// does not depend on the number of workers. On equal distances the first
// candidate in scan order wins.
type Matcher struct {
	Workers  int
	Improve  ImproveFunc
	Progress func()
}

// Run matches query against candidates and returns the number of distance
// computations.
func (m *Matcher) Run(ctx context.Context, query, candidates *Grid) (int64, error) {
	workers := m.Workers
	if workers < 1 {
		workers = 1
	}

	var comparisons int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, row := range query.Rows() {
		if len(row) == 0 {
			continue
		}

		cells := row
		g.Go(func() error {
			n := int64(0)
			for _, c := range cells {
				err := ctx.Err()
				if err != nil {
					return err
				}

				for _, b := range query.Cell(c) {
					n += m.nearest(b, candidates)
					if m.Progress != nil {
						m.Progress()
					}
				}
			}
			atomic.AddInt64(&comparisons, n)
			return nil
		})
	}

	err := g.Wait()
	return comparisons, err
}

func (m *Matcher) nearest(b *Building, candidates *Grid) int64 {
	if !b.IsOuter() {
		return 0
	}

	n := int64(0)
	candidates.EachNeighbor(candidates.CellOf(b.Centroid), func(c *Building) {
		if !c.IsOuter() {
			return
		}

		n++
		d := b.Centroid.Distance(c.Centroid)
		if d < b.MinDistance {
			b.MinDistance = d
			b.MatchID = c.ID
			if m.Improve != nil {
				m.Improve(b, c, d)
			}
		}
	})
	return n
}

// CarryOver returns the ImproveFunc used when matching new buildings against
// old ones: tags follow the provisional label of the current best pair.
func CarryOver(cfg *Config) ImproveFunc {
	return func(b, old *Building, d float64) {
		status := cfg.provisional(d)
		if status != StatusUnknown {
			CopyTags(b, old, status)
		}
	}
}
