package batidiff

import (
	"context"
	"log/slog"
	"time"

	"github.com/paulmach/orb"
)

// Timing is the duration of one step of a diff.
type Timing struct {
	Name        string
	Description string
	Duration    time.Duration
}

type Result struct {
	Old *Snapshot
	New *Snapshot

	Config  *Config
	Bound   orb.Bound
	Zones   int
	OldGrid *Grid
	NewGrid *Grid

	Comparisons int64
	Balances    []Balance
	Imbalances  []Balance
	Corrected   int
	Degenerate  []*Building

	Timings []Timing
	Elapsed time.Duration
}

// Changed reports whether the new snapshot differs from the old one at all.
func (r *Result) Changed() bool {
	return r.New.Count(StatusNew) > 0 || r.New.Count(StatusModified) > 0 || r.Old.Count(StatusDeleted) > 0
}

// Diff classifies the buildings of two snapshots of the same area:
//
//	result, err := NewDiff(old, new).Config(cfg).Workers(4).Run(ctx)
type Diff struct {
	old *Snapshot
	new *Snapshot

	config   *Config
	workers  int
	progress func()
	log      *slog.Logger
}

func NewDiff(old, new *Snapshot) *Diff {
	return &Diff{
		old:    old,
		new:    new,
		config: NewConfig(),
		log:    slog.Default(),
	}
}

func (d *Diff) Config(config *Config) *Diff {
	d.config = config
	return d
}

// Workers overrides the number of matching workers of the configuration.
func (d *Diff) Workers(n int) *Diff {
	d.workers = n
	return d
}

// Progress is called once per matched building, Total times in all.
func (d *Diff) Progress(fn func()) *Diff {
	d.progress = fn
	return d
}

func (d *Diff) Logger(l *slog.Logger) *Diff {
	d.log = l
	return d
}

// Total is the number of Progress calls a Run makes.
func (d *Diff) Total() int {
	return len(d.old.Outer()) + len(d.new.Outer())
}

type stopwatch struct {
	timings []Timing
	start   time.Time
}

func (s *stopwatch) step(name, description string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.timings = append(s.timings, Timing{
		Name:        name,
		Description: description,
		Duration:    time.Since(start),
	})
	return err
}

func (d *Diff) Run(ctx context.Context) (*Result, error) {
	err := d.config.Validate()
	if err != nil {
		return nil, err
	}

	workers := d.config.Workers
	if d.workers > 0 {
		workers = d.workers
	}

	sw := &stopwatch{start: time.Now()}
	r := &Result{
		Old:    d.old,
		New:    d.new,
		Config: d.config,
	}

	d.old.Reset()
	d.new.Reset()
	for _, s := range []*Snapshot{d.old, d.new} {
		for _, b := range s.Buildings {
			if b.Degenerate {
				r.Degenerate = append(r.Degenerate, b)
				d.log.Info("Degenerate building, using mean of vertices as centroid", "snapshot", s.Name, "id", b.ID)
			} else if b.IsOuter() && !CentroidInside(b) {
				d.log.Debug("Centroid outside of building", "snapshot", s.Name, "id", b.ID)
			}
		}
	}

	err = sw.step("index", "Build grid indexes", func() error {
		bound, ok := Extent(d.old, d.new)
		r.Bound = bound
		r.Zones = 1
		if ok {
			r.Zones = ZoneCount(bound, d.config.MaxDistance(), d.config.MaxZones)
		}

		r.OldGrid = NewGrid(bound, r.Zones)
		r.NewGrid = NewGrid(bound, r.Zones)
		for _, b := range d.old.Buildings {
			r.OldGrid.Insert(b)
		}
		for _, b := range d.new.Buildings {
			r.NewGrid.Insert(b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.log.Debug("Grid built", "zones", r.Zones, "old", r.OldGrid.Len(), "new", r.NewGrid.Len())

	err = sw.step("match", "Match buildings", func() error {
		m := &Matcher{
			Workers:  workers,
			Progress: d.progress,
		}
		n, err := m.Run(ctx, r.OldGrid, r.NewGrid)
		if err != nil {
			return err
		}
		r.Comparisons += n

		m.Improve = CarryOver(d.config)
		n, err = m.Run(ctx, r.NewGrid, r.OldGrid)
		if err != nil {
			return err
		}
		r.Comparisons += n
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = sw.step("classify", "Classify buildings", func() error {
		for _, b := range d.old.Buildings {
			ClassifyOld(b, d.config)
		}
		for _, b := range d.new.Buildings {
			ClassifyNew(b, d.config)
		}
		return nil
	})

	_ = sw.step("audit", "Check balance per cell", func() error {
		r.Balances = Audit(r.OldGrid, r.NewGrid)
		for _, b := range r.Balances {
			if b.Corrected {
				r.Corrected++
				d.log.Info("Modified buildings reclassified as new", "row", b.Cell.Row, "col", b.Cell.Col, "count", b.New)
			}
		}
		r.Imbalances = Imbalances(r.Balances)
		for _, b := range r.Imbalances {
			d.log.Warn("Unbalanced cell",
				"row", b.Cell.Row, "col", b.Cell.Col,
				"before", b.Before, "after", b.After,
				"new", b.New, "deleted", b.Deleted)
		}
		return nil
	})

	r.Timings = sw.timings
	r.Elapsed = time.Since(sw.start)
	return r, nil
}
