package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rubenv/batidiff/batidiff"
)

type CmdGrid struct {
	global *GlobalOptions
}

func init() {
	_, err := parser.AddCommand("grid",
		"Show the grid index",
		"Show the grid a diff of the given snapshots would use and its density",
		&CmdGrid{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdGrid) Usage() string {
	return "old.osm [new.osm]"
}

func (cmd CmdGrid) Execute(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("Options missing, Usage: %s", cmd.Usage())
	}

	cfg, _, err := cmd.global.Setup()
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}

	snapshots := make([]*batidiff.Snapshot, 0, len(args))
	for _, filename := range args {
		s, _, err := cmd.global.ReadSnapshot(context.Background(), filename)
		if err != nil {
			return fmt.Errorf("Failed to read %s: %w", filename, err)
		}
		snapshots = append(snapshots, s)
	}

	bound, ok := batidiff.Extent(snapshots...)
	if !ok {
		return fmt.Errorf("No buildings in %s", strings.Join(args, ", "))
	}
	zones := batidiff.ZoneCount(bound, cfg.MaxDistance(), cfg.MaxZones)

	out := os.Stdout
	fmt.Fprintf(out, "Extent: %v - %v\n", bound.Min, bound.Max)
	fmt.Fprintf(out, "Zones: %d x %d\n", zones, zones)
	fmt.Fprintf(out, "Cell size: %.1f m x %.1f m\n",
		batidiff.DegreesToMeters(bound.Top()-bound.Bottom())/float64(zones),
		batidiff.DegreesToMeters(bound.Right()-bound.Left())/float64(zones))

	for _, s := range snapshots {
		g := batidiff.NewGrid(bound, zones)
		for _, b := range s.Buildings {
			g.Insert(b)
		}
		fmt.Fprintf(out, "\n%s: %d buildings in %d cells\n", s.Name, g.Len(), len(g.Cells()))
		for row, counts := range g.Density() {
			cells := make([]string, len(counts))
			for i, n := range counts {
				cells[i] = fmt.Sprintf("%4d", n)
			}
			fmt.Fprintf(out, "%4d |%s\n", row, strings.Join(cells, ""))
		}
	}
	return nil
}
