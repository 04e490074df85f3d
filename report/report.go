// Package report writes the human readable summary of a diff: inputs,
// counts, balance warnings, per-building tables and grid density.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rubenv/batidiff/batidiff"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var separator = strings.Repeat("-", 72)

type Report struct {
	Result *batidiff.Result

	// Time spent reading both inputs, zero when unknown.
	Read time.Duration

	// Output file of each status, listed next to the buildings written to
	// it.
	Files map[batidiff.Status]string
}

// FileNames names the output files of a diff after a prefix, the way
// reviewers are used to find them.
func FileNames(prefix string, r *batidiff.Result) map[batidiff.Status]string {
	return map[batidiff.Status]string{
		batidiff.StatusUnchanged: prefix + "_unModified.osm",
		batidiff.StatusModified:  fmt.Sprintf("%s_mod_1_a_%d.osm", prefix, r.New.Count(batidiff.StatusModified)),
		batidiff.StatusNew:       fmt.Sprintf("%s_new_1_a_%d.osm", prefix, r.New.Count(batidiff.StatusNew)),
		batidiff.StatusDeleted:   fmt.Sprintf("%s_sup_1_a_%d.osm", prefix, r.Old.Count(batidiff.StatusDeleted)),
	}
}

type printer struct {
	p   *message.Printer
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = p.p.Fprintf(p.w, format, args...)
}

func (p *printer) line(s string) {
	p.printf("%s\n", s)
}

// table writes aligned columns separated by pipes.
func (p *printer) table(fn func(row func(cells ...string))) {
	if p.err != nil {
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 8, 1, ' ', tabwriter.Debug)
	fn(func(cells ...string) {
		if p.err == nil {
			_, p.err = io.WriteString(tw, strings.Join(cells, "\t")+"\t\n")
		}
	})
	if p.err == nil {
		p.err = tw.Flush()
	}
}

func nodeCount(s *batidiff.Snapshot) int {
	seen := make(map[string]bool)
	for _, b := range s.Buildings {
		for _, n := range b.Nodes {
			seen[n.ID] = true
		}
	}
	return len(seen)
}

// Write outputs the report.
func Write(w io.Writer, rep *Report) error {
	r := rep.Result
	p := &printer{
		p: message.NewPrinter(language.English),
		w: w,
	}

	p.line("Inputs:")
	p.printf("    min identical distance: %g %s\n", r.Config.MinIdenticalDistance, r.Config.Units)
	p.printf("    max match distance: %g %s\n", r.Config.MaxMatchDistance, r.Config.Units)
	p.printf("    zones: %d\n", r.Zones)
	for _, s := range []*batidiff.Snapshot{r.Old, r.New} {
		p.printf("%s contains:\n", s.Name)
		p.printf("    - %d nodes\n", nodeCount(s))
		p.printf("    - %d buildings\n", len(s.Outer()))
	}

	p.line("Result:")
	p.printf("    comparisons: %d\n", r.Comparisons)
	p.printf("    unchanged buildings: %d\n", r.New.Count(batidiff.StatusUnchanged))
	p.printf("    modified buildings: %d\n", r.New.Count(batidiff.StatusModified))
	p.printf("    new buildings: %d\n", r.New.Count(batidiff.StatusNew))
	p.printf("    deleted buildings: %d\n", r.Old.Count(batidiff.StatusDeleted))
	if len(r.Degenerate) > 0 {
		p.printf("    degenerate buildings: %d\n", len(r.Degenerate))
	}
	if rep.Read > 0 {
		p.printf("Read time: %s\n", rep.Read)
	}
	for _, t := range r.Timings {
		p.printf("%s: %s\n", t.Description, t.Duration)
	}
	p.printf("Total time: %s\n", rep.Read+r.Elapsed)

	p.line(separator)
	if r.Corrected > 0 {
		p.printf("%d cells with modified buildings reclassified as new\n", r.Corrected)
	}
	for _, b := range r.Imbalances {
		p.line("Unbalanced " + b.String())
	}
	p.line(separator)

	summary(p, r.New, r.NewGrid)
	summary(p, r.Old, r.OldGrid)

	p.line("NEW BUILDINGS")
	p.line(separator)
	p.table(func(row func(...string)) {
		row("STATUS", "NEW", "DISTANCE", "OLD", "FILE")
		for _, b := range inGridOrder(r.NewGrid) {
			switch b.Status {
			case batidiff.StatusUnchanged, batidiff.StatusModified, batidiff.StatusNew:
				row(b.Status.String(), b.ID, distance(b), b.MatchID, rep.Files[b.Status])
			}
		}
	})
	p.line(separator)

	p.line("OLD BUILDINGS")
	p.line(separator)
	p.table(func(row func(...string)) {
		row("STATUS", "OLD", "DISTANCE", "FILE")
		for _, b := range inGridOrder(r.OldGrid) {
			if b.Status == batidiff.StatusDeleted {
				row(b.Status.String(), b.ID, distance(b), rep.Files[b.Status])
			}
		}
	})
	p.line(separator)

	density(p, r.Old.Name, r.OldGrid)
	density(p, r.New.Name, r.NewGrid)
	return p.err
}

func distance(b *batidiff.Building) string {
	return fmt.Sprintf("%.3f", b.MinDistance)
}

func inGridOrder(g *batidiff.Grid) []*batidiff.Building {
	result := make([]*batidiff.Building, 0, g.Len())
	for _, c := range g.Cells() {
		result = append(result, g.Cell(c)...)
	}
	return result
}

func summary(p *printer, s *batidiff.Snapshot, g *batidiff.Grid) {
	p.printf("Buildings of %s\n", s.Name)
	p.line(separator)
	p.table(func(row func(...string)) {
		row("ID", "STATUS", "DISTANCE", "LAT", "LON", "AREA")
		for _, b := range inGridOrder(g) {
			row(b.ID, b.Status.String(), distance(b),
				fmt.Sprintf("%.7f", b.Centroid.Lat),
				fmt.Sprintf("%.7f", b.Centroid.Lon),
				fmt.Sprintf("%.1f", b.Area))
		}
	})
	p.line(separator)
}

func density(p *printer, name string, g *batidiff.Grid) {
	p.printf("Building density of %s\n", name)
	p.line(separator)
	if p.err != nil {
		return
	}

	tw := tabwriter.NewWriter(p.w, 4, 8, 1, ' ', tabwriter.AlignRight)
	header := []string{"", ""}
	for i := 0; i < g.Zones(); i++ {
		header = append(header, fmt.Sprint(i))
	}
	lines := []string{strings.Join(header, "\t")}
	for i, counts := range g.Density() {
		cells := []string{fmt.Sprint(i), "|"}
		for _, n := range counts {
			cells = append(cells, fmt.Sprint(n))
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	for _, l := range lines {
		_, p.err = io.WriteString(tw, l+"\t\n")
		if p.err != nil {
			return
		}
	}
	p.err = tw.Flush()
}
