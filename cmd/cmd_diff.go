package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/rubenv/batidiff/batidiff"
	"github.com/rubenv/batidiff/export"
	"github.com/rubenv/batidiff/metrics"
	"github.com/rubenv/batidiff/osmfile"
	"github.com/rubenv/batidiff/report"
	"github.com/rubenv/batidiff/shapefile"
)

type CmdDiff struct {
	global *GlobalOptions

	Output      string  `short:"o" long:"output" default:"batidiff" description:"Prefix of the output files"`
	MinDistance float64 `long:"min" description:"Distance below which buildings are identical"`
	MaxDistance float64 `long:"max" description:"Distance above which buildings are unrelated"`
	KeepMeta    bool    `long:"keep-meta" description:"Keep versions, users and timestamps in OSM output"`
	DebugOSM    bool    `long:"debug-osm" description:"Write the grid and centroids as an OSM file"`
	GeoJSON     bool    `long:"geojson" description:"Write a GeoJSON layer"`
	TopoJSON    bool    `long:"topojson" description:"Write a TopoJSON layer"`
	Shapefile   bool    `long:"shapefile" description:"Write a shapefile layer"`
	Metrics     string  `long:"metrics" description:"Write prometheus metrics to this textfile"`
	NoProgress  bool    `long:"no-progress" description:"Hide the progress bar"`
}

func init() {
	_, err := parser.AddCommand("diff",
		"Compare two snapshots",
		"Classify the buildings of two snapshots of the same area and write them by status",
		&CmdDiff{global: &globalOpts})
	if err != nil {
		panic(err)
	}
}

func (cmd CmdDiff) Usage() string {
	return "old.osm new.osm"
}

func (cmd CmdDiff) Execute(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("Options missing, Usage: %s", cmd.Usage())
	}

	cfg, log, err := cmd.global.Setup()
	if err != nil {
		return err
	}
	if cmd.MinDistance > 0 {
		cfg.MinIdenticalDistance = cmd.MinDistance
	}
	if cmd.MaxDistance > 0 {
		cfg.MaxMatchDistance = cmd.MaxDistance
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	old, oldDoc, err := cmd.global.ReadSnapshot(ctx, args[0])
	if err != nil {
		return fmt.Errorf("Failed to read %s: %w", args[0], err)
	}
	log.Info("Snapshot read", "file", args[0], "buildings", len(old.Outer()))

	new, newDoc, err := cmd.global.ReadSnapshot(ctx, args[1])
	if err != nil {
		return fmt.Errorf("Failed to read %s: %w", args[1], err)
	}
	log.Info("Snapshot read", "file", args[1], "buildings", len(new.Outer()))
	read := time.Since(start)

	diff := batidiff.NewDiff(old, new).Config(cfg).Logger(log)
	var bar *pb.ProgressBar
	if !cmd.NoProgress {
		bar = pb.New(diff.Total())
		bar.Output = os.Stderr
		bar.Prefix("Matching ")
		bar.Start()
		diff.Progress(func() { bar.Increment() })
	}
	r, err := diff.Run(ctx)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	log.Info("Diff done",
		"zones", r.Zones,
		"comparisons", r.Comparisons,
		"unchanged", new.Count(batidiff.StatusUnchanged),
		"modified", new.Count(batidiff.StatusModified),
		"new", new.Count(batidiff.StatusNew),
		"deleted", old.Count(batidiff.StatusDeleted),
		"elapsed", r.Elapsed)

	return cmd.write(r, oldDoc, newDoc, read, log)
}

func byStatus(buildings []*batidiff.Building, status batidiff.Status) []*batidiff.Building {
	result := make([]*batidiff.Building, 0)
	for _, b := range buildings {
		if b.Status == status {
			result = append(result, b)
		}
	}
	return result
}

func (cmd CmdDiff) write(r *batidiff.Result, oldDoc, newDoc *osmfile.Document, read time.Duration, log *slog.Logger) error {
	files := report.FileNames(cmd.Output, r)

	outputs := []struct {
		status    batidiff.Status
		doc       *osmfile.Document
		buildings []*batidiff.Building
	}{
		{batidiff.StatusUnchanged, newDoc, r.New.Outer()},
		{batidiff.StatusModified, newDoc, r.New.Outer()},
		{batidiff.StatusNew, newDoc, r.New.Outer()},
		{batidiff.StatusDeleted, oldDoc, r.Old.Outer()},
	}
	for _, o := range outputs {
		buildings := byStatus(o.buildings, o.status)
		err := writeFile(files[o.status], func(w io.Writer) error {
			return osmfile.Write(w, o.doc, buildings, cmd.KeepMeta)
		})
		if err != nil {
			return err
		}
		log.Debug("Output written", "file", files[o.status], "buildings", len(buildings))
	}

	err := writeFile(cmd.Output+"_log.txt", func(w io.Writer) error {
		return report.Write(w, &report.Report{
			Result: r,
			Read:   read,
			Files:  files,
		})
	})
	if err != nil {
		return err
	}

	if cmd.DebugOSM {
		err := writeFile(cmd.Output+"_debug.osm", func(w io.Writer) error {
			return osmfile.WriteDebug(w, r)
		})
		if err != nil {
			return err
		}
	}

	if cmd.GeoJSON {
		err := writeFile(cmd.Output+".geojson", func(w io.Writer) error {
			data, err := export.GeoJSON(r).MarshalJSON()
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		})
		if err != nil {
			return err
		}
	}

	if cmd.TopoJSON {
		err := writeFile(cmd.Output+".topojson", func(w io.Writer) error {
			return json.NewEncoder(w).Encode(export.TopoJSON(r, 1e6))
		})
		if err != nil {
			return err
		}
	}

	if cmd.Shapefile {
		buildings := append(r.New.Outer(), byStatus(r.Old.Outer(), batidiff.StatusDeleted)...)
		err := shapefile.Write(cmd.Output+".shp", buildings)
		if err != nil {
			return err
		}
	}

	if cmd.Metrics != "" {
		m := metrics.New()
		m.Observe(r)
		err := m.WriteTextfile(cmd.Metrics)
		if err != nil {
			return err
		}
	}
	return nil
}
