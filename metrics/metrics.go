// Package metrics exposes the counts of a diff as prometheus metrics,
// written to a textfile for the node exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rubenv/batidiff/batidiff"
)

type Metrics struct {
	Registry *prometheus.Registry

	Buildings    *prometheus.GaugeVec
	Comparisons  prometheus.Counter
	Imbalances   prometheus.Gauge
	Corrected    prometheus.Gauge
	Degenerate   prometheus.Gauge
	Zones        prometheus.Gauge
	StepDuration *prometheus.GaugeVec
	Distance     prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Buildings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "batidiff_buildings",
			Help: "Outer buildings by snapshot and status",
		}, []string{"snapshot", "status"}),
		Comparisons: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batidiff_comparisons_total",
			Help: "Centroid distances computed while matching",
		}),
		Imbalances: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "batidiff_unbalanced_cells",
			Help: "Grid cells left unbalanced after correction",
		}),
		Corrected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "batidiff_corrected_cells",
			Help: "Grid cells where modified buildings were reclassified as new",
		}),
		Degenerate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "batidiff_degenerate_buildings",
			Help: "Buildings with a zero area ring",
		}),
		Zones: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "batidiff_grid_zones",
			Help: "Side of the grid index",
		}),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "batidiff_step_duration_seconds",
			Help: "Duration of each diff step",
		}, []string{"step"}),
		Distance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "batidiff_match_distance_meters",
			Help:    "Distance from new buildings to their closest old building",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100},
		}),
	}
	m.Registry.MustRegister(m.Buildings, m.Comparisons, m.Imbalances, m.Corrected,
		m.Degenerate, m.Zones, m.StepDuration, m.Distance)
	return m
}

var statuses = []batidiff.Status{
	batidiff.StatusUnchanged,
	batidiff.StatusModified,
	batidiff.StatusNew,
	batidiff.StatusDeleted,
	batidiff.StatusUnknown,
}

// Observe records a diff result. Distances of unmatched buildings are left
// out of the histogram.
func (m *Metrics) Observe(r *batidiff.Result) {
	for _, s := range statuses {
		m.Buildings.WithLabelValues("old", s.String()).Set(float64(r.Old.Count(s)))
		m.Buildings.WithLabelValues("new", s.String()).Set(float64(r.New.Count(s)))
	}
	m.Comparisons.Add(float64(r.Comparisons))
	m.Imbalances.Set(float64(len(r.Imbalances)))
	m.Corrected.Set(float64(r.Corrected))
	m.Degenerate.Set(float64(len(r.Degenerate)))
	m.Zones.Set(float64(r.Zones))
	for _, t := range r.Timings {
		m.StepDuration.WithLabelValues(t.Name).Set(t.Duration.Seconds())
	}

	for _, b := range r.New.Outer() {
		if b.MatchID != "" {
			m.Distance.Observe(b.MinDistance)
		}
	}
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.Registry)
}
