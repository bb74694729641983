// Package observability provides run metrics and tracing for the pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics of one process. A batch run has no scrape endpoint, so the
// registry is written to a node exporter textfile at the end of a run.
type Metrics struct {
	registry *prometheus.Registry

	Runs             *prometheus.CounterVec
	StageDuration    *prometheus.HistogramVec
	Elements         *prometheus.GaugeVec
	Comments         prometheus.Gauge
	InheritedTags    prometheus.Counter
	UnknownTags      prometheus.Counter
	StructuralErrors prometheus.Counter
	LastRun          prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yokedox_runs_total",
			Help: "Total number of pipeline runs by result.",
		}, []string{"result"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yokedox_stage_seconds",
			Help:    "Time spent in each pipeline stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		Elements: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yokedox_elements",
			Help: "Number of elements in the last run by kind.",
		}, []string{"kind"}),
		Comments: factory.NewGauge(prometheus.GaugeOpts{
			Name: "yokedox_comments",
			Help: "Number of documentation comments parsed in the last run.",
		}),
		InheritedTags: factory.NewCounter(prometheus.CounterOpts{
			Name: "yokedox_inherited_tags_total",
			Help: "Total number of block tags copied from overridden members.",
		}),
		UnknownTags: factory.NewCounter(prometheus.CounterOpts{
			Name: "yokedox_unknown_tags_total",
			Help: "Total number of block and inline tags with an unrecognized name.",
		}),
		StructuralErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "yokedox_structural_errors_total",
			Help: "Total number of structural errors reported by the element walker.",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "yokedox_last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStage records the time since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
