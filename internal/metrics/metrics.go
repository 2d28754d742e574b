// Package metrics records consolidation runs as Prometheus metrics and
// writes them in text format for the node-exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ugoscholars/scholardb/pkg/reconciler"
)

const namespace = "scholardb"

// Recorder owns a private registry so runs never touch the global one.
type Recorder struct {
	registry *prometheus.Registry

	updated       prometheus.Counter
	added         prometheus.Counter
	skipped       *prometheus.CounterVec
	masterRecords prometheus.Gauge
	lastRun       prometheus.Gauge
	duration      prometheus.Histogram
}

// New creates a Recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_updated_total",
			Help:      "Master records matched and updated by consolidation.",
		}),
		added: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_added_total",
			Help:      "Master records created by consolidation.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_skipped_total",
			Help:      "Source sheets skipped, by reason.",
		}, []string{"reason"}),
		masterRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "master_records",
			Help:      "Rows in the master table after the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of consolidation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
	r.registry.MustRegister(r.updated, r.added, r.skipped, r.masterRecords, r.lastRun, r.duration)

	for _, reason := range []string{reconciler.ReasonMissing, reconciler.ReasonNoNameColumn, reconciler.ReasonUnreadable} {
		r.skipped.WithLabelValues(reason)
	}
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe adds a finished run to the metrics.
func (r *Recorder) Observe(res *reconciler.Result) {
	if res == nil {
		return
	}
	r.updated.Add(float64(res.Stats.Updated))
	r.added.Add(float64(res.Stats.Added))
	for _, s := range res.Skipped {
		r.skipped.WithLabelValues(s.Reason).Inc()
	}
	r.masterRecords.Set(float64(res.Stats.Total))
	r.duration.Observe(res.Metadata.Duration.Seconds())
	if !res.Metadata.EndTime.IsZero() {
		r.lastRun.Set(float64(res.Metadata.EndTime.Unix()))
	}
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
