// Package metrics records build pass statistics with Prometheus.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Recorder implements ports.Metrics on a private registry.
// When a textfile is configured, Flush writes it in the node-exporter textfile format.
type Recorder struct {
	registry *prometheus.Registry
	textfile string

	passes      *prometheus.CounterVec
	changes     *prometheus.CounterVec
	affected    prometheus.Histogram
	rounds      prometheus.Histogram
	duration    prometheus.Histogram
	rebuilds    prometheus.Counter
	corruptions prometheus.Counter
}

var _ ports.Metrics = (*Recorder)(nil)

// New creates a Recorder. An empty textfile makes Flush a no-op.
func New(textfile string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		textfile: textfile,
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depcache_passes_total",
			Help: "Total number of build passes, by outcome.",
		}, []string{"outcome"}),
		changes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depcache_class_changes_total",
			Help: "Total number of classified classes, by change kind.",
		}, []string{"kind"}),
		affected: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "depcache_affected_classes",
			Help:    "Number of classes scheduled for recompilation per pass.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		rounds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "depcache_propagation_rounds",
			Help:    "Number of propagation rounds per pass.",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "depcache_pass_seconds",
			Help:    "Time spent computing and committing a build pass.",
			Buckets: prometheus.DefBuckets,
		}),
		rebuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "depcache_rebuilds_total",
			Help: "Total number of passes that rebuilt the cache from scratch.",
		}),
		corruptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "depcache_cache_corruptions_total",
			Help: "Total number of discarded corrupted caches.",
		}),
	}
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObservePass records one completed build pass.
func (r *Recorder) ObservePass(result *domain.PassResult, elapsed time.Duration) {
	outcome := "pending"
	if result.Committed {
		outcome = "committed"
	}
	r.passes.WithLabelValues(outcome).Inc()

	for _, kind := range result.Changes {
		r.changes.WithLabelValues(kind.String()).Inc()
	}
	r.affected.Observe(float64(len(result.Affected)))
	r.rounds.Observe(float64(result.Rounds))
	r.duration.Observe(elapsed.Seconds())
	if result.Rebuild {
		r.rebuilds.Inc()
	}
}

// ObserveCorruption records a discarded cache.
func (r *Recorder) ObserveCorruption() {
	r.corruptions.Inc()
}

// Flush writes all metrics to the textfile.
func (r *Recorder) Flush() error {
	if r.textfile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.textfile), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create metrics directory"), "path", r.textfile)
	}
	if err := prometheus.WriteToTextfile(r.textfile, r.registry); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write metrics textfile"), "path", r.textfile)
	}
	return nil
}
