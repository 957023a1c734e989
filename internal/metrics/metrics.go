package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hpo_annotate"

// Recorder collects counters for the annotation workflow. A nil *Recorder
// accepts every call and records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	judgments      *prometheus.CounterVec
	navigations    *prometheus.CounterVec
	exports        *prometheus.CounterVec
	datasetLoads   *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		judgments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "judgments_total",
			Help:      "Verdicts written to annotation tables.",
		}, []string{"variant", "verdict"}),
		navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Previous and next actions that moved the cursor.",
		}, []string{"direction"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Annotation tables serialized for download.",
		}, []string{"format"}),
		datasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
	}

	r.registry.MustRegister(
		r.judgments,
		r.navigations,
		r.exports,
		r.datasetLoads,
		r.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Judgment counts one written verdict
func (r *Recorder) Judgment(variant, verdict string) {
	if r == nil {
		return
	}
	r.judgments.WithLabelValues(variant, verdict).Inc()
}

// Navigation counts one cursor move
func (r *Recorder) Navigation(direction string) {
	if r == nil {
		return
	}
	r.navigations.WithLabelValues(direction).Inc()
}

// Export counts one produced artifact
func (r *Recorder) Export(format string) {
	if r == nil {
		return
	}
	r.exports.WithLabelValues(format).Inc()
}

// DatasetLoad counts one load attempt
func (r *Recorder) DatasetLoad(err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.datasetLoads.WithLabelValues(outcome).Inc()
}

// SetActiveSessions reports the number of live sessions
func (r *Recorder) SetActiveSessions(n int) {
	if r == nil {
		return
	}
	r.activeSessions.Set(float64(n))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{DisableCompression: true})
}
