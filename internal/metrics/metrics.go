// Package metrics exposes write and live query statistics to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nutriapp"

// Recorder collects catalog metrics on its own registry. It satisfies both
// service.MetricsRecorder and live.MetricsRecorder.
type Recorder struct {
	registry *prometheus.Registry

	writes        *prometheus.CounterVec
	writeDuration *prometheus.HistogramVec
	subscriptions *prometheus.GaugeVec
	snapshots     *prometheus.CounterVec
}

// New creates a recorder with Go runtime and process collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Completed catalog writes by operation and outcome.",
		}, []string{"operation", "status"}),
		writeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_duration_seconds",
			Help:      "Time spent executing catalog writes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"operation"}),
		subscriptions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_subscriptions",
			Help:      "Active live query subscriptions by query.",
		}, []string{"query"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_snapshots_total",
			Help:      "Live query snapshots delivered by query and outcome.",
		}, []string{"query", "status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.writes,
		r.writeDuration,
		r.subscriptions,
		r.snapshots,
	)
	return r
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Observe records a write outcome
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.writes.WithLabelValues(operation, status(success)).Inc()
	if duration > 0 {
		r.writeDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// SubscriptionOpened records a new live subscription
func (r *Recorder) SubscriptionOpened(query string) {
	r.subscriptions.WithLabelValues(query).Inc()
}

// SubscriptionClosed records a finished live subscription
func (r *Recorder) SubscriptionClosed(query string) {
	r.subscriptions.WithLabelValues(query).Dec()
}

// SnapshotDelivered records one live query delivery
func (r *Recorder) SnapshotDelivered(query string, err error) {
	r.snapshots.WithLabelValues(query, status(err == nil)).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
