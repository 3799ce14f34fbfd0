package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ryo-makiyama/sessionview/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	recomputes      prometheus.Counter
	viewErrors      *prometheus.CounterVec
	droppedSnaps    prometheus.Counter
	taps            prometheus.Counter
	flushes         *prometheus.CounterVec
	flushBatchSize  prometheus.Histogram
	pendingGauge    prometheus.Gauge
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "sessionview" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "sessionview"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.recomputes = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "viewstate",
			Name:      "recomputes_total",
			Help:      "Total view-state recomputations triggered by source emissions.",
		})

		p.viewErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "viewstate",
			Name:      "errors_total",
			Help:      "Total errors surfaced into the view state by kind.",
		}, []string{"kind"})

		p.droppedSnaps = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "viewstate",
			Name:      "snapshots_dropped_total",
			Help:      "Snapshot notifications dropped because a subscriber was slow.",
		})

		p.taps = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coalescer",
			Name:      "taps_total",
			Help:      "Total thumbs-up taps entering the coalescer.",
		})

		p.flushes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coalescer",
			Name:      "flushes_total",
			Help:      "Coalesced write attempts by result (success,failure).",
		}, []string{"result"})

		p.flushBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "coalescer",
			Name:      "flush_batch_size",
			Help:      "Number of taps batched into each coalesced write.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		})

		p.pendingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "coalescer",
			Name:      "pending_increments",
			Help:      "Current optimistic pending increment count.",
		})

		p.reg.MustRegister(p.recomputes)
		p.reg.MustRegister(p.viewErrors)
		p.reg.MustRegister(p.droppedSnaps)
		p.reg.MustRegister(p.taps)
		p.reg.MustRegister(p.flushes)
		p.reg.MustRegister(p.flushBatchSize)
		p.reg.MustRegister(p.pendingGauge)
	})
}

// RecordRecompute increments the recomputation counter.
func (p *PrometheusCollector) RecordRecompute() {
	p.ensureRegistered()
	p.recomputes.Inc()
}

// RecordViewError increments the view error counter for the given kind.
func (p *PrometheusCollector) RecordViewError(kind string) {
	p.ensureRegistered()
	p.viewErrors.WithLabelValues(kind).Inc()
}

// RecordSnapshotDropped increments the dropped snapshot counter.
func (p *PrometheusCollector) RecordSnapshotDropped() {
	p.ensureRegistered()
	p.droppedSnaps.Inc()
}

// RecordTap increments the tap counter.
func (p *PrometheusCollector) RecordTap() {
	p.ensureRegistered()
	p.taps.Inc()
}

// RecordFlush records a flush outcome and observes the batch size.
func (p *PrometheusCollector) RecordFlush(count int, success bool) {
	p.ensureRegistered()

	result := "success"
	if !success {
		result = "failure"
	}
	p.flushes.WithLabelValues(result).Inc()
	p.flushBatchSize.Observe(float64(count))
}

// SetPendingIncrements sets the pending increment gauge.
func (p *PrometheusCollector) SetPendingIncrements(count int) {
	p.ensureRegistered()
	p.pendingGauge.Set(float64(count))
}
