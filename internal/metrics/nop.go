// Package metrics provides types.MetricsCollector implementations.
package metrics

import "github.com/ryo-makiyama/sessionview/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external metrics
// collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	collector := metrics.NewNop()
//	ctrl, err := sessionview.NewController(&cfg, repo, sessionview.WithMetrics(collector))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ControllerMetrics implementation

// RecordRecompute discards the recomputation metric.
func (n *NopMetrics) RecordRecompute() {
	// No-op
}

// RecordViewError discards the view error metric.
func (n *NopMetrics) RecordViewError(_ /* kind */ string) {
	// No-op
}

// RecordSnapshotDropped discards the dropped snapshot metric.
func (n *NopMetrics) RecordSnapshotDropped() {
	// No-op
}

// CoalescerMetrics implementation

// RecordTap discards the tap metric.
func (n *NopMetrics) RecordTap() {
	// No-op
}

// RecordFlush discards the flush metric.
func (n *NopMetrics) RecordFlush(_ /* count */ int, _ /* success */ bool) {
	// No-op
}

// SetPendingIncrements discards the pending increments gauge.
func (n *NopMetrics) SetPendingIncrements(_ /* count */ int) {
	// No-op
}
