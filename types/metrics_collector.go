package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces so components
// can depend on just the slice they record.
type MetricsCollector interface {
	ControllerMetrics
	CoalescerMetrics
}

// ControllerMetrics defines metrics for view-state recomputation and fan-out.
type ControllerMetrics interface {
	// RecordRecompute records one view-state recomputation triggered by a
	// source emission.
	RecordRecompute()

	// RecordViewError records an error surfacing in the view state.
	//
	// Parameters:
	//   - kind: Error kind name ("SessionLoad", "FavoriteToggle", ...)
	RecordViewError(kind string)

	// RecordSnapshotDropped records a snapshot notification dropped because
	// a subscriber was slow.
	RecordSnapshotDropped()
}

// CoalescerMetrics defines metrics for the increment coalescer.
type CoalescerMetrics interface {
	// RecordTap records one thumbs-up tap entering the coalescer.
	RecordTap()

	// RecordFlush records a completed flush attempt.
	//
	// Parameters:
	//   - count: Batched tap count written in this flush
	//   - success: true if the write succeeded, false otherwise
	RecordFlush(count int, success bool)

	// SetPendingIncrements sets the current optimistic pending count (gauge).
	SetPendingIncrements(count int)
}
