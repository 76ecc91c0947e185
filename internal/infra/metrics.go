package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	cyclesTotal       atomic.Uint64
	updatesAccepted   atomic.Uint64
	updatesRejected   atomic.Uint64
	submissions       atomic.Uint64
	submissionsFailed atomic.Uint64
	flattens          atomic.Uint64
	errorsTotal       atomic.Uint64

	// Cycle latency tracking (accepted cycles only)
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	feedConnected atomic.Int32 // 1 = connected
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCycle counts one controller cycle.
func (m *Metrics) RecordCycle() {
	m.cyclesTotal.Add(1)
}

// RecordAccepted counts a cycle the update gate accepted.
func (m *Metrics) RecordAccepted() {
	m.updatesAccepted.Add(1)
}

// RecordRejected counts a cycle the update gate rejected.
func (m *Metrics) RecordRejected() {
	m.updatesRejected.Add(1)
}

// RecordSubmission counts a successful order batch submission.
func (m *Metrics) RecordSubmission() {
	m.submissions.Add(1)
}

// RecordSubmissionFailed counts a failed order batch submission.
func (m *Metrics) RecordSubmissionFailed() {
	m.submissionsFailed.Add(1)
}

// RecordFlatten counts a shutdown position close.
func (m *Metrics) RecordFlatten() {
	m.flattens.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordCycleLatency records the wall time of one completed accepted cycle.
func (m *Metrics) RecordCycleLatency(latencyNs int64) {
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// SetFeedConnected sets the feed connection gauge.
func (m *Metrics) SetFeedConnected(connected bool) {
	if connected {
		m.feedConnected.Store(1)
	} else {
		m.feedConnected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	CyclesTotal       uint64
	UpdatesAccepted   uint64
	UpdatesRejected   uint64
	Submissions       uint64
	SubmissionsFailed uint64
	Flattens          uint64
	ErrorsTotal       uint64
	AvgCycleLatencyNs int64
	FeedConnected     bool
	Timestamp         time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		CyclesTotal:       m.cyclesTotal.Load(),
		UpdatesAccepted:   m.updatesAccepted.Load(),
		UpdatesRejected:   m.updatesRejected.Load(),
		Submissions:       m.submissions.Load(),
		SubmissionsFailed: m.submissionsFailed.Load(),
		Flattens:          m.flattens.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		AvgCycleLatencyNs: avgLatency,
		FeedConnected:     m.feedConnected.Load() == 1,
		Timestamp:         time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.cyclesTotal.Store(0)
	m.updatesAccepted.Store(0)
	m.updatesRejected.Store(0)
	m.submissions.Store(0)
	m.submissionsFailed.Store(0)
	m.flattens.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.feedConnected.Store(0)
}
