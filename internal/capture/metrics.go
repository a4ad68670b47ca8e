package capture

import "sync/atomic"

// StreamMetrics is a read-only diagnostics counter set for a Stream: frames
// actually published to the ring, frames drained-and-dropped because a
// newer one arrived before the last was consumed, and dynamic resize
// events. It is not part of spec.md's state machine (§9's "Apartment
// confinement" note only requires coalescing-to-latest, not that the
// coalesce count be observable) — an ambient extension for host telemetry,
// grounded on the teacher's StreamMetrics-equivalent counters in
// stream_metrics.go.
type StreamMetrics struct {
	framesPublished uint64
	framesDropped   uint64
	resizeEvents    uint64
}

// StreamMetricsSnapshot is a point-in-time copy of StreamMetrics, safe to
// hand to a caller without exposing the underlying atomics.
type StreamMetricsSnapshot struct {
	FramesPublished uint64
	FramesDropped   uint64
	ResizeEvents    uint64
}

func (m *StreamMetrics) recordPublished() {
	if m != nil {
		atomic.AddUint64(&m.framesPublished, 1)
	}
}

func (m *StreamMetrics) recordDropped() {
	if m != nil {
		atomic.AddUint64(&m.framesDropped, 1)
	}
}

func (m *StreamMetrics) recordResize() {
	if m != nil {
		atomic.AddUint64(&m.resizeEvents, 1)
	}
}

// Snapshot reads all counters. Safe to call on a nil receiver (returns a
// zero snapshot), mirroring the nil-tolerant recordX helpers above.
func (m *StreamMetrics) Snapshot() StreamMetricsSnapshot {
	if m == nil {
		return StreamMetricsSnapshot{}
	}
	return StreamMetricsSnapshot{
		FramesPublished: atomic.LoadUint64(&m.framesPublished),
		FramesDropped:   atomic.LoadUint64(&m.framesDropped),
		ResizeEvents:    atomic.LoadUint64(&m.resizeEvents),
	}
}
