package capture

import "testing"

func TestStreamMetricsSnapshotCounts(t *testing.T) {
	m := &StreamMetrics{}
	m.recordPublished()
	m.recordPublished()
	m.recordDropped()
	m.recordResize()

	snap := m.Snapshot()
	if snap.FramesPublished != 2 {
		t.Fatalf("FramesPublished = %d, want 2", snap.FramesPublished)
	}
	if snap.FramesDropped != 1 {
		t.Fatalf("FramesDropped = %d, want 1", snap.FramesDropped)
	}
	if snap.ResizeEvents != 1 {
		t.Fatalf("ResizeEvents = %d, want 1", snap.ResizeEvents)
	}
}

func TestStreamMetricsNilReceiverIsSafe(t *testing.T) {
	var m *StreamMetrics
	m.recordPublished()
	m.recordDropped()
	m.recordResize()
	if snap := m.Snapshot(); snap != (StreamMetricsSnapshot{}) {
		t.Fatalf("nil metrics snapshot = %+v, want zero value", snap)
	}
}
