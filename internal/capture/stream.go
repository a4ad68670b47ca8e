package capture

import (
	"math"
	"sync"

	"github.com/Nu-Pan/aynime-capture/internal/clock"
	"github.com/Nu-Pan/aynime-capture/internal/errs"
)

// Engine is what a platform-specific capture engine (engine_windows.go's WGC
// worker, engine_other.go's fake source) must provide to the Stream facade:
// a way to start producing frames into a ring and a way to stop.
type Engine interface {
	Start() error
	Stop()
}

// Stream is the public handle binding one capture engine to its ring (spec
// §4.I / §3's "Stream" composite): GPU context handle, ring, engine worker,
// stop signal, error channel.
type Stream struct {
	mu       sync.Mutex
	clockSrc *clock.Source
	ring     *Ring
	engine   Engine
	errCh    *errs.Channel
	dev      Device
	metrics  *StreamMetrics
	closed   bool
}

// NewStream wires a ring, engine, error channel, clock, and GPU device into
// a Stream and starts the engine. Callers (OpenWindow/OpenMonitor) are
// responsible for constructing ring/engine/dev appropriately for the
// platform. metrics may be nil.
func NewStream(clockSrc *clock.Source, ring *Ring, engine Engine, errCh *errs.Channel, dev Device, metrics *StreamMetrics) (*Stream, error) {
	s := &Stream{clockSrc: clockSrc, ring: ring, engine: engine, errCh: errCh, dev: dev, metrics: metrics}
	if err := engine.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkOpen implements the pre-call contract from spec §4.I: check the
// closed flag, then drain the error channel; a pending error also closes
// the stream.
func (s *Stream) checkOpen() error {
	if s.closed {
		return errs.FromSentinel(errs.KindStreamClosed, errs.ErrStreamClosed)
	}
	if e := s.errCh.ThrowOut(); e != nil {
		s.closeLocked()
		return e
	}
	return nil
}

// CreateSession drains the error channel, then constructs a Session from the
// current ring contents (spec §4.I create_session).
func (s *Stream) CreateSession(durationSeconds float64, fps *float64) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	now := s.clockSrc.Now()
	freq := s.clockSrc.FreqHz()
	ageOf := func(ts int64) float64 { return s.clockSrc.DurationSeconds(now - ts) }
	return NewSession(s.ring, now, freq, ageOf, durationSeconds, fps), nil
}

// GetFrameByTime is the convenience path from spec §4.I get_frame_by_time:
// drains the error channel, reads the most-recent matching frame directly
// from the ring, and performs readback inline. Returns ok=false if the ring
// is empty.
func (s *Stream) GetFrameByTime(t float64) (width, height int, buf []byte, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, 0, nil, false, err
	}

	now := s.clockSrc.Now()
	ageOf := func(ts int64) float64 { return s.clockSrc.DurationSeconds(now - ts) }

	entries := s.ring.SnapshotRange(now, ageOf, math.Inf(1))
	if len(entries) == 0 {
		return 0, 0, nil, false, nil
	}
	idx, err := NearestByAge(entries, t)
	if err != nil {
		return 0, 0, nil, false, nil
	}
	w, h, b, err := Readback(s.dev, entries[idx].record.Texture)
	if err != nil {
		return 0, 0, nil, false, err
	}
	return w, h, b, true, nil
}

// Dev returns the readback device bound to this stream, for callers driving
// Session.GetFrame/GetFrames directly (cmd/aynime-capture's snapshot -n path).
func (s *Stream) Dev() Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dev
}

// Metrics returns a point-in-time snapshot of this stream's frame counters.
func (s *Stream) Metrics() StreamMetricsSnapshot {
	return s.metrics.Snapshot()
}

// Close is idempotent: sets the stop event, joins the worker, clears the
// ring (spec §4.I close).
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Stream) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.engine.Stop()
	s.ring.Clear()
	s.errCh.DropWithPending()
}

