package capture

import (
	"testing"
	"time"

	"github.com/Nu-Pan/aynime-capture/internal/clock"
	"github.com/Nu-Pan/aynime-capture/internal/errs"
)

func newTestStream(t *testing.T, opts Options) (*Stream, *Ring) {
	t.Helper()
	clockSrc, err := clock.New()
	if err != nil {
		t.Fatalf("clock.New: %v", err)
	}
	ring := NewRing(ringCapacity(opts, 0), nil)
	errCh := errs.NewChannel(nil)
	engine := NewWGCEngine(WindowTarget(1), opts, ring, errCh, clockSrc, nil, nil, nil)

	surface := newFakeSurface(4, 4, 0)
	dev := fakeDeviceFor(surface)

	stream, err := NewStream(clockSrc, ring, engine, errCh, dev, nil)
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	return stream, ring
}

func TestStreamCreateSessionAfterFramesArrive(t *testing.T) {
	opts := Options{BufferSeconds: 1, TargetFPS: 200}
	stream, _ := newTestStream(t, opts)
	defer stream.Close()

	time.Sleep(50 * time.Millisecond)

	sess, err := stream.CreateSession(1000, nil)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sess.Len() == 0 {
		t.Fatal("expected at least one frame to have arrived")
	}
}

func TestStreamGetFrameByTimeBeforeAnyFrame(t *testing.T) {
	opts := Options{BufferSeconds: 1, TargetFPS: 1}
	stream, _ := newTestStream(t, opts)
	defer stream.Close()

	_, _, _, ok, err := stream.GetFrameByTime(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false before any frame arrives")
	}
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	opts := Options{BufferSeconds: 1, TargetFPS: 30}
	stream, _ := newTestStream(t, opts)

	stream.Close()
	stream.Close() // must not panic or double-close channels

	if _, err := stream.CreateSession(1, nil); err == nil {
		t.Fatal("expected error creating a session on a closed stream")
	}
}

func TestStreamOperationsFailAfterPostedError(t *testing.T) {
	opts := Options{BufferSeconds: 1, TargetFPS: 30}
	stream, _ := newTestStream(t, opts)
	defer stream.Close()

	stream.errCh.ThrowIn(errs.New(errs.KindGpuInitFailed, "simulated engine failure"))

	if _, err := stream.CreateSession(1, nil); err == nil {
		t.Fatal("expected CreateSession to surface the posted error")
	}
	// Stream should now be closed as a side effect of draining the error.
	if _, err := stream.CreateSession(1, nil); err == nil {
		t.Fatal("expected stream closed after posted error was drained")
	}
}
