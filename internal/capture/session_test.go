package capture

import (
	"context"
	"testing"

	"github.com/Nu-Pan/aynime-capture/internal/workerpool"
)

func ageOfTicks(now int64) func(int64) float64 {
	return func(ts int64) float64 { return float64(now - ts) }
}

func buildRing(t *testing.T, capacity int, count int) *Ring {
	t.Helper()
	r := NewRing(capacity, nil)
	for i := int64(1); i <= int64(count); i++ {
		r.Push(&FrameRecord{Texture: uintptr(i), Timestamp: i, Width: 8, Height: 8})
	}
	return r
}

func TestNewSessionIdentityMapWithoutFPS(t *testing.T) {
	r := buildRing(t, 4, 4)
	s := NewSession(r, 5, 1, ageOfTicks(5), 1000, nil)

	if s.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", s.Len())
	}
	// newest-first: texture 4 arrived at tick 4, closest to now=5.
	if s.entries[s.userToRaw[0]].record.Texture != 4 {
		t.Fatalf("expected newest-first record texture 4, got %d", s.entries[s.userToRaw[0]].record.Texture)
	}
}

func TestSessionRemapToFPSProducesRequestedCount(t *testing.T) {
	r := buildRing(t, 10, 10)
	fps := 2.0
	s := NewSession(r, 11, 1, ageOfTicks(11), 5, &fps)

	want := int(5 * fps)
	if s.Len() != want {
		t.Fatalf("Len() = %d, want %d", s.Len(), want)
	}
}

func TestSessionGetFrameByIndex(t *testing.T) {
	r := buildRing(t, 4, 2)
	s := NewSession(r, 3, 1, ageOfTicks(3), 1000, nil)

	surface := newFakeSurface(8, 8, 0)
	dev := fakeDeviceFor(surface)

	w, h, buf, err := s.GetFrame(dev, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 8 || h != 8 || len(buf) != 8*8*3 {
		t.Fatalf("unexpected frame shape: w=%d h=%d len=%d", w, h, len(buf))
	}
}

func TestSessionGetFrameOutOfRange(t *testing.T) {
	r := buildRing(t, 4, 2)
	s := NewSession(r, 3, 1, ageOfTicks(3), 1000, nil)

	_, _, _, err := s.GetFrame(Device{}, 99)
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestSessionGetFrameAfterCloseFails(t *testing.T) {
	r := buildRing(t, 4, 2)
	s := NewSession(r, 3, 1, ageOfTicks(3), 1000, nil)
	s.Close()

	_, _, _, err := s.GetFrame(Device{}, 0)
	if err == nil {
		t.Fatal("expected error reading from closed session")
	}
}

func TestSessionGetIndexByTime(t *testing.T) {
	r := buildRing(t, 4, 4)
	s := NewSession(r, 5, 1, ageOfTicks(5), 1000, nil)

	idx := s.GetIndexByTime(0)
	if idx < 0 || idx >= s.Len() {
		t.Fatalf("GetIndexByTime returned out-of-range index %d", idx)
	}
}

func TestSessionGetIndexByTimeEmptyReturnsSentinel(t *testing.T) {
	r := NewRing(4, nil)
	s := NewSession(r, 0, 1, ageOfTicks(0), 1000, nil)
	if idx := s.GetIndexByTime(0); idx != -1 {
		t.Fatalf("expected -1 for empty session, got %d", idx)
	}
}

func TestSessionGetFramesSequentialWithoutPool(t *testing.T) {
	r := buildRing(t, 4, 3)
	s := NewSession(r, 4, 1, ageOfTicks(4), 1000, nil)

	surface := newFakeSurface(4, 4, 0)
	dev := fakeDeviceFor(surface)

	results := s.GetFrames(dev, nil, []int{0, 1, 2})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected error for index %d: %v", r.Index, r.Err)
		}
		if len(r.Buf) != 4*4*3 {
			t.Fatalf("unexpected buf len %d for index %d", len(r.Buf), r.Index)
		}
	}
}

func TestSessionGetFramesConcurrentWithPool(t *testing.T) {
	r := buildRing(t, 8, 6)
	s := NewSession(r, 7, 1, ageOfTicks(7), 1000, nil)

	surface := newFakeSurface(4, 4, 0)
	dev := fakeDeviceFor(surface)

	pool := workerpool.New(3, 16)
	defer pool.Shutdown(context.Background())

	results := s.GetFrames(dev, pool, []int{0, 1, 2, 3, 4, 5})
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Fatalf("results out of order: results[%d].Index = %d", i, r.Index)
		}
		if r.Err != nil {
			t.Fatalf("unexpected error for index %d: %v", r.Index, r.Err)
		}
	}
}
