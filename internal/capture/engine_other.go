//go:build !windows

package capture

import (
	"sync"
	"time"

	"github.com/Nu-Pan/aynime-capture/internal/clock"
	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/gpu"
)

// ResizeFunc mirrors the Windows build's resize collaborator signature so
// callers compile identically on both platforms.
type ResizeFunc func(dev *gpu.Context, src uintptr, w, h int) (uintptr, error)

// fakeEngine stands in for the WGC apartment-thread worker on non-Windows
// builds. It never talks to real GPU resources — it synthesizes a tiny
// "texture" (just a counter cast to uintptr, never dereferenced) on a timer
// so internal/capture's ring/session/stream logic is exercised by tests
// without a live Windows Graphics Capture session (spec §9's ambient
// test-tooling note, the `internal/capture` entry in SPEC_FULL.md).
type fakeEngine struct {
	opts  Options
	ring  *Ring
	errCh *errs.Channel
	clock *clock.Source

	stop   chan struct{}
	wg     sync.WaitGroup
	nextID uintptr
}

// NewWGCEngine matches the Windows build's constructor shape so call sites
// in open.go don't need a build-tag split of their own. metrics is
// accepted for signature parity but unused: the fake engine never drops or
// resizes a frame.
func NewWGCEngine(t Target, opts Options, ring *Ring, errCh *errs.Channel, clockSrc *clock.Source, gctx *gpu.Context, resize ResizeFunc, metrics *StreamMetrics) *fakeEngine {
	return &fakeEngine{opts: opts, ring: ring, errCh: errCh, clock: clockSrc}
}

func (e *fakeEngine) Start() error {
	e.stop = make(chan struct{})
	e.wg.Add(1)
	go e.run()
	return nil
}

func (e *fakeEngine) Stop() {
	if e.stop != nil {
		close(e.stop)
	}
	e.wg.Wait()
}

func (e *fakeEngine) run() {
	defer e.wg.Done()
	fps := e.opts.TargetFPS
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.nextID++
			e.ring.Push(&FrameRecord{
				Texture:   e.nextID,
				Timestamp: e.clock.Now(),
				Width:     640,
				Height:    480,
			})
		}
	}
}
