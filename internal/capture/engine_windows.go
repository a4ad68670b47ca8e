//go:build windows

package capture

import (
	"sync"

	"github.com/Nu-Pan/aynime-capture/internal/clock"
	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/gpu"
	"github.com/Nu-Pan/aynime-capture/internal/logging"
	"github.com/Nu-Pan/aynime-capture/internal/wgcwin"
)

var engineLog = logging.L("capture.engine")

const framePoolBufferCount = 3

// wgcEngine is the real Windows Graphics Capture engine (spec §4.G). One
// instance owns one dedicated apartment-thread worker per Stream.
type wgcEngine struct {
	target  Target
	opts    Options
	ring    *Ring
	errCh   *errs.Channel
	clock   *clock.Source
	gctx    *gpu.Context
	resize  ResizeFunc
	metrics *StreamMetrics

	stop            *wgcwin.StopEvent
	wg              sync.WaitGroup
	reinitAttempted bool
}

// ResizeFunc is the external resize collaborator contract from spec §6:
// resize(src, w, h) -> tex. internal/resize supplies the default.
type ResizeFunc func(dev *gpu.Context, src uintptr, w, h int) (uintptr, error)

// NewWGCEngine builds an engine bound to t, publishing into ring and posting
// errors to errCh. metrics may be nil; every counter update tolerates it.
func NewWGCEngine(t Target, opts Options, ring *Ring, errCh *errs.Channel, clockSrc *clock.Source, gctx *gpu.Context, resize ResizeFunc, metrics *StreamMetrics) *wgcEngine {
	return &wgcEngine{target: t, opts: opts, ring: ring, errCh: errCh, clock: clockSrc, gctx: gctx, resize: resize, metrics: metrics}
}

// Start spawns the apartment-thread worker and blocks until the
// initialization sequence (spec §4.G steps 1-10) either completes or fails.
func (e *wgcEngine) Start() error {
	stop, err := wgcwin.NewStopEvent()
	if err != nil {
		return errs.New(errs.KindPlatformUnsupported, "create stop event").WithContext("cause", err.Error())
	}
	e.stop = stop

	ready := make(chan error, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.runWorker(ready)
	}()
	return <-ready
}

// Stop signals the worker and joins it (shutdown driven from Stream.Close).
func (e *wgcEngine) Stop() {
	if e.stop != nil {
		e.stop.Signal()
	}
	e.wg.Wait()
	if e.stop != nil {
		e.stop.Close()
	}
}

func (e *wgcEngine) runWorker(ready chan<- error) {
	defer func() {
		if r := recover(); r != nil {
			perr := errs.Newf(errs.KindInternalInvariant, "capture engine panic: %v", r)
			e.errCh.ThrowIn(perr)
			// Unblock Start if the panic hit before ready was sent.
			select {
			case ready <- perr:
			default:
			}
		}
	}()

	apartment, err := wgcwin.Init()
	if err != nil {
		ready <- errs.New(errs.KindPlatformUnsupported, "apartment init").WithContext("cause", err.Error())
		return
	}
	defer apartment.Uninit()
	defer apartment.ShutdownDispatcherQueue()

	wrappedDevice, err := wgcwin.WrapDevice(e.gctx.Device())
	if err != nil {
		ready <- errs.New(errs.KindPlatformUnsupported, "wrap D3D11 device as WinRT device").WithContext("cause", err.Error())
		return
	}

	item, err := e.createItem()
	if err != nil {
		ready <- errs.New(errs.KindTargetInvalid, "create capture item").WithContext("cause", err.Error())
		return
	}
	defer item.Release()

	width, height, err := item.Size()
	if err != nil {
		ready <- errs.New(errs.KindTargetInvalid, "query initial content size").WithContext("cause", err.Error())
		return
	}

	pool, err := wgcwin.CreateFramePool(wrappedDevice, width, height, framePoolBufferCount)
	if err != nil {
		ready <- errs.New(errs.KindPlatformUnsupported, "create frame pool").WithContext("cause", err.Error())
		return
	}
	defer pool.Close()

	session, err := wgcwin.CreateCaptureSession(pool, item)
	if err != nil {
		ready <- errs.New(errs.KindPlatformUnsupported, "create capture session").WithContext("cause", err.Error())
		return
	}
	defer session.Close()

	session.SetIncludeCursor(e.opts.IncludeCursor)
	session.SetBorderRequired(e.opts.BorderRequired)
	session.SetIncludeSecondaryWindows(e.opts.IncludeSecondaryWindows)

	latestW, latestH := width, height
	pool.RegisterFrameArrived(func() {
		e.onFrameArrived(pool, wrappedDevice, &latestW, &latestH)
	})
	defer pool.RevokeFrameArrived()

	if err := session.StartCapture(); err != nil {
		ready <- errs.New(errs.KindPlatformUnsupported, "StartCapture").WithContext("cause", err.Error())
		return
	}

	ready <- nil

	wgcwin.RunLoop(e.stop, func() bool { return e.errCh.HasPending() })
}

func (e *wgcEngine) createItem() (*wgcwin.CaptureItem, error) {
	if e.target.IsMonitor {
		return wgcwin.CreateForMonitor(e.target.Handle)
	}
	return wgcwin.CreateForWindow(e.target.Handle)
}

// onFrameArrived implements spec §4.G's frame-arrived handler, draining to
// the latest frame, handling dynamic resize, and publishing into the ring.
func (e *wgcEngine) onFrameArrived(pool *wgcwin.FramePool, wrappedDevice uintptr, latestW, latestH *int) {
	var framePtr uintptr
	for {
		next, err := pool.TryGetNextFrame()
		if err != nil {
			if (wgcwin.IsAccessLost(err) || wgcwin.IsDeviceRemoved(err)) && e.reinitAttempted {
				e.errCh.ThrowIn(errs.New(errs.KindPlatformUnsupported, "access lost again after frame pool reinit").WithContext("cause", err.Error()))
				return
			}
			if wgcwin.IsAccessLost(err) || wgcwin.IsDeviceRemoved(err) {
				e.reinitAttempted = true
				engineLog.Warn("DXGI/WGC access lost, reinitializing frame pool", "cause", err, "target", e.target)
				if rerr := pool.Recreate(wrappedDevice, int32(*latestW), int32(*latestH), framePoolBufferCount); rerr != nil {
					engineLog.Warn("frame pool reinit failed, giving up", "cause", rerr)
					e.errCh.ThrowIn(errs.New(errs.KindPlatformUnsupported, "frame pool reinit after access lost").WithContext("cause", rerr.Error()))
				}
				return
			}
			e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "TryGetNextFrame").WithContext("cause", err.Error()))
			return
		}
		if next == 0 {
			break
		}
		if framePtr != 0 {
			wgcwin.WrapFrame(framePtr).Close()
			e.metrics.recordDropped()
		}
		framePtr = next
	}
	if framePtr == 0 {
		return
	}
	frame := wgcwin.WrapFrame(framePtr)
	defer frame.Close()

	contentW, contentH, err := frame.ContentSize()
	if err != nil {
		e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "ContentSize").WithContext("cause", err.Error()))
		return
	}
	if int(contentW) != *latestW || int(contentH) != *latestH {
		if err := pool.Recreate(wrappedDevice, contentW, contentH, framePoolBufferCount); err != nil {
			e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "Recreate frame pool").WithContext("cause", err.Error()))
			return
		}
		*latestW, *latestH = int(contentW), int(contentH)

		// The ring was sized against the old content dimensions; a retained
		// frame at the old size is geometrically inconsistent with frames
		// published after this point, so resize-and-drop per spec §4.E
		// rather than let capacity drift out of sync with the new per-frame
		// memory cost.
		optW, optH := optimalSize(int(contentW), int(contentH), e.opts.MaxWidth, e.opts.MaxHeight)
		newFrameBytes := int64(optW) * int64(optH) * 4
		e.ring.Resize(ringCapacity(e.opts, newFrameBytes))
		e.metrics.recordResize()
	}

	surface, err := frame.Surface()
	if err != nil {
		e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "Surface").WithContext("cause", err.Error()))
		return
	}
	srcTex, err := wgcwin.TextureFromSurface(surface)
	if err != nil {
		e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "TextureFromSurface").WithContext("cause", err.Error()))
		return
	}

	srcW, srcH, format := wgcwin.TextureDesc(srcTex)
	optW, optH := optimalSize(int(srcW), int(srcH), e.opts.MaxWidth, e.opts.MaxHeight)

	var ownedTex uintptr
	if optW == int(srcW) && optH == int(srcH) {
		// DEFAULT usage, no bind flags: the ring/session/readback path only
		// ever CopyResources out of or Maps a staging copy of this texture.
		tex, err := e.gctx.Device().CreateTexture2D(srcW, srcH, format, 0, 0, 0)
		if err != nil {
			e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "CreateTexture2D").WithContext("cause", err.Error()))
			return
		}
		e.gctx.Device().CopyResource(tex, srcTex)
		ownedTex = tex
	} else if e.resize != nil {
		tex, err := e.resize(e.gctx, srcTex, optW, optH)
		if err != nil {
			e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "resize").WithContext("cause", err.Error()))
			return
		}
		ownedTex = tex
	} else {
		e.errCh.ThrowIn(errs.New(errs.KindInternalInvariant, "no resize collaborator configured for non-identity scale"))
		return
	}

	ts, err := frame.SystemRelativeTimeTicks()
	if err != nil {
		ts = e.clock.Now()
	}
	e.ring.Push(&FrameRecord{Texture: ownedTex, Timestamp: ts, Width: optW, Height: optH})
	e.metrics.recordPublished()
}
