package capture

import (
	"log/slog"

	"github.com/Nu-Pan/aynime-capture/internal/clock"
	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/gpu"
)

// frameBytesEstimate is used only to size the ring against
// memory_budget_bytes; the real per-frame cost is resolved once the first
// frame's dimensions are known, but a ring must be sized before any frame
// exists, so this assumes worst case BGRA8 at the requested caps (or a
// conservative 1080p default when no cap is given).
func frameBytesEstimate(opts Options) int64 {
	w, h := opts.MaxWidth, opts.MaxHeight
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}
	return int64(w) * int64(h) * 4
}

// Open is the shared construction path behind OpenWindow/OpenMonitor (spec
// §4.I construction): acquire the GPU context, size the ring, spawn the
// engine, and wrap it all in a Stream.
func Open(target Target, opts Options, log *slog.Logger) (*Stream, error) {
	gctx, err := gpu.Initialize()
	if err != nil {
		return nil, err
	}

	clockSrc, err := clock.New()
	if err != nil {
		gpu.Finalize()
		return nil, err
	}

	errCh := errs.NewChannel(log)
	ring := NewRing(ringCapacity(opts, frameBytesEstimate(opts)), defaultReleaseFunc(gctx))
	metrics := &StreamMetrics{}
	engine := NewWGCEngine(target, opts, ring, errCh, clockSrc, gctx, defaultResize, metrics)
	dev := deviceFromContext(gctx)

	stream, err := NewStream(clockSrc, ring, engine, errCh, dev, metrics)
	if err != nil {
		gpu.Finalize()
		return nil, err
	}

	if log != nil {
		diag := hostDiagnostics()
		log.Info("capture stream opened",
			"target", target,
			"os", diag.OS, "platform", diag.Platform, "platformVersion", diag.PlatformVersion,
			"uptime", diag.Uptime)
	}
	return stream, nil
}

// OpenWindow opens a live capture stream targeting a window handle.
func OpenWindow(hwnd uintptr, opts Options, log *slog.Logger) (*Stream, error) {
	return Open(WindowTarget(hwnd), opts, log)
}

// OpenMonitor opens a live capture stream targeting a monitor handle.
func OpenMonitor(hmonitor uintptr, opts Options, log *slog.Logger) (*Stream, error) {
	return Open(MonitorTarget(hmonitor), opts, log)
}
