package capture

import "math"

// Target names what a Stream captures: a window HWND or a monitor HMONITOR.
type Target struct {
	Handle    uintptr
	IsMonitor bool
}

// WindowTarget builds a Target for a window handle.
func WindowTarget(hwnd uintptr) Target { return Target{Handle: hwnd} }

// MonitorTarget builds a Target for a monitor handle.
func MonitorTarget(hmonitor uintptr) Target { return Target{Handle: hmonitor, IsMonitor: true} }

// Options is CaptureOptions from spec §3: the configuration surface a host
// passes to OpenWindow/OpenMonitor.
type Options struct {
	BufferSeconds            float64 `mapstructure:"buffer_seconds"`
	MemoryBudgetBytes        int64   `mapstructure:"memory_budget_bytes"`
	TargetFPS                float64 `mapstructure:"target_fps"`
	IncludeCursor            bool    `mapstructure:"include_cursor"`
	BorderRequired            bool    `mapstructure:"border_required"`
	IncludeSecondaryWindows  bool    `mapstructure:"include_secondary_windows"`
	MaxWidth                 int     `mapstructure:"max_width"`
	MaxHeight                int     `mapstructure:"max_height"`
}

// DefaultOptions mirrors the original implementation's defaults: a three
// second hold, 30fps sizing hint, cursor drawn in, no border, no caps.
func DefaultOptions() Options {
	return Options{
		BufferSeconds: 3.0,
		TargetFPS:     30.0,
		IncludeCursor: true,
	}
}

const ringCapacityFloor = 1

// ringCapacity implements spec §3's Ring invariant:
//
//	capacity = clamp(1, min(ceil(buffer_seconds*target_fps), memory_budget_bytes/frame_bytes))
func ringCapacity(opts Options, frameBytes int64) int {
	byTime := int(math.Ceil(opts.BufferSeconds * opts.TargetFPS))
	capacity := byTime
	if opts.MemoryBudgetBytes > 0 && frameBytes > 0 {
		byMemory := int(opts.MemoryBudgetBytes / frameBytes)
		if byMemory < capacity {
			capacity = byMemory
		}
	}
	if capacity < ringCapacityFloor {
		capacity = ringCapacityFloor
	}
	return capacity
}

// optimalSize implements the "optimal frame size" scale-to-fit computation
// from spec §4.G step 5: never upscale, preserve aspect ratio.
func optimalSize(srcW, srcH, maxW, maxH int) (int, int) {
	if maxW <= 0 && maxH <= 0 {
		return srcW, srcH
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(srcW))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(srcH))
	}
	if scale >= 1.0 {
		return srcW, srcH
	}
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
