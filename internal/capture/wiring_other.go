//go:build !windows

package capture

import (
	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/gpu"
)

// defaultReleaseFunc is a no-op off Windows: engine_other.go's fake textures
// are plain counters, never real GPU resources.
func defaultReleaseFunc(gctx *gpu.Context) ReleaseFunc {
	return func(uintptr) {}
}

// deviceFromContext returns a Device whose every call fails with
// PlatformUnsupported; fine for exercising the ring/session/stream plumbing
// in tests, since the fake engine never produces a real texture to read
// back.
func deviceFromContext(gctx *gpu.Context) Device {
	unsupported := func(string) error {
		return errs.New(errs.KindPlatformUnsupported, "texture readback requires Windows Graphics Capture")
	}
	return Device{
		TextureDims: func(tex uintptr) (int, int, uint32) { return 0, 0, 0 },
		CreateStaging: func(width, height int, format uint32) (uintptr, error) {
			return 0, unsupported("CreateStaging")
		},
		CopyResource: func(dst, src uintptr) {},
		MapRead: func(staging uintptr) (uintptr, uint32, error) {
			return 0, 0, unsupported("MapRead")
		},
		Unmap:          func(staging uintptr) {},
		ReleaseTexture: func(tex uintptr) {},
	}
}

// defaultResize is unreachable off Windows (engine_other.go never scales),
// kept only to satisfy the ResizeFunc signature shared with open.go.
func defaultResize(gctx *gpu.Context, src uintptr, w, h int) (uintptr, error) {
	return 0, errs.New(errs.KindPlatformUnsupported, "resize requires Windows Graphics Capture")
}
