//go:build windows

package capture

import (
	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/gpu"
	"github.com/Nu-Pan/aynime-capture/internal/resize"
	"github.com/Nu-Pan/aynime-capture/internal/wgcwin"
)

// defaultReleaseFunc binds a Ring's eviction hook to the shared device's
// texture release, the Windows half of the injection seam ring.go defines.
func defaultReleaseFunc(gctx *gpu.Context) ReleaseFunc {
	return func(tex uintptr) {
		if tex != 0 {
			wgcwin.ReleaseTexture(tex)
		}
	}
}

// deviceFromContext adapts internal/gpu's Context to the narrow Device
// surface Readback needs.
func deviceFromContext(gctx *gpu.Context) Device {
	dev := gctx.Device()
	return Device{
		TextureDims: func(tex uintptr) (int, int, uint32) {
			w, h, format := wgcwin.TextureDesc(tex)
			return int(w), int(h), format
		},
		CreateStaging: func(width, height int, format uint32) (uintptr, error) {
			return dev.CreateStagingTexture(uint32(width), uint32(height), format)
		},
		CopyResource:   dev.CopyResource,
		MapRead:        dev.MapRead,
		Unmap:          dev.Unmap,
		ReleaseTexture: wgcwin.ReleaseTexture,
	}
}

// defaultResize wires the Video-Processor-Blt-based scaler from
// internal/resize as the engine's ResizeFunc collaborator (spec §6).
func defaultResize(gctx *gpu.Context, src uintptr, w, h int) (uintptr, error) {
	tex, err := resize.Scale(gctx.Device(), src, w, h)
	if err != nil {
		return 0, errs.New(errs.KindInternalInvariant, "resize.Scale").WithContext("cause", err.Error())
	}
	return tex, nil
}
