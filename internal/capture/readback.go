package capture

import (
	"unsafe"

	"github.com/Nu-Pan/aynime-capture/internal/errs"
)

// Device is the narrow GPU surface readback needs, as a set of function
// fields: enough to stage, copy, and map a texture for CPU access. On
// Windows, wiring_windows.go's deviceFromContext fills it from internal/gpu's
// Context (each field wraps an internal/wgcwin call); tests supply a fake.
// Keeping this seam here, rather than importing wgcwin
// directly, is what lets internal/capture build and be exercised on every
// platform (spec §9's non-Windows test-tooling requirement).
type Device struct {
	TextureDims    func(tex uintptr) (width, height int, format uint32)
	CreateStaging  func(width, height int, format uint32) (uintptr, error)
	CopyResource   func(dst, src uintptr)
	MapRead        func(staging uintptr) (ptr uintptr, rowPitch uint32, err error)
	Unmap          func(staging uintptr)
	ReleaseTexture func(tex uintptr)
}

// Readback implements spec §4.F: stage, copy, map, strip alpha, unmap. The
// returned buffer is exactly width*height*3 bytes, BGR, row-major, with row
// padding (mapped.RowPitch - width*4) never copied.
//
// Redesign vs. the original: async_texture_readback.cpp's ReadbackTexture
// copies the full 4-byte BGRA row; spec.md §4.F is explicit that readback
// strips the alpha byte and packs 3-bytes-per-pixel BGR, so that is what
// this does.
func Readback(dev Device, srcTex uintptr) (width, height int, buf []byte, err error) {
	w, h, format := dev.TextureDims(srcTex)
	if w == 0 || h == 0 {
		return 0, 0, nil, errs.New(errs.KindStagingAllocFailed, "source texture has zero extent")
	}

	staging, err := dev.CreateStaging(w, h, format)
	if err != nil {
		return 0, 0, nil, errs.New(errs.KindStagingAllocFailed, "CreateTexture2D(staging)").WithContext("cause", err.Error())
	}
	defer dev.ReleaseTexture(staging)

	dev.CopyResource(staging, srcTex)

	ptr, rowPitch, err := dev.MapRead(staging)
	if err != nil {
		return 0, 0, nil, errs.New(errs.KindMapFailed, "Map(staging, READ)").WithContext("cause", err.Error())
	}
	defer dev.Unmap(staging)

	const bytesPerPixel = 4
	const packedBytesPerPixel = 3
	out := make([]byte, w*h*packedBytesPerPixel)
	rowBytesOut := w * packedBytesPerPixel
	for row := 0; row < h; row++ {
		srcRow := rowBytes(ptr, rowPitch, row)
		dstOff := row * rowBytesOut
		for px := 0; px < w; px++ {
			srcOff := px * bytesPerPixel
			dstPx := dstOff + px*packedBytesPerPixel
			out[dstPx+0] = srcRow[srcOff+0]
			out[dstPx+1] = srcRow[srcOff+1]
			out[dstPx+2] = srcRow[srcOff+2]
		}
	}
	return w, h, out, nil
}

// rowBytes views one mapped row as a byte slice without copying, valid only
// between MapRead and the matching Unmap.
func rowBytes(base uintptr, rowPitch uint32, row int) []byte {
	rowPtr := (*byte)(unsafe.Pointer(base + uintptr(row)*uintptr(rowPitch)))
	return unsafe.Slice(rowPtr, int(rowPitch))
}
