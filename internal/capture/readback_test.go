package capture

import (
	"testing"
	"unsafe"
)

// fakeStagingSurface backs a fake Device's Map/Unmap with a plain Go byte
// slice standing in for a mapped D3D11 staging texture, BGRA8, row-major
// with the given row pitch.
type fakeStagingSurface struct {
	width, height int
	rowPitch      uint32
	pixels        []byte
}

func newFakeSurface(width, height int, padBytes int) *fakeStagingSurface {
	rowPitch := uint32(width*4 + padBytes)
	pixels := make([]byte, int(rowPitch)*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			off := row*int(rowPitch) + col*4
			pixels[off+0] = byte(col) // B
			pixels[off+1] = byte(row) // G
			pixels[off+2] = 0x42      // R
			pixels[off+3] = 0xFF      // A
		}
	}
	return &fakeStagingSurface{width: width, height: height, rowPitch: rowPitch, pixels: pixels}
}

func fakeDeviceFor(surface *fakeStagingSurface) Device {
	return Device{
		TextureDims: func(tex uintptr) (int, int, uint32) {
			return surface.width, surface.height, 87 // DXGI_FORMAT_B8G8R8A8_UNORM
		},
		CreateStaging: func(width, height int, format uint32) (uintptr, error) {
			return 1, nil
		},
		CopyResource: func(dst, src uintptr) {},
		MapRead: func(staging uintptr) (uintptr, uint32, error) {
			return uintptr(unsafe.Pointer(&surface.pixels[0])), surface.rowPitch, nil
		},
		Unmap:          func(staging uintptr) {},
		ReleaseTexture: func(tex uintptr) {},
	}
}

func TestReadbackStripsAlphaAndPacksBGR(t *testing.T) {
	surface := newFakeSurface(4, 3, 0)
	dev := fakeDeviceFor(surface)

	w, h, buf, err := Readback(dev, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 4 || h != 3 {
		t.Fatalf("dims = (%d,%d), want (4,3)", w, h)
	}
	if len(buf) != 4*3*3 {
		t.Fatalf("buf len = %d, want %d", len(buf), 4*3*3)
	}
	// pixel (col=2, row=1): B=2, G=1, R=0x42
	px := (1*4 + 2) * 3
	if buf[px+0] != 2 || buf[px+1] != 1 || buf[px+2] != 0x42 {
		t.Fatalf("pixel (2,1) = %v, want [2 1 66]", buf[px:px+3])
	}
}

func TestReadbackHandlesRowPadding(t *testing.T) {
	surface := newFakeSurface(3, 2, 16) // padded rows
	dev := fakeDeviceFor(surface)

	w, h, buf, err := Readback(dev, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 3 || h != 2 {
		t.Fatalf("dims = (%d,%d), want (3,2)", w, h)
	}
	if len(buf) != 3*2*3 {
		t.Fatalf("buf len = %d, want %d", len(buf), 3*2*3)
	}
	// pixel (col=0, row=1) should read from the second (padded) row, not spill
	// over from the first row's padding bytes.
	px := (1*3 + 0) * 3
	if buf[px+0] != 0 || buf[px+1] != 1 {
		t.Fatalf("pixel (0,1) = %v, want B=0 G=1", buf[px:px+3])
	}
}

func TestReadbackZeroExtentIsError(t *testing.T) {
	dev := Device{
		TextureDims: func(tex uintptr) (int, int, uint32) { return 0, 0, 0 },
	}
	_, _, _, err := Readback(dev, 1)
	if err == nil {
		t.Fatal("expected error for zero-extent texture")
	}
}
