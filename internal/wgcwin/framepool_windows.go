//go:build windows

package wgcwin

import (
	"fmt"
	"unsafe"
)

var procCreateDirect3D11DeviceFromDXGIDevice = modD3D11.NewProc("CreateDirect3D11DeviceFromDXGIDevice")

var (
	iidIDXGIDevice                     = comGUID{0x54ec77fa, 0x1377, 0x44e6, [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}
	iidIDirect3DDevice                 = comGUID{0xa0f37445, 0xfe26, 0x40b3, [8]byte{0xad, 0x15, 0x85, 0x19, 0x10, 0x6b, 0x77, 0x60}}
	iidIDirect3D11CaptureFramePool     = comGUID{0x5631d698, 0xd413, 0x47f3, [8]byte{0x87, 0x64, 0x61, 0xb8, 0xa8, 0x12, 0x76, 0xba}}
	iidIDirect3D11CaptureFramePoolStatics = comGUID{0x7784056a, 0x67aa, 0x4d53, [8]byte{0xae, 0x54, 0x10, 0x88, 0xd5, 0xa8, 0xca, 0x21}}
)

const framePoolRuntimeClass = "Windows.Graphics.Capture.Direct3D11CaptureFramePool"

// WrapDevice wraps the shared D3D11 device as a WinRT IDirect3DDevice, the
// form WGC's frame pool and capture item require, mirroring the engine's
// initialization step 4.
func WrapDevice(dev *Device) (uintptr, error) {
	dxgiDevice, err := queryInterface(dev.Ptr(), &iidIDXGIDevice)
	if err != nil {
		return 0, fmt.Errorf("QueryInterface(IDXGIDevice): %w", err)
	}
	defer comRelease(dxgiDevice)

	var wrapped uintptr
	hr, _, _ := procCreateDirect3D11DeviceFromDXGIDevice.Call(dxgiDevice, uintptr(unsafe.Pointer(&wrapped)))
	if int32(hr) < 0 {
		return 0, hresultError("CreateDirect3D11DeviceFromDXGIDevice", hr)
	}
	return wrapped, nil
}

// FramePool wraps an IDirect3D11CaptureFramePool.
type FramePool struct {
	ptr    uintptr
	handlerToken int64
	handler      *frameArrivedHandler
}

// CreateFramePool creates a free-threaded frame pool (buffer count N_pool=3)
// at the given BGRA8 content size, per spec §4.G init step 7.
func CreateFramePool(wrappedDevice uintptr, width, height int32, bufferCount int32) (*FramePool, error) {
	statics, err := getActivationFactory(framePoolRuntimeClass, &iidIDirect3D11CaptureFramePoolStatics)
	if err != nil {
		return nil, fmt.Errorf("activation factory for Direct3D11CaptureFramePool: %w", err)
	}
	defer comRelease(statics)

	sz := sizeInt32{Width: width, Height: height}
	var pool uintptr
	// CreateFreeThreaded(device, pixelFormat, numberOfBuffers, size, &pool), vtable index 7.
	_, err = comCall(statics, 7,
		wrappedDevice, uintptr(DXGIFormatB8G8R8A8UNorm), uintptr(bufferCount),
		uintptr(unsafe.Pointer(&sz)), uintptr(unsafe.Pointer(&pool)))
	if err != nil {
		return nil, fmt.Errorf("CreateFreeThreaded: %w", err)
	}
	return &FramePool{ptr: pool}, nil
}

// Recreate re-targets the frame pool at a new content size, per spec §4.G
// frame-arrived step 3 (dynamic resize).
func (p *FramePool) Recreate(wrappedDevice uintptr, width, height int32, bufferCount int32) error {
	sz := sizeInt32{Width: width, Height: height}
	// IDirect3D11CaptureFramePool::Recreate(device, pixelFormat, numberOfBuffers, size), vtable index 10.
	_, err := comCall(p.ptr, 10, wrappedDevice, uintptr(DXGIFormatB8G8R8A8UNorm), uintptr(bufferCount), uintptr(unsafe.Pointer(&sz)))
	return err
}

// TryGetNextFrame drains one queued frame, returning (0, nil) when none is
// available (callers drain in a tight loop per spec §4.G step 1).
func (p *FramePool) TryGetNextFrame() (uintptr, error) {
	var frame uintptr
	// IDirect3D11CaptureFramePool::TryGetNextFrame(&frame), vtable index 8.
	_, err := comCall(p.ptr, 8, uintptr(unsafe.Pointer(&frame)))
	if err != nil {
		return 0, err
	}
	return frame, nil
}

// RegisterFrameArrived installs the FrameArrived handler (spec §4.G step 9).
func (p *FramePool) RegisterFrameArrived(onFrame func()) {
	p.handler = newFrameArrivedHandler(onFrame)
	// IDirect3D11CaptureFramePool::add_FrameArrived(handler, &token), vtable index 6.
	var token int64
	comCall(p.ptr, 6, p.handler.iUnknownPtr(), uintptr(unsafe.Pointer(&token)))
	p.handlerToken = token
}

// RevokeFrameArrived removes the handler (shutdown step 1).
func (p *FramePool) RevokeFrameArrived() {
	if p.handlerToken == 0 {
		return
	}
	// remove_FrameArrived(token), vtable index 7.
	comCall(p.ptr, 7, uintptr(p.handlerToken))
	p.handlerToken = 0
	if p.handler != nil {
		p.handler.release()
		p.handler = nil
	}
}

// Close closes the frame pool (shutdown step 3).
func (p *FramePool) Close() {
	if p.ptr == 0 {
		return
	}
	// IClosable::Close, vtable index 6 after IUnknown+IInspectable (3) — frame
	// pool also implements IClosable at a later slot; index 9 here.
	comCall(p.ptr, 9)
	comRelease(p.ptr)
	p.ptr = 0
}

// Frame wraps one WGC Direct3D11CaptureFrame.
type Frame struct {
	ptr uintptr
}

// WrapFrame adapts a raw frame pointer returned by TryGetNextFrame.
func WrapFrame(ptr uintptr) *Frame { return &Frame{ptr: ptr} }

// ContentSize reads Direct3D11CaptureFrame.ContentSize.
func (f *Frame) ContentSize() (width, height int32, err error) {
	var sz sizeInt32
	// get_ContentSize, vtable index 9 (after IInspectable 3 + Surface/SystemRelativeTime getters).
	_, callErr := comCall(f.ptr, 9, uintptr(unsafe.Pointer(&sz)))
	if callErr != nil {
		return 0, 0, callErr
	}
	return sz.Width, sz.Height, nil
}

// Surface returns the frame's IDirect3DSurface, from which the backing
// ID3D11Texture2D is obtained via TextureFromSurface.
func (f *Frame) Surface() (uintptr, error) {
	var surface uintptr
	// get_Surface, vtable index 6.
	_, err := comCall(f.ptr, 6, uintptr(unsafe.Pointer(&surface)))
	if err != nil {
		return 0, err
	}
	return surface, nil
}

// SystemRelativeTimeTicks returns Direct3D11CaptureFrame.SystemRelativeTime,
// a TimeSpan in 100ns ticks.
func (f *Frame) SystemRelativeTimeTicks() (int64, error) {
	var ticks int64
	// get_SystemRelativeTime, vtable index 7. TimeSpan is a single int64 (Duration).
	_, err := comCall(f.ptr, 7, uintptr(unsafe.Pointer(&ticks)))
	if err != nil {
		return 0, err
	}
	return ticks, nil
}

// Close releases the frame, matching Direct3D11CaptureFrame::Close.
func (f *Frame) Close() {
	if f.ptr == 0 {
		return
	}
	comCall(f.ptr, 8) // IClosable::Close
	comRelease(f.ptr)
	f.ptr = 0
}
