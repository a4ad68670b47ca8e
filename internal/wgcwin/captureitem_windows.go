//go:build windows

package wgcwin

import (
	"fmt"
	"unsafe"
)

// Well-known WinRT/COM interface GUIDs for Windows.Graphics.Capture.
var (
	iidIGraphicsCaptureItemInterop = comGUID{0x3628e81b, 0x3cac, 0x4c60, [8]byte{0xb7, 0xf4, 0x23, 0xce, 0x0e, 0x0c, 0x33, 0x56}}
	iidIGraphicsCaptureItem         = comGUID{0x79c3f95b, 0x31f7, 0x4ec2, [8]byte{0xa4, 0x64, 0x63, 0x2e, 0xf5, 0xd3, 0x07, 0x60}}
	iidIDirect3DDxgiInterfaceAccess = comGUID{0xa9b3d012, 0x3df2, 0x4ee3, [8]byte{0xb8, 0xd1, 0x86, 0x95, 0xf4, 0x57, 0xd3, 0xc1}}
)

const graphicsCaptureItemRuntimeClass = "Windows.Graphics.Capture.GraphicsCaptureItem"

// sizeInt32 matches Windows.Graphics.SizeInt32.
type sizeInt32 struct {
	Width, Height int32
}

// CaptureItem wraps an IGraphicsCaptureItem for a window or monitor target.
type CaptureItem struct {
	ptr uintptr
}

// CreateForWindow creates a capture item for an HWND via
// IGraphicsCaptureItemInterop::CreateForWindow.
func CreateForWindow(hwnd uintptr) (*CaptureItem, error) {
	interop, err := getActivationFactory(graphicsCaptureItemRuntimeClass, &iidIGraphicsCaptureItemInterop)
	if err != nil {
		return nil, fmt.Errorf("activation factory for GraphicsCaptureItem: %w", err)
	}
	defer comRelease(interop)

	var item uintptr
	// IGraphicsCaptureItemInterop::CreateForWindow(hwnd, riid, &item), vtable index 3.
	_, err = comCall(interop, 3, hwnd, uintptr(unsafe.Pointer(&iidIGraphicsCaptureItem)), uintptr(unsafe.Pointer(&item)))
	if err != nil {
		return nil, fmt.Errorf("CreateForWindow: %w", err)
	}
	return &CaptureItem{ptr: item}, nil
}

// CreateForMonitor creates a capture item for an HMONITOR via
// IGraphicsCaptureItemInterop::CreateForMonitor.
func CreateForMonitor(hmonitor uintptr) (*CaptureItem, error) {
	interop, err := getActivationFactory(graphicsCaptureItemRuntimeClass, &iidIGraphicsCaptureItemInterop)
	if err != nil {
		return nil, fmt.Errorf("activation factory for GraphicsCaptureItem: %w", err)
	}
	defer comRelease(interop)

	var item uintptr
	// IGraphicsCaptureItemInterop::CreateForMonitor(hmonitor, riid, &item), vtable index 4.
	_, err = comCall(interop, 4, hmonitor, uintptr(unsafe.Pointer(&iidIGraphicsCaptureItem)), uintptr(unsafe.Pointer(&item)))
	if err != nil {
		return nil, fmt.Errorf("CreateForMonitor: %w", err)
	}
	return &CaptureItem{ptr: item}, nil
}

// Size returns the item's current content size (get_Size on
// IGraphicsCaptureItem, vtable index 6 after IInspectable's 3).
func (c *CaptureItem) Size() (width, height int32, err error) {
	var sz sizeInt32
	_, callErr := comCall(c.ptr, 6, uintptr(unsafe.Pointer(&sz)))
	if callErr != nil {
		return 0, 0, callErr
	}
	return sz.Width, sz.Height, nil
}

// Ptr returns the raw IGraphicsCaptureItem pointer.
func (c *CaptureItem) Ptr() uintptr { return c.ptr }

// Release drops the capture item reference.
func (c *CaptureItem) Release() {
	comRelease(c.ptr)
	c.ptr = 0
}

// TextureFromSurface extracts the backing ID3D11Texture2D from a WinRT
// Direct3D surface via IDirect3DDxgiInterfaceAccess::GetInterface, the DXGI
// interop step the handler uses to obtain the arriving frame's texture.
func TextureFromSurface(surface uintptr) (uintptr, error) {
	access, err := queryInterface(surface, &iidIDirect3DDxgiInterfaceAccess)
	if err != nil {
		return 0, fmt.Errorf("QueryInterface(IDirect3DDxgiInterfaceAccess): %w", err)
	}
	defer comRelease(access)

	var tex uintptr
	// IDirect3DDxgiInterfaceAccess::GetInterface(riid, &out), vtable index 3.
	_, err = comCall(access, 3, uintptr(unsafe.Pointer(&iidID3D11Texture2D)), uintptr(unsafe.Pointer(&tex)))
	if err != nil {
		return 0, fmt.Errorf("GetInterface(ID3D11Texture2D): %w", err)
	}
	return tex, nil
}

var iidID3D11Texture2D = comGUID{0x6f15aaf2, 0xd208, 0x4e89, [8]byte{0x9a, 0xb4, 0x48, 0x95, 0x35, 0xd3, 0x4f, 0x9c}}
