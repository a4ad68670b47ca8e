//go:build windows

package wgcwin

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	modD3D11 = syscall.NewLazyDLL("d3d11.dll")
	modDXGI  = syscall.NewLazyDLL("dxgi.dll")

	procD3D11CreateDevice = modD3D11.NewProc("D3D11CreateDevice")
)

// D3D11/DXGI constants grounded on the teacher's dxgi_windows.go.
const (
	d3dDriverTypeHardware = 1
	d3dFeatureLevel11_1   = 0xb100
	d3dFeatureLevel11_0   = 0xb000
	d3d11SDKVersion       = 7

	d3d11CreateDeviceBGRASupport = 0x20

	d3d11UsageDefault  = 0
	d3d11UsageStaging  = 3
	d3d11BindRenderTarget   = 0x20
	d3d11BindShaderResource = 0x8
	d3d11CPUAccessRead      = 0x20000

	DXGIFormatB8G8R8A8UNorm = 87

	d3d11DeviceCreateTexture2D            = 5  // ID3D11Device
	d3d11DeviceCreateShaderResourceView   = 7  // ID3D11Device
	d3d11DeviceCreateRenderTargetView     = 9  // ID3D11Device
	d3d11CtxCopyResource                  = 47 // ID3D11DeviceContext
	d3d11CtxMap                           = 14 // ID3D11DeviceContext
	d3d11CtxUnmap                         = 15 // ID3D11DeviceContext
	d3d11CtxPSSetShaderResources           = 8
	d3d11CtxOMSetRenderTargets             = 33
	d3d11CtxRSSetViewports                 = 44
	d3d11CtxDraw                           = 13
	d3d11CtxVSSetShader                    = 11
	d3d11CtxPSSetShader                    = 9
)

var iidID3D11Multithread = comGUID{0x9b7e4e00, 0x342c, 0x4106, [8]byte{0xa1, 0x9f, 0x4f, 0x27, 0x04, 0xf6, 0x89, 0xf0}}

// d3d11Texture2DDesc matches D3D11_TEXTURE2D_DESC.
type d3d11Texture2DDesc struct {
	Width          uint32
	Height         uint32
	MipLevels      uint32
	ArraySize      uint32
	Format         uint32
	SampleCount    uint32
	SampleQuality  uint32
	Usage          uint32
	BindFlags      uint32
	CPUAccessFlags uint32
	MiscFlags      uint32
}

// d3d11MappedSubresource matches D3D11_MAPPED_SUBRESOURCE.
type d3d11MappedSubresource struct {
	PData      uintptr
	RowPitch   uint32
	DepthPitch uint32
}

// Device wraps the process-wide ID3D11Device/ID3D11DeviceContext pair. There
// is exactly one live Device per process; internal/gpu enforces that as a
// singleton (Component C). SetMultithreadProtected(true) is enabled here so
// that the capture engine's CopyResource calls and a host thread's
// Map/Unmap readback calls may interleave safely (spec §4.C/§5).
type Device struct {
	ptr        uintptr // ID3D11Device
	ctx        uintptr // ID3D11DeviceContext
	multithread uintptr // ID3D11Multithread
}

// CreateDevice creates the shared D3D11 device with BGRA support, hardware
// driver type, and feature level negotiated from {11_1, 11_0}, matching
// ayc::d3d11::Initialize in the original implementation.
func CreateDevice() (*Device, error) {
	var devPtr, ctxPtr uintptr
	levels := [2]uint32{d3dFeatureLevel11_1, d3dFeatureLevel11_0}
	var chosen uint32

	hr, _, _ := procD3D11CreateDevice.Call(
		0,
		uintptr(d3dDriverTypeHardware),
		0,
		uintptr(d3d11CreateDeviceBGRASupport),
		uintptr(unsafe.Pointer(&levels[0])),
		uintptr(len(levels)),
		uintptr(d3d11SDKVersion),
		uintptr(unsafe.Pointer(&devPtr)),
		uintptr(unsafe.Pointer(&chosen)),
		uintptr(unsafe.Pointer(&ctxPtr)),
	)
	if int32(hr) < 0 {
		return nil, hresultError("D3D11CreateDevice", hr)
	}

	mt, err := queryInterface(ctxPtr, &iidID3D11Multithread)
	if err != nil {
		comRelease(ctxPtr)
		comRelease(devPtr)
		return nil, fmt.Errorf("QueryInterface(ID3D11Multithread): %w", err)
	}
	// ID3D11Multithread::SetMultithreadProtected, vtable index 5 (after
	// IUnknown 0-2, Enter 3, Leave 4).
	comCall(mt, 5, 1)

	return &Device{ptr: devPtr, ctx: ctxPtr, multithread: mt}, nil
}

// Release drops the device/context/multithread interface references.
func (d *Device) Release() {
	comRelease(d.multithread)
	comRelease(d.ctx)
	comRelease(d.ptr)
	d.multithread, d.ctx, d.ptr = 0, 0, 0
}

// Ptr returns the raw ID3D11Device interface pointer.
func (d *Device) Ptr() uintptr { return d.ptr }

// Context returns the raw ID3D11DeviceContext interface pointer.
func (d *Device) Context() uintptr { return d.ctx }

// TextureDesc returns the source texture's D3D11_TEXTURE2D_DESC fields.
func TextureDesc(tex uintptr) (width, height, format uint32) {
	var desc d3d11Texture2DDesc
	// ID3D11Texture2D::GetDesc, vtable index 10 (ID3D11Resource/DeviceChild base + 0).
	comCall(tex, 10, uintptr(unsafe.Pointer(&desc)))
	return desc.Width, desc.Height, desc.Format
}

// CreateTexture2D creates a new ID3D11Texture2D with the given dimensions,
// format, usage, bind flags and CPU access flags, using one mip level, one
// array slice, one sample and no misc flags. Used by resize.Scale, by the
// engine's copy of each arriving frame, and by CreateStagingTexture.
func (d *Device) CreateTexture2D(width, height, format, usage, bindFlags, cpuAccessFlags uint32) (uintptr, error) {
	desc := d3d11Texture2DDesc{
		Width: width, Height: height,
		MipLevels: 1, ArraySize: 1,
		Format:         format,
		SampleCount:    1,
		Usage:          usage,
		BindFlags:      bindFlags,
		CPUAccessFlags: cpuAccessFlags,
	}
	var tex uintptr
	_, err := comCall(d.ptr, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&desc)), 0, uintptr(unsafe.Pointer(&tex)))
	if err != nil {
		return 0, fmt.Errorf("CreateTexture2D: %w", err)
	}
	return tex, nil
}

// CopyResource issues ID3D11DeviceContext::CopyResource(dst, src).
func (d *Device) CopyResource(dst, src uintptr) {
	comCall(d.ctx, d3d11CtxCopyResource, dst, src)
}

// MapRead maps a staging texture for CPU read access and returns the data
// pointer and row pitch. Caller must call Unmap.
func (d *Device) MapRead(staging uintptr) (ptr uintptr, rowPitch uint32, err error) {
	var mapped d3d11MappedSubresource
	// ID3D11DeviceContext::Map(resource, subresource, mapType=READ(1), flags, &mapped)
	_, callErr := comCall(d.ctx, d3d11CtxMap, staging, 0, 1, 0, uintptr(unsafe.Pointer(&mapped)))
	if callErr != nil {
		return 0, 0, fmt.Errorf("Map: %w", callErr)
	}
	return mapped.PData, mapped.RowPitch, nil
}

// Unmap releases a mapping obtained from MapRead.
func (d *Device) Unmap(staging uintptr) {
	comCall(d.ctx, d3d11CtxUnmap, staging, 0)
}

// CreateStagingTexture creates a CPU-readable staging copy of a texture with
// the given dimensions/format, used by internal/capture's Readback.
func (d *Device) CreateStagingTexture(width, height, format uint32) (uintptr, error) {
	return d.CreateTexture2D(width, height, format, d3d11UsageStaging, 0, d3d11CPUAccessRead)
}

// ReleaseTexture drops a texture's COM reference. Exported so
// internal/capture and internal/gpu can free textures (staging copies, ring
// evictions) without importing unexported wgcwin internals.
func ReleaseTexture(tex uintptr) {
	comRelease(tex)
}
