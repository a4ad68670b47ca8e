//go:build windows

// Package wgcwin is the pure-Go COM/WinRT/D3D11 syscall binding layer for
// Windows Graphics Capture. It owns every raw vtable call the capture engine
// needs; nothing outside this package touches WGC or D3D11 directly (see
// spec.md's "Apartment confinement" design note).
package wgcwin

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"
)

// comGUID is a COM/WinRT GUID (128-bit), laid out identically to the Win32
// GUID struct so it can be passed by pointer to any COM ABI call.
type comGUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// DXGI HRESULTs the capture engine treats specially: both mean the GPU
// resource behind a live capture session went away (desktop switch,
// resolution change, driver reset, GPU removal) rather than a programming
// error, and are worth one reinitialization attempt instead of a terminal
// failure. Values from dxgi.h.
const (
	dxgiErrAccessLost    = 0x887A0026
	dxgiErrDeviceRemoved = 0x887A0005
)

// hrError carries a raw HRESULT alongside the formatted message so callers
// can classify it (IsAccessLost/IsDeviceRemoved) without re-parsing text.
type hrError struct {
	op string
	hr uint32
}

func (e *hrError) Error() string {
	return fmt.Sprintf("%s: HRESULT 0x%08X", e.op, e.hr)
}

// IsAccessLost reports whether err is (or wraps) a DXGI_ERROR_ACCESS_LOST.
func IsAccessLost(err error) bool {
	var he *hrError
	return errors.As(err, &he) && he.hr == dxgiErrAccessLost
}

// IsDeviceRemoved reports whether err is (or wraps) a
// DXGI_ERROR_DEVICE_REMOVED.
func IsDeviceRemoved(err error) bool {
	var he *hrError
	return errors.As(err, &he) && he.hr == dxgiErrDeviceRemoved
}

// comCall invokes a COM vtable method at the given index, following the same
// stack-allocated-args convention the teacher's comutil_windows.go uses.
func comCall(obj uintptr, vtableIdx int, args ...uintptr) (uintptr, error) {
	if obj == 0 {
		return 0, fmt.Errorf("comCall: nil interface pointer")
	}
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	fnPtr := *(*uintptr)(unsafe.Pointer(vtablePtr + uintptr(vtableIdx)*unsafe.Sizeof(uintptr(0))))

	allArgs := make([]uintptr, 0, 1+len(args))
	allArgs = append(allArgs, obj)
	allArgs = append(allArgs, args...)
	ret, _, _ := syscall.SyscallN(fnPtr, allArgs...)

	if int32(ret) < 0 {
		return ret, &hrError{op: fmt.Sprintf("COM vtable[%d]", vtableIdx), hr: uint32(ret)}
	}
	return ret, nil
}

// comRelease calls IUnknown::Release (vtable index 2). Safe on a zero handle.
func comRelease(obj uintptr) {
	if obj == 0 {
		return
	}
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	fnPtr := *(*uintptr)(unsafe.Pointer(vtablePtr + 2*unsafe.Sizeof(uintptr(0))))
	syscall.SyscallN(fnPtr, obj)
}

// comAddRef calls IUnknown::AddRef (vtable index 1).
func comAddRef(obj uintptr) {
	if obj == 0 {
		return
	}
	vtablePtr := *(*uintptr)(unsafe.Pointer(obj))
	fnPtr := *(*uintptr)(unsafe.Pointer(vtablePtr + 1*unsafe.Sizeof(uintptr(0))))
	syscall.SyscallN(fnPtr, obj)
}

// queryInterface runs IUnknown::QueryInterface (vtable index 0) for riid on
// obj and returns the resulting interface pointer.
func queryInterface(obj uintptr, riid *comGUID) (uintptr, error) {
	var out uintptr
	_, err := comCall(obj, 0, uintptr(unsafe.Pointer(riid)), uintptr(unsafe.Pointer(&out)))
	if err != nil {
		return 0, err
	}
	return out, nil
}

// IUnknown vtable indices, fixed by the COM ABI.
const (
	vtblQueryInterface = 0
	vtblAddRef         = 1
	vtblRelease        = 2
)

func hresultError(op string, hr uintptr) error {
	return fmt.Errorf("%s failed: HRESULT 0x%08X", op, uint32(hr))
}
