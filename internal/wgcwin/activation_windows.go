//go:build windows

package wgcwin

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	modCombase = syscall.NewLazyDLL("combase.dll")

	procRoGetActivationFactory  = modCombase.NewProc("RoGetActivationFactory")
	procWindowsCreateString     = modCombase.NewProc("WindowsCreateString")
	procWindowsDeleteString     = modCombase.NewProc("WindowsDeleteString")
	procRoActivateInstance      = modCombase.NewProc("RoActivateInstance")
)

// hstring creates a Windows HSTRING from a Go string and returns a closer.
func hstring(s string) (uintptr, func(), error) {
	u16, err := syscall.UTF16FromString(s)
	if err != nil {
		return 0, func() {}, err
	}
	var h uintptr
	hr, _, _ := procWindowsCreateString.Call(
		uintptr(unsafe.Pointer(&u16[0])),
		uintptr(len(u16)-1),
		uintptr(unsafe.Pointer(&h)),
	)
	if int32(hr) < 0 {
		return 0, func() {}, hresultError("WindowsCreateString", hr)
	}
	return h, func() { procWindowsDeleteString.Call(h) }, nil
}

// getActivationFactory runs RoGetActivationFactory for a runtime class name,
// returning the requested interface (identified by riid).
func getActivationFactory(className string, riid *comGUID) (uintptr, error) {
	h, closeH, err := hstring(className)
	if err != nil {
		return 0, err
	}
	defer closeH()

	var factory uintptr
	hr, _, _ := procRoGetActivationFactory.Call(h, uintptr(unsafe.Pointer(riid)), uintptr(unsafe.Pointer(&factory)))
	if int32(hr) < 0 {
		return 0, fmt.Errorf("RoGetActivationFactory(%s): %w", className, hresultError("RoGetActivationFactory", hr))
	}
	return factory, nil
}
