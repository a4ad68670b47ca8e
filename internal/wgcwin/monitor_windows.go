//go:build windows

package wgcwin

import (
	"fmt"
	"log/slog"
	"syscall"
	"unsafe"
)

var (
	modUser32 = syscall.NewLazyDLL("user32.dll")

	procEnumWindows             = modUser32.NewProc("EnumWindows")
	procGetWindowTextW          = modUser32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW    = modUser32.NewProc("GetWindowTextLengthW")
	procIsWindowVisible         = modUser32.NewProc("IsWindowVisible")
	procGetWindowRect           = modUser32.NewProc("GetWindowRect")
	procGetWindowThreadProcessId = modUser32.NewProc("GetWindowThreadProcessId")
)

const (
	dxgiErrorNotFound = 0x887A0002

	dxgiDeviceGetAdapter  = 7  // IDXGIDevice
	dxgiAdapterEnumOutputs = 7 // IDXGIAdapter, after IDXGIObject's 4
	dxgiOutputGetDesc      = 7 // IDXGIOutput
)

var iidIDXGIDeviceForEnum = comGUID{0x54ec77fa, 0x1377, 0x44e6, [8]byte{0x8c, 0x32, 0x88, 0xfd, 0x5f, 0x44, 0xc8, 0x4c}}

// dxgiOutputDesc matches DXGI_OUTPUT_DESC.
type dxgiOutputDesc struct {
	DeviceName        [32]uint16
	Left              int32
	Top               int32
	Right             int32
	Bottom            int32
	AttachedToDesktop int32
	Rotation          uint32
	Monitor           uintptr
}

type rect struct {
	Left, Top, Right, Bottom int32
}

// MonitorInfo describes one DXGI output discovered by ListMonitors, enough
// for a host to pick a target and call OpenMonitor (spec §4.A).
type MonitorInfo struct {
	Index     int
	Name      string
	Width     int
	Height    int
	X         int
	Y         int
	IsPrimary bool
	Handle    uintptr // HMONITOR
}

// ListMonitors enumerates attached displays via a throwaway D3D11 device and
// DXGI adapter/output walk, the same approach the teacher uses for its
// desktop-duplication target picker.
func ListMonitors() ([]MonitorInfo, error) {
	dev, err := CreateDevice()
	if err != nil {
		return nil, fmt.Errorf("CreateDevice for enumeration: %w", err)
	}
	defer dev.Release()

	dxgiDevice, err := queryInterface(dev.Ptr(), &iidIDXGIDeviceForEnum)
	if err != nil {
		return nil, fmt.Errorf("QueryInterface(IDXGIDevice): %w", err)
	}
	defer comRelease(dxgiDevice)

	var adapter uintptr
	if _, err := comCall(dxgiDevice, dxgiDeviceGetAdapter, uintptr(unsafe.Pointer(&adapter))); err != nil {
		return nil, fmt.Errorf("IDXGIDevice::GetAdapter: %w", err)
	}
	defer comRelease(adapter)

	var monitors []MonitorInfo
	for i := 0; ; i++ {
		var output uintptr
		hr, callErr := comCall(adapter, dxgiAdapterEnumOutputs, uintptr(i), uintptr(unsafe.Pointer(&output)))
		if callErr != nil {
			if uint32(hr) != dxgiErrorNotFound {
				slog.Warn("wgcwin: EnumOutputs failed", "index", i, "hr", fmt.Sprintf("0x%08X", uint32(hr)))
			}
			break
		}

		var desc dxgiOutputDesc
		_, descErr := comCall(output, dxgiOutputGetDesc, uintptr(unsafe.Pointer(&desc)))
		comRelease(output)
		if descErr != nil {
			slog.Warn("wgcwin: IDXGIOutput::GetDesc failed", "index", i)
			continue
		}
		if desc.AttachedToDesktop == 0 {
			continue
		}

		monitors = append(monitors, MonitorInfo{
			Index:     i,
			Name:      syscall.UTF16ToString(desc.DeviceName[:]),
			Width:     int(desc.Right - desc.Left),
			Height:    int(desc.Bottom - desc.Top),
			X:         int(desc.Left),
			Y:         int(desc.Top),
			IsPrimary: desc.Left == 0 && desc.Top == 0,
			Handle:    desc.Monitor,
		})
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("wgcwin: no attached monitors found")
	}
	return monitors, nil
}

// WindowInfo describes one top-level, capturable window discovered by
// ListWindows, enough for a host to call OpenWindow (spec §4.A).
type WindowInfo struct {
	Handle    uintptr // HWND
	Title     string
	ProcessID uint32
	Width     int
	Height    int
}

// ListWindows enumerates visible, titled top-level windows via EnumWindows,
// mirroring the reference screenshot engine's window-discovery callback
// (there is no equivalent in the teacher's DXGI-only desktop package, which
// only ever targets monitors).
func ListWindows() ([]WindowInfo, error) {
	var windows []WindowInfo

	cb := syscall.NewCallback(func(hwnd, _ uintptr) uintptr {
		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}

		titleLen, _, _ := procGetWindowTextLengthW.Call(hwnd)
		if titleLen == 0 {
			return 1
		}
		buf := make([]uint16, titleLen+1)
		procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		title := syscall.UTF16ToString(buf)

		var r rect
		procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))

		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

		windows = append(windows, WindowInfo{
			Handle:    hwnd,
			Title:     title,
			ProcessID: pid,
			Width:     int(r.Right - r.Left),
			Height:    int(r.Bottom - r.Top),
		})
		return 1
	})

	procEnumWindows.Call(cb, 0)
	return windows, nil
}
