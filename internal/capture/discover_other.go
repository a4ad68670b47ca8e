//go:build !windows

package capture

import "github.com/Nu-Pan/aynime-capture/internal/errs"

// MonitorInfo describes one display a host could pass to OpenMonitor.
type MonitorInfo struct {
	Index               int
	Name                string
	Width, Height, X, Y int
}

// WindowInfo describes one top-level window a host could pass to OpenWindow.
type WindowInfo struct {
	Handle    uintptr
	Title     string
	ProcessID uint32
	Width     int
	Height    int
}

// ListMonitors always fails off Windows: there is no WGC/DXGI to enumerate.
func ListMonitors() ([]MonitorInfo, error) {
	return nil, errs.New(errs.KindPlatformUnsupported, "monitor enumeration requires Windows")
}

// ListWindows always fails off Windows.
func ListWindows() ([]WindowInfo, error) {
	return nil, errs.New(errs.KindPlatformUnsupported, "window enumeration requires Windows")
}
