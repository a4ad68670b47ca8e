//go:build windows

package capture

import "github.com/Nu-Pan/aynime-capture/internal/wgcwin"

// MonitorInfo describes one display a host could pass to OpenMonitor.
type MonitorInfo = wgcwin.MonitorInfo

// WindowInfo describes one top-level window a host could pass to OpenWindow.
type WindowInfo = wgcwin.WindowInfo

// ListMonitors enumerates displays, for a host picking a monitor to capture
// (spec.md names no discovery operation; see DESIGN.md for why this exists).
func ListMonitors() ([]MonitorInfo, error) {
	return wgcwin.ListMonitors()
}

// ListWindows enumerates visible top-level windows.
func ListWindows() ([]WindowInfo, error) {
	return wgcwin.ListWindows()
}
