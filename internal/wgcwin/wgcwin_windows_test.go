//go:build windows

package wgcwin

import (
	"strings"
	"testing"
)

func TestBoolArg(t *testing.T) {
	if boolArg(true) != 1 {
		t.Fatalf("boolArg(true) = %d, want 1", boolArg(true))
	}
	if boolArg(false) != 0 {
		t.Fatalf("boolArg(false) = %d, want 0", boolArg(false))
	}
}

func TestHresultErrorFormatsCode(t *testing.T) {
	err := hresultError("CreateCaptureSession", 0x80004005)
	if !strings.Contains(err.Error(), "CreateCaptureSession") {
		t.Fatalf("error %q missing op name", err.Error())
	}
	if !strings.Contains(err.Error(), "0x80004005") {
		t.Fatalf("error %q missing HRESULT", err.Error())
	}
}

func TestComCallRejectsNilInterface(t *testing.T) {
	if _, err := comCall(0, 3); err == nil {
		t.Fatal("comCall(0, ...) should fail on a nil interface pointer")
	}
}

// TestListMonitorsReturnsAtLeastOneDisplay is a real-hardware smoke test: it
// exercises the actual DXGI adapter/output enumeration path end to end, the
// same way broker_windows_test.go dials a real named pipe rather than
// mocking the OS boundary. It runs on every Windows host and fails on one
// with no display attached.
func TestListMonitorsReturnsAtLeastOneDisplay(t *testing.T) {
	monitors, err := ListMonitors()
	if err != nil {
		t.Fatalf("ListMonitors: %v", err)
	}
	if len(monitors) == 0 {
		t.Fatal("expected at least one monitor on a desktop session")
	}
	for _, m := range monitors {
		if m.Width <= 0 || m.Height <= 0 {
			t.Fatalf("monitor %+v has non-positive dimensions", m)
		}
	}
}

func TestListWindowsReturnsVisibleWindows(t *testing.T) {
	windows, err := ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	for _, w := range windows {
		if w.Handle == 0 {
			t.Fatal("ListWindows returned an entry with a zero handle")
		}
	}
}
