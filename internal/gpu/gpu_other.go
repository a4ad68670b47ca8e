//go:build !windows

package gpu

import "github.com/Nu-Pan/aynime-capture/internal/errs"

// Context is the non-Windows stand-in: WGC and D3D11 don't exist off
// Windows, so every operation that would touch the device fails with
// PlatformUnsupported. Its presence keeps internal/capture buildable and
// testable (ring/session/stream logic) on any OS.
type Context struct{}

func newContext() (*Context, error) {
	return nil, errs.New(errs.KindPlatformUnsupported, "GPU context requires Windows Graphics Capture")
}

func (c *Context) release() {}
