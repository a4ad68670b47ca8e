//go:build windows

package gpu

import (
	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/wgcwin"
)

// Context wraps the shared D3D11 device. Accessors hand out the raw
// pointers internal/capture and internal/resize need for vtable calls
// through internal/wgcwin; nothing outside wgcwin interprets them.
type Context struct {
	dev *wgcwin.Device
}

func newContext() (*Context, error) {
	dev, err := wgcwin.CreateDevice()
	if err != nil {
		return nil, errs.New(errs.KindGpuInitFailed, "create shared D3D11 device").WithContext("cause", err.Error())
	}
	return &Context{dev: dev}, nil
}

func (c *Context) release() {
	c.dev.Release()
}

// Device returns the underlying wgcwin device for use by internal/capture
// and internal/resize.
func (c *Context) Device() *wgcwin.Device { return c.dev }
