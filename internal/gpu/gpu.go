// Package gpu owns the process-wide D3D11 device singleton (spec §4.C).
// Every stream shares one device; internal/wgcwin is the only package that
// knows how to create or talk to it.
package gpu

import "sync"

var (
	mu       sync.Mutex
	refCount int
	ctx      *Context
)

// Initialize acquires a reference to the shared GPU context, creating the
// underlying device on the first call. Safe to call repeatedly; each call
// must be matched by a Finalize.
func Initialize() (*Context, error) {
	mu.Lock()
	defer mu.Unlock()

	if ctx == nil {
		c, err := newContext()
		if err != nil {
			return nil, err
		}
		ctx = c
	}
	refCount++
	return ctx, nil
}

// Finalize releases one reference. The device is torn down when the last
// reference is dropped.
func Finalize() {
	mu.Lock()
	defer mu.Unlock()

	if ctx == nil {
		return
	}
	refCount--
	if refCount <= 0 {
		ctx.release()
		ctx = nil
		refCount = 0
	}
}
