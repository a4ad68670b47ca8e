//go:build windows

package wgcwin

import (
	"sync"
	"syscall"
	"unsafe"
)

// frameArrivedHandler is a hand-rolled COM object implementing
// ITypedEventHandler<Direct3D11CaptureFramePool, IInspectable> so the WGC
// frame pool can invoke a Go callback across the ABI boundary without cgo.
//
// Layout: the first field is the vtable pointer (QueryInterface, AddRef,
// Release, Invoke), making the struct itself a valid COM interface pointer
// when taken by address — the same trick comCall uses to dereference any
// COM object it's handed.
type frameArrivedHandler struct {
	vtbl     *frameArrivedVtbl
	refCount int32
	onFrame  func()
}

type frameArrivedVtbl struct {
	queryInterface uintptr
	addRef         uintptr
	release        uintptr
	invoke         uintptr
}

var (
	sharedVtbl     *frameArrivedVtbl
	sharedVtblOnce sync.Once

	handlerMu      sync.Mutex
	handlerByPtr   = map[uintptr]*frameArrivedHandler{}
)

func newFrameArrivedHandler(onFrame func()) *frameArrivedHandler {
	sharedVtblOnce.Do(func() {
		sharedVtbl = &frameArrivedVtbl{
			queryInterface: syscall.NewCallback(handlerQueryInterface),
			addRef:         syscall.NewCallback(handlerAddRef),
			release:        syscall.NewCallback(handlerRelease),
			invoke:         syscall.NewCallback(handlerInvoke),
		}
	})
	h := &frameArrivedHandler{vtbl: sharedVtbl, refCount: 1, onFrame: onFrame}
	handlerMu.Lock()
	handlerByPtr[h.iUnknownPtr()] = h
	handlerMu.Unlock()
	return h
}

// iUnknownPtr returns the address of this object's vtable-pointer field,
// i.e. the value a COM caller treats as "the interface pointer".
func (h *frameArrivedHandler) iUnknownPtr() uintptr {
	return uintptr(unsafe.Pointer(h))
}

func (h *frameArrivedHandler) release() {
	handlerMu.Lock()
	delete(handlerByPtr, h.iUnknownPtr())
	handlerMu.Unlock()
}

func lookupHandler(self uintptr) *frameArrivedHandler {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	return handlerByPtr[self]
}

func handlerQueryInterface(self, riid, ppv uintptr) uintptr {
	if ppv != 0 {
		*(*uintptr)(unsafe.Pointer(ppv)) = self
	}
	handlerAddRef(self)
	return 0 // S_OK
}

func handlerAddRef(self uintptr) uintptr {
	h := lookupHandler(self)
	if h == nil {
		return 1
	}
	h.refCount++
	return uintptr(h.refCount)
}

func handlerRelease(self uintptr) uintptr {
	h := lookupHandler(self)
	if h == nil {
		return 0
	}
	h.refCount--
	if h.refCount <= 0 {
		h.release()
		return 0
	}
	return uintptr(h.refCount)
}

// handlerInvoke is the ITypedEventHandler::Invoke(sender, args) callback
// WGC calls from its own apartment thread — precisely the re-entrant call
// spec §9 warns must never be made while holding an engine lock. The
// handler here only forwards to onFrame; internal/capture's engine is
// responsible for keeping its own state lock-free across this boundary.
func handlerInvoke(self, sender, args uintptr) uintptr {
	h := lookupHandler(self)
	if h == nil || h.onFrame == nil {
		return 0
	}
	h.onFrame()
	return 0 // S_OK; all handler-internal errors are posted to the error channel, never returned here
}
