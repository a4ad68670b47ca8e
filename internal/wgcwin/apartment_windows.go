//go:build windows

package wgcwin

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

var (
	modCoreMessaging = syscall.NewLazyDLL("coremessaging.dll")

	procCreateDispatcherQueueController = modCoreMessaging.NewProc("CreateDispatcherQueueController")
)

// dispatcherQueueOptions matches DispatcherQueueOptions.
type dispatcherQueueOptions struct {
	dwSize     uint32
	threadType int32 // DQTYPE_THREAD_CURRENT = 2
	apartmentType int32 // DQTAT_COM_STA = 2
}

const (
	dqTypeThreadCurrent = 2
	dqtatComSTA         = 2
)

// Apartment represents the single-threaded COM apartment that owns every WGC
// object for one Stream (spec §4.G, §9 "Apartment confinement"). It must be
// created and torn down on the same OS thread: Init locks the calling
// goroutine to its OS thread and Uninit unlocks it, so both run on the same
// goroutine.
type Apartment struct {
	dispatcherController uintptr // IDispatcherQueueController
	tid                   uint32
}

// Init performs step 1-3 of the engine's initialization sequence: apartment
// init as single-threaded, then a dispatcher-queue controller bound to the
// current thread. Must run on the locked OS thread that will host the
// message pump.
func Init() (*Apartment, error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("CoInitializeEx(APARTMENTTHREADED): %w", err)
	}

	opts := dispatcherQueueOptions{
		dwSize:        uint32(unsafe.Sizeof(dispatcherQueueOptions{})),
		threadType:    dqTypeThreadCurrent,
		apartmentType: dqtatComSTA,
	}
	var controller uintptr
	hr, _, _ := procCreateDispatcherQueueController.Call(
		uintptr(unsafe.Pointer(&opts)),
		uintptr(unsafe.Pointer(&controller)),
	)
	if int32(hr) < 0 {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, hresultError("CreateDispatcherQueueController", hr)
	}

	return &Apartment{dispatcherController: controller}, nil
}

// ShutdownDispatcherQueue requests async shutdown of the dispatcher queue and
// pumps messages on the current thread while waiting for the completion
// event, per spec §4.G shutdown step 4. Bounded by a detachable waiter: if
// the wait itself fails, the apartment is torn down immediately rather than
// risk a hung close().
func (a *Apartment) ShutdownDispatcherQueue() {
	if a.dispatcherController == 0 {
		return
	}
	// IDispatcherQueueController::ShutdownQueueAsync, vtable index 6
	// (IUnknown 0-2, IInspectable 3-5, then this method).
	var op uintptr
	comCall(a.dispatcherController, 6, uintptr(unsafe.Pointer(&op)))
	if op != 0 {
		pumpUntilCompleted(op)
		comRelease(op)
	}
	comRelease(a.dispatcherController)
	a.dispatcherController = 0
}

// Uninit uninitializes the apartment. Best-effort: never raises (spec §4.G
// "every shutdown step is best-effort").
func (a *Apartment) Uninit() {
	ole.CoUninitialize()
	runtime.UnlockOSThread()
}
