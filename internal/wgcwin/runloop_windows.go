//go:build windows

package wgcwin

import (
	"syscall"
	"unsafe"
)

var (
	modKernel32 = syscall.NewLazyDLL("kernel32.dll")

	procPeekMessageW             = modUser32.NewProc("PeekMessageW")
	procTranslateMessage         = modUser32.NewProc("TranslateMessage")
	procDispatchMessageW         = modUser32.NewProc("DispatchMessageW")
	procMsgWaitForMultipleObjects = modUser32.NewProc("MsgWaitForMultipleObjectsEx")
	procCreateEventW             = modKernel32.NewProc("CreateEventW")
	procSetEvent                 = modKernel32.NewProc("SetEvent")
	procCloseHandle              = modKernel32.NewProc("CloseHandle")
	procWaitForSingleObject      = modKernel32.NewProc("WaitForSingleObject")
)

const (
	pmRemove = 0x0001

	qsAllInput = 0x04FF

	waitObject0  = 0
	waitTimeout  = 0x102
	waitFailed   = 0xFFFFFFFF
	infiniteWait = 0xFFFFFFFF
)

// msgStruct matches the Win32 MSG struct.
type msgStruct struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// StopEvent is a manual-reset Win32 event used as the stream's stop signal.
type StopEvent struct {
	handle uintptr
}

// NewStopEvent creates an unsignaled manual-reset event.
func NewStopEvent() (*StopEvent, error) {
	h, _, callErr := procCreateEventW.Call(0, 1 /*manual reset*/, 0, 0)
	if h == 0 {
		return nil, hresultErrorFromErrno("CreateEventW", callErr)
	}
	return &StopEvent{handle: h}, nil
}

// Signal sets the event.
func (s *StopEvent) Signal() {
	if s.handle != 0 {
		procSetEvent.Call(s.handle)
	}
}

// Close releases the event handle.
func (s *StopEvent) Close() {
	if s.handle != 0 {
		procCloseHandle.Call(s.handle)
		s.handle = 0
	}
}

// Handle returns the raw HANDLE value.
func (s *StopEvent) Handle() uintptr { return s.handle }

// pumpMessages drains all queued messages on the current thread without
// blocking, dispatching each one. Used inside the run loop after every wake.
func pumpMessages() {
	var msg msgStruct
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmRemove)
		if ret == 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

// RunLoop enters the message-wait loop described in spec §4.G: alternate
// between waiting on the stop event (plus queued messages) and pumping
// messages, draining the error channel after each batch via onTick. Returns
// when the stop event fires or onTick reports a terminal error.
func RunLoop(stop *StopEvent, onTick func() (shouldStop bool)) {
	for {
		ret, _, _ := procMsgWaitForMultipleObjects.Call(
			1, uintptr(unsafe.Pointer(&stop.handle)),
			infiniteWait, qsAllInput, 0,
		)
		pumpMessages()
		if onTick != nil && onTick() {
			return
		}
		if ret == waitObject0 {
			return
		}
	}
}

// pumpUntilCompleted pumps messages while waiting on a completion handle
// (e.g. the dispatcher-queue shutdown-complete event), per spec §4.G
// shutdown step 4.
func pumpUntilCompleted(completionEvent uintptr) {
	for {
		ret, _, _ := procMsgWaitForMultipleObjects.Call(
			1, uintptr(unsafe.Pointer(&completionEvent)),
			infiniteWait, qsAllInput, 0,
		)
		pumpMessages()
		if ret == waitObject0 || ret == waitFailed {
			return
		}
	}
}

func hresultErrorFromErrno(op string, err error) error {
	if err == nil {
		return nil
	}
	return err
}
