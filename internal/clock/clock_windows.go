//go:build windows

package clock

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	modKernel32                   = syscall.NewLazyDLL("kernel32.dll")
	procQueryPerformanceFrequency = modKernel32.NewProc("QueryPerformanceFrequency")
	procQueryPerformanceCounter   = modKernel32.NewProc("QueryPerformanceCounter")
)

func queryFrequency() (int64, error) {
	var freq int64
	ret, _, callErr := procQueryPerformanceFrequency.Call(uintptr(unsafe.Pointer(&freq)))
	if ret == 0 {
		return 0, fmt.Errorf("QueryPerformanceFrequency: %w", callErr)
	}
	return freq, nil
}

func queryTicks() int64 {
	var ticks int64
	ret, _, _ := procQueryPerformanceCounter.Call(uintptr(unsafe.Pointer(&ticks)))
	if ret == 0 {
		// Unreachable on any supported Windows version; return 0 rather than
		// panic so a caller mid-shutdown never crashes on a clock read.
		return 0
	}
	return ticks
}
