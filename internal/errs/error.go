// Package errs implements the structured error value and cross-thread error
// channel that carry failures out of the capture engine's apartment thread.
package errs

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
)

// Kind identifies the class of failure, independent of the description text.
type Kind string

const (
	KindPlatformUnsupported     Kind = "PlatformUnsupported"
	KindTargetInvalid           Kind = "TargetInvalid"
	KindGpuInitFailed           Kind = "GpuInitFailed"
	KindStagingAllocFailed      Kind = "StagingAllocFailed"
	KindMapFailed               Kind = "MapFailed"
	KindStreamClosed            Kind = "StreamClosed"
	KindSessionClosed           Kind = "SessionClosed"
	KindOutOfRange              Kind = "OutOfRange"
	KindEmptyBuffer             Kind = "EmptyBuffer"
	KindInternalInvariant       Kind = "InternalInvariantViolated"
	KindClockUnavailable        Kind = "ClockUnavailable"
)

// Sentinel values so callers can errors.Is against a stable identity
// regardless of the dynamic description/context carried by *Error.
var (
	ErrStreamClosed  = errors.New("errs: stream is closed")
	ErrSessionClosed = errors.New("errs: session is closed")
	ErrOutOfRange    = errors.New("errs: frame index out of range")
	ErrEmptyBuffer   = errors.New("errs: no frame has arrived yet")
)

// Error is the structured error value described in spec §3/§7: a description,
// the site it was raised at, one key/value pair of typed context, and a
// captured stack trace.
type Error struct {
	Kind        Kind
	Description string
	File        string
	Line        int
	Key         string
	Value       any
	Trace       string

	wrapped error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (%s=%v) [%s:%d]", e.Kind, e.Description, e.Key, e.Value, e.File, e.Line)
	}
	return fmt.Sprintf("%s: %s [%s:%d]", e.Kind, e.Description, e.File, e.Line)
}

// Unwrap lets errors.Is/errors.As reach a wrapped sentinel, e.g. ErrStreamClosed.
func (e *Error) Unwrap() error {
	return e.wrapped
}

// New constructs a structured error, capturing the caller's file/line and the
// current goroutine's stack the same way internal/workerpool captures a
// panicking task's stack.
func New(kind Kind, description string) *Error {
	return newAt(2, kind, description, "", nil, nil)
}

// Newf is New with a formatted description.
func Newf(kind Kind, format string, args ...any) *Error {
	return newAt(2, kind, fmt.Sprintf(format, args...), "", nil, nil)
}

// WithContext attaches one key/value pair of typed context, e.g.
// WithContext("HRESULT", hresult) or WithContext("index", i).
func (e *Error) WithContext(key string, value any) *Error {
	e.Key = key
	e.Value = value
	return e
}

// WithSentinel wraps a stable sentinel (ErrStreamClosed etc.) so errors.Is
// succeeds against it while the dynamic payload is preserved.
func (e *Error) WithSentinel(sentinel error) *Error {
	e.wrapped = sentinel
	return e
}

// FromSentinel builds a structured error already wrapping a known sentinel.
func FromSentinel(kind Kind, sentinel error) *Error {
	e := newAt(2, kind, sentinel.Error(), "", nil, nil)
	e.wrapped = sentinel
	return e
}

// FromHRESULT builds a GpuInitFailed/MapFailed-style error carrying the raw
// HRESULT as typed context, mirroring GeneralError's formattable-value
// stringification for HRESULT codes in the original implementation.
func FromHRESULT(kind Kind, description string, hresult int32) *Error {
	e := newAt(2, kind, description, "", nil, nil)
	return e.WithContext("HRESULT", fmt.Sprintf("0x%08X", uint32(hresult)))
}

func newAt(skip int, kind Kind, description string, key string, value any, wrapped error) *Error {
	file, line := callerSite(skip + 1)
	return &Error{
		Kind:        kind,
		Description: description,
		File:        file,
		Line:        line,
		Key:         key,
		Value:       value,
		Trace:       string(debug.Stack()),
		wrapped:     wrapped,
	}
}

func callerSite(skip int) (string, int) {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", 0
	}
	return file, line
}
