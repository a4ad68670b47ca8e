//go:build windows

package wgcwin

import "unsafe"

// CaptureSession wraps IGraphicsCaptureSession, created from a CaptureItem
// and bound to a FramePool (spec §4.G init step 8).
type CaptureSession struct {
	ptr uintptr
}

// CreateCaptureSession creates a session for item via the frame pool's
// CreateCaptureSession factory method.
func CreateCaptureSession(pool *FramePool, item *CaptureItem) (*CaptureSession, error) {
	var session uintptr
	// IDirect3D11CaptureFramePool::CreateCaptureSession(item, &session), vtable index 11.
	_, err := comCall(pool.ptr, 11, item.ptr, uintptr(unsafe.Pointer(&session)))
	if err != nil {
		return nil, err
	}
	return &CaptureSession{ptr: session}, nil
}

// SetIncludeCursor sets IsCursorCaptureEnabled if the platform supports the
// property; unsupported platforms silently no-op (capability-gated setter,
// spec §4.G init step 8).
func (s *CaptureSession) SetIncludeCursor(v bool) {
	// put_IsCursorCaptureEnabled, vtable index 7. Older Windows builds lack
	// this property; a failing HRESULT here is the capability probe itself.
	comCall(s.ptr, 7, boolArg(v))
}

// SetBorderRequired sets IsBorderRequired on platforms that support it
// (Windows 11 22H2+); silently skipped otherwise.
func (s *CaptureSession) SetBorderRequired(v bool) {
	// put_IsBorderRequired, vtable index 8 (IGraphicsCaptureSession2).
	comCall(s.ptr, 8, boolArg(v))
}

// SetIncludeSecondaryWindows sets IsSecondaryWindowsEnabled to v, the
// capability-gated setter named in spec §4.G init step 8.
func (s *CaptureSession) SetIncludeSecondaryWindows(v bool) {
	// put_IsSecondaryWindowsEnabled, vtable index 9 (IGraphicsCaptureSession3 equivalent).
	comCall(s.ptr, 9, boolArg(v))
}

// StartCapture begins delivering frames to the bound frame pool.
func (s *CaptureSession) StartCapture() error {
	// IGraphicsCaptureSession::StartCapture, vtable index 6.
	_, err := comCall(s.ptr, 6)
	return err
}

// Close closes the capture session (shutdown step 2).
func (s *CaptureSession) Close() {
	if s.ptr == 0 {
		return
	}
	comCall(s.ptr, 10) // IClosable::Close
	comRelease(s.ptr)
	s.ptr = 0
}

func boolArg(v bool) uintptr {
	if v {
		return 1
	}
	return 0
}
