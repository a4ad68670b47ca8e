//go:build windows

package wgcwin

import (
	"fmt"
	"unsafe"
)

// ID3D11VideoDevice/ID3D11VideoContext GUIDs and vtable offsets, grounded on
// the teacher's comutil_windows.go — same interfaces, reused here for
// internal/resize's BGRA scale-in-place Blt instead of the teacher's
// BGRA->NV12 color conversion.
var (
	iidID3D11VideoDevice  = comGUID{0x10ec4d5b, 0x975a, 0x4689, [8]byte{0xb9, 0xe4, 0xd0, 0xaa, 0xc3, 0x0f, 0xe3, 0x33}}
	iidID3D11VideoContext = comGUID{0x61f21c45, 0x3c0e, 0x4a74, [8]byte{0x9c, 0xea, 0x67, 0x10, 0x0d, 0x9a, 0xd5, 0xe4}}
)

const (
	vidDevCreateVideoProcessor           = 4
	vidDevCreateVideoProcessorEnumerator = 10
	vidDevCreateVideoProcessorInputView  = 8
	vidDevCreateVideoProcessorOutputView = 9
	vidCtxVideoProcessorBlt              = 53
)

// d3d11VideoProcessorContentDesc matches D3D11_VIDEO_PROCESSOR_CONTENT_DESC.
type d3d11VideoProcessorContentDesc struct {
	InputFrameFormat uint32
	InputFrameRateN  uint32
	InputFrameRateD  uint32
	InputWidth       uint32
	InputHeight      uint32
	OutputFrameRateN uint32
	OutputFrameRateD uint32
	OutputWidth      uint32
	OutputHeight     uint32
	Usage            uint32
}

// d3d11VideoProcessorStream matches D3D11_VIDEO_PROCESSOR_STREAM, only the
// fields VideoProcessorBlt needs for a single enabled input stream.
type d3d11VideoProcessorStream struct {
	Enable            int32
	OutputIndex       uint32
	InputFrameOrField uint32
	PastFrames        uint32
	FutureFrames      uint32
	PPastSurfaces     uintptr
	PInputSurface     uintptr
	PPFutureSurfaces  uintptr
}

// QueryVideoDevice fetches the ID3D11VideoDevice interface from the shared
// D3D11 device.
func QueryVideoDevice(devicePtr uintptr) (uintptr, error) {
	return queryInterface(devicePtr, &iidID3D11VideoDevice)
}

// QueryVideoContext fetches the ID3D11VideoContext interface from the
// shared device's immediate context.
func QueryVideoContext(contextPtr uintptr) (uintptr, error) {
	return queryInterface(contextPtr, &iidID3D11VideoContext)
}

// CreateVideoProcessorEnumerator describes a scale from srcW x srcH to
// dstW x dstH at an arbitrary nominal frame rate (the video processor only
// uses this for deinterlacing decisions, irrelevant to a progressive Blt).
func CreateVideoProcessorEnumerator(videoDevice uintptr, srcW, srcH, dstW, dstH int) (uintptr, error) {
	desc := d3d11VideoProcessorContentDesc{
		InputFrameFormat: 0,
		InputFrameRateN:  60,
		InputFrameRateD:  1,
		InputWidth:       uint32(srcW),
		InputHeight:      uint32(srcH),
		OutputFrameRateN: 60,
		OutputFrameRateD: 1,
		OutputWidth:      uint32(dstW),
		OutputHeight:     uint32(dstH),
		Usage:            0,
	}
	var enumerator uintptr
	_, err := comCall(videoDevice, vidDevCreateVideoProcessorEnumerator,
		uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&enumerator)))
	if err != nil {
		return 0, err
	}
	return enumerator, nil
}

// CreateVideoProcessor creates the processor object for a given enumerator.
func CreateVideoProcessor(videoDevice, enumerator uintptr) (uintptr, error) {
	var processor uintptr
	_, err := comCall(videoDevice, vidDevCreateVideoProcessor, enumerator, 0, uintptr(unsafe.Pointer(&processor)))
	if err != nil {
		return 0, err
	}
	return processor, nil
}

// CreateVideoProcessorInputView wraps a source texture as a video processor
// input view (Texture2D, mip 0).
func CreateVideoProcessorInputView(videoDevice, srcTex, enumerator uintptr) (uintptr, error) {
	desc := [5]uint32{0, 1, 0, 0, 0}
	var view uintptr
	_, err := comCall(videoDevice, vidDevCreateVideoProcessorInputView,
		srcTex, enumerator, uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&view)))
	if err != nil {
		return 0, err
	}
	return view, nil
}

// CreateVideoProcessorOutputView wraps a destination texture as a video
// processor output view (Texture2D).
func CreateVideoProcessorOutputView(videoDevice, dstTex, enumerator uintptr) (uintptr, error) {
	desc := [4]uint32{1, 0, 0, 0}
	var view uintptr
	_, err := comCall(videoDevice, vidDevCreateVideoProcessorOutputView,
		dstTex, enumerator, uintptr(unsafe.Pointer(&desc)), uintptr(unsafe.Pointer(&view)))
	if err != nil {
		return 0, err
	}
	return view, nil
}

// VideoProcessorBlt runs a single-stream blit from inputView into
// outputView, performing whatever scale the enumerator was created with.
func VideoProcessorBlt(videoContext, processor, outputView, inputView uintptr) error {
	stream := d3d11VideoProcessorStream{Enable: 1, PInputSurface: inputView}
	_, err := comCall(videoContext, vidCtxVideoProcessorBlt,
		processor, outputView, 0, 1, uintptr(unsafe.Pointer(&stream)))
	if err != nil {
		return fmt.Errorf("VideoProcessorBlt: %w", err)
	}
	return nil
}
