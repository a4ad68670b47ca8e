// Package capture implements the ring buffer, snapshot session, capture
// engine, and stream facade — components D through I.
package capture

// FrameRecord is the atomic unit published from the capture engine to the
// ring: an owning handle to an engine-allocated BGRA8 GPU texture, the
// monotonic timestamp it arrived at, and its pixel dimensions (spec §3).
//
// Immutable after construction. The texture it owns is released only when
// every holder — ring slot, snapshot, in-flight readback — has dropped its
// reference; internal/capture never frees a texture directly, it relies on
// whichever component last drops the record to call releaseTexture.
type FrameRecord struct {
	Texture   uintptr // ID3D11Texture2D*, owned by this record alone
	Timestamp int64   // clock ticks at arrival
	Width     int
	Height    int
}
