package capture

import (
	"math"
	"sync"

	"github.com/Nu-Pan/aynime-capture/internal/errs"
	"github.com/Nu-Pan/aynime-capture/internal/workerpool"
)

// Session is the immutable Snapshot view carved out of a Ring (spec §4.H).
// Its frame references keep the referenced textures alive regardless of
// subsequent ring eviction — eviction calls Ring's release function, but a
// Session holds its own FrameRecord pointers, so the texture they name is
// never the one the ring frees.
type Session struct {
	clockFreq     int64
	latestTicks   int64
	entries       []ringEntry // newest-first, raw order
	userToRaw     []int       // identity when no fps remap
	closed        bool
}

// NewSession builds a Snapshot: ring.SnapshotRange(durationSeconds), then an
// optional FPS remap (spec §4.H).
//
// ageOf converts a record's raw timestamp into its age in seconds relative
// to "now"; callers compose it from the clock's frequency and current tick
// so Session never imports internal/clock directly.
func NewSession(ring *Ring, nowTicks int64, clockFreq int64, ageOf func(timestamp int64) float64, durationSeconds float64, fps *float64) *Session {
	entries := ring.SnapshotRange(nowTicks, ageOf, durationSeconds)

	s := &Session{clockFreq: clockFreq, latestTicks: nowTicks, entries: entries}
	s.userToRaw = identityMap(len(entries))

	if fps != nil && *fps > 0 && len(entries) > 0 {
		s.remapToFPS(durationSeconds, *fps)
	}
	return s
}

func identityMap(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

// remapToFPS implements spec §4.H's FPS remap: select, for each of N evenly
// spaced target times spanning userDuration, the raw frame nearest in time.
// Ties favor the older raw frame (smaller timestamp) — the opposite of
// GetIndexByTime's smaller-index rule — so this uses nearestByAgeFavorOlder
// rather than NearestByAge.
func (s *Session) remapToFPS(durationSeconds float64, fps float64) {
	if len(s.entries) == 0 {
		return
	}
	minTS, maxTS := s.entries[0].relativeS, s.entries[0].relativeS
	for _, e := range s.entries {
		if e.relativeS < minTS {
			minTS = e.relativeS
		}
		if e.relativeS > maxTS {
			maxTS = e.relativeS
		}
	}
	rawDuration := maxTS - minTS

	userDuration := durationSeconds
	if userDuration <= 0 {
		userDuration = rawDuration
	}

	n := int(math.Round(userDuration * fps))
	if n <= 0 {
		return
	}

	remap := make([]int, n)
	for i := 0; i < n; i++ {
		t := userDuration * float64(n-i-1) / float64(n)
		idx, err := nearestByAgeFavorOlder(s.entries, t)
		if err != nil {
			idx = 0
		}
		remap[i] = idx
	}
	s.userToRaw = remap
}

// GetIndexByTime implements spec §4.H's get_index_by_time: linear scan for
// the frame whose age relative to latest is closest to t. Returns -1 when
// the session is empty (the sentinel "none").
func (s *Session) GetIndexByTime(t float64) int {
	if len(s.userToRaw) == 0 {
		return -1
	}
	best := 0
	bestScore := absFloat(s.entries[s.userToRaw[0]].relativeS - t)
	for i := 1; i < len(s.userToRaw); i++ {
		score := absFloat(s.entries[s.userToRaw[i]].relativeS - t)
		if score < bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

// GetFrame resolves user index i through the user-to-raw map and performs
// readback on the GPU texture the referenced record still holds (spec
// §4.H's get_frame).
func (s *Session) GetFrame(dev Device, i int) (width, height int, buf []byte, err error) {
	if s.closed {
		return 0, 0, nil, errs.FromSentinel(errs.KindSessionClosed, errs.ErrSessionClosed)
	}
	if i < 0 || i >= len(s.userToRaw) {
		return 0, 0, nil, errs.FromSentinel(errs.KindOutOfRange, errs.ErrOutOfRange).WithContext("index", i)
	}
	rec := s.entries[s.userToRaw[i]].record
	return Readback(dev, rec.Texture)
}

// FrameResult is one entry of a GetFrames bulk readback: the user index it
// was requested for, plus GetFrame's usual (width, height, buf, err) tuple.
type FrameResult struct {
	Index         int
	Width, Height int
	Buf           []byte
	Err           error
}

// GetFrames reads several user indices concurrently through pool, one
// readback task per index. Unlike GetFrame, this isn't a spec §4.H
// operation — it's a host convenience (cmd/aynime-capture's "snapshot -n"
// path) for pulling N frames out of a session without the caller hand
// rolling its own goroutine fan-out. The D3D11 immediate context tolerates
// concurrent Map/Unmap because the GPU context enables multithread
// protection (spec §4.C); pool just bounds how many run at once.
//
// Results are returned in the same order as indices regardless of
// completion order. A nil pool runs the reads sequentially on the caller's
// goroutine instead of fanning out.
func (s *Session) GetFrames(dev Device, pool *workerpool.Pool, indices []int) []FrameResult {
	results := make([]FrameResult, len(indices))

	if pool == nil {
		for i, idx := range indices {
			w, h, buf, err := s.GetFrame(dev, idx)
			results[i] = FrameResult{Index: idx, Width: w, Height: h, Buf: buf, Err: err}
		}
		return results
	}

	var wg sync.WaitGroup
	for i, idx := range indices {
		i, idx := i, idx
		wg.Add(1)
		submitted := pool.Submit(func() {
			defer wg.Done()
			w, h, buf, err := s.GetFrame(dev, idx)
			results[i] = FrameResult{Index: idx, Width: w, Height: h, Buf: buf, Err: err}
		})
		if !submitted {
			wg.Done()
			results[i] = FrameResult{Index: idx, Err: errs.New(errs.KindInternalInvariant, "readback pool queue full")}
		}
	}
	wg.Wait()
	return results
}

// Len returns the number of frames visible through this session (post remap).
func (s *Session) Len() int { return len(s.userToRaw) }

// Close drops all record references, marking the session closed. Subsequent
// GetFrame calls fail with SessionClosed. Session holds its own references
// separate from the ring, so closing it does not touch any ring slot.
func (s *Session) Close() {
	s.closed = true
	s.entries = nil
	s.userToRaw = nil
}
