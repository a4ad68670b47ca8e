package capture

import (
	"sync"

	"github.com/Nu-Pan/aynime-capture/internal/errs"
)

// ReleaseFunc frees the GPU texture owned by a FrameRecord. internal/capture
// stays platform-agnostic by taking this as a constructor argument; the
// Windows engine wires it to a comRelease on the underlying texture, and
// engine_other.go's fake source wires it to a no-op.
type ReleaseFunc func(texture uintptr)

// Ring is the time-and-memory-bounded rotating store of FrameRecords from
// spec §3/§4.E. Exactly one writer (the capture engine) and many readers
// (snapshot construction) share it under a RWMutex.
type Ring struct {
	mu      sync.RWMutex
	records []*FrameRecord
	head    int
	count   int
	release ReleaseFunc
}

// NewRing allocates a ring of the given capacity (at least 1).
func NewRing(capacity int, release ReleaseFunc) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	if release == nil {
		release = func(uintptr) {}
	}
	return &Ring{
		records: make([]*FrameRecord, capacity),
		release: release,
	}
}

// Push stores rec at the next slot, evicting the oldest record if the ring
// was already full (spec §4.E push).
func (r *Ring) Push(rec *FrameRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.head = (r.head + 1) % len(r.records)
	if evicted := r.records[r.head]; evicted != nil {
		r.release(evicted.Texture)
	}
	r.records[r.head] = rec
	if r.count < len(r.records) {
		r.count++
	}
}

// Resize reallocates the ring to newCapacity, releasing every held texture
// and starting empty — used when content-size changes make retained frames
// geometrically inconsistent (spec §4.E resize).
func (r *Ring) Resize(newCapacity int) {
	if newCapacity < 1 {
		newCapacity = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseAllLocked()
	r.records = make([]*FrameRecord, newCapacity)
	r.head = 0
	r.count = 0
}

// Clear drops all references, releasing their textures (spec §4.E clear).
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.releaseAllLocked()
}

func (r *Ring) releaseAllLocked() {
	for i, rec := range r.records {
		if rec != nil {
			r.release(rec.Texture)
			r.records[i] = nil
		}
	}
	r.count = 0
}

// ringEntry pairs a record with its age at snapshot time, mirroring the
// original FreezedFrameBuffer's per-frame relativeInSec field.
type ringEntry struct {
	record    *FrameRecord
	relativeS float64
}

// SnapshotRange copies out references to every occupied slot whose age is
// within maxAgeSeconds (plus a one-tick tolerance), newest first. If that
// selection is empty and the ring holds anything, it falls back to exactly
// the most recent frame — the engine guarantees at least one observable
// frame once it has produced any (spec §4.E, grounded on FreezedFrameBuffer's
// constructor in frame_buffer.cpp).
func (r *Ring) SnapshotRange(nowTicks int64, ageOf func(int64) float64, maxAgeSeconds float64) []ringEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.count == 0 {
		return nil
	}

	// One tick of the caller's clock, in seconds: the age tolerance.
	oneTick := ageOf(nowTicks-1) - ageOf(nowTicks)

	// Oldest-to-newest traversal order starting count-1 slots behind head
	// (Push advances head before writing, so that is one past head once the
	// ring is full, and slot 1 for a ring filled from empty).
	n := len(r.records)
	start := (r.head - r.count + 1 + n) % n

	entries := make([]ringEntry, 0, r.count)
	var newest *ringEntry
	for i := 0; i < r.count; i++ {
		idx := (start + i) % n
		rec := r.records[idx]
		if rec == nil {
			continue
		}
		relative := ageOf(rec.Timestamp)
		entry := ringEntry{record: rec, relativeS: relative}
		if newest == nil || relative < newest.relativeS {
			latest := entry
			newest = &latest
		}
		if relative <= maxAgeSeconds+oneTick {
			entries = append(entries, entry)
		}
	}

	if len(entries) == 0 && newest != nil {
		entries = append(entries, *newest)
	}

	// Newest first: smaller relative age sorts first.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].relativeS < entries[j-1].relativeS; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return entries
}

// NearestByAge linearly scans entries for the one whose relative age is
// closest to target, with the earlier iteration order winning ties. entries
// is newest-first, so this favors the newer candidate on a tie — the
// "smaller index" rule get_index_by_time needs.
func NearestByAge(entries []ringEntry, target float64) (int, error) {
	if len(entries) == 0 {
		return -1, errs.FromSentinel(errs.KindEmptyBuffer, errs.ErrEmptyBuffer)
	}
	best := 0
	bestScore := absFloat(entries[0].relativeS - target)
	for i := 1; i < len(entries); i++ {
		score := absFloat(entries[i].relativeS - target)
		if score < bestScore {
			best = i
			bestScore = score
		}
	}
	return best, nil
}

// nearestByAgeFavorOlder is NearestByAge's counterpart for the FPS remap: it
// breaks ties toward the older candidate (larger relativeS, smaller raw
// timestamp) instead of the newer one. entries is newest-first, so this is
// NOT the same rule as "earlier index wins" — it deliberately overrides that
// when two candidates are equidistant from target.
func nearestByAgeFavorOlder(entries []ringEntry, target float64) (int, error) {
	if len(entries) == 0 {
		return -1, errs.FromSentinel(errs.KindEmptyBuffer, errs.ErrEmptyBuffer)
	}
	best := 0
	bestScore := absFloat(entries[0].relativeS - target)
	for i := 1; i < len(entries); i++ {
		score := absFloat(entries[i].relativeS - target)
		if score < bestScore || (score == bestScore && entries[i].relativeS > entries[best].relativeS) {
			best = i
			bestScore = score
		}
	}
	return best, nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
