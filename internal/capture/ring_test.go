package capture

import "testing"

func TestRingPushEvictsOldest(t *testing.T) {
	var released []uintptr
	r := NewRing(2, func(tex uintptr) { released = append(released, tex) })

	r.Push(&FrameRecord{Texture: 1, Timestamp: 1})
	r.Push(&FrameRecord{Texture: 2, Timestamp: 2})
	if len(released) != 0 {
		t.Fatalf("unexpected release before ring full: %v", released)
	}

	r.Push(&FrameRecord{Texture: 3, Timestamp: 3})
	if len(released) != 1 || released[0] != 1 {
		t.Fatalf("expected texture 1 evicted, got %v", released)
	}
}

func TestRingResizeReleasesEverything(t *testing.T) {
	var released []uintptr
	r := NewRing(3, func(tex uintptr) { released = append(released, tex) })
	r.Push(&FrameRecord{Texture: 1, Timestamp: 1})
	r.Push(&FrameRecord{Texture: 2, Timestamp: 2})

	r.Resize(5)

	if len(released) != 2 {
		t.Fatalf("expected 2 releases on resize, got %d", len(released))
	}

	entries := r.SnapshotRange(100, func(ts int64) float64 { return 0 }, 1000)
	if len(entries) != 0 {
		t.Fatalf("resized ring should start empty, got %d entries", len(entries))
	}
}

func TestRingClearReleasesAll(t *testing.T) {
	var released []uintptr
	r := NewRing(4, func(tex uintptr) { released = append(released, tex) })
	for i := uintptr(1); i <= 3; i++ {
		r.Push(&FrameRecord{Texture: i, Timestamp: int64(i)})
	}

	r.Clear()

	if len(released) != 3 {
		t.Fatalf("expected 3 releases on clear, got %d", len(released))
	}
	entries := r.SnapshotRange(100, func(ts int64) float64 { return 0 }, 1000)
	if len(entries) != 0 {
		t.Fatalf("cleared ring should have no entries, got %d", len(entries))
	}
}

func TestRingSnapshotRangeNewestFirst(t *testing.T) {
	r := NewRing(4, nil)
	for i := int64(1); i <= 4; i++ {
		r.Push(&FrameRecord{Texture: uintptr(i), Timestamp: i})
	}

	ageOf := func(ts int64) float64 { return float64(5 - ts) }
	entries := r.SnapshotRange(5, ageOf, 1000)

	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].relativeS > entries[i+1].relativeS {
			t.Fatalf("entries not newest-first: %+v", entries)
		}
	}
	if entries[0].record.Texture != 4 {
		t.Fatalf("expected newest record first (texture 4), got %d", entries[0].record.Texture)
	}
}

func TestRingSnapshotRangeFallsBackToNewestWhenEmptyWindow(t *testing.T) {
	r := NewRing(2, nil)
	r.Push(&FrameRecord{Texture: 1, Timestamp: 1})

	// A window that excludes everything should still return the latest frame.
	ageOf := func(ts int64) float64 { return 1000 }
	entries := r.SnapshotRange(999, ageOf, 0.001)
	if len(entries) != 1 {
		t.Fatalf("expected fallback to single newest entry, got %d", len(entries))
	}
}

func TestNearestByAgePicksClosest(t *testing.T) {
	entries := []ringEntry{
		{relativeS: 0.0},
		{relativeS: 1.0},
		{relativeS: 2.0},
	}
	idx, err := NearestByAge(entries, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
}

func TestNearestByAgeEmptyReturnsError(t *testing.T) {
	_, err := NearestByAge(nil, 0)
	if err == nil {
		t.Fatal("expected error for empty entries")
	}
}

func TestNearestByAgeFavorsNewerOnTie(t *testing.T) {
	// newest-first: index 0 is newer (smaller relativeS) than index 1.
	entries := []ringEntry{
		{relativeS: 0.0},
		{relativeS: 2.0},
	}
	idx, err := NearestByAge(entries, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected tie to favor newer entry (index 0), got %d", idx)
	}
}

func TestNearestByAgeFavorOlderPicksClosest(t *testing.T) {
	entries := []ringEntry{
		{relativeS: 0.0},
		{relativeS: 1.0},
		{relativeS: 2.0},
	}
	idx, err := nearestByAgeFavorOlder(entries, 0.9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
}

func TestNearestByAgeFavorOlderFavorsOlderOnTie(t *testing.T) {
	// newest-first: index 1 is older (larger relativeS) than index 0.
	entries := []ringEntry{
		{relativeS: 0.0},
		{relativeS: 2.0},
	}
	idx, err := nearestByAgeFavorOlder(entries, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected tie to favor older entry (index 1), got %d", idx)
	}
}

func TestNearestByAgeFavorOlderEmptyReturnsError(t *testing.T) {
	_, err := nearestByAgeFavorOlder(nil, 0)
	if err == nil {
		t.Fatal("expected error for empty entries")
	}
}
