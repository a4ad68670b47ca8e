//go:build !windows

package clock

import "time"

// On non-Windows builds there is no WGC to capture from, so this source
// exists only to keep internal/capture's ring/session logic testable
// off-Windows (see SPEC_FULL.md's ambient test-tooling note). It reports a
// nanosecond tick base from the Go runtime's monotonic clock reading.
const fallbackFreqHz = int64(time.Second)

var processStart = time.Now()

func queryFrequency() (int64, error) {
	return fallbackFreqHz, nil
}

func queryTicks() int64 {
	return int64(time.Since(processStart))
}
