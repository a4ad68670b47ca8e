// Package clock provides the process-wide monotonic high-resolution
// timestamp source (spec §4.A / Component A), grounded on NowFromQPC in the
// original implementation's utils.h.
package clock

import "github.com/Nu-Pan/aynime-capture/internal/errs"

// Source is a monotonic tick counter. Frequency is queried once at first use
// and cached; Now returns a tick count convertible to seconds by dividing by
// FreqHz. Implementations must use split quotient/remainder arithmetic when
// converting long spans between tick bases to avoid 64-bit overflow.
type Source struct {
	freqHz int64
}

// New returns a Source with its frequency queried and cached. Returns
// errs.KindClockUnavailable if the OS primitive refuses.
func New() (*Source, error) {
	freq, err := queryFrequency()
	if err != nil {
		return nil, errs.New(errs.KindClockUnavailable, "failed to query clock frequency").WithSentinel(err)
	}
	return &Source{freqHz: freq}, nil
}

// FreqHz returns the cached ticks-per-second of this source.
func (s *Source) FreqHz() int64 {
	return s.freqHz
}

// Now returns the current tick count.
func (s *Source) Now() int64 {
	return queryTicks()
}

// DurationSeconds converts a span of ticks (new - old) to seconds using this
// source's frequency, guarding against overflow by splitting the division
// into quotient/remainder the way a systems-language rewrite must for spans
// that would overflow a naive (ticks * 1e9) intermediate.
func (s *Source) DurationSeconds(ticks int64) float64 {
	if s.freqHz == 0 {
		return 0
	}
	whole := ticks / s.freqHz
	rem := ticks % s.freqHz
	return float64(whole) + float64(rem)/float64(s.freqHz)
}

// SecondsSince returns the elapsed time in seconds between a past tick value
// and now, i.e. DurationSeconds(s.Now() - past).
func (s *Source) SecondsSince(past int64) float64 {
	return s.DurationSeconds(s.Now() - past)
}
