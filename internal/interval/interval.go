// Package interval holds the admission rules for caption timing. Every
// caption interval entering a store passes through IsValid; Overlaps backs
// the advisory overlap warning and never blocks a mutation.
package interval

import "math"

// IsValid reports whether [start, end] is an acceptable caption interval
// for a video of the given duration. The end must come strictly after the
// start and both ends must lie within [0, duration]. NaN anywhere fails.
func IsValid(start, end, duration float64) bool {
	if math.IsNaN(start) || math.IsNaN(end) || math.IsNaN(duration) {
		return false
	}
	if start < 0 || end <= start {
		return false
	}
	return start <= duration && end <= duration
}

// Overlaps reports whether two intervals share any span of time. The test
// is strict on both sides, so intervals that merely touch at an endpoint
// (one ends exactly where the other begins) do not overlap.
func Overlaps(startA, endA, startB, endB float64) bool {
	return startA < endB && startB < endA
}
