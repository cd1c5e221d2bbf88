// Package timecode converts between caption positions in seconds and the
// zero-padded "HH:MM:SS" text form used by the editor and by exported
// snapshot documents.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse indicates a time string could not be read as HH:MM:SS.
var ErrParse = errors.New("unparseable time")

// Format renders a position in seconds as "HH:MM:SS" with each field
// zero-padded to two digits. NaN and negative inputs render as "00:00:00".
// Fractional seconds are floored, never rounded.
func Format(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// Parse reads a colon-separated time string back into seconds. One field is
// taken as seconds, two as minutes:seconds, three as hours:minutes:seconds.
// Minutes and seconds must not exceed 59 when more than one field is
// present; hours are unbounded. An empty string parses to zero, which lets
// untouched form fields mean "start of video". Anything else malformed
// fails with ErrParse.
func Parse(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrParse, text)
	}

	fields := make([]int64, len(parts))
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrParse, text)
		}
		fields[i] = n
	}

	switch len(fields) {
	case 1:
		return float64(fields[0]), nil
	case 2:
		if fields[0] > 59 || fields[1] > 59 {
			return 0, fmt.Errorf("%w: %q", ErrParse, text)
		}
		return float64(fields[0]*60 + fields[1]), nil
	default:
		if fields[1] > 59 || fields[2] > 59 {
			return 0, fmt.Errorf("%w: %q", ErrParse, text)
		}
		return float64(fields[0]*3600 + fields[1]*60 + fields[2]), nil
	}
}

// FormatDuration renders a length in seconds as prose, e.g. "1 hour, 5
// minutes". Zero-valued components are skipped; a zero total reads
// "0 seconds".
func FormatDuration(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	total := int64(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, pluralize(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, pluralize(minutes, "minute"))
	}
	if secs > 0 {
		parts = append(parts, pluralize(secs, "second"))
	}
	if len(parts) == 0 {
		return "0 seconds"
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
