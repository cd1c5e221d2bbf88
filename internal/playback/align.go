// Package playback answers alignment questions about a caption timeline and
// streams local video files to the browser with HTTP range support. The
// playback engine itself lives in the browser; this package only computes
// where captions sit relative to a reported playhead and hands back seek
// targets.
package playback

import "github.com/subcue/subcue-agent/internal/caption"

// Status places a playhead relative to one caption.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusPast     Status = "past"
)

// StatusOf classifies currentTime against a caption's interval. Both
// endpoints count as active, matching how FindActive treats them.
func StatusOf(c caption.Caption, currentTime float64) Status {
	switch {
	case currentTime < c.StartTime:
		return StatusUpcoming
	case currentTime <= c.EndTime:
		return StatusActive
	default:
		return StatusPast
	}
}

// ActiveProgress reports how far through an active caption the playhead is,
// clamped to [0, 1]. A caption that is not active reports 0.
func ActiveProgress(c caption.Caption, currentTime float64) float64 {
	if StatusOf(c, currentTime) != StatusActive {
		return 0
	}
	span := c.EndTime - c.StartTime
	if span <= 0 {
		return 0
	}
	p := (currentTime - c.StartTime) / span
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// SeekCommand is the value handed back to the caller's playback engine when
// the user jumps to a caption. The agent never moves the playhead itself.
type SeekCommand struct {
	Time float64
	Play bool
}

// SeekTo builds the seek command for jumping to a caption's start.
func SeekTo(c caption.Caption) SeekCommand {
	return SeekCommand{Time: c.StartTime, Play: true}
}
