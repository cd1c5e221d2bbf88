package caption

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrInvalidInterval = errors.New("invalid caption interval")
	ErrNotFound        = errors.New("caption not found")
	ErrEmptyText       = errors.New("caption text is empty")
)

// Style carries the cosmetic rendering hints attached to a caption. The
// store never interprets these values; they ride along into snapshots.
type Style struct {
	FontSize   string `json:"font_size"`
	Color      string `json:"color"`
	FontWeight string `json:"font_weight"`
	Position   string `json:"position"`
}

const (
	DefaultFontSize   = "24px"
	DefaultColor      = "#ffffff"
	DefaultFontWeight = "bold"
	DefaultPosition   = "bottom"
)

// DefaultStyle returns the style applied when a caption is created or
// imported without one.
func DefaultStyle() Style {
	return Style{
		FontSize:   DefaultFontSize,
		Color:      DefaultColor,
		FontWeight: DefaultFontWeight,
		Position:   DefaultPosition,
	}
}

// Caption is one timed text cue. StartTime and EndTime are positions in
// seconds from the start of the video; a caption admitted to a store always
// satisfies 0 <= StartTime < EndTime.
type Caption struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
	Style     Style   `json:"style"`
}

// Draft is the raw material for a new caption. Times arrive as text in the
// editor's HH:MM:SS form and are parsed at admission. A nil Style means the
// defaults.
type Draft struct {
	StartTime string
	EndTime   string
	Text      string
	Style     *Style
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	StartTime *string
	EndTime   *string
	Text      *string
	Style     *Style
}

// SortDirection controls the presentation order of List and Search results.
// It never affects how captions are stored.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

func NewID() string {
	return uuid.NewString()
}
