// Package snapshot defines the JSON interchange document for a captioning
// session. Times travel as human-editable "HH:MM:SS" strings rather than
// raw seconds so exported files stay readable and hand-fixable. Caption IDs
// never cross this boundary; importing always mints fresh ones.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/subcue/subcue-agent/internal/caption"
	"github.com/subcue/subcue-agent/internal/timecode"
)

// ErrFormat indicates a document that cannot be accepted: the captions
// field is absent or not a list, or an entry's timing cannot form a valid
// interval. A document that fails is rejected whole.
var ErrFormat = errors.New("invalid snapshot document")

// Document is the on-disk and over-the-wire shape of a session snapshot.
// Field names are fixed by the interchange format, not by the agent's API
// conventions.
type Document struct {
	VideoURL   string  `json:"videoUrl"`
	Captions   []Entry `json:"captions"`
	ExportedAt string  `json:"exportedAt"`
}

// Entry is one caption in interchange form.
type Entry struct {
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	Text      string      `json:"text"`
	Style     *StyleEntry `json:"style,omitempty"`
}

// StyleEntry mirrors caption.Style under the interchange field names.
type StyleEntry struct {
	FontSize   string `json:"fontSize"`
	Color      string `json:"color"`
	FontWeight string `json:"fontWeight"`
	Position   string `json:"position"`
}

// rawDocument stages decoding so an absent captions field can be told apart
// from a malformed one, and so unknown future fields pass through silently.
type rawDocument struct {
	VideoURL     string          `json:"videoUrl"`
	Captions     json.RawMessage `json:"captions"`
	ExportedAt   string          `json:"exportedAt"`
	LastModified string          `json:"lastModified"`
}

// Serialize captures the current session state as a document. Captions are
// expected in canonical order; the document preserves whatever order it is
// given.
func Serialize(videoURL string, captions []caption.Caption, now time.Time) Document {
	entries := make([]Entry, len(captions))
	for i, c := range captions {
		style := StyleEntry{
			FontSize:   c.Style.FontSize,
			Color:      c.Style.Color,
			FontWeight: c.Style.FontWeight,
			Position:   c.Style.Position,
		}
		entries[i] = Entry{
			StartTime: timecode.Format(c.StartTime),
			EndTime:   timecode.Format(c.EndTime),
			Text:      c.Text,
			Style:     &style,
		}
	}
	return Document{
		VideoURL:   videoURL,
		Captions:   entries,
		ExportedAt: now.UTC().Format(time.RFC3339),
	}
}

// Encode renders a document as indented JSON, ready to hand to the user as
// a downloadable file.
func Encode(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses document bytes. Unknown fields are ignored for forward
// compatibility; older documents carrying lastModified instead of
// exportedAt are accepted. A missing, null, or non-list captions field is
// ErrFormat.
func Decode(data []byte) (Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	trimmed := bytes.TrimSpace(raw.Captions)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Document{}, fmt.Errorf("%w: missing captions field", ErrFormat)
	}

	var entries []Entry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return Document{}, fmt.Errorf("%w: captions is not a list", ErrFormat)
	}

	exportedAt := raw.ExportedAt
	if exportedAt == "" {
		exportedAt = raw.LastModified
	}

	return Document{
		VideoURL:   raw.VideoURL,
		Captions:   entries,
		ExportedAt: exportedAt,
	}, nil
}

// Deserialize turns a document back into captions with fresh IDs. Entries
// whose times cannot be parsed, or whose interval is empty or inverted, fail
// the whole document: admitting them would plant captions the store itself
// would never accept. Bounds against the video duration are deliberately
// not checked here; the duration is unknown until a video loads.
func Deserialize(doc Document) (string, []caption.Caption, error) {
	captions := make([]caption.Caption, len(doc.Captions))
	for i, e := range doc.Captions {
		start, err := timecode.Parse(e.StartTime)
		if err != nil {
			return "", nil, fmt.Errorf("%w: caption %d: %v", ErrFormat, i, err)
		}
		end, err := timecode.Parse(e.EndTime)
		if err != nil {
			return "", nil, fmt.Errorf("%w: caption %d: %v", ErrFormat, i, err)
		}
		if end <= start {
			return "", nil, fmt.Errorf("%w: caption %d: end %s not after start %s",
				ErrFormat, i, e.EndTime, e.StartTime)
		}

		style := caption.DefaultStyle()
		if e.Style != nil {
			style = caption.Style{
				FontSize:   e.Style.FontSize,
				Color:      e.Style.Color,
				FontWeight: e.Style.FontWeight,
				Position:   e.Style.Position,
			}
		}

		captions[i] = caption.Caption{
			ID:        caption.NewID(),
			StartTime: start,
			EndTime:   end,
			Text:      e.Text,
			Style:     style,
		}
	}
	return doc.VideoURL, captions, nil
}
