package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/subcue/subcue-agent/internal/caption"
	"github.com/subcue/subcue-agent/internal/session"
	"github.com/subcue/subcue-agent/internal/timecode"
)

var validate = validator.New()

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State         string `json:"state"`
	SessionsCount int    `json:"sessions_count"`
	ProbeEnabled  bool   `json:"probe_enabled"`
}

type CreateSessionRequest struct {
	Name string `json:"name"`
}

type SessionResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	VideoURL     string  `json:"video_url,omitempty"`
	DurationS    float64 `json:"duration_s"`
	DurationText string  `json:"duration_text"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

type LoadVideoRequest struct {
	VideoURL  string  `json:"video_url" validate:"required"`
	DurationS float64 `json:"duration_s" validate:"gte=0"`
}

type StyleRequest struct {
	FontSize   string `json:"font_size" validate:"required"`
	Color      string `json:"color" validate:"required"`
	FontWeight string `json:"font_weight" validate:"required"`
	Position   string `json:"position" validate:"required,oneof=top bottom"`
}

type CreateCaptionRequest struct {
	StartTime string        `json:"start_time" validate:"required"`
	EndTime   string        `json:"end_time" validate:"required"`
	Text      string        `json:"text" validate:"required"`
	Style     *StyleRequest `json:"style,omitempty" validate:"omitempty"`
}

type UpdateCaptionRequest struct {
	StartTime *string       `json:"start_time,omitempty"`
	EndTime   *string       `json:"end_time,omitempty"`
	Text      *string       `json:"text,omitempty"`
	Style     *StyleRequest `json:"style,omitempty" validate:"omitempty"`
}

type StyleResponse struct {
	FontSize   string `json:"font_size"`
	Color      string `json:"color"`
	FontWeight string `json:"font_weight"`
	Position   string `json:"position"`
}

type CaptionResponse struct {
	ID        string        `json:"id"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	StartS    float64       `json:"start_s"`
	EndS      float64       `json:"end_s"`
	Text      string        `json:"text"`
	Style     StyleResponse `json:"style"`
}

type CaptionsResponse struct {
	Captions []CaptionResponse `json:"captions"`
}

// CaptionMutationResponse is returned by caption create and update. Overlap
// is advisory; the mutation has already been applied when it is true.
type CaptionMutationResponse struct {
	Caption CaptionResponse `json:"caption"`
	Overlap bool            `json:"overlap"`
	Warning string          `json:"warning,omitempty"`
}

type ActiveCaptionResponse struct {
	Caption *CaptionResponse `json:"caption"`
}

type CaptionStatusResponse struct {
	Caption  CaptionResponse `json:"caption"`
	Status   string          `json:"status"`
	Progress float64         `json:"progress"`
}

type AlignmentResponse struct {
	CurrentTime float64                 `json:"current_time"`
	Captions    []CaptionStatusResponse `json:"captions"`
}

type SeekResponse struct {
	SeekTo float64 `json:"seek_to"`
	Play   bool    `json:"play"`
}

type SaveResponse struct {
	Status  string `json:"status"`
	SavedAt string `json:"saved_at"`
}

type ImportResponse struct {
	Session      SessionResponse `json:"session"`
	CaptionCount int             `json:"caption_count"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SessionToResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		Name:         s.Name,
		VideoURL:     s.VideoURL,
		DurationS:    s.Duration,
		DurationText: timecode.FormatDuration(s.Duration),
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}

func CaptionToResponse(c *caption.Caption) CaptionResponse {
	return CaptionResponse{
		ID:        c.ID,
		StartTime: timecode.Format(c.StartTime),
		EndTime:   timecode.Format(c.EndTime),
		StartS:    c.StartTime,
		EndS:      c.EndTime,
		Text:      c.Text,
		Style: StyleResponse{
			FontSize:   c.Style.FontSize,
			Color:      c.Style.Color,
			FontWeight: c.Style.FontWeight,
			Position:   c.Style.Position,
		},
	}
}

func StyleFromRequest(r *StyleRequest) *caption.Style {
	if r == nil {
		return nil
	}
	return &caption.Style{
		FontSize:   r.FontSize,
		Color:      r.Color,
		FontWeight: r.FontWeight,
		Position:   r.Position,
	}
}
