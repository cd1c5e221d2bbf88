package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/subcue/subcue-agent/internal/caption"
	"github.com/subcue/subcue-agent/internal/playback"
)

const overlapWarning = "caption overlaps an existing caption"

func listCaptionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		query := r.URL.Query().Get("q")
		sort := r.URL.Query().Get("sort")

		var dir caption.SortDirection
		switch sort {
		case "":
		case "asc":
			dir = caption.SortAscending
		case "desc":
			dir = caption.SortDescending
		default:
			WriteError(w, http.StatusBadRequest, "sort must be asc or desc", "BAD_REQUEST")
			return
		}

		captions, err := cfg.Sessions.ListCaptions(r.Context(), id, query, dir)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := CaptionsResponse{Captions: make([]CaptionResponse, len(captions))}
		for i := range captions {
			resp.Captions[i] = CaptionToResponse(&captions[i])
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createCaptionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateCaptionRequest
		if !bindJSON(w, r, &req) {
			return
		}

		draft := caption.Draft{
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Text:      req.Text,
			Style:     StyleFromRequest(req.Style),
		}

		c, overlap, err := cfg.Sessions.AddCaption(r.Context(), chi.URLParam(r, "id"), draft)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, mutationResponse(c, overlap))
	}
}

func updateCaptionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateCaptionRequest
		if !bindJSON(w, r, &req) {
			return
		}

		patch := caption.Patch{
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Text:      req.Text,
			Style:     StyleFromRequest(req.Style),
		}

		c, overlap, err := cfg.Sessions.UpdateCaption(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "captionID"), patch)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, mutationResponse(c, overlap))
	}
}

func deleteCaptionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := cfg.Sessions.RemoveCaption(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "captionID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func activeCaptionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseTimeParam(w, r)
		if !ok {
			return
		}

		c, err := cfg.Sessions.ActiveCaption(r.Context(), chi.URLParam(r, "id"), t)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := ActiveCaptionResponse{}
		if c != nil {
			cr := CaptionToResponse(c)
			resp.Caption = &cr
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func alignmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := parseTimeParam(w, r)
		if !ok {
			return
		}

		captions, err := cfg.Sessions.Captions(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := AlignmentResponse{
			CurrentTime: t,
			Captions:    make([]CaptionStatusResponse, len(captions)),
		}
		for i, c := range captions {
			resp.Captions[i] = CaptionStatusResponse{
				Caption:  CaptionToResponse(&captions[i]),
				Status:   string(playback.StatusOf(c, t)),
				Progress: playback.ActiveProgress(c, t),
			}
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func seekCaptionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := cfg.Sessions.GetCaption(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "captionID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		cmd := playback.SeekTo(*c)
		WriteJSON(w, http.StatusOK, SeekResponse{SeekTo: cmd.Time, Play: cmd.Play})
	}
}

func parseTimeParam(w http.ResponseWriter, r *http.Request) (float64, bool) {
	raw := r.URL.Query().Get("time")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, "time is required", "BAD_REQUEST")
		return 0, false
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "time must be a number", "BAD_REQUEST")
		return 0, false
	}
	return t, true
}

func mutationResponse(c *caption.Caption, overlap bool) CaptionMutationResponse {
	resp := CaptionMutationResponse{Caption: CaptionToResponse(c), Overlap: overlap}
	if overlap {
		resp.Warning = overlapWarning
	}
	return resp
}
