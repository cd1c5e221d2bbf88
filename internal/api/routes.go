package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subcue/subcue-agent/internal/media"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist())

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Post("/sessions", createSessionHandler(cfg))
		r.Get("/sessions", listSessionsHandler(cfg))
		r.Get("/sessions/{id}", getSessionHandler(cfg))
		r.Delete("/sessions/{id}", deleteSessionHandler(cfg))
		r.Post("/sessions/{id}/video", loadVideoHandler(cfg))
		r.Get("/sessions/{id}/captions", listCaptionsHandler(cfg))
		r.Post("/sessions/{id}/captions", createCaptionHandler(cfg))
		r.Patch("/sessions/{id}/captions/{captionID}", updateCaptionHandler(cfg))
		r.Delete("/sessions/{id}/captions/{captionID}", deleteCaptionHandler(cfg))
		r.Get("/sessions/{id}/captions/active", activeCaptionHandler(cfg))
		r.Get("/sessions/{id}/alignment", alignmentHandler(cfg))
		r.Post("/sessions/{id}/captions/{captionID}/seek", seekCaptionHandler(cfg))
		r.Post("/sessions/{id}/save", saveSessionHandler(cfg))
		r.Get("/sessions/{id}/snapshot", downloadSnapshotHandler(cfg))
		r.Post("/sessions/{id}/import", importSnapshotHandler(cfg))
		r.Post("/sessions/{id}/export", exportSnapshotHandler(cfg))

		r.With(LoopbackGuard()).Get("/sessions/{id}/playback", playbackHandler(cfg))
		r.With(LoopbackGuard()).Head("/sessions/{id}/playback", playbackHandler(cfg))
	})

	return r
}

// bindJSON decodes a request body into dst and runs struct validation.
// It writes the error response itself and reports whether binding succeeded.
func bindJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
		return false
	}
	return true
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: "0.1.0",
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, _ := cfg.Sessions.List(r.Context())

		WriteJSON(w, http.StatusOK, StatusResponse{
			State:         "idle",
			SessionsCount: len(sessions),
			ProbeEnabled:  cfg.ProbeEnabled,
		})
	}
}

func createSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSessionRequest
		if !bindJSON(w, r, &req) {
			return
		}

		sess, err := cfg.Sessions.Create(r.Context(), req.Name)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, SessionToResponse(sess))
	}
}

func listSessionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := cfg.Sessions.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list sessions", "INTERNAL_ERROR")
			return
		}

		resp := SessionsResponse{Sessions: make([]SessionResponse, len(sessions))}
		for i, s := range sessions {
			resp.Sessions[i] = SessionToResponse(s)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := cfg.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	}
}

func deleteSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func loadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadVideoRequest
		if !bindJSON(w, r, &req) {
			return
		}

		sess, err := cfg.Sessions.LoadVideo(r.Context(), chi.URLParam(r, "id"), req.VideoURL, req.DurationS)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SessionToResponse(sess))
	}
}

func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		sess, err := cfg.Sessions.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		if sess.VideoURL == "" {
			WriteError(w, http.StatusNotFound, "session has no video", "NOT_FOUND")
			return
		}
		if !media.IsLocalPath(sess.VideoURL) {
			WriteError(w, http.StatusBadRequest, "video is not a local file", "BAD_REQUEST")
			return
		}

		if err := cfg.Video.ServeVideo(w, r, sess.VideoURL); err != nil {
			cfg.Logger.Error("playback error", "error", err, "session_id", id)
		}
	}
}
