package api

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/subcue/subcue-agent/internal/export"
	"github.com/subcue/subcue-agent/internal/snapshot"
)

func saveSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.Save(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, SaveResponse{
			Status:  "ok",
			SavedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func downloadSnapshotHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		sess, err := cfg.Sessions.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		doc, err := cfg.Sessions.Snapshot(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		data, err := snapshot.Encode(doc)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to encode snapshot", "INTERNAL_ERROR")
			return
		}

		stem := export.SanitizeFileStem(sess.Name, 120)
		if stem == "" {
			stem = "session"
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+stem+export.DocumentExt+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func importSnapshotHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "failed to read request body", "BAD_REQUEST")
			return
		}

		doc, err := snapshot.Decode(data)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		sess, count, err := cfg.Sessions.Import(r.Context(), chi.URLParam(r, "id"), doc)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ImportResponse{
			Session:      SessionToResponse(sess),
			CaptionCount: count,
		})
	}
}

func exportSnapshotHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req export.ExportRequest
		if !bindJSON(w, r, &req) {
			return
		}

		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		sess, err := cfg.Sessions.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		doc, err := cfg.Sessions.Snapshot(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		name := req.Name
		if name == "" {
			name = sess.Name
		}

		path, err := export.WriteDocument(req.OutputDir, name, doc)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:       "ok",
			OutputPath:   path,
			CaptionCount: len(doc.Captions),
		})
	}
}
