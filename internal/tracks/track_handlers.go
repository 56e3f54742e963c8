package tracks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"

	"tunevault/db"
	"tunevault/internal/auth"
	"tunevault/internal/config"
	"tunevault/internal/metrics"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

// cacheControl marks streamed media as immutable for a year. Stored files
// never change under a given track id.
const cacheControl = "public, max-age=31536000"

// TrackHandlers serves the catalog, streaming and upload endpoints
type TrackHandlers struct {
	Service  *TrackService
	Config   *config.Config
	Counters *metrics.Counters
	logger   *log.Logger
}

// NewTrackHandlers creates the track handler set
func NewTrackHandlers(service *TrackService, cfg *config.Config, counters *metrics.Counters, logger *log.Logger) *TrackHandlers {
	return &TrackHandlers{Service: service, Config: cfg, Counters: counters, logger: logger}
}

// List handles GET /api/tracks
func (h *TrackHandlers) List(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.Service.List(r.Context())
	if err != nil {
		h.logger.Error("track listing failed", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tracks":  tracks,
		"env":     h.Config.Environment,
		"release": h.Config.Release,
	})
}

// StreamAudio handles GET /api/stream/{trackId}. The whole file is written
// with a fixed audio/mpeg content type; there is no range support, clients
// seek by re-requesting and buffering locally.
func (h *TrackHandlers) StreamAudio(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["trackId"]

	track, err := h.Service.FindByID(r.Context(), trackID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.logger.Error("track lookup failed", "id", trackID, "error", err)
		}
		h.writeNotFound(w)
		return
	}

	h.serveFile(w, h.Service.AudioPath(track), "audio/mpeg", trackID)
}

// ServeCover handles GET /api/cover/{trackId}
func (h *TrackHandlers) ServeCover(w http.ResponseWriter, r *http.Request) {
	trackID := mux.Vars(r)["trackId"]

	track, err := h.Service.FindByID(r.Context(), trackID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.logger.Error("track lookup failed", "id", trackID, "error", err)
		}
		h.writeNotFound(w)
		return
	}

	path, ok := h.Service.CoverPath(track)
	if !ok {
		h.writeNotFound(w)
		return
	}

	h.serveFile(w, path, "image/jpeg", trackID)
}

// Upload handles POST /api/admin/upload. The access gate and admin check
// run before this handler.
func (h *TrackHandlers) Upload(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "multipart form data required"})
		return
	}

	track, err := h.Service.Ingest(r.Context(), claims.UserID, mr)
	if err != nil {
		if IsValidationError(err) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		h.logger.Error("upload failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
		return
	}

	h.Counters.Uploads.Add(1)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"trackId": track.ID,
	})
}

// serveFile streams a stored media file whole. A missing file is reported
// with the same generic not-found as a missing catalog row.
func (h *TrackHandlers) serveFile(w http.ResponseWriter, path, contentType, trackID string) {
	f, err := os.Open(path)
	if err != nil {
		h.logger.Warn("stored file missing", "id", trackID, "path", path, "error", err)
		h.writeNotFound(w)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	if _, err := io.Copy(w, f); err != nil {
		// Headers are gone; nothing left to do but note the broken pipe.
		h.logger.Debug("stream aborted", "id", trackID, "error", err)
	}
}

func (h *TrackHandlers) writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}
