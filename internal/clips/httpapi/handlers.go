package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/catalog"
	"github.com/avolkovs/clipstream/internal/clips/models"
	"github.com/avolkovs/clipstream/internal/clips/thumbs"
	"github.com/avolkovs/clipstream/internal/clips/upload"
)

// 512 MiB of multipart form held in memory before spilling to disk.
const maxUploadMemory = 512 << 20

type Handler struct {
	catalog *catalog.Service
	orch    *upload.Orchestrator
	thumbs  thumbs.Generator // nil when no generator is deployed
	logger  zerolog.Logger
}

func New(cat *catalog.Service, orch *upload.Orchestrator, gen thumbs.Generator, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog: cat,
		orch:    orch,
		thumbs:  gen,
		logger:  logger.With().Str("component", "httpapi").Logger(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Clips dispatches /clips: POST uploads, GET serves the global feed.
func (h *Handler) Clips(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.uploadClip(w, r)
	case http.MethodGet:
		h.globalFeed(w, r)
	default:
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) uploadClip(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	video, videoHeader, err := r.FormFile("video")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "missing video file")
		return
	}
	defer video.Close()

	thumb, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "missing thumbnail file")
		return
	}
	defer thumb.Close()

	tx, err := h.orch.Begin(r.Context(),
		upload.Asset{
			Name:        videoHeader.Filename,
			ContentType: videoHeader.Header.Get("Content-Type"),
			Size:        videoHeader.Size,
			Reader:      video,
		},
		upload.Asset{
			Name:        thumbHeader.Filename,
			ContentType: thumbHeader.Header.Get("Content-Type"),
			Size:        thumbHeader.Size,
			Reader:      thumb,
		},
		upload.Metadata{Title: r.FormValue("title")},
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// The upload runs to completion within the request; progress is only
	// logged here. A streaming progress endpoint would hang off tx.Progress.
	go func() {
		for frac := range tx.Progress() {
			h.logger.Debug().
				Stringer("transaction_id", tx.ID()).
				Float64("progress", frac).
				Msg("upload progress")
		}
	}()

	clip, err := tx.Wait(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClipResponse(clip))
}

func (h *Handler) globalFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageSize := 0
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorJSON(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		pageSize = n
	}

	page, err := h.catalog.GlobalFeed(r.Context(), q.Get("cursor"), pageSize, models.SortOrder(q.Get("sort")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFeedResponse(page.Clips, page.NextCursor))
}

// Thumbnails extracts candidate stills for an uploaded video so the caller
// can pick one before starting the real upload transaction.
func (h *Handler) Thumbnails(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.thumbs == nil {
		writeErrorJSON(w, http.StatusNotImplemented, "thumbnail generation not configured")
		return
	}
	defer r.Body.Close()

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	video, _, err := r.FormFile("video")
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "missing video file")
		return
	}
	defer video.Close()

	candidates, err := h.thumbs.Candidates(r.Context(), video)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toThumbnailsResponse(candidates))
}

// ClipByID dispatches /clips/{id}: GET, PATCH (title), DELETE.
func (h *Handler) ClipByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/clips/")
	if idStr == "" || idStr == r.URL.Path {
		writeErrorJSON(w, http.StatusBadRequest, "missing id")
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getClip(w, r, id)
	case http.MethodPatch:
		h.updateClip(w, r, id)
	case http.MethodDelete:
		h.deleteClip(w, r, id)
	default:
		writeErrorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) getClip(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	clip, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClipResponse(clip))
}

func (h *Handler) updateClip(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	defer r.Body.Close()

	var req UpdateClipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid json body")
		return
	}

	clip, err := h.catalog.UpdateTitle(r.Context(), id, req.Title)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClipResponse(clip))
}

func (h *Handler) deleteClip(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	clip, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Blobs first, row last; the orchestrator owns the ordering.
	if err := h.orch.Delete(r.Context(), clip); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrStoreUnavailable):
		writeErrorJSON(w, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		writeErrorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
