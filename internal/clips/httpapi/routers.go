package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", h.Health)

	// POST /clips (upload), GET /clips (global feed)
	mux.HandleFunc("/clips", h.Clips)

	// POST /clips/thumbnails — candidate stills for a video
	mux.HandleFunc("/clips/thumbnails", h.Thumbnails)

	// GET/PATCH/DELETE /clips/{id}
	// Важно: trailing slash, чтобы handler мог TrimPrefix("/clips/")
	mux.HandleFunc("/clips/", h.ClipByID)

	return mux
}
