package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/avolkovs/clipstream/internal/clips/models"
	"github.com/avolkovs/clipstream/internal/clips/thumbs"
)

type UpdateClipRequest struct {
	Title string `json:"title"`
}

type ClipResponse struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          string    `json:"owner_id"`
	OwnerDisplayName string    `json:"owner_display_name"`
	Title            string    `json:"title"`
	PrimaryURL       string    `json:"primary_url"`
	ThumbnailURL     string    `json:"thumbnail_url"`
	CreatedAt        time.Time `json:"created_at"`
}

type FeedResponse struct {
	Clips      []ClipResponse `json:"clips"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func toClipResponse(c *models.Clip) ClipResponse {
	return ClipResponse{
		ID:               c.ID,
		OwnerID:          c.OwnerID,
		OwnerDisplayName: c.OwnerDisplayName,
		Title:            c.Title,
		PrimaryURL:       c.PrimaryAssetURL,
		ThumbnailURL:     c.ThumbnailAssetURL,
		CreatedAt:        c.CreatedAt,
	}
}

type ThumbnailCandidate struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"` // base64 over the wire
}

func toThumbnailsResponse(candidates []thumbs.Candidate) []ThumbnailCandidate {
	out := make([]ThumbnailCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, ThumbnailCandidate{ContentType: c.ContentType, Data: c.Data})
	}
	return out
}

func toFeedResponse(clips []models.Clip, nextCursor string) FeedResponse {
	out := FeedResponse{
		Clips:      make([]ClipResponse, 0, len(clips)),
		NextCursor: nextCursor,
	}
	for i := range clips {
		out.Clips = append(out.Clips, toClipResponse(&clips[i]))
	}
	return out
}
