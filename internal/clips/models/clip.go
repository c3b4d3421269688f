package models

import (
	"time"

	"github.com/google/uuid"
)

// MinTitleLen is the shortest title the catalog accepts.
const MinTitleLen = 3

type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// Valid reports whether o is one of the two supported orders.
func (o SortOrder) Valid() bool {
	return o == SortAscending || o == SortDescending
}

// Clip is one committed upload. Everything except Title is immutable after
// insert; OwnerDisplayName is a snapshot taken at commit time and does not
// track later profile renames.
type Clip struct {
	ID                 uuid.UUID `db:"id"`
	OwnerID            string    `db:"owner_id"`
	OwnerDisplayName   string    `db:"owner_display_name"`
	Title              string    `db:"title"`
	PrimaryAssetPath   string    `db:"primary_asset_path"`
	ThumbnailAssetPath string    `db:"thumbnail_asset_path"`
	PrimaryAssetURL    string    `db:"primary_asset_url"`
	ThumbnailAssetURL  string    `db:"thumbnail_asset_url"`
	CreatedAt          time.Time `db:"created_at"`
}

// FeedPosition identifies one row's place in the feed order. CreatedAt alone
// is not enough: rows can share a timestamp, so ID is the tie-break.
type FeedPosition struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

// Position returns the clip's feed position.
func (c *Clip) Position() FeedPosition {
	return FeedPosition{CreatedAt: c.CreatedAt, ID: c.ID}
}
