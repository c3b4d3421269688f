package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

// ClipRepository is the record-store boundary of the catalog. Implementations
// are expected to record a ClipCommitted event atomically with Create and a
// ClipDeleted event atomically with Delete.
type ClipRepository interface {
	Create(ctx context.Context, c *models.Clip) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Clip, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Clip, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListPage returns up to limit clips ordered by (created_at, id),
	// starting strictly after the given position. A nil position means the
	// first page.
	ListPage(ctx context.Context, after *models.FeedPosition, limit int, order models.SortOrder) ([]models.Clip, error)

	// ListByOwner returns every clip of one owner in the requested order.
	ListByOwner(ctx context.Context, ownerID string, order models.SortOrder) ([]models.Clip, error)
}
