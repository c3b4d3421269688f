package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/models"
	"github.com/avolkovs/clipstream/internal/clips/repository"
)

// DefaultPageSize is the conventional global-feed page size.
const DefaultPageSize = 6

// Service is the typed catalog layer over a ClipRepository. It owns the
// invariants of a clip row: id, server timestamp, title validation. It never
// touches blob storage; ordering blob deletes before record deletes belongs
// to the upload orchestrator.
type Service struct {
	repo   repository.ClipRepository
	clock  func() time.Time
	idGen  func() uuid.UUID
	logger zerolog.Logger
}

func New(repo repository.ClipRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		clock:  time.Now,
		idGen:  uuid.New,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

func validateTitle(title string) error {
	if len(strings.TrimSpace(title)) < models.MinTitleLen {
		return fmt.Errorf("title shorter than %d characters: %w", models.MinTitleLen, models.ErrValidation)
	}
	return nil
}

// Insert assigns the id and server timestamp and persists the clip. The clip
// must arrive with both asset URLs populated; a half-uploaded clip never
// reaches the catalog.
func (s *Service) Insert(ctx context.Context, c *models.Clip) (*models.Clip, error) {
	if c == nil {
		return nil, models.ErrValidation
	}
	if err := validateTitle(c.Title); err != nil {
		return nil, err
	}
	if c.OwnerID == "" {
		return nil, fmt.Errorf("owner id is empty: %w", models.ErrValidation)
	}
	if c.PrimaryAssetURL == "" || c.ThumbnailAssetURL == "" {
		return nil, fmt.Errorf("asset url missing: %w", models.ErrValidation)
	}

	cp := *c
	cp.ID = s.idGen()
	cp.CreatedAt = s.clock()

	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, storeErr("clip insert", err)
	}

	s.logger.Info().Stringer("clip_id", cp.ID).Str("owner_id", cp.OwnerID).Msg("clip committed")
	return &cp, nil
}

// Get returns one clip. A missing id surfaces models.ErrNotFound; there is no
// navigate-away behavior at this layer.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Clip, error) {
	if id == uuid.Nil {
		return nil, models.ErrValidation
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("clip get", err)
	}
	return c, nil
}

// UpdateTitle changes the only mutable field. Updating to the current title
// is a no-op success.
func (s *Service) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Clip, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("clip get", err)
	}
	if current.Title == title {
		return current, nil
	}

	updated, err := s.repo.UpdateTitle(ctx, id, title)
	if err != nil {
		return nil, storeErr("clip update", err)
	}
	return updated, nil
}

// Delete removes the catalog row only. Callers must have deleted the blobs
// first and must retry this call until it succeeds if it fails after the
// blobs are gone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrValidation
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("clip delete", err)
	}
	s.logger.Info().Stringer("clip_id", id).Msg("clip deleted")
	return nil
}

// FeedPage is one page of the global feed plus the continuation token for the
// next one. NextCursor is empty once the feed is exhausted.
type FeedPage struct {
	Clips      []models.Clip
	NextCursor string
}

// GlobalFeed returns one page ordered by created_at. The continuation
// boundary is the last record's (created_at, id) position, so records sharing
// a timestamp are never re-emitted or skipped.
func (s *Service) GlobalFeed(ctx context.Context, cursor string, pageSize int, order models.SortOrder) (*FeedPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if !order.Valid() {
		order = models.SortDescending
	}

	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	clips, err := s.repo.ListPage(ctx, after, pageSize, order)
	if err != nil {
		return nil, storeErr("global feed", err)
	}

	page := &FeedPage{Clips: clips}
	if len(clips) == pageSize {
		page.NextCursor = EncodeCursor(clips[len(clips)-1].Position())
	}
	return page, nil
}

// UserFeed returns every clip of one owner; an empty ownerID (nobody signed
// in) yields an empty result rather than an error.
func (s *Service) UserFeed(ctx context.Context, ownerID string, order models.SortOrder) ([]models.Clip, error) {
	if ownerID == "" {
		return []models.Clip{}, nil
	}
	if !order.Valid() {
		order = models.SortDescending
	}
	clips, err := s.repo.ListByOwner(ctx, ownerID, order)
	if err != nil {
		return nil, storeErr("user feed", err)
	}
	return clips, nil
}

// storeErr passes domain sentinels through untouched and tags everything else
// as backend unavailability. Retrying is the caller's concern.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isDomainErr(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
	}
}

func isDomainErr(err error) bool {
	for _, sentinel := range []error{
		models.ErrNotFound,
		models.ErrConflict,
		models.ErrValidation,
		models.ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
