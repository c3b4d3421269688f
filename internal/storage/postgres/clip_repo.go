package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

const clipColumns = `id, owner_id, owner_display_name, title,
		primary_asset_path, thumbnail_asset_path,
		primary_asset_url, thumbnail_asset_url, created_at`

// ClipRepo persists clips in Postgres. Create and Delete write the matching
// domain event into the outbox table inside the same transaction, so a
// committed row and its event are inseparable.
type ClipRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewClipRepo(db *sqlx.DB, outbox *OutboxRepo) *ClipRepo {
	return &ClipRepo{db: db, outbox: outbox}
}

func (r *ClipRepo) Create(ctx context.Context, c *models.Clip) error {
	const q = `
		INSERT INTO clips (id, owner_id, owner_display_name, title,
			primary_asset_path, thumbnail_asset_path,
			primary_asset_url, thumbnail_asset_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clip create begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, q,
		c.ID, c.OwnerID, c.OwnerDisplayName, c.Title,
		c.PrimaryAssetPath, c.ThumbnailAssetPath,
		c.PrimaryAssetURL, c.ThumbnailAssetURL, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("clip create: %w", err)
	}

	if err := r.outbox.Add(ctx, tx, models.NewClipCommitted(c.ID, c.OwnerID)); err != nil {
		return fmt.Errorf("clip create outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clip create commit: %w", err)
	}
	return nil
}

func (r *ClipRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Clip, error) {
	q := fmt.Sprintf(`SELECT %s FROM clips WHERE id = $1`, clipColumns)

	var c models.Clip
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("clip get by id: %w", err)
	}
	return &c, nil
}

func (r *ClipRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Clip, error) {
	q := fmt.Sprintf(`
		UPDATE clips
		SET title = $2
		WHERE id = $1
		RETURNING %s
	`, clipColumns)

	var c models.Clip
	if err := r.db.GetContext(ctx, &c, q, id, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("clip update title: %w", err)
	}
	return &c, nil
}

func (r *ClipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("clip delete begin tx: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.GetContext(ctx, &ownerID, `DELETE FROM clips WHERE id = $1 RETURNING owner_id`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("clip delete: %w", err)
	}

	if err := r.outbox.Add(ctx, tx, models.NewClipDeleted(id, ownerID)); err != nil {
		return fmt.Errorf("clip delete outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clip delete commit: %w", err)
	}
	return nil
}

func (r *ClipRepo) ListPage(ctx context.Context, after *models.FeedPosition, limit int, order models.SortOrder) ([]models.Clip, error) {
	dir, cmp := "DESC", "<"
	if order == models.SortAscending {
		dir, cmp = "ASC", ">"
	}

	var (
		q    string
		args []any
	)
	if after == nil {
		q = fmt.Sprintf(`
			SELECT %s FROM clips
			ORDER BY created_at %s, id %s
			LIMIT $1
		`, clipColumns, dir, dir)
		args = []any{limit}
	} else {
		// Keyset continuation on the row position, not the bare timestamp:
		// rows sharing created_at are ordered by id and never re-emitted.
		q = fmt.Sprintf(`
			SELECT %s FROM clips
			WHERE (created_at, id) %s ($1, $2)
			ORDER BY created_at %s, id %s
			LIMIT $3
		`, clipColumns, cmp, dir, dir)
		args = []any{after.CreatedAt, after.ID, limit}
	}

	var clips []models.Clip
	if err := r.db.SelectContext(ctx, &clips, q, args...); err != nil {
		return nil, fmt.Errorf("clip list page: %w", err)
	}
	return clips, nil
}

func (r *ClipRepo) ListByOwner(ctx context.Context, ownerID string, order models.SortOrder) ([]models.Clip, error) {
	dir := "DESC"
	if order == models.SortAscending {
		dir = "ASC"
	}

	q := fmt.Sprintf(`
		SELECT %s FROM clips
		WHERE owner_id = $1
		ORDER BY created_at %s, id %s
	`, clipColumns, dir, dir)

	var clips []models.Clip
	if err := r.db.SelectContext(ctx, &clips, q, ownerID); err != nil {
		return nil, fmt.Errorf("clip list by owner: %w", err)
	}
	return clips, nil
}
