package upload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/blob"
	"github.com/avolkovs/clipstream/internal/clips/catalog"
	"github.com/avolkovs/clipstream/internal/clips/domain"
	"github.com/avolkovs/clipstream/internal/clips/identity"
	"github.com/avolkovs/clipstream/internal/clips/models"
)

const cleanupTimeout = 30 * time.Second

// Asset is one file handed to the orchestrator.
type Asset struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Metadata is the user-supplied part of a clip.
type Metadata struct {
	Title string
}

var supportedVideoTypes = map[string]bool{
	"video/mp4": true,
}

// Orchestrator drives upload transactions: two concurrent blob transfers,
// aggregated progress, a single conditional catalog commit, and compensating
// cleanup when anything after the first byte fails.
type Orchestrator struct {
	blobs    blob.Store
	catalog  *catalog.Service
	identity identity.Provider
	logger   zerolog.Logger
	idGen    func() uuid.UUID
}

func New(blobs blob.Store, cat *catalog.Service, id identity.Provider, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		blobs:    blobs,
		catalog:  cat,
		identity: id,
		logger:   logger.With().Str("component", "upload").Logger(),
		idGen:    uuid.New,
	}
}

// Begin validates the inputs, snapshots the uploader's identity, and launches
// both transfers concurrently. Validation failures start nothing: no paths
// are reserved and no bytes move.
func (o *Orchestrator) Begin(ctx context.Context, video, thumbnail Asset, meta Metadata) (*Transaction, error) {
	if !supportedVideoTypes[video.ContentType] {
		return nil, fmt.Errorf("unsupported media type %q: %w", video.ContentType, models.ErrValidation)
	}
	if len(strings.TrimSpace(meta.Title)) < models.MinTitleLen {
		return nil, fmt.Errorf("title shorter than %d characters: %w", models.MinTitleLen, models.ErrValidation)
	}
	if video.Reader == nil || thumbnail.Reader == nil {
		return nil, fmt.Errorf("missing asset body: %w", models.ErrValidation)
	}

	user, err := o.identity.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity snapshot: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("nobody signed in: %w", models.ErrValidation)
	}

	txID := o.idGen()
	primaryPath := fmt.Sprintf("clips/%s_%s", txID, video.Name)
	thumbnailPath := fmt.Sprintf("screenshots/%s.png", txID)

	txCtx, cancel := context.WithCancel(ctx)
	tx := newTransaction(txID, primaryPath, thumbnailPath, cancel)
	tx.transition(domain.Uploading)

	o.logger.Info().
		Stringer("transaction_id", txID).
		Str("owner_id", user.ID).
		Str("primary_path", primaryPath).
		Msg("upload started")

	go o.run(txCtx, tx, video, thumbnail, *user, strings.TrimSpace(meta.Title))

	return tx, nil
}

// run is the per-transaction driver. Both transfers are launched together and
// joined before finalization; nothing here blocks any other transaction.
func (o *Orchestrator) run(ctx context.Context, tx *Transaction, video, thumbnail Asset, user identity.User, title string) {
	errc := make(chan error, 2)

	go func() { errc <- o.put(ctx, tx, sidePrimary, tx.primaryPath, video) }()
	go func() { errc <- o.put(ctx, tx, sideThumbnail, tx.thumbnailPath, thumbnail) }()

	// Join both transfers. On failure we still wait for the second one to
	// acknowledge the abort before cleaning up, so no write is orphaned.
	var transferErr error
	for i := 0; i < 2; i++ {
		if err := <-errc; err != nil && transferErr == nil {
			transferErr = err
		}
	}
	if transferErr != nil {
		o.abort(tx, fmt.Errorf("%w: %w", models.ErrTransferFailed, transferErr))
		return
	}

	tx.transition(domain.Finalizing)

	committed, err := o.finalize(ctx, tx, user, title)
	if err != nil {
		o.abort(tx, fmt.Errorf("%w: %w", models.ErrCommitFailed, err))
		return
	}

	o.logger.Info().
		Stringer("transaction_id", tx.id).
		Stringer("clip_id", committed.ID).
		Msg("upload committed")
	tx.complete(committed)
}

// finalize resolves both durable URLs and commits the catalog row exactly
// once. Only here do both asset URLs exist, so a clip is never readable in a
// half-uploaded state.
func (o *Orchestrator) finalize(ctx context.Context, tx *Transaction, user identity.User, title string) (*models.Clip, error) {
	primaryURL, err := o.blobs.ResolveURL(ctx, tx.primaryPath)
	if err != nil {
		return nil, fmt.Errorf("resolve primary url: %w", err)
	}
	thumbURL, err := o.blobs.ResolveURL(ctx, tx.thumbnailPath)
	if err != nil {
		return nil, fmt.Errorf("resolve thumbnail url: %w", err)
	}

	return o.catalog.Insert(ctx, &models.Clip{
		OwnerID:            user.ID,
		OwnerDisplayName:   user.DisplayName,
		Title:              title,
		PrimaryAssetPath:   tx.primaryPath,
		ThumbnailAssetPath: tx.thumbnailPath,
		PrimaryAssetURL:    primaryURL,
		ThumbnailAssetURL:  thumbURL,
	})
}

func (o *Orchestrator) put(ctx context.Context, tx *Transaction, side int, path string, a Asset) error {
	err := o.blobs.Put(ctx, path, a.Reader, a.Size, func(frac float64) {
		tx.report(side, frac)
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	tx.report(side, 1)
	return nil
}

// abort moves the transaction to Failed and issues best-effort compensating
// deletes for whichever blobs landed. Cleanup failures are logged and
// reported alongside the cause, never instead of it; the user can simply
// retry the whole upload.
func (o *Orchestrator) abort(tx *Transaction, cause error) {
	cleanupCtx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	for _, path := range []string{tx.primaryPath, tx.thumbnailPath} {
		if err := o.blobs.Delete(cleanupCtx, path); err != nil {
			o.logger.Error().
				Err(err).
				Stringer("transaction_id", tx.id).
				Str("path", path).
				Msg("compensating delete failed")
			cause = fmt.Errorf("%w (cleanup of %s also failed: %v)", cause, path, err)
		}
	}

	o.logger.Warn().
		Err(cause).
		Stringer("transaction_id", tx.id).
		Msg("upload failed")
	tx.fail(cause)
}

// Delete removes a committed clip: primary blob, then thumbnail blob, then
// the catalog row, awaiting each step. A blob failure leaves the row intact
// and the whole call retry-safe; a row failure after the blobs are gone must
// be retried by the caller until it succeeds.
func (o *Orchestrator) Delete(ctx context.Context, clip *models.Clip) error {
	if clip == nil {
		return models.ErrValidation
	}

	if err := o.blobs.Delete(ctx, clip.PrimaryAssetPath); err != nil {
		return fmt.Errorf("delete primary blob: %w", err)
	}
	if err := o.blobs.Delete(ctx, clip.ThumbnailAssetPath); err != nil {
		return fmt.Errorf("delete thumbnail blob: %w", err)
	}
	if err := o.catalog.Delete(ctx, clip.ID); err != nil {
		return fmt.Errorf("delete catalog row (blobs already removed, retry until this succeeds): %w", err)
	}

	o.logger.Info().Stringer("clip_id", clip.ID).Msg("clip fully deleted")
	return nil
}
