package repository

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

// MemoryRepository keeps clips in a map. Used in tests and dev mode where no
// Postgres is wired. Domain events are appended to an in-process log instead
// of an outbox table.
type MemoryRepository struct {
	mu     sync.RWMutex
	data   map[uuid.UUID]*models.Clip
	events []models.DomainEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data: make(map[uuid.UUID]*models.Clip),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Clip) error {
	if c == nil || c.ID == uuid.Nil {
		return models.ErrValidation
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[c.ID]; exists {
		return models.ErrConflict
	}

	// Защитная копия, чтобы внешняя сторона не могла мутировать хранимый объект
	cp := *c
	r.data[c.ID] = &cp
	r.events = append(r.events, models.NewClipCommitted(c.ID, c.OwnerID))

	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Clip, error) {
	if id == uuid.Nil {
		return nil, models.ErrValidation
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) (*models.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	c.Title = title
	cp := *c
	return &cp, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return models.ErrNotFound
	}

	delete(r.data, id)
	r.events = append(r.events, models.NewClipDeleted(id, c.OwnerID))
	return nil
}

func (r *MemoryRepository) ListPage(ctx context.Context, after *models.FeedPosition, limit int, order models.SortOrder) ([]models.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, models.ErrValidation
	}

	r.mu.RLock()
	all := r.snapshotLocked(order)
	r.mu.RUnlock()

	page := make([]models.Clip, 0, limit)
	for _, c := range all {
		if after != nil && !positionAfter(c.Position(), *after, order) {
			continue
		}
		page = append(page, c)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string, order models.SortOrder) ([]models.Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	all := r.snapshotLocked(order)
	r.mu.RUnlock()

	out := make([]models.Clip, 0)
	for _, c := range all {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Events returns the in-process event log.
func (r *MemoryRepository) Events() []models.DomainEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.DomainEvent(nil), r.events...)
}

// snapshotLocked copies every clip sorted by (created_at, id) in the given
// order. Caller holds at least the read lock.
func (r *MemoryRepository) snapshotLocked(order models.SortOrder) []models.Clip {
	all := make([]models.Clip, 0, len(r.data))
	for _, c := range r.data {
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		return positionAfter(all[j].Position(), all[i].Position(), order)
	})
	return all
}

// positionAfter reports whether p sorts strictly after boundary in the feed
// order. The id tie-break mirrors Postgres uuid comparison (byte-wise), so the
// memory and sqlx repositories page identically.
func positionAfter(p, boundary models.FeedPosition, order models.SortOrder) bool {
	if !p.CreatedAt.Equal(boundary.CreatedAt) {
		if order == models.SortAscending {
			return p.CreatedAt.After(boundary.CreatedAt)
		}
		return p.CreatedAt.Before(boundary.CreatedAt)
	}
	cmp := bytes.Compare(p.ID[:], boundary.ID[:])
	if order == models.SortAscending {
		return cmp > 0
	}
	return cmp < 0
}
