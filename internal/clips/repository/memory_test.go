package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

func seedClip(t *testing.T, r *MemoryRepository, owner string, createdAt time.Time) models.Clip {
	t.Helper()
	c := models.Clip{
		ID:                 uuid.New(),
		OwnerID:            owner,
		OwnerDisplayName:   owner,
		Title:              "clip " + createdAt.Format(time.RFC3339),
		PrimaryAssetPath:   "clips/x.mp4",
		ThumbnailAssetPath: "screenshots/x.png",
		PrimaryAssetURL:    "https://cdn/x.mp4",
		ThumbnailAssetURL:  "https://cdn/x.png",
		CreatedAt:          createdAt,
	}
	require.NoError(t, r.Create(context.Background(), &c))
	return c
}

func TestCreate_DuplicateID(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	c := seedClip(t, r, "u1", time.Now())
	err := r.Create(ctx, &c)
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestCreate_DefensiveCopy(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	c := seedClip(t, r, "u1", time.Now())
	c.Title = "mutated outside"

	got, err := r.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotEqual(t, "mutated outside", got.Title)
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewMemoryRepository()
	_, err := r.GetByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestListPage_ThirteenRecordsPageSizeSix(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 13; i++ {
		seedClip(t, r, "u1", base.Add(time.Duration(i)*time.Minute))
	}

	var (
		after *models.FeedPosition
		seen  = map[uuid.UUID]bool{}
		sizes []int
		prev  *models.Clip
	)

	for i := 0; i < 3; i++ {
		page, err := r.ListPage(ctx, after, 6, models.SortDescending)
		require.NoError(t, err)
		sizes = append(sizes, len(page))

		for i := range page {
			c := page[i]
			require.False(t, seen[c.ID], "duplicate clip across pages")
			seen[c.ID] = true
			if prev != nil {
				require.False(t, c.CreatedAt.After(prev.CreatedAt), "descending order violated")
			}
			prev = &c
		}
		pos := page[len(page)-1].Position()
		after = &pos
	}

	require.Equal(t, []int{6, 6, 1}, sizes)
	require.Len(t, seen, 13)

	// Past the last record the feed is empty.
	page, err := r.ListPage(ctx, after, 6, models.SortDescending)
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestListPage_EqualTimestampsNeverDuplicateOrSkip(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	// All records share one timestamp; only the id tie-break orders them.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedClip(t, r, "u1", at)
	}

	var after *models.FeedPosition
	seen := map[uuid.UUID]bool{}
	for {
		page, err := r.ListPage(ctx, after, 2, models.SortDescending)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, c := range page {
			require.False(t, seen[c.ID])
			seen[c.ID] = true
		}
		pos := page[len(page)-1].Position()
		after = &pos
	}
	require.Len(t, seen, 5)
}

func TestListPage_Ascending(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := seedClip(t, r, "u1", base)
	seedClip(t, r, "u1", base.Add(time.Minute))

	page, err := r.ListPage(ctx, nil, 6, models.SortAscending)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, first.ID, page[0].ID)
}

func TestListByOwner_FiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seedClip(t, r, "alice", base)
	newer := seedClip(t, r, "alice", base.Add(time.Hour))
	seedClip(t, r, "bob", base.Add(30*time.Minute))

	got, err := r.ListByOwner(ctx, "alice", models.SortDescending)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, newer.ID, got[0].ID)

	got, err = r.ListByOwner(ctx, "nobody", models.SortDescending)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUpdateTitleAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	c := seedClip(t, r, "u1", time.Now())

	got, err := r.UpdateTitle(ctx, c.ID, "renamed")
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)

	_, err = r.UpdateTitle(ctx, uuid.New(), "x")
	require.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, r.Delete(ctx, c.ID))
	require.ErrorIs(t, r.Delete(ctx, c.ID), models.ErrNotFound)
}

func TestEventsRecorded(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	c := seedClip(t, r, "u1", time.Now())
	require.NoError(t, r.Delete(ctx, c.ID))

	events := r.Events()
	require.Len(t, events, 2)
	require.Equal(t, "ClipCommitted", events[0].EventType())
	require.Equal(t, "ClipDeleted", events[1].EventType())
	require.Equal(t, c.ID, events[0].AggregateID())
	require.Equal(t, c.ID, events[1].AggregateID())
}
