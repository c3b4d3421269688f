package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

// FeedUpdate is one re-evaluation of a user feed.
type FeedUpdate struct {
	OwnerID string
	Order   models.SortOrder
	Clips   []models.Clip
	Err     error
}

// UserFeedWatcher re-issues the per-owner query whenever the signed-in owner
// or the sort toggle changes. Results of a query whose (owner, order)
// combination went stale before delivery are discarded, and the stale query's
// context is cancelled.
type UserFeedWatcher struct {
	svc    *Service
	logger zerolog.Logger

	mu      sync.Mutex
	ownerID string
	order   models.SortOrder
	gen     int64

	changes chan struct{}
	updates chan FeedUpdate
}

func NewUserFeedWatcher(svc *Service, logger zerolog.Logger) *UserFeedWatcher {
	return &UserFeedWatcher{
		svc:     svc,
		logger:  logger.With().Str("component", "user_feed").Logger(),
		order:   models.SortDescending,
		changes: make(chan struct{}, 1),
		updates: make(chan FeedUpdate),
	}
}

// Updates delivers one FeedUpdate per observed (owner, order) combination.
func (w *UserFeedWatcher) Updates() <-chan FeedUpdate {
	return w.updates
}

// SetOwner records the signed-in owner; an empty id means nobody is signed in
// and yields an empty feed.
func (w *UserFeedWatcher) SetOwner(ownerID string) {
	w.mu.Lock()
	w.ownerID = ownerID
	w.gen++
	w.mu.Unlock()
	w.notify()
}

// SetSort records the requested order.
func (w *UserFeedWatcher) SetSort(order models.SortOrder) {
	if !order.Valid() {
		order = models.SortDescending
	}
	w.mu.Lock()
	w.order = order
	w.gen++
	w.mu.Unlock()
	w.notify()
}

func (w *UserFeedWatcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
		// a change is already pending; the query will read the latest state
	}
}

func (w *UserFeedWatcher) snapshot() (string, models.SortOrder, int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ownerID, w.order, w.gen
}

func (w *UserFeedWatcher) currentGen() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gen
}

// Run drives the watcher until ctx is done. Each observed change cancels any
// in-flight query and issues a fresh one for the current combination.
func (w *UserFeedWatcher) Run(ctx context.Context) {
	var cancelPrev context.CancelFunc
	defer func() {
		if cancelPrev != nil {
			cancelPrev()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.changes:
		}

		if cancelPrev != nil {
			cancelPrev()
		}
		qctx, cancel := context.WithCancel(ctx)
		cancelPrev = cancel

		ownerID, order, gen := w.snapshot()
		go w.query(qctx, gen, ownerID, order)
	}
}

func (w *UserFeedWatcher) query(ctx context.Context, gen int64, ownerID string, order models.SortOrder) {
	clips, err := w.svc.UserFeed(ctx, ownerID, order)

	// The combination changed while the query ran; drop the result.
	if w.currentGen() != gen {
		return
	}
	if err != nil {
		w.logger.Error().Err(err).Str("owner_id", ownerID).Msg("user feed query failed")
	}

	select {
	case w.updates <- FeedUpdate{OwnerID: ownerID, Order: order, Clips: clips, Err: err}:
	case <-ctx.Done():
	}
}
