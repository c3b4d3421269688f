package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/avolkovs/clipstream/internal/clips/models"
)

// FeedPager accumulates global-feed pages for one reader. A NextPage call
// that arrives while another is still outstanding is ignored: both would
// compute the same cursor and append the same trailing page.
type FeedPager struct {
	svc      *Service
	pageSize int
	order    models.SortOrder

	busy atomic.Bool

	mu        sync.Mutex
	clips     []models.Clip
	cursor    string
	exhausted bool
}

func NewFeedPager(svc *Service, pageSize int, order models.SortOrder) *FeedPager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if !order.Valid() {
		order = models.SortDescending
	}
	return &FeedPager{svc: svc, pageSize: pageSize, order: order}
}

// NextPage fetches and accumulates the next page. Returns the newly fetched
// clips, or (nil, nil) when the call was ignored because another NextPage is
// in flight or the feed is exhausted.
func (p *FeedPager) NextPage(ctx context.Context) ([]models.Clip, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, nil
	}
	defer p.busy.Store(false)

	p.mu.Lock()
	cursor := p.cursor
	exhausted := p.exhausted
	p.mu.Unlock()

	if exhausted {
		return nil, nil
	}

	page, err := p.svc.GlobalFeed(ctx, cursor, p.pageSize, p.order)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.clips = append(p.clips, page.Clips...)
	if page.NextCursor == "" {
		p.exhausted = true
	} else {
		p.cursor = page.NextCursor
	}
	p.mu.Unlock()

	return page.Clips, nil
}

// Clips returns a copy of everything accumulated so far.
func (p *FeedPager) Clips() []models.Clip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Clip(nil), p.clips...)
}

// Exhausted reports whether the feed has been fully consumed.
func (p *FeedPager) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}
