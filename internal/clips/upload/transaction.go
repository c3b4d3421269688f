package upload

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/avolkovs/clipstream/internal/clips/domain"
	"github.com/avolkovs/clipstream/internal/clips/models"
)

const progressBuffer = 16

const (
	sidePrimary = iota
	sideThumbnail
)

// Transaction is one in-flight upload: two concurrent blob transfers joined
// into a single catalog commit. It is created by Orchestrator.Begin and owns
// no state shared with other transactions.
type Transaction struct {
	id            uuid.UUID
	primaryPath   string
	thumbnailPath string

	cancelOnce sync.Once
	cancel     context.CancelFunc

	mu        sync.Mutex
	state     domain.State
	sides     [2]float64
	seen      [2]bool
	aggregate float64
	published bool
	closed    bool

	progress chan float64
	done     chan struct{}
	clip     *models.Clip
	err      error
}

func newTransaction(id uuid.UUID, primaryPath, thumbnailPath string, cancel context.CancelFunc) *Transaction {
	return &Transaction{
		id:            id,
		primaryPath:   primaryPath,
		thumbnailPath: thumbnailPath,
		cancel:        cancel,
		state:         domain.Idle,
		progress:      make(chan float64, progressBuffer),
		done:          make(chan struct{}),
	}
}

func (t *Transaction) ID() uuid.UUID { return t.id }

// Progress is the transaction's aggregate progress stream. Values are
// non-decreasing; the channel closes once the transaction is terminal, with
// 1.0 as the last value on success.
func (t *Transaction) Progress() <-chan float64 {
	return t.progress
}

// State returns the current state of the transaction.
func (t *Transaction) State() domain.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Wait blocks until the transaction is terminal and returns the committed
// clip or the failure.
func (t *Transaction) Wait(ctx context.Context) (*models.Clip, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clip, t.err
}

// Cancel cooperatively aborts both transfers. It is a no-op once the
// transaction reached Committed; the normal delete flow applies from there.
func (t *Transaction) Cancel() {
	t.mu.Lock()
	terminal := t.state.Terminal()
	t.mu.Unlock()
	if terminal {
		return
	}
	t.cancelOnce.Do(t.cancel)
}

// transition validates and applies a state change. Transitions out of a
// terminal state are programming errors and are dropped.
func (t *Transaction) transition(to domain.State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := domain.ValidateTransition(t.state, to); err != nil {
		return false
	}
	t.state = to
	return true
}

// report records one side's progress. The aggregate is republished only after
// both sides emitted at least once, and per-side regressions are ignored, so
// delivered aggregates never decrease.
func (t *Transaction) report(side int, frac float64) {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || frac < t.sides[side] {
		return
	}
	t.sides[side] = frac
	t.seen[side] = true

	if !t.seen[sidePrimary] || !t.seen[sideThumbnail] {
		return
	}
	agg := (t.sides[sidePrimary] + t.sides[sideThumbnail]) / 2
	if t.published && agg <= t.aggregate {
		return
	}
	t.published = true
	t.aggregate = agg
	t.emitLocked(agg)
}

// emitLocked delivers v without ever blocking the uploader: when the buffer
// is full the oldest value is dropped. Values are monotone, so dropping old
// ones loses nothing a consumer needs.
func (t *Transaction) emitLocked(v float64) {
	for {
		select {
		case t.progress <- v:
			return
		default:
			select {
			case <-t.progress:
			default:
			}
		}
	}
}

// complete finishes the transaction with a committed clip.
func (t *Transaction) complete(clip *models.Clip) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.state = domain.Committed
	t.clip = clip
	if t.aggregate < 1 {
		t.aggregate = 1
		t.emitLocked(1)
	}
	t.closed = true
	close(t.progress)
	close(t.done)
}

// fail finishes the transaction with an error.
func (t *Transaction) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.state = domain.Failed
	t.err = err
	t.closed = true
	close(t.progress)
	close(t.done)
}
