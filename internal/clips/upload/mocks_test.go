package upload

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/avolkovs/clipstream/internal/clips/models"
	"github.com/avolkovs/clipstream/internal/clips/repository"
)

// blobMock scripts per-namespace behavior: progress fractions emitted before
// completion, injected failures, and an optional block-until-cancelled mode.
// Namespaces are "clips" and "screenshots", matching the path layout.
type blobMock struct {
	mu       sync.Mutex
	objects  map[string][]byte
	deletes  []string
	progress map[string][]float64
	putErr   map[string]error
	delErr   map[string]error
	blocking map[string]bool
}

func newBlobMock() *blobMock {
	return &blobMock{
		objects:  make(map[string][]byte),
		progress: make(map[string][]float64),
		putErr:   make(map[string]error),
		delErr:   make(map[string]error),
		blocking: make(map[string]bool),
	}
}

func namespace(path string) string {
	ns, _, _ := strings.Cut(path, "/")
	return ns
}

func (m *blobMock) Put(ctx context.Context, path string, r io.Reader, size int64, onProgress func(float64)) error {
	ns := namespace(path)

	m.mu.Lock()
	blocking := m.blocking[ns]
	steps := m.progress[ns]
	err := m.putErr[ns]
	m.mu.Unlock()

	if blocking {
		<-ctx.Done()
		return ctx.Err()
	}

	for _, f := range steps {
		if onProgress != nil {
			onProgress(f)
		}
	}
	if err != nil {
		return err
	}

	data, rerr := io.ReadAll(r)
	if rerr != nil {
		return rerr
	}

	m.mu.Lock()
	m.objects[path] = data
	m.mu.Unlock()
	return nil
}

func (m *blobMock) ResolveURL(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[path]; !ok {
		return "", models.ErrNotFound
	}
	return "https://cdn.local/" + path, nil
}

func (m *blobMock) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deletes = append(m.deletes, path)
	if err := m.delErr[namespace(path)]; err != nil {
		return err
	}
	// deleting a missing object is fine, matching S3 semantics
	delete(m.objects, path)
	return nil
}

func (m *blobMock) objectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *blobMock) deleteLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// failingRepo wraps the in-memory repository with injectable failures.
type failingRepo struct {
	*repository.MemoryRepository
	createErr      error
	deleteFailures int
	deleteErr      error
}

func (r *failingRepo) Create(ctx context.Context, c *models.Clip) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepository.Create(ctx, c)
}

func (r *failingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if r.deleteFailures > 0 {
		r.deleteFailures--
		return r.deleteErr
	}
	return r.MemoryRepository.Delete(ctx, id)
}
