// Package blob declares the object-storage boundary of the upload flow.
package blob

import (
	"context"
	"io"
)

// Store is the blob-store collaborator. Paths are namespaced by asset kind
// ("clips/", "screenshots/") and keyed by a per-transaction unique prefix, so
// concurrent uploads never collide.
type Store interface {
	// Put streams r to path, reporting fractions in [0,1] through onProgress
	// as bytes move. It blocks until the object is durably stored or ctx is
	// cancelled. onProgress may be nil.
	Put(ctx context.Context, path string, r io.Reader, size int64, onProgress func(float64)) error

	// ResolveURL returns a publicly fetchable URL for a stored object.
	ResolveURL(ctx context.Context, path string) (string, error)

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
