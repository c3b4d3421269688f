// Package thumbs declares the thumbnail-candidate generator collaborator.
// Frame extraction itself (ffmpeg or otherwise) is somebody else's problem;
// the upload flow only consumes one caller-selected candidate.
package thumbs

import (
	"context"
	"io"
)

// Candidate is one still image extracted from a video.
type Candidate struct {
	Data        []byte
	ContentType string
}

// Generator produces a finite set of candidate stills for a video. The
// returned slice can be iterated any number of times.
type Generator interface {
	Candidates(ctx context.Context, video io.Reader) ([]Candidate, error)
}
