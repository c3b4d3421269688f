// Package identity declares the signed-in-user collaborator. Session
// management lives elsewhere; the upload flow only needs a point-in-time
// snapshot of who is uploading.
package identity

import "context"

type User struct {
	ID          string
	DisplayName string
}

// Provider reports the current user. A nil user with nil error means nobody
// is signed in.
type Provider interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Static always reports the same user. Used in dev mode and tests.
type Static struct {
	user *User
}

func NewStatic(user *User) *Static {
	return &Static{user: user}
}

func (s *Static) CurrentUser(ctx context.Context) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.user, nil
}
