package emergency

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record is shared under a token.
var ErrNotFound = errors.New("emergency record not found")

// ShareRepository stores the record served under each share token.
type ShareRepository interface {
	GetByToken(ctx context.Context, token string) (*View, error)
	Put(ctx context.Context, token string, v *View) error
}
