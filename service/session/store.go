// Package session defines per-user conversation context storage.
package session

import (
	"context"
	"errors"

	"github.com/viant/kgflow/model/state"
)

// ErrInvalidUser is returned for an empty user id
var ErrInvalidUser = errors.New("session: user id was empty")

// Store represents per-user context storage. Get returns an empty context for
// an unknown or expired user.
type Store interface {
	Get(ctx context.Context, userID string) (state.Context, error)

	Put(ctx context.Context, userID string, values state.Context) error

	Clear(ctx context.Context, userID string) error
}
