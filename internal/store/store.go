// Package store persists the backend access token for each browser session.
package store

import (
	"context"
	"errors"
)

// TokenKey is the fixed key the access token lives under within a session.
const TokenKey = "token"

var ErrNotFound = errors.New("token not found")

// TokenStore is durable storage for one opaque token per session id.
type TokenStore interface {
	Load(ctx context.Context, sid string) (string, error)
	Save(ctx context.Context, sid, token string) error
	Clear(ctx context.Context, sid string) error
}
