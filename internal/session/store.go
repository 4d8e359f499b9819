// Package session persists in-progress workflow drafts so an interrupted
// intake can resume. Persistence is best-effort: workflows run fine with a
// nil store, and store failures never block a step transition.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no draft exists for the given key, or its
// TTL has expired.
var ErrNotFound = errors.New("session: draft not found")

// DefaultTTL bounds how long an abandoned draft survives.
const DefaultTTL = 30 * time.Minute

// Store saves and restores JSON-encodable workflow drafts keyed by workflow
// instance id.
type Store interface {
	Save(ctx context.Context, key string, value any, ttl time.Duration) error
	Load(ctx context.Context, key string, into any) error
	Delete(ctx context.Context, key string) error
}
