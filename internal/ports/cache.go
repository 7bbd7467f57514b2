package ports

import (
	"context"
	"time"
)

// Cache is a string key-value store with per-key expiry.
// The level catalog keeps its per-company ladder snapshot here.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
