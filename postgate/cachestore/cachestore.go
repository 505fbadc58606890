package cachestore

import (
	"context"
)

// Get returns ("", nil) on cache miss; callers which need to distinguish a
// cached empty string should not cache empty strings.
type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}
