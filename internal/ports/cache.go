package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	// GetDel returns the value and removes it in one step. Only one of
	// several concurrent callers gets the value; the rest see ErrCacheMiss.
	GetDel(ctx context.Context, key string) (string, error)
	Ping() error
	Close() error
}
