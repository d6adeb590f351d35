// Package cache stores normalized forecast payloads keyed by rounded
// coordinates and model name, each with a one-hour expiry.
package cache

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a cached forecast stays fresh.
const DefaultTTL = time.Hour

// ErrCacheMiss is returned by stores when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Key identifies a cached forecast: coordinates rounded to four decimals and a model name.
type Key struct {
	Location string
	Model    string
}

// String is the flat form used by key-only drivers.
func (k Key) String() string {
	return k.Location + ":" + k.Model
}

// Store is a cache driver. Set is an upsert.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte, ttl time.Duration) error
	Close() error
}

// Pruner is implemented by drivers that need expired rows removed explicitly.
type Pruner interface {
	Prune(ctx context.Context, now time.Time) (int64, error)
}

// NoopStore never holds anything. Used when caching is disabled.
type NoopStore struct{}

func (NoopStore) Get(context.Context, Key) ([]byte, error)              { return nil, ErrCacheMiss }
func (NoopStore) Set(context.Context, Key, []byte, time.Duration) error { return nil }
func (NoopStore) Close() error                                          { return nil }
