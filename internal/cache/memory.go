package cache

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
)

// MemoryStore is an in-process driver backed by freecache.
type MemoryStore struct {
	cache *freecache.Cache
}

// NewMemoryStore allocates sizeMB megabytes of cache.
func NewMemoryStore(sizeMB int) *MemoryStore {
	if sizeMB <= 0 {
		sizeMB = 16
	}
	return &MemoryStore{cache: freecache.NewCache(sizeMB * 1024 * 1024)}
}

func (s *MemoryStore) Get(_ context.Context, key Key) ([]byte, error) {
	val, err := s.cache.Get([]byte(key.String()))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

func (s *MemoryStore) Set(_ context.Context, key Key, value []byte, ttl time.Duration) error {
	secs := int(ttl.Seconds())
	if secs < 1 {
		secs = 1
	}
	return s.cache.Set([]byte(key.String()), value, secs)
}

func (s *MemoryStore) Close() error {
	s.cache.Clear()
	return nil
}
