package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/i474232898/snowhound/internal/weather"
)

// HitCounter receives hit/miss notifications.
type HitCounter interface {
	IncCacheHits()
	IncCacheMisses()
}

// ForecastCache stores normalized series. Every store error is logged and
// swallowed: a failed read is a miss and a failed write is a no-op.
type ForecastCache struct {
	store   Store
	codec   *Codec
	ttl     time.Duration
	log     zerolog.Logger
	counter HitCounter
	now     func() time.Time

	hits   *atomic.Int64
	misses *atomic.Int64
}

func NewForecastCache(store Store, codec *Codec, ttl time.Duration, counter HitCounter, log zerolog.Logger) *ForecastCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ForecastCache{
		store:   store,
		codec:   codec,
		ttl:     ttl,
		log:     log.With().Str("component", "forecast-cache").Logger(),
		counter: counter,
		now:     time.Now,
		hits:    atomic.NewInt64(0),
		misses:  atomic.NewInt64(0),
	}
}

// KeyFor builds the cache key for coordinates and a model name.
func KeyFor(lat, lon float64, model string) Key {
	return Key{Location: weather.CoordinateKey(lat, lon), Model: model}
}

// Get returns the cached series only while it is unexpired.
func (c *ForecastCache) Get(ctx context.Context, lat, lon float64, model string) (weather.ForecastSeries, bool) {
	key := KeyFor(lat, lon, model)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Debug().Err(err).Str("key", key.String()).Msg("cache unavailable, treating as miss")
		}
		return c.miss()
	}

	e, err := c.codec.decode(raw)
	if err != nil {
		c.log.Debug().Err(err).Str("key", key.String()).Msg("corrupt cache entry")
		return c.miss()
	}
	if !c.now().Before(e.ExpiresAt) {
		return c.miss()
	}

	var series weather.ForecastSeries
	if err := json.Unmarshal(e.Data, &series); err != nil {
		c.log.Debug().Err(err).Str("key", key.String()).Msg("corrupt cached series")
		return c.miss()
	}

	c.hits.Inc()
	if c.counter != nil {
		c.counter.IncCacheHits()
	}
	return series, true
}

// Put upserts series under (lat, lon, model) with a fresh expiry.
func (c *ForecastCache) Put(ctx context.Context, lat, lon float64, model string, series weather.ForecastSeries) {
	if err := c.put(ctx, KeyFor(lat, lon, model), series); err != nil {
		c.log.Debug().Err(err).Str("model", model).Msg("cache unavailable, skipping save")
	}
}

func (c *ForecastCache) put(ctx context.Context, key Key, series weather.ForecastSeries) error {
	data, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}
	raw, err := c.codec.encode(entry{
		LocationKey: key.Location,
		ModelName:   key.Model,
		Data:        data,
		ExpiresAt:   c.now().Add(c.ttl),
	})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return c.store.Set(ctx, key, raw, c.ttl)
}

// Prune removes expired rows when the driver supports it.
func (c *ForecastCache) Prune(ctx context.Context) (int64, error) {
	p, ok := c.store.(Pruner)
	if !ok {
		return 0, nil
	}
	return p.Prune(ctx, c.now())
}

// Stats returns hit and miss counts since creation.
func (c *ForecastCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ForecastCache) miss() (weather.ForecastSeries, bool) {
	c.misses.Inc()
	if c.counter != nil {
		c.counter.IncCacheMisses()
	}
	return weather.ForecastSeries{}, false
}

// Close closes the driver and codec.
func (c *ForecastCache) Close() error {
	c.codec.Close()
	return c.store.Close()
}
