package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/snowhound/internal/weather"
)

// RateLimitedAdapter wraps an adapter so calls wait for a token first.
type RateLimitedAdapter struct {
	weather.Adapter
	limiter *rate.Limiter
}

// NewRateLimitedAdapter allows rps requests per second with the given burst.
// rps may be fractional.
func NewRateLimitedAdapter(a weather.Adapter, rps float64, burst int) *RateLimitedAdapter {
	return &RateLimitedAdapter{
		Adapter: a,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Fetch waits for limiter permission or context cancellation, then forwards.
func (r *RateLimitedAdapter) Fetch(ctx context.Context, loc weather.Location, model string) ([]weather.SnowfallRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait canceled: %w", weather.ErrUpstreamUnavailable, err)
	}
	return r.Adapter.Fetch(ctx, loc, model)
}

var _ weather.Adapter = (*RateLimitedAdapter)(nil)
