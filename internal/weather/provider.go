package weather

import (
	"context"
	"time"
)

// Adapter abstracts one upstream forecast API (OpenWeatherMap, WeatherAPI, NWS).
// Fetch returns records in upstream order, already converted to inches/°F/mph.
type Adapter interface {
	Kind() ProviderKind
	Name() string
	// Configured reports whether the adapter has what it needs (e.g. an API key)
	// to attempt a live call.
	Configured() bool
	Fetch(ctx context.Context, loc Location, model string) ([]SnowfallRecord, error)
}

// Backend is a remote aggregation service that fetches and caches series.
type Backend interface {
	FetchForecast(ctx context.Context, loc Location, model WeatherModel, provider ProviderKind) (ForecastSeries, error)
}

// Geocoder resolves a free-text place name to candidate locations.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Location, error)
}

// Fetch outcomes reported to a Recorder.
const (
	OutcomeLive    = "live"
	OutcomeMock    = "mock"
	OutcomeFailed  = "failed"
	OutcomeBackend = "backend"
)

// Recorder receives per-call fetch outcomes for metrics.
type Recorder interface {
	FetchCompleted(provider, outcome string, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) FetchCompleted(string, string, time.Duration) {}
