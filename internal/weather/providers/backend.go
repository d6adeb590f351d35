package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/i474232898/snowhound/internal/weather"
)

// BackendClient talks to the snowhound backend, which proxies and caches
// provider calls. It implements weather.Backend and weather.Geocoder.
type BackendClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewBackendClient(client *http.Client, baseURL string) *BackendClient {
	cfg := DefaultHTTPConfig(client)
	// A failed batch falls back to direct calls, so retrying here only adds latency.
	cfg.Backoff.MaxRetries = 0
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: cfg,
		circuit: newCircuitBreaker("backend"),
	}
}

// ForecastRequest is the body of POST /api/weather/forecast.
type ForecastRequest struct {
	Location struct {
		Lat *float64 `json:"lat" validate:"required"`
		Lon *float64 `json:"lon" validate:"required"`
	} `json:"location"`
	Model    string `json:"model" validate:"required"`
	Provider string `json:"provider" validate:"required"`
}

// ForecastResponse is a normalized series annotated with whether it came from cache.
type ForecastResponse struct {
	weather.ForecastSeries
	Cached bool `json:"cached"`
}

func (c *BackendClient) FetchForecast(ctx context.Context, loc weather.Location, model weather.WeatherModel, provider weather.ProviderKind) (weather.ForecastSeries, error) {
	var body ForecastRequest
	body.Location.Lat = &loc.Lat
	body.Location.Lon = &loc.Lon
	body.Model = model.Name
	body.Provider = string(provider)

	raw, err := json.Marshal(body)
	if err != nil {
		return weather.ForecastSeries{}, err
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/weather/forecast", bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
		return req, nil
	})
	if err != nil {
		return weather.ForecastSeries{}, fmt.Errorf("backend forecast %s: %w", model.Name, err)
	}
	defer resp.Body.Close()

	var out ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return weather.ForecastSeries{}, fmt.Errorf("backend forecast %s: decode: %w", model.Name, err)
	}

	series := out.ForecastSeries
	series.Location = loc
	series.Model = model.Name
	series.Data = weather.NormalizeRecords(series.Data, model.Name)
	series.IsMock = false
	if series.LastUpdated.IsZero() {
		series.LastUpdated = time.Now().UTC()
	}
	return series, nil
}

// Geocode asks the backend to geocode query. The query is sanitized first
// so invalid input never leaves the process.
func (c *BackendClient) Geocode(ctx context.Context, query string) ([]weather.Location, error) {
	q, err := weather.PrepareQuery(query)
	if err != nil {
		return nil, err
	}

	var results []GeocodeResult
	u := c.baseURL + "/api/weather/geocode?" + url.Values{"q": []string{q}}.Encode()
	if err := getJSON(ctx, c.httpCfg, c.circuit, u, &results); err != nil {
		return nil, fmt.Errorf("backend geocode: %w", err)
	}
	return ToLocations(results), nil
}
