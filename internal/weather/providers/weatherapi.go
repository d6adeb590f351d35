package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/snowhound/internal/weather"
)

const cmPerInch = 2.54

// WeatherAPIProvider implements weather.Adapter for the WeatherAPI.com daily forecast.
type WeatherAPIProvider struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/forecast.json",
		httpCfg: DefaultHTTPConfig(client),
		circuit: newCircuitBreaker("weatherapi"),
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

func (p *WeatherAPIProvider) Kind() weather.ProviderKind { return weather.ProviderWeatherAPI }

func (p *WeatherAPIProvider) Name() string { return "WeatherAPI.com" }

func (p *WeatherAPIProvider) Configured() bool { return p.apiKey != "" }

type weatherAPIPayload struct {
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				TotalSnowCm float64 `json:"totalsnow_cm"`
				AvgTempF    float64 `json:"avgtemp_f"`
				MaxWindMph  float64 `json:"maxwind_mph"`
				AvgHumidity float64 `json:"avghumidity"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location, model string) ([]weather.SnowfallRecord, error) {
	if !p.Configured() {
		return nil, fmt.Errorf("weatherapi: %w: %w", weather.ErrUpstreamUnavailable, errMissingKey)
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", fmt.Sprintf("%g,%g", loc.Lat, loc.Lon))
	values.Set("days", "7")

	var payload weatherAPIPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("weatherapi: %w", err)
	}
	return payload.records(model), nil
}

func (p weatherAPIPayload) records(model string) []weather.SnowfallRecord {
	days := p.Forecast.ForecastDay
	out := make([]weather.SnowfallRecord, 0, len(days))
	for _, d := range days {
		out = append(out, weather.SnowfallRecord{
			Timestamp:   d.Date,
			Snowfall:    CentimetersToInches(d.Day.TotalSnowCm),
			Temperature: d.Day.AvgTempF,
			WindSpeed:   d.Day.MaxWindMph,
			Humidity:    d.Day.AvgHumidity,
			Model:       model,
		})
	}
	return out
}

// CentimetersToInches converts a snowfall depth.
func CentimetersToInches(cm float64) float64 {
	return cm / cmPerInch
}
