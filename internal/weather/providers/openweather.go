package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/snowhound/internal/weather"
)

// OpenWeatherProvider serves the gridded global models (ECMWF, UKMET, GEM, JMA)
// from the OpenWeatherMap 5-day / 3-hour forecast.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: DefaultHTTPConfig(client),
		circuit: newCircuitBreaker("openweathermap"),
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

func (p *OpenWeatherProvider) Kind() weather.ProviderKind { return weather.ProviderOpenWeatherMap }

func (p *OpenWeatherProvider) Name() string { return "OpenWeatherMap" }

func (p *OpenWeatherProvider) Configured() bool { return p.apiKey != "" }

// openWeatherPayload is the subset of /data/2.5/forecast we read.
type openWeatherPayload struct {
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Snow map[string]float64 `json:"snow"`
	} `json:"list"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location, model string) ([]weather.SnowfallRecord, error) {
	if !p.Configured() {
		return nil, fmt.Errorf("openweathermap: %w: %w", weather.ErrUpstreamUnavailable, errMissingKey)
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	values.Set("appid", p.apiKey)
	values.Set("units", "imperial")

	var payload openWeatherPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("openweathermap: %w", err)
	}
	return payload.records(model), nil
}

// records maps 3-hour entries one to one; snow["3h"] is absent when no snow falls.
func (p openWeatherPayload) records(model string) []weather.SnowfallRecord {
	out := make([]weather.SnowfallRecord, 0, len(p.List))
	for _, item := range p.List {
		out = append(out, weather.SnowfallRecord{
			Timestamp:   item.DtTxt,
			Snowfall:    item.Snow["3h"],
			Temperature: item.Main.Temp,
			WindSpeed:   item.Wind.Speed,
			Humidity:    item.Main.Humidity,
			Model:       model,
		})
	}
	return out
}
