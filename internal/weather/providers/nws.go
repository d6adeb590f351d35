package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/snowhound/internal/weather"
)

const nwsMaxPeriods = 7

var errNoForecastURL = errors.New("points response has no forecast url")

// NWSProvider implements weather.Adapter for the National Weather Service
// (api.weather.gov). No key is needed, but a User-Agent is.
type NWSProvider struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNWSProvider(client *http.Client) *NWSProvider {
	return &NWSProvider{
		baseURL: "https://api.weather.gov",
		httpCfg: DefaultHTTPConfig(client),
		circuit: newCircuitBreaker("nws"),
	}
}

// WithBaseURL points the provider at a different endpoint.
func (p *NWSProvider) WithBaseURL(u string) *NWSProvider {
	p.baseURL = strings.TrimRight(u, "/")
	return p
}

func (p *NWSProvider) Kind() weather.ProviderKind { return weather.ProviderNWS }

func (p *NWSProvider) Name() string { return "National Weather Service" }

func (p *NWSProvider) Configured() bool { return true }

type nwsPointsPayload struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type nwsForecastPayload struct {
	Properties struct {
		Periods []nwsPeriod `json:"periods"`
	} `json:"properties"`
}

type nwsPeriod struct {
	StartTime       string  `json:"startTime"`
	IsDaytime       bool    `json:"isDaytime"`
	Temperature     float64 `json:"temperature"`
	TemperatureUnit string  `json:"temperatureUnit"`
	WindSpeed       string  `json:"windSpeed"`
	SnowfallAmount  *struct {
		Value *float64 `json:"value"`
	} `json:"snowfallAmount"`
}

// Fetch resolves the forecast-office URL from /points, then reads its periods.
func (p *NWSProvider) Fetch(ctx context.Context, loc weather.Location, model string) ([]weather.SnowfallRecord, error) {
	pointsURL := fmt.Sprintf("%s/points/%s,%s", p.baseURL,
		strconv.FormatFloat(loc.Lat, 'f', -1, 64),
		strconv.FormatFloat(loc.Lon, 'f', -1, 64))

	var points nwsPointsPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, pointsURL, &points); err != nil {
		return nil, fmt.Errorf("nws points: %w", err)
	}
	if points.Properties.Forecast == "" {
		return nil, fmt.Errorf("nws: %w: %w", weather.ErrUpstreamUnavailable, errNoForecastURL)
	}

	var forecast nwsForecastPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, points.Properties.Forecast, &forecast); err != nil {
		return nil, fmt.Errorf("nws forecast: %w", err)
	}
	return forecast.records(model), nil
}

// records keeps the first seven daytime periods. NWS has no humidity in
// this product, so it is reported as 0.
func (p nwsForecastPayload) records(model string) []weather.SnowfallRecord {
	out := make([]weather.SnowfallRecord, 0, nwsMaxPeriods)
	for _, period := range p.Properties.Periods {
		if !period.IsDaytime {
			continue
		}
		if len(out) == nwsMaxPeriods {
			break
		}

		var snow float64
		if period.SnowfallAmount != nil && period.SnowfallAmount.Value != nil {
			snow = *period.SnowfallAmount.Value
		}

		temp := period.Temperature
		if strings.EqualFold(period.TemperatureUnit, "C") {
			temp = temp*9/5 + 32
		}

		out = append(out, weather.SnowfallRecord{
			Timestamp:   period.StartTime,
			Snowfall:    snow,
			Temperature: temp,
			WindSpeed:   ParseWindSpeed(period.WindSpeed),
			Humidity:    0,
			Model:       model,
		})
	}
	return out
}

// ParseWindSpeed reads the leading integer of the first token of a free-text
// wind field such as "10 mph" or "5 to 15 mph". Unparseable input yields 0.
func ParseWindSpeed(s string) float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	tok := fields[0]
	end := 0
	for end < len(tok) && tok[end] >= '0' && tok[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(tok[:end])
	if err != nil {
		return 0
	}
	return float64(n)
}
