package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/snowhound/internal/weather"
)

const geocodeLimit = 5

// NominatimGeocoder resolves place names through OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: "https://nominatim.openstreetmap.org/search",
		httpCfg: DefaultHTTPConfig(client),
		circuit: newCircuitBreaker("nominatim"),
	}
}

// WithBaseURL points the geocoder at a different endpoint.
func (g *NominatimGeocoder) WithBaseURL(u string) *NominatimGeocoder {
	g.baseURL = u
	return g
}

// GeocodeResult is one raw Nominatim match. Nominatim sends coordinates as strings.
type GeocodeResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Search returns up to five raw matches for an already sanitized query.
func (g *NominatimGeocoder) Search(ctx context.Context, query string) ([]GeocodeResult, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(geocodeLimit))

	var results []GeocodeResult
	if err := getJSON(ctx, g.httpCfg, g.circuit, g.baseURL+"?"+values.Encode(), &results); err != nil {
		return nil, fmt.Errorf("nominatim: %w", err)
	}
	return results, nil
}

// Geocode sanitizes query, searches, and converts matches to locations.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) ([]weather.Location, error) {
	q, err := weather.PrepareQuery(query)
	if err != nil {
		return nil, err
	}
	results, err := g.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return ToLocations(results), nil
}

// ToLocations drops matches with invalid coordinates and shortens long names.
func ToLocations(results []GeocodeResult) []weather.Location {
	out := make([]weather.Location, 0, len(results))
	for i, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil || !weather.ValidateCoordinates(lat, lon) {
			continue
		}

		id := strconv.FormatInt(r.PlaceID, 10)
		if r.PlaceID == 0 {
			id = strconv.Itoa(i)
		}

		out = append(out, weather.Location{
			ID:   "geocoded-" + id,
			Name: ShortName(r.DisplayName),
			Lat:  lat,
			Lon:  lon,
			Type: weather.LocationSearch,
		})
	}
	return out
}

// ShortName keeps the first and last two parts of a display name with more
// than three comma-separated parts.
func ShortName(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) <= 3 {
		return displayName
	}
	keep := []string{parts[0], parts[len(parts)-2], parts[len(parts)-1]}
	for i := range keep {
		keep[i] = strings.TrimSpace(keep[i])
	}
	return strings.Join(keep, ", ")
}
