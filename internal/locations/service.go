package locations

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/weather"
)

// Service searches presets and falls back to a geocoder.
type Service struct {
	geocoder weather.Geocoder
	log      zerolog.Logger
}

func NewService(geocoder weather.Geocoder, log zerolog.Logger) *Service {
	return &Service{geocoder: geocoder, log: log.With().Str("component", "locations").Logger()}
}

// Search matches presets whose name contains query, ignoring case.
func Search(query string) []weather.Location {
	q := strings.ToLower(query)
	var out []weather.Location
	for _, l := range Presets() {
		if strings.Contains(strings.ToLower(l.Name), q) {
			out = append(out, l)
		}
	}
	return out
}

// SearchAsync returns preset matches when there are any, otherwise geocodes.
// Geocoding failures other than invalid input yield an empty result.
func (s *Service) SearchAsync(ctx context.Context, query string) ([]weather.Location, error) {
	if found := Search(query); len(found) > 0 {
		return found, nil
	}
	if s.geocoder == nil {
		return nil, nil
	}

	found, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		if weather.IsValidation(err) {
			return nil, err
		}
		if rl, ok := weather.AsRateLimited(err); ok {
			return nil, rl
		}
		s.log.Warn().Err(err).Str("query", query).Msg("geocoding failed")
		return nil, nil
	}
	return found, nil
}

// ByCoordinates builds an ad-hoc location for a coordinate pair.
func ByCoordinates(lat, lon float64) (weather.Location, error) {
	if !weather.ValidateCoordinates(lat, lon) {
		return weather.Location{}, weather.NewValidationError("location", "coordinates out of range")
	}
	return weather.Location{
		ID:   fmt.Sprintf("custom-%g-%g", lat, lon),
		Name: fmt.Sprintf("%.4f, %.4f", lat, lon),
		Lat:  lat,
		Lon:  lon,
		Type: weather.LocationSearch,
	}, nil
}
