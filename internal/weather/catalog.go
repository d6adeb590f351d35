package weather

import "strings"

// ProviderKind names an upstream weather data source.
type ProviderKind string

const (
	ProviderNWS            ProviderKind = "nws"
	ProviderOpenWeatherMap ProviderKind = "openweathermap"
	ProviderWeatherAPI     ProviderKind = "weatherapi"
)

// ParseProviderKind maps a provider name as sent by clients to a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openweathermap":
		return ProviderOpenWeatherMap, true
	case "weatherapi":
		return ProviderWeatherAPI, true
	case "nws", "national weather service":
		return ProviderNWS, true
	default:
		return "", false
	}
}

// MockName is the provider label used on synthetic series.
func (k ProviderKind) MockName() string {
	switch k {
	case ProviderOpenWeatherMap:
		return "OpenWeatherMap (Mock)"
	case ProviderNWS:
		return "NWS (Mock)"
	default:
		return "WeatherAPI (Mock)"
	}
}

// WeatherModel is a catalog entry: a named forecast variant served by one provider.
type WeatherModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}

var catalog = []WeatherModel{
	{ID: "gfs", Name: "GFS", Provider: "NOAA", Description: "Global Forecast System - Primary US weather model"},
	{ID: "ecmwf", Name: "ECMWF", Provider: "European Centre", Description: "European Centre for Medium-Range Weather Forecasts"},
	{ID: "nam", Name: "NAM", Provider: "NOAA", Description: "North American Mesoscale Forecast System"},
	{ID: "hrrr", Name: "HRRR", Provider: "NOAA", Description: "High-Resolution Rapid Refresh - Short-term forecasts"},
	{ID: "ukmet", Name: "UKMET", Provider: "UK Met Office", Description: "UK Met Office Global Model"},
	{ID: "gem", Name: "GEM", Provider: "Environment Canada", Description: "Global Environmental Multiscale Model"},
	{ID: "jma", Name: "JMA", Provider: "Japan Meteorological Agency", Description: "JMA Global Spectral Model"},
}

// Models returns a copy of the model catalog.
func Models() []WeatherModel {
	out := make([]WeatherModel, len(catalog))
	copy(out, catalog)
	return out
}

// LookupModel finds a catalog entry by id.
func LookupModel(id string) (WeatherModel, bool) {
	for _, m := range catalog {
		if m.ID == id {
			return m, true
		}
	}
	return WeatherModel{}, false
}

// ModelIDs returns every catalog id in catalog order.
func ModelIDs() []string {
	ids := make([]string, 0, len(catalog))
	for _, m := range catalog {
		ids = append(ids, m.ID)
	}
	return ids
}

// RouteModel returns the provider that serves a model id. The table is fixed;
// ids outside the two explicit groups go to WeatherAPI.
func RouteModel(id string) ProviderKind {
	switch id {
	case "gfs", "nam", "hrrr":
		return ProviderNWS
	case "ecmwf", "ukmet", "gem", "jma":
		return ProviderOpenWeatherMap
	default:
		return ProviderWeatherAPI
	}
}

// ResolveModels validates a batch of model ids against the catalog.
// The whole batch is rejected if any id is empty or unknown.
func ResolveModels(ids []string) ([]WeatherModel, error) {
	if len(ids) == 0 {
		return nil, NewValidationError("models", "at least one model id is required")
	}
	out := make([]WeatherModel, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, NewValidationError("models", "model id must not be empty")
		}
		m, ok := LookupModel(id)
		if !ok {
			return nil, NewValidationError("models", "model "+id+" not found")
		}
		out = append(out, m)
	}
	return out, nil
}
