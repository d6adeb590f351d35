package weather

import (
	"fmt"
	"time"
)

// LocationType classifies where a Location came from.
type LocationType string

const (
	LocationCurrent  LocationType = "current"
	LocationSearch   LocationType = "search"
	LocationFavorite LocationType = "favorite"
)

// Location represents a place for which forecasts are requested.
// Two locations are the same place when their IDs match.
type Location struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Lat       float64      `json:"lat"`
	Lon       float64      `json:"lon"`
	Elevation *float64     `json:"elevation,omitempty"`
	Type      LocationType `json:"type"`
}

// Equal reports whether l and other identify the same location.
func (l Location) Equal(other Location) bool {
	return l.ID == other.ID
}

// WithType returns a copy of l tagged with t.
func (l Location) WithType(t LocationType) Location {
	l.Type = t
	return l
}

// Key returns the coordinate key used for cache lookups: lat/lon rounded
// to four decimal places.
func (l Location) Key() string {
	return CoordinateKey(l.Lat, l.Lon)
}

// CoordinateKey formats a lat/lon pair rounded to four decimal places.
func CoordinateKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// SnowfallRecord is the unified forecast element every adapter produces.
// Units: snowfall in inches, temperature in °F, wind in mph, humidity in percent.
type SnowfallRecord struct {
	Timestamp   string  `json:"timestamp"`
	Snowfall    float64 `json:"snowfall"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
	Humidity    float64 `json:"humidity"`
	Model       string  `json:"model"`
}

// normalized clamps the record into its valid ranges.
func (r SnowfallRecord) normalized() SnowfallRecord {
	if r.Snowfall < 0 {
		r.Snowfall = 0
	}
	if r.WindSpeed < 0 {
		r.WindSpeed = 0
	}
	switch {
	case r.Humidity < 0:
		r.Humidity = 0
	case r.Humidity > 100:
		r.Humidity = 100
	}
	return r
}

// NormalizeRecords clamps every record and stamps it with the model name.
func NormalizeRecords(records []SnowfallRecord, model string) []SnowfallRecord {
	out := make([]SnowfallRecord, 0, len(records))
	for _, r := range records {
		r.Model = model
		out = append(out, r.normalized())
	}
	return out
}

// ForecastSeries is the ordered forecast of one model at one location.
// Records are either all live or all synthetic; IsMock tells which.
type ForecastSeries struct {
	Location    Location         `json:"location"`
	Model       string           `json:"model"`
	Provider    string           `json:"provider"`
	Data        []SnowfallRecord `json:"data"`
	LastUpdated time.Time        `json:"lastUpdated"`
	IsMock      bool             `json:"isMock"`
}

// MaxLength returns the length of the longest series in forecasts.
func MaxLength(forecasts []ForecastSeries) int {
	n := 0
	for _, f := range forecasts {
		if len(f.Data) > n {
			n = len(f.Data)
		}
	}
	return n
}
