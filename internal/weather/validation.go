package weather

import (
	"math"
	"strings"
)

const (
	maxQueryLength = 100
	minQueryLength = 2
)

// ValidateCoordinates reports whether lat/lon are finite and in range.
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateLocation returns a ValidationError for out-of-range coordinates.
func ValidateLocation(loc Location) error {
	if !ValidateCoordinates(loc.Lat, loc.Lon) {
		return NewValidationError("location", "coordinates out of range")
	}
	return nil
}

// SanitizeQuery trims the query, caps it at 100 characters and strips angle brackets.
func SanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if r := []rune(q); len(r) > maxQueryLength {
		q = string(r[:maxQueryLength])
	}
	return strings.NewReplacer("<", "", ">", "").Replace(q)
}

// PrepareQuery sanitizes q and rejects it when fewer than two characters remain.
func PrepareQuery(q string) (string, error) {
	s := SanitizeQuery(q)
	if len([]rune(s)) < minQueryLength {
		return "", NewValidationError("q", "query must be at least 2 characters")
	}
	return s, nil
}
