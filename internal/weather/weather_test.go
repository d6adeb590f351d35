package weather

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		lat, lon float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{39.6403, -106.3742, true},
		{90.0001, 0, false},
		{0, -180.5, false},
		{math.NaN(), 0, false},
		{0, math.NaN(), false},
		{math.Inf(1), 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v,%v", tt.lat, tt.lon), func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateCoordinates(tt.lat, tt.lon))
		})
	}

	err := ValidateLocation(Location{Lat: 100})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestPrepareQuery(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		invalid bool
	}{
		{"  Vail  ", "Vail", false},
		{"<script>Aspen</script>", "scriptAspen/script", false},
		{"ab", "ab", false},
		{"a", "", true},
		{"   ", "", true},
		{"<a>", "a", true},
		{strings.Repeat("x", 150), strings.Repeat("x", 100), false},
	}
	for _, tt := range tests {
		got, err := PrepareQuery(tt.in)
		if tt.invalid {
			var ve *ValidationError
			require.ErrorAs(t, err, &ve, "input %q", tt.in)
			assert.Equal(t, "q", ve.Field)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSanitizeQueryCapsRunesBeforeStripping(t *testing.T) {
	q := strings.Repeat("é", 99) + "<>" + "tail"
	got := SanitizeQuery(q)
	assert.Equal(t, strings.Repeat("é", 99), got)
}

func TestRouteModel(t *testing.T) {
	want := map[string]ProviderKind{
		"gfs":   ProviderNWS,
		"nam":   ProviderNWS,
		"hrrr":  ProviderNWS,
		"ecmwf": ProviderOpenWeatherMap,
		"ukmet": ProviderOpenWeatherMap,
		"gem":   ProviderOpenWeatherMap,
		"jma":   ProviderOpenWeatherMap,
		"other": ProviderWeatherAPI,
	}
	for id, kind := range want {
		assert.Equal(t, kind, RouteModel(id), id)
	}
	assert.Len(t, Models(), 7)
	assert.Equal(t, []string{"gfs", "ecmwf", "nam", "hrrr", "ukmet", "gem", "jma"}, ModelIDs())
}

func TestResolveModelsRejectsWholeBatch(t *testing.T) {
	models, err := ResolveModels([]string{"gfs", "ecmwf"})
	require.NoError(t, err)
	assert.Equal(t, "GFS", models[0].Name)
	assert.Equal(t, "ECMWF", models[1].Name)

	for _, ids := range [][]string{nil, {"gfs", "unknown"}, {""}, {"gfs", " "}} {
		_, err := ResolveModels(ids)
		assert.True(t, IsValidation(err), "%v", ids)
	}
}

func TestParseProviderKind(t *testing.T) {
	for in, want := range map[string]ProviderKind{
		"openweathermap":           ProviderOpenWeatherMap,
		"WeatherAPI":               ProviderWeatherAPI,
		"nws":                      ProviderNWS,
		"National Weather Service": ProviderNWS,
	} {
		got, ok := ParseProviderKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseProviderKind("accuweather")
	assert.False(t, ok)
}

func TestNormalizeRecordsClamps(t *testing.T) {
	got := NormalizeRecords([]SnowfallRecord{
		{Timestamp: "t0", Snowfall: -2, WindSpeed: -1, Humidity: 140, Temperature: -5},
		{Timestamp: "t1", Snowfall: 1.5, WindSpeed: 4, Humidity: -3, Temperature: 20},
	}, "GFS")

	assert.Equal(t, []SnowfallRecord{
		{Timestamp: "t0", Snowfall: 0, WindSpeed: 0, Humidity: 100, Temperature: -5, Model: "GFS"},
		{Timestamp: "t1", Snowfall: 1.5, WindSpeed: 4, Humidity: 0, Temperature: 20, Model: "GFS"},
	}, got)
}

func TestMockGeneratorShape(t *testing.T) {
	now := time.Date(2026, 1, 10, 6, 0, 0, 0, time.UTC)
	g := NewMockGenerator(rand.NewSource(42))
	g.now = func() time.Time { return now }

	loc := Location{ID: "vail", Name: "Vail, CO", Lat: 39.6403, Lon: -106.3742}
	s := g.Generate(loc, "ECMWF", ProviderOpenWeatherMap)

	assert.True(t, s.IsMock)
	assert.Equal(t, "OpenWeatherMap (Mock)", s.Provider)
	assert.Equal(t, "ECMWF", s.Model)
	assert.Equal(t, loc, s.Location)
	require.Len(t, s.Data, 7)

	for i, r := range s.Data {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		require.NoError(t, err)
		assert.True(t, now.AddDate(0, 0, i).Equal(ts), r.Timestamp)

		assert.GreaterOrEqual(t, r.Snowfall, 0.0)
		assert.LessOrEqual(t, r.Snowfall, 6.0)
		assert.GreaterOrEqual(t, r.Temperature, 20.0)
		assert.LessOrEqual(t, r.Temperature, 40.0)
		assert.GreaterOrEqual(t, r.WindSpeed, 5.0)
		assert.LessOrEqual(t, r.WindSpeed, 20.0)
		assert.GreaterOrEqual(t, r.Humidity, 60.0)
		assert.LessOrEqual(t, r.Humidity, 90.0)
		assert.Equal(t, math.Round(r.Humidity), r.Humidity)
		assert.InDelta(t, math.Round(r.Snowfall*10)/10, r.Snowfall, 1e-9)
		assert.Equal(t, "ECMWF", r.Model)
	}

	assert.Equal(t, "NWS (Mock)", g.Generate(loc, "GFS", ProviderNWS).Provider)
	assert.Equal(t, "WeatherAPI (Mock)", g.Generate(loc, "X", ProviderWeatherAPI).Provider)
}

func TestMockGeneratorIsDeterministicForASeed(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	a := NewMockGenerator(rand.NewSource(7))
	b := NewMockGenerator(rand.NewSource(7))
	a.now = func() time.Time { return now }
	b.now = a.now

	loc := Location{ID: "x"}
	assert.Equal(t, a.Generate(loc, "GFS", ProviderNWS), b.Generate(loc, "GFS", ProviderNWS))
}

func TestAggregateDay(t *testing.T) {
	forecasts := []ForecastSeries{
		{Model: "GFS", Data: []SnowfallRecord{{Timestamp: "d0", Snowfall: 2, Temperature: 20}}},
		{Model: "ECMWF", Data: []SnowfallRecord{
			{Timestamp: "e0", Snowfall: 4, Temperature: 30},
			{Timestamp: "e1", Snowfall: 1, Temperature: 10},
		}},
	}

	agg, ok := AggregateDay(forecasts, 0)
	require.True(t, ok)
	assert.Equal(t, "d0", agg.Date)
	assert.Equal(t, 3.0, agg.Snowfall)
	assert.Equal(t, 25.0, agg.Temperature)
	assert.Equal(t, []float64{2, 4}, agg.Snowfalls())

	agg, ok = AggregateDay(forecasts, 1)
	require.True(t, ok)
	assert.Equal(t, "e1", agg.Date)
	assert.Equal(t, 1.0, agg.Snowfall)

	_, ok = AggregateDay(forecasts, 2)
	assert.False(t, ok)
	_, ok = AggregateDay(forecasts, -1)
	assert.False(t, ok)
	assert.Equal(t, 2, MaxLength(forecasts))
}

func TestErrorHelpers(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &RateLimitedError{Provider: "nws", RetryAfter: time.Minute})
	rl, ok := AsRateLimited(err)
	require.True(t, ok)
	assert.Equal(t, "nws", rl.Provider)
	assert.Contains(t, rl.Error(), "retry after 1m0s")

	_, ok = AsRateLimited(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, IsValidation(ErrUpstreamUnavailable))
	assert.Equal(t, "validation failed on q: too short", NewValidationError("q", "too short").Error())
}

func TestLocationKeyAndEquality(t *testing.T) {
	a := Location{ID: "vail", Lat: 39.64031234, Lon: -106.37419}
	b := Location{ID: "vail", Name: "Different", Type: LocationFavorite}

	assert.Equal(t, "39.6403,-106.3742", a.Key())
	assert.True(t, a.Equal(b))
	assert.Equal(t, LocationFavorite, a.WithType(LocationFavorite).Type)
	assert.Equal(t, LocationType(""), a.Type)
}
