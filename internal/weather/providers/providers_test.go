package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/i474232898/snowhound/internal/weather"
)

var vail = weather.Location{ID: "vail", Name: "Vail, CO", Lat: 39.6403, Lon: -106.3742}

func TestOpenWeatherParsesThreeHourEntries(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"list":[
			{"dt_txt":"2026-01-10 00:00:00","main":{"temp":24.5,"humidity":80},"wind":{"speed":12},"snow":{"3h":0.4}},
			{"dt_txt":"2026-01-10 03:00:00","main":{"temp":22,"humidity":85},"wind":{"speed":9}}
		]}`)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "k3y").WithBaseURL(srv.URL)
	assert.True(t, p.Configured())
	assert.Equal(t, weather.ProviderOpenWeatherMap, p.Kind())

	got, err := p.Fetch(context.Background(), vail, "ECMWF")
	require.NoError(t, err)

	assert.Equal(t, []weather.SnowfallRecord{
		{Timestamp: "2026-01-10 00:00:00", Snowfall: 0.4, Temperature: 24.5, WindSpeed: 12, Humidity: 80, Model: "ECMWF"},
		{Timestamp: "2026-01-10 03:00:00", Snowfall: 0, Temperature: 22, WindSpeed: 9, Humidity: 85, Model: "ECMWF"},
	}, got)
	assert.Contains(t, gotQuery, "appid=k3y")
	assert.Contains(t, gotQuery, "units=imperial")
	assert.Contains(t, gotQuery, "lat=39.6403")
}

func TestKeyedProvidersRequireKey(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Inc()
	}))
	defer srv.Close()

	owm := NewOpenWeatherProvider(srv.Client(), "").WithBaseURL(srv.URL)
	wapi := NewWeatherAPIProvider(srv.Client(), "").WithBaseURL(srv.URL)
	assert.False(t, owm.Configured())
	assert.False(t, wapi.Configured())

	_, err := owm.Fetch(context.Background(), vail, "ECMWF")
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	_, err = wapi.Fetch(context.Background(), vail, "X")
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	assert.Equal(t, int32(0), hits.Load())
}

func TestWeatherAPIConvertsCentimeters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		_, _ = io.WriteString(w, `{"forecast":{"forecastday":[
			{"date":"2026-01-10","day":{"totalsnow_cm":2.54,"avgtemp_f":27,"maxwind_mph":14,"avghumidity":70}},
			{"date":"2026-01-11","day":{"totalsnow_cm":0,"avgtemp_f":31,"maxwind_mph":6,"avghumidity":55}}
		]}}`)
	}))
	defer srv.Close()

	got, err := NewWeatherAPIProvider(srv.Client(), "k").WithBaseURL(srv.URL).Fetch(context.Background(), vail, "GFS")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.InDelta(t, 1.0, got[0].Snowfall, 1e-9)
	assert.Equal(t, "2026-01-10", got[0].Timestamp)
	assert.Equal(t, 27.0, got[0].Temperature)
	assert.Equal(t, 14.0, got[0].WindSpeed)
	assert.Equal(t, 70.0, got[0].Humidity)
	assert.Equal(t, 0.0, got[1].Snowfall)
	assert.InDelta(t, 3.937, CentimetersToInches(10), 1e-3)
}

func nwsServer(t *testing.T, periods string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "/points/39.6403,-106.3742", r.URL.Path)
		_, _ = io.WriteString(w, `{"properties":{"forecast":"`+srv.URL+`/gridpoints/BOU/10,20/forecast"}}`)
	})
	mux.HandleFunc("/gridpoints/BOU/10,20/forecast", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"properties":{"periods":`+periods+`}}`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNWSFollowsPointsToForecast(t *testing.T) {
	srv := nwsServer(t, `[
		{"startTime":"2026-01-10T06:00:00-07:00","isDaytime":true,"temperature":-5,"temperatureUnit":"C","windSpeed":"5 to 15 mph","snowfallAmount":{"value":2.5}},
		{"startTime":"2026-01-10T18:00:00-07:00","isDaytime":false,"temperature":10,"temperatureUnit":"F","windSpeed":"20 mph"},
		{"startTime":"2026-01-11T06:00:00-07:00","isDaytime":true,"temperature":28,"temperatureUnit":"F","windSpeed":"10 mph","snowfallAmount":{"value":null}}
	]`)

	p := NewNWSProvider(srv.Client()).WithBaseURL(srv.URL + "/")
	got, err := p.Fetch(context.Background(), vail, "GFS")
	require.NoError(t, err)

	assert.Equal(t, []weather.SnowfallRecord{
		{Timestamp: "2026-01-10T06:00:00-07:00", Snowfall: 2.5, Temperature: 23, WindSpeed: 5, Model: "GFS"},
		{Timestamp: "2026-01-11T06:00:00-07:00", Snowfall: 0, Temperature: 28, WindSpeed: 10, Model: "GFS"},
	}, got)
}

func TestNWSKeepsSevenDaytimePeriods(t *testing.T) {
	var periods []map[string]any
	for i := 0; i < 20; i++ {
		periods = append(periods, map[string]any{
			"startTime":       time.Date(2026, 1, 10, 6+12*i, 0, 0, 0, time.UTC).Format(time.RFC3339),
			"isDaytime":       i%2 == 0,
			"temperature":     30,
			"temperatureUnit": "F",
			"windSpeed":       "5 mph",
		})
	}
	raw, err := json.Marshal(periods)
	require.NoError(t, err)

	srv := nwsServer(t, string(raw))
	got, err := NewNWSProvider(srv.Client()).WithBaseURL(srv.URL).Fetch(context.Background(), vail, "NAM")
	require.NoError(t, err)
	assert.Len(t, got, 7)
}

func TestNWSWithoutForecastURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"properties":{}}`)
	}))
	defer srv.Close()

	_, err := NewNWSProvider(srv.Client()).WithBaseURL(srv.URL).Fetch(context.Background(), vail, "GFS")
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errNoForecastURL)
}

func TestParseWindSpeed(t *testing.T) {
	for in, want := range map[string]float64{
		"10 mph":      10,
		"5 to 15 mph": 5,
		"25mph":       25,
		"":            0,
		"calm":        0,
	} {
		assert.Equal(t, want, ParseWindSpeed(in), in)
	}
}

func TestTooManyRequestsIsRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Inc()
		w.Header().Set("Retry-After", "45")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenWeatherProvider(srv.Client(), "k").WithBaseURL(srv.URL).Fetch(context.Background(), vail, "ECMWF")

	rl, ok := weather.AsRateLimited(err)
	require.True(t, ok, "%v", err)
	assert.Equal(t, "openweathermap", rl.Provider)
	assert.Equal(t, 45*time.Second, rl.RetryAfter)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Inc()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewWeatherAPIProvider(srv.Client(), "k").WithBaseURL(srv.URL).Fetch(context.Background(), vail, "X")
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, errUnexpected)
	assert.Equal(t, int32(1), hits.Load())
}

func TestServerErrorIsRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Inc() == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"list":[]}`)
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "k").WithBaseURL(srv.URL)
	p.httpCfg.Backoff.InitialInterval = time.Millisecond

	got, err := p.Fetch(context.Background(), vail, "ECMWF")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(2), hits.Load())
}

func TestTransportErrorsRedactAPIKeys(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	owm := NewOpenWeatherProvider(closed.Client(), "SUPERSECRETKEY").WithBaseURL(closed.URL)
	owm.httpCfg.Backoff.InitialInterval = time.Millisecond
	_, err := owm.Fetch(context.Background(), vail, "ECMWF")
	require.Error(t, err)
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY")
	assert.Contains(t, err.Error(), "appid=REDACTED")

	wapi := NewWeatherAPIProvider(closed.Client(), "OTHERSECRET").WithBaseURL(closed.URL)
	wapi.httpCfg.Backoff.InitialInterval = time.Millisecond
	_, err = wapi.Fetch(context.Background(), vail, "HRRR")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "OTHERSECRET")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/f?appid=REDACTED&lat=1",
		redactURL("https://api.example.com/f?lat=1&appid=abc"))
	assert.Equal(t, "https://api.example.com/f?lat=1", redactURL("https://api.example.com/f?lat=1"))
	assert.Equal(t, "https://api.example.com/f", redactURL("https://user:pw@api.example.com/f"))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseRetryAfter("30"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))

	future := time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	assert.Greater(t, d, 100*time.Second)
	assert.LessOrEqual(t, d, 2*time.Minute)
}

func TestNominatimSearchAndGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "vail", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `[
			{"place_id":101,"display_name":"Vail, Eagle County, Colorado, 81657, United States","lat":"39.6403","lon":"-106.3742"},
			{"place_id":102,"display_name":"Nowhere","lat":"95","lon":"0"},
			{"place_id":0,"display_name":"Vail, AZ","lat":"32.05","lon":"-110.71"}
		]`)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.Client()).WithBaseURL(srv.URL)

	raw, err := g.Search(context.Background(), "vail")
	require.NoError(t, err)
	assert.Len(t, raw, 3)

	locs, err := g.Geocode(context.Background(), "  <vail> ")
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, weather.Location{
		ID: "geocoded-101", Name: "Vail, 81657, United States", Lat: 39.6403, Lon: -106.3742, Type: weather.LocationSearch,
	}, locs[0])
	assert.Equal(t, "geocoded-2", locs[1].ID)
	assert.Equal(t, "Vail, AZ", locs[1].Name)
}

func TestNominatimGeocodeRejectsShortQuery(t *testing.T) {
	_, err := NewNominatimGeocoder(http.DefaultClient).Geocode(context.Background(), "x")
	assert.True(t, weather.IsValidation(err))
}

func TestShortName(t *testing.T) {
	assert.Equal(t, "Alta, Salt Lake County, Utah", ShortName("Alta, Salt Lake County, Utah"))
	assert.Equal(t, "Alta, Utah, United States", ShortName("Alta, Salt Lake County, Utah, United States"))
}

func TestBackendClientForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/weather/forecast", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var req ForecastRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "GFS", req.Model)
		assert.Equal(t, "nws", req.Provider)
		require.NotNil(t, req.Location.Lat)
		assert.Equal(t, 39.6403, *req.Location.Lat)

		_, _ = io.WriteString(w, `{"model":"GFS","provider":"National Weather Service","cached":true,
			"data":[{"timestamp":"2026-01-10","snowfall":-1,"temperature":20,"windSpeed":4,"humidity":130}]}`)
	}))
	defer srv.Close()

	c := NewBackendClient(srv.Client(), srv.URL+"/")
	model, ok := weather.LookupModel("gfs")
	require.True(t, ok)

	s, err := c.FetchForecast(context.Background(), vail, model, weather.ProviderNWS)
	require.NoError(t, err)

	assert.Equal(t, vail, s.Location)
	assert.Equal(t, "GFS", s.Model)
	assert.False(t, s.IsMock)
	assert.False(t, s.LastUpdated.IsZero())
	require.Len(t, s.Data, 1)
	assert.Equal(t, 0.0, s.Data[0].Snowfall)
	assert.Equal(t, 100.0, s.Data[0].Humidity)
	assert.Equal(t, "GFS", s.Data[0].Model)
}

func TestBackendClientRateLimitAndGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/forecast") {
			w.Header().Set("Retry-After", "90")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		assert.Equal(t, "alta", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `[{"place_id":7,"display_name":"Alta","lat":"40.5884","lon":"-111.6386"}]`)
	}))
	defer srv.Close()

	c := NewBackendClient(srv.Client(), srv.URL)
	model, _ := weather.LookupModel("ecmwf")

	_, err := c.FetchForecast(context.Background(), vail, model, weather.ProviderOpenWeatherMap)
	rl, ok := weather.AsRateLimited(err)
	require.True(t, ok)
	assert.Equal(t, "backend", rl.Provider)
	assert.Equal(t, 90*time.Second, rl.RetryAfter)

	locs, err := c.Geocode(context.Background(), "alta")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "geocoded-7", locs[0].ID)
}

type countingAdapter struct {
	calls atomic.Int32
}

func (a *countingAdapter) Kind() weather.ProviderKind { return weather.ProviderNWS }
func (a *countingAdapter) Name() string               { return "counting" }
func (a *countingAdapter) Configured() bool           { return true }

func (a *countingAdapter) Fetch(context.Context, weather.Location, string) ([]weather.SnowfallRecord, error) {
	a.calls.Inc()
	return nil, nil
}

func TestRateLimitedAdapterWaits(t *testing.T) {
	inner := &countingAdapter{}
	a := NewRateLimitedAdapter(inner, 0.001, 1)
	assert.Equal(t, "counting", a.Name())

	_, err := a.Fetch(context.Background(), vail, "GFS")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.Fetch(ctx, vail, "GFS")
	assert.ErrorIs(t, err, weather.ErrUpstreamUnavailable)
	assert.Equal(t, int32(1), inner.calls.Load())
}
