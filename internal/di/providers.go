package di

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/analytics"
	httpapi "github.com/i474232898/snowhound/internal/api/http"
	"github.com/i474232898/snowhound/internal/cache"
	"github.com/i474232898/snowhound/internal/config"
	"github.com/i474232898/snowhound/internal/locations"
	"github.com/i474232898/snowhound/internal/logger"
	"github.com/i474232898/snowhound/internal/metrics"
	"github.com/i474232898/snowhound/internal/scheduler"
	"github.com/i474232898/snowhound/internal/store"
	"github.com/i474232898/snowhound/internal/weather"
	"github.com/i474232898/snowhound/internal/weather/providers"
)

// ProvideLogger builds the root logger from config.
func ProvideLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	log, closer, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return log, func() { _ = closer.Close() }, nil
}

// ProvideRegistry creates the Prometheus registry shared by collectors and /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) metrics.Recorder {
	return metrics.New(cfg.Metrics.Enabled, reg)
}

// ProvideHTTPClient creates the shared client for outbound calls.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.APITimeout}
}

// ProvideAdapters creates the three forecast adapters, each rate limited.
func ProvideAdapters(cfg *config.Config, client *http.Client) []weather.Adapter {
	raw := []weather.Adapter{
		providers.NewOpenWeatherProvider(client, cfg.OpenWeatherAPIKey),
		providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey),
		providers.NewNWSProvider(client),
	}
	out := make([]weather.Adapter, 0, len(raw))
	for _, a := range raw {
		out = append(out, providers.NewRateLimitedAdapter(a, cfg.ProviderRPS, cfg.ProviderBurst))
	}
	return out
}

// ProvideServerService creates the service used by the backend. The backend
// only calls FetchLive, so mock and backend options do not apply.
func ProvideServerService(cfg *config.Config, adapters []weather.Adapter, rec metrics.Recorder, log zerolog.Logger) *weather.Service {
	return weather.NewService(adapters, nil, weather.Options{CallTimeout: cfg.APITimeout},
		weather.WithRecorder(rec),
		weather.WithLogger(log),
	)
}

// ProvideClientService creates the aggregation facade, routed through the
// backend when configured.
func ProvideClientService(cfg *config.Config, adapters []weather.Adapter, client *http.Client, log zerolog.Logger) *weather.Service {
	opts := []weather.Option{weather.WithLogger(log)}
	if cfg.UseBackend {
		opts = append(opts, weather.WithBackend(providers.NewBackendClient(client, cfg.APIBaseURL)))
	}
	return weather.NewService(adapters, nil, weather.Options{
		ForceMock:   cfg.EnableMockData,
		CallTimeout: cfg.APITimeout,
	}, opts...)
}

// ProvideForecastCache opens the configured cache driver.
func ProvideForecastCache(cfg *config.Config, rec metrics.Recorder, log zerolog.Logger) (*cache.ForecastCache, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := cache.Open(ctx, cache.Options{
		Driver:        cfg.Cache.Driver,
		MemorySizeMB:  cfg.Cache.MemorySizeMB,
		SQLitePath:    cfg.Cache.SQLitePath,
		RedisAddr:     cfg.Cache.RedisAddr,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}
	codec, err := cache.NewCodec()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	fc := cache.NewForecastCache(st, codec, cfg.Cache.TTL, rec, log)
	return fc, func() {
		if err := fc.Close(); err != nil {
			log.Warn().Err(err).Msg("closing cache")
		}
	}, nil
}

// ProvideGeocoder creates the Nominatim geocoder.
func ProvideGeocoder(client *http.Client) *providers.NominatimGeocoder {
	return providers.NewNominatimGeocoder(client)
}

// ProvideHandler creates the weather API handler.
func ProvideHandler(svc *weather.Service, fc *cache.ForecastCache, geocoder *providers.NominatimGeocoder, log zerolog.Logger) *httpapi.Handler {
	return httpapi.NewHandler(svc, fc, geocoder, log)
}

// ProvideFiber creates the Fiber app with all routes registered.
func ProvideFiber(cfg *config.Config, rec metrics.Recorder, reg *prometheus.Registry, h *httpapi.Handler, log zerolog.Logger) *fiber.App {
	var gatherer prometheus.Gatherer
	if cfg.Metrics.Enabled {
		gatherer = reg
	}
	app := httpapi.NewApp(httpapi.AppConfig{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		RequestLog:   true,
	}, rec, gatherer, log)

	limiter := httpapi.NewIPLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	httpapi.RegisterRoutes(app, h, limiter.Middleware())
	return app
}

// ProvideScheduler creates the cache jobs for the configured preset locations.
func ProvideScheduler(cfg *config.Config, svc *weather.Service, fc *cache.ForecastCache, log zerolog.Logger) (*scheduler.Scheduler, error) {
	locs := make([]weather.Location, 0, len(cfg.Scheduler.WarmupLocations))
	for _, id := range cfg.Scheduler.WarmupLocations {
		loc, ok := locations.Preset(id)
		if !ok {
			return nil, fmt.Errorf("unknown warm-up location %q", id)
		}
		locs = append(locs, loc)
	}
	return scheduler.New(locs, cfg.Scheduler.WarmupInterval, cfg.Scheduler.PruneInterval, svc, fc, log), nil
}

// ProvideKV opens the file-backed key-value store under the store dir.
func ProvideKV(cfg *config.Config) (store.KV, error) {
	return store.NewFileStore(filepath.Clean(cfg.StoreDir))
}

// ProvideLocations creates the location search service with the geocoder
// chosen by mode: the backend in backend mode, Nominatim otherwise.
func ProvideLocations(cfg *config.Config, client *http.Client, geocoder *providers.NominatimGeocoder, log zerolog.Logger) *locations.Service {
	var g weather.Geocoder = geocoder
	if cfg.UseBackend {
		g = providers.NewBackendClient(client, cfg.APIBaseURL)
	}
	return locations.NewService(g, log)
}

// ProvideFavorites creates the favorites store.
func ProvideFavorites(kv store.KV) *locations.Favorites {
	return locations.NewFavorites(kv)
}

// ProvideDepthTracker creates the snow depth tracker.
func ProvideDepthTracker(kv store.KV, log zerolog.Logger) *analytics.DepthTracker {
	return analytics.NewDepthTracker(kv, log)
}
