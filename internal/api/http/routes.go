package httpapi

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/weather"
	"github.com/i474232898/snowhound/internal/weather/providers"
)

var validate = validator.New()

// Forecaster performs single live provider calls. *weather.Service satisfies it.
type Forecaster interface {
	Adapter(kind weather.ProviderKind) (weather.Adapter, bool)
	FetchLive(ctx context.Context, adapter weather.Adapter, loc weather.Location, model string) (weather.ForecastSeries, error)
}

// SeriesCache is the response cache. *cache.ForecastCache satisfies it.
type SeriesCache interface {
	Get(ctx context.Context, lat, lon float64, model string) (weather.ForecastSeries, bool)
	Put(ctx context.Context, lat, lon float64, model string, series weather.ForecastSeries)
}

// PlaceSearcher returns raw geocoder matches. *providers.NominatimGeocoder satisfies it.
type PlaceSearcher interface {
	Search(ctx context.Context, query string) ([]providers.GeocodeResult, error)
}

// Handler serves the weather proxy endpoints.
type Handler struct {
	forecaster Forecaster
	cache      SeriesCache
	places     PlaceSearcher
	log        zerolog.Logger
}

func NewHandler(forecaster Forecaster, cache SeriesCache, places PlaceSearcher, log zerolog.Logger) *Handler {
	return &Handler{
		forecaster: forecaster,
		cache:      cache,
		places:     places,
		log:        log.With().Str("component", "weather-api").Logger(),
	}
}

// RegisterRoutes wires the weather handlers into the Fiber app behind limiter.
func RegisterRoutes(app *fiber.App, h *Handler, limiter fiber.Handler) {
	api := app.Group("/api/weather")
	if limiter != nil {
		api.Use(limiter)
	}

	api.Post("/forecast", h.forecast)
	api.Get("/geocode", h.geocode)
}

func (h *Handler) forecast(c *fiber.Ctx) error {
	var req providers.ForecastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields: location, model, provider")
	}

	lat, lon := *req.Location.Lat, *req.Location.Lon
	if !weather.ValidateCoordinates(lat, lon) {
		return fiber.NewError(fiber.StatusBadRequest, "coordinates out of range")
	}

	ctx := c.UserContext()
	if cached, ok := h.cache.Get(ctx, lat, lon, req.Model); ok {
		return c.JSON(providers.ForecastResponse{ForecastSeries: cached, Cached: true})
	}

	kind, ok := weather.ParseProviderKind(req.Provider)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid provider")
	}
	adapter, ok := h.forecaster.Adapter(kind)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid provider")
	}

	key := weather.CoordinateKey(lat, lon)
	loc := weather.Location{ID: key, Name: key, Lat: lat, Lon: lon, Type: weather.LocationSearch}

	series, err := h.forecaster.FetchLive(ctx, adapter, loc, req.Model)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", string(kind)).Str("model", req.Model).Msg("forecast fetch failed")
		return err
	}

	h.cache.Put(ctx, lat, lon, req.Model, series)
	return c.JSON(providers.ForecastResponse{ForecastSeries: series, Cached: false})
}

func (h *Handler) geocode(c *fiber.Ctx) error {
	q, err := weather.PrepareQuery(c.Query("q"))
	if err != nil {
		return err
	}

	results, err := h.places.Search(c.UserContext(), q)
	if err != nil {
		h.log.Warn().Err(err).Str("query", q).Msg("geocoding failed")
		return err
	}
	if results == nil {
		results = []providers.GeocodeResult{}
	}
	return c.JSON(results)
}

// routeLabel keeps metric cardinality bounded to registered paths.
func routeLabel(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	if strings.HasPrefix(c.Path(), "/api/") {
		return "/api/other"
	}
	return "other"
}
