package httpapi

import (
	"errors"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/metrics"
	"github.com/i474232898/snowhound/internal/weather"
)

const serviceName = "snowhound"

// AppConfig holds server-level settings for NewApp.
type AppConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// RequestLog enables the fiber request logger.
	RequestLog bool
}

// NewApp builds the Fiber app with middleware, health and metrics endpoints.
// Weather routes are added separately with RegisterRoutes.
func NewApp(cfg AppConfig, rec metrics.Recorder, gatherer prometheus.Gatherer, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          ErrorHandler(log),
	})

	if cfg.RequestLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(metricsMiddleware(rec))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return app
}

func metricsMiddleware(rec metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		route := routeLabel(c)
		rec.IncRequestsTotal(route, status)
		rec.ObserveRequestDuration(route, time.Since(start))
		return err
	}
}

// ErrorHandler maps errors to JSON responses.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := statusFor(err)
		body := fiber.Map{
			"error":   true,
			"message": err.Error(),
		}

		if rl, ok := weather.AsRateLimited(err); ok {
			secs := retryAfterSeconds(rl.RetryAfter)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			body["message"] = "too many requests"
			body["retryAfter"] = secs
		}
		if code >= fiber.StatusInternalServerError {
			// upstream error text can carry provider URLs; keep it in the log only
			body["message"] = publicMessage(code)
			log.Error().Err(err).Str("path", c.Path()).Int("status", code).Msg("request failed")
		}

		return c.Status(code).JSON(body)
	}
}

func publicMessage(code int) string {
	if code == fiber.StatusBadGateway {
		return "upstream unavailable"
	}
	return utils.StatusMessage(code)
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case weather.IsValidation(err):
		return fiber.StatusBadRequest
	case isRateLimited(err):
		return fiber.StatusTooManyRequests
	case errors.Is(err, weather.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func isRateLimited(err error) bool {
	_, ok := weather.AsRateLimited(err)
	return ok
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 60
	}
	return int(math.Ceil(d.Seconds()))
}
