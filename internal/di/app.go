package di

import (
	"context"
	"errors"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/analytics"
	"github.com/i474232898/snowhound/internal/config"
	"github.com/i474232898/snowhound/internal/locations"
	"github.com/i474232898/snowhound/internal/scheduler"
	"github.com/i474232898/snowhound/internal/weather"
)

// Server is the assembled backend.
type Server struct {
	Config    *config.Config
	Log       zerolog.Logger
	App       *fiber.App
	Scheduler *scheduler.Scheduler
}

func NewServer(cfg *config.Config, log zerolog.Logger, app *fiber.App, sched *scheduler.Scheduler) *Server {
	return &Server{Config: cfg, Log: log, App: app, Scheduler: sched}
}

// Run serves until ctx is canceled, then shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if s.Config.Scheduler.Enabled {
		if err := s.Scheduler.Start(); err != nil {
			return err
		}
		defer s.Scheduler.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		addr := net.JoinHostPort("", s.Config.Server.Port)
		s.Log.Info().Str("addr", addr).Msg("server listening")
		errCh <- s.App.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := s.App.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Client bundles what the CLI needs.
type Client struct {
	Config    *config.Config
	Log       zerolog.Logger
	Forecasts *weather.Service
	Locations *locations.Service
	Favorites *locations.Favorites
	Depth     *analytics.DepthTracker
}

func NewClient(cfg *config.Config, log zerolog.Logger, svc *weather.Service, locs *locations.Service, favs *locations.Favorites, depth *analytics.DepthTracker) *Client {
	return &Client{Config: cfg, Log: log, Forecasts: svc, Locations: locs, Favorites: favs, Depth: depth}
}
