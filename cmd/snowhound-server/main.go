package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/i474232898/snowhound/internal/config"
	"github.com/i474232898/snowhound/internal/di"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML config file")
	pflag.Parse()

	bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	server, cleanup, err := di.InitializeServer(cfg)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to initialize server")
	}
	defer cleanup()

	log := server.Log
	if cfg.OpenWeatherAPIKey == "" && cfg.WeatherAPIKey == "" {
		log.Warn().Msg("no weather API keys configured; only NWS models will return live data")
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		cleanup()
		os.Exit(1)
	}
	log.Info().Msg("server shut down")
}
