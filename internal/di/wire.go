//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/i474232898/snowhound/internal/config"
)

// InitializeServer wires up the backend: adapters, cache, HTTP app and jobs.
func InitializeServer(cfg *config.Config) (*Server, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideAdapters,
		ProvideServerService,
		ProvideForecastCache,
		ProvideGeocoder,
		ProvideHandler,
		ProvideFiber,
		ProvideScheduler,
		NewServer,
	)
	return nil, nil, nil
}

// InitializeClient wires up the aggregation facade and local stores for the CLI.
func InitializeClient(cfg *config.Config) (*Client, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideHTTPClient,
		ProvideAdapters,
		ProvideClientService,
		ProvideGeocoder,
		ProvideLocations,
		ProvideKV,
		ProvideFavorites,
		ProvideDepthTracker,
		NewClient,
	)
	return nil, nil, nil
}
