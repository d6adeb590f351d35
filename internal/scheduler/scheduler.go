package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/weather"
)

const jobTimeout = 2 * time.Minute

// Fetcher performs live provider calls. *weather.Service satisfies it.
type Fetcher interface {
	Adapter(kind weather.ProviderKind) (weather.Adapter, bool)
	FetchLive(ctx context.Context, adapter weather.Adapter, loc weather.Location, model string) (weather.ForecastSeries, error)
}

// Cache is the subset of *cache.ForecastCache the jobs need.
type Cache interface {
	Get(ctx context.Context, lat, lon float64, model string) (weather.ForecastSeries, bool)
	Put(ctx context.Context, lat, lon float64, model string, series weather.ForecastSeries)
	Prune(ctx context.Context) (int64, error)
}

// Scheduler keeps the forecast cache warm for configured locations and
// prunes expired entries.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	fetcher       Fetcher
	cache         Cache
	locations     []weather.Location
	warmInterval  time.Duration
	pruneInterval time.Duration
	log           zerolog.Logger
}

// New creates a new Scheduler.
func New(locations []weather.Location, warmInterval, pruneInterval time.Duration, fetcher Fetcher, cache Cache, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		fetcher:       fetcher,
		cache:         cache,
		locations:     locations,
		warmInterval:  warmInterval,
		pruneInterval: pruneInterval,
		log:           log.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules both jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.pruneInterval <= 0 {
		s.pruneInterval = 15 * time.Minute
	}
	if _, err := s.scheduler.Every(s.pruneInterval).SingletonMode().Do(s.runPrune); err != nil {
		return err
	}

	if len(s.locations) == 0 {
		s.log.Info().Msg("no warm-up locations configured; only pruning is scheduled")
	} else {
		if s.warmInterval <= 0 {
			s.warmInterval = 30 * time.Minute
		}
		if _, err := s.scheduler.Every(s.warmInterval).SingletonMode().Do(s.runWarm); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runWarm() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.log.Info().Int("locations", len(s.locations)).Msg("running cache warm-up job")
	fetched := s.Warm(ctx)
	s.log.Info().Int("fetched", fetched).Msg("completed cache warm-up job")
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.cache.Prune(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("cache prune failed")
		return
	}
	s.log.Debug().Int64("removed", n).Msg("pruned expired cache entries")
}

// Warm fetches every catalog model for every location that is not already
// cached and stores the result. It returns the number of live fetches.
// Unconfigured providers are skipped; failures are logged.
func (s *Scheduler) Warm(ctx context.Context) int {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		fetched int
	)

	for _, loc := range s.locations {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := s.warmLocation(ctx, loc)
			mu.Lock()
			fetched += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	return fetched
}

func (s *Scheduler) warmLocation(ctx context.Context, loc weather.Location) int {
	fetched := 0
	for _, m := range weather.Models() {
		if _, ok := s.cache.Get(ctx, loc.Lat, loc.Lon, m.Name); ok {
			continue
		}

		kind := weather.RouteModel(m.ID)
		adapter, ok := s.fetcher.Adapter(kind)
		if !ok || !adapter.Configured() {
			continue
		}

		series, err := s.fetcher.FetchLive(ctx, adapter, loc, m.Name)
		if err != nil {
			s.log.Warn().Err(err).Str("location", loc.ID).Str("model", m.Name).Msg("warm-up fetch failed")
			continue
		}
		s.cache.Put(ctx, loc.Lat, loc.Lon, m.Name, series)
		fetched++
	}
	return fetched
}
