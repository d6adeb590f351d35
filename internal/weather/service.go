package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Options controls how the Service sources its data.
type Options struct {
	// ForceMock skips live calls and always returns synthetic series.
	ForceMock bool
	// CallTimeout bounds each upstream call. Zero means no extra bound.
	CallTimeout time.Duration
}

// Service is the aggregation facade: it resolves model ids to providers,
// fans out concurrently and always returns one series per requested model.
type Service struct {
	adapters map[ProviderKind]Adapter
	backend  Backend
	mock     *MockGenerator
	opts     Options
	log      zerolog.Logger
	metrics  Recorder
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithBackend routes batches through a remote backend first.
func WithBackend(b Backend) Option {
	return func(s *Service) { s.backend = b }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "forecast-service").Logger() }
}

// NewService creates a new Service over the given adapters.
func NewService(adapters []Adapter, mock *MockGenerator, opts Options, options ...Option) *Service {
	if mock == nil {
		mock = NewMockGenerator(nil)
	}
	s := &Service{
		adapters: make(map[ProviderKind]Adapter, len(adapters)),
		mock:     mock,
		opts:     opts,
		log:      zerolog.Nop(),
		metrics:  noopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, a := range adapters {
		s.adapters[a.Kind()] = a
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// GetForecast returns the series for a single model id.
func (s *Service) GetForecast(ctx context.Context, loc Location, modelID string) (ForecastSeries, error) {
	series, err := s.GetMultipleForecasts(ctx, loc, []string{modelID})
	if err != nil {
		return ForecastSeries{}, err
	}
	return series[0], nil
}

// GetMultipleForecasts returns one series per model id, in input order.
//
// The location and every id are validated first; one unknown id rejects the
// whole batch before any network call. When a backend is configured the
// batch goes through it, and any backend failure other than rate limiting
// falls back to direct adapter calls. Direct calls never fail: an adapter
// error is replaced with a mock series.
func (s *Service) GetMultipleForecasts(ctx context.Context, loc Location, modelIDs []string) ([]ForecastSeries, error) {
	if err := ValidateLocation(loc); err != nil {
		return nil, err
	}
	models, err := ResolveModels(modelIDs)
	if err != nil {
		return nil, err
	}

	if s.backend != nil && !s.opts.ForceMock {
		series, err := s.fetchViaBackend(ctx, loc, models)
		if err == nil {
			return series, nil
		}
		if rl, ok := AsRateLimited(err); ok {
			return nil, rl
		}
		s.log.Warn().Err(err).Int("models", len(models)).Msg("backend failed, falling back to direct provider calls")
	}

	return s.fetchDirect(ctx, loc, models), nil
}

// fetchViaBackend runs every call to completion so that a 429 from any of
// them is reported even when a sibling fails first for another reason.
func (s *Service) fetchViaBackend(ctx context.Context, loc Location, models []WeatherModel) ([]ForecastSeries, error) {
	out := make([]ForecastSeries, len(models))
	errs := make([]error, len(models))
	var g errgroup.Group

	for i, m := range models {
		g.Go(func() error {
			start := s.now()
			series, err := s.backend.FetchForecast(ctx, loc, m, RouteModel(m.ID))
			if err != nil {
				s.metrics.FetchCompleted(string(RouteModel(m.ID)), OutcomeFailed, s.now().Sub(start))
				errs[i] = err
				return nil
			}
			s.metrics.FetchCompleted(string(RouteModel(m.ID)), OutcomeBackend, s.now().Sub(start))
			out[i] = series
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if _, ok := AsRateLimited(err); ok {
			return nil, err
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBatchBackend, err)
	}
	return out, nil
}

func (s *Service) fetchDirect(ctx context.Context, loc Location, models []WeatherModel) []ForecastSeries {
	out := make([]ForecastSeries, len(models))
	var g errgroup.Group

	for i, m := range models {
		g.Go(func() error {
			out[i] = s.fetchOrMock(ctx, loc, m)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// fetchOrMock is the two-stage pipeline: try the routed adapter, substitute
// a mock series on any failure.
func (s *Service) fetchOrMock(ctx context.Context, loc Location, m WeatherModel) ForecastSeries {
	kind := RouteModel(m.ID)
	adapter, ok := s.adapters[kind]

	switch {
	case s.opts.ForceMock:
		return s.mockSeries(loc, m, kind)
	case !ok || !adapter.Configured():
		s.log.Debug().Str("provider", string(kind)).Str("model", m.Name).Msg("provider not configured, using mock data")
		return s.mockSeries(loc, m, kind)
	}

	series, err := s.FetchLive(ctx, adapter, loc, m.Name)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", string(kind)).Str("model", m.Name).Msg("provider fetch failed, using mock data")
		return s.mockSeries(loc, m, kind)
	}
	return series
}

// FetchLive calls adapter once, bounded by the configured call timeout, and
// returns a live series or the adapter's error. No mock substitution happens here.
func (s *Service) FetchLive(ctx context.Context, adapter Adapter, loc Location, model string) (ForecastSeries, error) {
	if s.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.CallTimeout)
		defer cancel()
	}

	start := s.now()
	records, err := adapter.Fetch(ctx, loc, model)
	elapsed := s.now().Sub(start)
	if err != nil {
		s.metrics.FetchCompleted(string(adapter.Kind()), OutcomeFailed, elapsed)
		return ForecastSeries{}, err
	}
	s.metrics.FetchCompleted(string(adapter.Kind()), OutcomeLive, elapsed)

	return ForecastSeries{
		Location:    loc,
		Model:       model,
		Provider:    adapter.Name(),
		Data:        NormalizeRecords(records, model),
		LastUpdated: s.now(),
	}, nil
}

// Adapter returns the adapter registered for kind.
func (s *Service) Adapter(kind ProviderKind) (Adapter, bool) {
	a, ok := s.adapters[kind]
	return a, ok
}

func (s *Service) mockSeries(loc Location, m WeatherModel, kind ProviderKind) ForecastSeries {
	s.metrics.FetchCompleted(string(kind), OutcomeMock, 0)
	return s.mock.Generate(loc, m.Name, kind)
}
