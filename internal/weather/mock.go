package weather

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

const mockDays = 7

// MockGenerator produces synthetic 7-day series when live data is unavailable.
type MockGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// NewMockGenerator creates a generator drawing from src. A nil src seeds from the clock.
func NewMockGenerator(src rand.Source) *MockGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &MockGenerator{
		rnd: rand.New(src),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Generate returns a synthetic series for model at loc, labelled with the
// mock name of the provider that would have served it.
func (g *MockGenerator) Generate(loc Location, model string, kind ProviderKind) ForecastSeries {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	data := make([]SnowfallRecord, 0, mockDays)
	for i := 0; i < mockDays; i++ {
		data = append(data, SnowfallRecord{
			Timestamp:   now.AddDate(0, 0, i).Format(time.RFC3339),
			Snowfall:    round1(g.uniform(0, 6)),
			Temperature: round1(g.uniform(20, 40)),
			WindSpeed:   round1(g.uniform(5, 20)),
			Humidity:    math.Round(g.uniform(60, 90)),
			Model:       model,
		})
	}

	return ForecastSeries{
		Location:    loc,
		Model:       model,
		Provider:    kind.MockName(),
		Data:        data,
		LastUpdated: now,
		IsMock:      true,
	}
}

// uniform draws from [lo, hi). Caller holds g.mu.
func (g *MockGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
