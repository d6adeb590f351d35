package analytics

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/i474232898/snowhound/internal/store"
	"github.com/i474232898/snowhound/internal/weather"
)

const (
	// DepthKeyPrefix prefixes per-location history keys.
	DepthKeyPrefix = "snowhound-snow-depth"
	// MaxDepthHistory is the number of entries kept per location.
	MaxDepthHistory = 30
)

// SnowDepthEntry is one day of accumulation. Depth mirrors Cumulative.
type SnowDepthEntry struct {
	Date         string  `json:"date"`
	Depth        float64 `json:"depth"`
	Accumulation float64 `json:"accumulation"`
	Cumulative   float64 `json:"cumulative"`
}

// DepthTracker keeps a rolling cumulative snow-depth history per location.
// Reads and writes are not coordinated across requests; a concurrent update
// may seed from a slightly stale total.
type DepthTracker struct {
	kv  store.KV
	log zerolog.Logger
}

func NewDepthTracker(kv store.KV, log zerolog.Logger) *DepthTracker {
	return &DepthTracker{kv: kv, log: log.With().Str("component", "depth-tracker").Logger()}
}

// DepthKey returns the history key for a location.
func DepthKey(loc weather.Location) string {
	return DepthKeyPrefix + "-" + loc.ID
}

// History returns the stored entries for loc, oldest first. Unreadable
// history is treated as empty.
func (t *DepthTracker) History(ctx context.Context, loc weather.Location) []SnowDepthEntry {
	raw, err := t.kv.Get(ctx, DepthKey(loc))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			t.log.Warn().Err(err).Str("location", loc.ID).Msg("reading snow depth history")
		}
		return nil
	}

	var history []SnowDepthEntry
	if err := json.Unmarshal(raw, &history); err != nil {
		t.log.Warn().Err(err).Str("location", loc.ID).Msg("decoding snow depth history")
		return nil
	}
	return history
}

// Update appends one entry per forecast day, seeded from the last stored
// cumulative value, and persists the most recent 30 entries.
func (t *DepthTracker) Update(ctx context.Context, loc weather.Location, forecasts []weather.ForecastSeries) ([]SnowDepthEntry, error) {
	if len(forecasts) == 0 {
		return nil, nil
	}

	history := t.History(ctx, loc)
	entries := Accumulate(lastCumulative(history), forecasts)

	all := append(history, entries...)
	if len(all) > MaxDepthHistory {
		all = all[len(all)-MaxDepthHistory:]
	}

	raw, err := json.Marshal(all)
	if err != nil {
		return entries, fmt.Errorf("encode snow depth history: %w", err)
	}
	if err := t.kv.Set(ctx, DepthKey(loc), raw); err != nil {
		return entries, fmt.Errorf("save snow depth history: %w", err)
	}
	return entries, nil
}

// SeasonTotal sums the stored daily accumulations for loc.
func (t *DepthTracker) SeasonTotal(ctx context.Context, loc weather.Location) float64 {
	var total float64
	for _, e := range t.History(ctx, loc) {
		total += e.Accumulation
	}
	return total
}

// Accumulate builds depth entries from forecasts starting at seed. Each
// day's accumulation is the mean snowfall of the models that have that day.
func Accumulate(seed float64, forecasts []weather.ForecastSeries) []SnowDepthEntry {
	n := weather.MaxLength(forecasts)
	out := make([]SnowDepthEntry, 0, n)
	cumulative := seed

	for i := 0; i < n; i++ {
		agg, ok := weather.AggregateDay(forecasts, i)
		if !ok {
			continue
		}
		acc := agg.Snowfall
		if acc < 0 {
			acc = 0
		}
		cumulative += acc
		out = append(out, SnowDepthEntry{
			Date:         agg.Date,
			Depth:        cumulative,
			Accumulation: acc,
			Cumulative:   cumulative,
		})
	}
	return out
}

func lastCumulative(history []SnowDepthEntry) float64 {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1].Cumulative
}
