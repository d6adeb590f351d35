// Package analytics derives model agreement, snow quality and cumulative
// snow depth from a collection of normalized forecast series.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/i474232898/snowhound/internal/weather"
)

// Agreement buckets how closely models agree.
type Agreement string

const (
	AgreementHigh   Agreement = "high"
	AgreementMedium Agreement = "medium"
	AgreementLow    Agreement = "low"
)

// ModelSnowfall is one model's snowfall value for a day.
type ModelSnowfall struct {
	Model    string  `json:"model"`
	Snowfall float64 `json:"snowfall"`
}

// ConfidenceRecord scores cross-model agreement for one forecast date.
// Variance holds the population standard deviation of snowfall.
type ConfidenceRecord struct {
	Date       string          `json:"date"`
	Confidence float64         `json:"confidence"`
	Agreement  Agreement       `json:"agreement"`
	Variance   float64         `json:"variance"`
	Models     []ModelSnowfall `json:"models"`
}

// ComputeConfidence scores agreement on snowfall at day. It returns nil when
// no series has data for that day.
func ComputeConfidence(forecasts []weather.ForecastSeries, day int) *ConfidenceRecord {
	agg, ok := weather.AggregateDay(forecasts, day)
	if !ok {
		return nil
	}

	values := agg.Snowfalls()
	mean, stddev := stat.PopMeanStdDev(values, nil)

	cv := stddev
	if mean > 0 {
		cv = stddev / mean
	}

	confidence, agreement := scoreCV(cv)
	if mean == 0 && stddev == 0 {
		confidence, agreement = 100, AgreementHigh
	}

	models := make([]ModelSnowfall, len(agg.Values))
	for i, v := range agg.Values {
		models[i] = ModelSnowfall{Model: v.Model, Snowfall: v.Record.Snowfall}
	}

	return &ConfidenceRecord{
		Date:       agg.Date,
		Confidence: clamp(confidence, 0, 100),
		Agreement:  agreement,
		Variance:   stddev,
		Models:     models,
	}
}

// scoreCV maps a coefficient of variation onto 80-100 (high), 50-80 (medium)
// or 0-50 (low).
func scoreCV(cv float64) (float64, Agreement) {
	switch {
	case cv < 0.2:
		return 100 - (cv/0.2)*20, AgreementHigh
	case cv < 0.5:
		return 80 - ((cv-0.2)/0.3)*30, AgreementMedium
	default:
		return 50 - math.Min((cv-0.5)*50, 50), AgreementLow
	}
}

// ComputeAllConfidence scores every day up to the longest series.
func ComputeAllConfidence(forecasts []weather.ForecastSeries) []ConfidenceRecord {
	n := weather.MaxLength(forecasts)
	out := make([]ConfidenceRecord, 0, n)
	for i := 0; i < n; i++ {
		if c := ComputeConfidence(forecasts, i); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// OverallConfidence summarizes daily confidences over the forecast period.
type OverallConfidence struct {
	Score     float64   `json:"score"`
	Agreement Agreement `json:"agreement"`
	Label     string    `json:"label"`
}

// Overall averages the daily scores and buckets the rounded average.
func Overall(confidences []ConfidenceRecord) OverallConfidence {
	if len(confidences) == 0 {
		return OverallConfidence{Score: 0, Agreement: AgreementLow, Label: "No data"}
	}

	var sum float64
	for _, c := range confidences {
		sum += c.Confidence
	}
	avg := sum / float64(len(confidences))

	switch {
	case avg >= 75:
		return OverallConfidence{Score: math.Round(avg), Agreement: AgreementHigh, Label: "High Agreement"}
	case avg >= 50:
		return OverallConfidence{Score: math.Round(avg), Agreement: AgreementMedium, Label: "Moderate Agreement"}
	default:
		return OverallConfidence{Score: math.Round(avg), Agreement: AgreementLow, Label: "Low Agreement"}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
