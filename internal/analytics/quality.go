package analytics

import "github.com/i474232898/snowhound/internal/weather"

type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// QualityFactors buckets each input condition.
type QualityFactors struct {
	Temperature string `json:"temperature"` // ideal, cold, warm
	Wind        string `json:"wind"`        // calm, moderate, strong
	Humidity    string `json:"humidity"`    // dry, moderate, humid
}

// SnowQualityRecord scores how well conditions preserve powder on one date.
type SnowQualityRecord struct {
	Date        string         `json:"date"`
	Quality     Quality        `json:"quality"`
	Score       float64        `json:"score"`
	Temperature float64        `json:"temperature"`
	WindSpeed   float64        `json:"windSpeed"`
	Humidity    float64        `json:"humidity"`
	Factors     QualityFactors `json:"factors"`
}

// Factor weights of the overall score.
const (
	tempWeight     = 0.4
	windWeight     = 0.4
	humidityWeight = 0.2
)

// ComputeQuality averages conditions across models at day and scores them.
// Ideal: 20-30°F, wind up to 15 mph, humidity up to 60%.
func ComputeQuality(forecasts []weather.ForecastSeries, day int) *SnowQualityRecord {
	agg, ok := weather.AggregateDay(forecasts, day)
	if !ok {
		return nil
	}
	return ScoreConditions(agg.Date, agg.Temperature, agg.WindSpeed, agg.Humidity)
}

// ScoreConditions scores a single set of averaged conditions.
func ScoreConditions(date string, temp, wind, humidity float64) *SnowQualityRecord {
	score := clamp(
		temperatureScore(temp)*tempWeight+windScore(wind)*windWeight+humidityScore(humidity)*humidityWeight,
		0, 100,
	)

	return &SnowQualityRecord{
		Date:        date,
		Quality:     qualityBucket(score),
		Score:       score,
		Temperature: temp,
		WindSpeed:   wind,
		Humidity:    humidity,
		Factors: QualityFactors{
			Temperature: temperatureFactor(temp),
			Wind:        windFactor(wind),
			Humidity:    humidityFactor(humidity),
		},
	}
}

// ComputeAllQuality scores every day up to the longest series.
func ComputeAllQuality(forecasts []weather.ForecastSeries) []SnowQualityRecord {
	n := weather.MaxLength(forecasts)
	out := make([]SnowQualityRecord, 0, n)
	for i := 0; i < n; i++ {
		if q := ComputeQuality(forecasts, i); q != nil {
			out = append(out, *q)
		}
	}
	return out
}

func temperatureScore(t float64) float64 {
	switch {
	case t < 20:
		return 60 - (20-t)*2
	case t > 30:
		return 100 - (t-30)*3
	default:
		return 100
	}
}

func windScore(w float64) float64 {
	if w > 15 {
		return 100 - (w-15)*2
	}
	return 100
}

func humidityScore(h float64) float64 {
	if h > 60 {
		return 100 - (h-60)*1.5
	}
	return 100
}

func qualityBucket(score float64) Quality {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 60:
		return QualityGood
	case score >= 40:
		return QualityFair
	default:
		return QualityPoor
	}
}

func temperatureFactor(t float64) string {
	switch {
	case t >= 20 && t <= 30:
		return "ideal"
	case t > 30:
		return "warm"
	default:
		return "cold"
	}
}

func windFactor(w float64) string {
	switch {
	case w < 10:
		return "calm"
	case w < 20:
		return "moderate"
	default:
		return "strong"
	}
}

func humidityFactor(h float64) string {
	switch {
	case h < 50:
		return "dry"
	case h < 70:
		return "moderate"
	default:
		return "humid"
	}
}
