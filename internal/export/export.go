// Package export renders forecast collections as JSON, CSV, share cards and links.
package export

import (
	"encoding/csv"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/i474232898/snowhound/internal/weather"
)

type exportPoint struct {
	Date        string  `json:"date"`
	Snowfall    float64 `json:"snowfall"`
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windSpeed"`
	Humidity    float64 `json:"humidity"`
}

type exportSeries struct {
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Data     []exportPoint `json:"data"`
}

type document struct {
	Location   weather.Location `json:"location"`
	Forecasts  []exportSeries   `json:"forecasts"`
	ExportedAt string           `json:"exportedAt"`
}

// JSON writes an indented export document stamped with now.
func JSON(w io.Writer, loc weather.Location, forecasts []weather.ForecastSeries, now time.Time) error {
	doc := document{
		Location:   loc,
		Forecasts:  make([]exportSeries, 0, len(forecasts)),
		ExportedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	for _, f := range forecasts {
		s := exportSeries{Model: f.Model, Provider: f.Provider, Data: make([]exportPoint, 0, len(f.Data))}
		for _, r := range f.Data {
			s.Data = append(s.Data, exportPoint{
				Date:        r.Timestamp,
				Snowfall:    r.Snowfall,
				Temperature: r.Temperature,
				WindSpeed:   r.WindSpeed,
				Humidity:    r.Humidity,
			})
		}
		doc.Forecasts = append(doc.Forecasts, s)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}

// CSV writes one row per day index. Dates come from the first series;
// a series without a value for a day contributes empty cells.
func CSV(w io.Writer, forecasts []weather.ForecastSeries) error {
	cw := csv.NewWriter(w)

	header := []string{"Date"}
	for _, f := range forecasts {
		header = append(header, f.Model+" (Snowfall)", f.Model+" (Temp)", f.Model+" (Wind)")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < weather.MaxLength(forecasts); i++ {
		row := []string{""}
		if len(forecasts) > 0 && i < len(forecasts[0].Data) {
			row[0] = forecasts[0].Data[i].Timestamp
		}
		for _, f := range forecasts {
			if i >= len(f.Data) {
				row = append(row, "", "", "")
				continue
			}
			r := f.Data[i]
			row = append(row, formatNumber(r.Snowfall), formatNumber(r.Temperature), formatNumber(r.WindSpeed))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CardData is the numeric summary shown on a share card.
type CardData struct {
	Location      string   `json:"location"`
	Next24h       float64  `json:"next24h"`
	SevenDayTotal float64  `json:"sevenDayTotal"`
	PeakDay       float64  `json:"peakDay"`
	Models        []string `json:"models"`
}

// Card is a shareable forecast summary.
type Card struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Data        CardData `json:"data"`
}

// ForecastCard summarizes forecasts for sharing. The seven-day total is the
// mean of per-series totals; the peak is the largest single-day value in any series.
func ForecastCard(loc weather.Location, forecasts []weather.ForecastSeries, models []string) Card {
	var next24h, total, peak float64
	if len(forecasts) > 0 && len(forecasts[0].Data) > 0 {
		next24h = forecasts[0].Data[0].Snowfall
	}

	peak = math.Inf(-1)
	for _, f := range forecasts {
		for _, r := range f.Data {
			total += r.Snowfall
			peak = math.Max(peak, r.Snowfall)
		}
	}
	if len(forecasts) > 0 {
		total /= float64(len(forecasts))
	}
	if math.IsInf(peak, -1) {
		peak = 0
	}

	return Card{
		Title:       "SnowHound Forecast: " + loc.Name,
		Description: "Check out the " + strconv.FormatFloat(total, 'f', 1, 64) + `" of snow expected over the next 7 days!`,
		Data: CardData{
			Location:      loc.Name,
			Next24h:       next24h,
			SevenDayTotal: total,
			PeakDay:       peak,
			Models:        models,
		},
	}
}

// ShareURL builds a link to base carrying the location, model list and date.
// Empty parts are omitted; a nil location omits lat, lon and name.
func ShareURL(base string, loc *weather.Location, models []string, date string) string {
	params := url.Values{}
	if loc != nil {
		params.Set("lat", formatNumber(loc.Lat))
		params.Set("lon", formatNumber(loc.Lon))
		params.Set("name", loc.Name)
	}
	if len(models) > 0 {
		params.Set("models", strings.Join(models, ","))
	}
	if date != "" {
		params.Set("date", date)
	}

	if q := params.Encode(); q != "" {
		return base + "?" + q
	}
	return base
}
