package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"

	"github.com/i474232898/snowhound/internal/analytics"
	"github.com/i474232898/snowhound/internal/di"
	"github.com/i474232898/snowhound/internal/export"
	"github.com/i474232898/snowhound/internal/locations"
	"github.com/i474232898/snowhound/internal/weather"
)

type command struct {
	flags func(fs *pflag.FlagSet) any
	run   func(ctx context.Context, c *di.Client, opts any, args []string, w io.Writer) error
}

var commands = map[string]command{
	"forecast":  {flags: forecastFlags, run: runForecast},
	"search":    {flags: noFlags, run: runSearch},
	"favorites": {flags: noFlags, run: runFavorites},
	"models":    {flags: noFlags, run: runModels},
}

func noFlags(*pflag.FlagSet) any { return nil }

type forecastOptions struct {
	location  string
	lat, lon  float64
	models    []string
	format    string
	shareBase string
	track     bool
	latSet    func() bool
}

func forecastFlags(fs *pflag.FlagSet) any {
	o := &forecastOptions{}
	fs.StringVarP(&o.location, "location", "l", "", "preset or favorite location id")
	fs.Float64Var(&o.lat, "lat", 0, "latitude")
	fs.Float64Var(&o.lon, "lon", 0, "longitude")
	fs.StringSliceVarP(&o.models, "models", "m", weather.ModelIDs(), "comma-separated model ids")
	fs.StringVarP(&o.format, "format", "f", "summary", "output format: summary, json, csv or card")
	fs.StringVar(&o.shareBase, "share-base", "", "base URL for a share link printed with the card")
	fs.BoolVar(&o.track, "track-depth", true, "record the forecast in the local snow depth history")
	o.latSet = func() bool { return fs.Changed("lat") || fs.Changed("lon") }
	return o
}

func runForecast(ctx context.Context, c *di.Client, raw any, args []string, w io.Writer) error {
	o := raw.(*forecastOptions)

	loc, err := resolveLocation(ctx, c, o, args)
	if err != nil {
		return err
	}

	forecasts, err := c.Forecasts.GetMultipleForecasts(ctx, loc, o.models)
	if err != nil {
		var rl *weather.RateLimitedError
		if errors.As(err, &rl) {
			return fmt.Errorf("rate limited by %s; try again in %s", rl.Provider, rl.RetryAfter)
		}
		return err
	}

	switch o.format {
	case "json":
		return export.JSON(w, loc, forecasts, time.Now())
	case "csv":
		return export.CSV(w, forecasts)
	case "card":
		return printCard(w, loc, forecasts, o)
	case "summary":
		var depth []analytics.SnowDepthEntry
		if o.track {
			depth, err = c.Depth.Update(ctx, loc, forecasts)
			if err != nil {
				c.Log.Warn().Err(err).Str("location", loc.ID).Msg("snow depth history not saved")
			}
		} else {
			depth = analytics.Accumulate(0, forecasts)
		}
		return printSummary(w, loc, forecasts, depth, c.Depth.SeasonTotal(ctx, loc))
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
}

func resolveLocation(ctx context.Context, c *di.Client, o *forecastOptions, args []string) (weather.Location, error) {
	switch {
	case o.location != "":
		if loc, ok := locations.Preset(o.location); ok {
			return loc, nil
		}
		favs, err := c.Favorites.List(ctx)
		if err != nil {
			return weather.Location{}, err
		}
		for _, f := range favs {
			if f.ID == o.location {
				return f, nil
			}
		}
		return weather.Location{}, fmt.Errorf("unknown location %q", o.location)
	case o.latSet():
		return locations.ByCoordinates(o.lat, o.lon)
	case len(args) > 0:
		found, err := c.Locations.SearchAsync(ctx, strings.Join(args, " "))
		if err != nil {
			return weather.Location{}, err
		}
		if len(found) == 0 {
			return weather.Location{}, fmt.Errorf("no location matches %q", strings.Join(args, " "))
		}
		return found[0], nil
	default:
		return weather.Location{}, errors.New("specify --location, --lat/--lon or a place name")
	}
}

func printCard(w io.Writer, loc weather.Location, forecasts []weather.ForecastSeries, o *forecastOptions) error {
	card := export.ForecastCard(loc, forecasts, o.models)
	out := struct {
		export.Card
		ShareURL string `json:"shareUrl,omitempty"`
	}{Card: card}
	if o.shareBase != "" {
		out.ShareURL = export.ShareURL(o.shareBase, &loc, o.models, "")
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func printSummary(w io.Writer, loc weather.Location, forecasts []weather.ForecastSeries, depth []analytics.SnowDepthEntry, seasonTotal float64) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s (%.4f, %.4f)\n", loc.Name, loc.Lat, loc.Lon)
	if info, ok := locations.LookupResort(loc); ok && info.TrailConditionsURL != "" {
		fmt.Fprintf(tw, "Conditions: %s\n", info.TrailConditionsURL)
	}
	fmt.Fprintln(tw)

	for _, f := range forecasts {
		mock := ""
		if f.IsMock {
			mock = "  (simulated)"
		}
		fmt.Fprintf(tw, "%s\t%s%s\n", f.Model, f.Provider, mock)
	}
	fmt.Fprintln(tw)

	header := []string{"DAY"}
	for _, f := range forecasts {
		header = append(header, f.Model)
	}
	header = append(header, "CONFIDENCE", "QUALITY", "DEPTH")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	confidences := analytics.ComputeAllConfidence(forecasts)
	confByDate := make(map[string]analytics.ConfidenceRecord, len(confidences))
	for _, cr := range confidences {
		confByDate[cr.Date] = cr
	}
	depthByDate := make(map[string]analytics.SnowDepthEntry, len(depth))
	for _, d := range depth {
		depthByDate[d.Date] = d
	}

	for i := 0; i < weather.MaxLength(forecasts); i++ {
		agg, ok := weather.AggregateDay(forecasts, i)
		if !ok {
			continue
		}
		row := []string{shortDate(agg.Date)}
		for _, f := range forecasts {
			if i < len(f.Data) {
				row = append(row, fmt.Sprintf("%.1f\"", f.Data[i].Snowfall))
			} else {
				row = append(row, "-")
			}
		}

		conf := "-"
		if cr, ok := confByDate[agg.Date]; ok {
			conf = fmt.Sprintf("%.0f%% %s", cr.Confidence, cr.Agreement)
		}
		quality := "-"
		if q := analytics.ComputeQuality(forecasts, i); q != nil {
			quality = fmt.Sprintf("%s (%.0f)", q.Quality, q.Score)
		}
		dep := "-"
		if d, ok := depthByDate[agg.Date]; ok {
			dep = fmt.Sprintf("%.1f\"", d.Cumulative)
		}
		row = append(row, conf, quality, dep)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	overall := analytics.Overall(confidences)
	fmt.Fprintf(tw, "\nOverall: %s (%.0f)\n", overall.Label, overall.Score)
	fmt.Fprintf(tw, "Recorded season total: %.1f\"\n", seasonTotal)
	return tw.Flush()
}

// shortDate trims ISO timestamps to their date part.
func shortDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func runSearch(ctx context.Context, c *di.Client, _ any, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: snowhound search <query>")
	}
	found, err := c.Locations.SearchAsync(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(w, "no matches")
		return nil
	}
	return printLocations(w, found)
}

func runFavorites(ctx context.Context, c *di.Client, _ any, args []string, w io.Writer) error {
	action := "list"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "list":
		favs, err := c.Favorites.List(ctx)
		if err != nil {
			return err
		}
		if len(favs) == 0 {
			fmt.Fprintln(w, "no favorites")
			return nil
		}
		return printLocations(w, favs)
	case "add", "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: snowhound favorites %s <location-id>", action)
		}
		if action == "remove" {
			return c.Favorites.Remove(ctx, args[1])
		}
		loc, ok := locations.Preset(args[1])
		if !ok {
			return fmt.Errorf("unknown location %q", args[1])
		}
		return c.Favorites.Add(ctx, loc)
	default:
		return fmt.Errorf("unknown favorites action %q", action)
	}
}

func runModels(_ context.Context, _ *di.Client, _ any, _ []string, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSOURCE\tDESCRIPTION")
	for _, m := range weather.Models() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Provider, m.Description)
	}
	return tw.Flush()
}

func printLocations(w io.Writer, locs []weather.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLAT\tLON")
	for _, l := range locs {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\n", l.ID, l.Name, l.Lat, l.Lon)
	}
	return tw.Flush()
}
