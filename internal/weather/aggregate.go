package weather

// DayValue is one model's record for a given day index.
type DayValue struct {
	Model  string
	Record SnowfallRecord
}

// DayAggregate combines every series' record at one day index.
// Numeric fields are averaged over the series that have data for that day.
type DayAggregate struct {
	Date        string
	Values      []DayValue
	Snowfall    float64
	Temperature float64
	WindSpeed   float64
	Humidity    float64
}

// AggregateDay collects and averages the records at index day. It reports
// false when no series has data there. Date is taken from the first series
// that has the day.
func AggregateDay(forecasts []ForecastSeries, day int) (DayAggregate, bool) {
	if day < 0 {
		return DayAggregate{}, false
	}

	var agg DayAggregate
	var sumSnow, sumTemp, sumWind, sumHumidity float64

	for _, f := range forecasts {
		if day >= len(f.Data) {
			continue
		}
		r := f.Data[day]
		if agg.Date == "" {
			agg.Date = r.Timestamp
		}
		agg.Values = append(agg.Values, DayValue{Model: f.Model, Record: r})

		sumSnow += r.Snowfall
		sumTemp += r.Temperature
		sumWind += r.WindSpeed
		sumHumidity += r.Humidity
	}

	if len(agg.Values) == 0 {
		return DayAggregate{}, false
	}

	n := float64(len(agg.Values))
	agg.Snowfall = sumSnow / n
	agg.Temperature = sumTemp / n
	agg.WindSpeed = sumWind / n
	agg.Humidity = sumHumidity / n
	return agg, true
}

// Snowfalls returns the per-model snowfall values of the aggregate, in series order.
func (a DayAggregate) Snowfalls() []float64 {
	out := make([]float64, len(a.Values))
	for i, v := range a.Values {
		out[i] = v.Record.Snowfall
	}
	return out
}
