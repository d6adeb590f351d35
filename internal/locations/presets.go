package locations

import "github.com/i474232898/snowhound/internal/weather"

func elev(ft float64) *float64 { return &ft }

var skiResorts = []weather.Location{
	{ID: "vail", Name: "Vail, CO", Lat: 39.6403, Lon: -106.3742, Elevation: elev(8150)},
	{ID: "aspen", Name: "Aspen, CO", Lat: 39.1911, Lon: -106.8175, Elevation: elev(8000)},
	{ID: "breckenridge", Name: "Breckenridge, CO", Lat: 39.4817, Lon: -106.0384, Elevation: elev(9600)},
	{ID: "whistler", Name: "Whistler, BC", Lat: 50.1163, Lon: -122.9574, Elevation: elev(2182)},
	{ID: "park-city", Name: "Park City, UT", Lat: 40.6461, Lon: -111.4980, Elevation: elev(7000)},
	{ID: "jackson-hole", Name: "Jackson Hole, WY", Lat: 43.5875, Lon: -110.8278, Elevation: elev(6311)},
	{ID: "alta", Name: "Alta, UT", Lat: 40.5886, Lon: -111.6378, Elevation: elev(8530)},
	{ID: "mammoth", Name: "Mammoth Mountain, CA", Lat: 37.6308, Lon: -119.0326, Elevation: elev(11053)},
	{ID: "tahoe", Name: "Lake Tahoe, CA", Lat: 39.0968, Lon: -120.0324, Elevation: elev(6225)},
	{ID: "telluride", Name: "Telluride, CO", Lat: 37.9375, Lon: -107.8123, Elevation: elev(8725)},
	{ID: "crystal-mountain-wa", Name: "Crystal Mountain, WA", Lat: 46.9361, Lon: -121.4744, Elevation: elev(7012)},
	{ID: "crystal-mountain-mi", Name: "Crystal Mountain, MI", Lat: 44.5214, Lon: -85.9981, Elevation: elev(1025)},
}

var mountainRanges = []weather.Location{
	{ID: "rockies", Name: "Rocky Mountains", Lat: 39.7392, Lon: -105.9903},
	{ID: "sierra-nevada", Name: "Sierra Nevada", Lat: 37.8651, Lon: -119.5383},
	{ID: "cascades", Name: "Cascade Range", Lat: 45.3736, Lon: -121.6959},
	{ID: "wasatch", Name: "Wasatch Range", Lat: 40.7608, Lon: -111.8910},
	{ID: "alps", Name: "Alps", Lat: 46.5197, Lon: 9.8384},
}

// Presets returns every built-in location: ski resorts first, then ranges.
func Presets() []weather.Location {
	out := make([]weather.Location, 0, len(skiResorts)+len(mountainRanges))
	for _, l := range skiResorts {
		out = append(out, l.WithType(weather.LocationSearch))
	}
	for _, l := range mountainRanges {
		out = append(out, l.WithType(weather.LocationSearch))
	}
	return out
}

// Preset finds a built-in location by id.
func Preset(id string) (weather.Location, bool) {
	for _, l := range Presets() {
		if l.ID == id {
			return l, true
		}
	}
	return weather.Location{}, false
}
