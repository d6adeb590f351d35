package locations

import (
	"strings"

	"github.com/i474232898/snowhound/internal/weather"
)

// ResortInfo holds links for a known ski resort.
type ResortInfo struct {
	Name               string   `json:"name"`
	Webcams            []string `json:"webcams,omitempty"`
	TrailConditionsURL string   `json:"trailConditionsUrl,omitempty"`
	LiftStatusURL      string   `json:"liftStatusUrl,omitempty"`
	Website            string   `json:"website,omitempty"`
}

// resortOrder fixes name-match precedence.
var resortOrder = []string{"vail", "aspen", "breckenridge", "whistler", "park-city", "jackson-hole", "mammoth", "crystal-mountain-wa"}

var resortInfo = map[string]ResortInfo{
	"vail": {
		Name:               "Vail",
		Webcams:            []string{"https://www.vail.com/mountain/mountain-conditions/mountain-cams"},
		TrailConditionsURL: "https://www.vail.com/mountain/mountain-conditions",
		LiftStatusURL:      "https://www.vail.com/mountain/mountain-conditions/lift-status",
		Website:            "https://www.vail.com",
	},
	"aspen": {
		Name:               "Aspen",
		Webcams:            []string{"https://www.aspensnowmass.com/mountain-info/mountain-cams"},
		TrailConditionsURL: "https://www.aspensnowmass.com/mountain-info/mountain-conditions",
		Website:            "https://www.aspensnowmass.com",
	},
	"breckenridge": {
		Name:               "Breckenridge",
		Webcams:            []string{"https://www.breckenridge.com/mountain/mountain-conditions/mountain-cams"},
		TrailConditionsURL: "https://www.breckenridge.com/mountain/mountain-conditions",
		Website:            "https://www.breckenridge.com",
	},
	"whistler": {
		Name:               "Whistler Blackcomb",
		Webcams:            []string{"https://www.whistlerblackcomb.com/mountain/mountain-conditions/mountain-cams"},
		TrailConditionsURL: "https://www.whistlerblackcomb.com/mountain/mountain-conditions",
		Website:            "https://www.whistlerblackcomb.com",
	},
	"park-city": {
		Name:               "Park City",
		Webcams:            []string{"https://www.parkcitymountain.com/mountain/mountain-conditions/mountain-cams"},
		TrailConditionsURL: "https://www.parkcitymountain.com/mountain/mountain-conditions",
		Website:            "https://www.parkcitymountain.com",
	},
	"jackson-hole": {
		Name:               "Jackson Hole",
		Webcams:            []string{"https://www.jacksonhole.com/mountain/mountain-conditions/mountain-cams"},
		TrailConditionsURL: "https://www.jacksonhole.com/mountain/mountain-conditions",
		Website:            "https://www.jacksonhole.com",
	},
	"mammoth": {
		Name:               "Mammoth Mountain",
		Webcams:            []string{"https://www.mammothmountain.com/mountain/mountain-conditions/mountain-cams"},
		TrailConditionsURL: "https://www.mammothmountain.com/mountain/mountain-conditions",
		Website:            "https://www.mammothmountain.com",
	},
	"crystal-mountain-wa": {
		Name:               "Crystal Mountain, WA",
		Webcams:            []string{"https://www.crystalmountainresort.com/mountain-conditions"},
		TrailConditionsURL: "https://www.crystalmountainresort.com/mountain-conditions",
		Website:            "https://www.crystalmountainresort.com",
	},
}

// LookupResort matches by location id, then by resort name contained in the location name.
func LookupResort(loc weather.Location) (ResortInfo, bool) {
	if info, ok := resortInfo[loc.ID]; ok {
		return info, true
	}
	name := strings.ToLower(loc.Name)
	for _, id := range resortOrder {
		info := resortInfo[id]
		if strings.Contains(name, strings.ToLower(info.Name)) {
			return info, true
		}
	}
	return ResortInfo{}, false
}
