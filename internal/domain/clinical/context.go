package clinical

import "fmt"

// Seasons recognised by the boost rules.  Indonesia has no four-season
// calendar; the clinically relevant split is wet versus dry.
const (
	SeasonWet = "WET"
	SeasonDry = "DRY"
)

// Context carries the situational factors a recommendation is ranked under.
// Both fields are optional; the zero Context applies no boosts.
type Context struct {
	Location string `json:"location,omitempty"`
	Season   string `json:"season,omitempty"`
}

// Key returns the canonical boost-lookup key "{location}_{season}".  It is
// derived at lookup time only; contexts themselves stay structured.
func (c Context) Key() string {
	return fmt.Sprintf("%s_%s", c.Location, c.Season)
}

// SeasonForMonth maps a calendar month (1-12) onto a season given the
// configured wet-month set.
func SeasonForMonth(month int, wetMonths []int) string {
	for _, m := range wetMonths {
		if m == month {
			return SeasonWet
		}
	}
	return SeasonDry
}
