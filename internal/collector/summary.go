package collector

import (
	"sort"
	"time"

	"github.com/pfrederiksen/boatrace-collector/internal/race"
)

// VenueCount is the number of records collected at one venue
type VenueCount struct {
	Venue   race.VenueCode `json:"stadium_code"`
	Name    string         `json:"stadium_name"`
	Results int            `json:"results"`
	Payouts int            `json:"payouts"`
	Odds    int            `json:"odds"`
}

// Summary is the outcome of a run, as reported to users
type Summary struct {
	Date      string       `json:"date"`
	Venues    []VenueCount `json:"venues"`
	Results   int          `json:"results"`
	Payouts   int          `json:"payouts"`
	Odds      int          `json:"odds"`
	Failures  int          `json:"failures"`
	Cancelled bool         `json:"cancelled"`
	Saved     bool         `json:"saved"`
	Duration  string       `json:"duration"`
}

// Summary counts the batch's records per venue. Venues that were discovered but
// produced nothing are listed with zero counts.
func (b *Batch) Summary() Summary {
	counts := make(map[race.VenueCode]*VenueCount, len(b.Venues))
	get := func(v race.VenueCode) *VenueCount {
		if c, ok := counts[v]; ok {
			return c
		}
		c := &VenueCount{Venue: v, Name: v.Name()}
		counts[v] = c
		return c
	}

	for _, v := range b.Venues {
		get(v)
	}
	for _, r := range b.Results {
		get(r.VenueCode).Results++
	}
	for _, p := range b.Payouts {
		get(p.VenueCode).Payouts++
	}
	for _, o := range b.Odds {
		get(o.VenueCode).Odds++
	}

	venues := make([]VenueCount, 0, len(counts))
	for _, c := range counts {
		venues = append(venues, *c)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i].Venue < venues[j].Venue })

	return Summary{
		Date:      b.Date,
		Venues:    venues,
		Results:   len(b.Results),
		Payouts:   len(b.Payouts),
		Odds:      len(b.Odds),
		Failures:  b.Failures,
		Cancelled: b.Cancelled,
		Duration:  b.Duration.Round(time.Millisecond).String(),
	}
}
