package normalize

import (
	"strings"

	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"github.com/pfrederiksen/boatrace-collector/internal/table"
)

// oddsSentinels mark boats without odds: no odds, scratched (欠場), special payout (特払い)
var oddsSentinels = map[string]bool{
	"-":   true,
	"欠場":  true,
	"特払い": true,
}

// Odds pairs a win-odds table with the place-odds table of the same race.
//
// Rows are matched by position over the shorter table. When the place row at a position
// names a different boat, the place row for the win row's boat within that prefix is used
// if there is one.
func Odds(q race.Query, win, place table.RawTable) []race.OddsRecord {
	n := len(win.Rows)
	if len(place.Rows) < n {
		n = len(place.Rows)
	}

	placeByBoat := make(map[int][]string, n)
	for _, row := range place.Rows[:n] {
		if boat, ok := ParseBoat(cell(row, 0)); ok {
			if _, dup := placeByBoat[boat]; !dup {
				placeByBoat[boat] = row
			}
		}
	}

	out := make([]race.OddsRecord, 0, n)
	for i := 0; i < n; i++ {
		if rec, ok := oddsRow(q, win.Rows[i], place.Rows[i], placeByBoat); ok {
			out = append(out, rec)
		}
	}
	return out
}

func oddsRow(q race.Query, win, place []string, placeByBoat map[int][]string) (race.OddsRecord, bool) {
	if len(win) < 3 || len(place) < 3 {
		return race.OddsRecord{}, false
	}
	boat, ok := ParseBoat(win[0])
	if !ok {
		return race.OddsRecord{}, false
	}

	if placeBoat, ok := ParseBoat(place[0]); ok && placeBoat != boat {
		if row, found := placeByBoat[boat]; found && len(row) >= 3 {
			place = row
		}
	}

	placeMin, placeMax := ParsePlaceOdds(place[2])
	return race.NewOdds(q, boat, cell(win, 1), ParseWinOdds(win[2]), placeMin, placeMax), true
}

// ParseWinOdds returns the win odds, or 0 for sentinels and anything unparsable
func ParseWinOdds(s string) float64 {
	s = trim(s)
	if oddsSentinels[s] {
		return 0
	}
	f, ok := parseFloat(s)
	if !ok || f < 0 {
		return 0
	}
	return f
}

// ParsePlaceOdds parses "1.5-2.3" into (1.5, 2.3) and "4.0" into (4.0, 4.0).
// Sentinels and unparsable values yield (0, 0).
func ParsePlaceOdds(s string) (min, max float64) {
	s = trim(s)
	if oddsSentinels[s] {
		return 0, 0
	}

	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		lo, ok1 := parseFloat(parts[0])
		hi, ok2 := parseFloat(parts[1])
		if !ok1 || !ok2 || lo < 0 || hi < 0 {
			return 0, 0
		}
		return lo, hi
	}

	f, ok := parseFloat(s)
	if !ok || f < 0 {
		return 0, 0
	}
	return f, f
}
