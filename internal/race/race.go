package race

import "fmt"

// Races are numbered 1 through 12 on every race day
const (
	FirstRace = 1
	LastRace  = 12
)

// Query identifies one fetchable race page
type Query struct {
	Date   string
	Venue  VenueCode
	Number int
}

// String formats the query for logs, e.g. "20240115 01R3"
func (q Query) String() string {
	return fmt.Sprintf("%s %sR%d", q.Date, q.Venue, q.Number)
}

// ResultRecord is one finishing boat of a race
type ResultRecord struct {
	Date       string    `json:"date"`
	VenueCode  VenueCode `json:"stadium_code"`
	VenueName  string    `json:"stadium_name"`
	RaceNumber int       `json:"race_no"`
	Rank       int       `json:"rank"`
	BoatNumber int       `json:"boat_no"`
	RacerName  string    `json:"racer_name"`
	Time       string    `json:"time"`
}

// PayoutRecord is one line of a race's payout table
type PayoutRecord struct {
	Date        string    `json:"date"`
	VenueCode   VenueCode `json:"stadium_code"`
	VenueName   string    `json:"stadium_name"`
	RaceNumber  int       `json:"race_no"`
	BetType     string    `json:"bet_type"`
	Combination string    `json:"combination"`
	Payout      int       `json:"payout"`
	Popularity  *int      `json:"popularity"` // nil when the page shows no popularity
}

// OddsRecord holds the win and place odds of one boat. Zero odds mean the
// boat was scratched or no odds were quoted.
type OddsRecord struct {
	Date         string    `json:"date"`
	VenueCode    VenueCode `json:"stadium_code"`
	RaceNumber   int       `json:"race_no"`
	BoatNumber   int       `json:"boat_no"`
	RacerName    string    `json:"racer_name"`
	WinOdds      float64   `json:"win_odds"`
	PlaceOddsMin float64   `json:"place_odds_min"`
	PlaceOddsMax float64   `json:"place_odds_max"`
}

// NewResult creates a ResultRecord stamped with the query's origin
func NewResult(q Query, rank, boat int, racer, elapsed string) ResultRecord {
	return ResultRecord{
		Date:       q.Date,
		VenueCode:  q.Venue,
		VenueName:  q.Venue.Name(),
		RaceNumber: q.Number,
		Rank:       rank,
		BoatNumber: boat,
		RacerName:  racer,
		Time:       elapsed,
	}
}

// NewPayout creates a PayoutRecord stamped with the query's origin
func NewPayout(q Query, betType, combination string, payout int, popularity *int) PayoutRecord {
	return PayoutRecord{
		Date:        q.Date,
		VenueCode:   q.Venue,
		VenueName:   q.Venue.Name(),
		RaceNumber:  q.Number,
		BetType:     betType,
		Combination: combination,
		Payout:      payout,
		Popularity:  popularity,
	}
}

// NewOdds creates an OddsRecord stamped with the query's origin
func NewOdds(q Query, boat int, racer string, win, placeMin, placeMax float64) OddsRecord {
	return OddsRecord{
		Date:         q.Date,
		VenueCode:    q.Venue,
		RaceNumber:   q.Number,
		BoatNumber:   boat,
		RacerName:    racer,
		WinOdds:      win,
		PlaceOddsMin: placeMin,
		PlaceOddsMax: placeMax,
	}
}
