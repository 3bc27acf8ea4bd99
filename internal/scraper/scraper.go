package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/boatrace-collector/internal/fetch"
	"github.com/pfrederiksen/boatrace-collector/internal/logger"
	"github.com/pfrederiksen/boatrace-collector/internal/normalize"
	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"github.com/pfrederiksen/boatrace-collector/internal/table"
)

const (
	BaseURL = "https://www.boatrace.jp/owpc/pc/race"

	IndexTimeout = 15 * time.Second
	RaceTimeout  = 30 * time.Second
)

// Page paths under the base URL
const (
	indexPath  = "index"
	resultPath = "raceresult"
	oddsPath   = "oddstf"
)

// Scraper fetches and parses race pages
type Scraper struct {
	fetcher *fetch.Fetcher
	baseURL string

	IndexTimeout time.Duration
	RaceTimeout  time.Duration
}

// New creates a Scraper reading pages below baseURL. An empty baseURL uses BaseURL.
func New(f *fetch.Fetcher, baseURL string) *Scraper {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Scraper{
		fetcher:      f,
		baseURL:      strings.TrimRight(baseURL, "/"),
		IndexTimeout: IndexTimeout,
		RaceTimeout:  RaceTimeout,
	}
}

// BaseURL returns the URL pages are resolved against
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

func (s *Scraper) pageURL(path string, params url.Values) string {
	return s.baseURL + "/" + path + "?" + params.Encode()
}

func raceParams(q race.Query) url.Values {
	return url.Values{
		"rno": {strconv.Itoa(q.Number)},
		"jcd": {string(q.Venue)},
		"hd":  {q.Date},
	}
}

// ActiveVenues returns the venue codes linked from the index page for date, sorted
// ascending. A page that cannot be fetched yields no venues.
func (s *Scraper) ActiveVenues(ctx context.Context, date string) []race.VenueCode {
	page, err := s.fetcher.Fetch(ctx, s.pageURL(indexPath, url.Values{"hd": {date}}), s.IndexTimeout)
	if err != nil {
		logger.Warn("venue discovery failed", logger.Fields{"date": date, "error": err.Error()})
		return []race.VenueCode{}
	}

	venues, err := parseVenues(page)
	if err != nil {
		logger.Warn("index page unreadable", logger.Fields{"date": date, "error": err.Error()})
		return []race.VenueCode{}
	}

	for _, v := range venues {
		if !v.Known() {
			logger.Warn("unknown venue code", logger.Fields{"date": date, "venue": string(v)})
		}
	}
	logger.Info("venues discovered", logger.Fields{"date": date, "count": len(venues)})
	return venues
}

// parseVenues collects the distinct jcd query values of all links
func parseVenues(page []byte) ([]race.VenueCode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := make(map[race.VenueCode]bool)
	doc.Find("a[href]").Each(func(i int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if code := strings.TrimSpace(u.Query().Get("jcd")); code != "" {
			seen[race.VenueCode(code)] = true
		}
	})

	venues := make([]race.VenueCode, 0, len(seen))
	for v := range seen {
		venues = append(venues, v)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i] < venues[j] })
	return venues, nil
}

// Results fetches the result page of q and returns its finishing order and payouts.
// The first result table on the page is used; every payout table contributes.
func (s *Scraper) Results(ctx context.Context, q race.Query) ([]race.ResultRecord, []race.PayoutRecord, error) {
	page, err := s.fetcher.Fetch(ctx, s.pageURL(resultPath, raceParams(q)), s.RaceTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching results for %s: %w", q, err)
	}

	results, payouts := parseResultPage(q, page)
	logger.Debug("result page parsed", logger.Fields{
		"race":    q.String(),
		"results": len(results),
		"payouts": len(payouts),
	})
	return results, payouts, nil
}

func parseResultPage(q race.Query, page []byte) ([]race.ResultRecord, []race.PayoutRecord) {
	classified := table.ClassifyPage(table.Extract(page))

	results := []race.ResultRecord{}
	if tables := table.Tables(classified, table.Result); len(tables) > 0 {
		results = normalize.Results(q, tables[0])
	}

	payouts := []race.PayoutRecord{}
	for _, t := range table.Tables(classified, table.Payout) {
		payouts = append(payouts, normalize.Payouts(q, t)...)
	}
	return results, payouts
}

// Odds fetches the win/place odds page of q. When the page repeats an odds table,
// the last one of each kind is used.
func (s *Scraper) Odds(ctx context.Context, q race.Query) ([]race.OddsRecord, error) {
	page, err := s.fetcher.Fetch(ctx, s.pageURL(oddsPath, raceParams(q)), s.RaceTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetching odds for %s: %w", q, err)
	}

	odds := parseOddsPage(q, page)
	logger.Debug("odds page parsed", logger.Fields{"race": q.String(), "odds": len(odds)})
	return odds, nil
}

func parseOddsPage(q race.Query, page []byte) []race.OddsRecord {
	classified := table.ClassifyPage(table.Extract(page))

	win := table.Tables(classified, table.WinOdds)
	place := table.Tables(classified, table.PlaceOdds)
	if len(win) == 0 || len(place) == 0 {
		return []race.OddsRecord{}
	}
	return normalize.Odds(q, win[len(win)-1], place[len(place)-1])
}
