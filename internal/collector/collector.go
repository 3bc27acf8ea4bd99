package collector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pfrederiksen/boatrace-collector/internal/logger"
	"github.com/pfrederiksen/boatrace-collector/internal/pacing"
	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"golang.org/x/sync/errgroup"
)

// Source provides the pages of a race day
type Source interface {
	ActiveVenues(ctx context.Context, date string) []race.VenueCode
	Results(ctx context.Context, q race.Query) ([]race.ResultRecord, []race.PayoutRecord, error)
	Odds(ctx context.Context, q race.Query) ([]race.OddsRecord, error)
}

// Options control which pages are collected and how
type Options struct {
	Results   bool
	Odds      bool
	FirstRace int
	LastRace  int
	Workers   int

	ResultInterval pacing.Interval
	OddsInterval   pacing.Interval
}

// DefaultOptions collects results and odds for races 1-12 with one worker
func DefaultOptions() Options {
	return Options{
		Results:        true,
		Odds:           true,
		FirstRace:      race.FirstRace,
		LastRace:       race.LastRace,
		Workers:        1,
		ResultInterval: pacing.ResultInterval,
		OddsInterval:   pacing.OddsInterval,
	}
}

// Batch is everything collected for one date
type Batch struct {
	Date      string
	Venues    []race.VenueCode
	Results   []race.ResultRecord
	Payouts   []race.PayoutRecord
	Odds      []race.OddsRecord
	Failures  int
	Cancelled bool
	Duration  time.Duration
}

// Collector runs collections against a Source
type Collector struct {
	source  Source
	pacer   *pacing.Pacer
	opts    Options
	metrics *logger.Metrics
}

// New creates a Collector. A nil pacer disables waiting between requests.
func New(source Source, pacer *pacing.Pacer, opts Options) *Collector {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Collector{
		source:  source,
		pacer:   pacer,
		opts:    opts,
		metrics: logger.DefaultMetrics(),
	}
}

// WithMetrics makes the collector record into m instead of the default tracker
func (c *Collector) WithMetrics(m *logger.Metrics) *Collector {
	c.metrics = m
	return c
}

// raceOutput is what one race task produced
type raceOutput struct {
	results  []race.ResultRecord
	payouts  []race.PayoutRecord
	odds     []race.OddsRecord
	failures int
}

// accumulator gathers task outputs keyed by task index
type accumulator struct {
	mu      sync.Mutex
	outputs map[int]raceOutput
}

func (a *accumulator) add(index int, out raceOutput) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.outputs[index] = out
}

// drain appends outputs to b in task order
func (a *accumulator) drain(b *Batch) {
	a.mu.Lock()
	defer a.mu.Unlock()

	indexes := make([]int, 0, len(a.outputs))
	for i := range a.outputs {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		out := a.outputs[i]
		b.Results = append(b.Results, out.results...)
		b.Payouts = append(b.Payouts, out.payouts...)
		b.Odds = append(b.Odds, out.odds...)
		b.Failures += out.failures
	}
}

// Tasks lists the race queries for date, venue ascending then race ascending
func (c *Collector) Tasks(date string, venues []race.VenueCode) []race.Query {
	sorted := append([]race.VenueCode(nil), venues...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var tasks []race.Query
	for _, v := range sorted {
		for n := c.opts.FirstRace; n <= c.opts.LastRace; n++ {
			tasks = append(tasks, race.Query{Date: date, Venue: v, Number: n})
		}
	}
	return tasks
}

// Run collects every race of date. It always returns a batch; when ctx ends early
// the batch holds what was collected and is marked Cancelled.
func (c *Collector) Run(ctx context.Context, date string) *Batch {
	start := time.Now()
	batch := &Batch{
		Date:    date,
		Results: []race.ResultRecord{},
		Payouts: []race.PayoutRecord{},
		Odds:    []race.OddsRecord{},
	}

	batch.Venues = c.source.ActiveVenues(ctx, date)
	c.metrics.SetGauge("venues.active", float64(len(batch.Venues)))

	tasks := c.Tasks(date, batch.Venues)
	acc := &accumulator{outputs: make(map[int]raceOutput, len(tasks))}

	var g errgroup.Group
	g.SetLimit(c.opts.Workers)

	for i, q := range tasks {
		if ctx.Err() != nil {
			break
		}
		i, q := i, q
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			acc.add(i, c.collectRace(ctx, q))
			return nil
		})
	}
	_ = g.Wait()

	acc.drain(batch)
	batch.Cancelled = ctx.Err() != nil
	batch.Duration = time.Since(start)

	c.metrics.AddCounter("records.results", int64(len(batch.Results)))
	c.metrics.AddCounter("records.payouts", int64(len(batch.Payouts)))
	c.metrics.AddCounter("records.odds", int64(len(batch.Odds)))
	c.metrics.RecordTiming("collect.duration", batch.Duration)

	fields := logger.Fields{
		"date":     date,
		"venues":   len(batch.Venues),
		"races":    len(tasks),
		"results":  len(batch.Results),
		"payouts":  len(batch.Payouts),
		"odds":     len(batch.Odds),
		"failures": batch.Failures,
	}
	if batch.Cancelled {
		fields["error"] = ctx.Err().Error()
		logger.Warn("collection cancelled", fields)
	} else {
		logger.Info("collection finished", fields)
	}
	return batch
}

// collectRace fetches the pages of one race. Failures are logged and counted.
func (c *Collector) collectRace(ctx context.Context, q race.Query) raceOutput {
	var out raceOutput

	if c.opts.Results {
		if err := c.pacer.Wait(ctx, c.opts.ResultInterval); err != nil {
			return out
		}
		results, payouts, err := c.source.Results(ctx, q)
		if err != nil {
			out.failures++
			logger.Warn("result page skipped", logger.Fields{"race": q.String(), "error": err.Error()})
		} else {
			out.results, out.payouts = results, payouts
		}
	}

	if c.opts.Odds {
		if err := c.pacer.Wait(ctx, c.opts.OddsInterval); err != nil {
			return out
		}
		odds, err := c.source.Odds(ctx, q)
		if err != nil {
			out.failures++
			logger.Warn("odds page skipped", logger.Fields{"race": q.String(), "error": err.Error()})
		} else {
			out.odds = odds
		}
	}

	return out
}

// String summarises the batch counts
func (b *Batch) String() string {
	return fmt.Sprintf("results %d, payouts %d, odds %d", len(b.Results), len(b.Payouts), len(b.Odds))
}
