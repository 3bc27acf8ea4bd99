package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Interval is the range a wait is drawn from
type Interval struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

var (
	// ResultInterval precedes each result page request
	ResultInterval = Interval{Min: 1 * time.Second, Max: 3 * time.Second}
	// OddsInterval precedes each odds page request
	OddsInterval = Interval{Min: 500 * time.Millisecond, Max: 1500 * time.Millisecond}
)

// Valid reports whether the interval is non-negative and ordered
func (iv Interval) Valid() bool {
	return iv.Min >= 0 && iv.Max >= iv.Min
}

func (iv Interval) draw(rng *rand.Rand) time.Duration {
	if iv.Max <= iv.Min {
		return iv.Min
	}
	return iv.Min + time.Duration(rng.Int63n(int64(iv.Max-iv.Min)+1))
}

// Pacer serialises waits between requests. A nil Pacer never waits but still
// reports a finished context.
type Pacer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Pacer
func New() *Pacer {
	return &Pacer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Wait blocks for a random duration within iv, after any wait already in progress.
// It returns ctx.Err() if the context ends first.
func (p *Pacer) Wait(ctx context.Context, iv Interval) error {
	if p == nil {
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	d := iv.draw(p.rng)
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
