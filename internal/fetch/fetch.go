package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/boatrace-collector/internal/logger"
)

const (
	// UserAgent mimics a desktop browser; the site serves reduced pages to unknown agents
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 2 * time.Second
)

// ErrFetchFailed is returned once every attempt for a page has failed
var ErrFetchFailed = errors.New("fetch failed")

// RetryPolicy bounds how often and how quickly a request is retried
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy returns three attempts two seconds apart
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultRetryDelay,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(attempts-1))
	return backoff.WithContext(b, ctx)
}

// Fetcher retrieves raw pages over HTTP
type Fetcher struct {
	client  *resty.Client
	policy  RetryPolicy
	metrics *logger.Metrics
}

// New creates a Fetcher sending userAgent and retrying per policy.
// An empty userAgent falls back to UserAgent.
func New(userAgent string, policy RetryPolicy) *Fetcher {
	if userAgent == "" {
		userAgent = UserAgent
	}
	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "ja,en;q=0.8")

	return &Fetcher{
		client:  client,
		policy:  policy,
		metrics: logger.DefaultMetrics(),
	}
}

// WithMetrics makes the fetcher record into m instead of the default tracker
func (f *Fetcher) WithMetrics(m *logger.Metrics) *Fetcher {
	f.metrics = m
	return f
}

// Policy returns the retry policy in use
func (f *Fetcher) Policy() RetryPolicy {
	return f.policy
}

// Fetch returns the body of url. Each attempt is bounded by timeout (zero means no limit).
// A non-2xx status or transport error fails the attempt; after the last attempt the
// returned error wraps ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	var (
		body     []byte
		attempts int
	)

	op := func() error {
		attempts++
		f.metrics.IncrCounter("fetch.attempts")

		start := time.Now()
		b, err := f.get(ctx, url, timeout)
		f.metrics.RecordTiming("fetch.duration", time.Since(start))
		if err != nil {
			logger.Debug("fetch attempt failed", logger.Fields{
				"url":     url,
				"attempt": attempts,
				"error":   err.Error(),
			})
			return err
		}
		body = b
		return nil
	}

	if err := backoff.Retry(op, f.policy.backOff(ctx)); err != nil {
		f.metrics.IncrCounter("fetch.failures")
		return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrFetchFailed, url, attempts, err)
	}

	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	return resp.Body(), nil
}
