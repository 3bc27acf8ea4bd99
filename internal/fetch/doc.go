// Package fetch implements the page fetch controller used by the scraper.
//
// A Fetcher issues GET requests with a per-call timeout and retries failed requests according
// to an explicit RetryPolicy (fixed number of attempts, constant delay between them). Exhausted
// retries surface as an error wrapping ErrFetchFailed, which callers treat as "no data for this
// page" rather than a reason to stop the run.
package fetch
