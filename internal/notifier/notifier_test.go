package notifier

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pfrederiksen/boatrace-collector/internal/collector"
)

func sampleSummary() collector.Summary {
	return collector.Summary{
		Date: "20240115",
		Venues: []collector.VenueCount{
			{Venue: "01", Name: "桐生", Results: 60, Payouts: 120, Odds: 72},
			{Venue: "02", Name: "戸田"},
		},
		Results: 60,
		Payouts: 120,
		Odds:    72,
	}
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name        string
		summary     collector.Summary
		contains    []string
		notContains []string
	}{
		{
			name:        "complete run",
			summary:     sampleSummary(),
			contains:    []string{"20240115", "桐生 60着/120払戻/72オッズ", "results 60, payouts 120, odds 72", "#ボートレース"},
			notContains: []string{"戸田", "[partial]", "skipped"},
		},
		{
			name: "partial run with failures",
			summary: func() collector.Summary {
				s := sampleSummary()
				s.Failures, s.Cancelled = 3, true
				return s
			}(),
			contains: []string{"(skipped pages 3)", "[partial]"},
		},
		{
			name:     "nothing collected",
			summary:  collector.Summary{Date: "20240115"},
			contains: []string{"開催データなし", "results 0, payouts 0, odds 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := formatSummary(tt.summary)
			for _, want := range tt.contains {
				if !strings.Contains(msg, want) {
					t.Errorf("formatSummary() missing %q:\n%s", want, msg)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(msg, unwanted) {
					t.Errorf("formatSummary() should not contain %q:\n%s", unwanted, msg)
				}
			}
			if n := utf8.RuneCountInString(msg); n > MaxLength {
				t.Errorf("formatSummary() length = %d, want <= %d", n, MaxLength)
			}
		})
	}
}

func TestFormatSummary_Truncates(t *testing.T) {
	s := collector.Summary{Date: "20240115"}
	for i := 0; i < 24; i++ {
		s.Venues = append(s.Venues, collector.VenueCount{Name: "びわこ", Results: 60, Payouts: 120, Odds: 72})
	}

	msg := formatSummary(s)
	if n := utf8.RuneCountInString(msg); n != MaxLength {
		t.Errorf("length = %d, want %d", n, MaxLength)
	}
	if !strings.HasSuffix(msg, "...") {
		t.Errorf("truncated message should end with ...: %q", msg)
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	if err := NewDryRunNotifier().WithOutput(&buf).Notify(sampleSummary()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "--- Post ---") || !strings.Contains(out, "桐生") {
		t.Errorf("unexpected dry-run output:\n%s", out)
	}
}

func TestNew(t *testing.T) {
	n, err := New("none")
	if err != nil || n != nil {
		t.Errorf("New(none) = (%v, %v), want (nil, nil)", n, err)
	}

	n, err = New("dry-run")
	if err != nil {
		t.Fatalf("New(dry-run) error = %v", err)
	}
	if _, ok := n.(*DryRunNotifier); !ok {
		t.Errorf("New(dry-run) = %T, want *DryRunNotifier", n)
	}

	if _, err := New("slack"); err == nil {
		t.Error("New(slack) expected error")
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "key")
	t.Setenv("TWITTER_API_SECRET", "secret")
	t.Setenv("TWITTER_ACCESS_TOKEN", "token")
	t.Setenv("TWITTER_ACCESS_SECRET", "")

	if _, err := CredentialsFromEnv(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("CredentialsFromEnv() error = %v, want %v", err, ErrMissingCredentials)
	}
	if _, err := New("twitter"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("New(twitter) error = %v, want %v", err, ErrMissingCredentials)
	}

	t.Setenv("TWITTER_ACCESS_SECRET", "access")
	creds, err := CredentialsFromEnv()
	if err != nil {
		t.Fatalf("CredentialsFromEnv() error = %v", err)
	}
	if creds.AccessSecret != "access" {
		t.Errorf("AccessSecret = %q, want access", creds.AccessSecret)
	}
}

// redirect sends every request to the test server
type redirect struct {
	target *url.URL
}

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func TestTwitterNotifier_Notify(t *testing.T) {
	var status string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/statuses/update.json" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		status = r.Form.Get("status")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 1, "text": "ok"}`))
	}))
	defer server.Close()

	target, _ := url.Parse(server.URL)
	n := newTwitterNotifier(&http.Client{Transport: redirect{target: target}})

	if err := n.Notify(sampleSummary()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(status, "桐生") {
		t.Errorf("posted status = %q, want the venue summary", status)
	}
}

func TestTwitterNotifier_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors": [{"code": 187, "message": "Status is a duplicate."}]}`))
	}))
	defer server.Close()

	target, _ := url.Parse(server.URL)
	n := newTwitterNotifier(&http.Client{Transport: redirect{target: target}})

	if err := n.Notify(sampleSummary()); err == nil {
		t.Fatal("Notify() expected error")
	}
}
