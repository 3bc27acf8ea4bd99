package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pfrederiksen/boatrace-collector/internal/collector"
)

// Notification targets accepted by New
const (
	TargetNone     = "none"
	TargetDryRun   = "dry-run"
	TargetTwitter  = "twitter"
	TargetTelegram = "telegram"
)

// MaxLength is the longest message a status post may carry
const MaxLength = 280

// Notifier defines the interface for announcing a finished run
type Notifier interface {
	// Notify posts the summary of a run
	Notify(s collector.Summary) error
}

// New returns the notifier for target, or nil for "none"
func New(target string) (Notifier, error) {
	switch strings.ToLower(target) {
	case "", TargetNone:
		return nil, nil
	case TargetDryRun:
		return NewDryRunNotifier(), nil
	case TargetTwitter:
		return NewTwitterNotifier()
	case TargetTelegram:
		return NewTelegramNotifier()
	default:
		return nil, fmt.Errorf("unknown notify target %q", target)
	}
}

// formatSummary formats a run summary as a status message
func formatSummary(s collector.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚤 %s ボートレース集計\n\n", s.Date)

	active := 0
	for _, v := range s.Venues {
		if v.Results+v.Payouts+v.Odds == 0 {
			continue
		}
		active++
		fmt.Fprintf(&b, "%s %d着/%d払戻/%dオッズ\n", v.Name, v.Results, v.Payouts, v.Odds)
	}
	if active == 0 {
		b.WriteString("開催データなし\n")
	}

	fmt.Fprintf(&b, "\nresults %d, payouts %d, odds %d", s.Results, s.Payouts, s.Odds)
	if s.Failures > 0 {
		fmt.Fprintf(&b, " (skipped pages %d)", s.Failures)
	}
	if s.Cancelled {
		b.WriteString(" [partial]")
	}
	b.WriteString("\n#ボートレース")

	return truncate(b.String(), MaxLength)
}

// truncate shortens msg to at most limit characters, ending with "..."
func truncate(msg string, limit int) string {
	if utf8.RuneCountInString(msg) <= limit {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:limit-3]) + "..."
}
