package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pfrederiksen/boatrace-collector/internal/collector"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the run summary in the specified format
func WriteOutput(w io.Writer, s collector.Summary, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatText:
		return writeText(w, s)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the summary as JSON
func writeJSON(w io.Writer, s collector.Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(s)
}

// writeText outputs a per-venue table followed by the totals
func writeText(w io.Writer, s collector.Summary) error {
	if len(s.Venues) == 0 {
		fmt.Fprintf(w, "No races found for %s.\n", s.Date)
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Venue", "Name", "Results", "Payouts", "Odds"})
		for _, v := range s.Venues {
			t.AppendRow(table.Row{v.Venue, v.Name, v.Results, v.Payouts, v.Odds})
		}
		t.AppendFooter(table.Row{"", "Total", s.Results, s.Payouts, s.Odds})
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	fmt.Fprintf(w, "results %d, payouts %d, odds %d\n", s.Results, s.Payouts, s.Odds)
	if s.Failures > 0 {
		fmt.Fprintf(w, "Skipped pages: %d\n", s.Failures)
	}
	if s.Cancelled {
		fmt.Fprintln(w, "Run interrupted; partial results.")
	}
	if s.Saved {
		fmt.Fprintln(w, "Saved.")
	}
	return nil
}
