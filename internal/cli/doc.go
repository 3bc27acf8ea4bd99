// Package cli implements the command-line interface for boatrace-collector.
//
// The cli package provides the Cobra-based boatrace-collect command. It loads the
// configuration, collects one race day through the collector, prints a per-venue
// summary (text or JSON), optionally saves the records to the configured sink and
// announces the run through a notifier.
package cli
