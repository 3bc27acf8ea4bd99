package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pfrederiksen/boatrace-collector/internal/collector"
	"github.com/pfrederiksen/boatrace-collector/internal/config"
	"github.com/pfrederiksen/boatrace-collector/internal/fetch"
	"github.com/pfrederiksen/boatrace-collector/internal/logger"
	"github.com/pfrederiksen/boatrace-collector/internal/notifier"
	"github.com/pfrederiksen/boatrace-collector/internal/pacing"
	"github.com/pfrederiksen/boatrace-collector/internal/scraper"
	"github.com/pfrederiksen/boatrace-collector/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitCancelled = 2
)

// ErrCancelled is returned when the run was interrupted or timed out. Whatever was
// collected has still been reported and saved.
var ErrCancelled = errors.New("run cancelled")

var (
	flagDate        string
	flagSave        bool
	flagConfig      string
	flagFormat      string
	flagWorkers     int
	flagTimeout     time.Duration
	flagSkipResults bool
	flagSkipOdds    bool
	flagNotify      string
	flagVerbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boatrace-collect",
		Short: "Collect boat race results, payouts and odds for one day",
		Long: `A CLI tool to collect race results, payouts and win/place odds from boatrace.jp.
Discovers the venues racing on the given date, fetches every race and either saves
the records to the configured sink or prints a summary.`,
		RunE:          runCollect,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Define flags
	cmd.Flags().StringVar(&flagDate, "date", "", "Race date: YYYYMMDD, YYYY-MM-DD or YYYY/MM/DD (required)")
	cmd.Flags().BoolVar(&flagSave, "save", false, "Save records to the configured sink")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().IntVar(&flagWorkers, "workers", 1, "Races fetched concurrently")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Abort the run after this long (0 = no limit)")
	cmd.Flags().BoolVar(&flagSkipResults, "skip-results", false, "Do not collect results and payouts")
	cmd.Flags().BoolVar(&flagSkipOdds, "skip-odds", false, "Do not collect odds")
	cmd.Flags().StringVar(&flagNotify, "notify", notifier.TargetNone, "Announce the run: none, dry-run, twitter or telegram")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.MarkFlagRequired("date")

	return cmd
}

// loadConfig builds the run configuration and applies command-line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	} else if path != "" {
		logger.Debug("loaded environment file", logger.Fields{"path": path})
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cmd.Flags().Changed("workers") {
		cfg.Collect.Workers = flagWorkers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Collect.Timeout = flagTimeout
	}
	if flagSkipResults {
		cfg.Collect.Results = false
	}
	if flagSkipOdds {
		cfg.Collect.Odds = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runCollect is the main command logic
func runCollect(cmd *cobra.Command, args []string) error {
	level := logger.LevelInfo
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	date, err := NormalizeDate(flagDate)
	if err != nil {
		return err
	}

	// Validate format
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	notify, err := notifier.New(flagNotify)
	if err != nil {
		return fmt.Errorf("initializing notifier: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink storage.Sink
	if flagSave {
		sink, err = storage.Open(ctx, cfg.Sink)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		defer sink.Close()
	}

	if cfg.Collect.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Collect.Timeout)
		defer cancel()
	}

	fetcher := fetch.New(cfg.Source.UserAgent, cfg.RetryPolicy())
	sc := scraper.New(fetcher, cfg.Source.BaseURL)
	sc.IndexTimeout = cfg.Source.IndexTimeout
	sc.RaceTimeout = cfg.Source.RaceTimeout

	var pacer *pacing.Pacer
	if !cfg.Pacing.Disabled {
		pacer = pacing.New()
	}

	logger.Info("collection started", logger.Fields{
		"date":    date,
		"base":    sc.BaseURL(),
		"workers": cfg.Collect.Workers,
		"results": cfg.Collect.Results,
		"odds":    cfg.Collect.Odds,
	})

	batch := collector.New(sc, pacer, cfg.CollectOptions()).Run(ctx, date)
	summary := batch.Summary()

	var saveErr error
	if sink != nil {
		// a cancelled run still saves what it collected
		saveErr = collector.Save(context.WithoutCancel(ctx), sink, batch)
		summary.Saved = saveErr == nil
	}

	if err := WriteOutput(cmd.OutOrStdout(), summary, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if notify != nil {
		if err := notify.Notify(summary); err != nil {
			logger.Warn("notification failed", logger.Fields{"target": flagNotify, "error": err.Error()})
		}
	}

	if flagVerbose {
		logger.Debug("run metrics", logger.Fields{"metrics": logger.DefaultMetrics().Snapshot()})
	}

	if saveErr != nil {
		logger.Error("saving batch failed", logger.Fields{"sink": cfg.Sink.Type}, saveErr)
		return fmt.Errorf("saving batch: %w", saveErr)
	}
	if batch.Cancelled {
		return ErrCancelled
	}
	return nil
}

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrCancelled):
		return ExitCancelled
	default:
		return ExitError
	}
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil && !errors.Is(err, ErrCancelled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
