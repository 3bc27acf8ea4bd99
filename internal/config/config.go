// Package config loads run settings: defaults, an optional YAML file, a .env file and
// BOATRACE_* environment variables, applied in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pfrederiksen/boatrace-collector/internal/collector"
	"github.com/pfrederiksen/boatrace-collector/internal/fetch"
	"github.com/pfrederiksen/boatrace-collector/internal/pacing"
	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"github.com/pfrederiksen/boatrace-collector/internal/scraper"
	"github.com/pfrederiksen/boatrace-collector/internal/storage"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// Environment variables overriding file settings
const (
	EnvBaseURL = "BOATRACE_BASE_URL"
	EnvSink    = "BOATRACE_SINK"
	EnvSinkDir = "BOATRACE_SINK_DIR"
	EnvSinkDSN = "BOATRACE_SINK_DSN"
	EnvWorkers = "BOATRACE_WORKERS"
)

type Config struct {
	Source  SourceConfig   `yaml:"source"`
	Retry   RetryConfig    `yaml:"retry"`
	Pacing  PacingConfig   `yaml:"pacing"`
	Collect CollectConfig  `yaml:"collect"`
	Sink    storage.Config `yaml:"sink"`
}

type SourceConfig struct {
	BaseURL      string        `yaml:"base_url"`
	UserAgent    string        `yaml:"user_agent"`
	IndexTimeout time.Duration `yaml:"index_timeout"`
	RaceTimeout  time.Duration `yaml:"race_timeout"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
}

type PacingConfig struct {
	Disabled bool            `yaml:"disabled"`
	Results  pacing.Interval `yaml:"results"`
	Odds     pacing.Interval `yaml:"odds"`
}

type CollectConfig struct {
	Workers   int           `yaml:"workers"`
	FirstRace int           `yaml:"first_race"`
	LastRace  int           `yaml:"last_race"`
	Results   bool          `yaml:"results"`
	Odds      bool          `yaml:"odds"`
	Timeout   time.Duration `yaml:"timeout"` // whole run; zero means no limit
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			BaseURL:      scraper.BaseURL,
			UserAgent:    fetch.UserAgent,
			IndexTimeout: scraper.IndexTimeout,
			RaceTimeout:  scraper.RaceTimeout,
		},
		Retry: RetryConfig{
			MaxAttempts: fetch.DefaultMaxAttempts,
			Delay:       fetch.DefaultRetryDelay,
		},
		Pacing: PacingConfig{
			Results: pacing.ResultInterval,
			Odds:    pacing.OddsInterval,
		},
		Collect: CollectConfig{
			Workers:   1,
			FirstRace: race.FirstRace,
			LastRace:  race.LastRace,
			Results:   true,
			Odds:      true,
		},
		Sink: storage.Config{
			Type: storage.TypeCSV,
			Dir:  storage.DefaultDataDir,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when
// path is empty) and the environment. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads the first of paths that exists into the environment, without
// overriding variables already set. It returns the loaded path, or "" if none existed.
func LoadDotEnv(paths ...string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("loading %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv(EnvSink); v != "" {
		c.Sink.Type = v
	}
	if v := os.Getenv(EnvSinkDir); v != "" {
		c.Sink.Dir = v
	}
	if v := os.Getenv(EnvSinkDSN); v != "" {
		c.Sink.DSN = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalid, EnvWorkers, v)
		}
		c.Collect.Workers = n
	}
	return nil
}

// Validate reports the first setting that cannot be used
func (c *Config) Validate() error {
	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: source.base_url %q", ErrInvalid, c.Source.BaseURL)
	}
	if c.Source.IndexTimeout < 0 || c.Source.RaceTimeout < 0 {
		return fmt.Errorf("%w: negative source timeout", ErrInvalid)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", ErrInvalid)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("%w: retry.delay must not be negative", ErrInvalid)
	}

	if !c.Pacing.Results.Valid() {
		return fmt.Errorf("%w: pacing.results %v-%v", ErrInvalid, c.Pacing.Results.Min, c.Pacing.Results.Max)
	}
	if !c.Pacing.Odds.Valid() {
		return fmt.Errorf("%w: pacing.odds %v-%v", ErrInvalid, c.Pacing.Odds.Min, c.Pacing.Odds.Max)
	}

	if c.Collect.Workers < 1 {
		return fmt.Errorf("%w: collect.workers must be at least 1", ErrInvalid)
	}
	if c.Collect.FirstRace < race.FirstRace || c.Collect.LastRace > race.LastRace || c.Collect.FirstRace > c.Collect.LastRace {
		return fmt.Errorf("%w: races %d-%d outside %d-%d", ErrInvalid,
			c.Collect.FirstRace, c.Collect.LastRace, race.FirstRace, race.LastRace)
	}
	if c.Collect.Timeout < 0 {
		return fmt.Errorf("%w: collect.timeout must not be negative", ErrInvalid)
	}

	switch strings.ToLower(c.Sink.Type) {
	case storage.TypeCSV, storage.TypeSQLite:
	case storage.TypePostgres:
		if c.Sink.DSN == "" {
			return fmt.Errorf("%w: postgres sink requires sink.dsn or %s", ErrInvalid, EnvSinkDSN)
		}
	default:
		return fmt.Errorf("%w: sink.type %q", ErrInvalid, c.Sink.Type)
	}
	return nil
}

// RetryPolicy returns the fetch retry policy
func (c *Config) RetryPolicy() fetch.RetryPolicy {
	return fetch.RetryPolicy{MaxAttempts: c.Retry.MaxAttempts, Delay: c.Retry.Delay}
}

// CollectOptions returns the collector options
func (c *Config) CollectOptions() collector.Options {
	return collector.Options{
		Results:        c.Collect.Results,
		Odds:           c.Collect.Odds,
		FirstRace:      c.Collect.FirstRace,
		LastRace:       c.Collect.LastRace,
		Workers:        c.Collect.Workers,
		ResultInterval: c.Pacing.Results,
		OddsInterval:   c.Pacing.Odds,
	}
}
