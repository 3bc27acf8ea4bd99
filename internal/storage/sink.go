package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Table names used for collected records
const (
	ResultsTable = "race_results"
	PayoutsTable = "race_payouts"
	OddsTable    = "race_odds"
)

// Sink types accepted by Open
const (
	TypeCSV      = "csv"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

const DefaultDataDir = "~/.local/share/boatrace-collector"

var (
	// ErrUnknownSink is returned by Open for an unsupported sink type
	ErrUnknownSink = errors.New("unknown sink type")

	// ErrInvalidTable is returned for table names that are not plain identifiers
	ErrInvalidTable = errors.New("invalid table name")
)

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Sink writes batches of records to named tables
type Sink interface {
	// WriteRows writes rows to table, creating it when missing. appendRows keeps
	// existing rows; otherwise they are replaced.
	WriteRows(ctx context.Context, table string, rows []any, appendRows bool) error
	Close() error
}

// Config selects and locates a sink
type Config struct {
	Type string `yaml:"type"`
	Dir  string `yaml:"dir"`
	DSN  string `yaml:"dsn"`
}

// Open creates the sink described by cfg
func Open(ctx context.Context, cfg Config) (Sink, error) {
	switch strings.ToLower(cfg.Type) {
	case TypeCSV, "":
		dir := cfg.Dir
		if dir == "" {
			dir = DefaultDataDir
		}
		return NewCSVSink(dir)
	case TypeSQLite:
		path := cfg.DSN
		if path == "" {
			dir := cfg.Dir
			if dir == "" {
				dir = DefaultDataDir
			}
			path = filepath.Join(dir, "boatrace.db")
		}
		return NewSQLiteSink(path)
	case TypePostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres sink: missing dsn")
		}
		return NewPostgresSink(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSink, cfg.Type)
	}
}

func checkTable(table string) error {
	if !tableName.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
