package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVSink writes each table to <dir>/<table>.csv
type CSVSink struct {
	mu  sync.Mutex
	dir string
}

// NewCSVSink creates a CSV sink rooted at dir, creating the directory if needed
func NewCSVSink(dir string) (*CSVSink, error) {
	dir, err := expandHome(dir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &CSVSink{dir: dir}, nil
}

// Dir returns the directory the sink writes to
func (s *CSVSink) Dir() string {
	return s.dir
}

// Path returns the file backing table
func (s *CSVSink) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// WriteRows writes rows to the table's CSV file. The header row is written whenever
// the file starts out empty.
func (s *CSVSink) WriteRows(ctx context.Context, table string, rows []any, appendRows bool) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sch, err := schemaOf(rows)
	if err != nil {
		return fmt.Errorf("writing %s: %w", table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flags := os.O_CREATE | os.O_WRONLY
	if appendRows {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(s.Path(table), flags, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", table, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", table, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(sch.names()); err != nil {
			return fmt.Errorf("writing %s header: %w", table, err)
		}
	}

	record := make([]string, len(sch.columns))
	for _, row := range rows {
		for i, v := range sch.values(row) {
			record[i] = text(v)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing %s row: %w", table, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", table, err)
	}
	return f.Close()
}

// Close is a no-op; files are closed after every write
func (s *CSVSink) Close() error {
	return nil
}
