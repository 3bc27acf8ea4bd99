package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteSink writes tables into a single SQLite database file
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at path. ":memory:" opens a
// private in-memory database.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: an in-memory database is per connection, and SQLite has a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// DB returns the underlying database handle
func (s *SQLiteSink) DB() *sql.DB {
	return s.db
}

// WriteRows creates table if missing and inserts rows in one transaction
func (s *SQLiteSink) WriteRows(ctx context.Context, table string, rows []any, appendRows bool) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	sch, err := schemaOf(rows)
	if err != nil {
		return fmt.Errorf("writing %s: %w", table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(table, sch, sqliteType)); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}

	if !appendRows {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, table)); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sch.columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		table, quotedNames(sch), placeholders))
	if err != nil {
		return fmt.Errorf("preparing insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, sch.values(row)...); err != nil {
			return fmt.Errorf("inserting into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", table, err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func sqliteType(k reflect.Kind) string {
	switch {
	case isInt(k):
		return "INTEGER"
	case isFloat(k):
		return "REAL"
	default:
		return "TEXT"
	}
}

func createTableSQL(table string, sch schema, typeOf func(reflect.Kind) string) string {
	defs := make([]string, len(sch.columns))
	for i, c := range sch.columns {
		defs[i] = fmt.Sprintf("%q %s", c.name, typeOf(c.kind))
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (%s)`, table, strings.Join(defs, ", "))
}

func quotedNames(sch schema) string {
	names := make([]string, len(sch.columns))
	for i, c := range sch.columns {
		names[i] = fmt.Sprintf("%q", c.name)
	}
	return strings.Join(names, ", ")
}
