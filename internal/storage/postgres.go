package storage

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink writes tables into a PostgreSQL database
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to the database at dsn and checks the connection
func NewPostgresSink(ctx context.Context, dsn string) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSink{pool: pool}, nil
}

// WriteRows creates table if missing and bulk-loads rows with COPY
func (s *PostgresSink) WriteRows(ctx context.Context, table string, rows []any, appendRows bool) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(table, sch, postgresType)); err != nil {
		return fmt.Errorf("creating %s: %w", table, err)
	}

	if !appendRows {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`TRUNCATE %q`, table)); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		values[i] = sch.values(row)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, sch.names(), pgx.CopyFromRows(values))
	if err != nil {
		return fmt.Errorf("copying into %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copying into %s: wrote %d of %d rows", table, n, len(rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing %s: %w", table, err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}

func postgresType(k reflect.Kind) string {
	switch {
	case isInt(k):
		return "BIGINT"
	case isFloat(k):
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}
