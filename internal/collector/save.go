package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/pfrederiksen/boatrace-collector/internal/logger"
	"github.com/pfrederiksen/boatrace-collector/internal/storage"
)

func rowsOf[T any](records []T) []any {
	rows := make([]any, len(records))
	for i, r := range records {
		rows[i] = r
	}
	return rows
}

// Save appends each non-empty record set of the batch to its table. Every table is
// attempted; the errors of failed tables are joined.
func Save(ctx context.Context, sink storage.Sink, b *Batch) error {
	tables := []struct {
		name string
		rows []any
	}{
		{storage.ResultsTable, rowsOf(b.Results)},
		{storage.PayoutsTable, rowsOf(b.Payouts)},
		{storage.OddsTable, rowsOf(b.Odds)},
	}

	var errs []error
	for _, t := range tables {
		if len(t.rows) == 0 {
			continue
		}
		if err := sink.WriteRows(ctx, t.name, t.rows, true); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", t.name, err))
			continue
		}
		logger.Info("rows saved", logger.Fields{"table": t.name, "rows": len(t.rows)})
	}
	return errors.Join(errs...)
}
