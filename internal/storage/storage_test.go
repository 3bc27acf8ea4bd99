package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"github.com/stretchr/testify/require"
)

func popularity(n int) *int { return &n }

var testQuery = race.Query{Date: "20240115", Venue: "01", Number: 1}

func payoutRows() []any {
	return []any{
		race.NewPayout(testQuery, "3連単", "1-3-2", 1230, popularity(4)),
		race.NewPayout(testQuery, "単勝", "1", 110, nil),
	}
}

func oddsRows() []any {
	return []any{
		race.NewOdds(testQuery, 1, "山田 太郎", 1.6, 1.0, 1.2),
		race.NewOdds(testQuery, 4, "伊藤 四郎", 0, 0, 0),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSchemaOf(t *testing.T) {
	sch, err := schemaOf(payoutRows())
	require.NoError(t, err)
	require.Equal(t, []string{
		"date", "stadium_code", "stadium_name", "race_no",
		"bet_type", "combination", "payout", "popularity",
	}, sch.names())

	values := sch.values(payoutRows()[1])
	require.Equal(t, "01", values[1])
	require.Equal(t, int64(110), values[6])
	require.Nil(t, values[7])

	_, err = schemaOf(nil)
	require.ErrorIs(t, err, errNoRows)

	_, err = schemaOf([]any{payoutRows()[0], oddsRows()[0]})
	require.Error(t, err)

	_, err = schemaOf([]any{"not a record"})
	require.Error(t, err)
}

func TestCSVSink_HeaderOnceAndAppend(t *testing.T) {
	sink, err := NewCSVSink(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sink.WriteRows(ctx, PayoutsTable, payoutRows(), true))
	require.NoError(t, sink.WriteRows(ctx, PayoutsTable, payoutRows()[:1], true))

	records := readCSV(t, sink.Path(PayoutsTable))
	require.Len(t, records, 4)
	require.Equal(t, "date", records[0][0])
	require.Equal(t, []string{"20240115", "01", "桐生", "1", "3連単", "1-3-2", "1230", "4"}, records[1])
	require.Equal(t, "", records[2][7])

	headers := 0
	for _, r := range records {
		if r[0] == "date" {
			headers++
		}
	}
	require.Equal(t, 1, headers)
}

func TestCSVSink_Replace(t *testing.T) {
	sink, err := NewCSVSink(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sink.WriteRows(ctx, OddsTable, oddsRows(), true))
	require.NoError(t, sink.WriteRows(ctx, OddsTable, oddsRows()[:1], false))

	records := readCSV(t, sink.Path(OddsTable))
	require.Len(t, records, 2)
	require.Equal(t, []string{"20240115", "01", "1", "1", "山田 太郎", "1.6", "1", "1.2"}, records[1])
}

func TestCSVSink_EmptyAndInvalid(t *testing.T) {
	sink, err := NewCSVSink(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sink.WriteRows(ctx, ResultsTable, nil, true))
	_, err = os.Stat(sink.Path(ResultsTable))
	require.True(t, os.IsNotExist(err), "empty write should not create a file")

	err = sink.WriteRows(ctx, "../escape", oddsRows(), true)
	require.ErrorIs(t, err, ErrInvalidTable)
}

func TestSQLiteSink(t *testing.T) {
	sink, err := NewSQLiteSink(":memory:")
	require.NoError(t, err)
	defer sink.Close()
	ctx := context.Background()

	require.NoError(t, sink.WriteRows(ctx, PayoutsTable, payoutRows(), true))
	require.NoError(t, sink.WriteRows(ctx, PayoutsTable, payoutRows(), true))

	var count int
	require.NoError(t, sink.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM race_payouts`).Scan(&count))
	require.Equal(t, 4, count)

	var (
		payout int
		pop    *int
	)
	row := sink.DB().QueryRowContext(ctx,
		`SELECT payout, popularity FROM race_payouts WHERE bet_type = ? LIMIT 1`, "単勝")
	require.NoError(t, row.Scan(&payout, &pop))
	require.Equal(t, 110, payout)
	require.Nil(t, pop)

	require.NoError(t, sink.WriteRows(ctx, PayoutsTable, payoutRows()[:1], false))
	require.NoError(t, sink.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM race_payouts`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestSQLiteSink_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "boatrace.db")
	sink, err := NewSQLiteSink(path)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, sink.WriteRows(ctx, OddsTable, oddsRows(), true))
	require.NoError(t, sink.Close())

	reopened, err := NewSQLiteSink(path)
	require.NoError(t, err)
	defer reopened.Close()

	var win float64
	require.NoError(t, reopened.DB().QueryRowContext(ctx,
		`SELECT win_odds FROM race_odds WHERE boat_no = 1`).Scan(&win))
	require.Equal(t, 1.6, win)
}

func TestCreateTableSQL(t *testing.T) {
	sch, err := schemaOf(oddsRows())
	require.NoError(t, err)

	got := createTableSQL(OddsTable, sch, postgresType)
	require.True(t, strings.HasPrefix(got, `CREATE TABLE IF NOT EXISTS "race_odds" (`))
	require.Contains(t, got, `"race_no" BIGINT`)
	require.Contains(t, got, `"win_odds" DOUBLE PRECISION`)
	require.Contains(t, got, `"racer_name" TEXT`)

	require.Contains(t, createTableSQL(OddsTable, sch, sqliteType), `"place_odds_max" REAL`)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sink, err := Open(ctx, Config{Type: "csv", Dir: dir})
	require.NoError(t, err)
	require.IsType(t, &CSVSink{}, sink)
	require.NoError(t, sink.Close())

	sink, err = Open(ctx, Config{Type: "SQLite", Dir: dir})
	require.NoError(t, err)
	require.IsType(t, &SQLiteSink{}, sink)
	require.NoError(t, sink.Close())
	require.FileExists(t, filepath.Join(dir, "boatrace.db"))

	_, err = Open(ctx, Config{Type: "postgres"})
	require.Error(t, err)

	_, err = Open(ctx, Config{Type: "sheets"})
	require.True(t, errors.Is(err, ErrUnknownSink))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandHome("~/data")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "data"), got)

	got, err = expandHome("/tmp/data")
	require.NoError(t, err)
	require.Equal(t, "/tmp/data", got)
}
