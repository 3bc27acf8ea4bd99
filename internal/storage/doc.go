// Package storage persists collected race records.
//
// A Sink receives rows of one record type per call and writes them to a named table.
// Columns come from the records' json tags in field declaration order, so a CSV header,
// an SQLite table and a PostgreSQL table all share the same column names
// (date, stadium_code, race_no, ...). Tables are created on first write.
//
// Three sinks are provided: CSV files under a data directory (default
// ~/.local/share/boatrace-collector/), an SQLite database file and a PostgreSQL
// database reached through a DSN.
package storage
