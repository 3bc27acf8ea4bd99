package normalize

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// collect maps each row through parse and keeps the rows it accepts
func collect[T any](rows [][]string, parse func([]string) (T, bool)) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if rec, ok := parse(row); ok {
			out = append(out, rec)
		}
	}
	return out
}

// cell returns the trimmed i-th cell, or "" when the row is shorter
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// absent reports cells the page left empty
func absent(s string) bool {
	return s == "" || s == "nan"
}

// parseFloat accepts only finite numbers
func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseBoat parses a boat (lane) number 1-6, accepting full-width digits
func ParseBoat(s string) (int, bool) {
	n, err := strconv.Atoi(width.Narrow.String(strings.TrimSpace(s)))
	if err != nil || n < 1 || n > 6 {
		return 0, false
	}
	return n, true
}
