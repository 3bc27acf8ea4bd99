package normalize

import (
	"strconv"
	"unicode/utf8"

	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"github.com/pfrederiksen/boatrace-collector/internal/table"
)

// Results converts a result table: rank, boat, racer, time.
// Rows whose rank is not a number (scratches, flying starts, repeated headers) are dropped.
func Results(q race.Query, t table.RawTable) []race.ResultRecord {
	return collect(t.Rows, func(row []string) (race.ResultRecord, bool) {
		return resultRow(q, row)
	})
}

func resultRow(q race.Query, row []string) (race.ResultRecord, bool) {
	if len(row) < 4 {
		return race.ResultRecord{}, false
	}
	rank, ok := ParseRank(row[0])
	if !ok {
		return race.ResultRecord{}, false
	}
	boat, ok := ParseBoat(row[1])
	if !ok {
		return race.ResultRecord{}, false
	}
	return race.NewResult(q, rank, boat, cell(row, 2), cell(row, 3)), true
}

// ParseRank accepts a string of ASCII digits or a single full-width digit
func ParseRank(s string) (int, bool) {
	s = trim(s)
	if s == "" {
		return 0, false
	}

	if asciiDigits(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return FullWidthDigit(r)
	}
	return 0, false
}

// FullWidthDigit converts '０'..'９' to 0..9
func FullWidthDigit(r rune) (int, bool) {
	if r < '０' || r > '９' {
		return 0, false
	}
	return int(r - '０'), true
}

func asciiDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
