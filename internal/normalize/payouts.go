package normalize

import (
	"strconv"
	"strings"

	"github.com/pfrederiksen/boatrace-collector/internal/race"
	"github.com/pfrederiksen/boatrace-collector/internal/table"
)

// Currency symbols seen in payout cells: half-width and full-width yen
var yenReplacer = strings.NewReplacer("¥", "", "￥", "", ",", "", "，", "")

// Payouts converts a payout table: bet type, combination, payout, popularity
func Payouts(q race.Query, t table.RawTable) []race.PayoutRecord {
	return collect(t.Rows, func(row []string) (race.PayoutRecord, bool) {
		return payoutRow(q, row)
	})
}

func payoutRow(q race.Query, row []string) (race.PayoutRecord, bool) {
	if len(row) < 3 {
		return race.PayoutRecord{}, false
	}
	betType := cell(row, 0)
	if absent(betType) {
		return race.PayoutRecord{}, false
	}
	amount, ok := ParsePayout(row[2])
	if !ok {
		return race.PayoutRecord{}, false
	}
	popularity, ok := ParsePopularity(cell(row, 3))
	if !ok {
		return race.PayoutRecord{}, false
	}
	return race.NewPayout(q, betType, cell(row, 1), amount, popularity), true
}

// ParsePayout parses "¥1,230" as 1230. Cells without a currency symbol pay 0;
// a symbol followed by something other than an amount is rejected.
func ParsePayout(s string) (int, bool) {
	s = trim(s)
	if !strings.ContainsAny(s, "¥￥") {
		return 0, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(yenReplacer.Replace(s)))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParsePopularity parses the popularity rank, truncating "4.0" to 4.
// Empty cells and ranks below 1 yield nil; unparsable ones are rejected.
func ParsePopularity(s string) (*int, bool) {
	s = trim(s)
	if absent(s) {
		return nil, true
	}
	f, ok := parseFloat(s)
	if !ok {
		return nil, false
	}
	if f < 1 {
		return nil, true
	}
	n := int(f)
	return &n, true
}
