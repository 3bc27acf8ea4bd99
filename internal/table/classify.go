package table

import "strings"

// Kind is the semantic type of a table
type Kind int

const (
	Unknown Kind = iota
	Result
	Payout
	WinOdds
	PlaceOdds
)

func (k Kind) String() string {
	switch k {
	case Result:
		return "result"
	case Payout:
		return "payout"
	case WinOdds:
		return "win_odds"
	case PlaceOdds:
		return "place_odds"
	default:
		return "unknown"
	}
}

// Header substrings identifying each kind, checked in this order
var signatures = []struct {
	kind     Kind
	required []string
}{
	{Result, []string{"着", "枠", "ボートレーサー", "レースタイム"}},
	{Payout, []string{"勝式", "払戻金"}},
	{WinOdds, []string{"単勝オッズ", "ボートレーサー"}},
	{PlaceOdds, []string{"複勝オッズ", "ボートレーサー"}},
}

// Classified pairs a table with its kind
type Classified struct {
	Kind  Kind
	Table RawTable
}

// Classify returns the kind of a single table, ignoring column order and extra columns
func Classify(t RawTable) Kind {
	return classify(t, false)
}

// ClassifyPage classifies all tables of one page. Only the first result table on a page
// is kept as Result.
func ClassifyPage(tables []RawTable) []Classified {
	out := make([]Classified, 0, len(tables))
	seenResult := false
	for _, t := range tables {
		kind := classify(t, seenResult)
		if kind == Result {
			seenResult = true
		}
		out = append(out, Classified{Kind: kind, Table: t})
	}
	return out
}

// Tables returns the tables of the given kind, in page order
func Tables(page []Classified, kind Kind) []RawTable {
	var out []RawTable
	for _, c := range page {
		if c.Kind == kind {
			out = append(out, c.Table)
		}
	}
	return out
}

func classify(t RawTable, seenResult bool) Kind {
	for _, sig := range signatures {
		if sig.kind == Result && seenResult {
			continue
		}
		if hasAll(t.Headers, sig.required) {
			return sig.kind
		}
	}
	return Unknown
}

func hasAll(headers, required []string) bool {
	for _, want := range required {
		found := false
		for _, h := range headers {
			if strings.Contains(h, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
