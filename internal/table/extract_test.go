package table

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/japanese"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../testdata/fixtures/" + name)
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return data
}

func TestExtract_ResultPage(t *testing.T) {
	tables := Extract(loadFixture(t, "raceresult.html"))
	if len(tables) != 4 {
		t.Fatalf("Extract() returned %d tables, want 4", len(tables))
	}

	result := tables[1]
	if diff := cmp.Diff([]string{"着", "枠", "ボートレーサー", "レースタイム"}, result.Headers); diff != "" {
		t.Errorf("result headers mismatch (-want +got):\n%s", diff)
	}
	if len(result.Rows) != 6 {
		t.Fatalf("result rows = %d, want 6", len(result.Rows))
	}
	if diff := cmp.Diff([]string{"１", "1", "4444 山田 太郎", `1'49"5`}, result.Rows[0]); diff != "" {
		t.Errorf("first result row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Ｆ", "4", "4777 伊藤 四郎", ""}, result.Rows[5]); diff != "" {
		t.Errorf("last result row mismatch (-want +got):\n%s", diff)
	}

	start := tables[2]
	if diff := cmp.Diff([]string{"スタート情報", "スタート情報"}, start.Headers); diff != "" {
		t.Errorf("colspan header mismatch (-want +got):\n%s", diff)
	}

	payout := tables[3]
	if len(payout.Rows) != 10 {
		t.Fatalf("payout rows = %d, want 10 (blank row skipped)", len(payout.Rows))
	}
	if diff := cmp.Diff([]string{"3連単", "1-3-2", "¥1,230", "4"}, payout.Rows[0]); diff != "" {
		t.Errorf("first payout row mismatch (-want +got):\n%s", diff)
	}
	// rowspan on the bet type repeats into the following rows
	if diff := cmp.Diff([]string{"拡連複", "1=2", "¥220", "3"}, payout.Rows[5]); diff != "" {
		t.Errorf("rowspan payout row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"複勝", "3", "¥130", ""}, payout.Rows[9]); diff != "" {
		t.Errorf("last payout row mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_EdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		wantTables  int
		wantHeaders [][]string
		wantRows    [][][]string
	}{
		{
			name:       "empty document",
			html:       "",
			wantTables: 0,
		},
		{
			name:       "garbage",
			html:       "not html at all <<< >>>",
			wantTables: 0,
		},
		{
			name: "header row of th cells without thead",
			html: `<table><tr><th>勝式</th><th>払戻金</th></tr><tr><td>単勝</td><td>¥110</td></tr></table>`,
			wantTables:  1,
			wantHeaders: [][]string{{"勝式", "払戻金"}},
			wantRows:    [][][]string{{{"単勝", "¥110"}}},
		},
		{
			name: "multi-level header",
			html: `<table><thead>
				<tr><th rowspan="2">着</th><th colspan="2">ボートレーサー</th><th rowspan="2">タイム</th></tr>
				<tr><th>登録番号</th><th>氏名</th></tr>
				</thead><tbody><tr><td>1</td><td>4444</td><td>山田</td><td>1'49"5</td></tr></tbody></table>`,
			wantTables:  1,
			wantHeaders: [][]string{{"着", "ボートレーサー登録番号", "ボートレーサー氏名", "タイム"}},
			wantRows:    [][][]string{{{"1", "4444", "山田", `1'49"5`}}},
		},
		{
			name: "nested table rows stay with their own table",
			html: `<table><thead><tr><th>外</th></tr></thead><tbody><tr><td>
				<table><thead><tr><th>内</th></tr></thead><tbody><tr><td>inner</td></tr></tbody></table>
				</td></tr><tr><td>outer</td></tr></tbody></table>`,
			wantTables:  2,
			wantHeaders: [][]string{{"外"}, {"内"}},
			wantRows:    [][][]string{{{"内inner"}, {"outer"}}, {{"inner"}}},
		},
		{
			name:        "table without header",
			html:        `<table><tr><td>a</td><td>b</td></tr></table>`,
			wantTables:  1,
			wantHeaders: [][]string{{}},
			wantRows:    [][][]string{{{"a", "b"}}},
		},
		{
			name: "colspan in body",
			html: `<table><thead><tr><th>a</th><th>b</th><th>c</th></tr></thead>
				<tbody><tr><td colspan="2">x</td><td>y</td></tr></tbody></table>`,
			wantTables:  1,
			wantHeaders: [][]string{{"a", "b", "c"}},
			wantRows:    [][][]string{{{"x", "x", "y"}}},
		},
		{
			name: "colspan over a rowspan held from the row above",
			html: `<table><thead><tr><th>a</th><th>b</th><th>c</th></tr></thead><tbody>
				<tr><td>A</td><td rowspan="2">B</td><td>C</td></tr>
				<tr><td colspan="2">D</td><td>E</td></tr>
				<tr><td>F</td><td>G</td><td>H</td></tr>
				</tbody></table>`,
			wantTables:  1,
			wantHeaders: [][]string{{"a", "b", "c"}},
			wantRows:    [][][]string{{{"A", "B", "C"}, {"D", "D", "E"}, {"F", "G", "H"}}},
		},
		{
			name: "overridden rowspan still ends on time",
			html: `<table><thead><tr><th>a</th><th>b</th></tr></thead><tbody>
				<tr><td>1</td><td rowspan="3">R</td></tr>
				<tr><td colspan="2">X</td></tr>
				<tr><td>2</td></tr>
				<tr><td>3</td><td>4</td></tr>
				</tbody></table>`,
			wantTables:  1,
			wantHeaders: [][]string{{"a", "b"}},
			wantRows:    [][][]string{{{"1", "R"}, {"X", "X"}, {"2", "R"}, {"3", "4"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := Extract([]byte(tt.html))
			if len(tables) != tt.wantTables {
				t.Fatalf("Extract() returned %d tables, want %d", len(tables), tt.wantTables)
			}
			for i := range tt.wantHeaders {
				if diff := cmp.Diff(tt.wantHeaders[i], tables[i].Headers); diff != "" {
					t.Errorf("table %d headers mismatch (-want +got):\n%s", i, diff)
				}
			}
			for i := range tt.wantRows {
				if diff := cmp.Diff(tt.wantRows[i], tables[i].Rows); diff != "" {
					t.Errorf("table %d rows mismatch (-want +got):\n%s", i, diff)
				}
			}
		})
	}
}

func TestExtract_ShiftJIS(t *testing.T) {
	page := `<html><head><meta charset="Shift_JIS"></head><body>
		<table><thead><tr><th>単勝オッズ</th><th>ボートレーサー</th></tr></thead>
		<tbody><tr><td>1.6</td><td>山田</td></tr></tbody></table></body></html>`
	encoded, err := japanese.ShiftJIS.NewEncoder().String(page)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}

	tables := Extract([]byte(encoded))
	if len(tables) != 1 {
		t.Fatalf("Extract() returned %d tables, want 1", len(tables))
	}
	if diff := cmp.Diff([]string{"単勝オッズ", "ボートレーサー"}, tables[0].Headers); diff != "" {
		t.Errorf("decoded headers mismatch (-want +got):\n%s", diff)
	}
	if Classify(tables[0]) != WinOdds {
		t.Errorf("Classify() = %v, want win_odds", Classify(tables[0]))
	}
}
