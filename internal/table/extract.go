package table

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// maxSpan caps rowspan/colspan values taken from the page
const maxSpan = 64

// RawTable is one <table> as found on a page
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// Extract parses every table in the document, in document order.
// A document that cannot be parsed yields no tables.
func Extract(page []byte) []RawTable {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(toUTF8(page)))
	if err != nil {
		return nil
	}

	tables := make([]RawTable, 0)
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		tables = append(tables, parseTable(tbl))
	})
	return tables
}

// toUTF8 decodes pages served in a legacy charset such as Shift_JIS
func toUTF8(page []byte) []byte {
	if utf8.Valid(page) {
		return page
	}
	enc, _, _ := charset.DetermineEncoding(page, "")
	decoded, err := enc.NewDecoder().Bytes(page)
	if err != nil {
		return page
	}
	return decoded
}

func parseTable(tbl *goquery.Selection) RawTable {
	var headerRows, bodyRows []*goquery.Selection
	hasHead := false

	// only rows that belong to this table, not to tables nested inside it
	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if !tr.Closest("table").IsSelection(tbl) {
			return
		}
		if tr.Parent().Is("thead") {
			hasHead = true
			headerRows = append(headerRows, tr)
			return
		}
		bodyRows = append(bodyRows, tr)
	})

	if !hasHead {
		// leading rows made only of <th> cells act as the header
		for len(bodyRows) > 0 && isHeaderRow(bodyRows[0]) {
			headerRows = append(headerRows, bodyRows[0])
			bodyRows = bodyRows[1:]
		}
	}

	rows := make([][]string, 0, len(bodyRows))
	for _, row := range expand(bodyRows) {
		if !blank(row) {
			rows = append(rows, row)
		}
	}

	return RawTable{
		Headers: flatten(expand(headerRows)),
		Rows:    rows,
	}
}

func isHeaderRow(tr *goquery.Selection) bool {
	cells := tr.ChildrenFiltered("th, td")
	return cells.Length() > 0 && cells.Length() == cells.Filter("th").Length()
}

type pendingCell struct {
	text string
	left int
}

// expand lays rows out on a grid, repeating spanned cells into every position they cover
func expand(rows []*goquery.Selection) [][]string {
	grid := make([][]string, 0, len(rows))
	pending := make(map[int]*pendingCell)

	for _, tr := range rows {
		cells := tr.ChildrenFiltered("th, td")
		n := cells.Length()
		row := make([]string, 0, n)
		col, next := 0, 0

		for next < n || pendingFrom(pending, col) {
			if p, ok := pending[col]; ok {
				row = append(row, p.text)
				p.left--
				if p.left == 0 {
					delete(pending, col)
				}
				col++
				continue
			}
			if next >= n {
				row = append(row, "")
				col++
				continue
			}

			cell := cells.Eq(next)
			next++
			text := cellText(cell)
			colspan := spanAttr(cell, "colspan")
			rowspan := spanAttr(cell, "rowspan")
			for k := 0; k < colspan; k++ {
				// a cell spanning across a held column overrides it for this row
				if p, ok := pending[col]; ok {
					p.left--
					if p.left == 0 {
						delete(pending, col)
					}
				}
				row = append(row, text)
				if rowspan > 1 {
					pending[col] = &pendingCell{text: text, left: rowspan - 1}
				}
				col++
			}
		}

		if len(row) > 0 {
			grid = append(grid, row)
		}
	}

	return grid
}

func pendingFrom(pending map[int]*pendingCell, col int) bool {
	for c := range pending {
		if c >= col {
			return true
		}
	}
	return false
}

func spanAttr(cell *goquery.Selection, name string) int {
	v, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// cellText collapses every whitespace run, including U+3000, into a single space
func cellText(cell *goquery.Selection) string {
	return strings.Join(strings.Fields(cell.Text()), " ")
}

// flatten joins all header levels of each column into one string
func flatten(levels [][]string) []string {
	width := 0
	for _, level := range levels {
		if len(level) > width {
			width = len(level)
		}
	}

	headers := make([]string, width)
	for col := 0; col < width; col++ {
		var sb strings.Builder
		prev := ""
		for _, level := range levels {
			if col >= len(level) {
				continue
			}
			// a rowspan header repeats on every level it covers; keep it once
			if level[col] == "" || level[col] == prev {
				continue
			}
			sb.WriteString(level[col])
			prev = level[col]
		}
		headers[col] = sb.String()
	}
	return headers
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
