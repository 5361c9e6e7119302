package ingest

import "strings"

// headerScanWindow bounds how deep into a sheet the header row may sit.
// Workbooks commonly carry a few banner/title rows above the real table.
const headerScanWindow = 30

// Table is one sheet's located header plus the data rows beneath it.
type Table struct {
	Header    HeaderIndex
	HeaderRow int // zero-based index of the header row in the source grid
	Rows      [][]string
}

// ExtractTable scans the first rows of a raw grid for the header row: the
// first row whose normalized cells contain both a name keyword and an ID
// keyword. The second return is false when no such row exists within the
// scan window; the sheet then contributes zero records and no error.
func ExtractTable(grid [][]string, cur Curriculum) (Table, bool) {
	limit := min(len(grid), headerScanWindow)
	for i := 0; i < limit; i++ {
		joined := normalizeJoin(grid[i])
		if containsAny(joined, cur.HeaderNameKeywords) && containsAny(joined, cur.HeaderIDKeywords) {
			return Table{
				Header:    NewHeaderIndex(grid[i]),
				HeaderRow: i,
				Rows:      grid[i+1:],
			}, true
		}
	}
	return Table{}, false
}

func normalizeJoin(row []string) string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = Normalize(c)
	}
	return strings.Join(cells, "|")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if n := Normalize(k); n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
