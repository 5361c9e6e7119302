package ingest

import "strings"

// HeaderIndex is the normalized header row of one sheet, built once and
// queried per field instead of re-scanning keys per row.
type HeaderIndex struct {
	headers []string // normalized, in column order
}

// NewHeaderIndex normalizes a raw header row into an index.
func NewHeaderIndex(row []string) HeaderIndex {
	headers := make([]string, len(row))
	for i, cell := range row {
		headers[i] = Normalize(cell)
	}
	return HeaderIndex{headers: headers}
}

// Len returns the number of columns.
func (ix HeaderIndex) Len() int { return len(ix.headers) }

// Find returns the index of the first column whose normalized header
// matches any of the candidate labels. Matching is symmetric substring
// containment: the header contains the candidate or the candidate contains
// the header. First matching column wins; there is no ranking.
func (ix HeaderIndex) Find(candidates []string) (int, bool) {
	normalized := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if n := Normalize(c); n != "" {
			normalized = append(normalized, n)
		}
	}
	for i, h := range ix.headers {
		if h == "" {
			continue
		}
		for _, c := range normalized {
			if strings.Contains(h, c) || strings.Contains(c, h) {
				return i, true
			}
		}
	}
	return 0, false
}

// Value resolves a candidate field against a data row. The second return
// is false when no column matches or the row is too short; callers treat
// that as "no value", never as an error.
func (ix HeaderIndex) Value(row []string, candidates []string) (string, bool) {
	i, ok := ix.Find(candidates)
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}
