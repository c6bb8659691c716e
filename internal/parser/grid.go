package parser

import "strings"

// Grid is the neutral cell matrix every spreadsheet-like source (xls, xlsx,
// HTML tables, csv) is converted into before row parsing.
type Grid [][]string

// Cell returns the trimmed cell at (row, col), or "" when out of range.
// Exported rows are ragged; missing cells read as empty.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Row returns the trimmed cells of one row, or nil when out of range.
func (g Grid) Row(row int) []string {
	if row < 0 || row >= len(g) {
		return nil
	}
	cells := make([]string, len(g[row]))
	for i, c := range g[row] {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

// IsBlankRow reports whether every cell of the row is empty. Out-of-range
// rows count as blank, so iteration can stop on either condition alike.
func (g Grid) IsBlankRow(row int) bool {
	if row < 0 || row >= len(g) {
		return true
	}
	for _, c := range g[row] {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FindRow returns the index of the first row for which match returns true,
// or -1.
func (g Grid) FindRow(match func(cells []string) bool) int {
	for i := range g {
		if match(g.Row(i)) {
			return i
		}
	}
	return -1
}

// headerIndex maps normalized header names to their column positions.
func headerIndex(cells []string) map[string]int {
	idx := make(map[string]int, len(cells))
	for i, c := range cells {
		name := strings.ToUpper(strings.TrimSpace(c))
		if name == "" {
			continue
		}
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}
