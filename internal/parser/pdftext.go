package parser

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/jcgiron/centavo/internal/common"
)

// ExtractPDFLines reads a PDF and returns its text as one line per visual
// row, all pages concatenated. Row extraction is tried first; when the file's
// text objects aren't row-grouped, rows are rebuilt from glyph coordinates.
func ExtractPDFLines(path string) (lines []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageLines := linesByRow(page)
		if len(pageLines) == 0 {
			pageLines = linesByCoordinates(page)
		}
		lines = append(lines, pageLines...)
	}

	if len(lines) == 0 {
		return nil, common.ErrNoStatementText
	}
	return lines, nil
}

func linesByRow(page pdf.Page) []string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		line := strings.TrimSpace(strings.Join(parts, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// linesByCoordinates rebuilds rows from raw text objects: group by rounded Y,
// order rows top to bottom (PDF Y grows upward), order words left to right.
func linesByCoordinates(page pdf.Page) []string {
	content := page.Content()
	if len(content.Text) == 0 {
		return nil
	}

	type word struct {
		x float64
		s string
	}
	rows := make(map[int][]word)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		y := int(math.Round(t.Y))
		rows[y] = append(rows[y], word{x: t.X, s: t.S})
	}

	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	var lines []string
	for _, y := range ys {
		words := rows[y]
		sort.Slice(words, func(a, b int) bool { return words[a].x < words[b].x })

		var b strings.Builder
		var prevX float64
		for i, w := range words {
			if i > 0 && w.x-prevX > 15 {
				b.WriteString(" ")
			}
			b.WriteString(w.s)
			prevX = w.x
		}
		line := strings.TrimSpace(b.String())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
