package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ReadCSVRecords reads every record of a CSV file. Records may have varying
// field counts. Files that aren't valid UTF-8 are reinterpreted as Latin-1,
// which is what older bank exports use for accented characters.
func ReadCSVRecords(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	if !utf8.Valid(data) {
		data = latin1ToUTF8(data)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return records, nil
}

// latin1ToUTF8 converts ISO 8859-1 bytes to UTF-8. Every byte maps directly
// to the code point of the same value.
func latin1ToUTF8(data []byte) []byte {
	var b strings.Builder
	b.Grow(len(data) * 2)
	for _, c := range data {
		b.WriteRune(rune(c))
	}
	return []byte(b.String())
}
