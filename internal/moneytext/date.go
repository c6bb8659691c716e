package moneytext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spanish month names and their common three-letter abbreviations as they
// appear across the supported banks' exports.
var spanishMonths = map[string]time.Month{
	"ENE": time.January, "ENERO": time.January,
	"FEB": time.February, "FEBRERO": time.February,
	"MAR": time.March, "MARZO": time.March,
	"ABR": time.April, "ABRIL": time.April,
	"MAY": time.May, "MAYO": time.May,
	"JUN": time.June, "JUNIO": time.June,
	"JUL": time.July, "JULIO": time.July,
	"AGO": time.August, "AGOSTO": time.August,
	"SEP": time.September, "SET": time.September, "SEPTIEMBRE": time.September,
	"OCT": time.October, "OCTUBRE": time.October,
	"NOV": time.November, "NOVIEMBRE": time.November,
	"DIC": time.December, "DICIEMBRE": time.December,
}

var (
	numericDateRe = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})(?:[/.-](\d{2,4}))?$`)
	namedDateRe   = regexp.MustCompile(`^(\d{1,2})\s*(?:DE\s+)?([A-ZÑ]+)\.?\s*(?:DE\s+|,\s*)?(\d{2,4})?$`)
)

// expandYear resolves two-digit years the way statement footers use them:
// 00 through 50 belong to the 2000s, the rest to the 1900s.
func expandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year <= 50 {
		return 2000 + year
	}
	return 1900 + year
}

// ParseDate parses a statement date written day-first, either fully numeric
// (15/03/2024, 15-03-24, 15.03.2024) or with a Spanish month name
// (15 MAR 2024, 15 DE MARZO DE 2024). The fallback year covers formats that
// omit it; pass zero to make a missing year an error.
func ParseDate(raw string, fallbackYear int) (time.Time, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := numericDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := fallbackYear
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			year = expandYear(year)
		}
		return makeDate(year, time.Month(month), day, raw)
	}

	if m := namedDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := spanishMonths[m[2]]
		if !ok {
			return time.Time{}, fmt.Errorf("unknown month in date %q", raw)
		}
		year := fallbackYear
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			year = expandYear(year)
		}
		return makeDate(year, month, day, raw)
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func makeDate(year int, month time.Month, day int, raw string) (time.Time, error) {
	if year == 0 {
		return time.Time{}, fmt.Errorf("date %q has no year", raw)
	}
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month in date %q", raw)
	}
	if day < 1 || day > daysIn(year, month) {
		return time.Time{}, fmt.Errorf("invalid day in date %q", raw)
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthEnd returns the last day of the given date's month. Card statements
// dated only by billing month settle on it.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// ParseMonthYear parses a billing period header such as "MARZO 2024",
// "MAR-2024" or "MARZO DE 2024" into the first day of that month.
func ParseMonthYear(raw string) (time.Time, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "/", " ")
	fields := strings.Fields(s)

	var month time.Month
	year := 0
	for _, f := range fields {
		f = strings.TrimSuffix(f, ".")
		if m, ok := spanishMonths[f]; ok {
			month = m
			continue
		}
		if n, err := strconv.Atoi(f); err == nil {
			year = expandYear(n)
		}
	}
	if month == 0 || year == 0 {
		return time.Time{}, fmt.Errorf("unrecognized period %q", raw)
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil
}
