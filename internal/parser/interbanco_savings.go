package parser

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// InterbancoSavingsPDF parses the Interbanco savings account statement
// ("ahorro-interbanco"). Rows print only the day of month, with polarity
// derived from the running balance seeded by the SALDO AL line.
type InterbancoSavingsPDF struct {
	deps Deps
}

// NewInterbancoSavingsPDF creates the parser.
func NewInterbancoSavingsPDF(deps Deps) *InterbancoSavingsPDF {
	return &InterbancoSavingsPDF{deps: deps}
}

var (
	interbancoAccountRe = regexp.MustCompile(`(?i)CUENTA\s+No\.\s+(\d{4}-\d{5}-\d)`)
	interbancoPeriodRe  = regexp.MustCompile(`(?i)(\w+)\s+(\d{4})\s+QUETZALES\s+ESTADO\s+DE\s+CUENTA`)
	interbancoHolderRe  = regexp.MustCompile(`^[A-Z][A-Z\s]+[A-Z]$`)
	interbancoSeedRe    = regexp.MustCompile(`SALDO\s+AL\s+\d{2}/\d{2}/\d{4}\s+(\d{1,3}(?:,\d{3})*\.\d{2})`)
	interbancoRowRe     = regexp.MustCompile(
		`^(\d{1,2})\s+(.+?)\s+(\d+)\s+(\d{1,3}(?:,\d{3})*\.\d{2})\s+(\d{1,3}(?:,\d{3})*\.\d{2})$`)
)

// interbancoNoise marks header, address and summary lines that would
// otherwise shadow movement rows.
var interbancoNoise = []string{
	"CUENTA", "ESTADO", "DIGITAL", "INTERES", "AVENIDA", "GUATEMALA",
	"ESTANDARIZADA", "SALDO ANTERIOR", "CANTIDAD TOTAL", "PROMEDIO",
}

// Parse implements Parser.
func (p *InterbancoSavingsPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	period, err := applyInterbancoHeader(lines, st)
	if err != nil {
		return 0, err
	}

	transactions := parseInterbancoLines(lines, st, period)
	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

// applyInterbancoHeader extracts the account number, the statement period and
// the holder. The holder is the first multi-word all-caps line that is not
// part of the letterhead or the mailing address.
func applyInterbancoHeader(lines []string, st *model.StatementFile) (time.Time, error) {
	number := ""
	var period time.Time

	for _, line := range lines[:minInt(5, len(lines))] {
		if m := interbancoAccountRe.FindStringSubmatch(line); m != nil && number == "" {
			number = m[1]
		}
		if m := interbancoPeriodRe.FindStringSubmatch(line); m != nil && period.IsZero() {
			if parsed, err := moneytext.ParseMonthYear(m[1] + " " + m[2]); err == nil {
				period = parsed
			}
		}
	}
	if number == "" {
		return time.Time{}, common.ErrNoAccountNumber
	}

	holder := ""
	for _, raw := range lines[:minInt(15, len(lines))] {
		line := strings.TrimSpace(raw)
		if !interbancoHolderRe.MatchString(line) || len(strings.Fields(line)) < 2 {
			continue
		}
		if isInterbancoNoise(line) {
			continue
		}
		holder = line
		break
	}

	st.Bank = "Interbanco"
	st.AccountType = "AHO"
	st.AccountNumber = number
	st.Holder = orUnknown(holder)
	st.Currency = "GTQ"

	if period.IsZero() {
		now := time.Now().UTC()
		period = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return period, nil
}

func isInterbancoNoise(line string) bool {
	upper := strings.ToUpper(line)
	for _, keyword := range interbancoNoise {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}

func parseInterbancoLines(lines []string, st *model.StatementFile, period time.Time) []model.Transaction {
	var tracker balanceTracker
	var transactions []model.Transaction

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.Contains(line, "SALDO AL") {
			if m := interbancoSeedRe.FindStringSubmatch(line); m != nil {
				st.OpeningBalance = moneytext.ParseAmount(m[1])
				tracker.Seed(st.OpeningBalance)
			}
			continue
		}
		if isInterbancoNoise(line) {
			continue
		}

		m := interbancoRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		amount := moneytext.ParseAmount(m[4])
		balance := moneytext.ParseAmount(m[5])
		transactions = append(transactions, model.Transaction{
			Date:           dayInPeriod(m[1], period),
			Description:    strings.TrimSpace(m[2]),
			DocumentNumber: m[3],
			Currency:       "GTQ",
			Amount:         tracker.Signed(amount, balance, m[2]),
		})
	}
	return transactions
}
