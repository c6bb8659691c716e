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

// Banco Industrial checking statements come in three PDF generations:
// the online download ("monet-bi"), the mailed variant ("monet-bi-email")
// and the pre-2023 mailed layout ("monet-bi-legacy"). All three print
// unsigned amounts against a running balance, seeded by the SALDO ANTERIOR
// line.

// BICheckingPDF parses the online download.
type BICheckingPDF struct {
	deps Deps
}

// NewBICheckingPDF creates the parser.
func NewBICheckingPDF(deps Deps) *BICheckingPDF {
	return &BICheckingPDF{deps: deps}
}

var (
	biAccountLineRe   = regexp.MustCompile(`Número de cuenta:\s*(\S+)`)
	biSaldoAnteriorRe = regexp.MustCompile(`^\*+SALDO ANTERIOR\*+\s*([\d,\.]+)$`)
	biCheckingRowRe   = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\d+)\s+(.+?)\s+([\d,\.]+)\s*([\d,\.]*)$`)
)

// Parse implements Parser.
func (p *BICheckingPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	number := ""
	limit := 10
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if m := biAccountLineRe.FindStringSubmatch(line); m != nil {
			number = m[1]
			break
		}
	}

	holder := ""
	if len(lines) > 2 {
		holder = strings.TrimSpace(lines[2])
	}

	st.Bank = "BI"
	st.AccountType = "MONET"
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
	st.Currency = "GTQ"

	transactions := parseBICheckingLines(lines, st)
	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

// parseBICheckingLines walks the dated movement rows. Rows before the SALDO
// ANTERIOR anchor are skipped: without a previous balance the polarity is
// undecidable in this layout.
func parseBICheckingLines(lines []string, st *model.StatementFile) []model.Transaction {
	var tracker balanceTracker
	var transactions []model.Transaction

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := biSaldoAnteriorRe.FindStringSubmatch(line); m != nil {
			st.OpeningBalance = moneytext.ParseAmount(m[1])
			tracker.Seed(st.OpeningBalance)
			continue
		}

		m := biCheckingRowRe.FindStringSubmatch(line)
		if m == nil || !tracker.hasPrev {
			continue
		}

		date, err := moneytext.ParseDate(m[1], 0)
		if err != nil {
			continue
		}

		amount := moneytext.ParseAmount(m[4])
		balance := moneytext.ParseAmount(m[5])
		transactions = append(transactions, model.Transaction{
			Date:           date,
			DocumentNumber: m[2],
			Description:    strings.TrimSpace(m[3]),
			Currency:       "GTQ",
			Amount:         tracker.Signed(amount, balance, m[3]),
		})
	}
	return transactions
}

// BICheckingEmailPDF parses the mailed variant. Rows carry only the day of
// month; the statement period in the header supplies month and year.
type BICheckingEmailPDF struct {
	deps Deps
}

// NewBICheckingEmailPDF creates the parser.
func NewBICheckingEmailPDF(deps Deps) *BICheckingEmailPDF {
	return &BICheckingEmailPDF{deps: deps}
}

var (
	biDashedNumberRe = regexp.MustCompile(`(\d{3}-\d{6}-\d)`)
	biHolderPeriodRe = regexp.MustCompile(
		`(.+?)\s+(ENERO|FEBRERO|MARZO|ABRIL|MAYO|JUNIO|JULIO|AGOSTO|SEPTIEMBRE|OCTUBRE|NOVIEMBRE|DICIEMBRE)/(\d{2})`)
	biTrailingAmountRe = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*\.\d{2})$`)
	biDayRowRe         = regexp.MustCompile(
		`^(\d{1,2})\s+(\d+)\s+(.+?)\s+(\d{1,3}(?:,\d{3})*\.\d{2})\s+(\d{1,3}(?:,\d{3})*\.\d{2})$`)
)

// Parse implements Parser.
func (p *BICheckingEmailPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	number, holder := "", ""
	var period time.Time

	limit := 20
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if strings.Contains(line, "Número") && number == "" {
			if m := biDashedNumberRe.FindStringSubmatch(line); m != nil {
				number = m[1]
			}
		}
		if m := biHolderPeriodRe.FindStringSubmatch(line); m != nil && period.IsZero() {
			holder = strings.ReplaceAll(strings.TrimSpace(m[1]), "_", " ")
			if parsed, perr := moneytext.ParseMonthYear(m[2] + " " + m[3]); perr == nil {
				period = parsed
			}
		}
	}

	st.Bank = "BI"
	st.AccountType = "MONET"
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
	st.Currency = "GTQ"

	if period.IsZero() {
		now := time.Now().UTC()
		period = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	transactions := parseBIDayRows(lines, st, period)
	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

// parseBIDayRows handles the day-numbered table shared by the email and
// legacy layouts. Polarity comes from the running balance, with the keyword
// heuristic covering a row before the anchor is seen.
func parseBIDayRows(lines []string, st *model.StatementFile, period time.Time) []model.Transaction {
	var tracker balanceTracker
	var transactions []model.Transaction

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.Contains(line, "SALDO ANTERIOR") {
			if m := biTrailingAmountRe.FindStringSubmatch(line); m != nil {
				st.OpeningBalance = moneytext.ParseAmount(m[1])
				tracker.Seed(st.OpeningBalance)
			}
			continue
		}
		if isBICheckingNoise(line) {
			continue
		}

		m := biDayRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		amount := moneytext.ParseAmount(m[4])
		balance := moneytext.ParseAmount(m[5])
		transactions = append(transactions, model.Transaction{
			Date:           dayInPeriod(m[1], period),
			DocumentNumber: m[2],
			Description:    strings.TrimSpace(m[3]),
			Currency:       "GTQ",
			Amount:         tracker.Signed(amount, balance, m[3]),
		})
	}
	return transactions
}

func isBICheckingNoise(line string) bool {
	if len(line) < 10 {
		return true
	}
	for _, marker := range []string{
		"Día Doc. Descripción", "ULTIMA LINEA", "Totales", "Pag ",
	} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

// dayInPeriod builds a date from a day-of-month column and the statement
// period, clamping days past the month end.
func dayInPeriod(dayStr string, period time.Time) time.Time {
	date, err := moneytext.ParseDate(dayStr+"/"+period.Format("01/2006"), 0)
	if err != nil {
		return moneytext.MonthEnd(period)
	}
	return date
}

// BICheckingLegacyPDF parses the pre-2023 mailed layout. The movement table
// is bracketed by an explicit section header and an ULTIMA LINEA marker.
type BICheckingLegacyPDF struct {
	deps Deps
}

// NewBICheckingLegacyPDF creates the parser.
func NewBICheckingLegacyPDF(deps Deps) *BICheckingLegacyPDF {
	return &BICheckingLegacyPDF{deps: deps}
}

var (
	biLegacyPeriodRe  = regexp.MustCompile(`(?i)DEL\s*MES\s*DE\s+(\w+)\s*(\d{4})`)
	biLegacyAccountRe = regexp.MustCompile(`(?i)NUMERO\s*DE\s*CUENTA\s+(\d{3}-\d{6}-\d)`)
)

// Parse implements Parser.
func (p *BICheckingLegacyPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	var period time.Time
	for _, line := range lines[:minInt(5, len(lines))] {
		if m := biLegacyPeriodRe.FindStringSubmatch(line); m != nil {
			if parsed, perr := moneytext.ParseMonthYear(m[1] + " " + m[2]); perr == nil {
				period = parsed
			}
			break
		}
	}

	number, holder := "", ""
	for i, line := range lines[:minInt(10, len(lines))] {
		if m := biLegacyAccountRe.FindStringSubmatch(line); m != nil {
			number = m[1]
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if next != "" && !strings.HasPrefix(next, "TARJETAS") && !regexp.MustCompile(`^\d`).MatchString(next) {
					holder = next
				}
			}
			break
		}
	}
	if number == "" {
		return 0, common.ErrNoAccountNumber
	}

	st.Bank = "BI"
	st.AccountType = "MONET"
	st.AccountNumber = number
	st.Holder = orUnknown(holder)
	st.Currency = "GTQ"

	if period.IsZero() {
		now := time.Now().UTC()
		period = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}

	transactions := parseBILegacySection(lines, st, period)
	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

func parseBILegacySection(lines []string, st *model.StatementFile, period time.Time) []model.Transaction {
	var tracker balanceTracker
	var transactions []model.Transaction
	inSection := false

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.Contains(line, "Dia Docto. Descripción Débito Crédito Saldo") {
			inSection = true
			continue
		}
		if strings.Contains(line, "****ULTIM") || strings.Contains(line, "MOVIMIENTO MENSUAL DE CHEQUES") {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}

		if strings.Contains(line, "SALDO ANTERIOR") {
			if m := biTrailingAmountRe.FindStringSubmatch(line); m != nil {
				st.OpeningBalance = moneytext.ParseAmount(m[1])
				tracker.Seed(st.OpeningBalance)
			}
			continue
		}

		m := biDayRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		amount := moneytext.ParseAmount(m[4])
		balance := moneytext.ParseAmount(m[5])
		transactions = append(transactions, model.Transaction{
			Date:           dayInPeriod(m[1], period),
			DocumentNumber: m[2],
			Description:    strings.TrimSpace(m[3]),
			Currency:       "GTQ",
			Amount:         tracker.Signed(amount, balance, m[3]),
		})
	}
	return transactions
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
