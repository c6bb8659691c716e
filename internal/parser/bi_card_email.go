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

// BICardEmailPDF parses the Banco Industrial credit card statement mailed as
// PDF ("tc-bi-email"). Movements are grouped into per-currency sections and
// print two dates per row; the purchase date (second column) is the one that
// matters.
type BICardEmailPDF struct {
	deps Deps
}

// NewBICardEmailPDF creates the parser.
func NewBICardEmailPDF(deps Deps) *BICardEmailPDF {
	return &BICardEmailPDF{deps: deps}
}

var (
	biCardMaskedRe  = regexp.MustCompile(`XXXX XXXX XXXX (\d{4})\s*([A-Z]+)`)
	biCardCutoffRe  = regexp.MustCompile(`Fecha de corte:\s*(\d{1,2})\s+(\d{1,2})\s+(\d{4})`)
	biCardAllCapsRe = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ\s]+$`)
	biCardEmailRowRe = regexp.MustCompile(
		`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(\d{1,2}/\d{1,2}/\d{2,4})\s+(.+?)\s+(\d{1,3}(?:,\d{3})*\.\d{2})$`)
)

// Parse implements Parser.
func (p *BICardEmailPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	cutoff := applyBICardEmailHeader(lines, st)
	transactions := parseBICardEmailLines(lines, cutoff)
	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

// applyBICardEmailHeader scans the opening lines for the holder, the masked
// card number and the cut date. The card tier next to the masked number
// becomes part of the account type (TC-PLATINUM, TC-CLASICA). Returns the cut
// date, zero when absent.
func applyBICardEmailHeader(lines []string, st *model.StatementFile) time.Time {
	holder, number := "", ""
	accountType := "TC"
	var cutoff time.Time

	limit := 30
	if len(lines) < limit {
		limit = len(lines)
	}
	for i, raw := range lines[:limit] {
		line := strings.TrimSpace(raw)

		// The holder is the first long all-caps line that is not part of the
		// mailing address.
		if i < 10 && len(line) > 10 && biCardAllCapsRe.MatchString(line) &&
			!strings.Contains(line, "GUATEMALA") && !strings.Contains(line, "ZONA") &&
			!strings.Contains(line, "CALLE") && holder == "" {
			holder = line
		}

		if m := biCardMaskedRe.FindStringSubmatch(line); m != nil {
			number = "XXXX-XXXX-XXXX-" + m[1]
			accountType = "TC-" + m[2]
		}

		if m := biCardCutoffRe.FindStringSubmatch(line); m != nil {
			if parsed, err := moneytext.ParseDate(m[1]+"/"+m[2]+"/"+m[3], 0); err == nil {
				cutoff = parsed
			}
		}
	}

	st.Bank = "BI"
	st.AccountType = accountType
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
	st.Currency = "GTQ|USD"
	return cutoff
}

// parseBICardEmailLines walks the currency sections. OTROS CREDITOS rows are
// inflows regardless of description; elsewhere the payment wording decides.
// Processing stops at the payments recap, which repeats rows already counted.
func parseBICardEmailLines(lines []string, cutoff time.Time) []model.Transaction {
	var transactions []model.Transaction
	currency := ""
	inSection := false
	sectionCredits := false

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if strings.Contains(line, "PAGOS REALIZADOS") || strings.Contains(line, "BALANCE DE INTERESES") {
			break
		}

		switch {
		case strings.Contains(line, "OTROS CARGOS"):
			sectionCredits = false
			continue
		case strings.Contains(line, "OTROS CREDITOS"):
			sectionCredits = true
			continue
		case strings.Contains(line, "MOVIMIENTOS EN QUETZALES"):
			currency, inSection = "GTQ", true
			continue
		case strings.Contains(line, "MOVIMIENTOS EN DOLARES"):
			currency, inSection = "USD", true
			continue
		case strings.Contains(line, "TOTAL QUETZALES"), strings.Contains(line, "TOTAL DOLARES"):
			inSection = false
			continue
		}

		if !inSection || currency == "" {
			continue
		}

		m := biCardEmailRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		date, err := moneytext.ParseDate(m[2], 0)
		if err != nil {
			if cutoff.IsZero() {
				continue
			}
			date = cutoff
		}

		desc := strings.TrimSpace(m[3])
		amount := moneytext.ParseAmount(m[4])
		if !sectionCredits && !isBICardCredit(desc) {
			amount = -amount
		}

		transactions = append(transactions, model.Transaction{
			Date:        date,
			Description: desc,
			Currency:    currency,
			Amount:      amount,
		})
	}
	return transactions
}

func isBICardCredit(desc string) bool {
	upper := strings.ToUpper(desc)
	for _, keyword := range []string{"GRACIAS POR SU PAGO", "PAGO", "CREDITO", "EXTORNO"} {
		if strings.Contains(upper, keyword) {
			return true
		}
	}
	return false
}
