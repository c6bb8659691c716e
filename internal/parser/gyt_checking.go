package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// GYT checking/savings statements ("monet-aho-gyt"). The online banking
// export is an xlsx with a fixed layout; the mailed statement is a PDF with
// the same data in a lined table.

// GYTCheckingXLSX parses the xlsx export.
type GYTCheckingXLSX struct {
	deps Deps
}

// NewGYTCheckingXLSX creates the parser.
func NewGYTCheckingXLSX(deps Deps) *GYTCheckingXLSX {
	return &GYTCheckingXLSX{deps: deps}
}

// Parse implements Parser.
func (p *GYTCheckingXLSX) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	grid, err := ReadXLSXGrid(path)
	if err != nil {
		return 0, err
	}

	applyGYTCheckingHeader(grid, st)
	transactions, err := parseGYTCheckingGrid(grid, st.Currency)
	if err != nil {
		return 0, err
	}
	return commit(ctx, p.deps, st, transactions)
}

// applyGYTCheckingHeader reads the metadata block in the first nine rows.
// Labels live in column A:
//
//	Nombre de la cuenta: JUAN PEREZ
//	Cuenta: MONET (QTZ) 34-38089-1
//	Saldo total: 1,500.25
func applyGYTCheckingHeader(grid Grid, st *model.StatementFile) {
	accountType, currency, number, holder := "", "", "", ""
	var opening float64

	limit := 9
	if len(grid) < limit {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		cell := grid.Cell(i, 0)
		switch {
		case strings.Contains(cell, "Nombre de la cuenta:"):
			holder = afterColon(cell)
		case strings.Contains(cell, "Cuenta:"):
			fields := strings.Fields(afterColon(cell))
			if len(fields) >= 3 {
				accountType = fields[0]
				currency = fields[1]
				number = fields[len(fields)-1]
			}
		case strings.Contains(cell, "Saldo total:"):
			opening = moneytext.ParseAmount(afterColon(cell))
		}
	}

	st.AccountType = orUnknown(normalizeAccountType(accountType))
	st.Currency = orUnknown(normalizeCurrency(currency))
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
	st.OpeningBalance = opening
}

// parseGYTCheckingGrid reads the movements table. The header sits on row 10
// (index 9) with fixed columns Fecha, Descripción, Lugar, Débito, Crédito,
// Saldo; data follows until the first blank row. Amount is credit minus
// debit.
func parseGYTCheckingGrid(grid Grid, currency string) ([]model.Transaction, error) {
	const headerRow = 9
	if len(grid) <= headerRow+1 {
		return nil, common.ErrNoStatementTable
	}

	var transactions []model.Transaction
	for i := headerRow + 1; i < len(grid); i++ {
		if grid.IsBlankRow(i) {
			break
		}

		date, err := moneytext.ParseDate(grid.Cell(i, 0), 0)
		if err != nil {
			continue
		}

		debit := moneytext.ParseAmount(grid.Cell(i, 3))
		credit := moneytext.ParseAmount(grid.Cell(i, 4))
		transactions = append(transactions, model.Transaction{
			Date:        date,
			Description: grid.Cell(i, 1),
			Place:       grid.Cell(i, 2),
			Currency:    currency,
			Amount:      credit - debit,
		})
	}
	return transactions, nil
}

// GYTCheckingPDF parses the mailed PDF statement.
type GYTCheckingPDF struct {
	deps Deps
}

// NewGYTCheckingPDF creates the parser.
func NewGYTCheckingPDF(deps Deps) *GYTCheckingPDF {
	return &GYTCheckingPDF{deps: deps}
}

// Parse implements Parser.
func (p *GYTCheckingPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	applyGYTCheckingPDFHeader(lines, st)
	transactions, err := parseGYTCheckingPDFLines(lines, st.Currency)
	if err != nil {
		return 0, err
	}
	return commit(ctx, p.deps, st, transactions)
}

var gytSaldoInicialRe = regexp.MustCompile(`Saldo inicial\s+([\d,\.]+)`)

// Header lines look like:
//
//	Nombre cuenta: JUAN PEREZ
//	Cuenta: MONETARIO QTZ. 34-38089-1
//	Saldo inicial 1,500.25
func applyGYTCheckingPDFHeader(lines []string, st *model.StatementFile) {
	limit := 8
	if len(lines) < limit {
		limit = len(lines)
	}

	accountType, currency, number, holder := "", "", "", ""
	var opening float64
	for _, line := range lines[:limit] {
		switch {
		case strings.Contains(line, "Nombre cuenta:"):
			holder = strings.TrimSpace(strings.SplitN(line, "Nombre cuenta:", 2)[1])
		case strings.Contains(line, "Cuenta:"):
			fields := strings.Fields(strings.TrimSpace(strings.SplitN(line, "Cuenta:", 2)[1]))
			if len(fields) >= 3 {
				accountType = fields[0]
				currency = fields[1]
				number = fields[len(fields)-1]
			}
		case strings.Contains(line, "Saldo inicial"):
			if m := gytSaldoInicialRe.FindStringSubmatch(line); m != nil {
				opening = moneytext.ParseAmount(m[1])
			}
		}
	}

	st.AccountType = orUnknown(normalizeAccountType(accountType))
	st.Currency = orUnknown(normalizeCurrency(currency))
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
	st.OpeningBalance = opening
}

// Movement rows carry a signed amount in the Crédito/Débito column:
//
//	02/06/2025 1234567 PAGO SERVICIO LUZ -350.00 1,150.25
var gytCheckingRowRe = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{4})\s+(\S+)\s+(.+?)\s+(-?[\d,]+\.\d{2})\s+(-?[\d,]+\.\d{2})$`)

func parseGYTCheckingPDFLines(lines []string, currency string) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for _, line := range lines {
		m := gytCheckingRowRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		date, err := moneytext.ParseDate(m[1], 0)
		if err != nil {
			continue
		}

		transactions = append(transactions, model.Transaction{
			Date:           date,
			DocumentNumber: m[2],
			Description:    strings.TrimSpace(m[3]),
			Currency:       currency,
			Amount:         moneytext.ParseAmount(m[4]),
		})
	}

	if len(transactions) == 0 {
		return nil, common.ErrNoStatementTable
	}
	return transactions, nil
}
