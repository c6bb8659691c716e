package parser

import (
	"context"
	"regexp"
	"strings"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// GYT credit card statements ("tc-gyt"). The xlsx export splits movements
// into per-currency debit/credit columns; the PDF prints one signed amount
// with a QTZ/USD token.

// GYTCardXLSX parses the xlsx export.
type GYTCardXLSX struct {
	deps Deps
}

// NewGYTCardXLSX creates the parser.
func NewGYTCardXLSX(deps Deps) *GYTCardXLSX {
	return &GYTCardXLSX{deps: deps}
}

// Parse implements Parser.
func (p *GYTCardXLSX) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	grid, err := ReadXLSXGrid(path)
	if err != nil {
		return 0, err
	}

	applyGYTCardHeader(grid, st)
	transactions, err := parseGYTCardGrid(grid)
	if err != nil {
		return 0, err
	}
	return commit(ctx, p.deps, st, transactions)
}

// applyGYTCardHeader scans the first 13 rows for the holder and card number:
//
//	Nombre de la cuenta: JUAN PEREZ
//	Tarjeta 5522-****-****-8241 ...
func applyGYTCardHeader(grid Grid, st *model.StatementFile) {
	holder, number := "", ""

	limit := 13
	if len(grid) < limit {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range grid.Row(i) {
			switch {
			case strings.HasPrefix(cell, "Nombre de la cuenta:"):
				holder = afterColon(cell)
			case strings.HasPrefix(cell, "Tarjeta"):
				fields := strings.Fields(cell)
				if len(fields) >= 2 {
					number = fields[1]
				}
			}
		}
	}

	st.AccountType = "TC"
	st.Currency = "GTQ|USD"
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
}

// parseGYTCardGrid locates the header row (the one carrying both "Fecha" and
// "Descripción"), then reads movements from two rows below it until the first
// blank row. Each currency has its own debit/credit column pair; the nonzero
// quetzal amount wins, dollars otherwise.
func parseGYTCardGrid(grid Grid) ([]model.Transaction, error) {
	headerRow := grid.FindRow(func(cells []string) bool {
		hasDate, hasDesc := false, false
		for _, c := range cells {
			if c == "Fecha" {
				hasDate = true
			}
			if c == "Descripción" {
				hasDesc = true
			}
		}
		return hasDate && hasDesc
	})
	if headerRow < 0 {
		return nil, common.ErrNoStatementTable
	}

	cols := headerIndex(grid.Row(headerRow))
	dateCol := columnOf(cols, "FECHA")
	refCol := columnOf(cols, "REFERENCIA")
	descCol := columnOf(cols, "DESCRIPCIÓN", "DESCRIPCION")
	creditQCol := columnOf(cols, "CRÉDITO (Q)", "CREDITO (Q)")
	debitQCol := columnOf(cols, "DÉBITO (Q)", "DEBITO (Q)")
	creditDCol := columnOf(cols, "CRÉDITO ($)", "CREDITO ($)")
	debitDCol := columnOf(cols, "DÉBITO ($)", "DEBITO ($)")

	var transactions []model.Transaction
	for i := headerRow + 2; i < len(grid); i++ {
		if grid.IsBlankRow(i) {
			break
		}

		date, err := moneytext.ParseDate(grid.Cell(i, dateCol), 0)
		if err != nil {
			continue
		}

		amountQ := moneytext.ParseAmount(grid.Cell(i, creditQCol)) - moneytext.ParseAmount(grid.Cell(i, debitQCol))
		amountD := moneytext.ParseAmount(grid.Cell(i, creditDCol)) - moneytext.ParseAmount(grid.Cell(i, debitDCol))

		amount, currency := amountQ, "GTQ"
		if amountQ == 0 {
			amount, currency = amountD, "USD"
		}

		transactions = append(transactions, model.Transaction{
			Date:           date,
			Description:    grid.Cell(i, descCol),
			DocumentNumber: grid.Cell(i, refCol),
			Currency:       currency,
			Amount:         amount,
		})
	}
	return transactions, nil
}

// columnOf returns the first present header among the given names, or -1.
func columnOf(cols map[string]int, names ...string) int {
	for _, name := range names {
		if i, ok := cols[name]; ok {
			return i
		}
	}
	return -1
}

// GYTCardPDF parses the mailed PDF statement.
type GYTCardPDF struct {
	deps Deps
}

// NewGYTCardPDF creates the parser.
func NewGYTCardPDF(deps Deps) *GYTCardPDF {
	return &GYTCardPDF{deps: deps}
}

// Parse implements Parser.
func (p *GYTCardPDF) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	lines, err := ExtractPDFLines(path)
	if err != nil {
		return 0, err
	}

	applyGYTCardPDFHeader(lines, st)
	transactions, err := parseGYTCardPDFLines(lines)
	if err != nil {
		return 0, err
	}
	return commit(ctx, p.deps, st, transactions)
}

var gytCardNumberRe = regexp.MustCompile(`\d{4}-[\d*]{4}-[\d*]{4}-\d{4}`)

// Header lines look like:
//
//	Nombre cuenta: JUAN PEREZ 09-07-2025 | 07:18:06
//	Cuenta: TCR 5522-****-****-8241 Día de corte 09 | Día de pago: 04
func applyGYTCardPDFHeader(lines []string, st *model.StatementFile) {
	holder, number := "", ""

	limit := 8
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		switch {
		case strings.Contains(line, "Nombre cuenta:"):
			rest := strings.SplitN(line, "Nombre cuenta:", 2)[1]
			rest = strings.TrimSpace(strings.SplitN(rest, "|", 2)[0])
			// The trailing token is the generation date, not part of the name.
			fields := strings.Fields(rest)
			if len(fields) > 1 {
				holder = strings.Join(fields[:len(fields)-1], " ")
			}
		case strings.Contains(line, "Cuenta:"):
			if m := gytCardNumberRe.FindString(line); m != "" {
				number = m
			}
		}
	}

	st.AccountType = "TC"
	st.Currency = "GTQ|USD"
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
}

// Movement rows print a signed amount with a trailing currency token:
//
//	15/06/2025 8842771 RESTAURANTE KACAO -385.00 QTZ
var gytCardRowRe = regexp.MustCompile(
	`^(\d{1,2}/\d{1,2}/\d{2,4})\s+(\d+)\s+(.+?)\s+(-?[\d,]+\.\d{2})\s*(QTZ|USD)?$`)

func parseGYTCardPDFLines(lines []string) ([]model.Transaction, error) {
	var transactions []model.Transaction
	for _, line := range lines {
		m := gytCardRowRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		date, err := moneytext.ParseDate(m[1], 0)
		if err != nil {
			continue
		}

		currency := "USD"
		if m[5] == "QTZ" || strings.Contains(m[3], "QTZ") {
			currency = "GTQ"
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
