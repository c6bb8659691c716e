package parser

import (
	"context"
	"strings"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// BICardXLS parses the Banco Industrial credit card export ("tc-bi"), a
// legacy .xls workbook. Metadata sits in fixed cells, the movements header on
// row 12 and data below it until the first blank row.
type BICardXLS struct {
	deps Deps
}

// NewBICardXLS creates the parser.
func NewBICardXLS(deps Deps) *BICardXLS {
	return &BICardXLS{deps: deps}
}

// Parse implements Parser.
func (p *BICardXLS) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	grid, err := ReadXLSGrid(path)
	if err != nil {
		return 0, err
	}

	applyBICardHeader(grid, st)
	transactions, err := parseBICardGrid(grid, st.Currency)
	if err != nil {
		return 0, err
	}
	return commit(ctx, p.deps, st, transactions)
}

// applyBICardHeader reads holder, card number and currency from cells B3, B5
// and B7. The currency cell prints a symbol ("Q." or "$.").
func applyBICardHeader(grid Grid, st *model.StatementFile) {
	holder := grid.Cell(2, 1)
	number := grid.Cell(4, 1)
	currencyCell := strings.ToUpper(grid.Cell(6, 1))

	currency := "GTQ"
	if strings.Contains(currencyCell, "$") || strings.Contains(currencyCell, "USD") {
		currency = "USD"
	}

	st.AccountType = "TC"
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
	st.Currency = currency
}

// parseBICardGrid reads the movements table. The header row is at index 11;
// the bank's export misspells one of its labels ("TIPO DE MOVMIENTO"), so
// both spellings are accepted. Rows typed DEBITO or CONSUMO are outflows.
func parseBICardGrid(grid Grid, currency string) ([]model.Transaction, error) {
	const headerRow = 11
	if len(grid) <= headerRow+1 {
		return nil, common.ErrNoStatementTable
	}

	cols := headerIndex(grid.Row(headerRow))
	dateCol := columnOf(cols, "FECHA")
	kindCol := columnOf(cols, "TIPO DE MOVMIENTO", "TIPO DE MOVIMIENTO")
	docCol := columnOf(cols, "NO. DOC")
	descCol := columnOf(cols, "COMERCIO")
	amountCol := columnOf(cols, "VALOR")
	if dateCol < 0 || amountCol < 0 {
		return nil, common.ErrNoStatementTable
	}

	var transactions []model.Transaction
	for i := headerRow + 1; i < len(grid); i++ {
		if grid.IsBlankRow(i) {
			break
		}

		date, err := moneytext.ParseDate(grid.Cell(i, dateCol), 0)
		if err != nil {
			continue
		}

		amount := moneytext.ParseAmount(grid.Cell(i, amountCol))
		kind := strings.ToUpper(grid.Cell(i, kindCol))
		if kind == "DEBITO" || kind == "CONSUMO" {
			amount = -amount
		}

		transactions = append(transactions, model.Transaction{
			Date:           date,
			Description:    grid.Cell(i, descCol),
			DocumentNumber: grid.Cell(i, docCol),
			Currency:       currency,
			Amount:         amount,
		})
	}
	return transactions, nil
}
