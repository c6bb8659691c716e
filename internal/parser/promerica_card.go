package parser

import (
	"context"
	"strings"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// PromericaCardHTML parses the Promerica credit card statement
// ("tc-promerica"). The bank ships an HTML document with an .xls extension;
// the fourth table holds the metadata block and the seventh the movements.
type PromericaCardHTML struct {
	deps Deps
}

// NewPromericaCardHTML creates the parser.
func NewPromericaCardHTML(deps Deps) *PromericaCardHTML {
	return &PromericaCardHTML{deps: deps}
}

// Parse implements Parser.
func (p *PromericaCardHTML) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	tables, err := ReadHTMLTables(path)
	if err != nil {
		return 0, err
	}
	if len(tables) < 7 {
		return 0, common.ErrNoStatementTable
	}

	applyPromericaHeader(tables[3], st)
	transactions, err := parsePromericaMovements(tables[6])
	if err != nil {
		return 0, err
	}
	return commit(ctx, p.deps, st, transactions)
}

// applyPromericaHeader reads the metadata table. The card number cell has a
// "NNNNNN - TIER" suffix that gets trimmed off.
func applyPromericaHeader(meta Grid, st *model.StatementFile) {
	holder := meta.Cell(1, 1)
	number := meta.Cell(2, 3)
	if before, _, found := strings.Cut(number, "-"); found {
		number = strings.TrimSpace(before)
	}

	st.AccountType = "TC"
	st.Currency = "GTQ|USD"
	st.AccountNumber = orUnknown(number)
	st.Holder = orUnknown(holder)
}

// parsePromericaMovements reads the movements table. Row 0 is the header;
// each row carries its own currency column (QUETZALES or DOLARES) and split
// debit/credit amounts.
func parsePromericaMovements(movs Grid) ([]model.Transaction, error) {
	if len(movs) < 2 {
		return nil, common.ErrNoStatementTable
	}

	cols := headerIndex(movs.Row(0))
	dateCol := columnOf(cols, "FECHA DE OPERACIÓN", "FECHA DE OPERACION")
	descCol := columnOf(cols, "DESCRIPCIÓN", "DESCRIPCION")
	debitCol := columnOf(cols, "DÉBITOS", "DEBITOS")
	creditCol := columnOf(cols, "CRÉDITOS", "CREDITOS")
	refCol := columnOf(cols, "NÚMERO DE REFERENCIA", "NUMERO DE REFERENCIA")
	currencyCol := columnOf(cols, "MONEDA")
	if dateCol < 0 || descCol < 0 {
		return nil, common.ErrNoStatementTable
	}

	var transactions []model.Transaction
	for i := 1; i < len(movs); i++ {
		date, err := moneytext.ParseDate(movs.Cell(i, dateCol), 0)
		if err != nil {
			continue
		}

		debit := moneytext.ParseAmount(movs.Cell(i, debitCol))
		credit := moneytext.ParseAmount(movs.Cell(i, creditCol))

		transactions = append(transactions, model.Transaction{
			Date:           date,
			Description:    movs.Cell(i, descCol),
			DocumentNumber: movs.Cell(i, refCol),
			Currency:       normalizeCurrency(movs.Cell(i, currencyCol)),
			Amount:         credit - debit,
		})
	}

	if len(transactions) == 0 {
		return nil, common.ErrNoStatementTable
	}
	return transactions, nil
}
