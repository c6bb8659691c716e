package parser

import (
	"context"
	"math"
	"path/filepath"
	"strings"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// GenericMovements parses the catch-all import format ("generic"): a csv or
// xlsx with headers cuenta, titular, fecha, descripcion, monto, tipo and
// optional currency and document columns. Unlike bank exports, each row names
// its own account, so accounts are resolved per row instead of once per file.
type GenericMovements struct {
	deps Deps
}

// NewGenericMovements creates the parser.
func NewGenericMovements(deps Deps) *GenericMovements {
	return &GenericMovements{deps: deps}
}

// Parse implements Parser.
func (p *GenericMovements) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	var grid Grid
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err := ReadCSVRecords(path)
		if err != nil {
			return 0, err
		}
		grid = Grid(records)
	default:
		g, err := ReadXLSXGrid(path)
		if err != nil {
			return 0, err
		}
		grid = g
	}

	if len(grid) < 2 {
		return 0, common.ErrNoStatementTable
	}

	cols := headerIndex(grid.Row(0))
	accountCol := columnOf(cols, "CUENTA", "NUMERO_CUENTA", "NÚMERO_CUENTA")
	holderCol := columnOf(cols, "TITULAR")
	dateCol := columnOf(cols, "FECHA")
	descCol := columnOf(cols, "DESCRIPCION", "DESCRIPCIÓN")
	amountCol := columnOf(cols, "MONTO")
	kindCol := columnOf(cols, "TIPO")
	accountCurrencyCol := columnOf(cols, "MONEDA_CUENTA", "MONEDA")
	moveCurrencyCol := columnOf(cols, "MONEDA_MOV", "MONEDA_MOVIMIENTO")
	docCol := columnOf(cols, "NUMERO_DOCUMENTO", "NÚMERO_DOCUMENTO", "NO. DOC")
	for _, col := range []int{accountCol, holderCol, dateCol, descCol, amountCol, kindCol} {
		if col < 0 {
			return 0, common.ErrNoStatementTable
		}
	}

	if st.Bank == "" {
		st.Bank = "GEN"
	}
	st.AccountType = "GEN"
	st.AccountNumber = orUnknown(grid.Cell(1, accountCol))
	st.Holder = orUnknown(grid.Cell(1, holderCol))
	st.Currency = orUnknown(normalizeCurrency(grid.Cell(1, accountCurrencyCol)))
	if st.Currency == metadataUnknown {
		st.Currency = "GTQ"
	}
	if err := p.deps.Store.UpdateStatementMetadata(ctx, st); err != nil {
		return 0, err
	}

	// Rows usually repeat the same account, so resolutions are cached by the
	// number as written.
	accounts := make(map[string]*model.Account)
	resolve := func(number, holder, currency string) (*model.Account, error) {
		if number == "" {
			number = st.AccountNumber
		}
		if account, ok := accounts[number]; ok {
			return account, nil
		}
		rowFile := *st
		rowFile.AccountNumber = number
		if holder != "" {
			rowFile.Holder = holder
		}
		if currency != "" {
			rowFile.Currency = currency
		}
		account, err := p.deps.Accounts.FindOrCreate(ctx, &rowFile)
		if err != nil {
			return nil, err
		}
		accounts[number] = account
		return account, nil
	}

	var transactions []model.Transaction
	for i := 1; i < len(grid); i++ {
		date, err := moneytext.ParseDate(grid.Cell(i, dateCol), 0)
		if err != nil {
			continue
		}

		amount := moneytext.ParseAmount(grid.Cell(i, amountCol))
		if amount == 0 {
			continue
		}

		accountCurrency := normalizeCurrency(grid.Cell(i, accountCurrencyCol))
		account, err := resolve(grid.Cell(i, accountCol), grid.Cell(i, holderCol), accountCurrency)
		if err != nil {
			return 0, err
		}

		currency := normalizeCurrency(grid.Cell(i, moveCurrencyCol))
		if currency == "" {
			currency = accountCurrency
		}
		if currency == "" {
			currency = "GTQ"
		}

		amount = signByKindToken(amount, grid.Cell(i, kindCol))
		transactions = append(transactions, model.Transaction{
			Date:           date,
			Description:    grid.Cell(i, descCol),
			DocumentNumber: grid.Cell(i, docCol),
			Currency:       currency,
			Amount:         amount,
			Kind:           model.KindForAmount(amount),
			AccountID:      account.ID,
			StatementID:    st.ID,
			OwnerID:        st.OwnerID,
		})
	}

	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	if err := p.deps.Store.SaveTransactions(ctx, transactions); err != nil {
		return 0, err
	}
	return len(transactions), nil
}

// signByKindToken resolves polarity from the tipo column. Credit wordings
// make the amount positive, everything else negative.
func signByKindToken(amount float64, kind string) float64 {
	lower := strings.ToLower(kind)
	for _, token := range []string{"credito", "crédito", "abono", "pago"} {
		if strings.Contains(lower, token) {
			return math.Abs(amount)
		}
	}
	return -math.Abs(amount)
}
