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

// BICardVirtual parses the BI virtual card export ("tc-bi-virtual") from
// bicreditonline. The spreadsheet download carries a one-row metadata band
// above the movements table; the csv download starts straight at the header.
// Both spell the columns Operación | Movimiento | tipo de movimiento |
// no. doc | concepto | valor | saldo.
type BICardVirtual struct {
	deps Deps
}

// NewBICardVirtual creates the parser.
func NewBICardVirtual(deps Deps) *BICardVirtual {
	return &BICardVirtual{deps: deps}
}

// Parse implements Parser.
func (p *BICardVirtual) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	var transactions []model.Transaction
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err := ReadCSVRecords(path)
		if err != nil {
			return 0, err
		}
		applyBIVirtualDefaults(st, "")
		transactions = parseBIVirtualCSV(records)
	case ".xls":
		grid, err := ReadXLSGrid(path)
		if err != nil {
			return 0, err
		}
		transactions = p.fromGrid(grid, st)
	default:
		grid, err := ReadXLSXGrid(path)
		if err != nil {
			return 0, err
		}
		transactions = p.fromGrid(grid, st)
	}

	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

func (p *BICardVirtual) fromGrid(grid Grid, st *model.StatementFile) []model.Transaction {
	st.Holder = orUnknown(grid.Cell(0, 1))
	applyBIVirtualDefaults(st, grid.Cell(0, 3))
	return parseBIVirtualGrid(grid)
}

// applyBIVirtualDefaults fills the metadata the format does not carry. The
// csv download has no header band at all, so it keeps whatever the file
// record already holds and falls back to the fixed placeholder number.
func applyBIVirtualDefaults(st *model.StatementFile, number string) {
	st.AccountType = "TC"
	st.Currency = "GTQ"
	if strings.TrimSpace(number) != "" {
		st.AccountNumber = strings.TrimSpace(number)
	}
	if strings.TrimSpace(st.AccountNumber) == "" {
		st.AccountNumber = "BI-Virtual"
	}
	if strings.TrimSpace(st.Holder) == "" {
		st.Holder = metadataUnknown
	}
}

// parseBIVirtualGrid reads movements from row 4 onward (fixed columns, header
// band above) and stops at the first row without a parseable date.
func parseBIVirtualGrid(grid Grid) []model.Transaction {
	var transactions []model.Transaction
	for i := 3; i < len(grid); i++ {
		date, err := moneytext.ParseDate(grid.Cell(i, 0), 0)
		if err != nil {
			break
		}

		amount := moneytext.ParseAmount(grid.Cell(i, 5))
		if amount == 0 {
			continue
		}

		transactions = append(transactions, model.Transaction{
			Date:           date,
			Description:    grid.Cell(i, 4),
			DocumentNumber: grid.Cell(i, 3),
			Currency:       "GTQ",
			Amount:         signByMovementType(amount, grid.Cell(i, 2)),
		})
	}
	return transactions
}

// parseBIVirtualCSV reads the header-first csv layout. The valor column is
// the amount; some exports leave it blank and print the figure under saldo
// instead.
func parseBIVirtualCSV(records [][]string) []model.Transaction {
	if len(records) < 2 {
		return nil
	}

	cols := headerIndex(records[0])
	opCol := columnOf(cols, "OPERACIÓN", "OPERACION")
	moveCol := columnOf(cols, "MOVIMIENTO")
	kindCol := columnOf(cols, "TIPO DE MOVIMIENTO", "TIPO DE", "TIPO")
	docCol := columnOf(cols, "NO. DOC", "NO. DOC.")
	descCol := columnOf(cols, "CONCEPTO")
	valueCol := columnOf(cols, "VALOR")
	balanceCol := columnOf(cols, "SALDO")

	grid := Grid(records)
	var transactions []model.Transaction
	for i := 1; i < len(grid); i++ {
		date, err := moneytext.ParseDate(grid.Cell(i, moveCol), 0)
		if err != nil {
			if date, err = moneytext.ParseDate(grid.Cell(i, opCol), 0); err != nil {
				continue
			}
		}

		amount := moneytext.ParseAmount(grid.Cell(i, valueCol))
		if amount == 0 {
			amount = moneytext.ParseAmount(grid.Cell(i, balanceCol))
		}
		if amount == 0 {
			continue
		}

		transactions = append(transactions, model.Transaction{
			Date:           date,
			Description:    grid.Cell(i, descCol),
			DocumentNumber: grid.Cell(i, docCol),
			Currency:       "GTQ",
			Amount:         signByMovementType(amount, grid.Cell(i, kindCol)),
		})
	}
	return transactions
}

// signByMovementType resolves polarity from the movement type column:
// payments and reversals are inflows, everything else (CONSUMO, DEBITO) an
// outflow.
func signByMovementType(amount float64, kind string) float64 {
	upper := strings.ToUpper(kind)
	for _, token := range []string{"PAGO", "ABONO", "EXTORNO", "CREDITO", "CRÉDITO"} {
		if strings.Contains(upper, token) {
			return math.Abs(amount)
		}
	}
	return -math.Abs(amount)
}
