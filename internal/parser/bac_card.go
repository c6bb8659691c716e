package parser

import (
	"context"
	"strings"
	"time"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/moneytext"
)

// BACCardCSV parses the BAC credit card download ("tc-bac"). The file opens
// with a metadata record (card number, holder, cut dates) followed by a few
// summary rows; movements start at record 6 with columns Fecha, Descripción,
// Monto Local, Monto Dólares.
type BACCardCSV struct {
	deps Deps
}

// NewBACCardCSV creates the parser.
func NewBACCardCSV(deps Deps) *BACCardCSV {
	return &BACCardCSV{deps: deps}
}

// Parse implements Parser.
func (p *BACCardCSV) Parse(ctx context.Context, path string, st *model.StatementFile) (int, error) {
	records, err := ReadCSVRecords(path)
	if err != nil {
		return 0, err
	}

	applyBACCardHeader(records, st)
	transactions := parseBACCardRecords(records)
	if len(transactions) == 0 {
		return 0, common.ErrNoStatementTable
	}
	return commit(ctx, p.deps, st, transactions)
}

func applyBACCardHeader(records [][]string, st *model.StatementFile) {
	grid := Grid(records)
	st.AccountType = "TC"
	st.Currency = "GTQ"
	st.AccountNumber = orUnknown(grid.Cell(1, 0))
	st.Holder = orUnknown(grid.Cell(1, 1))
}

// parseBACCardRecords reads movement rows until the trailing summary, which
// announces itself with a non-date first field ("Current", "Balance" or
// blank). BAC prints both charges and payments unsigned in day-first order,
// with a few rows month-first; both orders are tried. The local column wins
// over the dollar column when both carry a figure.
//
// The download shows charges as positive and payments as negative, so the
// sign is flipped to match the outflow-negative convention used everywhere
// else.
func parseBACCardRecords(records [][]string) []model.Transaction {
	grid := Grid(records)
	var transactions []model.Transaction

	for i := 5; i < len(grid); i++ {
		dateStr := grid.Cell(i, 0)
		lower := strings.ToLower(dateStr)
		if dateStr == "" || lower == "current" || lower == "balance" {
			break
		}

		date, err := parseBACDate(dateStr)
		if err != nil {
			continue
		}

		local := moneytext.ParseAmount(grid.Cell(i, 2))
		dollars := moneytext.ParseAmount(grid.Cell(i, 3))

		amount, currency := local, "GTQ"
		if local == 0 {
			amount, currency = dollars, "USD"
		}
		if amount == 0 {
			continue
		}

		transactions = append(transactions, model.Transaction{
			Date:        date,
			Description: grid.Cell(i, 1),
			Currency:    currency,
			Amount:      -amount,
		})
	}
	return transactions
}

// parseBACDate accepts day-first dates and falls back to month-first, which
// BAC mixes into the same file for some rows.
func parseBACDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if date, err := time.Parse("02/01/2006", raw); err == nil {
		return date, nil
	}
	return time.Parse("01/02/2006", raw)
}
