// Package parser turns bank statement exports into normalized transactions.
// Each supported bank/format pair has its own parser; they share the
// extraction helpers in this package and commit through the same pipeline.
package parser

import (
	"context"
	"strings"

	"github.com/jcgiron/centavo/internal/model"
)

// Store is the persistence surface parsers write through.
type Store interface {
	UpdateStatementMetadata(ctx context.Context, st *model.StatementFile) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
}

// AccountResolver maps the statement's account number onto a stored account.
type AccountResolver interface {
	FindOrCreate(ctx context.Context, st *model.StatementFile) (*model.Account, error)
}

// Deps carries the collaborators every parser needs.
type Deps struct {
	Store    Store
	Accounts AccountResolver
}

// Parser ingests one statement file. It returns the number of transactions
// written.
type Parser interface {
	Parse(ctx context.Context, path string, st *model.StatementFile) (int, error)
}

// commit runs the shared tail of every parse: persist the header metadata
// the parser extracted, resolve the account, stamp the foreign keys and
// write the whole batch in one storage transaction.
func commit(ctx context.Context, deps Deps, st *model.StatementFile, transactions []model.Transaction) (int, error) {
	if err := deps.Store.UpdateStatementMetadata(ctx, st); err != nil {
		return 0, err
	}

	account, err := deps.Accounts.FindOrCreate(ctx, st)
	if err != nil {
		return 0, err
	}

	if len(transactions) == 0 {
		return 0, nil
	}

	for i := range transactions {
		txn := &transactions[i]
		txn.AccountID = account.ID
		txn.StatementID = st.ID
		txn.OwnerID = st.OwnerID
		txn.Kind = model.KindForAmount(txn.Amount)
		if txn.Currency == "" {
			txn.Currency = st.Currency
		}
	}

	if err := deps.Store.SaveTransactions(ctx, transactions); err != nil {
		return 0, err
	}
	return len(transactions), nil
}

// normalizeCurrency maps the currency spellings used in statement headers to
// ISO codes.
func normalizeCurrency(raw string) string {
	switch strings.ToUpper(strings.Trim(raw, "().$ ")) {
	case "QTZ", "QUETZALES", "Q":
		return "GTQ"
	case "USD", "DOLARES", "DÓLARES", "US":
		return "USD"
	case "":
		return ""
	default:
		return strings.ToUpper(strings.Trim(raw, "(). "))
	}
}

// normalizeAccountType maps the account-type spellings used in statement
// headers to the short canonical codes.
func normalizeAccountType(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MONETARIO", "MONETARIA":
		return "MONET"
	case "AHORRO", "AHORROS":
		return "AHO"
	default:
		return strings.ToUpper(strings.TrimSpace(raw))
	}
}

// metadataUnknown is the placeholder for header fields a statement did not
// carry. Kept non-empty so partially parsed statements remain identifiable.
const metadataUnknown = "Desconocido"

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return metadataUnknown
	}
	return strings.TrimSpace(s)
}

// afterColon returns the trimmed text after the first colon of a labeled
// header cell ("Nombre de la cuenta: JUAN PEREZ").
func afterColon(s string) string {
	if _, rest, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}
