package model

import "time"

// MovementKind distinguishes funds out from funds in. It is derived from the
// amount sign and must always agree with it.
type MovementKind string

const (
	// KindDebit marks funds leaving the account (negative amount).
	KindDebit MovementKind = "debit"
	// KindCredit marks funds entering the account (positive amount).
	KindCredit MovementKind = "credit"
)

// KindForAmount derives the movement kind from a signed amount.
func KindForAmount(amount float64) MovementKind {
	if amount < 0 {
		return KindDebit
	}
	return KindCredit
}

// Transaction is the canonical movement record every statement format is
// normalized into. Negative amounts are funds out, positive funds in.
type Transaction struct {
	Date               time.Time
	Description        string
	Place              string
	DocumentNumber     string
	Currency           string
	Kind               MovementKind
	Amount             float64
	AccountID          int64
	StatementID        int64
	MerchantID         *int64
	OwnerID            *int64
	SkipClassification bool
	SkipReports        bool
	ID                 int64
}
