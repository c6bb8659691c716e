package model

import "time"

// Account identifies a real-world bank or card account. The canonical number
// is unique; statements that spell the same account differently are linked
// through AlternateNumber rows rather than duplicate accounts.
type Account struct {
	CreatedAt time.Time
	Bank      string
	Type      string
	Number    string
	Alias     string
	Holder    string
	Currency  string
	OwnerID   *int64
	ID        int64
}

// AlternateNumber is a secondary identifier for an account, as seen in a
// different export format (with/without separators, masked card numbers).
// Ownership is strictly one-way: an alternate always resolves to one account.
type AlternateNumber struct {
	Number    string
	AccountID int64
	ID        int64
}
