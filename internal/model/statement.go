package model

import "time"

// StatementFile represents one uploaded source document. The content hash is
// the uniqueness key that prevents duplicate ingestion. Header metadata
// (bank, account number, holder, currency) is filled in by the parser before
// any transactions are written.
type StatementFile struct {
	UploadedAt     time.Time
	Type           string
	Filename       string
	Hash           string
	Bank           string
	AccountType    string
	AccountNumber  string
	Holder         string
	Currency       string
	OpeningBalance float64
	OwnerID        *int64
	ID             int64
}
