// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Ingestion errors.
	ErrUnsupportedStatement = errors.New("unsupported statement type")
	ErrUnsupportedExtension = errors.New("file extension not valid for statement type")
	ErrNoStatementText      = errors.New("no text could be extracted from statement")
	ErrNoStatementTable     = errors.New("no movements table found in statement")
	ErrNoAccountNumber      = errors.New("no account number found in statement")
)
