package model

import "time"

// ExchangeRate maps a currency code to its value in the reporting currency
// (GTQ). Maintained here, consumed by external reporting.
type ExchangeRate struct {
	UpdatedAt time.Time
	Currency  string
	Value     float64
	ID        int64
}
