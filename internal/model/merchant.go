package model

// Treatment indicates how a merchant's transactions are booked for reporting.
type Treatment string

const (
	// TreatmentIncome marks money coming in (salary, interest).
	TreatmentIncome Treatment = "income"
	// TreatmentExpense marks regular spending.
	TreatmentExpense Treatment = "expense"
	// TreatmentTransfer marks movements between own accounts.
	TreatmentTransfer Treatment = "transfer"
)

// Merchant is a named payee/counterparty bucket transactions are assigned to.
type Merchant struct {
	Name       string
	Treatment  Treatment
	CategoryID int64
	ID         int64
}

// Category groups merchants for reporting.
type Category struct {
	Name string
	ID   int64
}
