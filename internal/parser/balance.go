package parser

import "strings"

// creditKeywords are the description tokens that mark an inflow when a
// running-balance statement gives no balance to diff against (the first row
// after a missing anchor).
var creditKeywords = []string{
	"CREDITO", "DEPOSITO", "PLANILLA", "PAGO", "SALARIO", "SUELDO",
	"TRANSFERENCIA RECIBIDA", "INTERES", "ABONO", "BONIFICACION",
	"ACH", "TIF", "PAGO RECIBIDO", "TRANSFERENCIA",
}

// balanceTracker derives transaction polarity on statements that print
// unsigned amounts next to a running balance. A balance above the previous
// one means an inflow; equal or below means an outflow. Without a previous
// balance the description keywords decide.
type balanceTracker struct {
	prev    float64
	hasPrev bool
}

// Seed sets the opening balance the first row diffs against.
func (b *balanceTracker) Seed(balance float64) {
	b.prev = balance
	b.hasPrev = true
}

// Signed returns the signed amount for one row and advances the tracker to
// that row's balance.
func (b *balanceTracker) Signed(amount, balance float64, description string) float64 {
	credit := false
	if b.hasPrev {
		credit = balance > b.prev
	} else {
		credit = looksLikeCredit(description)
	}
	b.prev = balance
	b.hasPrev = true

	if credit {
		return amount
	}
	return -amount
}

func looksLikeCredit(description string) bool {
	desc := strings.ToUpper(description)
	for _, keyword := range creditKeywords {
		if strings.Contains(desc, keyword) {
			return true
		}
	}
	return false
}
