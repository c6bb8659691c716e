package model

// RuleKind tells whether a rule selects transactions for its merchant or
// suppresses matches for it.
type RuleKind string

const (
	// RuleInclude assigns matching transactions to the rule's merchant.
	RuleInclude RuleKind = "include"
	// RuleExclude vetoes matches for the rule's own merchant only, never
	// for other merchants.
	RuleExclude RuleKind = "exclude"
)

// Rule is a classification directive attached to one merchant. The criterion
// is a literal substring, a `*` wildcard pattern, or an exact match when
// prefixed with `=`. Stored order is significant: the first matching include
// rule wins.
type Rule struct {
	Label      string
	Kind       RuleKind
	Criterion  string
	MerchantID int64
	ID         int64
}
