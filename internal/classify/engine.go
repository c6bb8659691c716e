// Package classify assigns transactions to merchants by running the stored
// rule set over their descriptions.
package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcgiron/centavo/internal/model"
	"github.com/jcgiron/centavo/internal/ruleset"
	"github.com/jcgiron/centavo/internal/storage"
)

// Store is the persistence surface the engine needs.
type Store interface {
	ListRules(ctx context.Context) ([]model.Rule, error)
	ListUnassignedTransactions(ctx context.Context) ([]model.Transaction, error)
	ListAllClassifiable(ctx context.Context) ([]model.Transaction, error)
	ApplyAssignments(ctx context.Context, assignments []storage.Assignment, reset bool) error
}

// Engine runs classification passes.
type Engine struct {
	store Store
}

// New creates a classification engine backed by the given store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Summary reports the outcome of one classification pass.
type Summary struct {
	Considered int
	Matched    int
}

// ClassifyNew assigns merchants to transactions that don't have one yet.
// Already assigned transactions are left alone.
func (e *Engine) ClassifyNew(ctx context.Context) (*Summary, error) {
	transactions, err := e.store.ListUnassignedTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned transactions: %w", err)
	}
	return e.run(ctx, transactions, false)
}

// ReclassifyAll clears every assignment and reruns the rule set over all
// classifiable transactions. Reset and reassignment commit together, so a
// failed pass leaves the previous assignments intact.
func (e *Engine) ReclassifyAll(ctx context.Context) (*Summary, error) {
	transactions, err := e.store.ListAllClassifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return e.run(ctx, transactions, true)
}

func (e *Engine) run(ctx context.Context, transactions []model.Transaction, reset bool) (*Summary, error) {
	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	set := ruleset.Compile(rules)

	var assignments []storage.Assignment
	for i := range transactions {
		txn := &transactions[i]
		if merchantID, ok := match(set, txn.Description); ok {
			assignments = append(assignments, storage.Assignment{
				TransactionID: txn.ID,
				MerchantID:    merchantID,
			})
		}
	}

	if err := e.store.ApplyAssignments(ctx, assignments, reset); err != nil {
		return nil, fmt.Errorf("failed to apply assignments: %w", err)
	}

	summary := &Summary{
		Considered: len(transactions),
		Matched:    len(assignments),
	}
	slog.Info("classification pass finished",
		"considered", summary.Considered,
		"matched", summary.Matched,
		"reset", reset)
	return summary, nil
}

// match returns the merchant claimed by the first include rule that matches
// the description and isn't vetoed by that merchant's own excludes.
func match(set *ruleset.Set, description string) (int64, bool) {
	for i := range set.Includes {
		rule := &set.Includes[i]
		if !rule.Matches(description) {
			continue
		}
		if set.Vetoed(rule.Rule.MerchantID, description) {
			continue
		}
		return rule.Rule.MerchantID, true
	}
	return 0, false
}

// Proposed pairs one transaction with the merchant a classification pass
// would assign it to.
type Proposed struct {
	Transaction model.Transaction
	MerchantID  int64
}

// Preview evaluates an in-memory transaction list against the current rule
// set and returns the assignments a pass would make, without writing
// anything. The transactions don't need to exist in storage.
func (e *Engine) Preview(ctx context.Context, transactions []model.Transaction) ([]Proposed, error) {
	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return propose(ruleset.Compile(rules), transactions), nil
}

func propose(set *ruleset.Set, transactions []model.Transaction) []Proposed {
	var proposed []Proposed
	for i := range transactions {
		if merchantID, ok := match(set, transactions[i].Description); ok {
			proposed = append(proposed, Proposed{
				Transaction: transactions[i],
				MerchantID:  merchantID,
			})
		}
	}
	return proposed
}

// PreviewRule reports the stored transactions a candidate rule would affect
// if it were saved, without writing anything. The candidate is evaluated
// appended to the stored rules, so existing rules still claim their matches
// first and the merchant's stored excludes still veto an include candidate.
// An exclude candidate reports the matches it would take away from its
// merchant.
func (e *Engine) PreviewRule(ctx context.Context, candidate model.Rule) ([]model.Transaction, error) {
	rules, err := e.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	transactions, err := e.store.ListAllClassifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	combined := make([]model.Rule, 0, len(rules)+1)
	combined = append(combined, rules...)
	combined = append(combined, candidate)

	before := assignmentsByTransaction(propose(ruleset.Compile(rules), transactions))
	after := assignmentsByTransaction(propose(ruleset.Compile(combined), transactions))

	var affected []model.Transaction
	for i := range transactions {
		txn := &transactions[i]
		was, hadBefore := before[txn.ID]
		now, hasAfter := after[txn.ID]
		switch candidate.Kind {
		case model.RuleExclude:
			// A veto matters only where the merchant currently wins.
			if hadBefore && was == candidate.MerchantID && (!hasAfter || now != candidate.MerchantID) {
				affected = append(affected, *txn)
			}
		default:
			if !hadBefore && hasAfter && now == candidate.MerchantID {
				affected = append(affected, *txn)
			}
		}
	}
	return affected, nil
}

func assignmentsByTransaction(proposed []Proposed) map[int64]int64 {
	byTxn := make(map[int64]int64, len(proposed))
	for _, p := range proposed {
		byTxn[p.Transaction.ID] = p.MerchantID
	}
	return byTxn
}
