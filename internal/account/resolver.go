// Package account resolves the account numbers printed on statements to
// stored accounts, creating them on first sight.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

// Store is the persistence surface the resolver needs.
type Store interface {
	GetAccountByNumber(ctx context.Context, bank, typePrefix, number string) (*model.Account, error)
	ListAccountsByBank(ctx context.Context, bank, typePrefix string) ([]model.Account, error)
	ListAccountNumbers(ctx context.Context, accountID int64) ([]model.AlternateNumber, error)
	AddAccountNumber(ctx context.Context, alt *model.AlternateNumber) error
	CreateAccount(ctx context.Context, account *model.Account) error
}

// Resolver maps statement account numbers onto stored accounts.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// cleanNumber strips everything that isn't a letter or digit, so that
// "046-001122-3" and "0460011223" compare equal across export formats.
func cleanNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// FindOrCreate resolves the account a statement belongs to. Resolution goes
// exact match first, then a separator-insensitive comparison that records the
// new spelling as an alternate, and finally creates the account. A concurrent
// create racing on the unique number is recovered by re-querying.
func (r *Resolver) FindOrCreate(ctx context.Context, st *model.StatementFile) (*model.Account, error) {
	if st.AccountNumber == "" {
		return nil, common.ErrNoAccountNumber
	}

	typePrefix := accountTypePrefix(st.AccountType)

	account, err := r.lookup(ctx, st, typePrefix)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	created := &model.Account{
		Bank:     st.Bank,
		Type:     st.AccountType,
		Number:   st.AccountNumber,
		Holder:   st.Holder,
		Currency: st.Currency,
		OwnerID:  st.OwnerID,
	}
	err = r.store.CreateAccount(ctx, created)
	if err == nil {
		slog.Info("created account",
			"bank", created.Bank,
			"type", created.Type,
			"number", created.Number)
		return created, nil
	}
	if errors.Is(err, common.ErrDuplicateEntry) {
		// Lost the insert race. The winner's row is there now.
		return r.lookup(ctx, st, typePrefix)
	}
	return nil, fmt.Errorf("failed to create account: %w", err)
}

func (r *Resolver) lookup(ctx context.Context, st *model.StatementFile, typePrefix string) (*model.Account, error) {
	account, err := r.store.GetAccountByNumber(ctx, st.Bank, typePrefix, st.AccountNumber)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	return r.matchCleaned(ctx, st, typePrefix)
}

// matchCleaned compares the statement number against every candidate account's
// canonical and alternate numbers with separators removed. A hit registers the
// statement's spelling as a new alternate so the next lookup is exact.
func (r *Resolver) matchCleaned(ctx context.Context, st *model.StatementFile, typePrefix string) (*model.Account, error) {
	target := cleanNumber(st.AccountNumber)
	if target == "" {
		return nil, fmt.Errorf("%w: account number %q", common.ErrNotFound, st.AccountNumber)
	}

	candidates, err := r.store.ListAccountsByBank(ctx, st.Bank, typePrefix)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidate := &candidates[i]
		matched := cleanNumber(candidate.Number) == target
		if !matched {
			alternates, altErr := r.store.ListAccountNumbers(ctx, candidate.ID)
			if altErr != nil {
				return nil, altErr
			}
			for _, alt := range alternates {
				if cleanNumber(alt.Number) == target {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}

		addErr := r.store.AddAccountNumber(ctx, &model.AlternateNumber{
			Number:    st.AccountNumber,
			AccountID: candidate.ID,
		})
		if addErr != nil && !errors.Is(addErr, common.ErrDuplicateEntry) {
			return nil, addErr
		}
		slog.Debug("linked alternate account number",
			"account_id", candidate.ID,
			"number", st.AccountNumber)
		return candidate, nil
	}

	return nil, fmt.Errorf("%w: account number %q", common.ErrNotFound, st.AccountNumber)
}

// accountTypePrefix widens the lookup for card accounts: a statement typed
// "TC-VISA" and one typed "TC-MC" can still name the same stored account
// family, so cards match on the "TC" prefix while deposit accounts match
// their exact type.
func accountTypePrefix(accountType string) string {
	if strings.HasPrefix(accountType, "TC") {
		return "TC"
	}
	return accountType
}
