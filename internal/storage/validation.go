package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jcgiron/centavo/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidID          = errors.New("id must be positive")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidMerchant    = errors.New("invalid merchant")
	ErrInvalidRule        = errors.New("invalid rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures an identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if txn.AccountID <= 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.StatementID <= 0 {
		return fmt.Errorf("%w: missing statement ID", ErrInvalidTransaction)
	}

	switch txn.Kind {
	case model.KindDebit, model.KindCredit:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, txn.Kind)
	}

	if model.KindForAmount(txn.Amount) != txn.Kind {
		return fmt.Errorf("%w: kind %q disagrees with amount %.2f", ErrInvalidTransaction, txn.Kind, txn.Amount)
	}
	return nil
}

// validateAccount validates an account.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.Bank) == "" {
		return fmt.Errorf("%w: missing bank", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Type) == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Number) == "" {
		return fmt.Errorf("%w: missing number", ErrInvalidAccount)
	}
	return nil
}

// validateMerchant validates a merchant.
func validateMerchant(merchant *model.Merchant) error {
	if merchant == nil {
		return fmt.Errorf("%w: merchant", ErrNilParameter)
	}
	if strings.TrimSpace(merchant.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidMerchant)
	}
	switch merchant.Treatment {
	case model.TreatmentIncome, model.TreatmentExpense, model.TreatmentTransfer:
	default:
		return fmt.Errorf("%w: unknown treatment %q", ErrInvalidMerchant, merchant.Treatment)
	}
	return nil
}

// validateRule validates a classification rule.
func validateRule(rule *model.Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	switch rule.Kind {
	case model.RuleInclude, model.RuleExclude:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, rule.Kind)
	}
	if rule.MerchantID <= 0 {
		return fmt.Errorf("%w: missing merchant ID", ErrInvalidRule)
	}
	return nil
}
