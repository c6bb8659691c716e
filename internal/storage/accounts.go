package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

// mapConstraintError translates SQLite unique-constraint violations into the
// application-level duplicate sentinel so callers can recover from insert races.
func mapConstraintError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", common.ErrDuplicateEntry, err)
	}
	return err
}

const accountColumns = `id, created_at, bank, type, number, alias, holder, currency, owner_id`

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.CreatedAt,
		&account.Bank,
		&account.Type,
		&account.Number,
		&account.Alias,
		&account.Holder,
		&account.Currency,
		&account.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccountByID retrieves a single account.
func (s *SQLiteStorage) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	account, err := scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountByNumber retrieves the account whose canonical or alternate number
// matches exactly, restricted to the given bank and account type prefix.
func (s *SQLiteStorage) GetAccountByNumber(ctx context.Context, bank, typePrefix, number string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(number, "number"); err != nil {
		return nil, err
	}

	account, err := scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE bank = ? AND type LIKE ? || '%'
		  AND (number = ? OR id IN (SELECT account_id FROM account_numbers WHERE number = ?))
		LIMIT 1
	`, bank, typePrefix, number, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account number %s", common.ErrNotFound, number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}
	return account, nil
}

// ListAccounts retrieves all accounts ordered by bank, type and number.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listAccountsTx(ctx, s.db, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY bank, type, number
	`)
}

// ListAccountsByBank retrieves the accounts of one bank whose type starts with
// the given prefix.
func (s *SQLiteStorage) ListAccountsByBank(ctx context.Context, bank, typePrefix string) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(bank, "bank"); err != nil {
		return nil, err
	}
	return s.listAccountsTx(ctx, s.db, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE bank = ? AND type LIKE ? || '%'
		ORDER BY id
	`, bank, typePrefix)
}

func (s *SQLiteStorage) listAccountsTx(ctx context.Context, q queryable, query string, args ...any) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan account: %w", scanErr)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount inserts a new account and fills in its ID. A unique-number
// collision is reported as common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	if account.Currency == "" {
		account.Currency = "GTQ"
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (bank, type, number, alias, holder, currency, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, account.Bank, account.Type, account.Number, account.Alias, account.Holder, account.Currency, account.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", mapConstraintError(err))
	}

	account.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account ID: %w", err)
	}
	return nil
}

// UpdateAccount updates the mutable fields of an account.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	if err := validateID(account.ID, "account.ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET bank = ?, type = ?, number = ?, alias = ?, holder = ?, currency = ?, owner_id = ?
		WHERE id = ?
	`, account.Bank, account.Type, account.Number, account.Alias, account.Holder, account.Currency, account.OwnerID, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", mapConstraintError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: account %d", common.ErrNotFound, account.ID)
	}
	return nil
}

// ListAccountNumbers retrieves the alternate numbers registered for an account.
func (s *SQLiteStorage) ListAccountNumbers(ctx context.Context, accountID int64) ([]model.AlternateNumber, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, account_id
		FROM account_numbers
		WHERE account_id = ?
		ORDER BY id
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query account numbers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var numbers []model.AlternateNumber
	for rows.Next() {
		var n model.AlternateNumber
		if scanErr := rows.Scan(&n.ID, &n.Number, &n.AccountID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan account number: %w", scanErr)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account numbers: %w", err)
	}
	return numbers, nil
}

// AddAccountNumber registers an alternate number for an account.
func (s *SQLiteStorage) AddAccountNumber(ctx context.Context, alt *model.AlternateNumber) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if alt == nil {
		return fmt.Errorf("%w: alt", ErrNilParameter)
	}
	if err := validateString(alt.Number, "alt.Number"); err != nil {
		return err
	}
	if err := validateID(alt.AccountID, "alt.AccountID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO account_numbers (number, account_id)
		VALUES (?, ?)
	`, alt.Number, alt.AccountID)
	if err != nil {
		return fmt.Errorf("failed to add account number: %w", mapConstraintError(err))
	}

	alt.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account number ID: %w", err)
	}
	return nil
}

// MergeAccounts folds the source account into the destination. Transactions
// and statement references move over, the source's numbers become alternates
// of the destination, and the source row is removed. Everything happens in one
// transaction.
func (s *SQLiteStorage) MergeAccounts(ctx context.Context, sourceID, destID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(sourceID, "sourceID"); err != nil {
		return err
	}
	if err := validateID(destID, "destID"); err != nil {
		return err
	}
	if sourceID == destID {
		return fmt.Errorf("%w: cannot merge an account into itself", ErrInvalidAccount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	source, err := scanAccount(tx.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ?
	`, sourceID))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: account %d", common.ErrNotFound, sourceID)
	}
	if err != nil {
		return fmt.Errorf("failed to load source account: %w", err)
	}

	var destExists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = ?)`, destID).Scan(&destExists); err != nil {
		return fmt.Errorf("failed to check destination account: %w", err)
	}
	if !destExists {
		return fmt.Errorf("%w: account %d", common.ErrNotFound, destID)
	}

	statements := []struct {
		query string
		args  []any
	}{
		{`UPDATE transactions SET account_id = ? WHERE account_id = ?`, []any{destID, sourceID}},
		{`UPDATE account_numbers SET account_id = ? WHERE account_id = ?`, []any{destID, sourceID}},
		{`DELETE FROM accounts WHERE id = ?`, []any{sourceID}},
		{`INSERT INTO account_numbers (number, account_id) VALUES (?, ?)`, []any{source.Number, destID}},
	}
	for _, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt.query, stmt.args...); execErr != nil {
			return fmt.Errorf("failed to merge accounts: %w", mapConstraintError(execErr))
		}
	}

	return tx.Commit()
}
