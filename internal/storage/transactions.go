package storage

import (
	"context"
	"fmt"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

const transactionColumns = `id, date, description, place, document_number, currency,
	kind, amount, account_id, statement_id, merchant_id, owner_id,
	skip_classification, skip_reports`

func scanTransaction(row interface{ Scan(...any) error }) (*model.Transaction, error) {
	var txn model.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.Date,
		&txn.Description,
		&txn.Place,
		&txn.DocumentNumber,
		&txn.Currency,
		&txn.Kind,
		&txn.Amount,
		&txn.AccountID,
		&txn.StatementID,
		&txn.MerchantID,
		&txn.OwnerID,
		&txn.SkipClassification,
		&txn.SkipReports,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// SaveTransactions inserts a batch of parsed transactions atomically. Either
// the whole statement lands or none of it does.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (date, description, place, document_number, currency,
			kind, amount, account_id, statement_id, merchant_id, owner_id,
			skip_classification, skip_reports)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		if _, execErr := stmt.ExecContext(ctx,
			txn.Date, txn.Description, txn.Place, txn.DocumentNumber, txn.Currency,
			txn.Kind, txn.Amount, txn.AccountID, txn.StatementID, txn.MerchantID, txn.OwnerID,
			txn.SkipClassification, txn.SkipReports,
		); execErr != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", i, execErr)
		}
	}

	return tx.Commit()
}

// ListUnassignedTransactions retrieves classifiable transactions that have no
// merchant yet, in insertion order.
func (s *SQLiteStorage) ListUnassignedTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE merchant_id IS NULL AND skip_classification = 0
		ORDER BY id
	`)
}

// ListTransactionsByStatement retrieves the transactions ingested from one
// statement file.
func (s *SQLiteStorage) ListTransactionsByStatement(ctx context.Context, statementID int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(statementID, "statementID"); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE statement_id = ?
		ORDER BY id
	`, statementID)
}

// ListAllClassifiable retrieves every transaction eligible for rule matching,
// assigned or not. Used by full reclassification.
func (s *SQLiteStorage) ListAllClassifiable(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE skip_classification = 0
		ORDER BY id
	`)
}

func (s *SQLiteStorage) listTransactionsTx(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// Assignment links one transaction to the merchant a rule matched.
type Assignment struct {
	TransactionID int64
	MerchantID    int64
}

// ApplyAssignments writes a batch of merchant assignments in one transaction.
// When reset is true, every classifiable transaction loses its merchant first,
// so a full reclassification is a single atomic pass.
func (s *SQLiteStorage) ApplyAssignments(ctx context.Context, assignments []Assignment, reset bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if reset {
		if _, err := tx.ExecContext(ctx, `
			UPDATE transactions SET merchant_id = NULL WHERE skip_classification = 0
		`); err != nil {
			return fmt.Errorf("failed to reset assignments: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE transactions SET merchant_id = ? WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare assignment update: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range assignments {
		if _, execErr := stmt.ExecContext(ctx, a.MerchantID, a.TransactionID); execErr != nil {
			return fmt.Errorf("failed to assign transaction %d: %w", a.TransactionID, execErr)
		}
	}

	return tx.Commit()
}

// SetTransactionFlags updates the per-transaction skip flags.
func (s *SQLiteStorage) SetTransactionFlags(ctx context.Context, id int64, skipClassification, skipReports bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET skip_classification = ?, skip_reports = ? WHERE id = ?
	`, skipClassification, skipReports, id)
	if err != nil {
		return fmt.Errorf("failed to update transaction flags: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	return nil
}
