package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

const statementColumns = `id, uploaded_at, type, filename, file_hash, bank, account_type,
	account_number, holder, currency, opening_balance, owner_id`

func scanStatement(row interface{ Scan(...any) error }) (*model.StatementFile, error) {
	var st model.StatementFile
	err := row.Scan(
		&st.ID,
		&st.UploadedAt,
		&st.Type,
		&st.Filename,
		&st.Hash,
		&st.Bank,
		&st.AccountType,
		&st.AccountNumber,
		&st.Holder,
		&st.Currency,
		&st.OpeningBalance,
		&st.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetStatementByID retrieves a single statement file record.
func (s *SQLiteStorage) GetStatementByID(ctx context.Context, id int64) (*model.StatementFile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	st, err := scanStatement(s.db.QueryRowContext(ctx, `
		SELECT `+statementColumns+`
		FROM statement_files
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: statement %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return st, nil
}

// GetStatementByHash retrieves the statement previously ingested with the
// given content hash, or common.ErrNotFound when the file is new.
func (s *SQLiteStorage) GetStatementByHash(ctx context.Context, hash string) (*model.StatementFile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return nil, err
	}

	st, err := scanStatement(s.db.QueryRowContext(ctx, `
		SELECT `+statementColumns+`
		FROM statement_files
		WHERE file_hash = ?
	`, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: statement hash %s", common.ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement by hash: %w", err)
	}
	return st, nil
}

// ListStatements retrieves all statement files, most recent upload first.
func (s *SQLiteStorage) ListStatements(ctx context.Context) ([]model.StatementFile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+statementColumns+`
		FROM statement_files
		ORDER BY uploaded_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query statements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statements []model.StatementFile
	for rows.Next() {
		st, scanErr := scanStatement(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", scanErr)
		}
		statements = append(statements, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate statements: %w", err)
	}
	return statements, nil
}

// CreateStatement inserts a new statement file record and fills in its ID. A
// content-hash collision is reported as common.ErrDuplicateEntry.
func (s *SQLiteStorage) CreateStatement(ctx context.Context, st *model.StatementFile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("%w: statement", ErrNilParameter)
	}
	if err := validateString(st.Type, "statement.Type"); err != nil {
		return err
	}
	if err := validateString(st.Filename, "statement.Filename"); err != nil {
		return err
	}
	if err := validateString(st.Hash, "statement.Hash"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO statement_files (type, filename, file_hash, bank, account_type,
			account_number, holder, currency, opening_balance, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, st.Type, st.Filename, st.Hash, st.Bank, st.AccountType,
		st.AccountNumber, st.Holder, st.Currency, st.OpeningBalance, st.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to create statement: %w", mapConstraintError(err))
	}

	st.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get statement ID: %w", err)
	}
	return nil
}

// UpdateStatementMetadata stores the header fields a parser extracted from the
// document body.
func (s *SQLiteStorage) UpdateStatementMetadata(ctx context.Context, st *model.StatementFile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("%w: statement", ErrNilParameter)
	}
	if err := validateID(st.ID, "statement.ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE statement_files
		SET bank = ?, account_type = ?, account_number = ?, holder = ?,
			currency = ?, opening_balance = ?
		WHERE id = ?
	`, st.Bank, st.AccountType, st.AccountNumber, st.Holder,
		st.Currency, st.OpeningBalance, st.ID)
	if err != nil {
		return fmt.Errorf("failed to update statement metadata: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: statement %d", common.ErrNotFound, st.ID)
	}
	return nil
}

// DeleteStatement removes a statement file record together with every
// transaction ingested from it.
func (s *SQLiteStorage) DeleteStatement(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Explicit delete rather than relying on the cascade: foreign key
	// enforcement depends on the connection pragma.
	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE statement_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete statement transactions: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM statement_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete statement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: statement %d", common.ErrNotFound, id)
	}

	return tx.Commit()
}
