package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					bank TEXT NOT NULL,
					type TEXT NOT NULL,
					number TEXT NOT NULL UNIQUE,
					alias TEXT NOT NULL DEFAULT '',
					holder TEXT NOT NULL DEFAULT '',
					currency TEXT NOT NULL DEFAULT 'GTQ',
					owner_id INTEGER
				)`,
				`CREATE INDEX idx_accounts_bank_type ON accounts(bank, type)`,

				`CREATE TABLE IF NOT EXISTS statement_files (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					type TEXT NOT NULL,
					filename TEXT NOT NULL,
					file_hash TEXT NOT NULL UNIQUE,
					bank TEXT NOT NULL DEFAULT '',
					account_type TEXT NOT NULL DEFAULT '',
					account_number TEXT NOT NULL DEFAULT '',
					holder TEXT NOT NULL DEFAULT '',
					currency TEXT NOT NULL DEFAULT '',
					opening_balance REAL NOT NULL DEFAULT 0,
					owner_id INTEGER
				)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE
				)`,

				`CREATE TABLE IF NOT EXISTS merchants (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					treatment TEXT NOT NULL DEFAULT 'expense',
					category_id INTEGER REFERENCES categories(id)
				)`,

				`CREATE TABLE IF NOT EXISTS rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					label TEXT NOT NULL DEFAULT '',
					kind TEXT NOT NULL,
					criterion TEXT NOT NULL,
					merchant_id INTEGER NOT NULL REFERENCES merchants(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_rules_merchant ON rules(merchant_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					place TEXT NOT NULL DEFAULT '',
					document_number TEXT NOT NULL DEFAULT '',
					currency TEXT NOT NULL DEFAULT 'GTQ',
					kind TEXT NOT NULL,
					amount REAL NOT NULL,
					account_id INTEGER NOT NULL REFERENCES accounts(id),
					statement_id INTEGER NOT NULL REFERENCES statement_files(id) ON DELETE CASCADE,
					merchant_id INTEGER REFERENCES merchants(id) ON DELETE SET NULL,
					owner_id INTEGER
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_merchant ON transactions(merchant_id)`,
				`CREATE INDEX idx_transactions_statement ON transactions(statement_id)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add alternate account numbers",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS account_numbers (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					number TEXT NOT NULL UNIQUE,
					account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE
				)`,
				`CREATE INDEX idx_account_numbers_account ON account_numbers(account_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add per-transaction skip flags",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE transactions ADD COLUMN skip_classification INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE transactions ADD COLUMN skip_reports INTEGER NOT NULL DEFAULT 0`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Add exchange rates",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS exchange_rates (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					currency TEXT NOT NULL UNIQUE,
					value REAL NOT NULL
				)
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
