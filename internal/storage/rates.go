package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

// GetExchangeRate retrieves the stored rate for one currency code.
func (s *SQLiteStorage) GetExchangeRate(ctx context.Context, currency string) (*model.ExchangeRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(currency, "currency"); err != nil {
		return nil, err
	}

	var rate model.ExchangeRate
	err := s.db.QueryRowContext(ctx, `
		SELECT id, updated_at, currency, value
		FROM exchange_rates
		WHERE currency = ?
	`, currency).Scan(&rate.ID, &rate.UpdatedAt, &rate.Currency, &rate.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: exchange rate %s", common.ErrNotFound, currency)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return &rate, nil
}

// ListExchangeRates retrieves all stored rates ordered by currency code.
func (s *SQLiteStorage) ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, updated_at, currency, value
		FROM exchange_rates
		ORDER BY currency
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rates []model.ExchangeRate
	for rows.Next() {
		var rate model.ExchangeRate
		if scanErr := rows.Scan(&rate.ID, &rate.UpdatedAt, &rate.Currency, &rate.Value); scanErr != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", scanErr)
		}
		rates = append(rates, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exchange rates: %w", err)
	}
	return rates, nil
}

// SetExchangeRate creates or refreshes the rate for a currency.
func (s *SQLiteStorage) SetExchangeRate(ctx context.Context, currency string, value float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(currency, "currency"); err != nil {
		return err
	}
	if value <= 0 {
		return fmt.Errorf("rate value must be positive, got %g", value)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchange_rates (currency, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(currency) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, currency, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set exchange rate: %w", err)
	}
	return nil
}

// DeleteExchangeRate removes the stored rate for a currency.
func (s *SQLiteStorage) DeleteExchangeRate(ctx context.Context, currency string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(currency, "currency"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM exchange_rates WHERE currency = ?`, currency)
	if err != nil {
		return fmt.Errorf("failed to delete exchange rate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: exchange rate %s", common.ErrNotFound, currency)
	}
	return nil
}
