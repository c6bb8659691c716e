package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

// ListRules retrieves every classification rule in stored order. Order
// matters: the first matching include rule claims a transaction.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRulesTx(ctx, s.db, `
		SELECT id, label, kind, criterion, merchant_id
		FROM rules
		ORDER BY id
	`)
}

// ListRulesByMerchant retrieves the rules attached to one merchant.
func (s *SQLiteStorage) ListRulesByMerchant(ctx context.Context, merchantID int64) ([]model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(merchantID, "merchantID"); err != nil {
		return nil, err
	}
	return s.listRulesTx(ctx, s.db, `
		SELECT id, label, kind, criterion, merchant_id
		FROM rules
		WHERE merchant_id = ?
		ORDER BY id
	`, merchantID)
}

// GetRuleByID retrieves a single rule.
func (s *SQLiteStorage) GetRuleByID(ctx context.Context, id int64) (*model.Rule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var r model.Rule
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, kind, criterion, merchant_id
		FROM rules
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Label, &r.Kind, &r.Criterion, &r.MerchantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &r, nil
}

func (s *SQLiteStorage) listRulesTx(ctx context.Context, q queryable, query string, args ...any) ([]model.Rule, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		var r model.Rule
		if scanErr := rows.Scan(&r.ID, &r.Label, &r.Kind, &r.Criterion, &r.MerchantID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", scanErr)
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}
	return rules, nil
}

// CreateRule inserts a new classification rule and fills in its ID.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (label, kind, criterion, merchant_id)
		VALUES (?, ?, ?, ?)
	`, rule.Label, rule.Kind, rule.Criterion, rule.MerchantID)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	rule.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}
	return nil
}

// UpdateRule updates a rule's label, kind and criterion.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.Rule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := validateID(rule.ID, "rule.ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE rules SET label = ?, kind = ?, criterion = ?, merchant_id = ? WHERE id = ?
	`, rule.Label, rule.Kind, rule.Criterion, rule.MerchantID, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, rule.ID)
	}
	return nil
}

// DeleteRule removes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: rule %d", common.ErrNotFound, id)
	}
	return nil
}
