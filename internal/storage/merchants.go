package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcgiron/centavo/internal/common"
	"github.com/jcgiron/centavo/internal/model"
)

// GetMerchantByID retrieves a single merchant.
func (s *SQLiteStorage) GetMerchantByID(ctx context.Context, id int64) (*model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var m model.Merchant
	var categoryID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, treatment, category_id
		FROM merchants
		WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Treatment, &categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: merchant %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	m.CategoryID = categoryID.Int64
	return &m, nil
}

// GetMerchantByName retrieves a merchant by its unique name.
func (s *SQLiteStorage) GetMerchantByName(ctx context.Context, name string) (*model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var m model.Merchant
	var categoryID sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, treatment, category_id
		FROM merchants
		WHERE name = ?
	`, name).Scan(&m.ID, &m.Name, &m.Treatment, &categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: merchant %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	m.CategoryID = categoryID.Int64
	return &m, nil
}

// ListMerchants retrieves all merchants ordered by name.
func (s *SQLiteStorage) ListMerchants(ctx context.Context) ([]model.Merchant, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, treatment, category_id
		FROM merchants
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var merchants []model.Merchant
	for rows.Next() {
		var m model.Merchant
		var categoryID sql.NullInt64
		if scanErr := rows.Scan(&m.ID, &m.Name, &m.Treatment, &categoryID); scanErr != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", scanErr)
		}
		m.CategoryID = categoryID.Int64
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate merchants: %w", err)
	}
	return merchants, nil
}

// CreateMerchant inserts a new merchant and fills in its ID.
func (s *SQLiteStorage) CreateMerchant(ctx context.Context, merchant *model.Merchant) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMerchant(merchant); err != nil {
		return err
	}

	var categoryID any
	if merchant.CategoryID > 0 {
		categoryID = merchant.CategoryID
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO merchants (name, treatment, category_id)
		VALUES (?, ?, ?)
	`, merchant.Name, merchant.Treatment, categoryID)
	if err != nil {
		return fmt.Errorf("failed to create merchant: %w", mapConstraintError(err))
	}

	merchant.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get merchant ID: %w", err)
	}
	return nil
}

// UpdateMerchant updates a merchant's name, treatment and category.
func (s *SQLiteStorage) UpdateMerchant(ctx context.Context, merchant *model.Merchant) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMerchant(merchant); err != nil {
		return err
	}
	if err := validateID(merchant.ID, "merchant.ID"); err != nil {
		return err
	}

	var categoryID any
	if merchant.CategoryID > 0 {
		categoryID = merchant.CategoryID
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE merchants SET name = ?, treatment = ?, category_id = ? WHERE id = ?
	`, merchant.Name, merchant.Treatment, categoryID, merchant.ID)
	if err != nil {
		return fmt.Errorf("failed to update merchant: %w", mapConstraintError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: merchant %d", common.ErrNotFound, merchant.ID)
	}
	return nil
}

// DeleteMerchant removes a merchant. Its rules go with it and its
// transactions revert to unassigned.
func (s *SQLiteStorage) DeleteMerchant(ctx context.Context, id int64) error {
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

	if _, err := tx.ExecContext(ctx, `UPDATE transactions SET merchant_id = NULL WHERE merchant_id = ?`, id); err != nil {
		return fmt.Errorf("failed to unassign merchant transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rules WHERE merchant_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete merchant rules: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM merchants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete merchant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: merchant %d", common.ErrNotFound, id)
	}

	return tx.Commit()
}

// GetCategoryByName retrieves a category by its unique name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var c model.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM categories WHERE name = ?
	`, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

// ListCategories retrieves all categories ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if scanErr := rows.Scan(&c.ID, &c.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// CreateCategory inserts a new category and fills in its ID.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(category.Name, "category.Name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, category.Name)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", mapConstraintError(err))
	}

	category.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}
	return nil
}

// DeleteCategory removes a category. Merchants keep existing without one.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
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

	if _, err := tx.ExecContext(ctx, `UPDATE merchants SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		return fmt.Errorf("failed to detach category merchants: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}

	return tx.Commit()
}
