package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

var _ repository.CategoryRepository = (*DB)(nil)

// ListCategories returns the public catalog ordered by id.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	return db.queryCategories(ctx,
		`SELECT id, name FROM categories WHERE public = 1 ORDER BY id`)
}

func (db *DB) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting category %d: %w", id, err)
	}
	return &c, nil
}

func (db *DB) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	var c model.Category
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE name = ?`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", name)
		}
		return nil, fmt.Errorf("sqlite: getting category %q: %w", name, err)
	}
	return &c, nil
}

// SubscribedCategories returns the user's categories ordered by id.
func (db *DB) SubscribedCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	return db.queryCategories(ctx,
		`SELECT c.id, c.name
		 FROM subscriptions s JOIN categories c ON c.id = s.category_id
		 WHERE s.user_id = ?
		 ORDER BY c.id`, userID)
}

func (db *DB) IsSubscribed(ctx context.Context, userID, categoryID int64) (bool, error) {
	return db.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE user_id = ? AND category_id = ?)`,
		userID, categoryID)
}

// SetSubscription is idempotent in both directions.
func (db *DB) SetSubscription(ctx context.Context, userID, categoryID int64, subscribed bool) error {
	var err error
	if subscribed {
		_, err = db.conn.ExecContext(ctx,
			`INSERT OR IGNORE INTO subscriptions (user_id, category_id) VALUES (?, ?)`,
			userID, categoryID)
	} else {
		_, err = db.conn.ExecContext(ctx,
			`DELETE FROM subscriptions WHERE user_id = ? AND category_id = ?`,
			userID, categoryID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: updating subscription user=%d category=%d: %w", userID, categoryID, err)
	}
	return nil
}

func (db *DB) queryCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
