package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

var _ repository.FavoriteRepository = (*DB)(nil)

// AddFavorite is idempotent.
func (db *DB) AddFavorite(ctx context.Context, userID int64, itemType string, itemID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, item_type, item_id) VALUES (?, ?, ?)`,
		userID, itemType, itemID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding %s favorite %d for user %d: %w", itemType, itemID, userID, err)
	}
	return nil
}

// RemoveFavorite is idempotent.
func (db *DB) RemoveFavorite(ctx context.Context, userID int64, itemType string, itemID int64) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND item_type = ? AND item_id = ?`,
		userID, itemType, itemID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s favorite %d for user %d: %w", itemType, itemID, userID, err)
	}
	return nil
}

func (db *DB) IsFavorite(ctx context.Context, userID int64, itemType string, itemID int64) (bool, error) {
	return db.exists(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = ? AND item_type = ? AND item_id = ?)`,
		userID, itemType, itemID)
}

// FavoriteTags builds the profile's favorites map. Favorites of deleted
// posts are skipped.
func (db *DB) FavoriteTags(ctx context.Context, userID int64) (map[int64]string, error) {
	tags := make(map[int64][]string)

	// Post favorites first so "Post" leads each tag list.
	rows, err := db.conn.QueryContext(ctx,
		`SELECT f.item_id
		 FROM favorites f JOIN posts p ON p.id = f.item_id
		 WHERE f.user_id = ? AND f.item_type = 'post' AND p.deleted_at IS NULL`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing post favorites of user %d: %w", userID, err)
	}
	for rows.Next() {
		var postID int64
		if err := rows.Scan(&postID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning post favorite: %w", err)
		}
		tags[postID] = append(tags[postID], model.FavoriteTagPost)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = db.conn.QueryContext(ctx,
		`SELECT a.post_id, a.type
		 FROM favorites f
		 JOIN clothing_articles a ON a.id = f.item_id
		 JOIN posts p ON p.id = a.post_id
		 WHERE f.user_id = ? AND f.item_type = 'clothing' AND p.deleted_at IS NULL
		 ORDER BY a.post_id, a.position`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing clothing favorites of user %d: %w", userID, err)
	}
	for rows.Next() {
		var (
			postID int64
			item   string
		)
		if err := rows.Scan(&postID, &item); err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning clothing favorite: %w", err)
		}
		tags[postID] = append(tags[postID], item)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	out := make(map[int64]string, len(tags))
	for postID, list := range tags {
		out[postID] = strings.Join(list, ",")
	}
	return out, nil
}

// closeRows closes rows and reports any iteration error.
func closeRows(rows *sql.Rows) error {
	iterErr := rows.Err()
	if err := rows.Close(); err != nil && iterErr == nil {
		iterErr = err
	}
	if iterErr != nil {
		return fmt.Errorf("sqlite: reading rows: %w", iterErr)
	}
	return nil
}
