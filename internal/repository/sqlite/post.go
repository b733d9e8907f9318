package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// Assigning a nil *DB to a blank PostRepository fails the build as soon as
// a method is missing or has the wrong signature, instead of failing later
// where the server wires the services. Every repository file does the same.
var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts the post and one clothing article per item, in item
// order, inside a single transaction. It fills in ID and CreatedAt.
func (db *DB) CreatePost(ctx context.Context, post *model.StoredPost) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning post transaction: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	post.CreatedAt = time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO posts (owner_id, category_id, description, image, gender_restriction, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.OwnerID,
		post.CategoryID,
		post.Description,
		post.Image,
		post.GenderRestriction,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post for owner %d: %w", post.OwnerID, err)
	}
	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new post id: %w", err)
	}

	for i, item := range post.ClothingItems {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO clothing_articles (post_id, type, position) VALUES (?, ?, ?)`,
			post.ID, item, i,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting %s article for post %d: %w", item, post.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing post %d: %w", post.ID, err)
	}
	return nil
}

const postColumns = `p.id, p.owner_id, p.category_id, c.name, p.description, p.image,
	p.gender_restriction, p.created_at, p.deleted_at`

const postFrom = ` FROM posts p JOIN categories c ON c.id = p.category_id `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*model.StoredPost, error) {
	var (
		p         model.StoredPost
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.CategoryID,
		&p.Category,
		&p.Description,
		&p.Image,
		&p.GenderRestriction,
		&p.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	return &p, nil
}

// GetPost returns a live post with its clothing items. Deleted posts are
// reported as apperror.ErrNotFound.
func (db *DB) GetPost(ctx context.Context, id int64) (*model.StoredPost, error) {
	p, err := scanPost(db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+postFrom+`WHERE p.id = ? AND p.deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT type FROM clothing_articles WHERE post_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing items of post %d: %w", id, err)
	}
	defer rows.Close()

	p.ClothingItems = []string{}
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil, fmt.Errorf("sqlite: scanning item of post %d: %w", id, err)
		}
		p.ClothingItems = append(p.ClothingItems, item)
	}
	return p, rows.Err()
}

// ListFeed walks a category in creation order after q.AfterID, keeping only
// posts visible to q.Gender.
func (db *DB) ListFeed(ctx context.Context, q repository.FeedQuery) ([]model.StoredPost, error) {
	return db.queryPosts(ctx,
		`SELECT `+postColumns+postFrom+`
		 WHERE p.category_id = ?
		   AND p.deleted_at IS NULL
		   AND p.id > ?
		   AND (p.gender_restriction = ? OR p.gender_restriction = ?)
		 ORDER BY p.id
		 LIMIT ?`,
		q.CategoryID, q.AfterID, q.Gender, model.VisibilityAll, q.Limit,
	)
}

// ListByOwner returns the owner's live posts in creation order.
func (db *DB) ListByOwner(ctx context.Context, ownerID int64) ([]model.StoredPost, error) {
	return db.queryPosts(ctx,
		`SELECT `+postColumns+postFrom+`
		 WHERE p.owner_id = ? AND p.deleted_at IS NULL
		 ORDER BY p.id`,
		ownerID,
	)
}

// ListByIDs returns the live posts among ids, ordered by id. Unknown ids
// are skipped.
func (db *DB) ListByIDs(ctx context.Context, ids []int64) ([]model.StoredPost, error) {
	if len(ids) == 0 {
		return []model.StoredPost{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return db.queryPosts(ctx,
		`SELECT `+postColumns+postFrom+`
		 WHERE p.id IN (`+placeholders(len(ids))+`) AND p.deleted_at IS NULL
		 ORDER BY p.id`,
		args...,
	)
}

// queryPosts runs a post listing. ClothingItems is left nil on listed posts.
func (db *DB) queryPosts(ctx context.Context, query string, args ...any) ([]model.StoredPost, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.StoredPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// SoftDeletePost marks the post deleted and drops every favorite of the
// post or its articles. Deleting a missing or already deleted post returns
// apperror.ErrNotFound.
func (db *DB) SoftDeletePost(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE posts SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	} else if n == 0 {
		return apperror.NotFound("post", strconv.FormatInt(id, 10))
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM favorites
		 WHERE (item_type = 'post' AND item_id = ?)
		    OR (item_type = 'clothing' AND item_id IN (SELECT id FROM clothing_articles WHERE post_id = ?))`,
		id, id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: clearing favorites of post %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of post %d: %w", id, err)
	}
	return nil
}
