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

var _ repository.CommentRepository = (*DB)(nil)

// CreateComment fills in ID and CreatedAt.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, owner_id, text, created_at) VALUES (?, ?, ?, ?)`,
		comment.PostID,
		comment.OwnerID,
		comment.Text,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment on post %d: %w", comment.PostID, err)
	}
	comment.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	return nil
}

func (db *DB) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, post_id, owner_id, text, created_at FROM comments WHERE id = ?`, id,
	).Scan(&c.ID, &c.PostID, &c.OwnerID, &c.Text, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("comment", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", id, err)
	}
	return &c, nil
}

// ListComments returns the post's comments oldest first.
func (db *DB) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, owner_id, text, created_at FROM comments
		 WHERE post_id = ? ORDER BY id`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.OwnerID, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (db *DB) DeleteComment(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("comment", strconv.FormatInt(id, 10))
	}
	return nil
}
