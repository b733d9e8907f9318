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

var _ repository.ArticleRepository = (*DB)(nil)

// GetArticle returns an article of a live post.
func (db *DB) GetArticle(ctx context.Context, id int64) (*model.StoredArticle, error) {
	var a model.StoredArticle
	err := db.conn.QueryRowContext(ctx,
		`SELECT a.id, a.post_id, a.type, a.position
		 FROM clothing_articles a JOIN posts p ON p.id = a.post_id
		 WHERE a.id = ? AND p.deleted_at IS NULL`, id,
	).Scan(&a.ID, &a.PostID, &a.Type, &a.Position)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("clothing article", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting article %d: %w", id, err)
	}
	return &a, nil
}

// ListArticles returns the post's articles in position order with tallies
// and the viewer's vote and favorite flag.
func (db *DB) ListArticles(ctx context.Context, postID, viewerID int64) ([]repository.ArticleView, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT a.id, a.post_id, a.type, a.position,
		        (SELECT COUNT(*) FROM votes v WHERE v.article_id = a.id AND v.vote = 'up'),
		        (SELECT COUNT(*) FROM votes v WHERE v.article_id = a.id AND v.vote = 'down'),
		        COALESCE((SELECT v.vote FROM votes v WHERE v.article_id = a.id AND v.user_id = ?), ''),
		        EXISTS(SELECT 1 FROM favorites f
		               WHERE f.user_id = ? AND f.item_type = 'clothing' AND f.item_id = a.id)
		 FROM clothing_articles a
		 WHERE a.post_id = ?
		 ORDER BY a.position`,
		viewerID, viewerID, postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing articles of post %d: %w", postID, err)
	}
	defer rows.Close()

	views := []repository.ArticleView{}
	for rows.Next() {
		var (
			v    repository.ArticleView
			vote string
		)
		err := rows.Scan(
			&v.ID,
			&v.PostID,
			&v.Type,
			&v.Position,
			&v.Up,
			&v.Down,
			&vote,
			&v.UserFavorited,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning article: %w", err)
		}
		v.UserVote = repository.Vote(vote)
		views = append(views, v)
	}
	return views, rows.Err()
}

// SetVote upserts the user's vote; an opposite vote is overwritten.
func (db *DB) SetVote(ctx context.Context, userID, articleID int64, vote repository.Vote) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO votes (user_id, article_id, vote) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, article_id) DO UPDATE SET vote = excluded.vote`,
		userID, articleID, string(vote),
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording %s vote user=%d article=%d: %w", vote, userID, articleID, err)
	}
	return nil
}

// RemoveVote deletes the user's vote if it equals vote; otherwise nothing
// changes.
func (db *DB) RemoveVote(ctx context.Context, userID, articleID int64, vote repository.Vote) error {
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM votes WHERE user_id = ? AND article_id = ? AND vote = ?`,
		userID, articleID, string(vote),
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing %s vote user=%d article=%d: %w", vote, userID, articleID, err)
	}
	return nil
}

func (db *DB) Stats(ctx context.Context, articleID int64) (repository.ArticleStats, error) {
	var s repository.ArticleStats
	err := db.conn.QueryRowContext(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM votes WHERE article_id = ? AND vote = 'up'),
		   (SELECT COUNT(*) FROM votes WHERE article_id = ? AND vote = 'down')`,
		articleID, articleID,
	).Scan(&s.Up, &s.Down)
	if err != nil {
		return s, fmt.Errorf("sqlite: tallying article %d: %w", articleID, err)
	}
	return s, nil
}
