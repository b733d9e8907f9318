// Package repository declares the storage contracts of the development
// backend. The service layer depends on these interfaces only; the sqlite
// subpackage implements them.
package repository

import (
	"context"

	"github.com/fashionpolice/fashion-police/internal/model"
)

// Vote is a user's stance on a clothing article.
type Vote string

const (
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// Favorite item types as stored.
const (
	FavoritePost     = "post"
	FavoriteClothing = "clothing"
)

// ArticleStats is the vote tally of one article.
type ArticleStats struct {
	Up   int
	Down int
}

// Total is Up + Down.
func (s ArticleStats) Total() int { return s.Up + s.Down }

// ArticleView is an article annotated for one viewer.
type ArticleView struct {
	model.StoredArticle
	ArticleStats
	UserVote      Vote // "" when the viewer has not voted
	UserFavorited bool
}

// FeedQuery selects one page of a category.
type FeedQuery struct {
	CategoryID int64
	AfterID    int64 // 0 for the first page
	Gender     string
	Limit      int
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	SubscribedCategories(ctx context.Context, userID int64) ([]model.Category, error)
	IsSubscribed(ctx context.Context, userID, categoryID int64) (bool, error)
	SetSubscription(ctx context.Context, userID, categoryID int64, subscribed bool) error
}

type PostRepository interface {
	// CreatePost stores the post and one article per clothing item.
	CreatePost(ctx context.Context, post *model.StoredPost) error
	GetPost(ctx context.Context, id int64) (*model.StoredPost, error)
	ListFeed(ctx context.Context, q FeedQuery) ([]model.StoredPost, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.StoredPost, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.StoredPost, error)
	// SoftDeletePost hides the post everywhere and drops every favorite
	// that points at it or its articles.
	SoftDeletePost(ctx context.Context, id int64) error
}

type ArticleRepository interface {
	GetArticle(ctx context.Context, id int64) (*model.StoredArticle, error)
	ListArticles(ctx context.Context, postID, viewerID int64) ([]ArticleView, error)
	// SetVote records vote, replacing any opposite vote by the same user.
	SetVote(ctx context.Context, userID, articleID int64, vote Vote) error
	// RemoveVote clears the user's vote only if it equals vote.
	RemoveVote(ctx context.Context, userID, articleID int64, vote Vote) error
	Stats(ctx context.Context, articleID int64) (ArticleStats, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID int64, itemType string, itemID int64) error
	RemoveFavorite(ctx context.Context, userID int64, itemType string, itemID int64) error
	IsFavorite(ctx context.Context, userID int64, itemType string, itemID int64) (bool, error)
	// FavoriteTags maps post id to its comma-joined favorite tags, "Post"
	// first, then article types in canonical order.
	FavoriteTags(ctx context.Context, userID int64) (map[int64]string, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id int64) (*model.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
}
