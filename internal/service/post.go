package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

// PostService creates, reads and deletes posts.
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	articles   repository.ArticleRepository
	favorites  repository.FavoriteRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	logger     *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	articles repository.ArticleRepository,
	favorites repository.FavoriteRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		articles:   articles,
		favorites:  favorites,
		comments:   comments,
		users:      users,
		logger:     logger,
	}
}

// CreatePostInput is a new post as received. Category is the category name.
type CreatePostInput struct {
	ImageBase64       string
	OwnerID           int64
	Category          string
	Description       string
	ClothingItems     []string
	GenderRestriction string
}

// Detail is the per-viewer interaction bundle of a post.
type Detail struct {
	Articles      []model.ClothingArticle
	PostFavorited bool
	Comments      []model.Comment
}

// Create validates and stores a post and its clothing articles.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*model.StoredPost, error) {
	if err := requireUser(ctx, s.users, in.OwnerID, "User not found"); err != nil {
		return nil, err
	}

	category, err := s.categories.GetCategoryByName(ctx, in.Category)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("category", "Select a category")
		}
		return nil, err
	}

	image, err := base64.StdEncoding.DecodeString(in.ImageBase64)
	if err != nil || len(image) == 0 {
		return nil, apperror.ValidationFailed("image", "Select an image")
	}

	restriction := in.GenderRestriction
	if restriction == "" {
		restriction = model.VisibilityAll
	}
	if restriction != model.VisibilityAll && !model.IsValidGender(restriction) {
		return nil, apperror.ValidationFailed("gender_restriction", fmt.Sprintf("unknown visibility %q", restriction))
	}

	items, err := canonicalItems(in.ClothingItems)
	if err != nil {
		return nil, err
	}

	post := &model.StoredPost{
		OwnerID:           in.OwnerID,
		CategoryID:        category.ID,
		Category:          category.Name,
		Description:       strings.TrimSpace(in.Description),
		Image:             image,
		GenderRestriction: restriction,
		ClothingItems:     items,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post created",
		slog.Int64("post_id", post.ID),
		slog.Int64("owner_id", post.OwnerID),
		slog.String("category", post.Category),
		slog.Int("items", len(items)),
	)
	return post, nil
}

// canonicalItems rejects unknown or repeated items and returns the rest in
// canonical order.
func canonicalItems(items []string) ([]string, error) {
	seen := make([]bool, len(model.ClothingItems))
	for _, item := range items {
		i := model.ClothingItemIndex(item)
		if i < 0 {
			return nil, apperror.ValidationFailed("clothing_items", fmt.Sprintf("unknown clothing item %q", item))
		}
		if seen[i] {
			return nil, apperror.ValidationFailed("clothing_items", fmt.Sprintf("%s listed twice", item))
		}
		seen[i] = true
	}

	out := make([]string, 0, len(items))
	for i, ok := range seen {
		if ok {
			out = append(out, model.ClothingItems[i])
		}
	}
	return out, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*model.StoredPost, error) {
	return s.posts.GetPost(ctx, id)
}

// Detail assembles the articles with tallies, the viewer's post favorite
// flag and the comments of a post.
func (s *PostService) Detail(ctx context.Context, postID, viewerID int64) (*Detail, error) {
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	views, err := s.articles.ListArticles(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	articles := make([]model.ClothingArticle, len(views))
	for i, v := range views {
		articles[i] = model.ClothingArticle{
			ID:               v.ID,
			Type:             v.Type,
			UserUpvoted:      v.UserVote == repository.VoteUp,
			UserDownvoted:    v.UserVote == repository.VoteDown,
			UserFavorited:    v.UserFavorited,
			UpvotePercentage: UpvotePercentage(v.ArticleStats),
			TotalVotes:       v.Total(),
		}
	}

	var favorited bool
	if viewerID > 0 {
		favorited, err = s.favorites.IsFavorite(ctx, viewerID, repository.FavoritePost, postID)
		if err != nil {
			return nil, err
		}
	}

	comments, err := s.comments.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &Detail{Articles: articles, PostFavorited: favorited, Comments: comments}, nil
}

// Delete soft-deletes a post. Only its owner may delete it.
func (s *PostService) Delete(ctx context.Context, actorID, postID int64) error {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != actorID {
		s.logger.Warn("post delete refused",
			slog.Int64("post_id", postID),
			slog.Int64("actor_id", actorID),
		)
		return apperror.Forbidden("Only the owner can delete this post")
	}

	if err := s.posts.SoftDeletePost(ctx, postID); err != nil {
		return err
	}
	s.logger.Info("post deleted", slog.Int64("post_id", postID), slog.Int64("owner_id", actorID))
	return nil
}

// UserPosts lists a user's own posts or the posts they favorited.
func (s *PostService) UserPosts(ctx context.Context, userID int64, postType string) ([]model.StoredPost, error) {
	if err := requireUser(ctx, s.users, userID, "User not found"); err != nil {
		return nil, err
	}

	switch postType {
	case api.PostTypeUser:
		return s.posts.ListByOwner(ctx, userID)
	case api.PostTypeFavorite:
		tags, err := s.favorites.FavoriteTags(ctx, userID)
		if err != nil {
			return nil, err
		}
		var ids []int64
		for postID, joined := range tags {
			for _, tag := range strings.Split(joined, ",") {
				if tag == model.FavoriteTagPost {
					ids = append(ids, postID)
					break
				}
			}
		}
		return s.posts.ListByIDs(ctx, ids)
	default:
		return nil, apperror.ValidationFailed("post_type", fmt.Sprintf("unknown post type %q", postType))
	}
}

// ByIDs returns the live posts among ids.
func (s *PostService) ByIDs(ctx context.Context, ids []int64) ([]model.StoredPost, error) {
	return s.posts.ListByIDs(ctx, ids)
}
