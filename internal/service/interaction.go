package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

// InteractionService records votes, favorites and comments.
type InteractionService struct {
	articles  repository.ArticleRepository
	favorites repository.FavoriteRepository
	posts     repository.PostRepository
	comments  repository.CommentRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

func NewInteractionService(
	articles repository.ArticleRepository,
	favorites repository.FavoriteRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *InteractionService {
	return &InteractionService{
		articles:  articles,
		favorites: favorites,
		posts:     posts,
		comments:  comments,
		users:     users,
		logger:    logger,
	}
}

// ArticleActionInput is a like, dislike or favorite on a clothing article.
type ArticleActionInput struct {
	ArticleID  int64
	UserID     int64
	Action     string
	ActionType string
}

// ArticleActionResult carries the article's tally after the action.
type ArticleActionResult struct {
	Message          string
	UpvotePercentage int
	TotalVotes       int
}

// FavoriteInput adds or removes a post or clothing favorite. An empty
// ActionType flips the current state.
type FavoriteInput struct {
	ItemType   string
	ItemID     int64
	UserID     int64
	ActionType string
}

// UpvotePercentage is up / total * 100 rounded half to even, or 0 without
// votes.
//
// ROUNDING:
// Only exact halves are affected. 1 up of 8 (12.5) becomes 12 and 3 up of
// 8 (37.5) becomes 38.
func UpvotePercentage(s repository.ArticleStats) int {
	if s.Total() == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(s.Up) * 100 / float64(s.Total())))
}

// ArticleAction applies a vote or article favorite. A like replaces the
// user's dislike and vice versa; removing a vote the user doesn't hold
// changes nothing.
func (s *InteractionService) ArticleAction(ctx context.Context, in ArticleActionInput) (*ArticleActionResult, error) {
	var column string
	switch in.Action {
	case api.ActionLike:
		column = "up_votes"
	case api.ActionDislike:
		column = "down_votes"
	case api.ActionFavorite:
		column = "favorites"
	default:
		return nil, apperror.ValidationFailed("user_action", "Invalid user action")
	}
	if in.ActionType != api.ActionAdd && in.ActionType != api.ActionRemove {
		return nil, apperror.ValidationFailed("action_type", "Invalid action type")
	}

	if err := requireUser(ctx, s.users, in.UserID, "User not found"); err != nil {
		return nil, err
	}
	if _, err := s.articles.GetArticle(ctx, in.ArticleID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "Clothing article not found"}
		}
		return nil, err
	}

	var err error
	switch in.Action {
	case api.ActionLike, api.ActionDislike:
		vote := repository.VoteUp
		if in.Action == api.ActionDislike {
			vote = repository.VoteDown
		}
		if in.ActionType == api.ActionAdd {
			err = s.articles.SetVote(ctx, in.UserID, in.ArticleID, vote)
		} else {
			err = s.articles.RemoveVote(ctx, in.UserID, in.ArticleID, vote)
		}
	case api.ActionFavorite:
		err = s.setFavorite(ctx, in.UserID, repository.FavoriteClothing, in.ArticleID, in.ActionType == api.ActionAdd)
	}
	if err != nil {
		return nil, err
	}

	stats, err := s.articles.Stats(ctx, in.ArticleID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("article action recorded",
		slog.Int64("article_id", in.ArticleID),
		slog.Int64("user_id", in.UserID),
		slog.String("action", in.Action),
		slog.String("action_type", in.ActionType),
	)
	return &ArticleActionResult{
		Message:          "Successfully updated " + column,
		UpvotePercentage: UpvotePercentage(stats),
		TotalVotes:       stats.Total(),
	}, nil
}

// ToggleFavorite adds or removes a favorite and returns a status message.
func (s *InteractionService) ToggleFavorite(ctx context.Context, in FavoriteInput) (string, error) {
	itemType := strings.ToLower(in.ItemType)
	switch itemType {
	case repository.FavoritePost:
		if _, err := s.posts.GetPost(ctx, in.ItemID); err != nil {
			return "", err
		}
	case repository.FavoriteClothing:
		if _, err := s.articles.GetArticle(ctx, in.ItemID); err != nil {
			return "", err
		}
	default:
		return "", apperror.ValidationFailed("itemType", fmt.Sprintf("unknown item type %q", in.ItemType))
	}

	if err := requireUser(ctx, s.users, in.UserID, "User not found"); err != nil {
		return "", err
	}

	var add bool
	switch in.ActionType {
	case api.ActionAdd:
		add = true
	case api.ActionRemove:
	case "":
		on, err := s.favorites.IsFavorite(ctx, in.UserID, itemType, in.ItemID)
		if err != nil {
			return "", err
		}
		add = !on
	default:
		return "", apperror.ValidationFailed("action_type", "Invalid action type")
	}

	if err := s.setFavorite(ctx, in.UserID, itemType, in.ItemID, add); err != nil {
		return "", err
	}
	if add {
		return fmt.Sprintf("Successfully added to %s favorites", itemType), nil
	}
	return fmt.Sprintf("Successfully removed from %s favorites", itemType), nil
}

func (s *InteractionService) setFavorite(ctx context.Context, userID int64, itemType string, itemID int64, add bool) error {
	if add {
		return s.favorites.AddFavorite(ctx, userID, itemType, itemID)
	}
	return s.favorites.RemoveFavorite(ctx, userID, itemType, itemID)
}

// SubmitComment stores a trimmed, non-empty comment on a live post.
func (s *InteractionService) SubmitComment(ctx context.Context, userID, postID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("commentText", "Comment must not be empty")
	}
	if err := requireUser(ctx, s.users, userID, "User not found"); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{PostID: postID, OwnerID: userID, Text: text}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.logger.Info("comment submitted",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("post_id", postID),
		slog.Int64("user_id", userID),
	)
	return comment, nil
}

// DeleteComment removes a comment. The actor must own the comment or the
// post it is on.
func (s *InteractionService) DeleteComment(ctx context.Context, actorID, commentID, postID int64) error {
	notFound := &apperror.AppError{Err: apperror.ErrNotFound, Message: "Comment or Post not found."}

	comment, err := s.comments.GetComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound
		}
		return err
	}
	if comment.PostID != postID {
		return notFound
	}

	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return notFound
		}
		return err
	}

	if !comment.CanDelete(actorID, post.OwnerID) {
		s.logger.Warn("comment delete refused",
			slog.Int64("comment_id", commentID),
			slog.Int64("actor_id", actorID),
		)
		return apperror.Forbidden("Only the comment author or the post owner can delete this comment")
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted", slog.Int64("comment_id", commentID), slog.Int64("actor_id", actorID))
	return nil
}
