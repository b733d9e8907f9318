package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

// Feed page size bounds.
const (
	DefaultPageSize = 5
	MaxPageSize     = api.MaxPageSize
)

// CategoryService serves the catalog, subscriptions and category feeds.
type CategoryService struct {
	categories repository.CategoryRepository
	users      repository.UserRepository
	posts      repository.PostRepository
	logger     *slog.Logger
}

func NewCategoryService(
	categories repository.CategoryRepository,
	users repository.UserRepository,
	posts repository.PostRepository,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		users:      users,
		posts:      posts,
		logger:     logger,
	}
}

// FeedInput asks for one page of a category. LastPostID is the cursor as
// sent by the client: empty for the first page.
type FeedInput struct {
	CategoryID int64
	UserID     int64
	LastPostID string
	PageSize   int
	Gender     string
}

// FeedPage is one page plus the viewer's subscription state.
type FeedPage struct {
	Posts      []model.StoredPost
	Subscribed bool
}

func (s *CategoryService) Catalog(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListCategories(ctx)
}

// MyCategories lists the user's subscriptions.
func (s *CategoryService) MyCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	if err := requireUser(ctx, s.users, userID, fmt.Sprintf("User with ID %d not found", userID)); err != nil {
		return nil, err
	}
	return s.categories.SubscribedCategories(ctx, userID)
}

// Feed returns the next page of a category for the requester's gender.
func (s *CategoryService) Feed(ctx context.Context, in FeedInput) (*FeedPage, error) {
	if _, err := s.categories.GetCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var after int64
	if cursor := strings.TrimSpace(in.LastPostID); cursor != "" {
		n, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil || n < 0 {
			return nil, apperror.ValidationFailed("lastPostId", fmt.Sprintf("invalid cursor %q", in.LastPostID))
		}
		after = n
	}

	size := in.PageSize
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}

	gender := in.Gender
	if gender != "" && !model.IsValidGender(gender) {
		return nil, apperror.ValidationFailed("gender", fmt.Sprintf("unknown gender %q", gender))
	}

	posts, err := s.posts.ListFeed(ctx, repository.FeedQuery{
		CategoryID: in.CategoryID,
		AfterID:    after,
		Gender:     gender,
		Limit:      size,
	})
	if err != nil {
		return nil, err
	}

	var subscribed bool
	if in.UserID > 0 {
		subscribed, err = s.categories.IsSubscribed(ctx, in.UserID, in.CategoryID)
		if err != nil {
			return nil, err
		}
	}

	s.logger.Debug("feed page served",
		slog.Int64("category_id", in.CategoryID),
		slog.Int64("after", after),
		slog.Int("count", len(posts)),
	)
	return &FeedPage{Posts: posts, Subscribed: subscribed}, nil
}

// SetSubscription subscribes or unsubscribes; repeating either is a no-op.
func (s *CategoryService) SetSubscription(ctx context.Context, userID, categoryID int64, subscribe bool) error {
	if err := requireUser(ctx, s.users, userID, "User not found"); err != nil {
		return err
	}
	if _, err := s.categories.GetCategory(ctx, categoryID); err != nil {
		return err
	}
	if err := s.categories.SetSubscription(ctx, userID, categoryID, subscribe); err != nil {
		return err
	}
	s.logger.Info("subscription updated",
		slog.Int64("user_id", userID),
		slog.Int64("category_id", categoryID),
		slog.Bool("subscribed", subscribe),
	)
	return nil
}

// requireUser turns a missing user into apperror.ErrNotFound with msg.
func requireUser(ctx context.Context, users repository.UserRepository, userID int64, msg string) error {
	if _, err := users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &apperror.AppError{Err: apperror.ErrNotFound, Message: msg}
		}
		return err
	}
	return nil
}
