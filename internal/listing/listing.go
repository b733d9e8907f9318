// Package listing serves the read-only screens: the category catalog, the
// user's categories, the user's posts and favorited posts.
package listing

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/session"
)

// FilterAll selects every favorited post.
const FilterAll = "All"

// Remote is the slice of the API the listing screens call. *api.Client
// implements it.
type Remote interface {
	Categories(ctx context.Context) ([]model.Category, error)
	MyCategories(ctx context.Context, userID int64) ([]model.Category, error)
	UserPosts(ctx context.Context, userID int64, postType string) ([]model.Post, error)
	FavoritePosts(ctx context.Context, keys []int64) ([]model.Post, error)
	GetPost(ctx context.Context, postID int64) (*api.GetPostResponse, error)
}

type Service struct {
	remote   Remote
	sessions *session.Holder
	logger   *slog.Logger
}

func NewService(remote Remote, sessions *session.Holder, logger *slog.Logger) *Service {
	return &Service{
		remote:   remote,
		sessions: sessions,
		logger:   logger,
	}
}

// Catalog returns every category, ordered by id.
func (s *Service) Catalog(ctx context.Context) ([]model.Category, error) {
	cats, err := s.remote.Categories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", slog.String("error", err.Error()))
		return nil, err
	}
	sortByID(cats)
	return cats, nil
}

// MyCategories returns the signed-in user's categories, ordered by id.
func (s *Service) MyCategories(ctx context.Context) ([]model.Category, error) {
	sess := s.sessions.Load()
	if !sess.SignedIn() {
		return nil, apperror.Unauthorized("sign in to see your categories")
	}
	cats, err := s.remote.MyCategories(ctx, sess.ID)
	if err != nil {
		s.logger.Error("failed to list subscribed categories",
			slog.Int64("user_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	sortByID(cats)
	return cats, nil
}

func sortByID(cats []model.Category) {
	slices.SortFunc(cats, func(a, b model.Category) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// UserPosts returns the signed-in user's own posts.
func (s *Service) UserPosts(ctx context.Context) ([]model.Post, error) {
	sess := s.sessions.Load()
	if !sess.SignedIn() {
		return nil, apperror.Unauthorized("sign in to see your posts")
	}
	posts, err := s.remote.UserPosts(ctx, sess.ID, api.PostTypeUser)
	if err != nil {
		s.logger.Error("failed to list user posts",
			slog.Int64("user_id", sess.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return posts, nil
}

// FavoritePosts returns the favorited posts matching filter, one of the
// values FilterOptions offers.
func (s *Service) FavoritePosts(ctx context.Context, filter string) ([]model.Post, error) {
	keys := MatchingKeys(s.sessions.Load().Favorites(), filter)
	if len(keys) == 0 {
		return []model.Post{}, nil
	}
	posts, err := s.remote.FavoritePosts(ctx, keys)
	if err != nil {
		s.logger.Error("failed to list favorite posts",
			slog.String("filter", filter),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return posts, nil
}

// FilterOptions returns the favorites filters the current session offers.
func (s *Service) FilterOptions() []string {
	return FilterOptions(s.sessions.Load().Favorites())
}

// GetPost fetches a single post.
func (s *Service) GetPost(ctx context.Context, postID int64) (model.Post, error) {
	resp, err := s.remote.GetPost(ctx, postID)
	if err != nil {
		s.logger.Error("failed to fetch post",
			slog.Int64("post_id", postID),
			slog.String("error", err.Error()),
		)
		return model.Post{}, err
	}
	return model.Post{
		ID:          postID,
		ImageBase64: resp.ImageBase64,
		OwnerID:     resp.OwnerID,
		Description: resp.Description,
		Category:    resp.Category,
	}, nil
}

// FilterOptions derives the favorites filters from a favorites mapping:
// "All", then "Posts" when any post itself is favorited, then every other
// tag pluralised, sorted.
func FilterOptions(favorites map[int64]string) []string {
	seen := make(map[string]bool)
	var others []string
	hasPost := false
	for _, joined := range favorites {
		for _, tag := range session.SplitTags(joined) {
			if tag == model.FavoriteTagPost {
				hasPost = true
				continue
			}
			if !seen[tag] {
				seen[tag] = true
				others = append(others, tag+"s")
			}
		}
	}
	slices.Sort(others)

	opts := []string{FilterAll}
	if hasPost {
		opts = append(opts, model.FavoriteTagPost+"s")
	}
	return append(opts, others...)
}

// MatchingKeys returns, ascending, the post ids whose tags match filter.
// FilterAll matches every key.
func MatchingKeys(favorites map[int64]string, filter string) []int64 {
	tag := strings.TrimSuffix(filter, "s")
	keys := make([]int64, 0, len(favorites))
	for id, joined := range favorites {
		if filter == FilterAll || slices.Contains(session.SplitTags(joined), tag) {
			keys = append(keys, id)
		}
	}
	slices.Sort(keys)
	return keys
}
