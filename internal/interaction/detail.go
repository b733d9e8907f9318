// Package interaction is the post detail view-model: per-article votes and
// favorites, the post-level favorite, comments, and post deletion.
//
// OPTIMISTIC TOGGLES:
// Tapping like should feel instant, so the flag flips locally before the
// request leaves and the toggle is marked pending. When the server answers,
// the toggle is confirmed, or on failure the flag is put back the way it
// was and the toggle is marked failed.
//
// WHY VERSIONS?
// A user can tap like, then tap it again before the first answer arrives.
// If the first request then fails, rolling it back would undo the second
// tap too. Every toggle bumps a version counter, and an answer only touches
// the state if its version is still the latest one. Votes and the favorite
// are separate facets with separate counters and separate statuses, so a
// favorite answer never settles a vote that is still in flight.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/inflight"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/session"
)

// ErrNotConfirmed is returned by DeletePost when the owner declines the
// confirmation step.
var ErrNotConfirmed = errors.New("post deletion not confirmed")

// Remote is the slice of the API the detail screen calls. *api.Client
// implements it.
type Remote interface {
	PostDetail(ctx context.Context, postID, userID int64) (*api.DetailResponse, error)
	ArticleAction(ctx context.Context, in api.ArticleActionRequest) (*api.ArticleActionResponse, error)
	ToggleFavorite(ctx context.Context, in api.FavoriteRequest) error
	SubmitComment(ctx context.Context, in api.SubmitCommentRequest) (*api.SubmitCommentResponse, error)
	DeleteComment(ctx context.Context, commentID, postID int64) error
	DeletePost(ctx context.Context, postID int64) error
}

// Article is a clothing article together with the status of its latest
// vote toggle and its latest favorite toggle. Status folds the two together
// for views that show a single indicator.
type Article struct {
	model.ClothingArticle
	VoteStatus     inflight.Status
	FavoriteStatus inflight.Status
	Status         inflight.Status
}

// State is a snapshot of a Detail.
type State struct {
	Post               model.Post
	Articles           []Article
	PostFavorited      bool
	PostFavoriteStatus inflight.Status
	Comments           []model.Comment
	Loaded             bool
	Closed             bool // set once the post has been deleted
}

type articleState struct {
	article     model.ClothingArticle
	voteVersion uint64
	voteStatus  inflight.Status
	favVersion  uint64
	favStatus   inflight.Status
}

// Detail owns the interaction state of one post.
type Detail struct {
	post     model.Post
	remote   Remote
	sessions *session.Holder
	logger   *slog.Logger
	guard    inflight.Guard

	mu             sync.Mutex
	articles       []articleState
	postFavorited  bool
	postFavVersion uint64
	postFavStatus  inflight.Status
	comments       []model.Comment
	loaded         bool
	closed         bool
	loadGen        uint64
}

// New returns the detail view-model for post.
func New(post model.Post, remote Remote, sessions *session.Holder, logger *slog.Logger) *Detail {
	return &Detail{
		post:     post,
		remote:   remote,
		sessions: sessions,
		logger:   logger,
	}
}

// State returns a snapshot of the current state.
func (d *Detail) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := State{
		Post:               d.post,
		Articles:           make([]Article, len(d.articles)),
		PostFavorited:      d.postFavorited,
		PostFavoriteStatus: d.postFavStatus,
		Comments:           append([]model.Comment(nil), d.comments...),
		Loaded:             d.loaded,
		Closed:             d.closed,
	}
	for i, a := range d.articles {
		st.Articles[i] = Article{
			ClothingArticle: a.article,
			VoteStatus:      a.voteStatus,
			FavoriteStatus:  a.favStatus,
			Status:          inflight.Combine(a.voteStatus, a.favStatus),
		}
	}
	return st
}

func (d *Detail) key() string {
	return "detail:" + strconv.FormatInt(d.post.ID, 10)
}

// Load fetches the interaction bundle. Concurrent Loads share one request.
// If ctx ends first Load returns ctx.Err(), while the shared request keeps
// running for the other callers, bounded by the client's HTTP timeout.
func (d *Detail) Load(ctx context.Context) error {
	d.mu.Lock()
	gen := d.loadGen
	d.mu.Unlock()

	userID := d.sessions.Load().ID
	v, _, err := d.guard.Join(ctx, d.key(), func(ctx context.Context) (any, error) {
		return d.remote.PostDetail(ctx, d.post.ID, userID)
	})
	if err != nil {
		d.logger.Error("failed to load post detail",
			slog.Int64("post_id", d.post.ID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return d.apply(gen, v.(*api.DetailResponse))
}

// Refresh re-fetches the bundle, superseding any load still in flight.
func (d *Detail) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.loadGen++
	gen := d.loadGen
	d.mu.Unlock()

	userID := d.sessions.Load().ID
	v, err := d.guard.Supersede(ctx, d.key(), func(ctx context.Context) (any, error) {
		return d.remote.PostDetail(ctx, d.post.ID, userID)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.logger.Error("failed to refresh post detail",
				slog.Int64("post_id", d.post.ID),
				slog.String("error", err.Error()),
			)
		}
		return err
	}
	return d.apply(gen, v.(*api.DetailResponse))
}

// apply installs a fetched bundle unless a newer Refresh started after the
// fetch did. A facet with a toggle still in flight keeps its local flags and
// its pending status; every other facet takes the server's value.
func (d *Detail) apply(gen uint64, resp *api.DetailResponse) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.loadGen {
		return context.Canceled
	}

	prev := make(map[int64]articleState, len(d.articles))
	for _, a := range d.articles {
		prev[a.article.ID] = a
	}
	articles := make([]articleState, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		st := articleState{article: a}
		if old, ok := prev[a.ID]; ok {
			st.voteVersion = old.voteVersion
			st.favVersion = old.favVersion
			if old.voteStatus == inflight.StatusPending {
				st.article = restoreVotes(st.article, old.article)
				st.voteStatus = inflight.StatusPending
			}
			if old.favStatus == inflight.StatusPending {
				st.article = restoreFavorite(st.article, old.article)
				st.favStatus = inflight.StatusPending
			}
		}
		articles = append(articles, st)
	}
	d.articles = articles

	if d.postFavStatus != inflight.StatusPending {
		d.postFavorited = resp.PostFavorited
		d.postFavStatus = inflight.StatusIdle
	}
	d.comments = append([]model.Comment(nil), resp.Comments...)
	d.loaded = true
	return nil
}

// ToggleLike inverts the like on the article at index i.
func (d *Detail) ToggleLike(ctx context.Context, i int) error {
	return d.vote(ctx, i, api.ActionLike)
}

// ToggleDislike inverts the dislike on the article at index i.
func (d *Detail) ToggleDislike(ctx context.Context, i int) error {
	return d.vote(ctx, i, api.ActionDislike)
}

func (d *Detail) vote(ctx context.Context, i int, action string) error {
	d.mu.Lock()
	if i < 0 || i >= len(d.articles) {
		d.mu.Unlock()
		return apperror.ValidationFailed("article", fmt.Sprintf("no article at index %d", i))
	}
	st := &d.articles[i]
	before := st.article
	wasOn := before.UserUpvoted
	if action == api.ActionLike {
		st.article = ApplyLike(before)
	} else {
		wasOn = before.UserDownvoted
		st.article = ApplyDislike(before)
	}
	st.voteVersion++
	st.voteStatus = inflight.StatusPending
	version := st.voteVersion
	d.mu.Unlock()

	resp, err := d.remote.ArticleAction(ctx, api.ArticleActionRequest{
		ClothingID: before.ID,
		UserAction: action,
		ActionType: api.ActionTypeFor(wasOn),
		UserID:     d.sessions.Load().ID,
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	st = d.findArticle(before.ID)
	if st == nil || st.voteVersion != version {
		return err
	}
	if err != nil {
		st.article.UserUpvoted = before.UserUpvoted
		st.article.UserDownvoted = before.UserDownvoted
		st.voteStatus = inflight.StatusFailed
		d.logger.Warn("article action failed, rolled back",
			slog.Int64("article_id", before.ID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return err
	}
	st.voteStatus = inflight.StatusConfirmed
	if resp != nil {
		st.article.UpvotePercentage = resp.UpvotePercentage
		st.article.TotalVotes = resp.TotalVotes
	}
	return nil
}

// ToggleFavorite inverts the favorite on the article at index i and records
// the article's type under the post in the session favorites.
func (d *Detail) ToggleFavorite(ctx context.Context, i int) error {
	d.mu.Lock()
	if i < 0 || i >= len(d.articles) {
		d.mu.Unlock()
		return apperror.ValidationFailed("article", fmt.Sprintf("no article at index %d", i))
	}
	st := &d.articles[i]
	before := st.article
	st.article = ApplyFavorite(before)
	st.favVersion++
	st.favStatus = inflight.StatusPending
	version := st.favVersion
	d.mu.Unlock()

	wasOn := before.UserFavorited
	s := d.sessions.Update(func(s session.Session) session.Session {
		return s.WithFavoriteTag(d.post.ID, before.Type, !wasOn)
	})

	err := d.remote.ToggleFavorite(ctx, api.FavoriteRequest{
		ItemType:   api.ItemTypeClothing,
		ItemID:     before.ID,
		UserID:     s.ID,
		ActionType: api.ActionTypeFor(wasOn),
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	st = d.findArticle(before.ID)
	if st == nil || st.favVersion != version {
		return err
	}
	if err != nil {
		st.article.UserFavorited = wasOn
		st.favStatus = inflight.StatusFailed
		d.sessions.Update(func(s session.Session) session.Session {
			return s.WithFavoriteTag(d.post.ID, before.Type, wasOn)
		})
		d.logger.Warn("article favorite failed, rolled back",
			slog.Int64("article_id", before.ID),
			slog.String("error", err.Error()),
		)
		return err
	}
	st.favStatus = inflight.StatusConfirmed
	return nil
}

// TogglePostFavorite inverts the post-level favorite and records the "Post"
// tag under the post in the session favorites.
func (d *Detail) TogglePostFavorite(ctx context.Context) error {
	d.mu.Lock()
	wasOn := d.postFavorited
	d.postFavorited = !wasOn
	d.postFavVersion++
	d.postFavStatus = inflight.StatusPending
	version := d.postFavVersion
	d.mu.Unlock()

	s := d.sessions.Update(func(s session.Session) session.Session {
		return s.WithFavoriteTag(d.post.ID, model.FavoriteTagPost, !wasOn)
	})

	err := d.remote.ToggleFavorite(ctx, api.FavoriteRequest{
		ItemType:   api.ItemTypePost,
		ItemID:     d.post.ID,
		UserID:     s.ID,
		ActionType: api.ActionTypeFor(wasOn),
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.postFavVersion != version {
		return err
	}
	if err != nil {
		d.postFavorited = wasOn
		d.postFavStatus = inflight.StatusFailed
		d.sessions.Update(func(s session.Session) session.Session {
			return s.WithFavoriteTag(d.post.ID, model.FavoriteTagPost, wasOn)
		})
		d.logger.Warn("post favorite failed, rolled back",
			slog.Int64("post_id", d.post.ID),
			slog.String("error", err.Error()),
		)
		return err
	}
	d.postFavStatus = inflight.StatusConfirmed
	return nil
}

func (d *Detail) findArticle(id int64) *articleState {
	for i := range d.articles {
		if d.articles[i].article.ID == id {
			return &d.articles[i]
		}
	}
	return nil
}

// SubmitComment posts text as the signed-in user and re-fetches the bundle.
func (d *Detail) SubmitComment(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return apperror.ValidationFailed("comment", "Comment cannot be empty")
	}
	s := d.sessions.Load()
	if !s.SignedIn() {
		return apperror.Unauthorized("sign in to comment")
	}

	if _, err := d.remote.SubmitComment(ctx, api.SubmitCommentRequest{
		UserID: s.ID,
		PostID: d.post.ID,
		Text:   text,
	}); err != nil {
		d.logger.Error("failed to submit comment",
			slog.Int64("post_id", d.post.ID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return d.Refresh(ctx)
}

// CanDeleteComment reports whether the signed-in user may delete the
// comment. The server enforces the same rule.
func (d *Detail) CanDeleteComment(commentID int64) bool {
	c, ok := d.comment(commentID)
	return ok && c.CanDelete(d.sessions.Load().ID, d.post.OwnerID)
}

// DeleteComment deletes a comment and re-fetches the bundle.
func (d *Detail) DeleteComment(ctx context.Context, commentID int64) error {
	c, ok := d.comment(commentID)
	if !ok {
		return apperror.NotFound("comment", strconv.FormatInt(commentID, 10))
	}
	if !c.CanDelete(d.sessions.Load().ID, d.post.OwnerID) {
		return apperror.Forbidden("only the post owner or the comment owner can delete a comment")
	}

	if err := d.remote.DeleteComment(ctx, commentID, d.post.ID); err != nil {
		d.logger.Error("failed to delete comment",
			slog.Int64("comment_id", commentID),
			slog.String("error", err.Error()),
		)
		return err
	}
	return d.Refresh(ctx)
}

func (d *Detail) comment(id int64) (model.Comment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.comments {
		if c.ID == id {
			return c, true
		}
	}
	return model.Comment{}, false
}

// IsOwner reports whether the signed-in user owns the post.
func (d *Detail) IsOwner() bool {
	id := d.sessions.Load().ID
	return id != 0 && id == d.post.OwnerID
}

// DeletePost asks confirm and, on a yes, deletes the post and closes the
// detail. Only the owner may delete.
func (d *Detail) DeletePost(ctx context.Context, confirm func() bool) error {
	if !d.IsOwner() {
		return apperror.Forbidden("only the owner can delete a post")
	}
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}

	if err := d.remote.DeletePost(ctx, d.post.ID); err != nil {
		d.logger.Error("failed to delete post",
			slog.Int64("post_id", d.post.ID),
			slog.String("error", err.Error()),
		)
		return err
	}

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.sessions.Update(func(s session.Session) session.Session {
		for _, tag := range s.FavoriteTags(d.post.ID) {
			s = s.WithFavoriteTag(d.post.ID, tag, false)
		}
		return s
	})
	return nil
}
