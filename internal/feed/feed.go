// Package feed is the paginated category feed view-model.
//
// CURSOR PAGINATION:
// Pages are fetched with a cursor, the id of the last post currently held,
// instead of an offset. New posts arriving at the head of a category would
// shift every offset and make the next page repeat posts the user has
// already seen; a cursor keeps pointing at the same place.
//
// The feed has ended once a page comes back shorter than the page size.
// That only holds while the server honours the requested size, so the page
// size is capped at api.MaxPageSize, the largest page the backend serves.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/inflight"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/session"
)

// DefaultPageSize is the number of posts requested per page.
const DefaultPageSize = 5

// Remote is the slice of the API the feed calls. *api.Client implements it.
type Remote interface {
	CategoryFeed(ctx context.Context, in api.FeedRequest) (*api.FeedResponse, error)
	Subscribe(ctx context.Context, in api.SubscribeRequest) error
}

// State is a snapshot of a Feed.
type State struct {
	Category           model.Category
	Posts              []model.Post
	Ended              bool
	Loading            bool
	Subscribed         bool
	SubscriptionStatus inflight.Status
}

// Feed pages through one category.
type Feed struct {
	category model.Category
	pageSize int
	remote   Remote
	sessions *session.Holder
	logger   *slog.Logger
	guard    inflight.Guard

	mu         sync.Mutex
	posts      []model.Post
	cursor     string
	ended      bool
	loading    bool
	subscribed bool
	subVersion uint64
	subStatus  inflight.Status
	gen        uint64 // bumped by every fetch and Refresh
}

// Option configures a Feed.
type Option func(*Feed)

// WithPageSize overrides DefaultPageSize. Non-positive sizes are ignored
// and sizes above api.MaxPageSize are capped.
func WithPageSize(n int) Option {
	return func(f *Feed) {
		if n > 0 {
			f.pageSize = min(n, api.MaxPageSize)
		}
	}
}

// New returns the feed for category. The subscription flag starts from the
// current session.
func New(category model.Category, remote Remote, sessions *session.Holder, logger *slog.Logger, opts ...Option) *Feed {
	f := &Feed{
		category:   category,
		pageSize:   DefaultPageSize,
		remote:     remote,
		sessions:   sessions,
		logger:     logger,
		subscribed: sessions.Load().IsSubscribed(category.ID),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns a snapshot of the feed.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		Category:           f.category,
		Posts:              append([]model.Post(nil), f.posts...),
		Ended:              f.ended,
		Loading:            f.loading,
		Subscribed:         f.subscribed,
		SubscriptionStatus: f.subStatus,
	}
}

// PageSize returns the number of posts requested per page.
func (f *Feed) PageSize() int { return f.pageSize }

func (f *Feed) key() string {
	return "feed:" + strconv.FormatInt(f.category.ID, 10)
}

// Load fetches the page after the cursor and appends it to the held posts.
// It does nothing once the feed has ended.
func (f *Feed) Load(ctx context.Context) error {
	return f.fetch(ctx, false)
}

// Next clears the held posts and fetches the page after the cursor.
func (f *Feed) Next(ctx context.Context) error {
	return f.fetch(ctx, true)
}

// Refresh resets the cursor and all held posts and fetches the first page,
// cancelling any page load still in flight.
func (f *Feed) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.gen++
	f.posts = nil
	f.cursor = ""
	f.ended = false
	f.mu.Unlock()
	return f.fetch(ctx, false)
}

func (f *Feed) fetch(ctx context.Context, clear bool) error {
	f.mu.Lock()
	if f.ended {
		f.mu.Unlock()
		return nil
	}
	if clear {
		f.posts = nil
	}
	f.gen++
	gen := f.gen
	cursor := f.cursor
	f.loading = true
	f.mu.Unlock()

	s := f.sessions.Load()
	req := api.FeedRequest{
		CategoryID: f.category.ID,
		UserID:     s.ID,
		LastPostID: cursor,
		PageSize:   f.pageSize,
		Gender:     s.Gender,
	}
	v, err := f.guard.Supersede(ctx, f.key(), func(ctx context.Context) (any, error) {
		return f.remote.CategoryFeed(ctx, req)
	})
	if errors.Is(err, context.Canceled) && ctx.Err() == nil {
		// A newer load took over and owns the loading flag.
		return err
	}
	if err != nil {
		f.mu.Lock()
		if f.gen == gen {
			f.loading = false
		}
		f.mu.Unlock()
		f.logger.Error("failed to load category page",
			slog.Int64("category_id", f.category.ID),
			slog.String("cursor", cursor),
			slog.String("error", err.Error()),
		)
		return err
	}
	return f.install(gen, v.(*api.FeedResponse))
}

// install appends a fetched page unless another fetch or a Refresh started
// after this one did. A stale page returns context.Canceled and leaves the
// state to the newer fetch.
func (f *Feed) install(gen uint64, resp *api.FeedResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return context.Canceled
	}
	f.loading = false
	f.posts = append(f.posts, resp.Posts...)
	if n := len(resp.Posts); n > 0 {
		f.cursor = strconv.FormatInt(resp.Posts[n-1].ID, 10)
	}
	if len(resp.Posts) < f.pageSize {
		f.ended = true
	}
	if f.subStatus != inflight.StatusPending {
		f.subscribed = resp.IsSubscribed
	}
	return nil
}

// ToggleSubscription subscribes or unsubscribes the signed-in user. The
// flag and the session's categories change immediately and are rolled back
// if the server rejects the change.
func (f *Feed) ToggleSubscription(ctx context.Context) error {
	f.mu.Lock()
	wasOn := f.subscribed
	f.subscribed = !wasOn
	f.subVersion++
	f.subStatus = inflight.StatusPending
	version := f.subVersion
	f.mu.Unlock()

	s := f.sessions.Update(func(s session.Session) session.Session {
		return f.withSubscription(s, !wasOn)
	})

	err := f.remote.Subscribe(ctx, api.SubscribeRequest{
		CategoryID: f.category.ID,
		UserID:     s.ID,
		Subscribe:  !wasOn,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subVersion != version {
		return err
	}
	if err != nil {
		f.subscribed = wasOn
		f.subStatus = inflight.StatusFailed
		f.sessions.Update(func(s session.Session) session.Session {
			return f.withSubscription(s, wasOn)
		})
		f.logger.Warn("subscription change failed, rolled back",
			slog.Int64("category_id", f.category.ID),
			slog.Bool("subscribe", !wasOn),
			slog.String("error", err.Error()),
		)
		return err
	}
	f.subStatus = inflight.StatusConfirmed
	return nil
}

func (f *Feed) withSubscription(s session.Session, on bool) session.Session {
	if on {
		return s.WithCategory(f.category.ID, f.category.Name)
	}
	return s.WithoutCategory(f.category.ID)
}
