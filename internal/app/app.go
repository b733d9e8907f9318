// Package app wires the client SDK from configuration.
//
// DEPENDENCY INJECTION FLOW:
// A client binary loads a config.Config and calls New, which creates:
//
//	api.Client (API_BASE_URL, API_TIMEOUT) → session.Holder → account.Service
//
// View-models are built on demand after sign-in. Each one gets the client
// carrying the current session's bearer token, so the backend can match the
// token against the user named in request bodies. Feeds are paged with
// PAGE_SIZE.
package app

import (
	"log/slog"

	"github.com/fashionpolice/fashion-police/internal/account"
	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/compose"
	"github.com/fashionpolice/fashion-police/internal/config"
	"github.com/fashionpolice/fashion-police/internal/feed"
	"github.com/fashionpolice/fashion-police/internal/interaction"
	"github.com/fashionpolice/fashion-police/internal/listing"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/session"
)

// App is one signed-in (or signed-out) client.
type App struct {
	client   *api.Client
	sessions *session.Holder
	logger   *slog.Logger
	pageSize int

	Accounts *account.Service
}

// New builds the client for cfg. Extra options are applied after the ones
// derived from cfg, so tests can swap the HTTP client.
func New(cfg *config.Config, logger *slog.Logger, opts ...api.Option) *App {
	clientOpts := append([]api.Option{
		api.WithTimeout(cfg.APITimeout),
		api.WithLogger(logger),
	}, opts...)
	client := api.New(cfg.APIBaseURL, clientOpts...)
	sessions := session.NewHolder(session.Session{})

	return &App{
		client:   client,
		sessions: sessions,
		logger:   logger,
		pageSize: cfg.PageSize,
		Accounts: account.NewService(client, sessions, logger),
	}
}

// Session returns the current session.
func (a *App) Session() session.Session { return a.sessions.Load() }

// Client returns the API client carrying the current session's token.
// Signed out, it is the bare client.
func (a *App) Client() *api.Client {
	return a.client.WithToken(a.sessions.Load().Token)
}

// Feed returns the feed view-model for category.
func (a *App) Feed(category model.Category) *feed.Feed {
	return feed.New(category, a.Client(), a.sessions, a.logger, feed.WithPageSize(a.pageSize))
}

// SubscribedFeeds returns a feed for every category the session follows,
// ordered by category id.
func (a *App) SubscribedFeeds() []*feed.Feed {
	s := a.sessions.Load()
	names := s.Categories()
	feeds := make([]*feed.Feed, 0, len(names))
	for _, id := range s.CategoryIDs() {
		feeds = append(feeds, a.Feed(model.Category{ID: id, Name: names[id]}))
	}
	return feeds
}

// Detail returns the interaction view-model for post.
func (a *App) Detail(post model.Post) *interaction.Detail {
	return interaction.New(post, a.Client(), a.sessions, a.logger)
}

// Composer returns a fresh post composer.
func (a *App) Composer() *compose.Composer {
	return compose.New(a.Client(), a.sessions, a.logger)
}

// Listings returns the "my posts" and favorites listing service.
func (a *App) Listings() *listing.Service {
	return listing.NewService(a.Client(), a.sessions, a.logger)
}
