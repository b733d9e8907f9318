// Package api is the typed HTTP client for the Fashion Police endpoints.
//
// Every endpoint is a JSON POST. Failures come back as apperror values of
// exactly three kinds:
//
//	apperror.ErrTransport  the request never produced a response
//	apperror.ErrStatus     the server answered with a non-2xx status
//	apperror.ErrDecode     the body could not be decoded
//
// View-models depend on small interfaces they declare themselves; *Client
// satisfies all of them.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
	"golang.org/x/oauth2"

	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
)

// DefaultTimeout bounds every call unless WithHTTPClient or WithTimeout
// says otherwise.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps response bodies. Listing responses carry base64 images.
const maxBodyBytes = 64 << 20

// RequestIDHeader carries the per-call request id. chi's RequestID
// middleware reads the same header on the server side.
const RequestIDHeader = "X-Request-ID"

// Client calls the remote endpoints relative to a base URL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithToken returns a copy of c that sends token as an
// "Authorization: Bearer" header on every call. An empty token returns c.
//
// BEARER TOKENS VIA OAUTH2:
// oauth2.NewClient wraps the transport so every request gets the header
// from a TokenSource. A StaticTokenSource never refreshes, which matches
// the backend's tokens: they are issued at sign-in and last until they
// expire. The copy keeps the original's transport and timeout.
func (c *Client) WithToken(token string) *Client {
	if token == "" || token == c.token {
		return c
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.http.Timeout

	cp := *c
	cp.http = hc
	cp.token = token
	return &cp
}

// Token returns the bearer token c sends, if any.
func (c *Client) Token() string { return c.token }

// post sends in as JSON to path and decodes a 2xx body into out. A nil out
// discards the body.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return apperror.Transport(path, err)
	}
	reqID := xid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api call failed",
			slog.String("endpoint", path),
			slog.String("request_id", reqID),
			slog.String("error", err.Error()),
		)
		return apperror.Transport(path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		slog.String("endpoint", path),
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return apperror.Status(path, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return apperror.Decode(path, err)
	}
	return nil
}

// Authenticate verifies credentials. Any non-2xx status means the
// credentials were rejected.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, PathAuthenticate, AuthRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the session profile for username.
func (c *Client) Profile(ctx context.Context, username string) (*ProfileResponse, error) {
	var out ProfileResponse
	if err := c.post(ctx, PathProfile, ProfileRequest{Username: username}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckUsername asks whether username is taken.
func (c *Client) CheckUsername(ctx context.Context, username string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.post(ctx, PathUsernameCheck, UsernameRequest{Username: username}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckEmail asks whether email is in use.
func (c *Client) CheckEmail(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.post(ctx, PathEmailCheck, EmailRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.post(ctx, PathRegister, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Categories fetches the public catalog.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.post(ctx, PathCategories, struct{}{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyCategories fetches the categories userID is subscribed to.
func (c *Client) MyCategories(ctx context.Context, userID int64) ([]model.Category, error) {
	var out []model.Category
	if err := c.post(ctx, PathMyCategories, UserRequest{UserID: userID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CategoryFeed fetches one page of a category.
func (c *Client) CategoryFeed(ctx context.Context, in FeedRequest) (*FeedResponse, error) {
	var out FeedResponse
	if err := c.post(ctx, PathCategoryFeed, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subscribe subscribes or unsubscribes a user.
func (c *Client) Subscribe(ctx context.Context, in SubscribeRequest) error {
	return c.post(ctx, PathSubscribe, in, nil)
}

// CreatePost uploads a new post.
func (c *Client) CreatePost(ctx context.Context, in CreatePostRequest) (*CreatePostResponse, error) {
	var out CreatePostResponse
	if err := c.post(ctx, PathCreatePost, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, postID int64) (*GetPostResponse, error) {
	var out GetPostResponse
	if err := c.post(ctx, PathGetPost, PostRequest{PostID: postID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PostDetail fetches the interaction bundle of a post as seen by userID.
func (c *Client) PostDetail(ctx context.Context, postID, userID int64) (*DetailResponse, error) {
	var out DetailResponse
	if err := c.post(ctx, PathPostDetail, DetailRequest{PostID: postID, UserID: userID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArticleAction records a like, dislike or favorite on a clothing article.
func (c *Client) ArticleAction(ctx context.Context, in ArticleActionRequest) (*ArticleActionResponse, error) {
	var out ArticleActionResponse
	if err := c.post(ctx, PathArticleAction, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleFavorite adds or removes a post or clothing favorite.
func (c *Client) ToggleFavorite(ctx context.Context, in FavoriteRequest) error {
	return c.post(ctx, PathToggleFavorite, in, nil)
}

// SubmitComment posts a comment.
func (c *Client) SubmitComment(ctx context.Context, in SubmitCommentRequest) (*SubmitCommentResponse, error) {
	var out SubmitCommentResponse
	if err := c.post(ctx, PathSubmitComment, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComment deletes a comment. The server requires a bearer token.
func (c *Client) DeleteComment(ctx context.Context, commentID, postID int64) error {
	return c.post(ctx, PathDeleteComment, DeleteCommentRequest{CommentID: commentID, PostID: postID}, nil)
}

// DeletePost deletes a post. The server requires a bearer token.
func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	return c.post(ctx, PathDeletePost, DeletePostRequest{ID: postID}, nil)
}

// UserPosts lists posts of the given kind for userID.
func (c *Client) UserPosts(ctx context.Context, userID int64, postType string) ([]model.Post, error) {
	var out []model.Post
	if err := c.post(ctx, PathUserPosts, UserPostsRequest{UserID: userID, PostType: postType}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FavoritePosts fetches the posts with the given ids.
func (c *Client) FavoritePosts(ctx context.Context, keys []int64) ([]model.Post, error) {
	if keys == nil {
		keys = []int64{}
	}
	var out []model.Post
	if err := c.post(ctx, PathFavoritePosts, FavoritePostsRequest{MatchingKeys: keys}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
