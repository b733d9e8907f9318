package server_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fashionpolice/fashion-police/internal/account"
	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/compose"
	"github.com/fashionpolice/fashion-police/internal/feed"
	"github.com/fashionpolice/fashion-police/internal/interaction"
	"github.com/fashionpolice/fashion-police/internal/listing"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/server"
	"github.com/fashionpolice/fashion-police/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *slog.Logger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv, err := server.New(server.Config{
		DBPath:             ":memory:",
		JWTSecret:          "server-test-secret-0123456789",
		PasswordIterations: 1000,
	}, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts, logger
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 90, B: uint8(y * 12), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type user struct {
	sessions *session.Holder
	accounts *account.Service
}

func signUp(t *testing.T, client *api.Client, logger *slog.Logger, username, gender string) *user {
	t.Helper()
	u := &user{sessions: session.NewHolder(session.Session{})}
	u.accounts = account.NewService(client, u.sessions, logger)

	sess, err := u.accounts.SignUp(context.Background(), account.SignUpForm{
		Username: username,
		Email:    username + "@example.com",
		Password: "Secret1!",
		Confirm:  "Secret1!",
		Gender:   gender,
		Age:      "27",
		Height:   "66",
	})
	require.NoError(t, err)
	require.NotZero(t, sess.ID)
	require.NotEmpty(t, sess.Token)
	return u
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestClientAgainstServer drives the client view-models through a whole
// session against the development backend.
func TestClientAgainstServer(t *testing.T) {
	ts, logger := newTestServer(t)
	ctx := context.Background()
	client := api.New(ts.URL, api.WithLogger(logger))
	formal := model.Category{ID: 1, Name: "Formal"}

	owner := signUp(t, client, logger, "olivia", model.GenderFemale)
	viewer := signUp(t, client, logger, "victor", model.GenderMale)

	// ---- sign-up rejects taken names before creating anything ----
	_, err := owner.accounts.SignUp(ctx, account.SignUpForm{
		Username: "olivia", Email: "olivia@example.com", Password: "Secret1!", Confirm: "Secret1!",
		Gender: model.GenderFemale, Age: "27", Height: "66",
	})
	require.ErrorIs(t, err, apperror.ErrConflict)
	fields := apperror.Fields(err)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")

	// ---- sign-in ----
	_, err = owner.accounts.SignIn(ctx, "olivia", "Wrong1!!")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	ownerSess, err := owner.accounts.SignIn(ctx, "olivia", "Secret1!")
	require.NoError(t, err)
	assert.Equal(t, model.GenderFemale, ownerSess.Gender)

	// ---- subscribe and post ----
	ownerFeed := feed.New(formal, client, owner.sessions, logger)
	require.NoError(t, ownerFeed.ToggleSubscription(ctx))
	assert.True(t, owner.sessions.Load().IsSubscribed(formal.ID))

	composer := compose.New(client, owner.sessions, logger)
	composer.SetCategory(formal.Name)
	composer.SetImage(testPNG(t))
	composer.SetDescription("gala")
	require.NoError(t, composer.AddItem("Shoes"))
	require.NoError(t, composer.AddItem("Hat"))
	postID, err := composer.Submit(ctx)
	require.NoError(t, err)
	require.NotZero(t, postID)

	mine, err := listing.NewService(client, owner.sessions, logger).MyCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Category{formal}, mine)

	// ---- the viewer finds it in the feed ----
	viewerFeed := feed.New(formal, client, viewer.sessions, logger)
	require.NoError(t, viewerFeed.Load(ctx))
	st := viewerFeed.State()
	require.Len(t, st.Posts, 1)
	post := st.Posts[0]
	assert.Equal(t, postID, post.ID)
	assert.Equal(t, "gala", post.Description)
	assert.True(t, st.Ended)
	assert.False(t, st.Subscribed)

	// ---- and interacts with it ----
	viewerSess := viewer.sessions.Load()
	detail := interaction.New(post, client.WithToken(viewerSess.Token), viewer.sessions, logger)
	require.NoError(t, detail.Load(ctx))
	ds := detail.State()
	require.Len(t, ds.Articles, 2)
	assert.Equal(t, "Hat", ds.Articles[0].Type)
	assert.Equal(t, "Shoes", ds.Articles[1].Type)

	require.NoError(t, detail.ToggleLike(ctx, 0))
	require.NoError(t, detail.ToggleDislike(ctx, 1))
	require.NoError(t, detail.ToggleFavorite(ctx, 1))
	require.NoError(t, detail.TogglePostFavorite(ctx))
	require.NoError(t, detail.SubmitComment(ctx, "sharp"))

	ds = detail.State()
	assert.Equal(t, 100, ds.Articles[0].UpvotePercentage)
	assert.Equal(t, 1, ds.Articles[0].TotalVotes)
	assert.True(t, ds.Articles[0].UserUpvoted)
	assert.Equal(t, 0, ds.Articles[1].UpvotePercentage)
	assert.True(t, ds.Articles[1].UserDownvoted)
	assert.True(t, ds.Articles[1].UserFavorited)
	assert.True(t, ds.PostFavorited)
	require.Len(t, ds.Comments, 1)
	commentID := ds.Comments[0].ID
	assert.Equal(t, viewerSess.ID, ds.Comments[0].OwnerID)

	// The server recorded the favorites the session shows.
	profile, err := client.Profile(ctx, "victor")
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{postID: "Post,Shoes"}, profile.Favorites)

	favs, err := listing.NewService(client, viewer.sessions, logger).FavoritePosts(ctx, listing.FilterAll)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, postID, favs[0].ID)

	// ---- deletion needs a bearer token ----
	err = client.DeletePost(ctx, postID)
	require.ErrorIs(t, err, apperror.ErrStatus)
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusCode(err))

	err = client.WithToken(viewerSess.Token).DeletePost(ctx, postID)
	assert.Equal(t, http.StatusForbidden, apperror.StatusCode(err))

	// ---- the owner moderates and deletes ----
	ownerDetail := interaction.New(post, client.WithToken(owner.sessions.Load().Token), owner.sessions, logger)
	require.NoError(t, ownerDetail.Load(ctx))
	require.True(t, ownerDetail.CanDeleteComment(commentID))
	require.NoError(t, ownerDetail.DeleteComment(ctx, commentID))
	assert.Empty(t, ownerDetail.State().Comments)

	require.NoError(t, ownerDetail.DeletePost(ctx, func() bool { return true }))
	assert.True(t, ownerDetail.State().Closed)

	require.NoError(t, viewerFeed.Refresh(ctx))
	assert.Empty(t, viewerFeed.State().Posts)

	profile, err = client.Profile(ctx, "victor")
	require.NoError(t, err)
	assert.Empty(t, profile.Favorites)
}

func TestBodyUserMustMatchToken(t *testing.T) {
	ts, logger := newTestServer(t)
	ctx := context.Background()
	client := api.New(ts.URL, api.WithLogger(logger))

	alice := signUp(t, client, logger, "alice", model.GenderFemale).sessions.Load()
	bob := signUp(t, client, logger, "bobby", model.GenderMale).sessions.Load()
	asBob := client.WithToken(bob.Token)

	// Bob's token cannot subscribe Alice.
	err := asBob.Subscribe(ctx, api.SubscribeRequest{CategoryID: 1, UserID: alice.ID, Subscribe: true})
	require.ErrorIs(t, err, apperror.ErrStatus)
	assert.Equal(t, http.StatusForbidden, apperror.StatusCode(err))

	_, err = asBob.SubmitComment(ctx, api.SubmitCommentRequest{UserID: alice.ID, PostID: 1, Text: "not me"})
	assert.Equal(t, http.StatusForbidden, apperror.StatusCode(err))

	// His own id passes.
	require.NoError(t, asBob.Subscribe(ctx, api.SubscribeRequest{CategoryID: 1, UserID: bob.ID, Subscribe: true}))

	// A bad token is rejected outright rather than treated as anonymous.
	err = client.WithToken("not-a-jwt").Subscribe(ctx, api.SubscribeRequest{CategoryID: 1, UserID: alice.ID, Subscribe: true})
	assert.Equal(t, http.StatusUnauthorized, apperror.StatusCode(err))

	// No token keeps the body id.
	require.NoError(t, client.Subscribe(ctx, api.SubscribeRequest{CategoryID: 1, UserID: alice.ID, Subscribe: true}))
}
