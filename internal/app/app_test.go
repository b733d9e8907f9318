package app_test

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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fashionpolice/fashion-police/internal/account"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/app"
	"github.com/fashionpolice/fashion-police/internal/config"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/server"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newBackend(t *testing.T) string {
	t.Helper()
	srv, err := server.New(server.Config{
		DBPath:             ":memory:",
		JWTSecret:          "app-test-secret-0123456789abcdef",
		PasswordIterations: 1000,
	}, discard)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts.URL
}

func signUp(t *testing.T, a *app.App, username, gender string) {
	t.Helper()
	_, err := a.Accounts.SignUp(context.Background(), account.SignUpForm{
		Username: username,
		Email:    username + "@example.com",
		Password: "Secret1!",
		Confirm:  "Secret1!",
		Gender:   gender,
		Age:      "30",
		Height:   "70",
	})
	require.NoError(t, err)
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestApp_FeedUsesConfiguredPageSize(t *testing.T) {
	cfg := &config.Config{APIBaseURL: newBackend(t), APITimeout: 5 * time.Second, PageSize: 2}
	ctx := context.Background()
	formal := model.Category{ID: 1, Name: "Formal"}

	owner := app.New(cfg, discard)
	signUp(t, owner, "ophelia", model.GenderFemale)
	assert.Equal(t, owner.Session().Token, owner.Client().Token())

	require.NoError(t, owner.Feed(formal).ToggleSubscription(ctx))
	feeds := owner.SubscribedFeeds()
	require.Len(t, feeds, 1)
	assert.Equal(t, formal, feeds[0].State().Category)

	for _, desc := range []string{"one", "two", "three"} {
		c := owner.Composer()
		c.SetCategory(formal.Name)
		c.SetImage(testPNG(t))
		c.SetDescription(desc)
		require.NoError(t, c.AddItem("Hat"))
		_, err := c.Submit(ctx)
		require.NoError(t, err)
	}

	mine, err := owner.Listings().UserPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	viewer := app.New(cfg, discard)
	signUp(t, viewer, "vincent", model.GenderMale)
	f := viewer.Feed(formal)
	assert.Equal(t, 2, f.PageSize())

	require.NoError(t, f.Load(ctx))
	st := f.State()
	assert.Len(t, st.Posts, 2)
	assert.False(t, st.Ended)

	require.NoError(t, f.Load(ctx))
	st = f.State()
	assert.Len(t, st.Posts, 3)
	assert.True(t, st.Ended)

	// Detail calls go out with the viewer's token and pass the body check.
	d := viewer.Detail(st.Posts[0])
	require.NoError(t, d.Load(ctx))
	require.NoError(t, d.ToggleLike(ctx, 0))
	assert.True(t, d.State().Articles[0].UserUpvoted)
}

func TestApp_ClientUsesConfiguredTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		slow.Close()
	})

	cfg := &config.Config{APIBaseURL: slow.URL, APITimeout: 50 * time.Millisecond, PageSize: 5}
	a := app.New(cfg, discard)

	start := time.Now()
	_, err := a.Accounts.SignIn(context.Background(), "nobody", "Secret1!")
	require.ErrorIs(t, err, apperror.ErrTransport)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestApp_SignedOutClientHasNoToken(t *testing.T) {
	a := app.New(&config.Config{APIBaseURL: "http://127.0.0.1:1", APITimeout: time.Second, PageSize: 5}, discard)
	assert.Empty(t, a.Client().Token())
	assert.Empty(t, a.SubscribedFeeds())
}
