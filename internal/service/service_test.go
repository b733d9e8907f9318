package service

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fashionpolice/fashion-police/internal/auth"
	"github.com/fashionpolice/fashion-police/internal/model"
	sqliteRepo "github.com/fashionpolice/fashion-police/internal/repository/sqlite"
)

// fixture wires every service to one in-memory database, the way the
// server does.
type fixture struct {
	db           *sqliteRepo.DB
	tokens       *auth.TokenService
	accounts     *AccountService
	categories   *CategoryService
	posts        *PostService
	interactions *InteractionService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("service-test-secret-0123456789")
	require.NoError(t, err)
	logger := discardLogger()

	return &fixture{
		db:           db,
		tokens:       tokens,
		accounts:     NewAccountService(db, db, db, tokens, auth.NewPasswordServiceForTest(1000), logger),
		categories:   NewCategoryService(db, db, db, logger),
		posts:        NewPostService(db, db, db, db, db, db, logger),
		interactions: NewInteractionService(db, db, db, db, db, logger),
	}
}

// register creates an account with a valid password and fails the test on
// error.
func (f *fixture) register(t *testing.T, username, gender string) *model.User {
	t.Helper()
	res, err := f.accounts.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "Secret1!",
		Gender:   gender,
		Age:      30,
		Height:   70,
	})
	require.NoError(t, err)
	return res.User
}

var testImage = base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0})

// createPost stores a post in Formal and fails the test on error.
func (f *fixture) createPost(t *testing.T, ownerID int64, restriction string, items ...string) *model.StoredPost {
	t.Helper()
	post, err := f.posts.Create(context.Background(), CreatePostInput{
		ImageBase64:       testImage,
		OwnerID:           ownerID,
		Category:          "Formal",
		Description:       "look",
		ClothingItems:     items,
		GenderRestriction: restriction,
	})
	require.NoError(t, err)
	return post
}

// articleIDs returns the ids of a post's articles in position order.
func (f *fixture) articleIDs(t *testing.T, postID int64) []int64 {
	t.Helper()
	views, err := f.db.ListArticles(context.Background(), postID, 0)
	require.NoError(t, err)
	ids := make([]int64, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	return ids
}
