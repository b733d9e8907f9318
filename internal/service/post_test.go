package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
)

// =========================================================================
// CREATE
// =========================================================================

func TestCreatePost_OrdersItemsAndDefaultsVisibility(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "maker", model.GenderMale)

	post := f.createPost(t, owner.ID, "", "Watch", "Hat", "Shirt")
	assert.Equal(t, []string{"Hat", "Shirt", "Watch"}, post.ClothingItems)
	assert.Equal(t, model.VisibilityAll, post.GenderRestriction)
	assert.Equal(t, "Formal", post.Category)

	stored, err := f.posts.Get(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff, 0xe0}, stored.Image)
}

func TestCreatePost_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "maker", model.GenderMale)

	base := CreatePostInput{
		ImageBase64: testImage,
		OwnerID:     owner.ID,
		Category:    "Formal",
	}

	tests := []struct {
		name   string
		mutate func(*CreatePostInput)
		field  string
	}{
		{"no category", func(in *CreatePostInput) { in.Category = "" }, "category"},
		{"unknown category", func(in *CreatePostInput) { in.Category = "Pajamas" }, "category"},
		{"no image", func(in *CreatePostInput) { in.ImageBase64 = "" }, "image"},
		{"bad image", func(in *CreatePostInput) { in.ImageBase64 = "%%%" }, "image"},
		{"bad visibility", func(in *CreatePostInput) { in.GenderRestriction = "Nobody" }, "gender_restriction"},
		{"unknown item", func(in *CreatePostInput) { in.ClothingItems = []string{"Cape"} }, "clothing_items"},
		{"repeated item", func(in *CreatePostInput) { in.ClothingItems = []string{"Hat", "Hat"} }, "clothing_items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := f.posts.Create(context.Background(), in)
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.field, apperror.FieldOf(err))
		})
	}

	t.Run("unknown owner", func(t *testing.T) {
		in := base
		in.OwnerID = 777
		_, err := f.posts.Create(context.Background(), in)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

// =========================================================================
// DETAIL
// =========================================================================

func TestDetail_ReflectsViewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	viewer := f.register(t, "viewer", model.GenderFemale)
	other := f.register(t, "other", model.GenderOther)

	post := f.createPost(t, owner.ID, model.VisibilityAll, "Hat", "Shoes")
	articles := f.articleIDs(t, post.ID)

	like := func(userID, articleID int64, action string) {
		_, err := f.interactions.ArticleAction(ctx, ArticleActionInput{
			ArticleID: articleID, UserID: userID, Action: action, ActionType: api.ActionAdd,
		})
		require.NoError(t, err)
	}
	like(viewer.ID, articles[0], api.ActionLike)
	like(other.ID, articles[0], api.ActionLike)
	like(owner.ID, articles[0], api.ActionDislike)
	like(viewer.ID, articles[1], api.ActionFavorite)

	_, err := f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "Post", ItemID: post.ID, UserID: viewer.ID})
	require.NoError(t, err)
	_, err = f.interactions.SubmitComment(ctx, other.ID, post.ID, " nice ")
	require.NoError(t, err)

	detail, err := f.posts.Detail(ctx, post.ID, viewer.ID)
	require.NoError(t, err)

	require.Len(t, detail.Articles, 2)
	hat, shoes := detail.Articles[0], detail.Articles[1]
	assert.Equal(t, "Hat", hat.Type)
	assert.True(t, hat.UserUpvoted)
	assert.False(t, hat.UserDownvoted)
	assert.Equal(t, 67, hat.UpvotePercentage)
	assert.Equal(t, 3, hat.TotalVotes)
	assert.True(t, shoes.UserFavorited)
	assert.Zero(t, shoes.TotalVotes)
	assert.Zero(t, shoes.UpvotePercentage)

	assert.True(t, detail.PostFavorited)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "nice", detail.Comments[0].Text)

	anon, err := f.posts.Detail(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.False(t, anon.PostFavorited)
	assert.False(t, anon.Articles[0].UserUpvoted)
}

// =========================================================================
// DELETE AND LISTINGS
// =========================================================================

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	stranger := f.register(t, "stranger", model.GenderMale)
	post := f.createPost(t, owner.ID, model.VisibilityAll)

	err := f.posts.Delete(ctx, stranger.ID, post.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.posts.Delete(ctx, owner.ID, post.ID))

	_, err = f.posts.Get(ctx, post.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.posts.Delete(ctx, owner.ID, post.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	fan := f.register(t, "fan", model.GenderFemale)

	first := f.createPost(t, owner.ID, model.VisibilityAll, "Hat")
	second := f.createPost(t, owner.ID, model.VisibilityAll, "Hat")
	articles := f.articleIDs(t, second.ID)

	_, err := f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "post", ItemID: first.ID, UserID: fan.ID, ActionType: api.ActionAdd})
	require.NoError(t, err)
	// A clothing favorite alone does not make the post a favorite.
	_, err = f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "clothing", ItemID: articles[0], UserID: fan.ID, ActionType: api.ActionAdd})
	require.NoError(t, err)

	own, err := f.posts.UserPosts(ctx, owner.ID, api.PostTypeUser)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	favs, err := f.posts.UserPosts(ctx, fan.ID, api.PostTypeFavorite)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, first.ID, favs[0].ID)

	_, err = f.posts.UserPosts(ctx, fan.ID, "everything")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	byIDs, err := f.posts.ByIDs(ctx, []int64{second.ID, 12345})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, second.ID, byIDs[0].ID)
}
