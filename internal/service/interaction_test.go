package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

func TestUpvotePercentage(t *testing.T) {
	tests := []struct {
		up, down int
		want     int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 3, 0},
		{1, 1, 50},
		{1, 2, 33},
		{2, 1, 67},
		{1, 7, 12}, // 12.5
		{3, 5, 38}, // 37.5
		{5, 3, 62}, // 62.5
	}

	for _, tt := range tests {
		got := UpvotePercentage(repository.ArticleStats{Up: tt.up, Down: tt.down})
		assert.Equal(t, tt.want, got, "up=%d down=%d", tt.up, tt.down)
	}
}

// =========================================================================
// ARTICLE ACTIONS
// =========================================================================

func TestArticleAction_VotesAreExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	voter := f.register(t, "voter", model.GenderFemale)
	article := f.articleIDs(t, f.createPost(t, owner.ID, model.VisibilityAll, "Shirt").ID)[0]

	act := func(action, actionType string) *ArticleActionResult {
		t.Helper()
		res, err := f.interactions.ArticleAction(ctx, ArticleActionInput{
			ArticleID: article, UserID: voter.ID, Action: action, ActionType: actionType,
		})
		require.NoError(t, err)
		return res
	}

	res := act(api.ActionLike, api.ActionAdd)
	assert.Equal(t, "Successfully updated up_votes", res.Message)
	assert.Equal(t, 100, res.UpvotePercentage)
	assert.Equal(t, 1, res.TotalVotes)

	res = act(api.ActionDislike, api.ActionAdd)
	assert.Equal(t, "Successfully updated down_votes", res.Message)
	assert.Equal(t, 0, res.UpvotePercentage)
	assert.Equal(t, 1, res.TotalVotes)

	// Removing a like the voter no longer holds leaves the dislike.
	res = act(api.ActionLike, api.ActionRemove)
	assert.Equal(t, 1, res.TotalVotes)

	res = act(api.ActionDislike, api.ActionRemove)
	assert.Equal(t, 0, res.TotalVotes)

	res = act(api.ActionFavorite, api.ActionAdd)
	assert.Equal(t, "Successfully updated favorites", res.Message)
	on, err := f.db.IsFavorite(ctx, voter.ID, repository.FavoriteClothing, article)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestArticleAction_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	article := f.articleIDs(t, f.createPost(t, owner.ID, model.VisibilityAll, "Shirt").ID)[0]

	tests := []struct {
		name string
		in   ArticleActionInput
		want error
		msg  string
	}{
		{
			name: "unknown action",
			in:   ArticleActionInput{ArticleID: article, UserID: owner.ID, Action: "love", ActionType: api.ActionAdd},
			want: apperror.ErrValidation,
			msg:  "Invalid user action",
		},
		{
			name: "unknown action type",
			in:   ArticleActionInput{ArticleID: article, UserID: owner.ID, Action: api.ActionLike, ActionType: "toggle"},
			want: apperror.ErrValidation,
			msg:  "Invalid action type",
		},
		{
			name: "missing article",
			in:   ArticleActionInput{ArticleID: 9999, UserID: owner.ID, Action: api.ActionLike, ActionType: api.ActionAdd},
			want: apperror.ErrNotFound,
			msg:  "Clothing article not found",
		},
		{
			name: "missing user",
			in:   ArticleActionInput{ArticleID: article, UserID: 9999, Action: api.ActionLike, ActionType: api.ActionAdd},
			want: apperror.ErrNotFound,
			msg:  "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.interactions.ArticleAction(ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

// =========================================================================
// FAVORITES
// =========================================================================

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	fan := f.register(t, "fan", model.GenderFemale)
	post := f.createPost(t, owner.ID, model.VisibilityAll, "Hat")

	isFav := func() bool {
		on, err := f.db.IsFavorite(ctx, fan.ID, repository.FavoritePost, post.ID)
		require.NoError(t, err)
		return on
	}
	toggle := func(actionType string) string {
		msg, err := f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "Post", ItemID: post.ID, UserID: fan.ID, ActionType: actionType})
		require.NoError(t, err)
		return msg
	}

	assert.Equal(t, "Successfully added to post favorites", toggle(""))
	assert.True(t, isFav())
	assert.Equal(t, "Successfully removed from post favorites", toggle(""))
	assert.False(t, isFav())

	toggle(api.ActionAdd)
	toggle(api.ActionAdd)
	assert.True(t, isFav(), "repeated add keeps one favorite")
	toggle(api.ActionRemove)
	assert.False(t, isFav())

	t.Run("unknown item type", func(t *testing.T) {
		_, err := f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "outfit", ItemID: post.ID, UserID: fan.ID})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "post", ItemID: 5555, UserID: fan.ID})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("bad action type", func(t *testing.T) {
		_, err := f.interactions.ToggleFavorite(ctx, FavoriteInput{ItemType: "post", ItemID: post.ID, UserID: fan.ID, ActionType: "flip"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

// =========================================================================
// COMMENTS
// =========================================================================

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner", model.GenderMale)
	author := f.register(t, "author", model.GenderFemale)
	stranger := f.register(t, "stranger", model.GenderOther)
	post := f.createPost(t, owner.ID, model.VisibilityAll)

	_, err := f.interactions.SubmitComment(ctx, author.ID, post.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.interactions.SubmitComment(ctx, author.ID, 4242, "hello")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	first, err := f.interactions.SubmitComment(ctx, author.ID, post.ID, "first")
	require.NoError(t, err)
	second, err := f.interactions.SubmitComment(ctx, author.ID, post.ID, "second")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	t.Run("stranger may not delete", func(t *testing.T) {
		err := f.interactions.DeleteComment(ctx, stranger.ID, first.ID, post.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("wrong post", func(t *testing.T) {
		err := f.interactions.DeleteComment(ctx, author.ID, first.ID, post.ID+1)
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Equal(t, "Comment or Post not found.", err.Error())
	})

	t.Run("author deletes", func(t *testing.T) {
		require.NoError(t, f.interactions.DeleteComment(ctx, author.ID, first.ID, post.ID))
	})

	t.Run("post owner deletes", func(t *testing.T) {
		require.NoError(t, f.interactions.DeleteComment(ctx, owner.ID, second.ID, post.ID))
	})

	t.Run("already gone", func(t *testing.T) {
		err := f.interactions.DeleteComment(ctx, owner.ID, second.ID, post.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	comments, err := f.db.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
