package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() Session {
	return New(Profile{
		ID:         1,
		Username:   "benjamin",
		Gender:     "Male",
		Age:        45,
		Height:     68,
		Categories: map[int64]string{1: "Formal", 2: "Business Casual"},
		Favorites:  map[int64]string{1: "Post", 30: "Post,Hat"},
	})
}

func TestNew_CopiesMaps(t *testing.T) {
	cats := map[int64]string{1: "Formal"}
	s := New(Profile{ID: 1, Categories: cats})

	cats[2] = "Dating"
	assert.False(t, s.IsSubscribed(2), "mutating the source map must not leak into the session")
}

func TestSignedIn(t *testing.T) {
	assert.False(t, Session{}.SignedIn())
	assert.True(t, sampleSession().SignedIn())
}

func TestWithCategory_ReturnsNewValue(t *testing.T) {
	before := sampleSession()
	after := before.WithCategory(3, "Dating")

	assert.True(t, after.IsSubscribed(3))
	assert.False(t, before.IsSubscribed(3), "original session must be unchanged")
	assert.Equal(t, []int64{1, 2, 3}, after.CategoryIDs())
}

func TestWithoutCategory(t *testing.T) {
	before := sampleSession()
	after := before.WithoutCategory(1)

	assert.False(t, after.IsSubscribed(1))
	assert.True(t, before.IsSubscribed(1))
	assert.Equal(t, []int64{2}, after.CategoryIDs())
}

func TestCategories_ReturnsCopy(t *testing.T) {
	s := sampleSession()
	cats := s.Categories()
	cats[99] = "Injected"

	assert.False(t, s.IsSubscribed(99))
}

func TestToggleFavoriteTag(t *testing.T) {
	tests := []struct {
		name   string
		postID int64
		tag    string
		want   string
		gone   bool
	}{
		{name: "appends to existing list", postID: 30, tag: "Shoes", want: "Post,Hat,Shoes"},
		{name: "removes present tag", postID: 30, tag: "Hat", want: "Post"},
		{name: "creates new key", postID: 7, tag: "Jacket", want: "Jacket"},
		{name: "drops key when list empties", postID: 1, tag: "Post", gone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSession().ToggleFavoriteTag(tt.postID, tt.tag)
			got, ok := s.Favorites()[tt.postID]
			if tt.gone {
				assert.False(t, ok, "key %d should be removed", tt.postID)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToggleFavoriteTag_TwiceRestores(t *testing.T) {
	s := sampleSession()
	back := s.ToggleFavoriteTag(30, "Socks").ToggleFavoriteTag(30, "Socks")

	assert.Equal(t, s.Favorites(), back.Favorites())
}

func TestWithFavoriteTag_Idempotent(t *testing.T) {
	s := sampleSession().WithFavoriteTag(30, "Hat", true)
	assert.Equal(t, "Post,Hat", s.Favorites()[30])

	s = s.WithFavoriteTag(5, "Belt", false)
	_, ok := s.Favorites()[5]
	assert.False(t, ok)
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, SplitTags(""))
	assert.Equal(t, []string{"Post", "Hat"}, SplitTags("Post,,Hat,"))
	assert.Equal(t, []string{"Hat", "Shoes"}, SplitTags("Hat, Shoes"))
}

func TestFavoriteKeys_Sorted(t *testing.T) {
	s := sampleSession().WithFavoriteTag(12, "Watch", true)
	assert.Equal(t, []int64{1, 12, 30}, s.FavoriteKeys())
}

func TestHolder_ResetSignsOut(t *testing.T) {
	h := NewHolder(sampleSession())
	require.True(t, h.Load().SignedIn())

	h.Reset()
	assert.False(t, h.Load().SignedIn())
	assert.Empty(t, h.Load().Favorites())
}

func TestHolder_ConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	h := NewHolder(New(Profile{ID: 1}))

	var wg sync.WaitGroup
	for i := int64(1); i <= 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			h.Update(func(s Session) Session { return s.WithFavoriteTag(id, "Post", true) })
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.Load().Favorites(), 50)
}
