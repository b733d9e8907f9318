package model

import (
	"encoding/base64"
	"time"
)

// VisibilityAll marks a post visible to every gender.
const VisibilityAll = "All"

// ClothingItems is the canonical, ordered list of item tags a post can carry.
var ClothingItems = []string{"Hat", "Jacket", "Shirt", "Pants", "Belt", "Shoes", "Socks", "Watch"}

// FavoriteTagPost is the favorites tag recorded for a favorited post (as
// opposed to one of its clothing articles).
const FavoriteTagPost = "Post"

// Post is a listing entry as returned by the feed and listing endpoints.
// The post id travels as a JSON string.
type Post struct {
	ID          int64  `json:"post_id,string"`
	ImageBase64 string `json:"image_base64"`
	OwnerID     int64  `json:"owner_id"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// StoredPost is the backend's full record of a post.
type StoredPost struct {
	ID                int64
	OwnerID           int64
	CategoryID        int64
	Category          string
	Description       string
	Image             []byte
	GenderRestriction string
	ClothingItems     []string
	CreatedAt         time.Time
	DeletedAt         *time.Time
}

// Listing is the post as the feed and listing endpoints return it.
func (p *StoredPost) Listing() Post {
	return Post{
		ID:          p.ID,
		ImageBase64: base64.StdEncoding.EncodeToString(p.Image),
		OwnerID:     p.OwnerID,
		Description: p.Description,
		Category:    p.Category,
	}
}

// VisibleTo reports whether a viewer of the given gender may see the post.
func (p *StoredPost) VisibleTo(gender string) bool {
	return p.GenderRestriction == VisibilityAll || p.GenderRestriction == gender
}

// ClothingArticle is a tagged item on a post, annotated with the requesting
// user's votes and the aggregate tally.
type ClothingArticle struct {
	ID               int64  `json:"id"`
	Type             string `json:"type"`
	UserUpvoted      bool   `json:"user_upvoted"`
	UserFavorited    bool   `json:"user_favorited"`
	UserDownvoted    bool   `json:"user_downvoted"`
	UpvotePercentage int    `json:"upvote_percentage"`
	TotalVotes       int    `json:"total_votes"`
}

// IsClothingItem reports whether item is one of ClothingItems.
func IsClothingItem(item string) bool {
	return ClothingItemIndex(item) >= 0
}

// ClothingItemIndex returns the canonical position of item, or -1.
func ClothingItemIndex(item string) int {
	for i, v := range ClothingItems {
		if v == item {
			return i
		}
	}
	return -1
}

// StoredArticle is the backend's record of one clothing article on a post.
type StoredArticle struct {
	ID       int64
	PostID   int64
	Type     string
	Position int
}
