package api

import "github.com/fashionpolice/fashion-police/internal/model"

// Endpoint paths, relative to the base URL. The development backend mounts
// its handlers on the same paths.
const (
	PathAuthenticate   = "/auth/verify"
	PathProfile        = "/auth/profile"
	PathUsernameCheck  = "/auth/username"
	PathEmailCheck     = "/auth/email"
	PathRegister       = "/auth/register"
	PathCategories     = "/categories"
	PathMyCategories   = "/categories/mine"
	PathCategoryFeed   = "/categories/feed"
	PathSubscribe      = "/categories/subscribe"
	PathCreatePost     = "/posts/create"
	PathGetPost        = "/posts/get"
	PathPostDetail     = "/posts/detail"
	PathDeletePost     = "/posts/delete"
	PathUserPosts      = "/posts/user"
	PathFavoritePosts  = "/posts/favorites"
	PathArticleAction  = "/articles/action"
	PathToggleFavorite = "/favorites/toggle"
	PathSubmitComment  = "/comments/submit"
	PathDeleteComment  = "/comments/delete"
)

// Article actions and their add/remove direction.
const (
	ActionLike     = "like"
	ActionDislike  = "dislike"
	ActionFavorite = "favorite"

	ActionAdd    = "add"
	ActionRemove = "remove"
)

// Favorite item types.
const (
	ItemTypePost     = "post"
	ItemTypeClothing = "clothing"
)

// Listing kinds for UserPosts.
const (
	PostTypeUser     = "user_posts"
	PostTypeFavorite = "favorite_posts"
)

// MaxPageSize is the largest feed page the backend serves. Larger requests
// are clamped to it.
const MaxPageSize = 50

// ActionTypeFor returns the action that flips a facet whose current state is
// wasOn.
func ActionTypeFor(wasOn bool) string {
	if wasOn {
		return ActionRemove
	}
	return ActionAdd
}

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type ProfileRequest struct {
	Username string `json:"username"`
}

// ProfileResponse is the session profile. A response with ID 0 carries only
// Message ("Username doesn't exist").
type ProfileResponse struct {
	ID         int64            `json:"id,omitempty"`
	Gender     string           `json:"gender,omitempty"`
	Age        int              `json:"age,omitempty"`
	Height     int              `json:"height,omitempty"`
	Categories map[int64]string `json:"categories,omitempty"`
	Favorites  map[int64]string `json:"favorites,omitempty"`
	Message    string           `json:"message,omitempty"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Age      int    `json:"age"`
	Height   int    `json:"height"`
}

type RegisterResponse struct {
	ID        int64  `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at,omitempty"`
	Token     string `json:"token,omitempty"`
}

type UserRequest struct {
	UserID int64 `json:"user_id"`
}

// FeedRequest asks for one page of a category. LastPostID is empty for the
// first page.
type FeedRequest struct {
	CategoryID int64  `json:"categoryId,string"`
	UserID     int64  `json:"userId"`
	LastPostID string `json:"lastPostId"`
	PageSize   int    `json:"pageSize"`
	Gender     string `json:"gender"`
}

type FeedResponse struct {
	Posts        []model.Post `json:"images_data"`
	IsSubscribed bool         `json:"is_subscribed"`
}

type SubscribeRequest struct {
	CategoryID int64 `json:"categoryId,string"`
	UserID     int64 `json:"userId"`
	Subscribe  bool  `json:"subscribe"`
}

type CreatePostRequest struct {
	Image             string   `json:"image"` // base64
	OwnerID           int64    `json:"owner_id"`
	Category          string   `json:"category"`
	Description       string   `json:"description"`
	ClothingItems     []string `json:"clothing_items"`
	GenderRestriction string   `json:"gender_restriction"`
}

type CreatePostResponse struct {
	Message string `json:"message"`
	PostID  int64  `json:"post_id"`
}

type PostRequest struct {
	PostID int64 `json:"post_id"`
}

type GetPostResponse struct {
	OwnerID     int64  `json:"owner_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageBase64 string `json:"image_base64"`
}

type DetailRequest struct {
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

// DetailResponse is the per-user interaction bundle of a post.
type DetailResponse struct {
	Articles      []model.ClothingArticle `json:"articles"`
	PostFavorited bool                    `json:"post_favorited"`
	Comments      []model.Comment         `json:"comments"`
}

type ArticleActionRequest struct {
	ClothingID int64  `json:"clothing_id"`
	UserAction string `json:"user_action"`
	ActionType string `json:"action_type"`
	UserID     int64  `json:"user_id"`
}

type ArticleActionResponse struct {
	Message          string `json:"message"`
	UpvotePercentage int    `json:"upvote_percentage"`
	TotalVotes       int    `json:"total_votes"`
}

type FavoriteRequest struct {
	ItemType   string `json:"itemType"`
	ItemID     int64  `json:"itemId"`
	UserID     int64  `json:"user_id"`
	ActionType string `json:"action_type"`
}

type SubmitCommentRequest struct {
	UserID int64  `json:"user_id"`
	PostID int64  `json:"postId,string"`
	Text   string `json:"commentText"`
}

type SubmitCommentResponse struct {
	Message   string `json:"message"`
	CommentID int64  `json:"comment_id"`
	CreatedAt string `json:"created_at,omitempty"`
}

type DeleteCommentRequest struct {
	CommentID int64 `json:"commentId"`
	PostID    int64 `json:"postId,string"`
}

type DeletePostRequest struct {
	ID int64 `json:"id,string"`
}

type UserPostsRequest struct {
	UserID   int64  `json:"user_id"`
	PostType string `json:"post_type"`
}

type FavoritePostsRequest struct {
	MatchingKeys []int64 `json:"matchingKeys"`
}
