package handler

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/auth"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/service"
)

// PostHandler serves post creation, lookup, listings and deletion.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleCreate stores a new post.
//
// HTTP: POST /posts/create (bearer token optional, must match owner_id)
// REQUEST BODY: {"image": "<base64 jpeg>", "owner_id": 7, "category": "Formal",
// "description": "...", "clothing_items": ["Hat"], "gender_restriction": "All"}
// RESPONSE: 201 {"message": "Post created successfully", "post_id": 12}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathCreatePost, err)
		return
	}
	if err := checkActor(r.Context(), req.OwnerID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), service.CreatePostInput{
		ImageBase64:       req.Image,
		OwnerID:           req.OwnerID,
		Category:          req.Category,
		Description:       req.Description,
		ClothingItems:     req.ClothingItems,
		GenderRestriction: req.GenderRestriction,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.CreatePostResponse{
		Message: "Post created successfully",
		PostID:  post.ID,
	})
}

// HandleGet returns a single live post with its image.
//
// HTTP: POST /posts/get
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	var req api.PostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathGetPost, err)
		return
	}

	post, err := h.posts.Get(r.Context(), req.PostID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.GetPostResponse{
		OwnerID:     post.OwnerID,
		Category:    post.Category,
		Description: post.Description,
		ImageBase64: base64.StdEncoding.EncodeToString(post.Image),
	})
}

// HandleDetail returns the articles, favorite flag and comments of a post
// as one viewer sees them.
//
// HTTP: POST /posts/detail
func (h *PostHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	var req api.DetailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathPostDetail, err)
		return
	}

	detail, err := h.posts.Detail(r.Context(), req.PostID, req.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	comments := detail.Comments
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, api.DetailResponse{
		Articles:      detail.Articles,
		PostFavorited: detail.PostFavorited,
		Comments:      comments,
	})
}

// HandleDelete soft-deletes a post owned by the caller.
//
// HTTP: POST /posts/delete (bearer token required)
// REQUEST BODY: {"id": "12"}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req api.DeletePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathDeletePost, err)
		return
	}

	if err := h.posts.Delete(r.Context(), userID, req.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{
		Message: fmt.Sprintf("Successfully removed ID %d", req.ID),
	})
}

// HandleUserPosts lists a user's own or favorited posts.
//
// HTTP: POST /posts/user
// REQUEST BODY: {"user_id": 7, "post_type": "user_posts" | "favorite_posts"}
func (h *PostHandler) HandleUserPosts(w http.ResponseWriter, r *http.Request) {
	var req api.UserPostsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathUserPosts, err)
		return
	}

	posts, err := h.posts.UserPosts(r.Context(), req.UserID, req.PostType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings(posts))
}

// HandleFavoritePosts returns the live posts among the given ids.
//
// HTTP: POST /posts/favorites
// REQUEST BODY: {"matchingKeys": [3, 9]}
func (h *PostHandler) HandleFavoritePosts(w http.ResponseWriter, r *http.Request) {
	var req api.FavoritePostsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathFavoritePosts, err)
		return
	}

	posts, err := h.posts.ByIDs(r.Context(), req.MatchingKeys)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings(posts))
}
