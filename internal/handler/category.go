package handler

import (
	"log/slog"
	"net/http"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/service"
)

// CategoryHandler serves the catalog, subscriptions and category feeds.
type CategoryHandler struct {
	categories *service.CategoryService
	logger     *slog.Logger
}

func NewCategoryHandler(categories *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{categories: categories, logger: logger}
}

// HandleCatalog lists every public category.
//
// HTTP: POST /categories
// RESPONSE: [{"id": "1", "name": "Formal"}, ...]
func (h *CategoryHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.Catalog(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// HandleMine lists the categories a user subscribes to.
//
// HTTP: POST /categories/mine
func (h *CategoryHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	var req api.UserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathMyCategories, err)
		return
	}

	cats, err := h.categories.MyCategories(r.Context(), req.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// HandleFeed returns one page of a category.
//
// HTTP: POST /categories/feed
// REQUEST BODY: {"categoryId": "1", "userId": 7, "lastPostId": "12", "pageSize": 5, "gender": "Male"}
// RESPONSE: {"images_data": [...], "is_subscribed": true}
//
// An empty images_data list means the category is exhausted past the cursor.
func (h *CategoryHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	var req api.FeedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathCategoryFeed, err)
		return
	}

	page, err := h.categories.Feed(r.Context(), service.FeedInput{
		CategoryID: req.CategoryID,
		UserID:     req.UserID,
		LastPostID: req.LastPostID,
		PageSize:   req.PageSize,
		Gender:     req.Gender,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.FeedResponse{
		Posts:        listings(page.Posts),
		IsSubscribed: page.Subscribed,
	})
}

// HandleSubscribe subscribes or unsubscribes a user.
//
// HTTP: POST /categories/subscribe (bearer token optional, must match userId)
func (h *CategoryHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req api.SubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathSubscribe, err)
		return
	}
	if err := checkActor(r.Context(), req.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.categories.SetSubscription(r.Context(), req.UserID, req.CategoryID, req.Subscribe); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Subscription updated successfully"})
}

// listings converts stored posts to their wire form. The result is never
// nil so an empty page encodes as [].
func listings(posts []model.StoredPost) []model.Post {
	out := make([]model.Post, len(posts))
	for i := range posts {
		out[i] = posts[i].Listing()
	}
	return out
}
