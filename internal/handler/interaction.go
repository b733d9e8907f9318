package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/auth"
	"github.com/fashionpolice/fashion-police/internal/service"
)

// InteractionHandler serves votes, favorites and comments.
type InteractionHandler struct {
	interactions *service.InteractionService
	logger       *slog.Logger
}

func NewInteractionHandler(interactions *service.InteractionService, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{interactions: interactions, logger: logger}
}

// HandleArticleAction records a like, dislike or favorite on an article and
// returns its fresh tally.
//
// HTTP: POST /articles/action (bearer token optional, must match user_id)
// REQUEST BODY: {"clothing_id": 4, "user_action": "like", "action_type": "add", "user_id": 7}
// RESPONSE: {"message": "Successfully updated up_votes", "upvote_percentage": 67, "total_votes": 3}
func (h *InteractionHandler) HandleArticleAction(w http.ResponseWriter, r *http.Request) {
	var req api.ArticleActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathArticleAction, err)
		return
	}
	if err := checkActor(r.Context(), req.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.interactions.ArticleAction(r.Context(), service.ArticleActionInput{
		ArticleID:  req.ClothingID,
		UserID:     req.UserID,
		Action:     req.UserAction,
		ActionType: req.ActionType,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ArticleActionResponse{
		Message:          res.Message,
		UpvotePercentage: res.UpvotePercentage,
		TotalVotes:       res.TotalVotes,
	})
}

// HandleToggleFavorite adds or removes a post or clothing favorite.
//
// HTTP: POST /favorites/toggle (bearer token optional, must match user_id)
// REQUEST BODY: {"itemType": "post", "itemId": 12, "user_id": 7, "action_type": "add"}
//
// Without action_type the favorite flips.
func (h *InteractionHandler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req api.FavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathToggleFavorite, err)
		return
	}
	if err := checkActor(r.Context(), req.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg, err := h.interactions.ToggleFavorite(r.Context(), service.FavoriteInput{
		ItemType:   req.ItemType,
		ItemID:     req.ItemID,
		UserID:     req.UserID,
		ActionType: req.ActionType,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: msg})
}

// HandleSubmitComment stores a comment on a post.
//
// HTTP: POST /comments/submit (bearer token optional, must match user_id)
// REQUEST BODY: {"user_id": 7, "postId": "12", "commentText": "sharp"}
// RESPONSE: 201 {"message": "Comment submitted successfully", "comment_id": 5, "created_at": "..."}
func (h *InteractionHandler) HandleSubmitComment(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathSubmitComment, err)
		return
	}
	if err := checkActor(r.Context(), req.UserID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.interactions.SubmitComment(r.Context(), req.UserID, req.PostID, req.Text)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.SubmitCommentResponse{
		Message:   "Comment submitted successfully",
		CommentID: comment.ID,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	})
}

// HandleDeleteComment deletes a comment. The caller must own the comment or
// the post.
//
// HTTP: POST /comments/delete (bearer token required)
// REQUEST BODY: {"commentId": 5, "postId": "12"}
func (h *InteractionHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("valid authentication required"))
		return
	}

	var req api.DeleteCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathDeleteComment, err)
		return
	}

	if err := h.interactions.DeleteComment(r.Context(), userID, req.CommentID, req.PostID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Comment successfully deleted."})
}
