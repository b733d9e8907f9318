package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/service"
)

// AccountHandler serves sign-in, sign-up and the session profile.
//
// HANDLER RESPONSIBILITIES:
//   - HandleVerify        → check credentials and issue a JWT
//   - HandleProfile       → the profile a client opens a session with
//   - HandleUsernameCheck → is a username taken?
//   - HandleEmailCheck    → is an email in use?
//   - HandleRegister      → create an account and issue a JWT
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleVerify checks a username and password.
//
// HTTP: POST /auth/verify
// REQUEST BODY: {"username": "dana", "password": "Secret1!"}
//
// An unknown username answers 404 and a wrong password 401. The client
// treats both as "credentials rejected".
func (h *AccountHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req api.AuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathAuthenticate, err)
		return
	}

	res, err := h.accounts.Verify(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AuthResponse{
		Message: fmt.Sprintf("Authentication successful for user %s.", req.Username),
		Token:   res.Token,
	})
}

// HandleProfile returns the profile for a username.
//
// HTTP: POST /auth/profile
//
// A missing username is not an HTTP error: the answer is 200 with only a
// message, and the client checks for the absent id.
func (h *AccountHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	var req api.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathProfile, err)
		return
	}

	profile, err := h.accounts.Profile(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			writeJSON(w, http.StatusOK, api.ProfileResponse{Message: "Username doesn't exist"})
			return
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, api.ProfileResponse{
		ID:         profile.User.ID,
		Gender:     profile.User.Gender,
		Age:        profile.User.Age,
		Height:     profile.User.Height,
		Categories: profile.Categories,
		Favorites:  profile.Favorites,
	})
}

// HandleUsernameCheck answers "Username exists" or "Username does not exist".
//
// HTTP: POST /auth/username
func (h *AccountHandler) HandleUsernameCheck(w http.ResponseWriter, r *http.Request) {
	var req api.UsernameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathUsernameCheck, err)
		return
	}

	taken, err := h.accounts.UsernameTaken(r.Context(), req.Username)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg := "Username does not exist"
	if taken {
		msg = "Username exists"
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: msg})
}

// HandleEmailCheck answers "Email <address> in use" or "No Match".
//
// HTTP: POST /auth/email
func (h *AccountHandler) HandleEmailCheck(w http.ResponseWriter, r *http.Request) {
	var req api.EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathEmailCheck, err)
		return
	}

	taken, err := h.accounts.EmailTaken(r.Context(), req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg := "No Match"
	if taken {
		msg = fmt.Sprintf("Email %s in use", req.Email)
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: msg})
}

// HandleRegister creates an account.
//
// HTTP: POST /auth/register
// RESPONSE: 201 {"id": 7, "message": "...", "created_at": "...", "token": "..."}
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadJSON(w, h.logger, api.PathRegister, err)
		return
	}

	res, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Gender:   req.Gender,
		Age:      req.Age,
		Height:   req.Height,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.RegisterResponse{
		ID:        res.User.ID,
		Message:   fmt.Sprintf("User %s successfully created with ID %d.", res.User.Username, res.User.ID),
		CreatedAt: res.User.CreatedAt.Format(time.RFC3339),
		Token:     res.Token,
	})
}
