// Package service holds the development backend's business rules. It sits
// between the HTTP handlers and the repositories:
//
//	handler (HTTP) → service (rules) → repository (storage)
//
// Services never see HTTP types. They return apperror values that the
// handler layer maps to status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fashionpolice/fashion-police/internal/account"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/auth"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/repository"
)

// AccountService handles sign-in, sign-up and the session profile.
//
// DEPENDENCIES (injected via NewAccountService):
//   - users       → account records
//   - categories  → subscriptions for the profile
//   - favorites   → favorite tags for the profile
//   - tokens      → JWTs issued on sign-in and sign-up
//   - passwords   → PBKDF2 hashing
type AccountService struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	favorites  repository.FavoriteRepository
	tokens     *auth.TokenService
	passwords  *auth.PasswordService
	logger     *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	categories repository.CategoryRepository,
	favorites repository.FavoriteRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:      users,
		categories: categories,
		favorites:  favorites,
		tokens:     tokens,
		passwords:  passwords,
		logger:     logger,
	}
}

// Profile is everything a client needs to open a session.
type Profile struct {
	User       *model.User
	Categories map[int64]string
	Favorites  map[int64]string
}

// RegisterInput is a sign-up request as received.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Gender   string
	Age      int
	Height   int
}

// AuthResult bundles the account and the token issued for it.
type AuthResult struct {
	User  *model.User
	Token string
}

// Verify checks a username and password and issues a token.
//
// An unknown username is apperror.ErrNotFound and a wrong password is
// apperror.ErrUnauthorized, matching the two failure statuses clients see.
func (s *AccountService) Verify(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("username", "Missing username or password")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "Username not found."}
		}
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Error("stored password hash unreadable",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Warn("authentication failed", slog.String("username", username))
		return nil, apperror.Unauthorized(fmt.Sprintf("Authentication failed for user %s.", username))
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: issuing token: %w", err)
	}

	s.logger.Info("user authenticated", slog.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Profile loads the account with its subscriptions and favorite tags.
func (s *AccountService) Profile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	subscribed, err := s.categories.SubscribedCategories(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	categories := make(map[int64]string, len(subscribed))
	for _, c := range subscribed {
		categories[c.ID] = c.Name
	}

	favorites, err := s.favorites.FavoriteTags(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Categories: categories, Favorites: favorites}, nil
}

// UsernameTaken reports whether username belongs to an account.
func (s *AccountService) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return s.users.UsernameExists(ctx, username)
}

// EmailTaken reports whether email belongs to an account, ignoring case.
func (s *AccountService) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.users.EmailExists(ctx, email)
}

// Register validates the input with the same rules as the sign-up form,
// stores the account and issues a token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	form := account.SignUpForm{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Confirm:  in.Password,
		Gender:   in.Gender,
		Age:      strconv.Itoa(in.Age),
		Height:   strconv.Itoa(in.Height),
	}
	reg, err := form.Validate()
	if err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("service/account: hashing password: %w", err)
	}

	user := &model.User{
		Username:     reg.Username,
		Email:        strings.ToLower(reg.Email),
		PasswordHash: hash,
		Gender:       reg.Gender,
		Age:          reg.Age,
		Height:       reg.Height,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/account: issuing token: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return &AuthResult{User: user, Token: token}, nil
}
