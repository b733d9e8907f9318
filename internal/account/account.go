// Package account signs users up, in and out, and fills the session holder.
//
// SIGN-UP FLOW:
// Sign-up validates every field locally first. Only then are the username
// and email availability checks sent, concurrently, and account creation
// follows directly once both have answered.
//
// ERRGROUP:
// errgroup.WithContext runs both checks and returns the first error. The
// derived context is cancelled on that first error, so the other check is
// abandoned instead of finishing for nothing.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/session"
)

// MsgBadCredentials is shown when authentication fails.
const MsgBadCredentials = "Username or Password Incorrect"

// Remote is the slice of the API the account flows call. *api.Client
// implements it.
type Remote interface {
	Authenticate(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Profile(ctx context.Context, username string) (*api.ProfileResponse, error)
	CheckUsername(ctx context.Context, username string) (*api.MessageResponse, error)
	CheckEmail(ctx context.Context, email string) (*api.MessageResponse, error)
	Register(ctx context.Context, in api.RegisterRequest) (*api.RegisterResponse, error)
}

// Availability is the answer of a username or email check.
type Availability struct {
	Available bool
	Message   string
}

// Service runs the account flows against a Remote.
type Service struct {
	remote   Remote
	sessions *session.Holder
	logger   *slog.Logger
}

func NewService(remote Remote, sessions *session.Holder, logger *slog.Logger) *Service {
	return &Service{
		remote:   remote,
		sessions: sessions,
		logger:   logger,
	}
}

// CheckUsername reports whether username is free. A message containing
// "exists" means it is taken.
func (s *Service) CheckUsername(ctx context.Context, username string) (Availability, error) {
	resp, err := s.remote.CheckUsername(ctx, username)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Available: !strings.Contains(resp.Message, "exists"),
		Message:   resp.Message,
	}, nil
}

// CheckEmail reports whether email is free. A message containing "in use"
// means it is taken.
func (s *Service) CheckEmail(ctx context.Context, email string) (Availability, error) {
	resp, err := s.remote.CheckEmail(ctx, email)
	if err != nil {
		return Availability{}, err
	}
	return Availability{
		Available: !strings.Contains(resp.Message, "in use"),
		Message:   resp.Message,
	}, nil
}

// SignUp validates form, checks availability, creates the account and
// stores a fresh session for it.
func (s *Service) SignUp(ctx context.Context, form SignUpForm) (session.Session, error) {
	reg, err := form.Validate()
	if err != nil {
		return session.Session{}, err
	}

	var userAvail, emailAvail Availability
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userAvail, err = s.CheckUsername(gctx, reg.Username)
		return err
	})
	g.Go(func() error {
		var err error
		emailAvail, err = s.CheckEmail(gctx, reg.Email)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("availability check failed", slog.String("error", err.Error()))
		return session.Session{}, err
	}

	var taken []error
	if !userAvail.Available {
		taken = append(taken, apperror.Conflict("username", fmt.Sprintf("Username %s is taken", reg.Username)))
	}
	if !emailAvail.Available {
		taken = append(taken, apperror.Conflict("email", emailAvail.Message))
	}
	if err := errors.Join(taken...); err != nil {
		return session.Session{}, err
	}

	resp, err := s.remote.Register(ctx, api.RegisterRequest{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
		Gender:   reg.Gender,
		Age:      reg.Age,
		Height:   reg.Height,
	})
	if err != nil {
		s.logger.Error("failed to create account",
			slog.String("username", reg.Username),
			slog.String("error", err.Error()),
		)
		return session.Session{}, err
	}
	if resp.ID == 0 {
		return session.Session{}, apperror.Decode(api.PathRegister, errors.New("response carries no id"))
	}

	sess := session.New(session.Profile{
		ID:       resp.ID,
		Username: reg.Username,
		Gender:   reg.Gender,
		Age:      reg.Age,
		Height:   reg.Height,
		Token:    resp.Token,
	})
	s.sessions.Store(sess)
	s.logger.Info("account created", slog.Int64("user_id", resp.ID))
	return sess, nil
}

// SignIn authenticates, fetches the profile and stores the new session.
func (s *Service) SignIn(ctx context.Context, username, password string) (session.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return session.Session{}, apperror.ValidationFailed("username", MsgBadCredentials)
	}

	auth, err := s.remote.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrStatus) {
			return session.Session{}, apperror.Unauthorized(MsgBadCredentials)
		}
		s.logger.Error("authentication failed",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return session.Session{}, err
	}

	profile, err := s.remote.Profile(ctx, username)
	if err != nil {
		s.logger.Error("failed to fetch profile",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return session.Session{}, err
	}
	if profile.ID == 0 {
		msg := profile.Message
		if msg == "" {
			msg = "Username doesn't exist"
		}
		return session.Session{}, &apperror.AppError{Err: apperror.ErrNotFound, Message: msg}
	}

	sess := session.New(session.Profile{
		ID:         profile.ID,
		Username:   username,
		Gender:     profile.Gender,
		Age:        profile.Age,
		Height:     profile.Height,
		Token:      auth.Token,
		Categories: profile.Categories,
		Favorites:  profile.Favorites,
	})
	s.sessions.Store(sess)
	return sess, nil
}

// SignOut resets the session holder to the signed-out session.
func (s *Service) SignOut() {
	s.sessions.Reset()
}
