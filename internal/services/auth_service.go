package services

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/blog-backend/internal/auth"
	"github.com/baharkarakas/blog-backend/internal/metrics"
	"github.com/baharkarakas/blog-backend/internal/models"
	repo "github.com/baharkarakas/blog-backend/internal/repository"
	"github.com/baharkarakas/blog-backend/internal/worker"
)

type AuthService struct {
	users  repo.Users
	hasher *auth.Hasher
	tokens *auth.TokenManager
	wp     *worker.Pool

	// uniform folds "unknown email" and "wrong password" into one 401.
	uniform bool
}

func NewAuthService(u repo.Users, h *auth.Hasher, tm *auth.TokenManager, wp *worker.Pool, uniformLoginErrors bool) *AuthService {
	return &AuthService{users: u, hasher: h, tokens: tm, wp: wp, uniform: uniformLoginErrors}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.User
}

// run executes CPU-bound work on the hashing pool, or inline without one.
func (s *AuthService) run(ctx context.Context, f func() error) error {
	if s.wp == nil {
		return f()
	}
	return s.wp.Do(ctx, f)
}

func authEvent(event, outcome string) {
	metrics.AuthEvents.WithLabelValues(event, outcome).Inc()
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (models.User, error) {
	u := models.User{Username: username, Email: email}
	u.Normalize()
	if err := u.Validate(); err != nil {
		authEvent("register", "invalid")
		return models.User{}, err
	}
	if err := models.ValidatePassword(password); err != nil {
		authEvent("register", "invalid")
		return models.User{}, err
	}

	_, err := s.users.GetByEmail(ctx, u.Email)
	switch {
	case err == nil:
		authEvent("register", "conflict")
		return models.User{}, models.NewConflictError("User Already Exists")
	case !errors.Is(err, repo.ErrNotFound):
		authEvent("register", "error")
		return models.User{}, models.NewInternalError(err)
	}

	var hash string
	if err := s.run(ctx, func() error {
		h, err := s.hasher.Hash(password)
		hash = h
		return err
	}); err != nil {
		authEvent("register", "error")
		return models.User{}, models.NewInternalError(err)
	}

	created, err := s.users.Create(ctx, u.Username, u.Email, hash)
	if errors.Is(err, repo.ErrDuplicate) {
		// lost a race with a concurrent registration
		authEvent("register", "conflict")
		return models.User{}, models.NewConflictError("User Already Exists")
	}
	if err != nil {
		authEvent("register", "error")
		return models.User{}, models.NewInternalError(err)
	}
	authEvent("register", "ok")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u := models.User{Email: email}
	u.Normalize()

	user, err := s.users.GetByEmail(ctx, u.Email)
	if errors.Is(err, repo.ErrNotFound) {
		authEvent("login", "not_found")
		if s.uniform {
			return LoginResult{}, models.NewUnauthorizedError("Invalid credentials")
		}
		return LoginResult{}, models.NewNotFoundError("User")
	}
	if err != nil {
		authEvent("login", "error")
		return LoginResult{}, models.NewInternalError(err)
	}

	err = s.run(ctx, func() error { return s.hasher.Verify(password, user.PasswordHash) })
	if errors.Is(err, auth.ErrPasswordMismatch) {
		authEvent("login", "bad_password")
		if s.uniform {
			return LoginResult{}, models.NewUnauthorizedError("Invalid credentials")
		}
		return LoginResult{}, models.NewBadPasswordError()
	}
	if err != nil {
		authEvent("login", "error")
		return LoginResult{}, models.NewInternalError(err)
	}

	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		authEvent("login", "error")
		return LoginResult{}, models.NewInternalError(err)
	}
	authEvent("login", "ok")
	return LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

// Authenticate verifies a token and returns the user id it carries.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}
