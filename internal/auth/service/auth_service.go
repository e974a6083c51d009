package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vox-librorum/vox-desk/internal/auth/domain"
)

// UserRepository is implemented by the PostgreSQL and in-memory user repositories.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type AuthService struct {
	users   UserRepository
	tokens  *TokenIssuer
	offline bool
	cost    int
}

// NewAuthService wires the account service. offline enables the passphrase bypass
// and must only be set when no database is configured.
func NewAuthService(users UserRepository, tokens *TokenIssuer, offline bool) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		offline: offline,
		cost:    bcrypt.DefaultCost,
	}
}

// Offline reports whether the passphrase bypass is active.
func (s *AuthService) Offline() bool { return s.offline }

// Tokens exposes the issuer for session middleware.
func (s *AuthService) Tokens() *TokenIssuer { return s.tokens }

// Register creates an archivist account. Email is optional.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.DefaultRole,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
			return s.issue(user, false)
		}
		if s.offline && IsBypassPassphrase(password) {
			return s.issue(user, true)
		}
		return nil, domain.ErrInvalidCredentials
	case errors.Is(err, domain.ErrUserNotFound):
		if s.offline && IsBypassPassphrase(password) {
			return s.offlineLogin(ctx, username)
		}
		return nil, domain.ErrInvalidCredentials
	default:
		return nil, err
	}
}

// Me returns the account behind a session.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) offlineLogin(ctx context.Context, username string) (*domain.Session, error) {
	user := &domain.User{
		ID:       OfflineUserID(username),
		Username: username,
		Role:     domain.DefaultRole,
	}
	if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, domain.ErrDuplicateUser) {
		return nil, err
	}
	return s.issue(user, true)
}

func (s *AuthService) issue(user *domain.User, offline bool) (*domain.Session, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, User: user, ExpiresAt: exp, Offline: offline}, nil
}
