package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atinyakov/credkeeper/internal/models"
	"github.com/atinyakov/credkeeper/internal/repository"
)

// UserRepository defines the user persistence operations the services
// need.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) error
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	Profile(ctx context.Context, userID string) (models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	SetRole(ctx context.Context, userID string, role models.Role) error
	AddMembership(ctx context.Context, userID, divisionID string) error
	RemoveMembership(ctx context.Context, userID, divisionID string) error
}

// SessionRepository stores login tokens.
type SessionRepository interface {
	CreateSession(ctx context.Context, token, userID string, expiresAt time.Time) error
	SessionUser(ctx context.Context, token string, now time.Time) (string, error)
}

// AuthService registers users, issues login tokens and resolves them.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration
	admin    string

	// now is replaced in tests.
	now func() time.Time
}

// NewAuthService constructs an AuthService. Tokens live for ttl; a user
// registering as adminUsername starts with the admin role.
func NewAuthService(users UserRepository, sessions SessionRepository, ttl time.Duration, adminUsername string) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		admin:    strings.TrimSpace(adminUsername),
		now:      time.Now,
	}
}

// Register creates a normal user and returns the confirmation message.
func (s *AuthService) Register(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fail(ErrInvalid, MsgMissingFields)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	role := models.RoleNormal
	if s.admin != "" && username == s.admin {
		role = models.RoleAdmin
	}

	err = s.users.CreateUser(ctx, models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return "", fail(ErrConflict, MsgUsernameTaken)
	}
	if err != nil {
		return "", fmt.Errorf("register %q: %w", username, err)
	}
	return MsgRegistered, nil
}

// Login checks the password and issues a fresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", fail(ErrUnauthorized, MsgBadLogin)
	}
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	ok, err := VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("login %q: %w", u.Username, err)
	}
	if !ok {
		return "", fail(ErrUnauthorized, MsgBadLogin)
	}

	token := uuid.NewString()
	if err := s.sessions.CreateSession(ctx, token, u.ID, s.now().Add(s.ttl)); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. Unknown, expired or
// orphaned tokens are ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, fail(ErrUnauthorized, MsgUnauthorized)
	}
	userID, err := s.sessions.SessionUser(ctx, token, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, fail(ErrUnauthorized, MsgUnauthorized)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("authenticate: %w", err)
	}

	u, err := s.users.UserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.User{}, fail(ErrUnauthorized, MsgUnauthorized)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}
