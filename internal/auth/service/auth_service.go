package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ambi360/ambi360-backend/internal/auth"
	"github.com/ambi360/ambi360-backend/internal/auth/domain"
	"github.com/ambi360/ambi360-backend/internal/logging"
)

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetActive(ctx context.Context, id string, active bool) error
	HasAdmin(ctx context.Context) (bool, error)
}

type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
	hasher auth.Hasher
}

func NewAuthService(users UserStore, tokens *auth.TokenManager, hasher auth.Hasher) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher}
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *domain.User `json:"user"`
}

// Login checks credentials and issues a token. Unknown users, wrong
// passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !s.hasher.Compare(user.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expires, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("user_id", user.ID).Str("username", user.Username).Msg("user logged in")
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Register creates a user. The role defaults to user.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if user.Role == "" {
		user.Role = auth.RoleUser
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

func (s *AuthService) SetStatus(ctx context.Context, userID string, req domain.SetStatusRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.users.SetActive(ctx, userID, *req.IsActive)
}

// EnsureAdmin creates the given admin account unless an active admin
// already exists. It reports whether a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, req domain.RegisterRequest) (bool, error) {
	exists, err := s.users.HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	req.Role = auth.RoleAdmin
	if _, err := s.Register(ctx, req); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
