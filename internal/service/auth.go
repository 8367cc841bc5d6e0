package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/habitloop/habitloop-server/internal/auth"
	"github.com/habitloop/habitloop-server/internal/color"
	"github.com/habitloop/habitloop-server/internal/domain"
	domainerrors "github.com/habitloop/habitloop-server/internal/errors"
	"github.com/habitloop/habitloop-server/internal/id"
	"github.com/habitloop/habitloop-server/internal/store"
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(st *store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  st,
		tokens: tokens,
		logger: logger,
	}
}

// RegisterRequest contains the data for creating an account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains the authenticated user and their access token.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"` // Seconds
}

// Register creates a new user account. The first account on the server
// becomes the admin.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	role := domain.RoleMember
	empty, err := s.noUsersExist(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing users: %w", err)
	}
	if empty {
		role = domain.RoleAdmin
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		DisplayName:  req.DisplayName,
		AvatarColor:  color.ForUser(userID),
		LastLoginAt:  time.Now(),
	}
	user.ID = userID
	user.InitTimestamps()

	if err := s.store.Users.Create(ctx, userID, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("an account with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", userID, "role", role)
	return s.respond(user)
}

// Login authenticates a user by email and password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users.GetByIndex(ctx, "email", req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	user.Touch()
	if err := s.store.Users.Update(ctx, user.ID, user); err != nil {
		s.logger.Warn("update last login failed", "user_id", user.ID, "error", err)
	}

	s.logger.Debug("user logged in", "user_id", user.ID)
	return s.respond(user)
}

// VerifyToken validates an access token and returns its claims.
func (s *AuthService) VerifyToken(tokenString string) (*auth.AccessClaims, error) {
	return s.tokens.VerifyAccessToken(tokenString)
}

func (s *AuthService) respond(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	sanitized := *user
	sanitized.PasswordHash = ""
	return &AuthResponse{
		User:        &sanitized,
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.AccessTokenDuration().Seconds()),
	}, nil
}

func (s *AuthService) noUsersExist(ctx context.Context) (bool, error) {
	for _, err := range s.store.Users.List(ctx) {
		if err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}
