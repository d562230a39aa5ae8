// Package auth implements the admin login and logout use cases.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	infraauth "github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Errors returned by the auth service
var (
	ErrInvalidCredentials = shared.NewAuthError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrTokenGeneration    = shared.NewDomainError(shared.KindInternal, "INTERNAL_ERROR", "Failed to generate authentication token")
)

// LoginInput carries the submitted credentials
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is returned on a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	Username    string    `json:"username"`
}

// AuthService authenticates the configured admin account
type AuthService struct {
	admin      config.AdminConfig
	jwtService *infraauth.JWTService
	blacklist  infraauth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(admin config.AdminConfig, jwtService *infraauth.JWTService, blacklist infraauth.TokenBlacklist, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if blacklist == nil {
		blacklist = infraauth.NewInMemoryTokenBlacklist()
	}
	return &AuthService{
		admin:      admin,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        time.Now,
	}
}

// Login verifies the credentials against the bcrypt hash and issues a token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	s.logger.Info("Login attempt", zap.String("username", username))

	if s.admin.PasswordHash == "" || username != s.admin.Username {
		s.logger.Warn("Unknown username during login", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("username", username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(username)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, ErrTokenGeneration
	}

	s.logger.Info("Admin logged in", zap.String("username", username))
	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		Username:    username,
	}, nil
}

// Logout revokes the token described by claims for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *infraauth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.RemainingTTL(s.now())); err != nil {
		return err
	}
	s.logger.Info("Admin logged out", zap.String("username", claims.Username))
	return nil
}
