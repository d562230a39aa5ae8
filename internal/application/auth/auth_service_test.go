package auth

import (
	"context"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	infraauth "github.com/erp/invoicing/internal/infrastructure/auth"
	"github.com/erp/invoicing/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) (*AuthService, *infraauth.JWTService, *infraauth.InMemoryTokenBlacklist) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)

	jwtSvc := infraauth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "invoicing",
	})
	blacklist := infraauth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(config.AdminConfig{Username: "admin", PasswordHash: string(hash)}, jwtSvc, blacklist, nil)
	return svc, jwtSvc, blacklist
}

func TestAuthService_Login(t *testing.T) {
	svc, jwtSvc, _ := newTestAuthService(t)

	result, err := svc.Login(context.Background(), LoginInput{Username: " admin ", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "admin", result.Username)
	assert.Equal(t, "Bearer", result.TokenType)

	claims, err := jwtSvc.Validate(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	tests := []struct {
		name  string
		input LoginInput
	}{
		{"wrong password", LoginInput{Username: "admin", Password: "nope"}},
		{"unknown user", LoginInput{Username: "root", Password: "s3cret!"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, shared.KindAuth, shared.KindOf(err))
		})
	}
}

func TestAuthService_LoginWithoutConfiguredHash(t *testing.T) {
	jwtSvc := infraauth.NewJWTService(config.JWTConfig{Secret: "x"})
	svc := NewAuthService(config.AdminConfig{Username: "admin"}, jwtSvc, nil, nil)
	_, err := svc.Login(context.Background(), LoginInput{Username: "admin", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, jwtSvc, blacklist := newTestAuthService(t)

	result, err := svc.Login(ctx, LoginInput{Username: "admin", Password: "s3cret!"})
	require.NoError(t, err)
	claims, err := jwtSvc.Validate(result.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := blacklist.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
