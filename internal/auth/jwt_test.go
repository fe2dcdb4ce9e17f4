package auth

import (
	"testing"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/config"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "schoolhub",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 42, "admin@schoolhub.local", domain.RoleAdmin, 7)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin@schoolhub.local", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, uint(7), claims.BranchID)
	assert.Equal(t, "schoolhub", claims.Issuer)
}

func TestParseAccessToken_Invalid(t *testing.T) {
	cfg := testJWTConfig()

	_, err := ParseAccessToken(cfg, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// signed with a different secret
	other := testJWTConfig()
	other.AccessSecret = "someone-else"
	token, err := GenerateAccessToken(other, 1, "x@example.com", domain.RoleStudent, 0)
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute
	token, err := GenerateAccessToken(cfg, 1, "x@example.com", domain.RoleStudent, 0)
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
