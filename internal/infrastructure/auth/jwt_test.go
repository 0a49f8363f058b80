package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests-only",
		AccessTokenExpiration: time.Hour,
		Issuer:                "storefront-test",
	})
}

func TestGenerateToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	t.Run("issues a bearer token with claims", func(t *testing.T) {
		issued, err := svc.GenerateToken(userID, "testuser", RoleUser)

		require.NoError(t, err)
		assert.NotEmpty(t, issued.Token)
		assert.Equal(t, "Bearer", issued.TokenType)
		assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

		claims, err := svc.ValidateToken(issued.Token)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "testuser", claims.Username)
		assert.Equal(t, RoleUser, claims.Role)

		parsed, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, userID, parsed)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := svc.GenerateToken(userID, "x", Role("superuser"))
		assert.Error(t, err)
	})
}

func TestValidateToken(t *testing.T) {
	svc := newTestService()

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "a-completely-different-secret-key",
			AccessTokenExpiration: time.Hour,
			Issuer:                "storefront-test",
		})
		issued, err := other.GenerateToken(uuid.New(), "x", RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-for-unit-tests-only",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "storefront-test",
		})
		issued, err := expired.GenerateToken(uuid.New(), "x", RoleUser)
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("admin role round trips", func(t *testing.T) {
		issued, err := svc.GenerateToken(uuid.New(), "siteadmin", RoleAdmin)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(issued.Token)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Positive(t, claims.GetRemainingTTL())
	})
}
