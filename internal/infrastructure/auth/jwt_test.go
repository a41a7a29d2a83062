package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bondledger/backend/internal/infrastructure/config"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests-only!",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "bondledger-backend",
	})
}

func TestJWTService_GenerateToken(t *testing.T) {
	svc := newTestJWTService()
	actorID := uuid.New()

	issued, err := svc.GenerateToken(actorID)
	require.NoError(t, err)

	assert.NotEmpty(t, issued.Token)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)
}

func TestJWTService_ValidateToken(t *testing.T) {
	t.Run("round trips actor identity", func(t *testing.T) {
		svc := newTestJWTService()
		actorID := uuid.New()

		issued, err := svc.GenerateToken(actorID)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(issued.Token)
		require.NoError(t, err)

		parsed, err := claims.GetActorUUID()
		require.NoError(t, err)
		assert.Equal(t, actorID, parsed)
		assert.Equal(t, "bondledger-backend", claims.Issuer)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		svc := newTestJWTService()

		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		svc := newTestJWTService()
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-entirely-for-testing!",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "bondledger-backend",
		})

		issued, err := other.GenerateToken(uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-for-unit-tests-only!",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "bondledger-backend",
		})

		issued, err := svc.GenerateToken(uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(issued.Token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
