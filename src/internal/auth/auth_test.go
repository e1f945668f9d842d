package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casapps/casforum/src/internal/database/models"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret", "casforum-test")
	user := &models.User{
		ID:       uuid.New(),
		Username: "tester",
		IsAdmin:  true,
	}

	token, err := svc.GenerateToken(user, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "tester", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestTokenValidationFailures(t *testing.T) {
	svc := NewAuthService("test-secret", "casforum-test")
	user := &models.User{ID: uuid.New(), Username: "tester"}

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken(user, -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := svc.GenerateToken(user, time.Hour)
		require.NoError(t, err)

		other := NewAuthService("different-secret", "casforum-test")
		_, err = other.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
