package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_RoundTrip(t *testing.T) {
	v := NewVerifier("test-secret")
	token, err := v.Issue("u1", "ana@example.com", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID())
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("test-secret")

	t.Run("Empty", func(t *testing.T) {
		_, err := v.Verify("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other, err := NewVerifier("other-secret").Issue("u1", "", "user", time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(other)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := v.Issue("u1", "", "user", -time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Missing Exp", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "u1", Role: "user"}).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong Algorithm", func(t *testing.T) {
		claims := Claims{ID: "u1", Role: "user", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Missing Role", func(t *testing.T) {
		token, err := v.Issue("u1", "", "", time.Hour)
		require.NoError(t, err)
		_, err = v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("No Secret Configured", func(t *testing.T) {
		token, err := v.Issue("u1", "", "user", time.Hour)
		require.NoError(t, err)
		_, err = NewVerifier("").Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
