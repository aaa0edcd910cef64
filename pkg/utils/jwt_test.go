package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJWT_RoundTrip(t *testing.T) {
	j := NewJWTUtil("test-secret", 24)

	token, err := j.GenerateToken(42, "alice", "admin")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := j.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := NewJWTUtil("test-secret", 24)

	_, err := j.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	j1 := NewJWTUtil("secret-one", 24)
	j2 := NewJWTUtil("secret-two", 24)

	token, err := j1.GenerateToken(1, "bob", "customer")
	assert.NoError(t, err)

	_, err = j2.ParseToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
