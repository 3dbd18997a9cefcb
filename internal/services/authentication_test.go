package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims CustomClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthenticationValidate(t *testing.T) {
	authentication, err := NewAuthentication("top-secret")
	require.NoError(t, err)

	claims := CustomClaims{
		Email:    "alice@example.com",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	subject, err := authentication.Validate(signToken(t, "top-secret", claims))
	require.NoError(t, err)
	assert.Equal(t, "subject-1", subject.SubjectID)
	assert.Equal(t, "alice@example.com", subject.Email)
	assert.Equal(t, "alice", subject.Username)
}

func TestAuthenticationValidate_WrongSecret(t *testing.T) {
	authentication, err := NewAuthentication("top-secret")
	require.NoError(t, err)

	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "subject-1"},
	}

	_, err = authentication.Validate(signToken(t, "other-secret", claims))
	assert.Error(t, err)
}

func TestAuthenticationValidate_MissingSubject(t *testing.T) {
	authentication, err := NewAuthentication("top-secret")
	require.NoError(t, err)

	_, err = authentication.Validate(signToken(t, "top-secret", CustomClaims{Username: "alice"}))
	assert.Error(t, err)
}

func TestAuthenticationValidate_Expired(t *testing.T) {
	authentication, err := NewAuthentication("top-secret")
	require.NoError(t, err)

	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}

	_, err = authentication.Validate(signToken(t, "top-secret", claims))
	assert.Error(t, err)
}

func TestAuthenticationValidate_Garbage(t *testing.T) {
	authentication, err := NewAuthentication("top-secret")
	require.NoError(t, err)

	_, err = authentication.Validate("not-a-token")
	assert.Error(t, err)
}
