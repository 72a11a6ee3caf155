package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unienroll/enroll-api/internal/models"
)

func signToken(t *testing.T, secret string, claims models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifierVerify(t *testing.T) {
	verifier := NewTokenVerifier("secret")
	raw := signToken(t, "secret", models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := verifier.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestTokenVerifierWrongSecret(t *testing.T) {
	verifier := NewTokenVerifier("secret")
	raw := signToken(t, "other", models.JWTClaims{UserID: "u1", Role: models.RoleStudent})

	_, err := verifier.Verify(raw)
	require.Error(t, err)
}

func TestTokenVerifierExpired(t *testing.T) {
	verifier := NewTokenVerifier("secret")
	raw := signToken(t, "secret", models.JWTClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := verifier.Verify(raw)
	require.Error(t, err)
}

func TestTokenVerifierMissingUser(t *testing.T) {
	verifier := NewTokenVerifier("secret")
	raw := signToken(t, "secret", models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := verifier.Verify(raw)
	require.Error(t, err)
}
