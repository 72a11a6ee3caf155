package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("exp-1", "pending-requests-20260310.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	exportID, filename, parsedExpiry, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", exportID)
	assert.Equal(t, "pending-requests-20260310.csv", filename)
	assert.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("exp-1", "pending-requests-20260310.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "exp-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)
}

func TestSignedURLSignerWrongSecret(t *testing.T) {
	token, _, err := NewSignedURLSigner("secret", time.Hour).Generate("exp-1", "f.csv")
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("other", time.Hour).Parse(token, false)
	require.Error(t, err)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", 10*time.Millisecond)
	token, _, err := signer.Generate("exp-1", "f.csv")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)

	exportID, filename, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "exp-1", exportID)
	assert.Equal(t, "f.csv", filename)
}
