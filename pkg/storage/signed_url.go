package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignedURLSigner mints and verifies HMAC download tokens so exports can
// be fetched without a session. A token binds an export id, the stored
// filename and an expiry timestamp.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewSignedURLSigner builds a signer. A non-positive ttl falls back to 24h.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl}
}

// Generate signs a token for the given export id and filename.
func (s *SignedURLSigner) Generate(exportID, filename string) (string, time.Time, error) {
	if exportID == "" || filename == "" {
		return "", time.Time{}, fmt.Errorf("export id and filename required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret not configured")
	}

	expiresAt := time.Now().Add(s.ttl)
	encodedName := base64.RawURLEncoding.EncodeToString([]byte(filename))
	exp := strconv.FormatInt(expiresAt.Unix(), 10)

	token := strings.Join([]string{exportID, exp, encodedName, s.sign(exportID, exp, encodedName)}, ".")
	return token, expiresAt, nil
}

// Parse verifies a token and returns the export id, filename and expiry.
// allowExpired skips the expiry check so retention sweeps can still
// identify stale files.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (string, string, time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, fmt.Errorf("malformed download token")
	}
	exportID, exp, encodedName, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(exportID, exp, encodedName)), []byte(signature)) {
		return "", "", time.Time{}, fmt.Errorf("download token signature mismatch")
	}

	rawName, err := base64.RawURLEncoding.DecodeString(encodedName)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("decode token filename: %w", err)
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("invalid token expiry")
	}
	expiresAt := time.Unix(expUnix, 0)

	if !allowExpired && time.Now().After(expiresAt) {
		return "", "", time.Time{}, fmt.Errorf("download token expired")
	}
	return exportID, string(rawName), expiresAt, nil
}

func (s *SignedURLSigner) sign(exportID, exp, encodedName string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%s:%s", exportID, exp, encodedName)
	return hex.EncodeToString(mac.Sum(nil))
}
