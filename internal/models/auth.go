package models

import "github.com/golang-jwt/jwt/v5"

// UserRole mirrors the roles issued by the identity provider.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// JWTClaims are the claims this API consumes from externally issued tokens.
// UserID holds the student ID for STUDENT tokens and the admin ID for
// ADMIN tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
