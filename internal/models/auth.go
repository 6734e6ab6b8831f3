package models

import "github.com/golang-jwt/jwt/v5"

// UserRole enumerates the roles carried in externally issued tokens.
type UserRole string

const (
	RolePatient  UserRole = "patient"
	RoleProvider UserRole = "provider"
	RoleAdmin    UserRole = "admin"
)

// JWTClaims are the claims this API consumes from bearer tokens. Token
// issuance and session management live in the surrounding platform; this
// service only validates and reads.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
