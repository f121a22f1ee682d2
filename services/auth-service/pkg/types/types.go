package types

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are carried by short-lived access tokens.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens. The token id (jti) lives in
// RegisteredClaims.ID and is the refresh-token record lookup key.
type RefreshClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Tokens is an access/refresh token pair handed to the client.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RequestMetadata describes the requester of a session, for audit only.
type RequestMetadata struct {
	UserAgent string
	IP        string
}
