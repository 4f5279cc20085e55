package domain

import "time"

// TokenKind differentiates access and refresh tokens. Only refresh tokens are
// revocable; access tokens live out their short TTL.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "ACCESS"
	TokenKindRefresh TokenKind = "REFRESH"
)

// TokenPair bundles the two tokens issued on login and refresh.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
