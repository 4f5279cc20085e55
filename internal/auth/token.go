package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/domain"
)

// Typed verification failures. Callers branch on these instead of parsing
// library error strings.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrTokenMalformed   = errors.New("token malformed")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Claims describes the JWT payload shared by access and refresh tokens.
type Claims struct {
	SubjectID string           `json:"sub"`
	Email     string           `json:"email"`
	Role      domain.Role      `json:"role"`
	Kind      domain.TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Generate builds and signs a token of the given kind for the user. The TTL is
// selected by kind; expiry is strict with no leeway on verification.
func (tm *TokenManager) Generate(user *domain.User, kind domain.TokenKind) (string, time.Time, error) {
	ttl := tm.accessTTL
	if kind == domain.TokenKindRefresh {
		ttl = tm.refreshTTL
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		SubjectID: user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse verifies signature and expiry and returns claims. Failures are reported
// as one of ErrTokenExpired, ErrSignatureInvalid or ErrTokenMalformed; no input,
// however adversarial, causes a panic.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrSignatureInvalid
		}
		return tm.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// DecodeExpiry extracts the expiry of a token without verifying its signature.
// Revocation bookkeeping needs the expiry even when full verification is not
// required; a token with no decodable expiry yields ErrTokenMalformed.
func (tm *TokenManager) DecodeExpiry(tokenStr string) (time.Time, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return time.Time{}, ErrTokenMalformed
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenMalformed
	}
	return claims.ExpiresAt.Time, nil
}
