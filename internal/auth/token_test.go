package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/identity-service/internal/domain"
)

const testSecret = "test-secret"

func testUser() *domain.User {
	return &domain.User{
		ID:     "u-1",
		Name:   "Alice",
		Email:  "alice@example.com",
		Role:   domain.RoleStudent,
		Active: true,
	}
}

// signedToken builds a token with an arbitrary expiry, bypassing the manager,
// so expiry handling can be tested independently of issuance.
func signedToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		SubjectID: "u-1",
		Email:     "alice@example.com",
		Role:      domain.RoleStudent,
		Kind:      domain.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		},
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenStr
}

func TestGenerateParseRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, time.Hour)
	user := testUser()

	tokenStr, expiresAt, err := tm.Generate(user, domain.TokenKindAccess)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry not in the future: %v", expiresAt)
	}

	claims, err := tm.Parse(tokenStr)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != user.ID {
		t.Errorf("subject = %q, want %q", claims.SubjectID, user.ID)
	}
	if claims.Role != user.Role {
		t.Errorf("role = %q, want %q", claims.Role, user.Role)
	}
	if claims.Kind != domain.TokenKindAccess {
		t.Errorf("kind = %q, want %q", claims.Kind, domain.TokenKindAccess)
	}
	if claims.ID == "" {
		t.Error("jti claim missing")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, time.Hour)
	tokenStr := signedToken(t, testSecret, time.Now().Add(-time.Minute))

	_, err := tm.Parse(tokenStr)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, time.Hour)
	tokenStr := signedToken(t, "other-secret", time.Now().Add(time.Hour))

	_, err := tm.Parse(tokenStr)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, time.Hour)

	for _, input := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := tm.Parse(input); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Parse(%q) err = %v, want ErrTokenMalformed", input, err)
		}
	}
}

func TestDecodeExpiryWithoutVerification(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, time.Hour)
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	// Signed with a different secret: expiry must still decode.
	tokenStr := signedToken(t, "other-secret", expiresAt)
	got, err := tm.DecodeExpiry(tokenStr)
	if err != nil {
		t.Fatalf("decode expiry: %v", err)
	}
	if !got.Equal(expiresAt) {
		t.Errorf("expiry = %v, want %v", got, expiresAt)
	}

	if _, err := tm.DecodeExpiry("garbage"); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("err = %v, want ErrTokenMalformed", err)
	}
}
