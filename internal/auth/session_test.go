package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

func TestIssuePair(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 168*time.Hour)
	issuer := NewSessionIssuer(tm)
	user := testUser()
	user.Role = domain.RoleAuthor

	pair, err := issuer.IssuePair(user)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	access, err := tm.Parse(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	refresh, err := tm.Parse(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}

	if access.Kind != domain.TokenKindAccess {
		t.Errorf("access kind = %q", access.Kind)
	}
	if refresh.Kind != domain.TokenKindRefresh {
		t.Errorf("refresh kind = %q", refresh.Kind)
	}
	for _, claims := range []*Claims{access, refresh} {
		if claims.SubjectID != user.ID {
			t.Errorf("subject = %q, want %q", claims.SubjectID, user.ID)
		}
		if claims.Role != domain.RoleAuthor {
			t.Errorf("role = %q, want %q", claims.Role, domain.RoleAuthor)
		}
	}

	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Errorf("refresh expiry %v not after access expiry %v", pair.RefreshExpiresAt, pair.AccessExpiresAt)
	}
}
