package auth

import (
	"github.com/spec-kit/identity-service/internal/domain"
)

// SessionIssuer produces access/refresh token pairs for an authenticated user.
// Issuance has no storage side effect; only revocation is tracked.
type SessionIssuer struct {
	tokens *TokenManager
}

// NewSessionIssuer builds the issuer.
func NewSessionIssuer(tokens *TokenManager) *SessionIssuer {
	return &SessionIssuer{tokens: tokens}
}

// IssuePair signs a short-lived access token and a long-lived refresh token
// carrying the same claims shape.
func (s *SessionIssuer) IssuePair(user *domain.User) (*domain.TokenPair, error) {
	access, accessExp, err := s.tokens.Generate(user, domain.TokenKindAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.tokens.Generate(user, domain.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
