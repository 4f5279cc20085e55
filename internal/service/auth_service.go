package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// Login and refresh failures share one message per flow regardless of the
// internal cause, so responses cannot be used to enumerate accounts.
const (
	msgInvalidCredentials = "invalid email or password"
	msgAccountDeactivated = "account deactivated"
	msgInvalidRefresh     = "invalid refresh token"
)

// RevocationStore tracks revoked refresh tokens. Both operations absorb their
// own storage failures.
type RevocationStore interface {
	Revoke(ctx context.Context, refreshToken, subjectID string)
	IsRevoked(ctx context.Context, refreshToken string) bool
}

// AuthService coordinates registration, login, refresh and logout flows.
type AuthService struct {
	users       repository.UserRepository
	revocations RevocationStore
	tokenMgr    *auth.TokenManager
	issuer      *auth.SessionIssuer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	bcryptCost  int
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Revocations RevocationStore
	TokenMgr    *auth.TokenManager
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewAuthService builds the service. The token manager is shared with the
// revocation store and middleware, so it is injected rather than owned.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokenMgr := deps.TokenMgr
	if tokenMgr == nil {
		tokenMgr = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.Auth.RefreshTokenTTL())
	}
	return &AuthService{
		users:       deps.UserRepo,
		revocations: deps.Revocations,
		tokenMgr:    tokenMgr,
		issuer:      auth.NewSessionIssuer(tokenMgr),
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// Register creates a new student account and logs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, *domain.TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleStudent,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login authenticates by email and password and issues a token pair. Unknown
// email and wrong password are indistinguishable to the caller; the inactive
// state is only disclosed once the credentials have already been verified.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.publish(ctx, events.NewEvent(events.EventLoginFailed, "",
				events.LoginFailedPayload{Email: email, Reason: "unknown email"}))
			return nil, nil, apperrors.NewUnauthorized(msgInvalidCredentials)
		}
		return nil, nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.NewEvent(events.EventLoginFailed, user.ID,
			events.LoginFailedPayload{Email: email, Reason: "wrong password"}))
		return nil, nil, apperrors.NewUnauthorized(msgInvalidCredentials)
	}

	if !user.Active {
		s.publish(ctx, events.NewEvent(events.EventLoginFailed, user.ID,
			events.LoginFailedPayload{Email: email, Reason: "account deactivated"}))
		return nil, nil, apperrors.NewUnauthorized(msgAccountDeactivated)
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}

	// Best effort: a failed stamp must not fail the login.
	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("last login update failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	s.publish(ctx, events.NewEvent(events.EventLoginSucceeded, user.ID, nil))
	return user, pair, nil
}

// Refresh exchanges a valid, unrevoked refresh token for a new pair. The role
// on the new pair is re-read from the current user record, so a role change
// takes effect on the next refresh. All failure causes surface one message.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokenMgr.Parse(refreshToken)
	if err != nil || claims.Kind != domain.TokenKindRefresh {
		return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
	}

	if s.revocations.IsRevoked(ctx, refreshToken) {
		return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
	}

	user, err := s.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized(msgInvalidRefresh)
	}

	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventTokenRefreshed, user.ID, nil))
	return pair, nil
}

// Logout revokes the supplied refresh token. It is idempotent and never fails
// visibly: with or without a token the caller gets the same acknowledgment.
func (s *AuthService) Logout(ctx context.Context, refreshToken, callerID string) {
	if refreshToken == "" {
		return
	}
	s.revocations.Revoke(ctx, refreshToken, callerID)
	s.publish(ctx, events.NewEvent(events.EventTokenRevoked, callerID, nil))
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
