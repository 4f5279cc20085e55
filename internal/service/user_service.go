package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// UserService covers profile self-service and administrative account
// management.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// GetUser loads a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies a self-service update restricted to the profile
// allow-list. Fields outside the list are dropped, recorded as a security
// event and never reach the persistence layer; the update itself proceeds on
// the filtered payload.
func (s *UserService) UpdateProfile(ctx context.Context, callerID string, input map[string]any) (*domain.User, error) {
	filtered, dropped := auth.FilterAllowedFields(input, auth.AllowedProfileUpdateFields)

	if len(dropped) > 0 {
		s.logger.Warn("disallowed profile fields dropped",
			zap.String("user_id", callerID), zap.Strings("fields", dropped))
		s.publish(ctx, events.NewEvent(events.EventDisallowedFieldsDropped, callerID,
			events.DisallowedFieldsPayload{Fields: dropped}))
	}

	if len(filtered) > 0 {
		if err := s.users.UpdateProfile(ctx, callerID, filtered); err != nil {
			return nil, err
		}
	}

	return s.users.GetByID(ctx, callerID)
}

// UpdateRole changes another user's role. The admin role is re-verified at the
// point of use, and an administrator can never change their own role.
func (s *UserService) UpdateRole(ctx context.Context, caller *auth.Claims, targetID string, role domain.Role) (*domain.User, error) {
	if err := auth.RequireRole(caller.Role, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := auth.GuardSelfRoleChange(caller.SubjectID, targetID); err != nil {
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventRoleChanged, targetID,
		events.RoleChangedPayload{ActorID: caller.SubjectID, OldRole: target.Role, NewRole: role}))

	target.Role = role
	return target, nil
}

// SetUserActive activates or deactivates an account. Deactivation takes full
// effect on the next refresh, when the current identity record is re-read.
func (s *UserService) SetUserActive(ctx context.Context, caller *auth.Claims, targetID string, active bool) (*domain.User, error) {
	if err := auth.RequireRole(caller.Role, domain.RoleAdmin); err != nil {
		return nil, err
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetActive(ctx, targetID, active); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewEvent(events.EventUserActiveChanged, targetID,
		events.UserActiveChangedPayload{ActorID: caller.SubjectID, Active: active}))

	target.Active = active
	return target, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
