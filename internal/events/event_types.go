package events

import (
	"time"

	"github.com/spec-kit/identity-service/internal/domain"
)

// EventType enumerates supported security-audit event identifiers.
type EventType string

const (
	EventLoginSucceeded          EventType = "login_succeeded"
	EventLoginFailed             EventType = "login_failed"
	EventTokenRefreshed          EventType = "token_refreshed"
	EventTokenRevoked            EventType = "token_revoked"
	EventDisallowedFieldsDropped EventType = "disallowed_fields_dropped"
	EventRoleChanged             EventType = "role_changed"
	EventUserActiveChanged       EventType = "user_active_changed"
)

// Event represents a security-relevant occurrence emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload payload. Reason is for the audit trail only; the caller
// always sees the generic message.
type LoginFailedPayload struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// DisallowedFieldsPayload payload.
type DisallowedFieldsPayload struct {
	Fields []string `json:"fields"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	ActorID string      `json:"actor_id"`
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// UserActiveChangedPayload payload.
type UserActiveChangedPayload struct {
	ActorID string `json:"actor_id"`
	Active  bool   `json:"active"`
}
