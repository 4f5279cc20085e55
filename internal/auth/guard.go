package auth

import (
	"sort"

	"github.com/spec-kit/identity-service/internal/domain"
	apperrors "github.com/spec-kit/identity-service/pkg/util"
)

// AllowedProfileUpdateFields is the closed set of fields a user may change on
// their own record. Role and active status are deliberately absent: those are
// administrative operations, never self-service.
var AllowedProfileUpdateFields = []string{"name", "email"}

// RequireRole re-verifies the caller's role at the point of use. Every
// administrative operation calls this even when an outer layer already
// filtered by role, so a bypass of the outer layer grants nothing.
func RequireRole(callerRole, required domain.Role) error {
	if callerRole != required {
		return apperrors.NewForbidden("insufficient role")
	}
	return nil
}

// GuardSelfRoleChange denies an administrator changing their own role,
// regardless of the role requested. A sole administrator demoting themselves
// would leave the system without one.
func GuardSelfRoleChange(callerID, targetID string) error {
	if callerID == targetID {
		return apperrors.NewForbidden("administrators cannot change their own role")
	}
	return nil
}

// FilterAllowedFields returns the subset of input whose keys are allow-listed
// and whose values are non-nil, plus the sorted names of keys that were
// present but not allowed. Disallowed fields never error: the update proceeds
// on the filtered payload, and the caller records the dropped names as a
// security event.
func FilterAllowedFields(input map[string]any, allowList []string) (map[string]any, []string) {
	allowed := make(map[string]struct{}, len(allowList))
	for _, field := range allowList {
		allowed[field] = struct{}{}
	}

	filtered := make(map[string]any, len(input))
	var dropped []string
	for key, value := range input {
		if _, ok := allowed[key]; !ok {
			dropped = append(dropped, key)
			continue
		}
		if value == nil {
			continue
		}
		filtered[key] = value
	}

	sort.Strings(dropped)
	return filtered, dropped
}
