package service

import (
	"github.com/caseboard/sessionkit/internal/authority/domain"
)

// Authorize decides whether the current session may see a surface that
// requires the given roles. The gate is default-deny: anything short of an
// authenticated session with a user is refused, regardless of the
// requirement list. The developer bypass token short-circuits every role
// check. An empty requirement list admits any authenticated session.
func Authorize(state domain.SessionState, required []domain.Role) bool {
	if state.Phase != domain.PhaseAuthenticated || state.User == nil || state.Token == "" {
		return false
	}
	if state.Token == domain.BypassToken {
		return true
	}
	if len(required) == 0 {
		return true
	}
	return domain.RolesIntersect(state.User.Roles, required)
}
