package domain

import "fmt"

// Phase is the session authority's current lifecycle phase.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseUnauthenticated
	PhaseAwaitingTenantChoice
	PhaseAwaitingMFACode
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAwaitingTenantChoice:
		return "awaiting_tenant_choice"
	case PhaseAwaitingMFACode:
		return "awaiting_mfa_code"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// EndCause records why a session ended, so the UI can tell a deliberate
// logout apart from an expired session.
type EndCause int

const (
	CauseNone EndCause = iota
	CauseUserLogout
	CauseSessionExpired
)

func (c EndCause) String() string {
	switch c {
	case CauseUserLogout:
		return "user_logout"
	case CauseSessionExpired:
		return "session_expired"
	default:
		return "none"
	}
}

// SessionState is the authority's externally visible state. All failure is
// carried here as data; nothing in the authority surfaces errors any other
// way.
//
// Invariants: Phase == PhaseAuthenticated iff User != nil and Token != "";
// TenantChoices is non-empty only while Phase == PhaseAwaitingTenantChoice.
type SessionState struct {
	Phase Phase
	User  *Identity
	Token string

	// Err is the user-facing error message. Empty when the last transition
	// succeeded, and deliberately also empty when the identity provider was
	// merely unreachable: that case renders a neutral login form, not a
	// failure banner.
	Err string

	// EndCause distinguishes "user clicked logout" from "refresh failed".
	EndCause EndCause

	// TenantChoices holds the ambiguous multi-tenant match set, in store
	// discovery order, while the user is picking one.
	TenantChoices []Credential
}

// Clone returns a deep copy for snapshot reads.
func (s SessionState) Clone() SessionState {
	out := s
	out.User = s.User.Clone()
	out.TenantChoices = append([]Credential(nil), s.TenantChoices...)
	return out
}
