package domain

import (
	"fmt"
	"time"
)

// BypassToken is the sentinel marking a developer-bypass session. It is
// assigned only by the session authority itself: neither the identity
// provider nor the credential store can produce it, which is what makes the
// authorization gate's bypass check auditable.
const BypassToken = "dev-token-bypass"

// LocalToken synthesizes the opaque bearer token for sessions resolved from
// the persisted credential store.
func LocalToken(now time.Time) string {
	return fmt.Sprintf("local-token-%d", now.Unix())
}

// ResolutionKind discriminates the outcomes of credential resolution.
type ResolutionKind int

const (
	// ResolutionNone means nothing matched.
	ResolutionNone ResolutionKind = iota
	// ResolutionSingle means exactly one account matched.
	ResolutionSingle
	// ResolutionAmbiguous means several tenants matched the same
	// identifier and secret; the caller must pick one.
	ResolutionAmbiguous
)

// Resolution is the outcome of resolving an (identifier, secret,
// tenant-hint) triple against built-in accounts and the persisted store.
type Resolution struct {
	Kind ResolutionKind

	// Identity is set for ResolutionSingle.
	Identity *Identity

	// Credential is the matched store record for non-built-in single
	// matches; the state machine reads its must-change and MFA flags.
	Credential *Credential

	// BuiltIn marks a match against the fixed built-in account table.
	BuiltIn bool

	// Token is the fixed token carried by a built-in account; empty means
	// the state machine synthesizes one.
	Token string

	// Choices is the ambiguous match set, in discovery order.
	Choices []Credential
}
