package store

import (
	"context"
	"errors"

	"github.com/caseboard/sessionkit/internal/authority/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the persisted credential store the session authority reads.
// Concrete drivers (sqlite today) implement this. The authority treats the
// store as read-mostly: only provisioning and the password-change flow
// write to it, and every reader must tolerate its absence or corruption
// without crashing.
type Store interface {
	Credentials() Credentials
	Flags() Flags

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the store is still reachable.
	Ping(ctx context.Context) error
}

type Credentials interface {
	// ListByEmail returns every credential record for an identifier, in
	// discovery (insertion) order. Tenant disambiguation happens above
	// this layer.
	ListByEmail(ctx context.Context, email string) ([]domain.Credential, error)

	// CreateCredential inserts a provisioned record (id is a ULID).
	CreateCredential(ctx context.Context, c domain.Credential) error

	// UpdateSecretHash rewrites the argon2 hash of one record and bumps
	// updated_at. Used only by the password-change flow.
	UpdateSecretHash(ctx context.Context, id string, newHash string) error

	// SetMustChangePassword flips the record-level must-change flag.
	SetMustChangePassword(ctx context.Context, id string, v bool) error

	// IsEmpty reports whether any records exist at all.
	IsEmpty(ctx context.Context) (bool, error)
}

// Flags is the out-of-band must-change-password signal, keyed by
// identifier. LoginWithTenant sets it; the password-change flow clears it;
// the shell reads it to force the password screen before full access.
type Flags interface {
	SetMustChange(ctx context.Context, identifier string) error
	ClearMustChange(ctx context.Context, identifier string) error
	MustChange(ctx context.Context, identifier string) (bool, error)
}
