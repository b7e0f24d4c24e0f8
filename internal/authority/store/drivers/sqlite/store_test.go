package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/internal/authority/store"
	"github.com/caseboard/sessionkit/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func testCredential(email, tenantID, tenantName string) domain.Credential {
	now := time.Now()
	return domain.Credential{
		ID:          idx.New().String(),
		Email:       email,
		SecretHash:  "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		DisplayName: "Test User",
		RoleLabel:   "Analyst",
		TenantID:    tenantID,
		TenantName:  tenantName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.Credentials().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	cred := testCredential("maria@acme.test", "tenant-alpha", "Alpha Corp")
	cred.MustChangePassword = true
	cred.TOTPSecret = "JBSWY3DPEHPK3PXP"
	require.NoError(t, s.Credentials().CreateCredential(ctx, cred))

	records, err := s.Credentials().ListByEmail(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	require.Equal(t, cred.ID, got.ID)
	require.Equal(t, cred.SecretHash, got.SecretHash)
	require.Equal(t, "Alpha Corp", got.TenantName)
	require.True(t, got.MustChangePassword)
	require.Equal(t, "JBSWY3DPEHPK3PXP", got.TOTPSecret)
	require.WithinDuration(t, cred.CreatedAt, got.CreatedAt, time.Second)

	empty, err = s.Credentials().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestListByEmailPreservesInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	first := testCredential("maria@acme.test", "tenant-alpha", "Alpha Corp")
	second := testCredential("maria@acme.test", "tenant-beta", "Beta Industries")
	third := testCredential("someone.else@acme.test", "tenant-alpha", "Alpha Corp")

	require.NoError(t, s.Credentials().CreateCredential(ctx, first))
	require.NoError(t, s.Credentials().CreateCredential(ctx, second))
	require.NoError(t, s.Credentials().CreateCredential(ctx, third))

	records, err := s.Credentials().ListByEmail(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "tenant-alpha", records[0].TenantID)
	require.Equal(t, "tenant-beta", records[1].TenantID)
}

func TestCreateCredentialDuplicateTenant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	cred := testCredential("maria@acme.test", "tenant-alpha", "Alpha Corp")
	require.NoError(t, s.Credentials().CreateCredential(ctx, cred))

	dup := testCredential("maria@acme.test", "tenant-alpha", "Alpha Corp")
	err := s.Credentials().CreateCredential(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUpdateSecretHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	cred := testCredential("maria@acme.test", "tenant-alpha", "Alpha Corp")
	require.NoError(t, s.Credentials().CreateCredential(ctx, cred))

	require.NoError(t, s.Credentials().UpdateSecretHash(ctx, cred.ID, "new-hash"))

	records, err := s.Credentials().ListByEmail(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.Equal(t, "new-hash", records[0].SecretHash)

	err = s.Credentials().UpdateSecretHash(ctx, "no-such-id", "hash")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetMustChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	cred := testCredential("maria@acme.test", "tenant-alpha", "Alpha Corp")
	cred.MustChangePassword = true
	require.NoError(t, s.Credentials().CreateCredential(ctx, cred))

	require.NoError(t, s.Credentials().SetMustChangePassword(ctx, cred.ID, false))

	records, err := s.Credentials().ListByEmail(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.False(t, records[0].MustChangePassword)

	err = s.Credentials().SetMustChangePassword(ctx, "no-such-id", true)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFlags(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	flagged, err := s.Flags().MustChange(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.False(t, flagged)

	require.NoError(t, s.Flags().SetMustChange(ctx, "maria@acme.test"))
	// Setting an already-set flag is a no-op, not an error.
	require.NoError(t, s.Flags().SetMustChange(ctx, "maria@acme.test"))

	flagged, err = s.Flags().MustChange(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.True(t, flagged)

	require.NoError(t, s.Flags().ClearMustChange(ctx, "maria@acme.test"))
	// Clearing twice is fine too.
	require.NoError(t, s.Flags().ClearMustChange(ctx, "maria@acme.test"))

	flagged, err = s.Flags().MustChange(ctx, "maria@acme.test")
	require.NoError(t, err)
	require.False(t, flagged)
}

func TestPing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}
