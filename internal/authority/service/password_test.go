package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/pkg/cryptox"
	"github.com/caseboard/sessionkit/pkg/slogx"
)

func TestPasswordChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rotates the secret and clears flags", func(t *testing.T) {
		cred := seedCredential(t, "maria@acme.test", "old-secret", "Analyst", "tenant-alpha", "Alpha Corp")
		cred.MustChangePassword = true
		st := newSeededStore(t, cred)
		require.NoError(t, st.Flags().SetMustChange(ctx, "maria@acme.test"))

		svc := &PasswordService{Store: st, Logger: slogx.Discard()}
		require.NoError(t, svc.Change(ctx, "maria@acme.test", "", "old-secret", "new-secret"))

		records, err := st.Credentials().ListByEmail(ctx, "maria@acme.test")
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifySecret("new-secret", records[0].SecretHash))
		require.ErrorIs(t, cryptox.VerifySecret("old-secret", records[0].SecretHash), cryptox.ErrMismatch)
		require.False(t, records[0].MustChangePassword)

		flagged, err := svc.MustChange(ctx, "maria@acme.test")
		require.NoError(t, err)
		require.False(t, flagged)
	})

	t.Run("rejects a wrong current secret", func(t *testing.T) {
		cred := seedCredential(t, "maria@acme.test", "old-secret", "Analyst", "tenant-alpha", "Alpha Corp")
		st := newSeededStore(t, cred)

		svc := &PasswordService{Store: st, Logger: slogx.Discard()}
		err := svc.Change(ctx, "maria@acme.test", "", "not-it", "new-secret")
		require.ErrorIs(t, err, ErrCurrentMismatch)

		records, err := st.Credentials().ListByEmail(ctx, "maria@acme.test")
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifySecret("old-secret", records[0].SecretHash))
	})

	t.Run("unknown account", func(t *testing.T) {
		svc := &PasswordService{Store: newSeededStore(t), Logger: slogx.Discard()}
		err := svc.Change(ctx, "nobody@acme.test", "", "a", "b")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("multi-tenant identifier needs a tenant id", func(t *testing.T) {
		alpha := seedCredential(t, "maria@acme.test", "old-secret", "Analyst", "tenant-alpha", "Alpha Corp")
		beta := seedCredential(t, "maria@acme.test", "old-secret", "Investigator", "tenant-beta", "Beta Industries")
		st := newSeededStore(t, alpha, beta)
		svc := &PasswordService{Store: st, Logger: slogx.Discard()}

		err := svc.Change(ctx, "maria@acme.test", "", "old-secret", "new-secret")
		require.ErrorIs(t, err, ErrAmbiguousAccount)

		require.NoError(t, svc.Change(ctx, "maria@acme.test", "tenant-beta", "old-secret", "new-secret"))

		records, err := st.Credentials().ListByEmail(ctx, "maria@acme.test")
		require.NoError(t, err)
		// Only the chosen tenant's record changed.
		require.NoError(t, cryptox.VerifySecret("old-secret", records[0].SecretHash))
		require.NoError(t, cryptox.VerifySecret("new-secret", records[1].SecretHash))

		err = svc.Change(ctx, "maria@acme.test", "tenant-gamma", "old-secret", "x")
		require.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("no store configured", func(t *testing.T) {
		svc := &PasswordService{Logger: slogx.Discard()}
		require.ErrorIs(t, svc.Change(ctx, "maria@acme.test", "", "a", "b"), ErrNoLocalStore)

		flagged, err := svc.MustChange(ctx, "maria@acme.test")
		require.NoError(t, err)
		require.False(t, flagged)
	})
}

func TestEnrollTOTP(t *testing.T) {
	t.Parallel()

	secret, url, err := EnrollTOTP("caseboard", "maria@acme.test")
	require.NoError(t, err)
	require.NotEmpty(t, secret)
	require.Contains(t, url, "otpauth://totp/")
	require.Contains(t, url, "caseboard")
}

func TestCredentialMirrorsRoleLabel(t *testing.T) {
	t.Parallel()

	cred := domain.Credential{RoleLabel: "Lead Investigator"}
	roles := domain.MapLocalRoleLabel(cred.RoleLabel)
	require.Equal(t, []domain.Role{domain.RoleAnalyst, domain.RoleInvestigator, domain.RoleViewer}, roles)
}
