package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapExternalRoles(t *testing.T) {
	t.Parallel()

	t.Run("admin claim grants every role", func(t *testing.T) {
		roles := MapExternalRoles([]string{"admin"})
		require.Equal(t, AllRoles, roles)
	})

	t.Run("legacy aliases map like their modern names", func(t *testing.T) {
		require.Equal(t, MapExternalRoles([]string{"admin"}), MapExternalRoles([]string{"realm-admin"}))
		require.Equal(t, MapExternalRoles([]string{"analyst"}), MapExternalRoles([]string{"case-analyst"}))
		require.Equal(t, MapExternalRoles([]string{"investigator"}), MapExternalRoles([]string{"case-investigator"}))
	})

	t.Run("unknown claims default to viewer", func(t *testing.T) {
		roles := MapExternalRoles([]string{"uma_authorization", "offline_access"})
		require.Equal(t, []Role{RoleViewer}, roles)
	})

	t.Run("empty claim set defaults to viewer", func(t *testing.T) {
		require.Equal(t, []Role{RoleViewer}, MapExternalRoles(nil))
	})

	t.Run("union of claims dedupes and orders", func(t *testing.T) {
		roles := MapExternalRoles([]string{"analyst", "investigator", "viewer"})
		require.Equal(t, []Role{RoleAnalyst, RoleInvestigator, RoleViewer}, roles)
	})

	t.Run("lead investigator spans analyst and investigator", func(t *testing.T) {
		roles := MapExternalRoles([]string{"lead-investigator"})
		require.Equal(t, []Role{RoleAnalyst, RoleInvestigator, RoleViewer}, roles)
	})
}

func TestMapLocalRoleLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, AllRoles, MapLocalRoleLabel("Administrator"))
	require.Equal(t, []Role{RoleAnalyst, RoleViewer}, MapLocalRoleLabel("Analyst"))
	require.Equal(t, []Role{RoleViewer}, MapLocalRoleLabel("Auditor"))
	require.Equal(t, []Role{RoleViewer}, MapLocalRoleLabel("Chief Vibes Officer"))
	require.Equal(t, []Role{RoleViewer}, MapLocalRoleLabel(""))
}

func TestPrimaryRole(t *testing.T) {
	t.Parallel()

	require.Equal(t, RoleAdmin, PrimaryRole([]Role{RoleViewer, RoleAdmin}))
	require.Equal(t, RoleAnalyst, PrimaryRole([]Role{RoleViewer, RoleAnalyst, RoleInvestigator}))
	require.Equal(t, RoleViewer, PrimaryRole(nil))
}

func TestRolesIntersect(t *testing.T) {
	t.Parallel()

	require.True(t, RolesIntersect([]Role{RoleAnalyst, RoleViewer}, []Role{RoleAnalyst}))
	require.False(t, RolesIntersect([]Role{RoleViewer}, []Role{RoleAdmin}))
	require.False(t, RolesIntersect(nil, AllRoles))
	require.False(t, RolesIntersect(AllRoles, nil))
}

func TestIdentityClone(t *testing.T) {
	t.Parallel()

	original := &Identity{
		ID:    "u1",
		Roles: []Role{RoleAnalyst, RoleViewer},
	}
	clone := original.Clone()
	clone.Roles[0] = RoleAdmin
	clone.ID = "u2"

	require.Equal(t, RoleAnalyst, original.Roles[0])
	require.Equal(t, "u1", original.ID)

	var nilIdentity *Identity
	require.Nil(t, nilIdentity.Clone())
}

func TestSessionStateClone(t *testing.T) {
	t.Parallel()

	state := SessionState{
		Phase:         PhaseAwaitingTenantChoice,
		TenantChoices: []Credential{{ID: "c1", TenantID: "tenant-alpha"}},
	}
	clone := state.Clone()
	clone.TenantChoices[0].TenantID = "tenant-mutated"

	require.Equal(t, "tenant-alpha", state.TenantChoices[0].TenantID)
}
