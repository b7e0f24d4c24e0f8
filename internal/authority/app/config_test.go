package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_REALM_URL", "")
	t.Setenv("SESSION_PROBE_TIMEOUT", "")
	t.Setenv("SESSION_REFRESH_INTERVAL", "")

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8080/realms/caseboard", cfg.RealmURL)
	require.Equal(t, "caseboard-dashboard", cfg.ClientID)
	require.Equal(t, 3*time.Second, cfg.ProbeTimeout)
	require.Equal(t, 55*time.Second, cfg.RefreshInterval)
	require.Empty(t, cfg.DatabaseFile)
	require.Equal(t, "dev", cfg.Env)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SESSION_REALM_URL", "https://sso.example.org/realms/prod")
	t.Setenv("SESSION_PROBE_TIMEOUT", "500ms")
	t.Setenv("SESSION_REFRESH_INTERVAL", "30")
	t.Setenv("SESSION_DATABASE_FILE", "/tmp/sessions.db")

	cfg := LoadConfig()
	require.Equal(t, "https://sso.example.org/realms/prod", cfg.RealmURL)
	require.Equal(t, 500*time.Millisecond, cfg.ProbeTimeout)
	// Bare integers are read as seconds.
	require.Equal(t, 30*time.Second, cfg.RefreshInterval)
	require.Equal(t, "/tmp/sessions.db", cfg.DatabaseFile)
}
