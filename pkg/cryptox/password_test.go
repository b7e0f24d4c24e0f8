package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifySecret(t *testing.T) {
	t.Parallel()

	hash, err := HashSecret("hunter2")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$v=19$")

	require.NoError(t, VerifySecret("hunter2", hash))
	require.ErrorIs(t, VerifySecret("Hunter2", hash), ErrMismatch)
	require.ErrorIs(t, VerifySecret("", hash), ErrMismatch)
}

func TestHashesAreSalted(t *testing.T) {
	t.Parallel()

	a, err := HashSecret("same-secret")
	require.NoError(t, err)
	b, err := HashSecret("same-secret")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NoError(t, VerifySecret("same-secret", a))
	require.NoError(t, VerifySecret("same-secret", b))
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	t.Parallel()

	require.Error(t, VerifySecret("x", "not-a-phc-string"))
	require.Error(t, VerifySecret("x", "$bcrypt$v=19$m=1,t=1,p=1$AAAA$BBBB"))
}
