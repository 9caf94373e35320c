package cryptox_test

import (
	"testing"

	"github.com/boxlabs/storagebox/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("hunter22")
	require.NoError(t, err)
	require.NotEqual(t, "hunter22", hash)

	require.NoError(t, cryptox.VerifyPassword("hunter22", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("hunter23", hash), cryptox.ErrPasswordMismatch)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	require.ErrorIs(t, cryptox.VerifyPassword("anything", "not-a-bcrypt-hash"),
		cryptox.ErrPasswordMismatch)
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	b, err := cryptox.HashPassword("same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
