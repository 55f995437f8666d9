package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	t.Run("produces url-safe output of expected length", func(t *testing.T) {
		token, err := GenerateToken(TokenSize128)
		require.NoError(t, err)
		require.Len(t, token, 22) // 16 bytes -> 22 base64url chars
		require.NotContains(t, token, "+")
		require.NotContains(t, token, "/")
		require.NotContains(t, token, "=")
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		_, err := GenerateToken(0)
		require.Error(t, err)
		_, err = GenerateToken(-1)
		require.Error(t, err)
	})

	t.Run("successive tokens differ", func(t *testing.T) {
		a := MustGenerateToken(TokenSize128)
		b := MustGenerateToken(TokenSize128)
		require.NotEqual(t, a, b)
	})
}

func TestFingerprintToken(t *testing.T) {
	t.Parallel()

	fp := FingerprintToken("secret")
	require.Len(t, fp, 43) // SHA-256 -> 43 base64url chars
	require.Equal(t, fp, FingerprintToken("secret"))
	require.NotEqual(t, fp, FingerprintToken("secre7"))
}

func TestFingerprintsEqual(t *testing.T) {
	t.Parallel()

	a := FingerprintToken("code")
	require.True(t, FingerprintsEqual(a, FingerprintToken("code")))
	require.False(t, FingerprintsEqual(a, FingerprintToken("other")))
}
