package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode(t *testing.T) {
	t.Parallel()

	t.Run("always six ascii digits", func(t *testing.T) {
		for range 200 {
			code, err := GenerateOTPCode()
			require.NoError(t, err)
			require.Len(t, code, OTPCodeDigits)
			require.Regexp(t, "^[0-9]{6}$", code)
		}
	})

	t.Run("zero-pads small values", func(t *testing.T) {
		// Statistical smoke check: codes are strings, so "007312" style values
		// must keep their leading zeros when they occur.
		seen := map[int]bool{}
		for range 500 {
			code, err := GenerateOTPCode()
			require.NoError(t, err)
			seen[len(code)] = true
		}
		require.Equal(t, map[int]bool{OTPCodeDigits: true}, seen)
	})
}

func TestCredentialRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashCredential("staff-secret")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$")

	require.NoError(t, VerifyCredential("staff-secret", hash))
	require.Error(t, VerifyCredential("wrong", hash))
	require.Error(t, VerifyCredential("staff-secret", "not-a-hash"))
}
