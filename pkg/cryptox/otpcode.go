package cryptox

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// OTPCodeDigits is the fixed width of generated one-time passcodes.
const OTPCodeDigits = 6

// GenerateOTPCode returns a 6-digit numeric code, zero-padded, drawn from
// crypto/rand.
//
// The modulo reduction of a 32-bit value over 10^6 is very slightly
// non-uniform (2^32 is not a multiple of 10^6). The bias is under one part in
// four thousand and acceptable for a short-lived second factor; callers that
// need strict uniformity should use rejection sampling instead.
func GenerateOTPCode() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}

	n := binary.BigEndian.Uint32(buf[:]) % 1_000_000
	return fmt.Sprintf("%06d", n), nil
}
