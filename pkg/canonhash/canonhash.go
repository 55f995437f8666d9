// Package canonhash produces deterministic fingerprints of structured data.
//
// Values are serialized to JSON, canonicalized per RFC 8785 (JCS) so that
// object key order and number formatting can never change the digest, and
// hashed with SHA-256. The digest is returned as lowercase hex, 64 characters.
package canonhash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// DigestLength is the length of a hex-encoded digest returned by this package.
const DigestLength = 64

// Hash serializes v to canonical JSON and returns the lowercase hex SHA-256
// digest. It fails only when v is not JSON-representable, which indicates a
// programming error in the caller.
func Hash(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonhash: marshal: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonhash: canonicalize: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// HashFields hashes a named field mapping. Key order in the input map is
// irrelevant: canonicalization sorts keys lexicographically.
func HashFields(fields map[string]any) (string, error) {
	return Hash(fields)
}

// MustHash is like Hash but panics on error. Use it only for values known to
// be representable at compile time (e.g. struct literals in tests).
func MustHash(v any) string {
	h, err := Hash(v)
	if err != nil {
		panic(err)
	}
	return h
}
