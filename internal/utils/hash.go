package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

const fingerprintLength = 12

// HashString returns the hex SHA-256 digest of s.
func HashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns a short printable identifier for a secret so it can be
// told apart in diagnostics without being revealed.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	return "sha256:" + HashString(secret)[:fingerprintLength]
}
