package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashToken returns the hex SHA-256 fingerprint of a high-entropy token.
// The result is deterministic so it can be used as a lookup key.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// CompareTokenHash reports whether raw hashes to hash, in constant time.
func CompareTokenHash(raw, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(raw)), []byte(hash)) == 1
}
