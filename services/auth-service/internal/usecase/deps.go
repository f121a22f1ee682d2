package usecase

import (
	"strings"
)

// Hasher hashes and verifies low-entropy secrets. Verify never fails; a
// malformed digest is reported as a mismatch.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// EmailSender delivers HTML email synchronously.
type EmailSender interface {
	SendHTML(to []string, subject, htmlBody string) error
}

// normalizeEmail returns the canonical form under which emails are stored.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
