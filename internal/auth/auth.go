package auth

import (
	"crypto/subtle"
	"os"
)

// Verifier checks the admin secret guarding parent-only operations. How the
// secret is provisioned and stored is the platform's concern; this process
// only ever compares against it.
type Verifier struct {
	secret string
}

// New creates a verifier for the given secret. An empty secret means admin
// access is not configured.
func New(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// FromEnv reads the secret from ADMIN_SECRET.
func FromEnv() *Verifier {
	return New(os.Getenv("ADMIN_SECRET"))
}

// IsConfigured reports whether an admin secret has been provisioned.
func (v *Verifier) IsConfigured() bool {
	return v.secret != ""
}

// Verify checks a candidate secret in constant time. An unconfigured
// verifier rejects everything.
func (v *Verifier) Verify(secret string) bool {
	if !v.IsConfigured() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(v.secret), []byte(secret)) == 1
}
