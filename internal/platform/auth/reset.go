package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// NewResetToken returns an opaque password-reset token with 160 bits of
// entropy, hex encoded.
func NewResetToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
