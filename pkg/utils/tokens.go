package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const VerificationTokenTTL = 24 * time.Hour

// GenerateVerificationToken returns a random 64-character hex token used for
// email verification links.
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// VerificationExpiry returns the expiry timestamp for a freshly issued token.
func VerificationExpiry() time.Time {
	return time.Now().Add(VerificationTokenTTL)
}
