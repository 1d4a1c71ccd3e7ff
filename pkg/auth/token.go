package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// OpaqueTokenBytes yields a 64 character hex token.
const OpaqueTokenBytes = 32

// NewOpaqueToken returns a random hex bearer token that carries no claims.
func NewOpaqueToken() (string, error) {
	b := make([]byte, OpaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
