package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const accessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AccessCodeLength is the fixed length of event access codes.
const AccessCodeLength = 6

// GenerateAccessCode produces a short human-typeable code from uppercase
// letters and digits. Uniqueness is the caller's problem: codes are checked
// against existing events and regenerated on collision.
func GenerateAccessCode() string {
	out := make([]byte, AccessCodeLength)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand should not fail; fall back to a fixed char so the
			// collision check upstream still gets a full-length code.
			out[i] = accessCodeAlphabet[0]
			continue
		}
		out[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(out)
}

// NewID returns a fresh row identifier.
func NewID() string {
	return uuid.New().String()
}
