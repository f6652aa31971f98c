package utils

import (
	"crypto/rand"
	"fmt"
)

// referenceAlphabet omits easily-confused characters (0/O, 1/I/L).
const referenceAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateBookingReference returns a human-readable booking code such as
// "VB-7KQ2M9XF". Uniqueness is enforced by the repository index; the caller
// retries on a duplicate.
func GenerateBookingReference() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back loudly.
		GetLogger().Sugar().Errorf("reference generation: %v", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return fmt.Sprintf("VB-%s", string(buf))
}
