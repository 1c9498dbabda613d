package checkout

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Suffix alphabet skips 0/O and 1/I to keep order numbers readable over the
// phone.
const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const orderNumberSuffixLen = 6

// generateOrderNumber builds a human-readable order number like
// GM-20260828-7XK4QD. Uniqueness is enforced by the database; callers retry
// on collision.
func generateOrderNumber(prefix string, now time.Time) (string, error) {
	buf := make([]byte, orderNumberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order number suffix: %w", err)
	}
	for i := range buf {
		buf[i] = orderNumberAlphabet[int(buf[i])%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), string(buf)), nil
}
