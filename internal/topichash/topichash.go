package topichash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum derives the discovery cache key for a (prompt, company) pair.
// Inputs are case-folded and pipe-joined, so equal topics hash identically
// regardless of case. Not a security boundary.
func Sum(prompt, company string) string {
	s := strings.ToLower(prompt) + "|" + strings.ToLower(company)
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
