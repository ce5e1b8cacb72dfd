package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 is a keyed SHA-256 Hash with hex output.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

// Hash returns the hex-encoded HMAC of str.
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return []byte(s.HashString(str)), nil
}

// HashString is Hash for callers that store the digest as text.
func (s *HMACSHA256) HashString(str string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(str))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether hashed is the digest of str, in constant time.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	return hmac.Equal([]byte(hashed), []byte(s.HashString(str)))
}
