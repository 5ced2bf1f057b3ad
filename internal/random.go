package internal

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewSessionID returns a freshly generated high-entropy session identifier.
// Session IDs are the join key between the signed token pair held by the
// client and the revocable session record held in Redis.
func NewSessionID() string {
	return uuid.NewString()
}

// HashTokenHex returns the SHA-256 hex digest of a raw token string.
//
// The digest is stored instead of the raw refresh token so the session
// record never holds a recoverable secret at rest. It is deliberately a
// fast hash: refresh tokens are high-entropy signed tokens, not guessable
// secrets, so a slow password hash buys nothing here.
func HashTokenHex(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
