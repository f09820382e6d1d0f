package utils

import (
    "crypto/rand"
    "encoding/hex"
)

// NewOpaqueToken returns a hex-encoded string generated from 32 bytes of
// cryptographically secure random data (256 bits, 64 hex characters).  The
// value has no embedded structure; validity is determined only by server-side
// lookup.  Used for password-reset and email-verification tokens.
func NewOpaqueToken() (string, error) {
    buf := make([]byte, 32)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
