package model

import "time"

// PasswordResetToken models an entry in the `password_reset_tokens` table.
// A token is ACTIVE while used=false and expires_at is in the future; it
// becomes USED exactly once, on successful password reset or when superseded
// by a newer token.  Expiry is derived at query time, never stored as state.
type PasswordResetToken struct {
    ID        uint64    // password_reset_tokens.id
    UserID    uint64    // password_reset_tokens.user_id
    Token     string    // password_reset_tokens.token (64 hex chars)
    ExpiresAt time.Time // password_reset_tokens.expires_at
    Used      bool      // password_reset_tokens.used
    CreatedAt time.Time // password_reset_tokens.created_at
}
