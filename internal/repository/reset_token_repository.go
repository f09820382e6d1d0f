package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/fullhouse/poker-signup/internal/model"
    "github.com/fullhouse/poker-signup/internal/utils"
)

// ResetTokenRepo manages the password_reset_tokens table.  A token is ACTIVE
// while used=false and unexpired; it moves to USED exactly once, either by
// consumption or by being superseded when a newer token is requested.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Create invalidates every active token the user still holds and inserts a
// fresh one, inside a single transaction so no window exists in which two
// tokens are simultaneously valid.  The plaintext token is returned to the
// caller for email delivery and never logged.
func (r *ResetTokenRepo) Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
    token, err := utils.NewOpaqueToken()
    if err != nil {
        return "", err
    }
    expiresAt := time.Now().UTC().Add(ttl)

    err = WithTx(ctx, r.DB, func(tx *sql.Tx) error {
        if _, err := tx.ExecContext(ctx,
            "UPDATE password_reset_tokens SET used=1 WHERE user_id=? AND used=0", userID); err != nil {
            return err
        }
        _, err := tx.ExecContext(ctx,
            "INSERT INTO password_reset_tokens (user_id, token, expires_at) VALUES (?,?,?)",
            userID, token, expiresAt)
        return err
    })
    if err != nil {
        return "", err
    }
    return token, nil
}

// Validate looks up a token and returns its record only while ACTIVE.
// Missing, used and expired all collapse to ErrTokenInvalid so responses
// built from this error cannot be used to enumerate token state.
func (r *ResetTokenRepo) Validate(ctx context.Context, token string) (model.PasswordResetToken, error) {
    var t model.PasswordResetToken
    err := r.DB.QueryRowContext(ctx,
        `SELECT id, user_id, token, expires_at, used, created_at
 FROM password_reset_tokens WHERE token=? AND used=0 AND expires_at > NOW() LIMIT 1`, token).
        Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.Used, &t.CreatedAt)
    if err == sql.ErrNoRows {
        return t, ErrTokenInvalid
    }
    if err != nil {
        return t, err
    }
    return t, nil
}

// MarkUsed transitions a token to USED.  Marking an already-used or missing
// token is a no-op.
func (r *ResetTokenRepo) MarkUsed(ctx context.Context, token string) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE password_reset_tokens SET used=1 WHERE token=?", token)
    return err
}

// InvalidateAllForUser bulk-marks the user's active tokens as used.  Called
// on new-token issuance and on any successful password change so stale reset
// links die with the old password.
func (r *ResetTokenRepo) InvalidateAllForUser(ctx context.Context, userID uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE password_reset_tokens SET used=1 WHERE user_id=? AND used=0", userID)
    return err
}

// SweepExpired deletes rows that can never validate again and returns how
// many were removed.  Safe to run concurrently with the request path since
// it only touches inert rows.
func (r *ResetTokenRepo) SweepExpired(ctx context.Context) (int64, error) {
    res, err := r.DB.ExecContext(ctx,
        "DELETE FROM password_reset_tokens WHERE expires_at < NOW() OR used=1")
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
