package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/fullhouse/poker-signup/internal/model"
)

// UserRepo owns the users and user_features tables.  Role names are always
// resolved through the roles table; the legacy free-text role column is gone.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// mapDupErr converts a MySQL duplicate-key failure (error 1062) into the
// matching sentinel.  The unique key name is part of the driver message.
func mapDupErr(err error) error {
    msg := strings.ToLower(err.Error())
    if !strings.Contains(msg, "1062") {
        return err
    }
    if strings.Contains(msg, "username") {
        return ErrUsernameExists
    }
    return ErrEmailExists
}

// Create inserts a new unverified user and returns its ID.  The verification
// token is stored alongside so the confirmation email can be sent in the same
// request.
func (r *UserRepo) Create(ctx context.Context, email, username, passwordHash, verifyToken string, verifyExp time.Time) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO users (email, username, password_hash, email_verified, verification_token, verification_token_expires) VALUES (?,?,?,0,?,?)",
        email, username, passwordHash, verifyToken, verifyExp)
    if err != nil {
        return 0, mapDupErr(err)
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// CreateWithFeatures inserts a user plus its user_features row in one
// transaction.  Used by the admin create endpoint where names and role are
// known up front; the account is created already verified.
func (r *UserRepo) CreateWithFeatures(ctx context.Context, email, username, passwordHash string, firstName, lastName *string, roleID uint8) (uint64, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var id uint64
    err := WithTx(ctx, r.DB, func(tx *sql.Tx) error {
        res, err := tx.ExecContext(ctx,
            "INSERT INTO users (email, username, password_hash, email_verified) VALUES (?,?,?,1)",
            email, username, passwordHash)
        if err != nil {
            return mapDupErr(err)
        }
        last, err := res.LastInsertId()
        if err != nil {
            return err
        }
        id = uint64(last)
        _, err = tx.ExecContext(ctx,
            "INSERT INTO user_features (user_id, first_name, last_name, role_id) VALUES (?,?,?,?)",
            id, firstName, lastName, roleID)
        return err
    })
    if err != nil {
        return 0, err
    }
    return id, nil
}

const userSelect = `SELECT u.id, u.email, u.username, u.password_hash, u.email_verified,
 u.verification_token, u.verification_token_expires, u.created_at, u.updated_at
 FROM users u`

func scanUser(row *sql.Row) (model.User, error) {
    var u model.User
    err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.EmailVerified,
        &u.VerificationToken, &u.VerificationExpiry, &u.CreatedAt, &u.UpdatedAt)
    if err == sql.ErrNoRows {
        return u, ErrNotFound
    }
    return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    return scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE u.email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
    return scanUser(r.DB.QueryRowContext(ctx, userSelect+" WHERE u.id=? LIMIT 1", id))
}

// GetByVerificationToken fetches the user holding an unexpired verification
// token.  Missing and expired collapse to ErrNotFound.
func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (model.User, error) {
    return scanUser(r.DB.QueryRowContext(ctx,
        userSelect+" WHERE u.verification_token=? AND u.verification_token_expires > NOW() LIMIT 1", token))
}

const roleJoin = ` LEFT JOIN user_features uf ON u.id = uf.user_id
 LEFT JOIN roles r ON uf.role_id = r.id`

// RoleName returns the user's current role, defaulting to "player" when the
// user_features row does not exist yet.
func (r *UserRepo) RoleName(ctx context.Context, userID uint64) (string, error) {
    var role sql.NullString
    err := r.DB.QueryRowContext(ctx,
        "SELECT r.name FROM users u"+roleJoin+" WHERE u.id=? LIMIT 1", userID).Scan(&role)
    if err == sql.ErrNoRows {
        return "", ErrNotFound
    }
    if err != nil {
        return "", err
    }
    if !role.Valid || role.String == "" {
        return "player", nil
    }
    return role.String, nil
}

// GetProfile returns the joined users + user_features view for one user.
func (r *UserRepo) GetProfile(ctx context.Context, userID uint64) (model.Profile, error) {
    var (
        p    model.Profile
        role sql.NullString
    )
    err := r.DB.QueryRowContext(ctx,
        `SELECT u.id, u.email, u.username, uf.first_name, uf.last_name, uf.phone, r.name
 FROM users u`+roleJoin+" WHERE u.id=? LIMIT 1", userID).
        Scan(&p.ID, &p.Email, &p.Username, &p.FirstName, &p.LastName, &p.Phone, &role)
    if err == sql.ErrNoRows {
        return p, ErrNotFound
    }
    if err != nil {
        return p, err
    }
    p.Role = role.String
    if p.Role == "" {
        p.Role = "player"
    }
    return p, nil
}

// SetVerificationToken replaces the pending verification token.  Reissuing
// overwrites the previous token, so at most one is ever active per user.
func (r *UserRepo) SetVerificationToken(ctx context.Context, userID uint64, token string, expires time.Time) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE users SET verification_token=?, verification_token_expires=? WHERE id=?",
        token, expires, userID)
    return err
}

// MarkVerified flips email_verified and clears the token columns.
func (r *UserRepo) MarkVerified(ctx context.Context, userID uint64) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE users SET email_verified=1, verification_token=NULL, verification_token_expires=NULL WHERE id=?",
        userID)
    return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error {
    _, err := r.DB.ExecContext(ctx,
        "UPDATE users SET password_hash=? WHERE id=?", passwordHash, userID)
    return err
}

// EmailInUseByOther reports whether another account already owns the email.
func (r *UserRepo) EmailInUseByOther(ctx context.Context, email string, userID uint64) (bool, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    var id uint64
    err := r.DB.QueryRowContext(ctx,
        "SELECT id FROM users WHERE email=? AND id<>? LIMIT 1", email, userID).Scan(&id)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// UsernameInUseByOther reports whether another account already owns the username.
func (r *UserRepo) UsernameInUseByOther(ctx context.Context, username string, userID uint64) (bool, error) {
    var id uint64
    err := r.DB.QueryRowContext(ctx,
        "SELECT id FROM users WHERE username=? AND id<>? LIMIT 1", username, userID).Scan(&id)
    if err == sql.ErrNoRows {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

// ProfileUpdate carries the optional fields of a profile or admin user edit.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
    Email        *string
    Username     *string
    PasswordHash *string
    FirstName    *string
    LastName     *string
    Phone        *string
    RoleID       *uint8
}

// UpdateProfile applies a partial update across users and user_features in
// one transaction.  The user_features row is created lazily (with the
// default player role) when the user has never edited their profile before.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID uint64, upd ProfileUpdate) error {
    return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
        users := newUpdate("users")
        if upd.Email != nil {
            users.Set("email", strings.ToLower(strings.TrimSpace(*upd.Email)))
        }
        if upd.Username != nil {
            users.Set("username", *upd.Username)
        }
        if upd.PasswordHash != nil {
            users.Set("password_hash", *upd.PasswordHash)
        }
        if !users.Empty() {
            q, args := users.Build("id=?", userID)
            if _, err := tx.ExecContext(ctx, q, args...); err != nil {
                return mapDupErr(err)
            }
        }

        if upd.FirstName == nil && upd.LastName == nil && upd.Phone == nil && upd.RoleID == nil {
            return nil
        }

        var exists uint64
        err := tx.QueryRowContext(ctx,
            "SELECT user_id FROM user_features WHERE user_id=? LIMIT 1", userID).Scan(&exists)
        switch err {
        case nil:
            features := newUpdate("user_features")
            if upd.FirstName != nil {
                features.Set("first_name", *upd.FirstName)
            }
            if upd.LastName != nil {
                features.Set("last_name", *upd.LastName)
            }
            if upd.Phone != nil {
                features.Set("phone", *upd.Phone)
            }
            if upd.RoleID != nil {
                features.Set("role_id", *upd.RoleID)
            }
            q, args := features.Build("user_id=?", userID)
            _, err = tx.ExecContext(ctx, q, args...)
            return err
        case sql.ErrNoRows:
            roleID := uint8(1) // seeded player role
            if upd.RoleID != nil {
                roleID = *upd.RoleID
            }
            _, err = tx.ExecContext(ctx,
                "INSERT INTO user_features (user_id, first_name, last_name, phone, role_id) VALUES (?,?,?,?,?)",
                userID, upd.FirstName, upd.LastName, upd.Phone, roleID)
            return err
        default:
            return err
        }
    })
}

// UpdateRole points the user's user_features row at a different role.
func (r *UserRepo) UpdateRole(ctx context.Context, userID uint64, roleID uint8) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE user_features SET role_id=? WHERE user_id=?", roleID, userID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // No profile row yet; create one carrying the role.
        _, err = r.DB.ExecContext(ctx,
            "INSERT INTO user_features (user_id, role_id) VALUES (?,?)", userID, roleID)
    }
    return err
}

// Delete removes a user and its dependent rows in one transaction.  Callers
// must have established that no signups remain.
func (r *UserRepo) Delete(ctx context.Context, userID uint64) error {
    return WithTx(ctx, r.DB, func(tx *sql.Tx) error {
        if _, err := tx.ExecContext(ctx, "DELETE FROM password_reset_tokens WHERE user_id=?", userID); err != nil {
            return err
        }
        if _, err := tx.ExecContext(ctx, "DELETE FROM user_features WHERE user_id=?", userID); err != nil {
            return err
        }
        res, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", userID)
        if err != nil {
            return err
        }
        if n, _ := res.RowsAffected(); n == 0 {
            return ErrNotFound
        }
        return nil
    })
}

// List returns one page of users joined with their profile data, newest
// first, plus the total count for pagination.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.Profile, int, error) {
    var total int
    if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
        return nil, 0, err
    }
    rows, err := r.DB.QueryContext(ctx,
        `SELECT u.id, u.email, u.username, uf.first_name, uf.last_name, uf.phone, r.name
 FROM users u`+roleJoin+" ORDER BY u.id DESC LIMIT ? OFFSET ?", limit, offset)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    out := make([]model.Profile, 0, limit)
    for rows.Next() {
        var (
            p    model.Profile
            role sql.NullString
        )
        if err := rows.Scan(&p.ID, &p.Email, &p.Username, &p.FirstName, &p.LastName, &p.Phone, &role); err != nil {
            return nil, 0, err
        }
        p.Role = role.String
        if p.Role == "" {
            p.Role = "player"
        }
        out = append(out, p)
    }
    return out, total, rows.Err()
}

// RoleCounts is the per-role breakdown shown on the admin dashboard.
type RoleCounts struct {
    Total   int `json:"totalUsers"`
    Admins  int `json:"adminUsers"`
    Dealers int `json:"dealerUsers"`
    Players int `json:"playerUsers"`
}

// CountByRole aggregates users per role in a single query.
func (r *UserRepo) CountByRole(ctx context.Context) (RoleCounts, error) {
    var c RoleCounts
    err := r.DB.QueryRowContext(ctx,
        `SELECT COUNT(*),
 COALESCE(SUM(CASE WHEN r.name = 'admin' THEN 1 ELSE 0 END), 0),
 COALESCE(SUM(CASE WHEN r.name = 'dealer' THEN 1 ELSE 0 END), 0),
 COALESCE(SUM(CASE WHEN r.name = 'player' OR r.name IS NULL THEN 1 ELSE 0 END), 0)
 FROM users u`+roleJoin).
        Scan(&c.Total, &c.Admins, &c.Dealers, &c.Players)
    return c, err
}
