package repository

import (
    "context"
    "database/sql"

    "github.com/fullhouse/poker-signup/internal/model"
)

// SignupRepo owns the user_game_signups table.
type SignupRepo struct{ DB *sql.DB }

func NewSignupRepo(db *sql.DB) *SignupRepo { return &SignupRepo{DB: db} }

// Current returns the game a user is signed up for, or ErrNotFound.  A user
// holds at most one signup, enforced by CreateIfFree.
func (r *SignupRepo) Current(ctx context.Context, userID uint64) (model.CurrentGame, error) {
    var cg model.CurrentGame
    err := r.DB.QueryRowContext(ctx,
        `SELECT ugs.game_id, l.id, l.name, l.address, g.game_day, g.start_time, g.notes, ugs.signup_time
 FROM user_game_signups ugs
 JOIN games g ON ugs.game_id = g.id
 JOIN locations l ON g.location_id = l.id
 WHERE ugs.user_id=? LIMIT 1`, userID).
        Scan(&cg.GameID, &cg.VenueID, &cg.VenueName, &cg.Address, &cg.GameDay, &cg.StartTime, &cg.Notes, &cg.SignupTime)
    if err == sql.ErrNoRows {
        return cg, ErrNotFound
    }
    return cg, err
}

// CreateIfFree signs a user up for a game, enforcing the one-active-signup
// rule inside a transaction: the existing-signup check and the insert happen
// on the same connection so two concurrent requests cannot both pass the
// check.  When a signup already exists it is returned alongside ErrConflict
// so the handler can tell the user which game blocks them.
func (r *SignupRepo) CreateIfFree(ctx context.Context, userID, gameID uint64) (model.CurrentGame, error) {
    var existing model.CurrentGame
    err := WithTx(ctx, r.DB, func(tx *sql.Tx) error {
        var venueID uint64
        err := tx.QueryRowContext(ctx,
            "SELECT location_id FROM games WHERE id=? LIMIT 1", gameID).Scan(&venueID)
        if err == sql.ErrNoRows {
            return ErrNotFound
        }
        if err != nil {
            return err
        }

        err = tx.QueryRowContext(ctx,
            `SELECT ugs.game_id, l.id, l.name, l.address, g.game_day, g.start_time, g.notes, ugs.signup_time
 FROM user_game_signups ugs
 JOIN games g ON ugs.game_id = g.id
 JOIN locations l ON g.location_id = l.id
 WHERE ugs.user_id=? LIMIT 1 FOR UPDATE`, userID).
            Scan(&existing.GameID, &existing.VenueID, &existing.VenueName, &existing.Address,
                &existing.GameDay, &existing.StartTime, &existing.Notes, &existing.SignupTime)
        switch err {
        case sql.ErrNoRows:
            // free to sign up
        case nil:
            return ErrConflict
        default:
            return err
        }

        _, err = tx.ExecContext(ctx,
            "INSERT INTO user_game_signups (user_id, game_id, location_id, signup_time) VALUES (?,?,?,NOW())",
            userID, gameID, venueID)
        return err
    })
    return existing, err
}

// Delete removes a user's signup for a game.
func (r *SignupRepo) Delete(ctx context.Context, userID, gameID uint64) error {
    res, err := r.DB.ExecContext(ctx,
        "DELETE FROM user_game_signups WHERE user_id=? AND game_id=?", userID, gameID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// Roster returns the signup list for one game in signup order.
func (r *SignupRepo) Roster(ctx context.Context, gameID uint64) ([]model.RosterEntry, error) {
    rows, err := r.DB.QueryContext(ctx,
        `SELECT ugs.user_id, u.username, uf.first_name, uf.last_name, ugs.signup_time
 FROM user_game_signups ugs
 JOIN users u ON ugs.user_id = u.id
 LEFT JOIN user_features uf ON u.id = uf.user_id
 WHERE ugs.game_id=?
 ORDER BY ugs.signup_time ASC`, gameID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.RosterEntry
    for rows.Next() {
        var e model.RosterEntry
        if err := rows.Scan(&e.UserID, &e.Username, &e.FirstName, &e.LastName, &e.SignupTime); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// RosterAll returns every signup across all games, with game and venue
// context, in signup order.
func (r *SignupRepo) RosterAll(ctx context.Context) ([]model.RosterEntry, error) {
    rows, err := r.DB.QueryContext(ctx,
        `SELECT ugs.user_id, u.username, uf.first_name, uf.last_name, ugs.signup_time,
 g.id, l.name, g.game_day, g.start_time
 FROM user_game_signups ugs
 JOIN users u ON ugs.user_id = u.id
 LEFT JOIN user_features uf ON u.id = uf.user_id
 JOIN games g ON ugs.game_id = g.id
 JOIN locations l ON g.location_id = l.id
 ORDER BY ugs.signup_time ASC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.RosterEntry
    for rows.Next() {
        var e model.RosterEntry
        if err := rows.Scan(&e.UserID, &e.Username, &e.FirstName, &e.LastName, &e.SignupTime,
            &e.GameID, &e.VenueName, &e.GameDay, &e.StartTime); err != nil {
            return nil, err
        }
        out = append(out, e)
    }
    return out, rows.Err()
}

// CountForUser returns how many signups a user holds; user deletion is
// blocked while this is non-zero.
func (r *SignupRepo) CountForUser(ctx context.Context, userID uint64) (int, error) {
    var n int
    err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM user_game_signups WHERE user_id=?", userID).Scan(&n)
    return n, err
}

// Count returns the number of active signups; used by the admin dashboard.
func (r *SignupRepo) Count(ctx context.Context) (int, error) {
    var n int
    err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM user_game_signups").Scan(&n)
    return n, err
}
