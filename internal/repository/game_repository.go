package repository

import (
    "context"
    "database/sql"

    "github.com/fullhouse/poker-signup/internal/model"
)

// GameRepo owns the games table.  Reads join the venue so listings carry the
// venue name and address without a second round trip.
type GameRepo struct{ DB *sql.DB }

func NewGameRepo(db *sql.DB) *GameRepo { return &GameRepo{DB: db} }

const gameSelect = `SELECT g.id, g.location_id, g.game_day, g.start_time, g.notes,
 l.name, l.address
 FROM games g JOIN locations l ON g.location_id = l.id`

func scanGame(scan func(dest ...interface{}) error) (model.Game, error) {
    var g model.Game
    err := scan(&g.ID, &g.VenueID, &g.GameDay, &g.StartTime, &g.Notes, &g.VenueName, &g.VenueAddr)
    return g, err
}

// List returns every game with venue info, ordered by day then start time.
func (r *GameRepo) List(ctx context.Context) ([]model.Game, error) {
    rows, err := r.DB.QueryContext(ctx, gameSelect+" ORDER BY g.game_day, g.start_time")
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Game
    for rows.Next() {
        g, err := scanGame(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

// GetByID fetches one game with venue info.
func (r *GameRepo) GetByID(ctx context.Context, id uint64) (model.Game, error) {
    g, err := scanGame(r.DB.QueryRowContext(ctx, gameSelect+" WHERE g.id=? LIMIT 1", id).Scan)
    if err == sql.ErrNoRows {
        return g, ErrNotFound
    }
    return g, err
}

// ListByVenue returns a venue's games ordered by day and start time.
func (r *GameRepo) ListByVenue(ctx context.Context, venueID uint64) ([]model.Game, error) {
    rows, err := r.DB.QueryContext(ctx,
        gameSelect+" WHERE g.location_id=? ORDER BY g.game_day, g.start_time", venueID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Game
    for rows.Next() {
        g, err := scanGame(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

// ListByDay returns the games scheduled on a weekday, ordered by venue name
// then start time so handlers can group them per venue.
func (r *GameRepo) ListByDay(ctx context.Context, day string) ([]model.Game, error) {
    rows, err := r.DB.QueryContext(ctx,
        gameSelect+" WHERE g.game_day=? ORDER BY l.name, g.start_time", day)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Game
    for rows.Next() {
        g, err := scanGame(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, g)
    }
    return out, rows.Err()
}

// Create inserts a game.  The venue must exist; a missing venue maps to
// ErrNotFound via the caller's pre-check or the FK failure here.
func (r *GameRepo) Create(ctx context.Context, venueID uint64, gameDay, startTime string, notes *string) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO games (location_id, game_day, start_time, notes) VALUES (?,?,?,?)",
        venueID, gameDay, startTime, notes)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// Update replaces a game's schedule fields.
func (r *GameRepo) Update(ctx context.Context, id, venueID uint64, gameDay, startTime string, notes *string) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE games SET location_id=?, game_day=?, start_time=?, notes=? WHERE id=?",
        venueID, gameDay, startTime, notes, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// Delete removes a game.  Deletion is rejected with ErrConflict while
// signups reference it.
func (r *GameRepo) Delete(ctx context.Context, id uint64) error {
    var signups int
    if err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM user_game_signups WHERE game_id=?", id).Scan(&signups); err != nil {
        return err
    }
    if signups > 0 {
        return ErrConflict
    }
    res, err := r.DB.ExecContext(ctx, "DELETE FROM games WHERE id=?", id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// Count returns the number of games; used by the admin dashboard.
func (r *GameRepo) Count(ctx context.Context) (int, error) {
    var n int
    err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&n)
    return n, err
}
