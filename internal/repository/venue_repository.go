package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/fullhouse/poker-signup/internal/model"
)

// VenueRepo owns the locations table.
type VenueRepo struct{ DB *sql.DB }

func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{DB: db} }

// List returns all venues sorted by name.
func (r *VenueRepo) List(ctx context.Context) ([]model.Venue, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id, name, address FROM locations ORDER BY name ASC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Venue
    for rows.Next() {
        var v model.Venue
        if err := rows.Scan(&v.ID, &v.Name, &v.Address); err != nil {
            return nil, err
        }
        out = append(out, v)
    }
    return out, rows.Err()
}

// GetByID fetches a venue by id.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (model.Venue, error) {
    var v model.Venue
    err := r.DB.QueryRowContext(ctx,
        "SELECT id, name, address FROM locations WHERE id=? LIMIT 1", id).
        Scan(&v.ID, &v.Name, &v.Address)
    if err == sql.ErrNoRows {
        return v, ErrNotFound
    }
    return v, err
}

// Create inserts a venue and returns its id.  Duplicate names map to
// ErrConflict.
func (r *VenueRepo) Create(ctx context.Context, name, address string) (uint64, error) {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO locations (name, address) VALUES (?,?)", name, address)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return 0, ErrConflict
        }
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// Update replaces a venue's name and address.
func (r *VenueRepo) Update(ctx context.Context, id uint64, name, address string) error {
    res, err := r.DB.ExecContext(ctx,
        "UPDATE locations SET name=?, address=? WHERE id=?", name, address, id)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrConflict
        }
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}

// Delete removes a venue.  Deletion is rejected with ErrConflict while games
// are still scheduled there.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
    var games int
    if err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM games WHERE location_id=?", id).Scan(&games); err != nil {
        return err
    }
    if games > 0 {
        return ErrConflict
    }
    res, err := r.DB.ExecContext(ctx, "DELETE FROM locations WHERE id=?", id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrNotFound
    }
    return nil
}
