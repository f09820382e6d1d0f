package repository

import (
    "context"
    "database/sql"
    "fmt"
    "strings"

    "github.com/fullhouse/poker-signup/internal/model"
)

// RoleRepo owns the roles table.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// ErrRoleInUse is returned when a role cannot be deleted because users still
// reference it.  Count carries the number of blocking users for the 409 body.
type ErrRoleInUse struct{ Count int }

func (e ErrRoleInUse) Error() string {
    return fmt.Sprintf("role still referenced by %d user(s)", e.Count)
}

// List returns all roles ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
    rows, err := r.DB.QueryContext(ctx,
        "SELECT id, name, description, created_at FROM roles ORDER BY id ASC")
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []model.Role
    for rows.Next() {
        var role model.Role
        if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, role)
    }
    return out, rows.Err()
}

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id uint8) (model.Role, error) {
    var role model.Role
    err := r.DB.QueryRowContext(ctx,
        "SELECT id, name, description, created_at FROM roles WHERE id=? LIMIT 1", id).
        Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
    if err == sql.ErrNoRows {
        return role, ErrNotFound
    }
    return role, err
}

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
    var role model.Role
    err := r.DB.QueryRowContext(ctx,
        "SELECT id, name, description, created_at FROM roles WHERE name=? LIMIT 1", name).
        Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt)
    if err == sql.ErrNoRows {
        return role, ErrNotFound
    }
    return role, err
}

// Create inserts a role and returns its id.  Name uniqueness violations map
// to ErrConflict.
func (r *RoleRepo) Create(ctx context.Context, name string, description *string) (uint8, error) {
    res, err := r.DB.ExecContext(ctx,
        "INSERT INTO roles (name, description) VALUES (?,?)", name, description)
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
    return uint8(id), nil
}

// Update renames a role and/or changes its description.
func (r *RoleRepo) Update(ctx context.Context, id uint8, name *string, description *string) error {
    upd := newUpdate("roles")
    if name != nil {
        upd.Set("name", *name)
    }
    if description != nil {
        upd.Set("description", *description)
    }
    if upd.Empty() {
        return nil
    }
    q, args := upd.Build("id=?", id)
    res, err := r.DB.ExecContext(ctx, q, args...)
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

// CountUsers returns how many user_features rows reference a role.
func (r *RoleRepo) CountUsers(ctx context.Context, id uint8) (int, error) {
    var n int
    err := r.DB.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM user_features WHERE role_id=?", id).Scan(&n)
    return n, err
}

// Delete removes a role.  Deletion is rejected with ErrRoleInUse while any
// user still references it; the count is reported to the caller.
func (r *RoleRepo) Delete(ctx context.Context, id uint8) error {
    n, err := r.CountUsers(ctx, id)
    if err != nil {
        return err
    }
    if n > 0 {
        return ErrRoleInUse{Count: n}
    }
    res, err := r.DB.ExecContext(ctx, "DELETE FROM roles WHERE id=?", id)
    if err != nil {
        return err
    }
    if affected, _ := res.RowsAffected(); affected == 0 {
        return ErrNotFound
    }
    return nil
}
