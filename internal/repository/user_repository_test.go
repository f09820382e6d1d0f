package repository

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
)

func TestUserCreateMapsDuplicateEmail(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectExec("INSERT INTO users").
        WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.email'"))

    _, err = NewUserRepo(db).Create(context.Background(), "a@b.c", "alice", "hash", "tok", time.Now())
    if err != ErrEmailExists {
        t.Errorf("err = %v, want ErrEmailExists", err)
    }
}

func TestUserCreateMapsDuplicateUsername(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectExec("INSERT INTO users").
        WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

    _, err = NewUserRepo(db).Create(context.Background(), "a@b.c", "alice", "hash", "tok", time.Now())
    if err != ErrUsernameExists {
        t.Errorf("err = %v, want ErrUsernameExists", err)
    }
}

func TestUserCreateNormalizesEmail(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectExec("INSERT INTO users").
        WithArgs("a@b.c", "alice", "hash", "tok", sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(9, 1))

    id, err := NewUserRepo(db).Create(context.Background(), "  A@B.C ", "alice", "hash", "tok", time.Now())
    if err != nil {
        t.Fatalf("Create failed: %v", err)
    }
    if id != 9 {
        t.Errorf("id = %d, want 9", id)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("unmet expectations: %v", err)
    }
}

func TestRoleNameDefaultsToPlayer(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    // User exists but has no user_features row: the join yields NULL.
    mock.ExpectQuery("SELECT r.name FROM users u").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow(nil))

    role, err := NewUserRepo(db).RoleName(context.Background(), 3)
    if err != nil {
        t.Fatalf("RoleName failed: %v", err)
    }
    if role != "player" {
        t.Errorf("role = %q, want player", role)
    }
}

func TestRoleNameUnknownUser(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectQuery("SELECT r.name FROM users u").
        WithArgs(uint64(404)).
        WillReturnRows(sqlmock.NewRows([]string{"name"}))

    if _, err := NewUserRepo(db).RoleName(context.Background(), 404); err != ErrNotFound {
        t.Errorf("err = %v, want ErrNotFound", err)
    }
}

func TestUserDeleteCascadesInOneTransaction(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("DELETE FROM password_reset_tokens").
        WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectExec("DELETE FROM user_features").
        WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("DELETE FROM users").
        WithArgs(uint64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    if err := NewUserRepo(db).Delete(context.Background(), 5); err != nil {
        t.Fatalf("Delete failed: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("unmet expectations: %v", err)
    }
}
