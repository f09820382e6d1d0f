package handler

import (
    "net/http"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/fullhouse/poker-signup/internal/middleware"
    "github.com/fullhouse/poker-signup/internal/repository"
)

func TestSignupCreateBlockedByExistingSignup(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    now := time.Now()
    mock.ExpectBegin()
    mock.ExpectQuery("SELECT location_id FROM games").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows([]string{"location_id"}).AddRow(2))
    mock.ExpectQuery("SELECT ugs.game_id, l.id, l.name").
        WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{
            "game_id", "id", "name", "address", "game_day", "start_time", "notes", "signup_time",
        }).AddRow(4, 1, "The River Room", "12 Main St", "Friday", "19:00", nil, now))
    mock.ExpectRollback()

    h := NewSignupHandler(repository.NewSignupRepo(db), repository.NewGameRepo(db))
    c, rec := jsonRequest(t, http.MethodPost, "/v1/signups", `{"game_id":9}`)
    c.Set(middleware.CtxUserID, uint64(7))

    if err := h.Create(c); err != nil {
        t.Fatalf("Create returned error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
    }
    body := decodeBody(t, rec)
    current, ok := body["current_game"].(map[string]interface{})
    if !ok {
        t.Fatalf("body = %v, want current_game object", body)
    }
    if current["location_name"] != "The River Room" {
        t.Errorf("current_game = %v, want the blocking game's venue", current)
    }
}

func TestSignupCreateHappyPath(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT location_id FROM games").
        WithArgs(uint64(9)).
        WillReturnRows(sqlmock.NewRows([]string{"location_id"}).AddRow(2))
    mock.ExpectQuery("SELECT ugs.game_id, l.id, l.name").
        WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"game_id"}))
    mock.ExpectExec("INSERT INTO user_game_signups").
        WithArgs(uint64(7), uint64(9), uint64(2)).
        WillReturnResult(sqlmock.NewResult(1, 1))
    mock.ExpectCommit()

    h := NewSignupHandler(repository.NewSignupRepo(db), repository.NewGameRepo(db))
    c, rec := jsonRequest(t, http.MethodPost, "/v1/signups", `{"game_id":9}`)
    c.Set(middleware.CtxUserID, uint64(7))

    if err := h.Create(c); err != nil {
        t.Fatalf("Create returned error: %v", err)
    }
    if rec.Code != http.StatusCreated {
        t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Errorf("unmet expectations: %v", err)
    }
}

func TestSignupCreateUnknownGame(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectQuery("SELECT location_id FROM games").
        WithArgs(uint64(404)).
        WillReturnRows(sqlmock.NewRows([]string{"location_id"}))
    mock.ExpectRollback()

    h := NewSignupHandler(repository.NewSignupRepo(db), repository.NewGameRepo(db))
    c, rec := jsonRequest(t, http.MethodPost, "/v1/signups", `{"game_id":404}`)
    c.Set(middleware.CtxUserID, uint64(7))

    if err := h.Create(c); err != nil {
        t.Fatalf("Create returned error: %v", err)
    }
    if rec.Code != http.StatusNotFound {
        t.Errorf("status = %d, want 404", rec.Code)
    }
}

func TestSignupMineEmpty(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectQuery("SELECT ugs.game_id, l.id, l.name").
        WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"game_id"}))

    h := NewSignupHandler(repository.NewSignupRepo(db), repository.NewGameRepo(db))
    c, rec := jsonRequest(t, http.MethodGet, "/v1/signups/me", "")
    c.Set(middleware.CtxUserID, uint64(7))

    if err := h.Mine(c); err != nil {
        t.Fatalf("Mine returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d, want 200", rec.Code)
    }
    if body := decodeBody(t, rec); body["current_game"] != nil {
        t.Errorf("current_game = %v, want null", body["current_game"])
    }
}
