package handler

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"

    "github.com/fullhouse/poker-signup/internal/config"
    "github.com/fullhouse/poker-signup/internal/queue"
    "github.com/fullhouse/poker-signup/internal/repository"
    "github.com/fullhouse/poker-signup/internal/utils"
)

// stubPublisher records enqueued email jobs instead of talking to a broker.
type stubPublisher struct {
    kinds  []string
    tos    []string
    tokens []string
}

func (s *stubPublisher) PublishEmail(ctx context.Context, kind, to, username, token string) error {
    s.kinds = append(s.kinds, kind)
    s.tos = append(s.tos, to)
    s.tokens = append(s.tokens, token)
    return nil
}

func testConfig() config.Config {
    return config.Config{
        JWTSecret:      "handler-test-secret",
        AccessTTLMin:   30,
        RefreshTTLDays: 7,
        BcryptCost:     4,
        ResetTTLMin:    60,
        VerifyTTLMin:   15,
    }
}

func jsonRequest(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(method, path, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
    t.Helper()
    var m map[string]interface{}
    if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
        t.Fatalf("decode body %q: %v", rec.Body.String(), err)
    }
    return m
}

// errDuplicate mimics the driver's duplicate-key failure for a unique key.
func errDuplicate(key string) error {
    return fmt.Errorf("Error 1062 (23000): Duplicate entry 'x' for key '%s'", key)
}

const userCols = "id, email, username, password_hash, email_verified, verification_token, verification_token_expires, created_at, updated_at"

func userRow(id uint64, email, username, hash string, verified bool) *sqlmock.Rows {
    now := time.Now()
    return sqlmock.NewRows(strings.Split(userCols, ", ")).
        AddRow(id, email, username, hash, verified, nil, nil, now, now)
}

func TestRegisterCreatesUnverifiedAccountAndQueuesEmail(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectExec("INSERT INTO users").
        WithArgs("new@example.com", "newplayer", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(1, 1))

    pub := &stubPublisher{}
    h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewResetTokenRepo(db), pub)

    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/register",
        `{"email":"New@Example.com","username":"newplayer","password":"Sup3r$ecret"}`)
    if err := h.Register(c); err != nil {
        t.Fatalf("Register returned error: %v", err)
    }
    if rec.Code != http.StatusCreated {
        t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
    }
    if len(pub.kinds) != 1 || pub.kinds[0] != queue.EmailKindVerification {
        t.Errorf("published jobs = %v, want one verification email", pub.kinds)
    }
    if pub.tokens[0] == "" {
        t.Error("verification email should carry a token")
    }
}

func TestRegisterDuplicateEmail(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    mock.ExpectExec("INSERT INTO users").
        WillReturnError(errDuplicate("users.email"))

    pub := &stubPublisher{}
    h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewResetTokenRepo(db), pub)

    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/register",
        `{"email":"dup@example.com","username":"player2","password":"Sup3r$ecret"}`)
    if err := h.Register(c); err != nil {
        t.Fatalf("Register returned error: %v", err)
    }
    if rec.Code != http.StatusConflict {
        t.Errorf("status = %d, want 409", rec.Code)
    }
    if len(pub.kinds) != 0 {
        t.Errorf("no email should be queued on conflict, got %v", pub.kinds)
    }
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
    db, _, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewResetTokenRepo(db), &stubPublisher{})
    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/register",
        `{"email":"a@example.com","username":"player","password":"weak"}`)
    if err := h.Register(c); err != nil {
        t.Fatalf("Register returned error: %v", err)
    }
    if rec.Code != http.StatusBadRequest {
        t.Errorf("status = %d, want 400", rec.Code)
    }
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    hash, _ := utils.HashPassword("Corr3ct$pw", 4)

    // Unknown email: no row.
    mock.ExpectQuery("SELECT u.id, u.email").
        WithArgs("ghost@example.com").
        WillReturnRows(sqlmock.NewRows([]string{"id"}))
    // Known email, wrong password.
    mock.ExpectQuery("SELECT u.id, u.email").
        WithArgs("real@example.com").
        WillReturnRows(userRow(1, "real@example.com", "real", hash, true))

    h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewResetTokenRepo(db), &stubPublisher{})

    c1, rec1 := jsonRequest(t, http.MethodPost, "/v1/auth/login",
        `{"email":"ghost@example.com","password":"whatever1$A"}`)
    _ = h.Login(c1)
    c2, rec2 := jsonRequest(t, http.MethodPost, "/v1/auth/login",
        `{"email":"real@example.com","password":"Wr0ng$password"}`)
    _ = h.Login(c2)

    if rec1.Code != http.StatusUnauthorized || rec2.Code != http.StatusUnauthorized {
        t.Fatalf("statuses = %d/%d, want 401/401", rec1.Code, rec2.Code)
    }
    if rec1.Body.String() != rec2.Body.String() {
        t.Errorf("bodies differ, enabling account enumeration: %q vs %q",
            rec1.Body.String(), rec2.Body.String())
    }
}

func TestLoginUnverifiedAccount(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    hash, _ := utils.HashPassword("Corr3ct$pw", 4)
    mock.ExpectQuery("SELECT u.id, u.email").
        WithArgs("new@example.com").
        WillReturnRows(userRow(2, "new@example.com", "newbie", hash, false))

    h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewResetTokenRepo(db), &stubPublisher{})
    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/login",
        `{"email":"new@example.com","password":"Corr3ct$pw"}`)
    if err := h.Login(c); err != nil {
        t.Fatalf("Login returned error: %v", err)
    }
    if rec.Code != http.StatusForbidden {
        t.Fatalf("status = %d, want 403", rec.Code)
    }
    body := decodeBody(t, rec)
    if body["requires_verification"] != true {
        t.Errorf("body = %v, want requires_verification=true", body)
    }
}

func TestLoginSuccessIssuesTokenPair(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    hash, _ := utils.HashPassword("Corr3ct$pw", 4)
    mock.ExpectQuery("SELECT u.id, u.email").
        WithArgs("dealer@example.com").
        WillReturnRows(userRow(3, "dealer@example.com", "dealer1", hash, true))
    mock.ExpectQuery("SELECT u.id, u.email, u.username, uf.first_name").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "first_name", "last_name", "phone", "name"}).
            AddRow(3, "dealer@example.com", "dealer1", "Dana", "Rivers", "555-0101", "dealer"))

    cfg := testConfig()
    h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewResetTokenRepo(db), &stubPublisher{})
    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/login",
        `{"email":"dealer@example.com","password":"Corr3ct$pw"}`)
    if err := h.Login(c); err != nil {
        t.Fatalf("Login returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
    }

    var resp authResp
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode response: %v", err)
    }
    if resp.User.Role != "dealer" {
        t.Errorf("role = %q, want dealer", resp.User.Role)
    }
    if resp.User.FirstName == nil || *resp.User.FirstName != "Dana" {
        t.Errorf("first_name = %v, want Dana", resp.User.FirstName)
    }
    if resp.User.LastName == nil || *resp.User.LastName != "Rivers" {
        t.Errorf("last_name = %v, want Rivers", resp.User.LastName)
    }
    if resp.User.Phone == nil || *resp.User.Phone != "555-0101" {
        t.Errorf("phone = %v, want 555-0101", resp.User.Phone)
    }

    access, err := utils.VerifyToken(cfg.JWTSecret, resp.Access.Token)
    if err != nil || access.Type != utils.TokenTypeAccess || access.UserID != 3 {
        t.Errorf("access claims = %+v err=%v", access, err)
    }
    refresh, err := utils.VerifyToken(cfg.JWTSecret, resp.Refresh.Token)
    if err != nil || refresh.Type != utils.TokenTypeRefresh {
        t.Errorf("refresh claims = %+v err=%v", refresh, err)
    }
    if refresh.Role != "" {
        t.Error("refresh token must not embed a role")
    }
}

func TestRefreshRejectsAccessToken(t *testing.T) {
    db, _, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    cfg := testConfig()
    access, _ := utils.NewAccessToken(cfg.JWTSecret, 3, "x@y.z", "player", 30)

    h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewResetTokenRepo(db), &stubPublisher{})
    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/refresh",
        `{"refresh_token":"`+access.Token+`"}`)
    if err := h.Refresh(c); err != nil {
        t.Fatalf("Refresh returned error: %v", err)
    }
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("status = %d, want 401 for access token at refresh endpoint", rec.Code)
    }
}

func TestRefreshReloadsRole(t *testing.T) {
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New failed: %v", err)
    }
    defer db.Close()

    cfg := testConfig()
    refresh, _ := utils.NewRefreshToken(cfg.JWTSecret, 3, 7)

    mock.ExpectQuery("SELECT u.id, u.email").
        WithArgs(uint64(3)).
        WillReturnRows(userRow(3, "p@example.com", "p", "hash", true))
    // The user was promoted since the refresh token was issued.
    mock.ExpectQuery("SELECT r.name FROM users u").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("admin"))

    h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewResetTokenRepo(db), &stubPublisher{})
    c, rec := jsonRequest(t, http.MethodPost, "/v1/auth/refresh",
        `{"refresh_token":"`+refresh.Token+`"}`)
    if err := h.Refresh(c); err != nil {
        t.Fatalf("Refresh returned error: %v", err)
    }
    if rec.Code != http.StatusOK {
        t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
    }

    var resp struct {
        Access tokenPart `json:"access"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode response: %v", err)
    }
    claims, err := utils.VerifyToken(cfg.JWTSecret, resp.Access.Token)
    if err != nil {
        t.Fatalf("verify new access token: %v", err)
    }
    if claims.Role != "admin" {
        t.Errorf("new access role = %q, want admin (re-read at refresh)", claims.Role)
    }
}
