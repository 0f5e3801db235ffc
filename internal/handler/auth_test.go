package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/config"
	"github.com/Adira-Medica/inventory-app/internal/model"
	"github.com/Adira-Medica/inventory-app/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 config.EnvTesting,
		JWTSecret:           "test-secret",
		AccessTTLMin:        30,
		BcryptCost:          4, // keep test runs fast
		AllowedEmailDomains: []string{"adiramedica.com"},
	}
}

func newAuthHandler(t *testing.T, users *fakeUserStore) *AuthHandler {
	t.Helper()
	return NewAuthHandler(testConfig(), users, fakeRoleStore{}, auth.NewMemoryBlacklist(), audit.NewStore(t.TempDir(), nil))
}

func postJSON(e *echo.Echo, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func seedApprovedUser(t *testing.T, users *fakeUserStore, username, password string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return users.add(model.User{
		Username: username, Email: username + "@adiramedica.com",
		PasswordHash: hash, RoleID: 3, RoleName: "user",
		Active: true, Status: model.StatusApproved,
	})
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUserStore()
	seedApprovedUser(t, users, "jane", "Abcdef1!")
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/login", `{"username":"jane","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var resp loginResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "jane" || resp.User.Role != "user" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	claims, err := utils.ParseAccessToken("test-secret", resp.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.Username != "jane" {
		t.Fatalf("token claims wrong: %+v", claims)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	h := newAuthHandler(t, newFakeUserStore())
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/login", `{"username":"ghost","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestLoginLockoutAfterFiveFailures(t *testing.T) {
	users := newFakeUserStore()
	u := seedApprovedUser(t, users, "jane", "Abcdef1!")
	h := newAuthHandler(t, users)
	e := echo.New()

	for i := 0; i < 5; i++ {
		c, rec := postJSON(e, "/api/auth/login", `{"username":"jane","password":"wrong"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("login attempt %d: %v", i+1, err)
		}
		if i < 4 && rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401 got %d", i+1, rec.Code)
		}
		if i == 4 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt 5 should lock with 429, got %d", rec.Code)
		}
	}
	if u.LockoutUntil == nil {
		t.Fatal("lockout deadline not persisted")
	}

	// The correct password makes no difference inside the window.
	c, rec := postJSON(e, "/api/auth/login", `{"username":"jane","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login during lockout: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("locked account accepted correct password: %d", rec.Code)
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	users := newFakeUserStore()
	u := seedApprovedUser(t, users, "jane", "Abcdef1!")
	u.FailedLoginAttempts = 4
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/login", `{"username":"jane","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if u.FailedLoginAttempts != 0 || u.LockoutUntil != nil {
		t.Fatalf("counter not reset: attempts=%d lockout=%v", u.FailedLoginAttempts, u.LockoutUntil)
	}
}

func TestLoginExpiredLockoutAdmitsUser(t *testing.T) {
	users := newFakeUserStore()
	u := seedApprovedUser(t, users, "jane", "Abcdef1!")
	past := time.Now().Add(-time.Minute)
	u.FailedLoginAttempts = 5
	u.LockoutUntil = &past
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/login", `{"username":"jane","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expired lockout should admit, got %d", rec.Code)
	}
}

func TestLoginRejectsPendingAndInactive(t *testing.T) {
	users := newFakeUserStore()
	pending := seedApprovedUser(t, users, "newbie", "Abcdef1!")
	pending.Status = model.StatusPending
	inactive := seedApprovedUser(t, users, "gone", "Abcdef1!")
	inactive.Active = false
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/login", `{"username":"newbie","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("pending account: expected 401 got %d", rec.Code)
	}

	c, rec = postJSON(e, "/api/auth/login", `{"username":"gone","password":"Abcdef1!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("inactive account: expected 401 got %d", rec.Code)
	}
}

func TestRegisterCreatesPendingAccount(t *testing.T) {
	users := newFakeUserStore()
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register",
		`{"username":"jane","email":"jane@adiramedica.com","password":"Abcdef1!"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != model.StatusPending {
		t.Fatalf("response status should be %q, got %q", model.StatusPending, body["status"])
	}
	u, err := users.GetByUsername(c.Request().Context(), "jane")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.Status != model.StatusPending {
		t.Fatalf("self-registration must be pending, got %q", u.Status)
	}
	if u.PasswordHash == "Abcdef1!" {
		t.Fatal("password stored unhashed")
	}
	if u.RoleID != 3 {
		t.Fatalf("default role should be user (3), got %d", u.RoleID)
	}
}

func TestRegisterHonorsRequestedRole(t *testing.T) {
	users := newFakeUserStore()
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register",
		`{"username":"rob","email":"rob@adiramedica.com","password":"Abcdef1!","role":"manager"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	u, err := users.GetByUsername(c.Request().Context(), "rob")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.RoleID != 2 {
		t.Fatalf("requested manager role not stored, got role_id %d", u.RoleID)
	}
	// An elevated role still goes through the approval queue.
	if u.Status != model.StatusPending {
		t.Fatalf("requested role must not skip approval, got %q", u.Status)
	}

	c, rec = postJSON(e, "/api/auth/register",
		`{"username":"eve","email":"eve@adiramedica.com","password":"Abcdef1!","role":"superuser"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown role: expected 400 got %d", rec.Code)
	}
}

func TestRegisterRejectsForeignDomainAndWeakPassword(t *testing.T) {
	h := newAuthHandler(t, newFakeUserStore())
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/register",
		`{"username":"jane","email":"jane@gmail.com","password":"Abcdef1!"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("foreign domain: expected 400 got %d", rec.Code)
	}

	c, rec = postJSON(e, "/api/auth/register",
		`{"username":"jane","email":"jane@adiramedica.com","password":"weak"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("weak password: expected 400 got %d", rec.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	users := newFakeUserStore()
	seedApprovedUser(t, users, "jane", "Abcdef1!")
	h := newAuthHandler(t, users)
	e := echo.New()

	tok, err := utils.NewAccessToken("test-secret", 1, "jane", "user", 30)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !h.Blacklist.IsRevoked(req.Context(), tok.JTI) {
		t.Fatal("token jti not revoked")
	}
}

func TestLogoutToleratesMissingToken(t *testing.T) {
	h := newAuthHandler(t, newFakeUserStore())
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("logout without token should succeed, got %d", rec.Code)
	}

	// A garbage token is equally fine.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("logout with garbage token should succeed, got %d", rec.Code)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	users := newFakeUserStore()
	u := seedApprovedUser(t, users, "jane", "Abcdef1!")
	h := newAuthHandler(t, users)
	e := echo.New()

	c, rec := postJSON(e, "/api/auth/change-password",
		`{"current_password":"wrong","new_password":"Ghijkl2@"}`)
	c.Set("user_id", u.ID)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("change: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current password: expected 401 got %d", rec.Code)
	}

	c, rec = postJSON(e, "/api/auth/change-password",
		`{"current_password":"Abcdef1!","new_password":"Ghijkl2@"}`)
	c.Set("user_id", u.ID)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("change: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !utils.VerifyPassword(u.PasswordHash, "Ghijkl2@") {
		t.Fatal("new password not stored")
	}
}
