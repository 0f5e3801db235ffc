package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func doRequest(mw echo.MiddlewareFunc, authorize func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorize != nil {
		authorize(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(okHandler)(c)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 9, "jane", "manager", 5)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := doRequest(JWTAuth(testSecret, auth.NewMemoryBlacklist()), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	mw := JWTAuth(testSecret, auth.NewMemoryBlacklist())

	if rec := doRequest(mw, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401 got %d", rec.Code)
	}
	if rec := doRequest(mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer garbage")
	}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401 got %d", rec.Code)
	}

	other, _ := utils.NewAccessToken("other-secret", 9, "jane", "user", 5)
	if rec := doRequest(mw, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+other.Token)
	}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret: expected 401 got %d", rec.Code)
	}
}

func TestJWTAuthRejectsRevokedToken(t *testing.T) {
	bl := auth.NewMemoryBlacklist()
	tok, err := utils.NewAccessToken(testSecret, 9, "jane", "user", 5)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := bl.Revoke(context.Background(), tok.JTI, time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	rec := doRequest(JWTAuth(testSecret, bl), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token: expected 401 got %d", rec.Code)
	}
}

// staticResolver returns a fixed principal for any id.
type staticResolver struct {
	p   auth.Principal
	err error
}

func (s staticResolver) ResolvePrincipal(context.Context, uint64) (auth.Principal, error) {
	return s.p, s.err
}

func roleRequest(mw echo.MiddlewareFunc, userID any) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	_ = mw(okHandler)(c)
	return rec
}

func TestRequireRoleUsesCurrentDatabaseRole(t *testing.T) {
	// The token may still say admin, but the database role decides.
	demoted := staticResolver{p: auth.Principal{ID: 9, Username: "jane", Role: "user", Active: true}}
	if rec := roleRequest(RequireRole(demoted, "admin"), uint64(9)); rec.Code != http.StatusForbidden {
		t.Fatalf("demoted user: expected 403 got %d", rec.Code)
	}

	current := staticResolver{p: auth.Principal{ID: 9, Username: "jane", Role: "admin", Active: true}}
	if rec := roleRequest(RequireRole(current, "admin"), uint64(9)); rec.Code != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d", rec.Code)
	}
}

func TestRequireRoleRejectsInactiveAndMissing(t *testing.T) {
	inactive := staticResolver{p: auth.Principal{ID: 9, Username: "jane", Role: "admin", Active: false}}
	if rec := roleRequest(RequireRole(inactive, "admin"), uint64(9)); rec.Code != http.StatusForbidden {
		t.Fatalf("inactive user: expected 403 got %d", rec.Code)
	}

	resolver := staticResolver{p: auth.Principal{Role: "admin", Active: true}}
	if rec := roleRequest(RequireRole(resolver, "admin"), nil); rec.Code != http.StatusForbidden {
		t.Fatalf("missing user_id: expected 403 got %d", rec.Code)
	}
}
