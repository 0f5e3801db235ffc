package handler

import (
	"context"  // request-scoped timeouts for DB calls
	"errors"   // sentinel error comparisons
	"fmt"      // lockout message formatting
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts and lockout arithmetic

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/config"
	"github.com/Adira-Medica/inventory-app/internal/model"
	"github.com/Adira-Medica/inventory-app/internal/repository"
	"github.com/Adira-Medica/inventory-app/internal/utils"
)

// UserStore is the slice of the user repository the auth endpoints need.
// Tests substitute an in-memory implementation.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	RecordLoginFailure(ctx context.Context, id uint64, failed int, lockoutUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// RoleStore resolves role names to role rows.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (model.Role, error)
}

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     UserStore
	Roles     RoleStore
	Blacklist auth.TokenBlacklist
	Audit     *audit.Store
}

func NewAuthHandler(cfg config.Config, users UserStore, roles RoleStore, bl auth.TokenBlacklist, aud *audit.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Roles: roles, Blacklist: bl, Audit: aud}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
type loginResp struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expires_at"`
	User      userPart `json:"user"`
}

// Register creates a pending account.  Self-registered users cannot log
// in until an administrator approves them.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}
	if err := utils.ValidateEmail(req.Email, h.Cfg.AllowedEmailDomains); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// A requested role is honored but the account still starts pending,
	// so an elevated role only becomes usable after admin approval.
	roleName := strings.ToLower(strings.TrimSpace(req.Role))
	if roleName == "" {
		roleName = "user"
	}
	role, err := h.Roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidRole) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not resolve role"})
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
	}

	u := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Active:       true,
		Status:       model.StatusPending,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists), errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}

	h.Audit.LogAuthEvent("register", u.Username, u.ID, true, "registration submitted", c.RealIP(), c.Request().UserAgent())
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration received; an administrator must approve the account before login",
		"status":  model.StatusPending,
	})
}

// Login authenticates a user and issues an access token.  The checks run
// in a fixed order: the account must exist, must not be locked out, the
// password must verify, the account must be active, and finally it must
// be approved.  Failed attempts feed the progressive lockout counter;
// a lockout holds even when the correct password is presented.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ip := c.RealIP()
	ua := c.Request().UserAgent()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.Audit.LogAuthEvent("login", req.Username, 0, false, "unknown username", ip, ua)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	now := time.Now()
	if auth.IsLockedOut(u, now) {
		remaining := time.Until(*u.LockoutUntil).Round(time.Minute)
		if remaining < time.Minute {
			remaining = time.Minute
		}
		h.Audit.LogAuthEvent("login", u.Username, u.ID, false, "attempt during lockout", ip, ua)
		return c.JSON(http.StatusTooManyRequests, echo.Map{
			"error": fmt.Sprintf("account locked; try again in %s", remaining),
		})
	}

	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		failed := u.FailedLoginAttempts + 1
		until := auth.LockoutAfter(failed, now)
		if err := h.Users.RecordLoginFailure(ctx, u.ID, failed, until); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
		}
		h.Audit.LogAuthEvent("login", u.Username, u.ID, false, fmt.Sprintf("wrong password (attempt %d)", failed), ip, ua)
		if until != nil {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error": "too many failed attempts; account temporarily locked",
			})
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !u.Active {
		h.Audit.LogAuthEvent("login", u.Username, u.ID, false, "account deactivated", ip, ua)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is deactivated"})
	}
	if u.Status != model.StatusApproved {
		h.Audit.LogAuthEvent("login", u.Username, u.ID, false, "account not approved", ip, ua)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is awaiting administrator approval"})
	}

	if err := h.Users.RecordLoginSuccess(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.RoleName, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}

	h.Audit.LogAuthEvent("login", u.Username, u.ID, true, "", ip, ua)
	return c.JSON(http.StatusOK, loginResp{
		Token:     tok.Token,
		ExpiresAt: tok.Exp.Format(time.RFC3339),
		User:      userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.RoleName},
	})
}

// Logout revokes the presented token.  A missing, malformed or already
// expired token still yields 200: the client's goal is to end the
// session, and in all of those cases it already is ended.
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get("Authorization")
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == "" || raw == header {
		h.Audit.LogAuthEvent("logout", "", 0, true, "no token presented", c.RealIP(), c.Request().UserAgent())
		return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
	}

	claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		h.Audit.LogAuthEvent("logout", "", 0, true, "token invalid or expired", c.RealIP(), c.Request().UserAgent())
		return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
	}

	if h.Blacklist != nil {
		ttl := time.Until(claims.Exp)
		if err := h.Blacklist.Revoke(c.Request().Context(), claims.JTI, ttl); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not revoke token"})
		}
	}
	h.Audit.LogAuthEvent("logout", claims.Username, claims.UserID, true, "", c.RealIP(), c.Request().UserAgent())
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Profile returns the authenticated user's account details.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load profile"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.RoleName,
		"active":     u.Active,
		"status":     u.Status,
		"created_at": u.CreatedAt.Format(time.RFC3339),
	})
}

// ChangePassword verifies the current password before accepting a new
// one subject to the same strength policy as registration.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load user"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		h.Audit.LogAuthEvent("password_change", u.Username, u.ID, false, "wrong current password", c.RealIP(), c.Request().UserAgent())
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update password"})
	}
	h.Audit.LogAuthEvent("password_change", u.Username, u.ID, true, "", c.RealIP(), c.Request().UserAgent())
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// ExtendSession issues a fresh token for the authenticated user with the
// current role read from the database, so an extension never prolongs a
// stale role claim.
func (h *AuthHandler) ExtendSession(c echo.Context) error {
	id, ok := c.Get("user_id").(uint64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil || !u.Active || u.Status != model.StatusApproved {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session can no longer be extended"})
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, u.RoleName, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":      tok.Token,
		"expires_at": tok.Exp.Format(time.RFC3339),
	})
}
