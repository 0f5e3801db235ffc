package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adira-Medica/inventory-app/internal/audit"
	"github.com/Adira-Medica/inventory-app/internal/config"
	"github.com/Adira-Medica/inventory-app/internal/model"
	"github.com/Adira-Medica/inventory-app/internal/repository"
	"github.com/Adira-Medica/inventory-app/internal/settings"
	"github.com/Adira-Medica/inventory-app/internal/utils"
)

// AdminUserStore extends UserStore with the operations only admins use.
type AdminUserStore interface {
	UserStore
	List(ctx context.Context, status string) ([]model.User, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	ToggleActive(ctx context.Context, id uint64) (bool, error)
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) error
	CountByRole(ctx context.Context) (map[string]int, error)
	CountActive(ctx context.Context) (active, inactive int, err error)
}

// Counter reports table sizes for the statistics endpoint.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// AdminHandler serves user administration, system settings, audit log
// review and statistics.
type AdminHandler struct {
	Cfg       config.Config
	Users     AdminUserStore
	Roles     RoleStore
	Items     Counter
	Receiving Counter
	Audit     *audit.Store
	Settings  *settings.Store
}

func NewAdminHandler(cfg config.Config, users AdminUserStore, roles RoleStore, items, recv Counter, aud *audit.Store, st *settings.Store) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: users, Roles: roles, Items: items, Receiving: recv, Audit: aud, Settings: st}
}

type adminUserResp struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toAdminUserResp(u model.User) adminUserResp {
	return adminUserResp{
		ID: u.ID, Username: u.Username, Email: u.Email, Role: u.RoleName,
		Active: u.Active, Status: u.Status, CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// ListUsers returns all accounts, optionally filtered by status.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, c.QueryParam("status"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// PendingUsers lists registrations awaiting an approval decision.
func (h *AdminHandler) PendingUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx, model.StatusPending)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list users"})
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

type adminCreateUserReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser provisions an account directly.  Unlike self-registration
// the account is approved immediately and may carry any role.
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req adminCreateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}
	if req.Role == "" {
		req.Role = "user"
	}
	if err := utils.ValidateEmail(req.Email, h.Cfg.AllowedEmailDomains); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.Roles.GetByName(ctx, req.Role)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
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
		Status:       model.StatusApproved,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists), errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create user"})
	}

	h.logAdminAction(c, "create_user", fmt.Sprintf("created user %s with role %s", u.Username, req.Role))
	u.RoleName = role.Name
	return c.JSON(http.StatusCreated, toAdminUserResp(u))
}

type adminUpdateUserReq struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// UpdateUser modifies an account.  Role names resolve to role ids and a
// new password is hashed; everything else passes through the repository
// column whitelist.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adminUpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fields := map[string]any{}
	if req.Username != nil {
		fields["username"] = *req.Username
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.Role != nil {
		role, err := h.Roles.GetByName(ctx, *req.Role)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
		}
		fields["role_id"] = role.ID
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		hash, err := utils.HashPassword(*req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not hash password"})
		}
		fields["password_hash"] = hash
	}
	if len(fields) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no updatable fields in body"})
	}

	if err := h.Users.UpdateFields(ctx, id, fields); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}

	h.logAdminAction(c, "update_user", fmt.Sprintf("updated user %d", id))
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"message": "user updated"})
	}
	return c.JSON(http.StatusOK, toAdminUserResp(u))
}

// Approve moves a pending registration to approved.
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.decide(c, model.StatusApproved, "approve_user")
}

// Reject marks a pending registration rejected; the account remains on
// record but can never log in.
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.decide(c, model.StatusRejected, "reject_user")
}

func (h *AdminHandler) decide(c echo.Context, status, action string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}
	h.logAdminAction(c, action, fmt.Sprintf("set user %d status to %s", id, status))
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// ToggleStatus flips an account between active and deactivated.
func (h *AdminHandler) ToggleStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Users.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update user"})
	}
	h.logAdminAction(c, "toggle_user_status", fmt.Sprintf("user %d active=%t", id, active))
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": active})
}

// GetSettings returns the system settings, creating defaults on first use.
func (h *AdminHandler) GetSettings(c echo.Context) error {
	s, err := h.Settings.Get()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load settings"})
	}
	return c.JSON(http.StatusOK, s)
}

// PutSettings replaces the system settings after validation.
func (h *AdminHandler) PutSettings(c echo.Context) error {
	var in settings.Settings
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Settings.Put(in); err != nil {
		if errors.Is(err, settings.ErrSessionTimeoutRange) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save settings"})
	}
	h.logAdminAction(c, "update_settings", "system settings updated")
	return c.JSON(http.StatusOK, echo.Map{"message": "settings saved"})
}

// AuditLogs lists audit records.  type=auth selects the authentication
// log; everything else reads the activity log.  Date, username and
// action filters come from the query string.
func (h *AdminHandler) AuditLogs(c echo.Context) error {
	f := audit.Filter{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		Username:  c.QueryParam("username"),
		Action:    c.QueryParam("action"),
	}
	if c.QueryParam("type") == "auth" {
		entries, err := h.Audit.AuthEvents(f)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read auth log"})
		}
		return c.JSON(http.StatusOK, entries)
	}
	entries, err := h.Audit.Activities(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read audit log"})
	}
	return c.JSON(http.StatusOK, entries)
}

// ExportAuditLogs streams the filtered activity log as csv, xlsx or pdf.
func (h *AdminHandler) ExportAuditLogs(c echo.Context) error {
	f := audit.Filter{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		Username:  c.QueryParam("username"),
		Action:    c.QueryParam("action"),
	}
	entries, err := h.Audit.Activities(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not read audit log"})
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}
	var (
		buf         bytes.Buffer
		contentType string
	)
	switch format {
	case "csv":
		contentType = "text/csv"
		err = audit.ExportCSV(&buf, entries)
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = audit.ExportXLSX(&buf, entries)
	case "pdf":
		contentType = "application/pdf"
		err = audit.ExportPDF(&buf, entries)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "format must be csv, xlsx or pdf"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("export failed: %v", err)})
	}

	filename := fmt.Sprintf("audit_logs_%s.%s", time.Now().Format("20060102_150405"), format)
	h.logAdminAction(c, "export_audit_logs", fmt.Sprintf("exported %d records as %s", len(entries), format))
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// ClearAuditLogs archives and truncates the activity log.  Only the
// built-in admin account may do this, not merely anyone with the admin
// role.
func (h *AdminHandler) ClearAuditLogs(c echo.Context) error {
	username, _ := c.Get("username").(string)
	if username != "admin" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the primary admin account can clear audit logs"})
	}
	archive, err := h.Audit.Clear()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not clear audit logs"})
	}
	h.logAdminAction(c, "clear_audit_logs", fmt.Sprintf("audit log archived to %s", archive))
	return c.JSON(http.StatusOK, echo.Map{"message": "audit logs cleared", "archive": archive})
}

// Statistics reports account and record counts for the admin dashboard.
func (h *AdminHandler) Statistics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	byRole, err := h.Users.CountByRole(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute statistics"})
	}
	active, inactive, err := h.Users.CountActive(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute statistics"})
	}
	items, err := h.Items.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute statistics"})
	}
	receiving, err := h.Receiving.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not compute statistics"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"users_by_role":     byRole,
		"active_users":      active,
		"inactive_users":    inactive,
		"item_count":        items,
		"receiving_count":   receiving,
		"generated_at":      time.Now().Format(time.RFC3339),
	})
}

// CreateBackup copies the audit logs and settings file into a timestamped
// backup directory next to the log directory.
func (h *AdminHandler) CreateBackup(c echo.Context) error {
	dir := filepath.Join(h.Cfg.LogDir, "backups", time.Now().Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create backup directory"})
	}
	sources := []string{
		filepath.Join(h.Cfg.LogDir, "audit.json"),
		filepath.Join(h.Cfg.LogDir, "auth_audit.json"),
		h.Cfg.SettingsPath,
	}
	copied := 0
	for _, src := range sources {
		data, err := os.ReadFile(src)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": fmt.Sprintf("could not read %s", filepath.Base(src))})
		}
		if err := os.WriteFile(filepath.Join(dir, filepath.Base(src)), data, 0o644); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not write backup"})
		}
		copied++
	}
	h.logAdminAction(c, "create_backup", fmt.Sprintf("backed up %d files to %s", copied, dir))
	return c.JSON(http.StatusOK, echo.Map{"message": "backup created", "path": dir, "files": copied})
}

func (h *AdminHandler) logAdminAction(c echo.Context, action, details string) {
	username, _ := c.Get("username").(string)
	userID, _ := c.Get("user_id").(uint64)
	h.Audit.LogActivity(action, details, username, userID, c.RealIP())
}
