package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Adira-Medica/inventory-app/internal/auth"
	"github.com/Adira-Medica/inventory-app/internal/model"
)

const userColumns = `u.id, u.username, u.email, u.password_hash, u.role_id, r.name,
	u.active, u.status, u.failed_login_attempts, u.lockout_until, u.created_at, u.updated_at`

// UserRepo encapsulates all database queries related to user accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var (
		u       model.User
		lockout sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.RoleID, &u.RoleName,
		&u.Active, &u.Status, &u.FailedLoginAttempts, &lockout, &u.CreatedAt, &u.UpdatedAt)
	if lockout.Valid {
		t := lockout.Time
		u.LockoutUntil = &t
	}
	return u, err
}

// Create inserts a user and returns its ID.  Username and email are
// normalized before insert; duplicate-key violations are mapped to the
// field-specific sentinel errors.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role_id, active, status) VALUES (?,?,?,?,?,?)",
		u.Username, u.Email, u.PasswordHash, u.RoleID, u.Active, u.Status)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "1062") {
			if strings.Contains(msg, "uq_users_email") {
				return ErrEmailExists
			}
			return ErrUsernameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByUsername fetches a user with its role name joined in.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id=u.role_id WHERE u.username=? LIMIT 1",
		strings.TrimSpace(username))
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users u JOIN roles r ON r.id=u.role_id WHERE u.id=? LIMIT 1", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// List returns all users, optionally restricted to one workflow status.
func (r *UserRepo) List(ctx context.Context, status string) ([]model.User, error) {
	q := "SELECT " + userColumns + " FROM users u JOIN roles r ON r.id=u.role_id"
	args := []any{}
	if status != "" {
		q += " WHERE u.status=?"
		args = append(args, status)
	}
	q += " ORDER BY u.id"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// RecordLoginFailure stores the incremented failure counter and, when a
// threshold was crossed, the lockout deadline.
func (r *UserRepo) RecordLoginFailure(ctx context.Context, id uint64, failed int, lockoutUntil *time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET failed_login_attempts=?, lockout_until=? WHERE id=?",
		failed, lockoutUntil, id)
	return err
}

// RecordLoginSuccess resets the failure counter and clears any lockout.
func (r *UserRepo) RecordLoginSuccess(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET failed_login_attempts=0, lockout_until=NULL WHERE id=?", id)
	return err
}

// UpdatePassword replaces the stored hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus moves a registration through the approval workflow.
func (r *UserRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleActive flips the active flag and returns the new value.
func (r *UserRepo) ToggleActive(ctx context.Context, id uint64) (bool, error) {
	if _, err := r.DB.ExecContext(ctx, "UPDATE users SET active=NOT active WHERE id=?", id); err != nil {
		return false, err
	}
	var active bool
	err := r.DB.QueryRowContext(ctx, "SELECT active FROM users WHERE id=?", id).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	return active, err
}

// UpdateFields applies the admin-editable columns that are present in the
// map.  Allowed keys: username, role_id, active, password_hash.
func (r *UserRepo) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	allowed := []string{"username", "role_id", "active", "password_hash"}
	var sets []string
	var args []any
	for _, col := range allowed {
		if v, ok := fields[col]; ok {
			sets = append(sets, col+"=?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrUsernameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole returns user counts keyed by role name, for the admin
// statistics endpoint.
func (r *UserRepo) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT r.name, COUNT(u.id) FROM roles r LEFT JOIN users u ON u.role_id=r.id GROUP BY r.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, rows.Err()
}

// CountActive returns the number of active and inactive users.
func (r *UserRepo) CountActive(ctx context.Context) (active, inactive int, err error) {
	err = r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(active=1),0), COALESCE(SUM(active=0),0) FROM users").Scan(&active, &inactive)
	return
}

// ResolvePrincipal implements auth.PrincipalResolver so the role guard
// reflects admin changes immediately instead of trusting token claims.
func (r *UserRepo) ResolvePrincipal(ctx context.Context, id uint64) (auth.Principal, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{ID: u.ID, Username: u.Username, Role: u.RoleName, Active: u.Active}, nil
}
