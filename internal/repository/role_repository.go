package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Adira-Medica/inventory-app/internal/model"
)

// RoleRepo reads the static role reference data.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, permissions FROM roles WHERE name=? LIMIT 1",
		name).Scan(&role.ID, &role.Name, &role.Permissions)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrInvalidRole
	}
	return role, err
}

// List returns all roles ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, permissions FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Permissions); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}
