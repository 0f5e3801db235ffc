package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet and seeds the
// static role reference data.  Statements are idempotent so the function
// is safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS roles (
			id TINYINT UNSIGNED NOT NULL AUTO_INCREMENT,
			name VARCHAR(20) NOT NULL,
			permissions TEXT NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_roles_name (name)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			username VARCHAR(80) NOT NULL,
			email VARCHAR(120) NOT NULL,
			password_hash VARCHAR(128) NOT NULL,
			role_id TINYINT UNSIGNED NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			failed_login_attempts INT NOT NULL DEFAULT 0,
			lockout_until DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_username (username),
			UNIQUE KEY uq_users_email (email),
			CONSTRAINT fk_users_role FOREIGN KEY (role_id) REFERENCES roles (id)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS item_numbers (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			item_number VARCHAR(50) NOT NULL,
			description VARCHAR(200) NOT NULL,
			client VARCHAR(100) NOT NULL,
			protocol_number VARCHAR(50) NOT NULL,
			vendor VARCHAR(100) NOT NULL,
			uom VARCHAR(50) NOT NULL,
			controlled VARCHAR(50) NOT NULL,
			temp_storage_conditions VARCHAR(50) NOT NULL,
			other_storage_conditions VARCHAR(50) NOT NULL DEFAULT 'N/A',
			max_exposure_time INT NOT NULL DEFAULT 0,
			temper_time INT NOT NULL DEFAULT 0,
			working_exposure_time INT NOT NULL DEFAULT 0,
			vendor_code_rev VARCHAR(50) NOT NULL,
			randomized VARCHAR(10) NOT NULL,
			sequential_numbers VARCHAR(10) NOT NULL,
			study_type VARCHAR(50) NOT NULL,
			is_obsolete BOOLEAN NOT NULL DEFAULT FALSE,
			display_order INT NOT NULL DEFAULT 0,
			created_by VARCHAR(80) NOT NULL DEFAULT '',
			updated_by VARCHAR(80) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_item_numbers_number (item_number)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS receiving_data (
			id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			item_id BIGINT UNSIGNED NOT NULL,
			receiving_no VARCHAR(20) NOT NULL,
			tracking_number VARCHAR(50) NOT NULL DEFAULT '',
			lot_no VARCHAR(50) NOT NULL DEFAULT '',
			po_no VARCHAR(50) NOT NULL DEFAULT '',
			total_units_vendor INT NOT NULL DEFAULT 0,
			total_storage_containers INT NOT NULL DEFAULT 0,
			exp_date VARCHAR(20) NOT NULL DEFAULT '',
			ncmr VARCHAR(5) NOT NULL DEFAULT '',
			total_units_received INT NOT NULL DEFAULT 0,
			temp_device_in_alarm VARCHAR(20) NOT NULL DEFAULT '',
			temp_device_deactivated VARCHAR(5) NOT NULL DEFAULT '',
			temp_device_returned_to_courier VARCHAR(5) NOT NULL DEFAULT '',
			comments_for_520b VARCHAR(200) NOT NULL DEFAULT '',
			is_obsolete BOOLEAN NOT NULL DEFAULT FALSE,
			display_order INT NOT NULL DEFAULT 0,
			created_by VARCHAR(80) NOT NULL DEFAULT '',
			updated_by VARCHAR(80) NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_receiving_no (receiving_no),
			CONSTRAINT fk_receiving_item FOREIGN KEY (item_id) REFERENCES item_numbers (id)
		) ENGINE=InnoDB`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return seedRoles(ctx, db)
}

// seedRoles inserts the three static roles once.  The permission bags are
// opaque JSON; authorization decisions are made on the role name.
func seedRoles(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM roles").Scan(&n); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if n > 0 {
		return nil
	}
	roles := []struct{ name, perms string }{
		{"admin", `{"all":true}`},
		{"manager", `{"manage_items":true,"manage_receiving":true,"generate_forms":true}`},
		{"user", `{"view_items":true,"view_receiving":true,"generate_forms":true}`},
	}
	for _, r := range roles {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO roles (name, permissions) VALUES (?,?)", r.name, r.perms); err != nil {
			return fmt.Errorf("seed roles: %w", err)
		}
	}
	return nil
}

// SeedAdmin creates the built-in admin account when no users exist yet.
// The caller supplies the already-hashed password so this package stays
// free of crypto concerns.
func SeedAdmin(ctx context.Context, db *sql.DB, email, passwordHash string) error {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if n > 0 {
		return nil
	}
	var roleID uint8
	if err := db.QueryRowContext(ctx, "SELECT id FROM roles WHERE name='admin'").Scan(&roleID); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role_id, active, status) VALUES ('admin',?,?,?,TRUE,'approved')",
		email, passwordHash, roleID); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}
