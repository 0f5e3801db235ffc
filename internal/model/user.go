package model

import "time"

// Account status values as stored in users.status.  Only approved users
// may authenticate; pending accounts wait for an administrator decision.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository layer; handlers define separate response types with
// appropriate JSON tags.
//
// Fields:
//  ID                  – primary key identifier of the user.
//  Username            – unique login name.
//  Email               – unique email address.
//  PasswordHash        – bcrypt hashed password.
//  RoleID              – foreign key into the roles table.
//  RoleName            – role name joined from the roles table.
//  Active              – whether the account is active.
//  Status              – registration workflow state (pending/approved/rejected).
//  FailedLoginAttempts – consecutive failed login counter.
//  LockoutUntil        – end of the current lockout window (nil when not locked).
//  CreatedAt           – timestamp of creation.
//  UpdatedAt           – timestamp of last update.
type User struct {
	ID                  uint64     // users.id
	Username            string     // users.username
	Email               string     // users.email
	PasswordHash        string     // users.password_hash
	RoleID              uint8      // users.role_id (references roles.id)
	RoleName            string     // roles.name (joined)
	Active              bool       // users.active
	Status              string     // users.status
	FailedLoginAttempts int        // users.failed_login_attempts
	LockoutUntil        *time.Time // users.lockout_until (nullable)
	CreatedAt           time.Time  // users.created_at
	UpdatedAt           time.Time  // users.updated_at
}

// Role represents a row in the `roles` table.  Permissions is an opaque
// JSON bag of capability flags seeded once at startup; authorization
// decisions are made on the role name.
type Role struct {
	ID          uint8  // roles.id
	Name        string // roles.name (admin, manager, user)
	Permissions string // roles.permissions (JSON)
}
